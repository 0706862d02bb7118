// Package integration hosts the remote-side adapters: the hosted
// Postgres-backed task table spoken over its REST gateway, a local SQLite
// equivalent for LAN deployments, and the change notifier that drives
// realtime-style pulls.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valter-silva-au/sockboard/pkg/models"
)

const (
	tasksTablePath = "/rest/v1/tasks"

	// defaultTimeout bounds every remote round trip so a wedged network
	// never blocks a push or pull indefinitely.
	defaultTimeout = 60 * time.Second
)

// taskRow is the wire shape of one row in the remote tasks table. The full
// task document travels in the data column; created_at and updated_at are
// duplicated as columns for server-side querying.
type taskRow struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SupabaseTable talks to a hosted tasks table through the PostgREST
// endpoint. It implements core.TaskTable.
type SupabaseTable struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewSupabaseTable builds a table client for the given project URL and
// service key.
func NewSupabaseTable(baseURL, apiKey string) *SupabaseTable {
	return &SupabaseTable{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

func (t *SupabaseTable) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", t.apiKey)
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (t *SupabaseTable) do(req *http.Request) ([]byte, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("remote table returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// FetchAll returns every task stored remotely. Rows whose data column does
// not parse as a task are skipped rather than failing the whole pull.
func (t *SupabaseTable) FetchAll(ctx context.Context) ([]models.Task, error) {
	req, err := t.newRequest(ctx, http.MethodGet, tasksTablePath+"?select=*", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching tasks: %w", err)
	}
	body, err := t.do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching tasks: %w", err)
	}

	var rows []taskRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("fetching tasks: decoding rows: %w", err)
	}

	tasks := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		var task models.Task
		if err := json.Unmarshal(row.Data, &task); err != nil {
			continue
		}
		if task.ID == "" {
			task.ID = row.ID
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// UpsertTasks writes the given tasks, inserting new rows and replacing
// existing ones by id in a single request.
func (t *SupabaseTable) UpsertTasks(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	rows := make([]taskRow, 0, len(tasks))
	for _, task := range tasks {
		data, err := json.Marshal(task)
		if err != nil {
			return fmt.Errorf("upserting tasks: encoding %s: %w", task.ID, err)
		}
		rows = append(rows, taskRow{
			ID:        task.ID,
			Data:      data,
			CreatedAt: task.CreatedAt,
			UpdatedAt: task.ModTime(),
		})
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("upserting tasks: %w", err)
	}

	req, err := t.newRequest(ctx, http.MethodPost, tasksTablePath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("upserting tasks: %w", err)
	}
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	if _, err := t.do(req); err != nil {
		return fmt.Errorf("upserting tasks: %w", err)
	}
	return nil
}

// ListIDs returns the ids of every remote row.
func (t *SupabaseTable) ListIDs(ctx context.Context) ([]string, error) {
	req, err := t.newRequest(ctx, http.MethodGet, tasksTablePath+"?select=id", nil)
	if err != nil {
		return nil, fmt.Errorf("listing task ids: %w", err)
	}
	body, err := t.do(req)
	if err != nil {
		return nil, fmt.Errorf("listing task ids: %w", err)
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("listing task ids: decoding rows: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// DeleteIDs removes the rows with the given ids.
func (t *SupabaseTable) DeleteIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	quoted := make([]string, 0, len(ids))
	for _, id := range ids {
		quoted = append(quoted, `"`+strings.ReplaceAll(id, `"`, ``)+`"`)
	}
	filter := url.QueryEscape("in.(" + strings.Join(quoted, ",") + ")")

	req, err := t.newRequest(ctx, http.MethodDelete, tasksTablePath+"?id="+filter, nil)
	if err != nil {
		return fmt.Errorf("deleting tasks: %w", err)
	}
	if _, err := t.do(req); err != nil {
		return fmt.Errorf("deleting tasks: %w", err)
	}
	return nil
}
