package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/valter-silva-au/sockboard/pkg/models"
)

func TestSupabaseTableFetchAll(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	task := models.Task{ID: "SK-1", Status: models.StatusPreparing, CreatedAt: now, UpdatedAt: now}
	data, _ := json.Marshal(task)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != tasksTablePath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("apikey") != "test-key" {
			t.Errorf("missing apikey header")
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer header")
		}
		rows := []taskRow{
			{ID: "SK-1", Data: data, CreatedAt: now, UpdatedAt: now},
			{ID: "broken", Data: json.RawMessage(`"not an object"`)},
		}
		json.NewEncoder(w).Encode(rows)
	}))
	defer srv.Close()

	table := NewSupabaseTable(srv.URL, "test-key")
	tasks, err := table.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected the unparseable row to be skipped, got %d tasks", len(tasks))
	}
	if tasks[0].ID != "SK-1" {
		t.Errorf("expected SK-1, got %s", tasks[0].ID)
	}
}

func TestSupabaseTableUpsert(t *testing.T) {
	var gotPrefer string
	var gotRows []taskRow
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		gotPrefer = r.Header.Get("Prefer")
		json.NewDecoder(r.Body).Decode(&gotRows)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	now := time.Now().UTC()
	table := NewSupabaseTable(srv.URL, "k")
	err := table.UpsertTasks(context.Background(), []models.Task{
		{ID: "SK-2", Status: models.StatusSampling, CreatedAt: now, UpdatedAt: now},
	})
	if err != nil {
		t.Fatalf("UpsertTasks failed: %v", err)
	}
	if gotPrefer != "resolution=merge-duplicates" {
		t.Errorf("expected merge-duplicates upsert, got Prefer=%q", gotPrefer)
	}
	if len(gotRows) != 1 || gotRows[0].ID != "SK-2" {
		t.Fatalf("unexpected rows: %+v", gotRows)
	}
	var round models.Task
	if err := json.Unmarshal(gotRows[0].Data, &round); err != nil {
		t.Fatalf("data column is not a task document: %v", err)
	}
	if round.Status != models.StatusSampling {
		t.Errorf("expected sampling status in data column, got %s", round.Status)
	}
}

func TestSupabaseTableUpsertEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty upsert")
	}))
	defer srv.Close()

	if err := NewSupabaseTable(srv.URL, "k").UpsertTasks(context.Background(), nil); err != nil {
		t.Fatalf("empty upsert failed: %v", err)
	}
}

func TestSupabaseTableDeleteIDs(t *testing.T) {
	var gotFilter string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		gotFilter = r.URL.Query().Get("id")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	table := NewSupabaseTable(srv.URL, "k")
	if err := table.DeleteIDs(context.Background(), []string{"SK-1", "SK-2"}); err != nil {
		t.Fatalf("DeleteIDs failed: %v", err)
	}
	want := `in.("SK-1","SK-2")`
	if gotFilter != want {
		t.Errorf("expected filter %q, got %q", want, gotFilter)
	}
	if _, err := url.QueryUnescape(gotFilter); err != nil {
		t.Errorf("filter did not survive escaping: %v", err)
	}
}

func TestSupabaseTableServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "permission denied", http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := NewSupabaseTable(srv.URL, "bad").FetchAll(context.Background()); err == nil {
		t.Fatal("expected an error for a 401 response")
	}
}
