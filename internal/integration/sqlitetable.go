package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/valter-silva-au/sockboard/pkg/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	data TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_updated_at ON tasks(updated_at);
`

// SQLiteTable is a task table backed by a local SQLite file. It mirrors the
// hosted table's schema so a workshop can sync against a shared file on a
// NAS instead of a cloud project. It implements core.TaskTable.
type SQLiteTable struct {
	db *sql.DB
}

// NewSQLiteTable opens (and if needed creates) the table at path.
func NewSQLiteTable(path string) (*SQLiteTable, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening task table: %w", err)
	}
	// Concurrent sync clients share the file; WAL keeps readers unblocked.
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring task table: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing task table: %w", err)
	}
	return &SQLiteTable{db: db}, nil
}

// Close releases the underlying database handle.
func (t *SQLiteTable) Close() error {
	return t.db.Close()
}

// FetchAll returns every stored task. Rows with unparseable payloads are
// skipped, matching the hosted table's behavior.
func (t *SQLiteTable) FetchAll(ctx context.Context) ([]models.Task, error) {
	rows, err := t.db.QueryContext(ctx, "SELECT data FROM tasks ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("fetching tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("fetching tasks: %w", err)
		}
		var task models.Task
		if err := json.Unmarshal([]byte(data), &task); err != nil {
			continue
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetching tasks: %w", err)
	}
	return tasks, nil
}

// UpsertTasks writes the given tasks in one transaction, replacing rows
// that share an id.
func (t *SQLiteTable) UpsertTasks(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upserting tasks: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("upserting tasks: %w", err)
	}
	defer stmt.Close()

	for _, task := range tasks {
		data, err := json.Marshal(task)
		if err != nil {
			return fmt.Errorf("upserting tasks: encoding %s: %w", task.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, task.ID, string(data),
			task.CreatedAt.UTC().Format(time.RFC3339Nano),
			task.ModTime().UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("upserting task %s: %w", task.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upserting tasks: %w", err)
	}
	return nil
}

// ListIDs returns the ids of every stored row.
func (t *SQLiteTable) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := t.db.QueryContext(ctx, "SELECT id FROM tasks")
	if err != nil {
		return nil, fmt.Errorf("listing task ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("listing task ids: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing task ids: %w", err)
	}
	return ids, nil
}

// DeleteIDs removes the rows with the given ids.
func (t *SQLiteTable) DeleteIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("deleting tasks: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting task %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("deleting tasks: %w", err)
	}
	return nil
}
