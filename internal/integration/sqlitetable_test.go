package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/valter-silva-au/sockboard/pkg/models"
)

func newTestTable(t *testing.T) *SQLiteTable {
	t.Helper()
	table, err := NewSQLiteTable(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("opening table: %v", err)
	}
	t.Cleanup(func() { table.Close() })
	return table
}

func TestSQLiteTableUpsertAndFetch(t *testing.T) {
	table := newTestTable(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)

	tasks := []models.Task{
		{ID: "SK-1", Specs: models.TaskSpecs{Color: "black"}, Status: models.StatusPreparing, CreatedAt: now, UpdatedAt: now},
		{ID: "SK-2", Status: models.StatusSampling, CreatedAt: now.Add(time.Minute), UpdatedAt: now.Add(time.Minute)},
	}
	if err := table.UpsertTasks(ctx, tasks); err != nil {
		t.Fatalf("UpsertTasks failed: %v", err)
	}

	got, err := table.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got))
	}
	if got[0].ID != "SK-1" || got[0].Specs.Color != "black" {
		t.Errorf("first task did not round-trip: %+v", got[0])
	}
}

func TestSQLiteTableUpsertReplacesByID(t *testing.T) {
	table := newTestTable(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := models.Task{ID: "SK-1", Status: models.StatusPreparing, CreatedAt: now, UpdatedAt: now}
	if err := table.UpsertTasks(ctx, []models.Task{first}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := first
	second.Status = models.StatusCompleted
	second.UpdatedAt = now.Add(time.Hour)
	if err := table.UpsertTasks(ctx, []models.Task{second}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := table.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 task after replacing upsert, got %d", len(got))
	}
	if got[0].Status != models.StatusCompleted {
		t.Errorf("expected completed status, got %s", got[0].Status)
	}
}

func TestSQLiteTableListAndDelete(t *testing.T) {
	table := newTestTable(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := table.UpsertTasks(ctx, []models.Task{
		{ID: "SK-1", CreatedAt: now, UpdatedAt: now},
		{ID: "SK-2", CreatedAt: now, UpdatedAt: now},
		{ID: "SK-3", CreatedAt: now, UpdatedAt: now},
	}); err != nil {
		t.Fatalf("UpsertTasks failed: %v", err)
	}

	ids, err := table.ListIDs(ctx)
	if err != nil {
		t.Fatalf("ListIDs failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}

	if err := table.DeleteIDs(ctx, []string{"SK-1", "SK-3"}); err != nil {
		t.Fatalf("DeleteIDs failed: %v", err)
	}
	ids, err = table.ListIDs(ctx)
	if err != nil {
		t.Fatalf("ListIDs after delete: %v", err)
	}
	if len(ids) != 1 || ids[0] != "SK-2" {
		t.Errorf("expected only SK-2 to remain, got %v", ids)
	}
}
