package observability

import (
	"path/filepath"
	"testing"
	"time"
)

func TestMetricsCalculate(t *testing.T) {
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"), "device-1")
	if err != nil {
		t.Fatalf("opening event log: %v", err)
	}
	defer log.Close()

	log.LogEvent("task.created", map[string]any{"id": "SK-1"})
	log.LogEvent("task.created", map[string]any{"id": "SK-2"})
	log.LogEvent("task.status_changed", map[string]any{"id": "SK-1", "from": "post_processing", "to": "completed"})
	log.LogEvent("task.status_changed", map[string]any{"id": "SK-2", "from": "sampling", "to": "revision"})
	log.LogEvent("task.deleted", map[string]any{"id": "SK-2"})
	log.LogEvent("sync.push", map[string]any{"tasks": 2})
	log.LogEvent("sync.pull", map[string]any{"remote_tasks": 2})

	m, err := NewMetricsCalculator(log).Calculate(time.Time{})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if m.TasksCreated != 2 {
		t.Errorf("expected 2 tasks created, got %d", m.TasksCreated)
	}
	if m.TasksDeleted != 1 {
		t.Errorf("expected 1 task deleted, got %d", m.TasksDeleted)
	}
	if m.TasksCompleted != 1 {
		t.Errorf("expected 1 completion, got %d", m.TasksCompleted)
	}
	if m.RevisionsOpened != 1 {
		t.Errorf("expected 1 revision, got %d", m.RevisionsOpened)
	}
	if m.StatusChanges["completed"] != 1 || m.StatusChanges["revision"] != 1 {
		t.Errorf("unexpected status change counts: %v", m.StatusChanges)
	}
	if m.Pushes != 1 || m.Pulls != 1 {
		t.Errorf("expected 1 push and 1 pull, got %d/%d", m.Pushes, m.Pulls)
	}
	if m.EventCount != 7 {
		t.Errorf("expected 7 events, got %d", m.EventCount)
	}
	if m.OldestEvent == nil || m.NewestEvent == nil {
		t.Fatal("expected oldest and newest event times")
	}
	if m.NewestEvent.Before(*m.OldestEvent) {
		t.Errorf("newest event precedes oldest")
	}
}

func TestMetricsCalculateSinceCutoff(t *testing.T) {
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"), "device-1")
	if err != nil {
		t.Fatalf("opening event log: %v", err)
	}
	defer log.Close()

	log.LogEvent("task.created", nil)

	m, err := NewMetricsCalculator(log).Calculate(time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if m.EventCount != 0 {
		t.Errorf("expected no events past the cutoff, got %d", m.EventCount)
	}
}
