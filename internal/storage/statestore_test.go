package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/valter-silva-au/sockboard/internal/core"
	"github.com/valter-silva-au/sockboard/pkg/models"
)

func TestStateStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStateStore(dir)

	now := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	state := models.DefaultBoardState()
	state.Tasks = []models.Task{
		{
			ID:        "SK-100",
			Specs:     models.TaskSpecs{Size: "39-42", Color: "navy"},
			Status:    models.StatusSampling,
			Priority:  models.PriorityHigh,
			Notes:     []string{"double stitch heel"},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	state.LastSync = now
	state.WarningDays = 5

	if err := store.Save(state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(loaded.Tasks))
	}
	got := loaded.Tasks[0]
	if got.ID != "SK-100" || got.Status != models.StatusSampling {
		t.Errorf("task did not round-trip: %+v", got)
	}
	if !got.CreatedAt.Equal(now) || !got.UpdatedAt.Equal(now) {
		t.Errorf("timestamps did not round-trip: %+v", got)
	}
	if loaded.WarningDays != 5 {
		t.Errorf("expected warning days 5, got %d", loaded.WarningDays)
	}
	if !loaded.LastSync.Equal(now) {
		t.Errorf("expected last sync %v, got %v", now, loaded.LastSync)
	}
}

func TestStateStoreLoadMissingFile(t *testing.T) {
	store := NewStateStore(t.TempDir())

	state, err := store.Load()
	if err != nil {
		t.Fatalf("expected no error for a missing slot, got %v", err)
	}
	if len(state.Tasks) != 0 {
		t.Errorf("expected empty board, got %d tasks", len(state.Tasks))
	}
	if state.WarningDays != models.DefaultWarningDays {
		t.Errorf("expected default warning days, got %d", state.WarningDays)
	}
}

func TestStateStoreLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, stateFileName), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("writing corrupt slot: %v", err)
	}
	store := NewStateStore(dir)

	state, err := store.Load()
	if !errors.Is(err, core.ErrMalformedState) {
		t.Fatalf("expected malformed state error, got %v", err)
	}
	if len(state.Tasks) != 0 {
		t.Errorf("expected fallback to empty board, got %d tasks", len(state.Tasks))
	}
}

func TestStateStoreLoadVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, stateFileName), []byte(`{"version":99,"tasks":[]}`), 0o600); err != nil {
		t.Fatalf("writing slot: %v", err)
	}
	store := NewStateStore(dir)

	if _, err := store.Load(); !errors.Is(err, core.ErrMalformedState) {
		t.Fatalf("expected malformed state error for version mismatch, got %v", err)
	}
}

func TestStateStoreQuotaLeavesSlotIntact(t *testing.T) {
	dir := t.TempDir()
	store := NewStateStoreWithQuota(dir, 64)

	small := models.DefaultBoardState()
	if err := NewStateStore(dir).Save(small); err != nil {
		t.Fatalf("seeding slot: %v", err)
	}

	big := models.DefaultBoardState()
	big.Tasks = []models.Task{{ID: "SK-1", Notes: []string{"a very long note that pushes the payload well past the tiny quota"}}}
	err := store.Save(big)
	if !errors.Is(err, core.ErrStorageQuota) {
		t.Fatalf("expected storage quota error, got %v", err)
	}

	loaded, err := NewStateStore(dir).Load()
	if err != nil {
		t.Fatalf("Load after failed save: %v", err)
	}
	if len(loaded.Tasks) != 0 {
		t.Errorf("failed save must not touch the slot, got %d tasks", len(loaded.Tasks))
	}
}
