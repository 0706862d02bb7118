package core

import (
	"testing"
	"time"

	"github.com/valter-silva-au/sockboard/pkg/models"
)

func taskAt(id string, updated time.Time) models.Task {
	return models.Task{
		ID:        id,
		CreatedAt: updated.Add(-time.Hour),
		UpdatedAt: updated,
	}
}

func TestMergeTasksUnion(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	local := []models.Task{taskAt("SK-1", now), taskAt("SK-2", now)}
	incoming := []models.Task{taskAt("SK-2", now), taskAt("SK-3", now)}

	merged := MergeTasks(local, incoming)
	if len(merged) != 3 {
		t.Fatalf("expected the union of ids, got %d tasks", len(merged))
	}
	// Local order preserved, new ids appended.
	if merged[0].ID != "SK-1" || merged[1].ID != "SK-2" || merged[2].ID != "SK-3" {
		t.Errorf("unexpected order: %v", ids(merged))
	}
}

func TestMergeTasksNewerIncomingWins(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	local := taskAt("SK-1", now)
	local.Specs.Color = "red"
	incoming := taskAt("SK-1", now.Add(time.Minute))
	incoming.Specs.Color = "blue"

	merged := MergeTasks([]models.Task{local}, []models.Task{incoming})
	if merged[0].Specs.Color != "blue" {
		t.Errorf("newer incoming version should win, got %s", merged[0].Specs.Color)
	}
}

func TestMergeTasksOlderIncomingLoses(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	local := taskAt("SK-1", now)
	local.Specs.Color = "red"
	incoming := taskAt("SK-1", now.Add(-time.Minute))
	incoming.Specs.Color = "blue"

	merged := MergeTasks([]models.Task{local}, []models.Task{incoming})
	if merged[0].Specs.Color != "red" {
		t.Errorf("older incoming version must lose, got %s", merged[0].Specs.Color)
	}
}

func TestMergeTasksTieKeepsLocal(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	local := taskAt("SK-1", now)
	local.Specs.Color = "red"
	incoming := taskAt("SK-1", now)
	incoming.Specs.Color = "blue"

	merged := MergeTasks([]models.Task{local}, []models.Task{incoming})
	if merged[0].Specs.Color != "red" {
		t.Errorf("equal timestamps must keep the local version, got %s", merged[0].Specs.Color)
	}
}

func TestMergeTasksFallsBackToCreatedAt(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	local := models.Task{ID: "SK-1", CreatedAt: now, Specs: models.TaskSpecs{Color: "red"}}
	incoming := models.Task{ID: "SK-1", CreatedAt: now.Add(time.Minute), Specs: models.TaskSpecs{Color: "blue"}}

	merged := MergeTasks([]models.Task{local}, []models.Task{incoming})
	if merged[0].Specs.Color != "blue" {
		t.Errorf("CreatedAt should decide when UpdatedAt is unset, got %s", merged[0].Specs.Color)
	}
}

func TestMergeTasksNeverDeletes(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	local := []models.Task{taskAt("SK-1", now), taskAt("SK-2", now)}

	merged := MergeTasks(local, nil)
	if len(merged) != 2 {
		t.Errorf("empty incoming set must not delete, got %d tasks", len(merged))
	}
}

func TestMergeTasksDoesNotMutateInputs(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	local := []models.Task{taskAt("SK-1", now)}
	incoming := []models.Task{taskAt("SK-1", now.Add(time.Minute))}
	incoming[0].Specs.Color = "blue"

	MergeTasks(local, incoming)
	if local[0].Specs.Color == "blue" {
		t.Error("merge mutated its local input")
	}
}

func TestMergeStates(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	local := models.BoardState{
		Version:     models.StateVersion,
		Tasks:       []models.Task{taskAt("SK-1", now)},
		LastSync:    now,
		WarningDays: 5,
	}
	incoming := models.BoardState{
		Version:     models.StateVersion,
		Tasks:       []models.Task{taskAt("SK-2", now)},
		LastSync:    now.Add(time.Hour),
		WarningDays: 9,
	}

	merged := MergeStates(local, incoming)
	if len(merged.Tasks) != 2 {
		t.Errorf("expected 2 tasks, got %d", len(merged.Tasks))
	}
	if !merged.LastSync.Equal(incoming.LastSync) {
		t.Errorf("later LastSync should win, got %v", merged.LastSync)
	}
	if merged.WarningDays != 5 {
		t.Errorf("set local WarningDays must be kept, got %d", merged.WarningDays)
	}
}

func ids(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
