package core

import "github.com/valter-silva-au/sockboard/pkg/models"

// MergeTasks reconciles an incoming task set (a freshly loaded persisted or
// remote snapshot) into the local set. The result is the union of both sets
// keyed by id with per-task last-writer-wins conflict resolution:
//
//   - an id present in only one input is kept unchanged;
//   - an id present in both keeps whichever version has the strictly later
//     modification time (UpdatedAt, falling back to CreatedAt), with ties
//     favouring the local version.
//
// Merge never deletes: a task absent from one side is always kept. Only an
// explicit Delete followed by a Push removes data. The function is pure;
// its inputs are not modified and local ordering is preserved, with tasks
// new to the local set appended in incoming order.
func MergeTasks(local, incoming []models.Task) []models.Task {
	merged := make([]models.Task, len(local))
	copy(merged, local)

	index := make(map[string]int, len(local))
	for i, t := range local {
		index[t.ID] = i
	}

	for _, in := range incoming {
		i, known := index[in.ID]
		if !known {
			index[in.ID] = len(merged)
			merged = append(merged, in)
			continue
		}
		if in.ModTime().After(merged[i].ModTime()) {
			merged[i] = in
		}
	}

	return merged
}

// MergeStates reconciles an incoming board state into the local one. The
// task collection goes through MergeTasks; the scalar metadata uses a
// presence-preferring merge (an unset incoming field keeps the local value).
// No generic deep-merge over arbitrary shapes is performed.
func MergeStates(local, incoming models.BoardState) models.BoardState {
	out := local
	out.Version = models.StateVersion
	out.Tasks = MergeTasks(local.Tasks, incoming.Tasks)
	if incoming.LastSync.After(local.LastSync) {
		out.LastSync = incoming.LastSync
	}
	if incoming.WarningDays > 0 && local.WarningDays == 0 {
		out.WarningDays = incoming.WarningDays
	}
	return out
}
