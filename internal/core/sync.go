package core

import (
	"context"
	"fmt"
	"time"

	"github.com/valter-silva-au/sockboard/pkg/models"
)

// Push upserts the full current collection into the remote table and then
// propagates local deletes by removing remote rows absent from the local id
// set. Safe to call repeatedly; concurrent calls are serialized. Row-level
// last-writer-wins: two devices pushing different edits to the same task in
// the same window lose one side's edit, a documented limitation of the
// timestamp-based design.
//
// Delete propagation only runs once this engine has completed a full pull,
// so a push can never delete remote rows the client has not yet seen.
func (e *Engine) Push(ctx context.Context) error {
	if e.table == nil {
		return ErrNotConfigured
	}

	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	e.mu.Lock()
	tasks := make([]models.Task, len(e.tasks))
	copy(tasks, e.tasks)
	localIDs := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		localIDs[t.ID] = true
	}
	deletesAllowed := e.fullPullDone
	e.mu.Unlock()

	e.notifySyncStatus(SyncSyncing, nil)

	if len(tasks) > 0 {
		if err := e.table.UpsertTasks(ctx, tasks); err != nil {
			wrapped := fmt.Errorf("pushing %d tasks: %w: %w", len(tasks), ErrRemoteUnavailable, err)
			e.notifySyncStatus(SyncError, wrapped)
			return wrapped
		}
	}

	if deletesAllowed {
		if err := e.deleteStaleRemote(ctx, localIDs); err != nil {
			e.notifySyncStatus(SyncError, err)
			return err
		}
	}

	e.logEvent("sync.push", map[string]any{"tasks": len(tasks), "deletes_allowed": deletesAllowed})
	e.notifySyncStatus(SyncIdle, nil)
	return nil
}

// deleteStaleRemote removes remote rows whose id is not in the local set.
func (e *Engine) deleteStaleRemote(ctx context.Context, localIDs map[string]bool) error {
	remoteIDs, err := e.table.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing remote ids: %w: %w", ErrRemoteUnavailable, err)
	}

	var stale []string
	for _, id := range remoteIDs {
		if !localIDs[id] {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	if err := e.table.DeleteIDs(ctx, stale); err != nil {
		return fmt.Errorf("deleting %d stale remote rows: %w: %w", len(stale), ErrRemoteUnavailable, err)
	}
	e.logEvent("sync.tombstone", map[string]any{"deleted": len(stale)})
	return nil
}

// Pull fetches the full remote table and merges it into the in-memory
// collection. The merge never deletes: tasks known locally but absent
// remotely are kept. An empty remote table is a valid first-run result. On
// transport failure the in-memory collection is untouched and the failure
// is reported, both as the return value and on the sync-status channel.
func (e *Engine) Pull(ctx context.Context) error {
	if e.table == nil {
		return ErrNotConfigured
	}

	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	e.notifySyncStatus(SyncSyncing, nil)

	remote, err := e.table.FetchAll(ctx)
	if err != nil {
		wrapped := fmt.Errorf("pulling tasks: %w: %w", ErrRemoteUnavailable, err)
		e.notifySyncStatus(SyncError, wrapped)
		return wrapped
	}

	e.mu.Lock()
	e.tasks = MergeTasks(e.tasks, remote)
	e.index = make(map[string]int, len(e.tasks))
	for i, t := range e.tasks {
		e.index[t.ID] = i
	}
	e.fullPullDone = true
	saveErr := e.commitLocked()
	e.mu.Unlock()

	e.logEvent("sync.pull", map[string]any{"remote_tasks": len(remote)})
	e.notifyCollectionChanged()
	if saveErr != nil {
		e.notifySyncStatus(SyncError, saveErr)
		return fmt.Errorf("persisting pulled state: %w", saveErr)
	}
	e.notifySyncStatus(SyncIdle, nil)
	return nil
}

// Sync performs a manual resync: a pull-and-merge followed by a push, so
// both sides converge on the merged collection.
func (e *Engine) Sync(ctx context.Context) error {
	if err := e.Pull(ctx); err != nil {
		return err
	}
	return e.Push(ctx)
}

// Configured reports whether a remote table is attached.
func (e *Engine) Configured() bool {
	return e.table != nil
}

// schedulePush arms (or re-arms) the trailing-edge push timer. Rapid
// mutations keep pushing the deadline back so a burst of edits results in a
// single request reflecting the final in-memory state.
func (e *Engine) schedulePush() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.table == nil || e.closed {
		return
	}

	if e.pushTimer != nil {
		e.pushTimer.Stop()
	}
	e.pushTimer = time.AfterFunc(e.pushDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		// Failure is reported on the sync-status channel; the next
		// mutation or a manual resync retries.
		_ = e.Push(ctx)
	})
}

// pushTimeout bounds background pushes. Matches the transport timeout used
// by the table clients.
const pushTimeout = 60 * time.Second
