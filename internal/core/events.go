package core

import (
	"context"
	"time"

	"github.com/valter-silva-au/sockboard/pkg/models"
)

// StateStore is the subset of the local persistence adapter the engine
// needs. Defining it here keeps core independent of the storage package.
type StateStore interface {
	Load() (models.BoardState, error)
	Save(state models.BoardState) error
}

// TaskTable is the remote task table contract: one row per task keyed by
// id, with the full serialized task as the row payload. Implementations
// live in the integration package (hosted PostgREST, local SQLite).
type TaskTable interface {
	// FetchAll returns every task in the table. An empty table yields an
	// empty slice, not an error.
	FetchAll(ctx context.Context) ([]models.Task, error)

	// UpsertTasks inserts or replaces rows by id. Last writer wins at the
	// row level; there is no optimistic-concurrency check.
	UpsertTasks(ctx context.Context, tasks []models.Task) error

	// ListIDs returns the ids currently present in the table.
	ListIDs(ctx context.Context) ([]string, error)

	// DeleteIDs removes the given rows. Unknown ids are ignored.
	DeleteIDs(ctx context.Context, ids []string) error
}

// ChangeSubscription is a live change-notification subscription. The engine
// owns at most one at a time.
type ChangeSubscription interface {
	Unsubscribe()
}

// ChangeNotifier delivers push notifications that the remote table changed.
// Notifications carry no payload; the subscriber must re-fetch. Callbacks
// are genuinely asynchronous and may arrive out of order relative to local
// pushes.
type ChangeNotifier interface {
	Subscribe(onChange func()) (ChangeSubscription, error)
}

// EventLogger is the subset of the observability event log the engine
// writes to.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// SyncState is the coarse synchronization status surfaced to the
// presentation layer.
type SyncState string

const (
	SyncIdle    SyncState = "idle"
	SyncSyncing SyncState = "syncing"
	SyncError   SyncState = "error"
)

// SyncStatus is delivered to sync-status listeners. Err is set only when
// State is SyncError.
type SyncStatus struct {
	State SyncState
	Err   error
	At    time.Time
}

// OnCollectionChanged registers a callback invoked after every change to
// the in-memory collection, whether from a local mutation or a merge of
// remote data. Callbacks run outside the engine lock and must not block.
func (e *Engine) OnCollectionChanged(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.collectionListeners = append(e.collectionListeners, fn)
}

// OnSyncStatusChanged registers a callback for push/pull lifecycle changes.
// Sync failures are reported here, never through the mutation call that
// scheduled the sync.
func (e *Engine) OnSyncStatusChanged(fn func(SyncStatus)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncListeners = append(e.syncListeners, fn)
}

func (e *Engine) notifyCollectionChanged() {
	e.mu.Lock()
	listeners := make([]func(), len(e.collectionListeners))
	copy(listeners, e.collectionListeners)
	e.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (e *Engine) notifySyncStatus(state SyncState, err error) {
	e.mu.Lock()
	listeners := make([]func(SyncStatus), len(e.syncListeners))
	copy(listeners, e.syncListeners)
	at := e.now()
	e.mu.Unlock()

	status := SyncStatus{State: state, Err: err, At: at}
	for _, fn := range listeners {
		fn(status)
	}
}

// logEvent writes to the event log when one is attached. Logging is
// best-effort and never fails the operation that triggered it.
func (e *Engine) logEvent(eventType string, data map[string]any) {
	if e.events == nil {
		return
	}
	_ = e.events.LogEvent(eventType, data)
}
