// Package core implements the reconciliation engine for the sampling task
// board: the in-memory task collection, its mutation API, the non-destructive
// merge algorithm, and the push/pull/realtime synchronization orchestration.
package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/valter-silva-au/sockboard/pkg/models"
)

const (
	// defaultPushDelay is the trailing-edge debounce for pushes scheduled by
	// local mutations, coalescing rapid-fire edits into one request.
	defaultPushDelay = 100 * time.Millisecond

	// defaultRealtimeDelay coalesces bursts of change notifications before
	// the pull-and-merge runs.
	defaultRealtimeDelay = time.Second
)

// EngineConfig carries the engine's dependencies. Store is required; Table
// and Notifier are nil in local-only mode; Events may be nil.
type EngineConfig struct {
	Store    StateStore
	Table    TaskTable
	Notifier ChangeNotifier
	Events   EventLogger

	// PushDelay and RealtimeDelay override the debounce intervals. Zero
	// means the default. Tests inject short values here.
	PushDelay     time.Duration
	RealtimeDelay time.Duration

	// Clock overrides the time source. Nil means time.Now in UTC.
	Clock func() time.Time
}

// Engine owns the in-memory task collection and is the only writer of the
// local slot and the remote table. Mutations are synchronous and optimistic:
// memory and the local store are updated immediately, and a debounced push
// propagates the change to the remote table without ever rolling back local
// state on failure.
type Engine struct {
	mu          sync.Mutex
	tasks       []models.Task
	index       map[string]int
	lastSync    time.Time
	warningDays int

	store    StateStore
	table    TaskTable
	notifier ChangeNotifier
	events   EventLogger
	now      func() time.Time

	pushDelay time.Duration
	pushTimer *time.Timer
	syncMu    sync.Mutex // serializes push/pull against each other

	// fullPullDone gates delete propagation on push: remote rows are only
	// tombstone-deleted after this engine has seen the complete remote set
	// once, so a partial or failed pull can never cause a push to delete
	// tasks this client never knew about.
	fullPullDone bool

	realtimeDelay time.Duration
	realtimeTimer *time.Timer
	subscription  ChangeSubscription

	collectionListeners []func()
	syncListeners       []func(SyncStatus)

	closed bool
}

// NewEngine creates an engine and hydrates it from the local store. A
// missing or unreadable slot hydrates to the empty default state; hydration
// never fails startup because of a bad payload.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("creating engine: state store is required")
	}

	e := &Engine{
		store:         cfg.Store,
		table:         cfg.Table,
		notifier:      cfg.Notifier,
		events:        cfg.Events,
		now:           cfg.Clock,
		pushDelay:     cfg.PushDelay,
		realtimeDelay: cfg.RealtimeDelay,
		index:         make(map[string]int),
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	if e.pushDelay <= 0 {
		e.pushDelay = defaultPushDelay
	}
	if e.realtimeDelay <= 0 {
		e.realtimeDelay = defaultRealtimeDelay
	}

	state, err := cfg.Store.Load()
	if err != nil {
		// Load already fell back to the default state; the error only says
		// why. Record it and keep going.
		e.logEvent("state.recovered", map[string]any{"reason": err.Error()})
		state = models.DefaultBoardState()
	}
	e.adoptStateLocked(state)

	return e, nil
}

// adoptStateLocked replaces the in-memory collection with the given state.
// Caller holds no lock during NewEngine; elsewhere e.mu must be held.
func (e *Engine) adoptStateLocked(state models.BoardState) {
	e.tasks = state.Tasks
	if e.tasks == nil {
		e.tasks = []models.Task{}
	}
	e.index = make(map[string]int, len(e.tasks))
	for i, t := range e.tasks {
		e.index[t.ID] = i
	}
	e.lastSync = state.LastSync
	e.warningDays = state.WarningDays
	if e.warningDays <= 0 {
		e.warningDays = models.DefaultWarningDays
	}
}

// Close releases the engine's resources: the realtime subscription and any
// pending push timer. Pending debounced pushes are dropped, not flushed.
func (e *Engine) Close() error {
	e.DisableRealtimeSync()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if e.pushTimer != nil {
		e.pushTimer.Stop()
		e.pushTimer = nil
	}
	return nil
}

// Tasks returns a snapshot of the collection in display (insertion) order.
func (e *Engine) Tasks() []models.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Task, len(e.tasks))
	copy(out, e.tasks)
	return out
}

// Get returns the task with the given id.
func (e *Engine) Get(id string) (models.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, ok := e.index[id]
	if !ok {
		return models.Task{}, fmt.Errorf("getting task %s: %w", id, ErrTaskNotFound)
	}
	return e.tasks[i], nil
}

// LastSync returns when the collection last reflected persisted state.
func (e *Engine) LastSync() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSync
}

// WarningDays returns the configured deadline look-ahead window.
func (e *Engine) WarningDays() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.warningDays
}

// Filtered returns the tasks matching the filter.
func (e *Engine) Filtered(filter models.TaskFilter) []models.Task {
	return FilterTasks(e.Tasks(), filter, e.now())
}

// Upcoming returns the non-completed tasks whose deadline falls within the
// warning window.
func (e *Engine) Upcoming() []models.Task {
	return UpcomingDeadlines(e.Tasks(), e.WarningDays(), e.now())
}

// Create adds a new task. The id must be unique against the current
// collection; CreatedAt/UpdatedAt are assigned by the engine. Empty status
// and priority default to preparing/normal.
func (e *Engine) Create(task models.Task) error {
	if task.ID == "" {
		return fmt.Errorf("creating task: id must not be empty")
	}
	if task.Status == "" {
		task.Status = models.StatusPreparing
	}
	if task.Priority == "" {
		task.Priority = models.PriorityNormal
	}
	if !models.ValidStatuses[task.Status] {
		return fmt.Errorf("creating task %s: invalid status %q", task.ID, task.Status)
	}
	if !models.ValidPriorities[task.Priority] {
		return fmt.Errorf("creating task %s: invalid priority %q", task.ID, task.Priority)
	}

	e.mu.Lock()
	if _, exists := e.index[task.ID]; exists {
		e.mu.Unlock()
		return fmt.Errorf("creating task %s: %w", task.ID, ErrDuplicateID)
	}

	now := e.now()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == models.StatusRevision {
		task.HasBeenRevised = true
	}
	if task.Notes == nil {
		task.Notes = []string{}
	}
	if task.ProcessNotes == nil {
		task.ProcessNotes = []string{}
	}
	if task.Images == nil {
		task.Images = []models.TaskImage{}
	}

	e.index[task.ID] = len(e.tasks)
	e.tasks = append(e.tasks, task)
	err := e.commitLocked()
	e.mu.Unlock()

	e.logEvent("task.created", map[string]any{"id": task.ID, "status": string(task.Status)})
	e.afterMutation()
	if err != nil {
		return fmt.Errorf("creating task %s: %w", task.ID, err)
	}
	return nil
}

// Update applies a partial update to an existing task. Absent fields are
// left unchanged. Status changes must go through UpdateStatus.
func (e *Engine) Update(id string, update models.TaskUpdate) error {
	err := e.mutateTask(id, func(task *models.Task) error {
		if update.Specs != nil {
			task.Specs = *update.Specs
		}
		if update.Priority != "" {
			if !models.ValidPriorities[update.Priority] {
				return fmt.Errorf("invalid priority %q", update.Priority)
			}
			task.Priority = update.Priority
		}
		if update.Deadline != nil {
			task.Deadline = *update.Deadline
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("updating task %s: %w", id, err)
	}
	e.logEvent("task.updated", map[string]any{"id": id})
	return nil
}

// UpdateStatus moves a task to a new workflow state, enforcing the
// transition rules. Entering revision marks the task as revised permanently.
func (e *Engine) UpdateStatus(id string, status models.TaskStatus) error {
	if !models.ValidStatuses[status] {
		return fmt.Errorf("updating status of %s: invalid status %q", id, status)
	}

	var from models.TaskStatus
	err := e.mutateTask(id, func(task *models.Task) error {
		from = task.Status
		if task.Status == status {
			return nil
		}
		if !CanTransition(task.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, task.Status, status)
		}
		task.Status = status
		if status == models.StatusRevision {
			task.HasBeenRevised = true
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("updating status of %s: %w", id, err)
	}
	e.logEvent("task.status_changed", map[string]any{
		"id": id, "from": string(from), "to": string(status),
	})
	return nil
}

// Delete removes a task. The removal is propagated to the remote table as a
// tombstone on the next push; there is no soft delete or undo.
func (e *Engine) Delete(id string) error {
	e.mu.Lock()
	i, ok := e.index[id]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("deleting task %s: %w", id, ErrTaskNotFound)
	}

	e.tasks = append(e.tasks[:i], e.tasks[i+1:]...)
	delete(e.index, id)
	for j := i; j < len(e.tasks); j++ {
		e.index[e.tasks[j].ID] = j
	}
	err := e.commitLocked()
	e.mu.Unlock()

	e.logEvent("task.deleted", map[string]any{"id": id})
	e.afterMutation()
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}

// AddNote appends a free-text note.
func (e *Engine) AddNote(id, note string) error {
	err := e.mutateTask(id, func(task *models.Task) error {
		task.Notes = append(task.Notes, note)
		return nil
	})
	if err != nil {
		return fmt.Errorf("adding note to %s: %w", id, err)
	}
	return nil
}

// RemoveNote removes the note at the given index. Indices assume the stable
// append-only ordering of the sequence.
func (e *Engine) RemoveNote(id string, index int) error {
	err := e.mutateTask(id, func(task *models.Task) error {
		if index < 0 || index >= len(task.Notes) {
			return fmt.Errorf("note %d: %w", index, ErrIndexOutOfRange)
		}
		task.Notes = append(task.Notes[:index], task.Notes[index+1:]...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("removing note from %s: %w", id, err)
	}
	return nil
}

// AddProcessNote appends a process (craft) note.
func (e *Engine) AddProcessNote(id, note string) error {
	err := e.mutateTask(id, func(task *models.Task) error {
		task.ProcessNotes = append(task.ProcessNotes, note)
		return nil
	})
	if err != nil {
		return fmt.Errorf("adding process note to %s: %w", id, err)
	}
	return nil
}

// RemoveProcessNote removes the process note at the given index.
func (e *Engine) RemoveProcessNote(id string, index int) error {
	err := e.mutateTask(id, func(task *models.Task) error {
		if index < 0 || index >= len(task.ProcessNotes) {
			return fmt.Errorf("process note %d: %w", index, ErrIndexOutOfRange)
		}
		task.ProcessNotes = append(task.ProcessNotes[:index], task.ProcessNotes[index+1:]...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("removing process note from %s: %w", id, err)
	}
	return nil
}

// AddImage appends an image reference.
func (e *Engine) AddImage(id string, image models.TaskImage) error {
	err := e.mutateTask(id, func(task *models.Task) error {
		task.Images = append(task.Images, image)
		return nil
	})
	if err != nil {
		return fmt.Errorf("adding image to %s: %w", id, err)
	}
	return nil
}

// RemoveImage removes the image at the given index.
func (e *Engine) RemoveImage(id string, index int) error {
	err := e.mutateTask(id, func(task *models.Task) error {
		if index < 0 || index >= len(task.Images) {
			return fmt.Errorf("image %d: %w", index, ErrIndexOutOfRange)
		}
		task.Images = append(task.Images[:index], task.Images[index+1:]...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("removing image from %s: %w", id, err)
	}
	return nil
}

// SetImageDescription replaces the description of the image at the given
// index.
func (e *Engine) SetImageDescription(id string, index int, description string) error {
	err := e.mutateTask(id, func(task *models.Task) error {
		if index < 0 || index >= len(task.Images) {
			return fmt.Errorf("image %d: %w", index, ErrIndexOutOfRange)
		}
		task.Images[index].Description = description
		return nil
	})
	if err != nil {
		return fmt.Errorf("describing image on %s: %w", id, err)
	}
	return nil
}

// SetWarningDays sets the deadline look-ahead window. Not a task mutation,
// but persisted alongside the collection.
func (e *Engine) SetWarningDays(days int) error {
	if days < 1 {
		return fmt.Errorf("setting warning days: must be at least 1, got %d", days)
	}
	e.mu.Lock()
	e.warningDays = days
	err := e.commitLocked()
	e.mu.Unlock()

	e.afterMutation()
	if err != nil {
		return fmt.Errorf("setting warning days: %w", err)
	}
	return nil
}

// Import merges an exported snapshot into the collection using the same
// non-destructive algorithm as a pull: nothing local is lost, and newer
// versions of shared ids win. Returns the number of tasks now on the board.
func (e *Engine) Import(state models.BoardState) (int, error) {
	e.mu.Lock()
	merged := MergeStates(e.boardStateLocked(), state)
	e.adoptStateLocked(merged)
	e.lastSync = e.now()
	err := e.commitLocked()
	count := len(e.tasks)
	e.mu.Unlock()

	e.logEvent("board.imported", map[string]any{"tasks": count})
	e.afterMutation()
	if err != nil {
		return count, fmt.Errorf("importing snapshot: %w", err)
	}
	return count, nil
}

// Export returns the current board state for snapshot export.
func (e *Engine) Export() models.BoardState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.boardStateLocked()
}

// mutateTask applies fn to the task with the given id under the lock,
// refreshes its UpdatedAt, commits, and schedules a push. Every mutation
// path funnels through here so realtime merges and user edits share one
// code path.
func (e *Engine) mutateTask(id string, fn func(*models.Task) error) error {
	e.mu.Lock()
	i, ok := e.index[id]
	if !ok {
		e.mu.Unlock()
		return ErrTaskNotFound
	}

	task := e.tasks[i]
	if err := fn(&task); err != nil {
		e.mu.Unlock()
		return err
	}
	task.UpdatedAt = e.now()
	e.tasks[i] = task
	err := e.commitLocked()
	e.mu.Unlock()

	e.afterMutation()
	return err
}

// boardStateLocked assembles the persistable state. e.mu must be held.
func (e *Engine) boardStateLocked() models.BoardState {
	tasks := make([]models.Task, len(e.tasks))
	copy(tasks, e.tasks)
	return models.BoardState{
		Version:     models.StateVersion,
		Tasks:       tasks,
		LastSync:    e.lastSync,
		WarningDays: e.warningDays,
	}
}

// commitLocked refreshes lastSync and writes through to the local store.
// A quota failure is returned to the caller but the in-memory mutation is
// kept: local memory is the source of truth for the current device, and the
// store guarantees the previous slot stays intact.
func (e *Engine) commitLocked() error {
	e.lastSync = e.now()
	return e.store.Save(e.boardStateLocked())
}

// afterMutation runs the post-mutation side effects outside the lock:
// collection-changed notification and the debounced push.
func (e *Engine) afterMutation() {
	e.notifyCollectionChanged()
	e.schedulePush()
}
