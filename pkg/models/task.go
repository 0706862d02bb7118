// Package models defines the shared data types for sockboard: the sampling
// task record, the persisted board state, filters, and configuration.
//
// JSON tags use the wire names of the persisted payload so that local
// snapshots and remote rows written by any sockboard client (or the original
// web client) stay interchangeable.
package models

import "time"

// TaskStatus represents the current workflow state of a sampling task.
type TaskStatus string

const (
	StatusPreparing      TaskStatus = "preparing"
	StatusConnecting     TaskStatus = "connecting"
	StatusMaterialPrep   TaskStatus = "material_prep"
	StatusSampling       TaskStatus = "sampling"
	StatusPostProcessing TaskStatus = "post_processing"
	StatusCompleted      TaskStatus = "completed"
	StatusRevision       TaskStatus = "revision"
)

// Priority represents the urgency rank of a task.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// TaskSpecs holds the structured sample attributes. The reconciliation
// engine treats them as opaque fields.
type TaskSpecs struct {
	Size  string `json:"size" yaml:"size"`
	Color string `json:"color" yaml:"color"`
	Other string `json:"other,omitempty" yaml:"other,omitempty"`
}

// TaskImage is one attached sample image. URL may point at remote object
// storage or hold an embedded data URI.
type TaskImage struct {
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Task represents one sampling job, the unit of synchronization.
// ID is user-chosen, globally unique, and immutable. UpdatedAt is the
// authority for conflict resolution and must be refreshed on every mutation.
type Task struct {
	ID             string      `json:"id" yaml:"id"`
	Specs          TaskSpecs   `json:"specs" yaml:"specs"`
	Status         TaskStatus  `json:"status" yaml:"status"`
	Priority       Priority    `json:"priority" yaml:"priority"`
	Deadline       time.Time   `json:"deadline,omitzero" yaml:"deadline,omitempty"`
	Notes          []string    `json:"notes" yaml:"notes"`
	ProcessNotes   []string    `json:"processNotes" yaml:"process_notes"`
	Images         []TaskImage `json:"images" yaml:"images"`
	CreatedAt      time.Time   `json:"createdAt" yaml:"created_at"`
	UpdatedAt      time.Time   `json:"updatedAt" yaml:"updated_at"`
	HasBeenRevised bool        `json:"hasBeenRevised,omitempty" yaml:"has_been_revised,omitempty"`
}

// ModTime returns the timestamp used for last-writer-wins conflict
// resolution: UpdatedAt, falling back to CreatedAt when unset.
func (t Task) ModTime() time.Time {
	if t.UpdatedAt.IsZero() {
		return t.CreatedAt
	}
	return t.UpdatedAt
}

// TimeRange selects a rolling window relative to a task's deadline.
type TimeRange string

const (
	RangeWeek    TimeRange = "week"
	RangeMonth   TimeRange = "month"
	RangeQuarter TimeRange = "quarter"
	RangeYear    TimeRange = "year"
	RangeAll     TimeRange = "all"
)

// TaskFilter specifies criteria for filtering the board. Empty fields match
// everything; specified fields use AND logic.
type TaskFilter struct {
	Status    TaskStatus
	Priority  Priority
	TimeRange TimeRange
	Search    string
}

// TaskUpdate carries a partial update for an existing task. Zero-value
// fields are left unchanged; Status changes go through the engine's
// UpdateStatus so the workflow state machine is enforced.
type TaskUpdate struct {
	Specs    *TaskSpecs
	Priority Priority
	Deadline *time.Time
}

// ValidStatuses is the closed set of workflow states.
var ValidStatuses = map[TaskStatus]bool{
	StatusPreparing:      true,
	StatusConnecting:     true,
	StatusMaterialPrep:   true,
	StatusSampling:       true,
	StatusPostProcessing: true,
	StatusCompleted:      true,
	StatusRevision:       true,
}

// ValidPriorities is the closed set of priority ranks.
var ValidPriorities = map[Priority]bool{
	PriorityUrgent: true,
	PriorityHigh:   true,
	PriorityNormal: true,
	PriorityLow:    true,
}
