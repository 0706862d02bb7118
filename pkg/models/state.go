package models

import "time"

// StateVersion is the schema version of the persisted board slot. Loaders
// must treat any other version as a first run rather than fail startup.
const StateVersion = 2

// BoardState is the full persisted application state: the task collection
// plus sync metadata, serialized to a single named slot.
type BoardState struct {
	Version     int       `json:"version" yaml:"version"`
	Tasks       []Task    `json:"tasks" yaml:"tasks"`
	LastSync    time.Time `json:"lastSync,omitzero" yaml:"last_sync,omitempty"`
	WarningDays int       `json:"warningDays" yaml:"warning_days"`
}

// DefaultWarningDays is the look-ahead window for deadline alerts when the
// user has not configured one.
const DefaultWarningDays = 3

// DefaultBoardState returns the well-defined empty state used on first run
// and whenever a persisted slot cannot be read.
func DefaultBoardState() BoardState {
	return BoardState{
		Version:     StateVersion,
		Tasks:       []Task{},
		WarningDays: DefaultWarningDays,
	}
}
