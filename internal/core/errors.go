package core

import "errors"

// Sentinel errors for the reconciliation engine. Callers match them with
// errors.Is; the engine wraps them with operation context.
var (
	// ErrDuplicateID is returned by Create when the id is already present.
	// Rejected before any state mutation.
	ErrDuplicateID = errors.New("task id already exists")

	// ErrTaskNotFound is returned by mutations targeting an absent id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrIndexOutOfRange is returned by note/image removals with an index
	// outside the current sequence.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidTransition is returned by UpdateStatus for a move the
	// workflow state machine does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStorageQuota indicates the local slot rejected a write for lack of
	// space. Distinct from corruption so the UI can prompt for cleanup
	// instead of reporting a generic failure.
	ErrStorageQuota = errors.New("local storage quota exceeded")

	// ErrMalformedState indicates a persisted payload failed to parse as a
	// valid board state. Recovered by falling back to the empty state.
	ErrMalformedState = errors.New("persisted state is malformed")

	// ErrRemoteUnavailable indicates a network or auth failure talking to
	// the remote task table. Never rolls back local mutations.
	ErrRemoteUnavailable = errors.New("remote table unavailable")

	// ErrNotConfigured is reported by remote operations when no endpoint
	// and key have been supplied. Local-only operation is a fully
	// supported mode, so this is a condition, not a failure.
	ErrNotConfigured = errors.New("remote table not configured")
)
