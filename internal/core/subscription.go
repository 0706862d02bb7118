package core

import (
	"context"
	"fmt"
	"time"
)

// EnableRealtimeSync opens the change-notification subscription. The engine
// owns at most one live subscription: enabling while one is open closes the
// old one first, making enable idempotent.
//
// Notifications carry no payload, so each one triggers a debounced
// pull-and-merge. Because the merge resolves conflicts by timestamp, the
// arrival order of notifications relative to local pushes does not matter.
func (e *Engine) EnableRealtimeSync() error {
	if e.table == nil || e.notifier == nil {
		return ErrNotConfigured
	}

	e.DisableRealtimeSync()

	sub, err := e.notifier.Subscribe(e.onRemoteChange)
	if err != nil {
		return fmt.Errorf("enabling realtime sync: %w: %w", ErrRemoteUnavailable, err)
	}

	e.mu.Lock()
	e.subscription = sub
	e.mu.Unlock()

	e.logEvent("sync.realtime_enabled", nil)
	return nil
}

// DisableRealtimeSync closes the subscription if one is open. Calling it
// when none is open is a no-op, not an error.
func (e *Engine) DisableRealtimeSync() {
	e.mu.Lock()
	sub := e.subscription
	e.subscription = nil
	if e.realtimeTimer != nil {
		e.realtimeTimer.Stop()
		e.realtimeTimer = nil
	}
	e.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
		e.logEvent("sync.realtime_disabled", nil)
	}
}

// RealtimeEnabled reports whether a subscription is currently open.
func (e *Engine) RealtimeEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.subscription != nil
}

// onRemoteChange coalesces notification bursts with a trailing-edge timer,
// then pulls and merges. A pull, never a blind overwrite: a remote change
// arriving mid-edit must not clobber local state the user has not pushed.
func (e *Engine) onRemoteChange() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.subscription == nil || e.closed {
		return
	}

	if e.realtimeTimer != nil {
		e.realtimeTimer.Stop()
	}
	e.realtimeTimer = time.AfterFunc(e.realtimeDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		_ = e.Pull(ctx)
	})
}
