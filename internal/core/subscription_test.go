package core

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/valter-silva-au/sockboard/pkg/models"
)

type fakeSubscription struct {
	mu           sync.Mutex
	unsubscribed int
}

func (s *fakeSubscription) Unsubscribe() {
	s.mu.Lock()
	s.unsubscribed++
	s.mu.Unlock()
}

func (s *fakeSubscription) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsubscribed
}

type fakeNotifier struct {
	mu       sync.Mutex
	onChange func()
	subs     []*fakeSubscription
	err      error
}

func (n *fakeNotifier) Subscribe(onChange func()) (ChangeSubscription, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return nil, n.err
	}
	n.onChange = onChange
	sub := &fakeSubscription{}
	n.subs = append(n.subs, sub)
	return sub, nil
}

func (n *fakeNotifier) fire() {
	n.mu.Lock()
	fn := n.onChange
	n.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func TestEnableRealtimeRequiresConfiguration(t *testing.T) {
	engine := newTestEngine(t, EngineConfig{})
	if err := engine.EnableRealtimeSync(); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	engine = newTestEngine(t, EngineConfig{Table: newFakeTable()})
	if err := engine.EnableRealtimeSync(); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured without a notifier, got %v", err)
	}
}

func TestEnableRealtimeIsIdempotent(t *testing.T) {
	notifier := &fakeNotifier{}
	engine := newTestEngine(t, EngineConfig{Table: newFakeTable(), Notifier: notifier, PushDelay: time.Hour})

	if err := engine.EnableRealtimeSync(); err != nil {
		t.Fatalf("EnableRealtimeSync failed: %v", err)
	}
	if err := engine.EnableRealtimeSync(); err != nil {
		t.Fatalf("second EnableRealtimeSync failed: %v", err)
	}

	notifier.mu.Lock()
	subs := len(notifier.subs)
	notifier.mu.Unlock()
	if subs != 2 {
		t.Fatalf("expected 2 subscribe calls, got %d", subs)
	}
	// The first subscription must have been closed when the second opened.
	if notifier.subs[0].count() == 0 {
		t.Error("previous subscription left open")
	}
	if notifier.subs[1].count() != 0 {
		t.Error("live subscription was closed")
	}
	if !engine.RealtimeEnabled() {
		t.Error("engine reports realtime disabled")
	}
}

func TestDisableRealtimeIsNoopWhenOff(t *testing.T) {
	engine := newTestEngine(t, EngineConfig{})
	engine.DisableRealtimeSync()
	if engine.RealtimeEnabled() {
		t.Error("engine reports realtime enabled")
	}
}

func TestSubscribeFailure(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("channel refused")}
	engine := newTestEngine(t, EngineConfig{Table: newFakeTable(), Notifier: notifier})

	err := engine.EnableRealtimeSync()
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("expected ErrRemoteUnavailable, got %v", err)
	}
	if engine.RealtimeEnabled() {
		t.Error("failed enable left realtime marked on")
	}
}

func TestRemoteChangeTriggersDebouncedPull(t *testing.T) {
	now := time.Now().UTC()
	table := newFakeTable()
	table.rows["remote-1"] = models.Task{ID: "remote-1", Status: models.StatusSampling, CreatedAt: now, UpdatedAt: now}
	notifier := &fakeNotifier{}

	engine := newTestEngine(t, EngineConfig{
		Table:         table,
		Notifier:      notifier,
		PushDelay:     time.Hour,
		RealtimeDelay: 20 * time.Millisecond,
	})

	if err := engine.EnableRealtimeSync(); err != nil {
		t.Fatalf("EnableRealtimeSync failed: %v", err)
	}

	// A burst of notifications coalesces into a single pull.
	notifier.fire()
	notifier.fire()
	notifier.fire()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := engine.Get("remote-1"); err == nil {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("notification never resulted in a pull")
}

func TestDisableRealtimeStopsPendingPull(t *testing.T) {
	now := time.Now().UTC()
	table := newFakeTable()
	table.rows["remote-1"] = models.Task{ID: "remote-1", CreatedAt: now, UpdatedAt: now}
	notifier := &fakeNotifier{}

	engine := newTestEngine(t, EngineConfig{
		Table:         table,
		Notifier:      notifier,
		PushDelay:     time.Hour,
		RealtimeDelay: 50 * time.Millisecond,
	})

	if err := engine.EnableRealtimeSync(); err != nil {
		t.Fatalf("EnableRealtimeSync failed: %v", err)
	}
	notifier.fire()
	engine.DisableRealtimeSync()

	time.Sleep(150 * time.Millisecond)
	if _, err := engine.Get("remote-1"); err == nil {
		t.Error("pending pull ran after disable")
	}
}
