package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/valter-silva-au/sockboard/pkg/models"
)

type fakeSource struct {
	mu    sync.Mutex
	tasks []models.Task
}

func (s *fakeSource) FetchAll(ctx context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Task(nil), s.tasks...), nil
}

func (s *fakeSource) set(tasks []models.Task) {
	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
}

func TestPollingNotifierFiresOnChange(t *testing.T) {
	now := time.Now().UTC()
	source := &fakeSource{tasks: []models.Task{{ID: "SK-1", UpdatedAt: now}}}
	notifier := NewPollingNotifierWithInterval(source, 10*time.Millisecond)

	changed := make(chan struct{}, 1)
	sub, err := notifier.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	// Let the loop take its baseline before mutating.
	time.Sleep(30 * time.Millisecond)
	source.set([]models.Task{
		{ID: "SK-1", UpdatedAt: now},
		{ID: "SK-2", UpdatedAt: now.Add(time.Minute)},
	})

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier never fired after the table changed")
	}
}

func TestPollingNotifierQuietWhenUnchanged(t *testing.T) {
	source := &fakeSource{tasks: []models.Task{{ID: "SK-1", UpdatedAt: time.Now().UTC()}}}
	notifier := NewPollingNotifierWithInterval(source, 10*time.Millisecond)

	fired := make(chan struct{}, 8)
	sub, err := notifier.Subscribe(func() { fired <- struct{}{} })
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	time.Sleep(100 * time.Millisecond)
	if len(fired) != 0 {
		t.Errorf("notifier fired %d times with no changes", len(fired))
	}
}

func TestPollingNotifierUnsubscribeStops(t *testing.T) {
	now := time.Now().UTC()
	source := &fakeSource{tasks: nil}
	notifier := NewPollingNotifierWithInterval(source, 10*time.Millisecond)

	fired := make(chan struct{}, 8)
	sub, err := notifier.Subscribe(func() { fired <- struct{}{} })
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	time.Sleep(30 * time.Millisecond)
	sub.Unsubscribe()
	sub.Unsubscribe()

	source.set([]models.Task{{ID: "SK-9", UpdatedAt: now}})
	time.Sleep(100 * time.Millisecond)
	if len(fired) != 0 {
		t.Errorf("notifier fired after unsubscribe")
	}
}
