package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/valter-silva-au/sockboard/internal/core"
	"github.com/valter-silva-au/sockboard/pkg/models"
)

// defaultPollInterval paces the change probe. Frequent enough to feel live
// on a shared board, sparse enough to stay within hosted rate limits.
const defaultPollInterval = 3 * time.Second

// fingerprintSource is the slice of core.TaskTable the notifier needs to
// detect changes.
type fingerprintSource interface {
	FetchAll(ctx context.Context) ([]models.Task, error)
}

// PollingNotifier detects remote table changes by periodically comparing a
// cheap fingerprint of the collection (row count plus newest modification
// time). It implements core.ChangeNotifier.
type PollingNotifier struct {
	table    fingerprintSource
	interval time.Duration

	mu     sync.Mutex
	active *pollSubscription
}

// NewPollingNotifier creates a notifier probing table at the default
// interval.
func NewPollingNotifier(table fingerprintSource) *PollingNotifier {
	return NewPollingNotifierWithInterval(table, defaultPollInterval)
}

// NewPollingNotifierWithInterval creates a notifier with an explicit probe
// interval.
func NewPollingNotifierWithInterval(table fingerprintSource, interval time.Duration) *PollingNotifier {
	return &PollingNotifier{table: table, interval: interval}
}

// Subscribe starts the probe loop and invokes onChange whenever the remote
// fingerprint moves. Only one subscription is live at a time; subscribing
// again tears down the previous loop first.
func (n *PollingNotifier) Subscribe(onChange func()) (core.ChangeSubscription, error) {
	if n.table == nil {
		return nil, fmt.Errorf("subscribing to changes: no remote table")
	}

	n.mu.Lock()
	if n.active != nil {
		n.active.stop()
	}
	sub := &pollSubscription{
		notifier: n,
		done:     make(chan struct{}),
	}
	n.active = sub
	n.mu.Unlock()

	go sub.run(onChange)
	return sub, nil
}

type pollSubscription struct {
	notifier *PollingNotifier
	done     chan struct{}
	once     sync.Once
}

func (s *pollSubscription) run(onChange func()) {
	last, known := s.fingerprint()

	ticker := time.NewTicker(s.notifier.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			current, ok := s.fingerprint()
			if !ok {
				continue
			}
			if !known {
				last, known = current, true
				continue
			}
			if current != last {
				last = current
				onChange()
			}
		}
	}
}

type tableFingerprint struct {
	count  int
	newest time.Time
}

func (s *pollSubscription) fingerprint() (tableFingerprint, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.notifier.interval)
	defer cancel()

	tasks, err := s.notifier.table.FetchAll(ctx)
	if err != nil {
		return tableFingerprint{}, false
	}

	fp := tableFingerprint{count: len(tasks)}
	for _, task := range tasks {
		if mod := task.ModTime(); mod.After(fp.newest) {
			fp.newest = mod
		}
	}
	return fp, true
}

func (s *pollSubscription) stop() {
	s.once.Do(func() { close(s.done) })
}

// Unsubscribe stops the probe loop. Safe to call more than once.
func (s *pollSubscription) Unsubscribe() {
	s.stop()

	s.notifier.mu.Lock()
	if s.notifier.active == s {
		s.notifier.active = nil
	}
	s.notifier.mu.Unlock()
}
