package observability

import (
	"fmt"
	"time"
)

// Metrics aggregates board activity derived from the event log.
type Metrics struct {
	TasksCreated    int            `json:"tasks_created"`
	TasksDeleted    int            `json:"tasks_deleted"`
	StatusChanges   map[string]int `json:"status_changes"`
	TasksCompleted  int            `json:"tasks_completed"`
	RevisionsOpened int            `json:"revisions_opened"`
	Pushes          int            `json:"pushes"`
	Pulls           int            `json:"pulls"`
	EventCount      int            `json:"event_count"`
	OldestEvent     *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent     *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives activity metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator reading from the given
// EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		StatusChanges: make(map[string]int),
	}
	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "task.created":
			m.TasksCreated++
		case "task.deleted":
			m.TasksDeleted++
		case "task.status_changed":
			to, _ := event.Data["to"].(string)
			if to != "" {
				m.StatusChanges[to]++
			}
			switch to {
			case "completed":
				m.TasksCompleted++
			case "revision":
				m.RevisionsOpened++
			}
		case "sync.push":
			m.Pushes++
		case "sync.pull":
			m.Pulls++
		}
	}

	return m, nil
}
