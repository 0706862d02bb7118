// Package observability records board activity to an append-only JSONL
// event log and derives activity metrics from it.
package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Event is one logged board event, e.g. a task creation, a status change
// or a completed sync. Device identifies which client wrote it, so logs
// from several machines can be interleaved and still attributed.
type Event struct {
	Time   time.Time      `json:"time"`
	Device string         `json:"device"`
	Type   string         `json:"type"`
	Data   map[string]any `json:"data,omitempty"`
}

// EventFilter narrows a Read to events after a point in time or of one
// type. Zero values match everything.
type EventFilter struct {
	Since *time.Time
	Type  string
}

// EventLog appends and reads board events.
type EventLog interface {
	LogEvent(eventType string, data map[string]any) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// jsonlEventLog implements EventLog on an append-only JSONL file.
type jsonlEventLog struct {
	path   string
	device string
	now    func() time.Time

	mu   sync.Mutex
	file *os.File
}

// NewJSONLEventLog opens (creating if needed) the event log at path.
// Every appended event is stamped with the given device id.
func NewJSONLEventLog(path, deviceID string) (EventLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{
		path:   path,
		device: deviceID,
		now:    func() time.Time { return time.Now().UTC() },
		file:   f,
	}, nil
}

// LogEvent appends one JSON-encoded event followed by a newline.
func (l *jsonlEventLog) LogEvent(eventType string, data map[string]any) error {
	event := Event{
		Time:   l.now(),
		Device: l.device,
		Type:   eventType,
		Data:   data,
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	encoded = append(encoded, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.Write(encoded); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// Read scans the log line by line and returns the events matching the
// filter. Malformed lines are skipped.
func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		if matchesEventFilter(event, filter) {
			events = append(events, event)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}
	return events, nil
}

// Close closes the underlying log file.
func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}

func matchesEventFilter(event Event, filter EventFilter) bool {
	if filter.Since != nil && event.Time.Before(*filter.Since) {
		return false
	}
	if filter.Type != "" && event.Type != filter.Type {
		return false
	}
	return true
}
