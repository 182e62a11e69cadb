// Package activity keeps a lightweight append-only journal of engine runs so
// scrape and posting history survives across invocations. Entries live in a
// single JSON array file next to the engine's other outputs.
package activity

import (
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// Event is one recorded engine action.
type Event struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Data      map[string]string `json:"data,omitempty"`
}

// Log is a file-backed journal. Safe for concurrent use within one process;
// concurrent writers across processes are not coordinated.
type Log struct {
	mu   sync.Mutex
	path string
}

// NewLog opens (or lazily creates) the journal at path.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Append records an event of the given type. The event id and timestamp are
// assigned here.
func (l *Log) Append(eventType string, data map[string]string) (Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	events, err := l.read()
	if err != nil {
		return Event{}, err
	}

	ev := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	events = append(events, ev)

	out, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return Event{}, errors.Wrap(err, "encoding activity log")
	}
	if err := os.WriteFile(l.path, out, 0o644); err != nil {
		return Event{}, errors.Wrap(err, "writing activity log")
	}
	return ev, nil
}

// Events returns every recorded event in append order. A missing file is an
// empty journal, not an error.
func (l *Log) Events() ([]Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

// Summary counts events by type.
func (l *Log) Summary() (map[string]int, error) {
	events, err := l.Events()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(events))
	for _, ev := range events {
		counts[ev.Type]++
	}
	return counts, nil
}

// Types returns the distinct event types in the journal, sorted.
func Types(events []Event) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, ev := range events {
		if _, ok := seen[ev.Type]; !ok {
			seen[ev.Type] = struct{}{}
			out = append(out, ev.Type)
		}
	}
	sort.Strings(out)
	return out
}

func (l *Log) read() ([]Event, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading activity log")
	}
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, errors.Wrapf(err, "parsing activity log %s", l.path)
	}
	return events, nil
}
