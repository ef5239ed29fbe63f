package analytics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/taghive/taghive/pkg/model"
)

// window is the rolling range used for the last24h count.
const window = 24 * time.Hour

// EventSource supplies the event log to aggregate over. Satisfied by
// storage.MemoryStore.
type EventSource interface {
	ListEvents() ([]*model.Event, error)
}

// Service computes aggregate views over the event collection on demand.
// Every call recomputes from the full log; nothing is cached between calls,
// so results always reflect the snapshot taken at call time.
type Service struct {
	events EventSource
}

// NewService creates an analytics service reading from the given source.
func NewService(events EventSource) *Service {
	return &Service{events: events}
}

// Overview contains the rolling counts served by the analytics endpoint.
type Overview struct {
	TotalEvents int            `json:"total_events"`
	Last24h     int            `json:"last24h"`
	ByEvent     map[string]int `json:"by_event"`
}

// Overview aggregates the event log in a single pass. last24h counts events
// whose timestamp parses to an instant within [now-24h, now]; events with
// unparsable timestamps are excluded from the window but still counted in
// total_events and by_event.
func (s *Service) Overview(now time.Time) (*Overview, error) {
	events, err := s.events.ListEvents()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	ov := &Overview{ByEvent: make(map[string]int)}
	cutoff := now.Add(-window)
	for _, ev := range events {
		ov.TotalEvents++
		ov.ByEvent[ev.Name]++
		if t, ok := ParseTimestamp(ev.TS); ok && !t.Before(cutoff) && !t.After(now) {
			ov.Last24h++
		}
	}
	return ov, nil
}

// TopEvent is an event name with its occurrence count.
type TopEvent struct {
	Name  string `json:"event"`
	Count int    `json:"count"`
}

// TopEvent returns the most frequent event name. Ties break in favor of the
// name seen first in ingest order, which keeps the result stable across
// calls. With no events it returns a zero-valued pair.
func (s *Service) TopEvent() (*TopEvent, error) {
	events, err := s.events.ListEvents()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	counts := make(map[string]int)
	var firstSeen []string
	for _, ev := range events {
		if _, ok := counts[ev.Name]; !ok {
			firstSeen = append(firstSeen, ev.Name)
		}
		counts[ev.Name]++
	}

	top := &TopEvent{}
	for _, name := range firstSeen {
		if counts[name] > top.Count {
			top.Name = name
			top.Count = counts[name]
		}
	}
	return top, nil
}

// Answer renders the chat-analysis reply: a single top-1 aggregation dressed
// as a sentence. The prompt is accepted for interface compatibility but does
// not steer the aggregation.
func (s *Service) Answer(prompt string) (string, error) {
	top, err := s.TopEvent()
	if err != nil {
		return "", err
	}
	if top.Count == 0 {
		return "No events have been ingested yet.", nil
	}
	return fmt.Sprintf("Across all ingested events, the most frequent event is %q with %d occurrences.", top.Name, top.Count), nil
}

// timestampLayouts are tried in order for textual timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp interprets an event timestamp. It accepts RFC 3339 and a
// few date/datetime layouts, plus unix epoch seconds or milliseconds as a
// bare number. Returns false for anything it cannot interpret.
func ParseTimestamp(ts string) (time.Time, bool) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}

	if n, err := strconv.ParseInt(ts, 10, 64); err == nil {
		// heuristic: values this large are epoch milliseconds
		if n > 1e12 {
			return time.UnixMilli(n), true
		}
		return time.Unix(n, 0), true
	}

	return time.Time{}, false
}
