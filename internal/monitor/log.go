package monitor

import "sync"

// EventLog is an append-only, in-memory sequence of events for one kind.
// Index order is append order. The zero value is ready to use.
type EventLog struct {
	mu     sync.Mutex
	events []Event
}

// Append adds one event at the tail.
func (l *EventLog) Append(e Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

// Len reports the current number of events.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Snapshot atomically reads the log length and the events at indices
// [min(cursor, length), length). The returned slice is capped so later
// appends never alias into it; events themselves are immutable. A cursor
// at or beyond the length yields an empty slice, never an error.
func (l *EventLog) Snapshot(cursor int) ([]Event, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := len(l.events)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > total {
		cursor = total
	}
	return l.events[cursor:total:total], total
}
