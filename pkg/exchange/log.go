package exchange

import (
	"fmt"
	"sync"
)

// EventLog is the session-scoped, append-only store of raw exchange events.
// It is the only mutable state in the engine: the chain feeder appends on its
// delivery goroutine while API readers snapshot concurrently. Events are
// never mutated or removed for the life of the session; a reload swaps the
// whole log at once via ReplaceAll.
type EventLog struct {
	mu        sync.RWMutex
	placed    []OrderEvent
	cancelled []OrderEvent
	filled    []OrderEvent

	activity    []ActivityEvent // most-recent-first, bounded
	activityCap int
}

const DefaultActivityCap = 100

func NewEventLog(activityCap int) *EventLog {
	if activityCap <= 0 {
		activityCap = DefaultActivityCap
	}
	return &EventLog{activityCap: activityCap}
}

// Append adds one validated order event to the stream for kind, preserving
// arrival order. Duplicate delivery of the same id is tolerated here;
// classification is id-based, not count-based.
func (l *EventLog) Append(kind EventKind, ev OrderEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	switch kind {
	case KindPlaced:
		l.placed = append(l.placed, ev)
	case KindCancelled:
		l.cancelled = append(l.cancelled, ev)
	case KindFilled:
		l.filled = append(l.filled, ev)
	default:
		return fmt.Errorf("event log: unknown kind %v", kind)
	}
	return nil
}

// AppendActivity pushes an entry onto the recent-activity ring. The newest
// entry is always index 0; entries beyond the cap fall off the end.
func (l *EventLog) AppendActivity(ev ActivityEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.activity = append([]ActivityEvent{ev}, l.activity...)
	if len(l.activity) > l.activityCap {
		l.activity = l.activity[:l.activityCap]
	}
}

// Snapshot returns a copy of the stream for kind, in arrival order. The copy
// keeps derivations pure: nothing a caller does to the slice can reach back
// into the log.
func (l *EventLog) Snapshot(kind EventKind) []OrderEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var src []OrderEvent
	switch kind {
	case KindPlaced:
		src = l.placed
	case KindCancelled:
		src = l.cancelled
	case KindFilled:
		src = l.filled
	default:
		return nil
	}
	out := make([]OrderEvent, len(src))
	copy(out, src)
	return out
}

// Activity returns a copy of the recent-activity feed, most recent first.
func (l *EventLog) Activity() []ActivityEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]ActivityEvent, len(l.activity))
	copy(out, l.activity)
	return out
}

// Len reports the number of events recorded for kind.
func (l *EventLog) Len(kind EventKind) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	switch kind {
	case KindPlaced:
		return len(l.placed)
	case KindCancelled:
		return len(l.cancelled)
	case KindFilled:
		return len(l.filled)
	}
	return 0
}

// ReplaceAll swaps the entire log contents in one critical section. Used on
// reconnect, when the feeder re-ingests the full historical range: readers
// observe either the old log or the new one, never a half-replaced mix.
func (l *EventLog) ReplaceAll(placed, cancelled, filled []OrderEvent, activity []ActivityEvent) {
	if len(activity) > l.activityCap {
		activity = activity[:l.activityCap]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.placed = placed
	l.cancelled = cancelled
	l.filled = filled
	l.activity = activity
}
