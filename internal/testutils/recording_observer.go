package testutils

import (
	"fmt"

	"github.com/eapache/queue"
)

type EventKind int

const (
	EventCurrent EventKind = iota
	EventHighWater
	EventNoBuffer
	EventEmptyBuffer
	EventReady
)

func (k EventKind) String() string {
	switch k {
	case EventCurrent:
		return "current"
	case EventHighWater:
		return "highWater"
	case EventNoBuffer:
		return "noBuffer"
	case EventEmptyBuffer:
		return "emptyBuffer"
	case EventReady:
		return "ready"
	default:
		return fmt.Sprintf("EventKind(%d)", k)
	}
}

// Event is a single observer call. Value is the call argument, or 0 for
// calls without one.
type Event struct {
	Kind  EventKind
	Value int
}

func (e Event) String() string {
	return fmt.Sprintf("%s(%d)", e.Kind, e.Value)
}

// RecordingObserver records observer calls in order. It is not safe for
// concurrent use.
type RecordingObserver struct {
	events *queue.Queue
}

func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{events: queue.New()}
}

func (o *RecordingObserver) record(kind EventKind, v int) {
	o.events.Add(Event{Kind: kind, Value: v})
}

func (o *RecordingObserver) CurrentCountChanged(n int)           { o.record(EventCurrent, n) }
func (o *RecordingObserver) HighWaterChanged(n int)              { o.record(EventHighWater, n) }
func (o *RecordingObserver) NoBufferAvailable(requestedSize int) { o.record(EventNoBuffer, requestedSize) }
func (o *RecordingObserver) EmptyBufferWarning()                 { o.record(EventEmptyBuffer, 0) }
func (o *RecordingObserver) PoolReady(totalBuffers int)          { o.record(EventReady, totalBuffers) }

// Len returns the number of undrained events.
func (o *RecordingObserver) Len() int {
	return o.events.Length()
}

// Drain removes and returns all recorded events, oldest first.
func (o *RecordingObserver) Drain() []Event {
	out := make([]Event, 0, o.events.Length())
	for o.events.Length() > 0 {
		out = append(out, o.events.Remove().(Event))
	}
	return out
}
