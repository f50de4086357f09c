package engine

import (
	"fmt"
	"sync"

	"github.com/roach88/quester/internal/host"
)

// EventKind distinguishes host events.
type EventKind int

const (
	EventEntityDeath EventKind = iota + 1
	EventBlockBreak
	EventBlockPlace
	EventBlockInteract
	EventEntityInteract
	EventPlayerJoin
	EventPlayerDisconnect
	EventWorldSave
)

// String names the kind for logs.
func (k EventKind) String() string {
	switch k {
	case EventEntityDeath:
		return "entity_death"
	case EventBlockBreak:
		return "block_break"
	case EventBlockPlace:
		return "block_place"
	case EventBlockInteract:
		return "block_interact"
	case EventEntityInteract:
		return "entity_interact"
	case EventPlayerJoin:
		return "player_join"
	case EventPlayerDisconnect:
		return "player_disconnect"
	case EventWorldSave:
		return "world_save"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a host notification queued for the run loop. Which fields are
// meaningful depends on Kind: Entity is the victim of a death or the target
// of an interaction, Pos and Code describe the block of a block event.
type Event struct {
	Kind   EventKind
	Player host.Player
	Entity host.Entity
	Pos    host.BlockPos
	Code   string
}

// eventQueue is an unbounded FIFO. Enqueue may be called from any
// goroutine; the run loop dequeues.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // buffered, size 1
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue appends e. It returns false once the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, e)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue pops the front event without blocking.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}
	e := q.events[0]
	// Drop the references held by the backing array.
	q.events[0] = Event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return e, true
}

// Wait returns a channel that fires when events may be available, and is
// closed when the queue closes.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Drained reports whether the queue is closed and empty.
func (q *eventQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.events) == 0
}

// Close rejects further events and wakes the waiter.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
