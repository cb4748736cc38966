package sse

import (
	"context"
	"sync"
	"time"
)

// Event kinds published by the job runner.
const (
	TypeQueued    = "queued"
	TypeStarted   = "started"
	TypeProgress  = "progress"
	TypeCompleted = "completed"
	TypeFailed    = "failed"
)

// Event is a single job update. Sequence is assigned by the hub and
// increases monotonically from 1 across all jobs.
type Event struct {
	Sequence  uint64    `json:"seq"`
	Timestamp time.Time `json:"ts"`
	JobID     string    `json:"job_id"`
	Type      string    `json:"type"`
	Stage     string    `json:"stage,omitempty"`
	Percent   int       `json:"percent"`
	Message   string    `json:"message,omitempty"`
	ResultID  string    `json:"result_id,omitempty"`
}

// Hub is a bounded in-memory broadcast buffer for job events. When the
// buffer is full the oldest events are evicted; late subscribers can
// detect the gap by comparing their cursor against FirstSequence.
type Hub struct {
	mu       sync.Mutex
	cond     *sync.Cond
	buffer   []Event
	capacity int
	nextSeq  uint64
}

// NewHub creates a hub retaining at most capacity events.
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = 256
	}
	h := &Hub{
		buffer:   make([]Event, 0, capacity),
		capacity: capacity,
		nextSeq:  1,
	}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// Publish stamps the event with the next sequence number and current
// time (when unset) and wakes any blocked Fetch callers.
func (h *Hub) Publish(event Event) Event {
	if h == nil {
		return event
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	event.Sequence = h.nextSeq
	h.nextSeq++
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if len(h.buffer) >= h.capacity {
		copy(h.buffer, h.buffer[1:])
		h.buffer = h.buffer[:len(h.buffer)-1]
	}
	h.buffer = append(h.buffer, event)

	h.cond.Broadcast()
	return event
}

// Fetch returns buffered events with sequence numbers greater than
// since, up to limit. When wait is true and no matching events are
// buffered, Fetch blocks until one is published or ctx is done. The
// returned cursor is the sequence to pass as since on the next call.
func (h *Hub) Fetch(ctx context.Context, since uint64, limit int, wait bool) ([]Event, uint64, error) {
	if h == nil {
		return nil, since, nil
	}
	if limit <= 0 {
		limit = 100
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	events := h.snapshotLocked(since, limit)
	if len(events) > 0 || !wait {
		return events, h.cursorLocked(events, since), nil
	}

	// Wake the cond wait when the caller gives up.
	stop := context.AfterFunc(ctx, func() {
		h.mu.Lock()
		h.cond.Broadcast()
		h.mu.Unlock()
	})
	defer stop()

	for {
		if err := ctx.Err(); err != nil {
			return nil, since, err
		}
		h.cond.Wait()
		events = h.snapshotLocked(since, limit)
		if len(events) > 0 {
			return events, h.cursorLocked(events, since), nil
		}
	}
}

// Tail returns up to n of the most recent events, oldest first.
func (h *Hub) Tail(n int) []Event {
	if h == nil || n <= 0 {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if n > len(h.buffer) {
		n = len(h.buffer)
	}
	out := make([]Event, n)
	copy(out, h.buffer[len(h.buffer)-n:])
	return out
}

// FirstSequence reports the oldest sequence still buffered, or 0 when
// the buffer is empty. A subscriber cursor below FirstSequence-1 has
// missed evicted events.
func (h *Hub) FirstSequence() uint64 {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.buffer) == 0 {
		return 0
	}
	return h.buffer[0].Sequence
}

func (h *Hub) snapshotLocked(since uint64, limit int) []Event {
	var out []Event
	for _, event := range h.buffer {
		if event.Sequence <= since {
			continue
		}
		out = append(out, event)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func (h *Hub) cursorLocked(events []Event, since uint64) uint64 {
	if len(events) == 0 {
		return since
	}
	return events[len(events)-1].Sequence
}
