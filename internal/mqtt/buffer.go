package mqtt

import "log"

// queuedEvent is a serialized panel event held for replay once the broker
// connection comes back.
type queuedEvent struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// replayQueue holds events published while the broker is unreachable.
// Bounded: once full, the oldest event is dropped so the panel never
// accumulates unbounded telemetry. Not safe for concurrent use, the
// caller must synchronize.
type replayQueue struct {
	events  []queuedEvent
	limit   int
	dropped bool // an event was discarded since the last drain
}

func newReplayQueue(limit int) *replayQueue {
	return &replayQueue{
		events: make([]queuedEvent, 0, limit),
		limit:  limit,
	}
}

func (q *replayQueue) add(ev queuedEvent) {
	if len(q.events) == q.limit {
		if !q.dropped {
			log.Printf("mqtt: replay queue full (%d events), dropping oldest", q.limit)
			q.dropped = true
		}
		copy(q.events, q.events[1:])
		q.events[len(q.events)-1] = ev
		return
	}
	q.events = append(q.events, ev)
}

// drain returns the queued events in publish order and empties the queue.
func (q *replayQueue) drain() []queuedEvent {
	if len(q.events) == 0 {
		return nil
	}
	out := make([]queuedEvent, len(q.events))
	copy(out, q.events)
	q.events = q.events[:0]
	q.dropped = false
	return out
}

func (q *replayQueue) size() int {
	return len(q.events)
}
