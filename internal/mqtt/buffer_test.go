package mqtt

import (
	"testing"
)

func TestReplayQueueEmptyDrain(t *testing.T) {
	q := newReplayQueue(10)
	if got := q.drain(); got != nil {
		t.Errorf("expected nil from empty drain, got %d events", len(got))
	}
}

func TestReplayQueueAddAndDrain(t *testing.T) {
	q := newReplayQueue(10)
	for i := 0; i < 5; i++ {
		q.add(queuedEvent{topic: "t", payload: []byte{byte(i)}})
	}

	got := q.drain()
	if len(got) != 5 {
		t.Fatalf("expected 5 events, got %d", len(got))
	}
	for i := 0; i < 5; i++ {
		if got[i].payload[0] != byte(i) {
			t.Errorf("event %d: expected payload %d, got %d", i, i, got[i].payload[0])
		}
	}

	if got2 := q.drain(); got2 != nil {
		t.Errorf("expected nil from second drain, got %d events", len(got2))
	}
}

func TestReplayQueueDropsOldestWhenFull(t *testing.T) {
	limit := 5
	q := newReplayQueue(limit)

	// Add limit+3 events (0..7); the queue keeps the most recent 5 (3..7).
	for i := 0; i < limit+3; i++ {
		q.add(queuedEvent{topic: "t", payload: []byte{byte(i)}})
	}

	got := q.drain()
	if len(got) != limit {
		t.Fatalf("expected %d events, got %d", limit, len(got))
	}
	for i := 0; i < limit; i++ {
		want := byte(i + 3)
		if got[i].payload[0] != want {
			t.Errorf("event %d: expected payload %d, got %d", i, want, got[i].payload[0])
		}
	}
}

func TestReplayQueueMultipleCycles(t *testing.T) {
	q := newReplayQueue(5)

	for i := 0; i < 3; i++ {
		q.add(queuedEvent{topic: "t", payload: []byte{byte(i)}})
	}
	if got := q.drain(); len(got) != 3 {
		t.Fatalf("cycle 1: expected 3 events, got %d", len(got))
	}

	for i := 10; i < 14; i++ {
		q.add(queuedEvent{topic: "t", payload: []byte{byte(i)}})
	}
	got := q.drain()
	if len(got) != 4 {
		t.Fatalf("cycle 2: expected 4 events, got %d", len(got))
	}
	for i, ev := range got {
		want := byte(10 + i)
		if ev.payload[0] != want {
			t.Errorf("cycle 2 event %d: expected %d, got %d", i, want, ev.payload[0])
		}
	}
}

func TestReplayQueueSize(t *testing.T) {
	q := newReplayQueue(10)
	if q.size() != 0 {
		t.Errorf("expected size 0, got %d", q.size())
	}

	q.add(queuedEvent{topic: "t"})
	q.add(queuedEvent{topic: "t"})
	if q.size() != 2 {
		t.Errorf("expected size 2, got %d", q.size())
	}

	q.drain()
	if q.size() != 0 {
		t.Errorf("expected size 0 after drain, got %d", q.size())
	}
}

func TestReplayQueuePreservesFields(t *testing.T) {
	q := newReplayQueue(10)
	q.add(queuedEvent{
		topic:    "lsh/panel-hall/state",
		payload:  []byte(`{"states":[1]}`),
		qos:      1,
		retained: true,
	})

	got := q.drain()
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].topic != "lsh/panel-hall/state" {
		t.Errorf("topic: got %s", got[0].topic)
	}
	if string(got[0].payload) != `{"states":[1]}` {
		t.Errorf("payload: got %s", got[0].payload)
	}
	if got[0].qos != 1 {
		t.Errorf("qos: got %d, want 1", got[0].qos)
	}
	if !got[0].retained {
		t.Error("retained: got false, want true")
	}
}
