package mqtt

import (
	"testing"
)

func TestQueueEmptyDrain(t *testing.T) {
	q := newQueue(10)
	got := q.drain()
	if got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestQueuePushAndDrain(t *testing.T) {
	q := newQueue(10)
	for i := 0; i < 5; i++ {
		q.push(outbound{topic: "t", payload: []byte{byte(i)}})
	}

	got := q.drain()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := 0; i < 5; i++ {
		if got[i].payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, got[i].payload[0])
		}
	}

	// Second drain should be empty
	if got2 := q.drain(); got2 != nil {
		t.Errorf("expected nil from second drain, got %d items", len(got2))
	}
}

func TestQueueOverflowDropsOldest(t *testing.T) {
	capacity := 5
	q := newQueue(capacity)

	// Push capacity+3 items (0..7), queue should keep the most recent 5 (3..7)
	for i := 0; i < capacity+3; i++ {
		q.push(outbound{topic: "t", payload: []byte{byte(i)}})
	}
	if q.dropped != 3 {
		t.Errorf("expected 3 dropped, got %d", q.dropped)
	}

	got := q.drain()
	if len(got) != capacity {
		t.Fatalf("expected %d items, got %d", capacity, len(got))
	}
	for i := 0; i < capacity; i++ {
		want := byte(i + 3)
		if got[i].payload[0] != want {
			t.Errorf("item %d: expected payload %d, got %d", i, want, got[i].payload[0])
		}
	}
	if q.dropped != 0 {
		t.Errorf("drain should reset dropped, got %d", q.dropped)
	}
}

func TestQueueMultipleCycles(t *testing.T) {
	q := newQueue(5)

	for i := 0; i < 3; i++ {
		q.push(outbound{topic: "t", payload: []byte{byte(i)}})
	}
	if got := q.drain(); len(got) != 3 {
		t.Fatalf("cycle 1: expected 3 items, got %d", len(got))
	}

	for i := 10; i < 14; i++ {
		q.push(outbound{topic: "t", payload: []byte{byte(i)}})
	}
	got := q.drain()
	if len(got) != 4 {
		t.Fatalf("cycle 2: expected 4 items, got %d", len(got))
	}
	for i, msg := range got {
		if want := byte(10 + i); msg.payload[0] != want {
			t.Errorf("cycle 2 item %d: expected %d, got %d", i, want, msg.payload[0])
		}
	}
}

func TestQueueLen(t *testing.T) {
	q := newQueue(10)
	if q.len() != 0 {
		t.Errorf("expected len 0, got %d", q.len())
	}

	q.push(outbound{topic: "t"})
	q.push(outbound{topic: "t"})
	if q.len() != 2 {
		t.Errorf("expected len 2, got %d", q.len())
	}

	q.drain()
	if q.len() != 0 {
		t.Errorf("expected len 0 after drain, got %d", q.len())
	}
}

func TestQueuePreservesFields(t *testing.T) {
	q := newQueue(10)
	q.push(outbound{
		topic:    TopicSystem,
		payload:  []byte(`{"test":true}`),
		qos:      1,
		retained: true,
	})

	got := q.drain()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].topic != TopicSystem {
		t.Errorf("topic: got %s, want %s", got[0].topic, TopicSystem)
	}
	if string(got[0].payload) != `{"test":true}` {
		t.Errorf("payload: got %s", got[0].payload)
	}
	if got[0].qos != 1 {
		t.Errorf("qos: got %d, want 1", got[0].qos)
	}
	if !got[0].retained {
		t.Error("retained: got false, want true")
	}
}
