package mqtt

import "log"

// outbound is a serialized MQTT message held for publishing after reconnection.
type outbound struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// queue is a fixed-capacity FIFO of messages published while disconnected.
// When full, the oldest message is dropped.
// Not safe for concurrent use; the caller must synchronize.
type queue struct {
	buf     []outbound
	head    int // next write position
	count   int
	dropped int // messages dropped since last drain
}

func newQueue(capacity int) *queue {
	return &queue{buf: make([]outbound, capacity)}
}

func (q *queue) push(msg outbound) {
	capacity := len(q.buf)
	if q.count == capacity {
		if q.dropped == 0 {
			log.Printf("mqtt: offline queue full (%d messages), dropping oldest", capacity)
		}
		q.dropped++
		// head already points at the oldest message
		q.buf[q.head] = msg
		q.head = (q.head + 1) % capacity
		return
	}
	q.buf[q.head] = msg
	q.head = (q.head + 1) % capacity
	q.count++
}

// drain returns all queued messages oldest first and empties the queue.
func (q *queue) drain() []outbound {
	if q.count == 0 {
		return nil
	}

	capacity := len(q.buf)
	out := make([]outbound, q.count)
	start := (q.head - q.count + capacity) % capacity
	for i := range out {
		out[i] = q.buf[(start+i)%capacity]
	}

	q.count = 0
	q.head = 0
	q.dropped = 0
	return out
}

func (q *queue) len() int {
	return q.count
}
