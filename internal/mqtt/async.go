package mqtt

import (
	"errors"
	"log"
	"sync"

	"github.com/sweeney/led-replay/internal/logic"
)

var (
	// ErrQueueFull is returned when the publish queue cannot take another message.
	ErrQueueFull = errors.New("mqtt: publish queue full")
	// ErrClosed is returned for messages published after Close.
	ErrClosed = errors.New("mqtt: publisher closed")
)

// AsyncPublisher hands messages to a background goroutine so the caller never
// waits on the broker. Messages are delivered to the inner publisher in order.
type AsyncPublisher struct {
	inner Publisher
	jobs  chan job
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

type job struct {
	press  *logic.Press
	system *SystemEvent
}

// NewAsyncPublisher starts a publisher that queues up to size messages in
// front of inner.
func NewAsyncPublisher(inner Publisher, size int) *AsyncPublisher {
	a := &AsyncPublisher{
		inner: inner,
		jobs:  make(chan job, size),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *AsyncPublisher) run() {
	defer close(a.done)
	for j := range a.jobs {
		if j.press != nil {
			if err := a.inner.Publish(*j.press); err != nil {
				log.Printf("mqtt: publish press seq=%d: %v", j.press.Seq, err)
			}
			continue
		}
		if err := a.inner.PublishSystem(*j.system); err != nil {
			log.Printf("mqtt: publish %s: %v", j.system.Event, err)
		}
	}
}

func (a *AsyncPublisher) enqueue(j job) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.jobs <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

// Publish queues a press. It never blocks.
func (a *AsyncPublisher) Publish(press logic.Press) error {
	return a.enqueue(job{press: &press})
}

// PublishSystem queues a system event. It never blocks.
func (a *AsyncPublisher) PublishSystem(event SystemEvent) error {
	return a.enqueue(job{system: &event})
}

// IsConnected reports the inner publisher's connection state, or false if it
// cannot tell.
func (a *AsyncPublisher) IsConnected() bool {
	if cs, ok := a.inner.(ConnectionStatus); ok {
		return cs.IsConnected()
	}
	return false
}

// Close stops accepting messages, waits until everything already queued has
// been handed to the inner publisher, then closes it. A SHUTDOWN queued before
// Close is therefore sent before the broker connection is dropped.
func (a *AsyncPublisher) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.jobs)
	a.mu.Unlock()

	<-a.done
	return a.inner.Close()
}
