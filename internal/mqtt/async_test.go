package mqtt

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/sweeney/led-replay/internal/logic"
)

// gatedPublisher blocks every publish until release is closed.
type gatedPublisher struct {
	*FakePublisher
	release chan struct{}
}

func (g *gatedPublisher) Publish(press logic.Press) error {
	<-g.release
	return g.FakePublisher.Publish(press)
}

func (g *gatedPublisher) PublishSystem(event SystemEvent) error {
	<-g.release
	return g.FakePublisher.PublishSystem(event)
}

func TestAsyncPublisherDoesNotBlock(t *testing.T) {
	inner := &gatedPublisher{FakePublisher: NewFakePublisher(), release: make(chan struct{})}
	a := NewAsyncPublisher(inner, 8)

	done := make(chan struct{})
	go func() {
		a.PublishSystem(SystemEvent{Event: "HEARTBEAT"})
		a.Publish(testPress())
		a.PublishSystem(SystemEvent{Event: "SHUTDOWN"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked behind a stalled broker")
	}

	close(inner.release)
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got, want := inner.SystemEventNames(), []string{"HEARTBEAT", "SHUTDOWN"}; !reflect.DeepEqual(got, want) {
		t.Errorf("system events: got %v, want %v", got, want)
	}
	if len(inner.Presses) != 1 {
		t.Errorf("expected 1 press, got %d", len(inner.Presses))
	}
	if !inner.Closed {
		t.Error("Close should close the inner publisher")
	}
}

func TestAsyncPublisherQueueFull(t *testing.T) {
	inner := &gatedPublisher{FakePublisher: NewFakePublisher(), release: make(chan struct{})}
	a := NewAsyncPublisher(inner, 1)

	// The worker takes at most one message and blocks on it; one more fits
	// in the queue. Anything past that must be refused.
	var full int
	for i := 0; i < 4; i++ {
		if err := a.Publish(testPress()); errors.Is(err, ErrQueueFull) {
			full++
		}
	}
	if full < 2 {
		t.Errorf("expected at least 2 refused publishes, got %d", full)
	}

	close(inner.release)
	a.Close()
}

func TestAsyncPublisherClose(t *testing.T) {
	inner := NewFakePublisher()
	a := NewAsyncPublisher(inner, 4)

	a.Publish(testPress())
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(inner.Presses) != 1 {
		t.Errorf("queued press should be delivered before Close returns, got %d", len(inner.Presses))
	}

	if err := a.Publish(testPress()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestAsyncPublisherIsConnected(t *testing.T) {
	inner := NewFakePublisher()
	inner.Connected = true
	a := NewAsyncPublisher(inner, 1)
	defer a.Close()

	if !a.IsConnected() {
		t.Error("expected connection state from inner publisher")
	}
}
