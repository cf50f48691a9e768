//go:build !linux

package gpio

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealLEDs is not available on non-Linux platforms.
type RealLEDs struct{}

// NewRealLEDs returns an error on non-Linux platforms.
func NewRealLEDs(chipName string, pins [3]int) (*RealLEDs, error) {
	return nil, errUnsupported
}

// Lines returns nil outputs on non-Linux platforms.
func (l *RealLEDs) Lines() [3]Output {
	return [3]Output{}
}

// Close is a no-op on non-Linux platforms.
func (l *RealLEDs) Close() error {
	return nil
}

var _ Button = (*RealButton)(nil)

// RealButton is not available on non-Linux platforms.
type RealButton struct{}

// NewRealButton returns an error on non-Linux platforms.
func NewRealButton(chipName string, pin int) (*RealButton, error) {
	return nil, errUnsupported
}

// Edges returns a nil channel, which never delivers.
func (b *RealButton) Edges() <-chan time.Time {
	return nil
}

// Level is not implemented on non-Linux platforms.
func (b *RealButton) Level() (bool, error) {
	return false, errUnsupported
}

// Close is a no-op on non-Linux platforms.
func (b *RealButton) Close() error {
	return nil
}
