// Package gpio provides LED outputs and button edge input with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "time"

// Output is a single binary output line. *gpiocdev.Line satisfies it.
type Output interface {
	// SetValue drives the line: 1 = on, 0 = off.
	SetValue(value int) error
}

// Button delivers rising edges from the push button.
type Button interface {
	// Edges returns the channel on which rising edge times are delivered.
	// Edges are raw: contact bounce is not filtered here.
	Edges() <-chan time.Time

	// Level returns the current logical button level (true = pressed).
	Level() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Default wiring (BCM numbering on gpiochip0).
const (
	DefaultChip      = "gpiochip0"
	DefaultPinLED1   = 17
	DefaultPinLED2   = 27
	DefaultPinLED3   = 22
	DefaultPinButton = 23
)

// edgeQueueSize bounds the number of undelivered edges. Edges beyond it are
// dropped; the debouncer would discard them anyway.
const edgeQueueSize = 16
