package events

import "time"

// Event type constants for kelindar/event.
const (
	TypePressRecorded uint32 = iota + 1
	TypePressIgnored
	TypeEdgeBounced
	TypeLEDSelected
	TypeModeChanged
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// PressRecorded is emitted when a press is stored in the buffer.
type PressRecorded struct {
	Timestamp time.Time
	Seq       int
	Value     int
	Count     int
}

// Type returns the event type identifier for PressRecorded.
func (e PressRecorded) Type() uint32 { return TypePressRecorded }

// PressIgnored is emitted for an accepted edge once the buffer is full.
type PressIgnored struct {
	Timestamp time.Time
}

// Type returns the event type identifier for PressIgnored.
func (e PressIgnored) Type() uint32 { return TypePressIgnored }

// EdgeBounced is emitted for an edge dropped inside the debounce window.
type EdgeBounced struct {
	Timestamp time.Time
}

// Type returns the event type identifier for EdgeBounced.
func (e EdgeBounced) Type() uint32 { return TypeEdgeBounced }

// LEDSelected is emitted at the start of every cadence slot.
// Index outside 1..3 means nothing was lit.
type LEDSelected struct {
	Timestamp time.Time
	Mode      string
	Index     int
}

// Type returns the event type identifier for LEDSelected.
func (e LEDSelected) Type() uint32 { return TypeLEDSelected }

// ModeChanged is emitted when the device enters a new mode.
type ModeChanged struct {
	Timestamp time.Time
	Mode      string
	Recorded  []int
}

// Type returns the event type identifier for ModeChanged.
func (e ModeChanged) Type() uint32 { return TypeModeChanged }
