// Package logic contains pure business logic for recording and replaying
// button presses on three LEDs.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Capacity is the number of presses recorded before replay starts.
const Capacity = 5

// Fixed timing of the device.
const (
	// Cadence is the interval between LED steps in both modes.
	Cadence = time.Second
	// DebounceWindow is how long the button stays disarmed after an accepted edge.
	DebounceWindow = 300 * time.Millisecond
)

// Mode is the operating phase of the device.
type Mode string

const (
	ModeRecording Mode = "RECORDING"
	ModeReplay    Mode = "REPLAY"
)

// ButtonState is the state of the debounced button driver.
type ButtonState string

const (
	ButtonArmed      ButtonState = "ARMED"
	ButtonDebouncing ButtonState = "DEBOUNCING"
)

// EdgeKind classifies what happened to a rising edge.
type EdgeKind string

const (
	// EdgeRecorded: leading edge accepted and its cursor value stored.
	EdgeRecorded EdgeKind = "RECORDED"
	// EdgeIgnored: leading edge accepted but the buffer is already full.
	EdgeIgnored EdgeKind = "IGNORED"
	// EdgeBounced: edge arrived inside the debounce window and was dropped.
	EdgeBounced EdgeKind = "BOUNCED"
)

// Press is one recorded button event.
type Press struct {
	Timestamp time.Time
	Seq       int // 1-based position in the buffer
	Value     int // cycle cursor at the time of the edge
	Count     int // recorded presses including this one
}

// EdgeResult describes the outcome of a rising edge.
type EdgeResult struct {
	Timestamp time.Time
	Kind      EdgeKind
	Press     Press // only set when Kind == EdgeRecorded
}

// StartsWindow reports whether the caller must arm the debounce timer.
func (r EdgeResult) StartsWindow() bool {
	return r.Kind != EdgeBounced
}

// Frame is what to show for one cadence slot.
type Frame struct {
	Mode     Mode
	Index    int  // LED index to select; values outside 1..3 light nothing
	Cursor   int  // cycle cursor at the start of the slot
	Replay   int  // replay cursor at the start of the slot
	Switched bool // first slot of a new mode
}

// Counts tracks button activity since startup.
type Counts struct {
	Edges    int
	Recorded int
	Ignored  int
	Bounced  int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}

// Snapshot is a copy of the device state, safe to hand to other goroutines.
type Snapshot struct {
	Mode     Mode
	Cursor   int
	Replay   int
	Recorded []int
	Button   ButtonState
	Counts   Counts
}
