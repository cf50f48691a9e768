package logic

import "time"

// Device is the whole device state: recorder, button driver and cycle driver.
// It is owned by the run loop and not safe for concurrent use.
type Device struct {
	recorder      Recorder
	debouncer     Debouncer
	cycler        Cycler
	mode          Mode
	counts        Counts
	startTime     time.Time
	lastHeartbeat time.Time
}

// NewDevice creates a device in recording mode with an armed button.
// The startTime is used for calculating uptime in heartbeat events.
func NewDevice(startTime time.Time) *Device {
	return &Device{
		mode:          ModeRecording,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Begin starts a cadence slot and returns the frame to display.
func (d *Device) Begin() Frame {
	f := d.cycler.Begin(&d.recorder)
	if f.Mode != d.mode {
		f.Switched = true
		d.mode = f.Mode
	}
	return f
}

// End finishes the current cadence slot.
func (d *Device) End() {
	d.cycler.End()
}

// Edge handles a rising edge from the button.
//
// An armed button records the cycle cursor at the leading edge and starts
// the debounce window; the caller must then arm a timer and call Rearm when
// it fires. Once the buffer is full, accepted edges are ignored but still
// start a window.
func (d *Device) Edge(at time.Time) EdgeResult {
	d.counts.Edges++

	if !d.debouncer.Trigger() {
		d.counts.Bounced++
		return EdgeResult{Timestamp: at, Kind: EdgeBounced}
	}

	value := d.cycler.Cursor()
	if !d.recorder.Record(value) {
		d.counts.Ignored++
		return EdgeResult{Timestamp: at, Kind: EdgeIgnored}
	}

	d.counts.Recorded++
	return EdgeResult{
		Timestamp: at,
		Kind:      EdgeRecorded,
		Press: Press{
			Timestamp: at,
			Seq:       d.recorder.Count(),
			Value:     value,
			Count:     d.recorder.Count(),
		},
	}
}

// Rearm re-enables edge detection at the end of the debounce window.
func (d *Device) Rearm() {
	d.debouncer.Rearm()
}

// Mode returns the mode of the current slot.
func (d *Device) Mode() Mode {
	return d.mode
}

// Recorded returns a copy of the recorded values.
func (d *Device) Recorded() []int {
	return d.recorder.Values()
}

// Counts returns a copy of the button counters.
func (d *Device) Counts() Counts {
	return d.counts
}

// Snapshot returns a copy of the device state.
func (d *Device) Snapshot() Snapshot {
	return Snapshot{
		Mode:     d.mode,
		Cursor:   d.cycler.Cursor(),
		Replay:   d.cycler.Replay(),
		Recorded: d.recorder.Values(),
		Button:   d.debouncer.State(),
		Counts:   d.counts,
	}
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (d *Device) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.counts,
	}
}
