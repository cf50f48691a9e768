package logic

// Cycler holds the two cursors of the cycle driver.
//
// Each cadence slot is bracketed by Begin (choose what to show) and End
// (advance the cursor of the mode that was shown). The mode is re-evaluated
// on every Begin from the recorder count.
type Cycler struct {
	cursor int  // 0 before the first advance, then 1..3
	replay int  // 0..Capacity-1
	slot   Mode // mode of the slot in progress, "" before the first Begin
}

// Begin starts a slot and returns the frame to show.
func (c *Cycler) Begin(rec *Recorder) Frame {
	f := Frame{Cursor: c.cursor, Replay: c.replay}
	if !rec.Full() {
		f.Mode = ModeRecording
		f.Index = c.cursor
	} else {
		f.Mode = ModeReplay
		f.Index = rec.At(c.replay)
	}
	c.slot = f.Mode
	return f
}

// End finishes the slot in progress by advancing its cursor.
// Without a slot in progress it does nothing.
func (c *Cycler) End() {
	switch c.slot {
	case ModeRecording:
		c.cursor = (c.cursor % 3) + 1
	case ModeReplay:
		c.replay = (c.replay + 1) % Capacity
	}
	c.slot = ""
}

// Cursor returns the cycle cursor.
func (c *Cycler) Cursor() int {
	return c.cursor
}

// Replay returns the replay cursor.
func (c *Cycler) Replay() int {
	return c.replay
}
