package gpio

import "time"

// FakeLine is a test double for an output line that records written values.
type FakeLine struct {
	// Values contains every value written, in order.
	Values []int

	// SetError, if set, will be returned by SetValue and the value is not recorded.
	SetError error
}

// SetValue records the value.
func (f *FakeLine) SetValue(value int) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Values = append(f.Values, value)
	return nil
}

// Value returns the last written value, or -1 if the line was never written.
func (f *FakeLine) Value() int {
	if len(f.Values) == 0 {
		return -1
	}
	return f.Values[len(f.Values)-1]
}

// Writes returns the number of recorded writes.
func (f *FakeLine) Writes() int {
	return len(f.Values)
}

// NewFakeLines returns three fresh fake lines and the same lines as outputs.
func NewFakeLines() ([3]*FakeLine, [3]Output) {
	lines := [3]*FakeLine{{}, {}, {}}
	return lines, [3]Output{lines[0], lines[1], lines[2]}
}

var _ Button = (*FakeButton)(nil)

// FakeButton is a test double that delivers scripted edges.
type FakeButton struct {
	edges chan time.Time

	// Pressed is returned by Level.
	Pressed bool

	// LevelError, if set, will be returned by Level.
	LevelError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeButton creates a FakeButton with an unbuffered edge channel, so
// Press blocks until the consumer has taken the edge.
func NewFakeButton() *FakeButton {
	return &FakeButton{edges: make(chan time.Time)}
}

// Press delivers one rising edge at the given time.
func (f *FakeButton) Press(at time.Time) {
	f.edges <- at
}

// Edges returns the edge channel.
func (f *FakeButton) Edges() <-chan time.Time {
	return f.edges
}

// Level returns the scripted button level.
func (f *FakeButton) Level() (bool, error) {
	if f.LevelError != nil {
		return false, f.LevelError
	}
	return f.Pressed, nil
}

// Close marks the button as closed.
func (f *FakeButton) Close() error {
	f.Closed = true
	return nil
}
