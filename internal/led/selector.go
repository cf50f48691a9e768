// Package led drives the three LEDs as a mutually exclusive group.
package led

import (
	"errors"
	"fmt"
)

// Count is the number of LEDs in the group.
const Count = 3

// Line is a single LED output. gpio.Output and *gpiocdev.Line satisfy it.
type Line interface {
	SetValue(value int) error
}

// Selector lights at most one of three LEDs at a time.
// Not safe for concurrent use; the run loop is the only caller.
type Selector struct {
	lines [Count]Line
	lit   int // 1..3, 0 = none
}

// NewSelector creates a Selector over LED1, LED2 and LED3. All LEDs are
// assumed off until the first Select.
func NewSelector(led1, led2, led3 Line) *Selector {
	return &Selector{lines: [Count]Line{led1, led2, led3}}
}

// Valid reports whether index names an LED.
func Valid(index int) bool {
	return index >= 1 && index <= Count
}

// Select lights the LED at index (1..3) and turns the other two off.
// Any other index is a no-op: no line is written and nil is returned.
// If any write fails, Lit keeps reporting the last fully applied state.
func (s *Selector) Select(index int) error {
	if !Valid(index) {
		return nil
	}

	var errs []error
	for i, line := range s.lines {
		v := 0
		if i+1 == index {
			v = 1
		}
		if err := line.SetValue(v); err != nil {
			errs = append(errs, fmt.Errorf("set LED%d: %w", i+1, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("select LED%d: %w", index, errors.Join(errs...))
	}
	s.lit = index
	return nil
}

// Off turns all LEDs off.
func (s *Selector) Off() error {
	var errs []error
	for i, line := range s.lines {
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("set LED%d: %w", i+1, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("all off: %w", errors.Join(errs...))
	}
	s.lit = 0
	return nil
}

// Lit returns the index of the LED currently lit, or 0 if none.
func (s *Selector) Lit() int {
	return s.lit
}
