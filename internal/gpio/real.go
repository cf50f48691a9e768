//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealLEDs drives the three LED lines on actual hardware using Linux GPIO character device.
type RealLEDs struct {
	chip  *gpiocdev.Chip
	lines [3]*gpiocdev.Line
}

// NewRealLEDs requests the given pins as outputs, initially low.
func NewRealLEDs(chipName string, pins [3]int) (*RealLEDs, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	l := &RealLEDs{chip: chip}
	for i, pin := range pins {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("request LED%d pin %d: %w", i+1, pin, err)
		}
		l.lines[i] = line
	}
	return l, nil
}

// Lines returns the three outputs in LED1, LED2, LED3 order.
func (l *RealLEDs) Lines() [3]Output {
	return [3]Output{l.lines[0], l.lines[1], l.lines[2]}
}

// Close turns the LEDs off and releases the lines.
// Pins are left as input with pull-down to match Pi boot defaults.
func (l *RealLEDs) Close() error {
	var errs []error

	for i, line := range l.lines {
		if line == nil {
			continue
		}
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("turn off LED%d: %w", i+1, err))
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure LED%d pin: %w", i+1, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close LED%d pin: %w", i+1, err))
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

var _ Button = (*RealButton)(nil)

// RealButton watches the button line for rising edges.
type RealButton struct {
	chip  *gpiocdev.Chip
	line  *gpiocdev.Line
	edges chan time.Time
}

// NewRealButton requests the button pin as an input with pull-down and
// rising edge detection.
func NewRealButton(chipName string, pin int) (*RealButton, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	b := &RealButton{
		chip:  chip,
		edges: make(chan time.Time, edgeQueueSize),
	}
	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(b.handleEvent))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}
	b.line = line
	return b, nil
}

// handleEvent runs on the gpiocdev watcher goroutine. It must not block.
func (b *RealButton) handleEvent(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventRisingEdge {
		return
	}
	select {
	case b.edges <- time.Now():
	default:
	}
}

// Edges returns the rising edge channel.
func (b *RealButton) Edges() <-chan time.Time {
	return b.edges
}

// Level returns true while the button is held down.
func (b *RealButton) Level() (bool, error) {
	v, err := b.line.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return v == 1, nil
}

// Close stops edge detection and releases the line.
func (b *RealButton) Close() error {
	var errs []error

	if b.line != nil {
		if err := b.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
