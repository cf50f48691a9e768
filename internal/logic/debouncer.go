package logic

// Debouncer is the ARMED/DEBOUNCING state machine of the button driver.
// The owner runs the one-shot timer: after a successful Trigger it must call
// Rearm once the debounce window has elapsed.
type Debouncer struct {
	debouncing bool
}

// Trigger handles a rising edge. It returns true and moves to DEBOUNCING if
// the button was armed; edges while DEBOUNCING return false.
func (d *Debouncer) Trigger() bool {
	if d.debouncing {
		return false
	}
	d.debouncing = true
	return true
}

// Rearm ends the debounce window.
func (d *Debouncer) Rearm() {
	d.debouncing = false
}

// State returns the current button state.
func (d *Debouncer) State() ButtonState {
	if d.debouncing {
		return ButtonDebouncing
	}
	return ButtonArmed
}
