// Package metrics exposes device activity as Prometheus metrics.
// Metrics are fed from the event bus, so the run loop never touches them.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sweeney/led-replay/internal/events"
	"github.com/sweeney/led-replay/internal/logic"
)

// Metrics holds the collectors registered for the device.
type Metrics struct {
	edges      *prometheus.CounterVec
	recorded   prometheus.Gauge
	replayMode prometheus.Gauge
	selections *prometheus.CounterVec
	unsub      []func()
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		edges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledreplay_button_edges_total",
			Help: "Rising edges seen on the button, by outcome",
		}, []string{"result"}),
		recorded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledreplay_recorded_presses",
			Help: "Number of presses stored in the replay buffer",
		}),
		replayMode: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledreplay_replay_mode",
			Help: "1 once the device is replaying the recorded sequence",
		}),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledreplay_led_selections_total",
			Help: "Cadence slots by selected LED (0 = none lit)",
		}, []string{"led"}),
	}

	// Pre-create label values so series exist before the first event
	for _, r := range []string{"recorded", "ignored", "bounced"} {
		m.edges.WithLabelValues(r)
	}
	for i := 0; i <= 3; i++ {
		m.selections.WithLabelValues(strconv.Itoa(i))
	}

	reg.MustRegister(m.edges, m.recorded, m.replayMode, m.selections)
	return m
}

// Subscribe starts updating the metrics from bus events.
func (m *Metrics) Subscribe(bus *events.Bus) {
	m.unsub = append(m.unsub,
		events.Subscribe(bus, func(e events.PressRecorded) {
			m.edges.WithLabelValues("recorded").Inc()
			m.recorded.Set(float64(e.Count))
		}),
		events.Subscribe(bus, func(events.PressIgnored) {
			m.edges.WithLabelValues("ignored").Inc()
		}),
		events.Subscribe(bus, func(events.EdgeBounced) {
			m.edges.WithLabelValues("bounced").Inc()
		}),
		events.Subscribe(bus, func(e events.LEDSelected) {
			m.selections.WithLabelValues(ledLabel(e.Index)).Inc()
		}),
		events.Subscribe(bus, func(e events.ModeChanged) {
			if e.Mode == string(logic.ModeReplay) {
				m.replayMode.Set(1)
			} else {
				m.replayMode.Set(0)
			}
		}),
	)
}

// Close unsubscribes from the bus.
func (m *Metrics) Close() {
	for _, u := range m.unsub {
		u()
	}
	m.unsub = nil
}

func ledLabel(index int) string {
	if index < 1 || index > 3 {
		return "0"
	}
	return strconv.Itoa(index)
}
