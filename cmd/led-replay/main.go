// Command led-replay records five button presses against a cycling LED and
// then replays them forever.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/sweeney/led-replay/internal/config"
	"github.com/sweeney/led-replay/internal/events"
	"github.com/sweeney/led-replay/internal/gpio"
	"github.com/sweeney/led-replay/internal/led"
	"github.com/sweeney/led-replay/internal/logic"
	"github.com/sweeney/led-replay/internal/metrics"
	"github.com/sweeney/led-replay/internal/mqtt"
	"github.com/sweeney/led-replay/internal/status"
	"github.com/sweeney/led-replay/internal/web"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "led-replay",
		Short:         "Record button presses against a cycling LED, then replay them",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(&cobra.Command{
		Use:   "print-state",
		Short: "Print the current button level and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			button, err := gpio.NewRealButton(cfg.GPIO.Chip, cfg.GPIO.Button)
			if err != nil {
				return fmt.Errorf("init button: %w", err)
			}
			defer button.Close()
			return printState(cmd.OutOrStdout(), button)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version and exit",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "led-replay %s\n", version)
		},
	})

	return root
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.FromFlags(cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func printState(w io.Writer, button gpio.Button) error {
	pressed, err := button.Level()
	if err != nil {
		return fmt.Errorf("read button: %w", err)
	}
	fmt.Fprintf(w, "button: %s\n", levelString(pressed))
	return nil
}

// publishQueue is how many messages may wait for the broker before new ones
// are dropped.
const publishQueue = 64

// publisher is what runLoop needs from the MQTT side.
type publisher interface {
	mqtt.Publisher
	mqtt.ConnectionStatus
}

func run(cfg config.Config) error {
	// Initialize GPIO
	leds, err := gpio.NewRealLEDs(cfg.GPIO.Chip, cfg.LEDPins())
	if err != nil {
		return fmt.Errorf("init leds: %w", err)
	}
	defer leds.Close()

	button, err := gpio.NewRealButton(cfg.GPIO.Chip, cfg.GPIO.Button)
	if err != nil {
		return fmt.Errorf("init button: %w", err)
	}
	defer button.Close()

	lines := leds.Lines()
	selector := led.NewSelector(lines[0], lines[1], lines[2])

	// Initialize MQTT
	var pub publisher = mqtt.NopPublisher{}
	if cfg.MQTT.Broker != "" {
		// Publishing runs on its own goroutine so a stalled broker cannot hold
		// up the cadence or edge handling. Close flushes SHUTDOWN first.
		pub = mqtt.NewAsyncPublisher(mqtt.NewRealPublisher(cfg.MQTT.Broker), publishQueue)
	} else {
		log.Printf("mqtt disabled: no broker configured")
	}
	defer pub.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Chip:        cfg.GPIO.Chip,
		PinLED1:     cfg.GPIO.LED1,
		PinLED2:     cfg.GPIO.LED2,
		PinLED3:     cfg.GPIO.LED3,
		PinButton:   cfg.GPIO.Button,
		CadenceMs:   logic.Cadence.Milliseconds(),
		DebounceMs:  logic.DebounceWindow.Milliseconds(),
		HeartbeatMs: cfg.HeartbeatInterval().Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTP.Addr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Event bus and metrics
	bus := events.New()
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	m.Subscribe(bus)
	defer m.Close()

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := pub.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, reg)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: chip=%s leds=%v button=%d cadence=%v debounce=%v broker=%q heartbeat=%v",
		cfg.GPIO.Chip, cfg.LEDPins(), cfg.GPIO.Button, logic.Cadence, logic.DebounceWindow,
		cfg.MQTT.Broker, cfg.HeartbeatInterval())

	ticker := time.NewTicker(logic.Cadence)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(loopDeps{
		selector:   selector,
		publisher:  pub,
		mqttStatus: pub,
		tracker:    tracker,
		bus:        bus,
		heartbeat:  cfg.HeartbeatInterval(),
		now:        time.Now,
		after:      time.After,
		edges:      button.Edges(),
		tick:       ticker.C,
		sig:        sigCh,
	})
}

// loopDeps is everything runLoop reads from or writes to.
// tracker, mqttStatus and bus may be nil.
type loopDeps struct {
	selector   *led.Selector
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	bus        *events.Bus
	heartbeat  time.Duration
	now        func() time.Time
	after      func(time.Duration) <-chan time.Time
	edges      <-chan time.Time
	tick       <-chan time.Time
	sig        <-chan os.Signal
}

// runLoop owns the device. Edges, debounce expiry, cadence ticks and signals
// are all consumed here, so device state is never shared between goroutines.
func runLoop(d loopDeps) error {
	dev := logic.NewDevice(d.now())

	// nil while the button is armed
	var rearm <-chan time.Time

	updateTracker := func() {
		if d.tracker == nil {
			return
		}
		d.tracker.Update(dev.Snapshot(), d.selector.Lit())
		if d.mqttStatus != nil {
			d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
		}
	}

	statusPayload := func(event, reason string) []byte {
		if d.tracker == nil {
			return nil
		}
		updateTracker()
		return status.FormatStatusEvent(d.tracker.Snapshot(), event, reason)
	}

	beginSlot := func(t time.Time) {
		frame := dev.Begin()
		if err := d.selector.Select(frame.Index); err != nil {
			log.Printf("led select error: %v", err)
		}
		events.Publish(d.bus, events.LEDSelected{Timestamp: t, Mode: string(frame.Mode), Index: frame.Index})

		if !frame.Switched {
			return
		}
		recorded := dev.Recorded()
		log.Printf("mode: %s recorded=%v", frame.Mode, recorded)
		events.Publish(d.bus, events.ModeChanged{Timestamp: t, Mode: string(frame.Mode), Recorded: recorded})

		event := mqtt.SystemEvent{
			Timestamp:  t,
			Event:      string(frame.Mode),
			Retained:   true,
			RawPayload: statusPayload(string(frame.Mode), ""),
		}
		if err := d.publisher.PublishSystem(event); err != nil {
			log.Printf("failed to publish %s event: %v", frame.Mode, err)
		}
	}

	// First slot starts immediately with the cursor at 0, which lights nothing.
	beginSlot(d.now())
	updateTracker()

	for {
		select {
		case s := <-d.sig:
			log.Printf("received %v, shutting down", s)
			if err := d.selector.Off(); err != nil {
				log.Printf("led off error: %v", err)
			}
			signalName := signalString(s)
			event := mqtt.SystemEvent{
				Timestamp:  d.now(),
				Event:      "SHUTDOWN",
				Reason:     signalName,
				Retained:   true,
				RawPayload: statusPayload("SHUTDOWN", signalName),
			}
			if err := d.publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case at := <-d.edges:
			res := dev.Edge(at)
			if res.StartsWindow() {
				rearm = d.after(logic.DebounceWindow)
			}

			switch res.Kind {
			case logic.EdgeRecorded:
				p := res.Press
				log.Printf("press: seq=%d value=%d count=%d/%d", p.Seq, p.Value, p.Count, logic.Capacity)
				events.Publish(d.bus, events.PressRecorded{Timestamp: p.Timestamp, Seq: p.Seq, Value: p.Value, Count: p.Count})
				if err := d.publisher.Publish(p); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			case logic.EdgeIgnored:
				log.Printf("press ignored: buffer full (%d)", logic.Capacity)
				events.Publish(d.bus, events.PressIgnored{Timestamp: at})
			case logic.EdgeBounced:
				events.Publish(d.bus, events.EdgeBounced{Timestamp: at})
			}
			updateTracker()

		case <-rearm:
			rearm = nil
			dev.Rearm()
			updateTracker()

		case <-d.tick:
			t := d.now()
			dev.End()
			beginSlot(t)

			if hbData := dev.CheckHeartbeat(t, d.heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v mode=%s edges=%d recorded=%d ignored=%d bounced=%d",
					hbData.Uptime, dev.Mode(), hbData.Counts.Edges, hbData.Counts.Recorded,
					hbData.Counts.Ignored, hbData.Counts.Bounced)

				if d.tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						d.tracker.SetNetwork(net)
					}
				}
				hbEvent := mqtt.SystemEvent{
					Timestamp:  hbData.Timestamp,
					Event:      "HEARTBEAT",
					RawPayload: statusPayload("HEARTBEAT", ""),
				}
				if err := d.publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			updateTracker()
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func signalString(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

func levelString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}
