// Package config loads daemon configuration from a TOML file and CLI flags.
// Precedence is: flags explicitly set on the command line, then the file,
// then built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"

	"github.com/sweeney/led-replay/internal/gpio"
)

// DefaultPath is where the daemon looks for its config file.
const DefaultPath = "/etc/led-replay.toml"

// DefaultHeartbeat is the default interval between HEARTBEAT events.
const DefaultHeartbeat = 15 * time.Minute

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Flag names shared by BindFlags and Apply.
const (
	FlagConfig    = "config"
	FlagChip      = "chip"
	FlagLED1      = "led1"
	FlagLED2      = "led2"
	FlagLED3      = "led3"
	FlagButton    = "button"
	FlagBroker    = "broker"
	FlagHTTP      = "http"
	FlagHeartbeat = "heartbeat"
)

// Duration is a time.Duration written as a Go duration string ("15m") in TOML.
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// GPIO is the line wiring.
type GPIO struct {
	Chip   string `toml:"chip"`
	LED1   int    `toml:"led1"`
	LED2   int    `toml:"led2"`
	LED3   int    `toml:"led3"`
	Button int    `toml:"button"`
}

// MQTT is the telemetry broker. An empty broker disables publishing.
type MQTT struct {
	Broker string `toml:"broker"`
}

// HTTP is the status server. An empty address disables it.
type HTTP struct {
	Addr string `toml:"addr"`
}

// Config is the full daemon configuration.
type Config struct {
	GPIO      GPIO     `toml:"gpio"`
	MQTT      MQTT     `toml:"mqtt"`
	HTTP      HTTP     `toml:"http"`
	Heartbeat Duration `toml:"heartbeat"`
}

// Default returns the configuration used when no file or flags override it.
func Default() Config {
	return Config{
		GPIO: GPIO{
			Chip:   gpio.DefaultChip,
			LED1:   gpio.DefaultPinLED1,
			LED2:   gpio.DefaultPinLED2,
			LED3:   gpio.DefaultPinLED3,
			Button: gpio.DefaultPinButton,
		},
		MQTT:      MQTT{Broker: "tcp://127.0.0.1:1883"},
		HTTP:      HTTP{Addr: ":80"},
		Heartbeat: Duration(DefaultHeartbeat),
	}
}

// LEDPins returns the three LED offsets in selection order.
func (c Config) LEDPins() [3]int {
	return [3]int{c.GPIO.LED1, c.GPIO.LED2, c.GPIO.LED3}
}

// HeartbeatInterval returns the heartbeat as a time.Duration.
func (c Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.Heartbeat)
}

// Parse decodes TOML over the defaults. Keys absent from data keep their
// default values.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse TOML config: %w", err)
	}
	return cfg, nil
}

// Load reads the file at path over the defaults. A missing file is not an
// error and yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// BindFlags registers the configuration flags on fs with the defaults shown
// in help output.
func BindFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagConfig, DefaultPath, "path to TOML config file")
	fs.String(FlagChip, d.GPIO.Chip, "GPIO chip name")
	fs.Int(FlagLED1, d.GPIO.LED1, "GPIO line offset for LED 1")
	fs.Int(FlagLED2, d.GPIO.LED2, "GPIO line offset for LED 2")
	fs.Int(FlagLED3, d.GPIO.LED3, "GPIO line offset for LED 3")
	fs.Int(FlagButton, d.GPIO.Button, "GPIO line offset for the button")
	fs.String(FlagBroker, d.MQTT.Broker, "MQTT broker URL (empty disables MQTT)")
	fs.String(FlagHTTP, d.HTTP.Addr, "HTTP listen address (empty disables)")
	fs.Duration(FlagHeartbeat, d.HeartbeatInterval(), "heartbeat interval (0 disables)")
}

// Apply overrides cfg with every flag explicitly set on fs.
func Apply(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	str := func(name string, dst *string) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetInt(name)
		}
	}

	str(FlagChip, &cfg.GPIO.Chip)
	num(FlagLED1, &cfg.GPIO.LED1)
	num(FlagLED2, &cfg.GPIO.LED2)
	num(FlagLED3, &cfg.GPIO.LED3)
	num(FlagButton, &cfg.GPIO.Button)
	str(FlagBroker, &cfg.MQTT.Broker)
	str(FlagHTTP, &cfg.HTTP.Addr)
	if err == nil && fs.Changed(FlagHeartbeat) {
		var hb time.Duration
		hb, err = fs.GetDuration(FlagHeartbeat)
		cfg.Heartbeat = Duration(hb)
	}
	if err != nil {
		return fmt.Errorf("read flags: %w", err)
	}
	return nil
}

// FromFlags loads the file named by --config and applies explicitly set flags.
func FromFlags(fs *pflag.FlagSet) (Config, error) {
	path, err := fs.GetString(FlagConfig)
	if err != nil {
		return Config{}, fmt.Errorf("read flags: %w", err)
	}

	cfg, err := Load(path)
	if err != nil {
		return Config{}, err
	}
	if err := Apply(&cfg, fs); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the wiring and addresses.
func (c Config) Validate() error {
	if c.GPIO.Chip == "" {
		return fmt.Errorf("%w: gpio.chip is empty", ErrInvalid)
	}

	pins := map[string]int{
		"gpio.led1":   c.GPIO.LED1,
		"gpio.led2":   c.GPIO.LED2,
		"gpio.led3":   c.GPIO.LED3,
		"gpio.button": c.GPIO.Button,
	}
	seen := make(map[int]string, len(pins))
	for _, name := range []string{"gpio.led1", "gpio.led2", "gpio.led3", "gpio.button"} {
		pin := pins[name]
		if pin < 0 {
			return fmt.Errorf("%w: %s is negative (%d)", ErrInvalid, name, pin)
		}
		if other, ok := seen[pin]; ok {
			return fmt.Errorf("%w: %s and %s share line %d", ErrInvalid, other, name, pin)
		}
		seen[pin] = name
	}

	if c.MQTT.Broker != "" && !strings.Contains(c.MQTT.Broker, "://") {
		return fmt.Errorf("%w: mqtt.broker %q has no scheme", ErrInvalid, c.MQTT.Broker)
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("%w: heartbeat is negative", ErrInvalid)
	}
	return nil
}
