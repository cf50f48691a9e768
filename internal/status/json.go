package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/led-replay/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Mode          string       `json:"mode"`
	LED           int          `json:"led"`
	Cursor        int          `json:"cursor"`
	ReplayCursor  int          `json:"replay_cursor"`
	Recorded      []int        `json:"recorded"`
	Capacity      int          `json:"capacity"`
	Button        string       `json:"button"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"button_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of button counters.
type CountsJSON struct {
	Edges    int `json:"edges"`
	Recorded int `json:"recorded"`
	Ignored  int `json:"ignored"`
	Bounced  int `json:"bounced"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// PinsJSON is the JSON representation of the GPIO wiring.
type PinsJSON struct {
	LED1   int `json:"led1"`
	LED2   int `json:"led2"`
	LED3   int `json:"led3"`
	Button int `json:"button"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip        string   `json:"chip"`
	Pins        PinsJSON `json:"pins"`
	CadenceMs   int64    `json:"cadence_ms"`
	DebounceMs  int64    `json:"debounce_ms"`
	HeartbeatMs int64    `json:"heartbeat_ms"`
	Broker      string   `json:"broker"`
	HTTPAddr    string   `json:"http_addr"`
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

func buildInner(snap Snapshot) StatusInner {
	recorded := snap.Device.Recorded
	if recorded == nil {
		recorded = []int{}
	}

	return StatusInner{
		Mode:          orUnknown(string(snap.Device.Mode)),
		LED:           snap.Lit,
		Cursor:        snap.Device.Cursor,
		ReplayCursor:  snap.Device.Replay,
		Recorded:      recorded,
		Capacity:      logic.Capacity,
		Button:        orUnknown(string(snap.Device.Button)),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Edges:    snap.Device.Counts.Edges,
			Recorded: snap.Device.Counts.Recorded,
			Ignored:  snap.Device.Counts.Ignored,
			Bounced:  snap.Device.Counts.Bounced,
		},
		Config: ConfigJSON{
			Chip: snap.Config.Chip,
			Pins: PinsJSON{
				LED1:   snap.Config.PinLED1,
				LED2:   snap.Config.PinLED2,
				LED3:   snap.Config.PinLED3,
				Button: snap.Config.PinButton,
			},
			CadenceMs:   snap.Config.CadenceMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
