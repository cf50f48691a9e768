package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/led-replay/internal/logic"
	"github.com/sweeney/led-replay/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"orUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>LED Replay</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.led { display: inline-block; width: 14px; height: 14px; border-radius: 50%; margin-right: 8px; background: #ddd; vertical-align: middle; }
.led.lit { background: #e33; }
.slot { display: inline-block; min-width: 1.5em; text-align: center; border: 1px solid #ccc; margin-right: 2px; }
.slot.next { border-color: #333; font-weight: bold; }
.replay { color: green; font-weight: bold; }
.recording { color: orange; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>LED Replay</h1>

<h2>Device</h2>
<table>
<tr><th>Mode</th><td id="mode" class="{{if eq (orUnknown (printf "%s" .Device.Mode)) "REPLAY"}}replay{{else}}recording{{end}}">{{orUnknown (printf "%s" .Device.Mode)}}</td></tr>
<tr><th>LEDs</th><td id="leds">{{range .LEDs}}<span class="led{{if .Lit}} lit{{end}}" title="LED {{.Index}}"></span>{{end}}</td></tr>
<tr><th>Cursor</th><td>{{.Device.Cursor}}</td></tr>
<tr><th>Recorded</th><td id="recorded">{{range $i, $v := .Slots}}<span class="slot{{if $v.Next}} next{{end}}">{{if $v.Filled}}{{$v.Value}}{{else}}&middot;{{end}}</span>{{end}} ({{len .Device.Recorded}}/{{.Capacity}})</td></tr>
<tr><th>Button</th><td>{{orUnknown (printf "%s" .Device.Button)}}</td></tr>
</table>

<h2>Button Counts</h2>
<table>
<tr><th>Edges</th><td>{{.Device.Counts.Edges}}</td></tr>
<tr><th>Recorded</th><td>{{.Device.Counts.Recorded}}</td></tr>
<tr><th>Ignored</th><td>{{.Device.Counts.Ignored}}</td></tr>
<tr><th>Bounced</th><td>{{.Device.Counts.Bounced}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}none{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Chip</th><td>{{.Config.Chip}}</td></tr>
<tr><th>Pins</th><td>LED {{.Config.PinLED1}}/{{.Config.PinLED2}}/{{.Config.PinLED3}}, button {{.Config.PinButton}}</td></tr>
<tr><th>Cadence</th><td>{{.Config.CadenceMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/metrics">metrics</a></p>
</body>
</html>
`

type ledView struct {
	Index int
	Lit   bool
}

type slotView struct {
	Value  int
	Filled bool
	Next   bool // slot the replay cursor will play next
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	leds := make([]ledView, 3)
	for i := range leds {
		leds[i] = ledView{Index: i + 1, Lit: snap.Lit == i+1}
	}

	replaying := snap.Device.Mode == logic.ModeReplay
	slots := make([]slotView, logic.Capacity)
	for i := range slots {
		if i < len(snap.Device.Recorded) {
			slots[i] = slotView{Value: snap.Device.Recorded[i], Filled: true}
		}
		slots[i].Next = replaying && i == snap.Device.Replay
	}

	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime   time.Duration
		LEDs     []ledView
		Slots    []slotView
		Capacity int
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		LEDs:     leds,
		Slots:    slots,
		Capacity: logic.Capacity,
	}
	indexTmpl.Execute(w, data)
}
