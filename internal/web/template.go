package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/potty-timer/internal/logic"
	"github.com/sweeney/potty-timer/internal/logstore"
	"github.com/sweeney/potty-timer/internal/status"
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
	"clock": logic.FormatClock,
	"bandClass": func(b logic.ColorBand) string {
		switch b {
		case logic.BandMid:
			return "mid"
		case logic.BandHigh:
			return "high"
		default:
			return "low"
		}
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{if not .Config.WSBroker}}<meta http-equiv="refresh" content="5">{{end}}
<title>Potty Timer</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.low { color: #c00; font-weight: bold; }
.mid { color: #b80; font-weight: bold; }
.high { color: green; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Potty Timer{{if .Config.WSBroker}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>

<h2>Timer</h2>
<table>
<tr><th>Mode</th><td id="mode">{{.Mode}}</td></tr>
{{if .SessionID}}<tr id="elapsed-row"><th>Elapsed</th><td id="elapsed" class="{{bandClass .Band}}">{{clock .ElapsedSeconds}}</td></tr>{{end}}
{{if or .SessionID .Config.WSBroker}}<tr><th>Session</th><td id="session">{{if .SessionID}}{{.SessionID}}{{else}}none{{end}}</td></tr>{{end}}
<tr><th>Last duration</th><td id="last">{{if .LastDuration}}{{clock .LastDuration}}{{else}}none{{end}}</td></tr>
<tr><th>Thresholds</th><td>{{clock .Config.MidSeconds}} / {{clock .Config.HighSeconds}}</td></tr>
</table>

<h2>Recent Logs</h2>
<div id="logs">{{if .Entries}}<table>
{{range .Entries}}<tr><td>{{.Line}}</td></tr>
{{end}}</table>{{else}}<p>No logs found</p>{{end}}</div>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}none{{end}}</td></tr>
<tr><th>Clock</th><td>{{if .TimeSynced}}synced{{else}}No Time{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Counts</h2>
<table>
<tr><th>Sessions started</th><td>{{.Counts.SessionsStarted}}</td></tr>
<tr><th>Sessions completed</th><td>{{.Counts.SessionsCompleted}}</td></tr>
<tr><th>Logs cleared</th><td>{{.Counts.LogsCleared}}</td></tr>
<tr><th>Touches</th><td>{{.Counts.TouchesAccepted}} accepted, {{.Counts.TouchesIgnored}} ignored</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Touch</th><td>{{.Config.Touch}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Log file</th><td>{{.Config.LogPath}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/logs.json">Logs</a></p>
{{if .Config.WSBroker}}
<script src="/mqtt.min.js"></script>
<script>
(function() {
  var broker = "{{.Config.WSBroker}}";
  var topic = "home/potty-timer/events";
  var dot = document.getElementById("live-dot");
  var modeEl = document.getElementById("mode");
  var sessionEl = document.getElementById("session");
  var lastEl = document.getElementById("last");
  var logsEl = document.getElementById("logs");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function dropElapsed() {
    var row = document.getElementById("elapsed-row");
    if (row) { row.parentNode.removeChild(row); }
  }

  var client = mqtt.connect(broker, { reconnectPeriod: 5000 });

  client.on("connect", function() {
    setDot("ok", "live");
    client.subscribe(topic);
  });

  client.on("reconnect", function() {
    setDot("pending", "reconnecting");
  });

  client.on("offline", function() {
    setDot("err", "offline");
  });

  client.on("error", function() {
    setDot("err", "error");
  });

  client.on("message", function(t, payload) {
    try {
      var msg = JSON.parse(payload.toString());
      if (!msg.potty) { return; }
      switch (msg.potty.event) {
      case "SESSION_START":
        modeEl.textContent = "RUNNING";
        sessionEl.textContent = msg.potty.session_id || "";
        break;
      case "SESSION_END":
        modeEl.textContent = "IDLE";
        sessionEl.textContent = "none";
        lastEl.textContent = msg.potty.duration;
        dropElapsed();
        break;
      case "LOGS_CLEARED":
        logsEl.innerHTML = "<p>No logs found</p>";
        break;
      }
    } catch (e) {}
  });
})();
</script>
{{end}}
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot, entries []logstore.Entry) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime  time.Duration
		Entries []logstore.Entry
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Entries:  entries,
	}
	indexTmpl.Execute(w, data)
}
