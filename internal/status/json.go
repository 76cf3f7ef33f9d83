package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/potty-timer/internal/logic"
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
	Session       *SessionJSON `json:"session,omitempty"`
	LastDuration  string       `json:"last_duration,omitempty"`
	TimeSynced    bool         `json:"time_synced"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// SessionJSON describes the running session.
type SessionJSON struct {
	ID             string `json:"id,omitempty"`
	ElapsedSeconds int64  `json:"elapsed_seconds"`
	Elapsed        string `json:"elapsed"`
	Band           string `json:"band"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of activity counts.
type CountsJSON struct {
	SessionsStarted   int `json:"sessions_started"`
	SessionsCompleted int `json:"sessions_completed"`
	LogsCleared       int `json:"logs_cleared"`
	TouchesAccepted   int `json:"touches_accepted"`
	TouchesIgnored    int `json:"touches_ignored"`
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

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	MidSeconds  int64  `json:"mid_seconds"`
	HighSeconds int64  `json:"high_seconds"`
	Touch       string `json:"touch"`
	LogPath     string `json:"log_path"`
	Broker      string `json:"broker"`
	WSBroker    string `json:"ws_broker,omitempty"`
	HTTPAddr    string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	mode := string(snap.Mode)
	if mode == "" {
		mode = string(logic.KindIdle)
	}

	inner := StatusInner{
		Mode:          mode,
		TimeSynced:    snap.TimeSynced,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			SessionsStarted:   snap.Counts.SessionsStarted,
			SessionsCompleted: snap.Counts.SessionsCompleted,
			LogsCleared:       snap.Counts.LogsCleared,
			TouchesAccepted:   snap.Counts.TouchesAccepted,
			TouchesIgnored:    snap.Counts.TouchesIgnored,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			MidSeconds:  snap.Config.MidSeconds,
			HighSeconds: snap.Config.HighSeconds,
			Touch:       snap.Config.Touch,
			LogPath:     snap.Config.LogPath,
			Broker:      snap.Config.Broker,
			WSBroker:    snap.Config.WSBroker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}

	// A session survives a trip through the log view.
	if snap.SessionID != "" || snap.Mode == logic.KindRunning {
		inner.Session = &SessionJSON{
			ID:             snap.SessionID,
			ElapsedSeconds: snap.ElapsedSeconds,
			Elapsed:        logic.FormatClock(snap.ElapsedSeconds),
			Band:           string(snap.Band),
		}
	}
	if snap.LastDuration != nil {
		inner.LastDuration = logic.FormatClock(*snap.LastDuration)
	}
	return inner
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
