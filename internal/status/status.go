// Package status provides a thread-safe status tracker for the potty-timer
// daemon. It is written by the poll loop and read by HTTP handlers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/potty-timer/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	DebounceMs  int64
	HeartbeatMs int64
	MidSeconds  int64
	HighSeconds int64
	Touch       string
	LogPath     string
	Broker      string
	WSBroker    string // websocket broker URL for the live page (empty = disabled)
	HTTPAddr    string
}

// Core is the state of the timer core at one instant.
type Core struct {
	Mode           logic.ModeKind
	SessionID      string
	ElapsedSeconds int64
	Band           logic.ColorBand
	Counts         logic.Counts
	// LastDuration is the length of the last finished session, nil if none.
	LastDuration *int64
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Core
	TimeSynced    bool
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Core:      Core{Mode: logic.KindIdle},
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update replaces the core state. Called from the run loop on every tick.
func (t *Tracker) Update(c Core) {
	if c.LastDuration != nil {
		d := *c.LastDuration
		c.LastDuration = &d
	}
	t.mu.Lock()
	t.snap.Core = c
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetTimeSynced records whether wall-clock time is available.
func (t *Tracker) SetTimeSynced(synced bool) {
	t.mu.Lock()
	t.snap.TimeSynced = synced
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
