// Package logic contains the pure core of the potty timer: the session timer,
// the color policy, the screen regions and the application state machine.
// This package has NO external dependencies (no display, touch, storage or
// time.Sleep). Time is always injectable via time.Time parameters.
package logic

import "time"

// ColorBand is the background color category derived from elapsed time.
type ColorBand string

const (
	BandLow  ColorBand = "LOW"
	BandMid  ColorBand = "MID"
	BandHigh ColorBand = "HIGH"
)

// ModeKind names a Mode variant for logging and status output.
type ModeKind string

const (
	KindIdle       ModeKind = "IDLE"
	KindRunning    ModeKind = "RUNNING"
	KindViewingLog ModeKind = "VIEWING_LOG"
)

// Mode is the active screen mode. Exactly one is active at any time.
// The set of implementations is closed: Idle, Running and ViewingLog.
type Mode interface {
	Kind() ModeKind
	isMode()
}

// Resumable is a mode the log view can return to. Only Idle and Running
// implement it, so a log view can never return into another log view.
type Resumable interface {
	Mode
	isResumable()
}

// Idle waits for the first touch.
type Idle struct{}

// Running has an active session.
type Running struct {
	Session Session
}

// ViewingLog shows the log overlay and remembers where to go back to.
type ViewingLog struct {
	Return Resumable
}

func (Idle) Kind() ModeKind       { return KindIdle }
func (Running) Kind() ModeKind    { return KindRunning }
func (ViewingLog) Kind() ModeKind { return KindViewingLog }

func (Idle) isMode()       {}
func (Running) isMode()    {}
func (ViewingLog) isMode() {}

func (Idle) isResumable()    {}
func (Running) isResumable() {}

// Session is one timed interval. It only exists inside Running.
type Session struct {
	Start time.Time
}

// TouchEvent is a single debounced-at-the-edge press in screen coordinates.
type TouchEvent struct {
	X    int
	Y    int
	Time time.Time
}

// EffectType identifies what the controller must do for an Effect.
type EffectType string

const (
	EffectRenderIdle    EffectType = "RENDER_IDLE"
	EffectRenderRunning EffectType = "RENDER_RUNNING"
	EffectRenderLogView EffectType = "RENDER_LOG_VIEW"
	EffectAppendLog     EffectType = "APPEND_LOG"
	EffectClearLog      EffectType = "CLEAR_LOG"
	EffectPublish       EffectType = "PUBLISH"
)

// Effect is a side effect decided by the Machine. Effects are executed in
// the order they are returned.
type Effect struct {
	Type EffectType

	// Frame is set for EffectRenderRunning.
	Frame Frame

	// Message is set for EffectAppendLog.
	Message string

	// Event is set for EffectPublish.
	Event Event
}

// Frame is everything the renderer needs to paint the running view.
type Frame struct {
	Hours   int64
	Minutes int64
	Seconds int64
	Band    ColorBand
	// Full requests a full repaint rather than just the timer area.
	Full bool
}

// EventType represents a session lifecycle event.
type EventType string

const (
	EventSessionStart EventType = "SESSION_START"
	EventSessionEnd   EventType = "SESSION_END"
	EventLogsCleared  EventType = "LOGS_CLEARED"
)

// Event is a session lifecycle event to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	// Elapsed is the finished session length in seconds (SESSION_END only).
	Elapsed int64
}

// Counts tracks activity since startup.
type Counts struct {
	SessionsStarted   int
	SessionsCompleted int
	LogsCleared       int
	TouchesAccepted   int
	TouchesIgnored    int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
