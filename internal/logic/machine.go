package logic

import "time"

// Config is the static configuration of the state machine.
type Config struct {
	Thresholds Thresholds
	Layout     Layout
	// Debounce is the minimum gap between two accepted touches.
	Debounce time.Duration
	// DurationPrefix is prepended to the reset log line ("" or "-- ").
	DurationPrefix string
}

// Machine is the application state machine. It is not safe for concurrent
// use: exactly one goroutine may drive it.
type Machine struct {
	cfg  Config
	mode Mode

	lastAccepted time.Time
	accepted     bool

	// Last values handed to the renderer while running.
	shownSeconds int64
	shownBand    ColorBand

	startTime     time.Time
	lastHeartbeat time.Time
	counts        Counts
}

// NewMachine creates a machine in Idle. The startTime is used for
// calculating uptime in heartbeat events.
func NewMachine(cfg Config, startTime time.Time) *Machine {
	return &Machine{
		cfg:           cfg,
		mode:          Idle{},
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Boot returns the effects for device start: a boot log line and the idle view.
func (m *Machine) Boot() []Effect {
	return []Effect{
		{Type: EffectAppendLog, Message: "Boot"},
		{Type: EffectRenderIdle},
	}
}

// Touch runs one touch-down event through the transition table. Touches
// arriving within the debounce interval of the last accepted touch are
// dropped and return no effects.
func (m *Machine) Touch(ev TouchEvent) []Effect {
	if m.accepted && ev.Time.Sub(m.lastAccepted) < m.cfg.Debounce {
		m.counts.TouchesIgnored++
		return nil
	}
	m.accepted = true
	m.lastAccepted = ev.Time
	m.counts.TouchesAccepted++

	switch mode := m.mode.(type) {
	case ViewingLog:
		if m.cfg.Layout.Clear.Contains(ev.X, ev.Y) {
			return m.clearLogs(ev.Time)
		}
		return m.leaveLogView(mode, ev.Time)

	case Idle:
		if m.cfg.Layout.Logs.Contains(ev.X, ev.Y) {
			m.mode = ViewingLog{Return: mode}
			return []Effect{{Type: EffectRenderLogView}}
		}
		return m.start(ev.Time)

	case Running:
		if m.cfg.Layout.Logs.Contains(ev.X, ev.Y) {
			m.mode = ViewingLog{Return: mode}
			return []Effect{{Type: EffectRenderLogView}}
		}
		return m.reset(mode, ev.Time)
	}
	return nil
}

// Tick handles the periodic redraw while running. It returns a render
// effect only when the displayed second changed; a band change forces a
// full repaint.
func (m *Machine) Tick(now time.Time) []Effect {
	r, ok := m.mode.(Running)
	if !ok {
		return nil
	}
	elapsed := ElapsedSeconds(&r.Session, now)
	if elapsed == m.shownSeconds {
		return nil
	}
	band := BandFor(elapsed, m.cfg.Thresholds)
	full := band != m.shownBand
	m.shownSeconds = elapsed
	m.shownBand = band
	return []Effect{{Type: EffectRenderRunning, Frame: FrameFor(elapsed, m.cfg.Thresholds, full)}}
}

func (m *Machine) start(now time.Time) []Effect {
	m.mode = Running{Session: StartSession(now)}
	m.shownSeconds = 0
	m.shownBand = BandFor(0, m.cfg.Thresholds)
	m.counts.SessionsStarted++
	return []Effect{
		{Type: EffectPublish, Event: Event{Timestamp: now, Type: EventSessionStart}},
		{Type: EffectRenderRunning, Frame: FrameFor(0, m.cfg.Thresholds, true)},
	}
}

func (m *Machine) reset(r Running, now time.Time) []Effect {
	elapsed := ElapsedSeconds(&r.Session, now)
	m.counts.SessionsCompleted++
	effects := []Effect{
		{Type: EffectAppendLog, Message: m.cfg.DurationPrefix + "Duration: " + FormatClock(elapsed)},
		{Type: EffectPublish, Event: Event{Timestamp: now, Type: EventSessionEnd, Elapsed: elapsed}},
	}
	return append(effects, m.start(now)...)
}

func (m *Machine) clearLogs(now time.Time) []Effect {
	m.counts.LogsCleared++
	return []Effect{
		{Type: EffectClearLog},
		{Type: EffectPublish, Event: Event{Timestamp: now, Type: EventLogsCleared}},
		{Type: EffectRenderLogView},
	}
}

func (m *Machine) leaveLogView(v ViewingLog, now time.Time) []Effect {
	m.mode = v.Return
	switch r := v.Return.(type) {
	case Running:
		// The session kept running while the log view was up.
		elapsed := ElapsedSeconds(&r.Session, now)
		m.shownSeconds = elapsed
		m.shownBand = BandFor(elapsed, m.cfg.Thresholds)
		return []Effect{{Type: EffectRenderRunning, Frame: FrameFor(elapsed, m.cfg.Thresholds, true)}}
	default:
		return []Effect{{Type: EffectRenderIdle}}
	}
}

// Config returns the configuration the machine was built with.
func (m *Machine) Config() Config {
	return m.cfg
}

// Mode returns the active mode.
func (m *Machine) Mode() Mode {
	return m.mode
}

// Session returns the active session, or nil outside Running.
func (m *Machine) Session() *Session {
	if r, ok := m.mode.(Running); ok {
		s := r.Session
		return &s
	}
	return nil
}

// HeldSession returns the session kept running behind the log view, or nil.
func (m *Machine) HeldSession() *Session {
	if v, ok := m.mode.(ViewingLog); ok {
		if r, ok := v.Return.(Running); ok {
			s := r.Session
			return &s
		}
	}
	return nil
}

// Elapsed returns the elapsed seconds of the active session, 0 outside Running.
func (m *Machine) Elapsed(now time.Time) int64 {
	return ElapsedSeconds(m.Session(), now)
}

// Band returns the color band for the current elapsed time.
func (m *Machine) Band(now time.Time) ColorBand {
	return BandFor(m.Elapsed(now), m.cfg.Thresholds)
}

// Counts returns a copy of the activity counters.
func (m *Machine) Counts() Counts {
	return m.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (m *Machine) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if now.Sub(m.lastHeartbeat) < interval {
		return nil
	}
	m.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(m.startTime),
		Counts:    m.counts,
	}
}
