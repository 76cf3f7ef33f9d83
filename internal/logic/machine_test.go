package logic

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		Thresholds: Thresholds{Mid: 12600, High: 14400},
		Layout:     DefaultLayout,
		Debounce:   500 * time.Millisecond,
	}
}

// Points that hit nothing, the Logs button and the Clear button.
func elsewhere(at time.Time) TouchEvent { return TouchEvent{X: 160, Y: 60, Time: at} }
func logsBtn(at time.Time) TouchEvent   { return TouchEvent{X: 285, Y: 220, Time: at} }
func clearBtn(at time.Time) TouchEvent  { return TouchEvent{X: 45, Y: 215, Time: at} }

func effectTypes(effects []Effect) []EffectType {
	out := make([]EffectType, len(effects))
	for i, e := range effects {
		out[i] = e.Type
	}
	return out
}

func assertEffects(t *testing.T, got []Effect, want ...EffectType) {
	t.Helper()
	types := effectTypes(got)
	if len(types) != len(want) {
		t.Fatalf("effects: got %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("effects: got %v, want %v", types, want)
		}
	}
}

func findEffect(effects []Effect, typ EffectType) *Effect {
	for i := range effects {
		if effects[i].Type == typ {
			return &effects[i]
		}
	}
	return nil
}

func TestNewMachine(t *testing.T) {
	m := NewMachine(testConfig(), t0)
	if m.Mode().Kind() != KindIdle {
		t.Errorf("expected IDLE, got %s", m.Mode().Kind())
	}
	if m.Session() != nil {
		t.Error("idle machine should have no session")
	}
	if m.Elapsed(t0.Add(time.Hour)) != 0 {
		t.Error("elapsed should be 0 while idle")
	}
}

func TestBoot(t *testing.T) {
	m := NewMachine(testConfig(), t0)
	effects := m.Boot()
	assertEffects(t, effects, EffectAppendLog, EffectRenderIdle)
	if effects[0].Message != "Boot" {
		t.Errorf("expected Boot message, got %q", effects[0].Message)
	}
}

func TestIdleTouchStartsSession(t *testing.T) {
	m := NewMachine(testConfig(), t0)
	at := t0.Add(10 * time.Second)

	effects := m.Touch(elsewhere(at))
	assertEffects(t, effects, EffectPublish, EffectRenderRunning)

	if m.Mode().Kind() != KindRunning {
		t.Fatalf("expected RUNNING, got %s", m.Mode().Kind())
	}
	if s := m.Session(); s == nil || !s.Start.Equal(at) {
		t.Fatalf("expected session started at %v, got %+v", at, s)
	}
	if m.Elapsed(at) != 0 {
		t.Errorf("expected elapsed 0, got %d", m.Elapsed(at))
	}

	frame := effects[1].Frame
	if frame.Clock() != "00:00:00" || frame.Band != BandLow || !frame.Full {
		t.Errorf("unexpected frame %+v", frame)
	}
	if effects[0].Event.Type != EventSessionStart {
		t.Errorf("expected SESSION_START, got %s", effects[0].Event.Type)
	}
}

func TestIdleLogsButtonOpensLogView(t *testing.T) {
	m := NewMachine(testConfig(), t0)

	effects := m.Touch(logsBtn(t0))
	assertEffects(t, effects, EffectRenderLogView)

	v, ok := m.Mode().(ViewingLog)
	if !ok {
		t.Fatalf("expected ViewingLog, got %T", m.Mode())
	}
	if v.Return.Kind() != KindIdle {
		t.Errorf("expected return to IDLE, got %s", v.Return.Kind())
	}
}

func TestRunningTouchLogsDurationAndResets(t *testing.T) {
	m := NewMachine(testConfig(), t0)
	m.Touch(elsewhere(t0))

	at := t0.Add(1*time.Hour + 2*time.Minute + 3*time.Second + 400*time.Millisecond)
	effects := m.Touch(elsewhere(at))
	assertEffects(t, effects, EffectAppendLog, EffectPublish, EffectPublish, EffectRenderRunning)

	if effects[0].Message != "Duration: 01:02:03" {
		t.Errorf("unexpected log message %q", effects[0].Message)
	}
	end := effects[1].Event
	if end.Type != EventSessionEnd || end.Elapsed != 3723 {
		t.Errorf("unexpected end event %+v", end)
	}
	if effects[2].Event.Type != EventSessionStart {
		t.Errorf("expected SESSION_START, got %s", effects[2].Event.Type)
	}

	if m.Mode().Kind() != KindRunning {
		t.Fatalf("expected RUNNING, got %s", m.Mode().Kind())
	}
	if m.Elapsed(at) != 0 {
		t.Errorf("expected elapsed reset to 0, got %d", m.Elapsed(at))
	}
	if effects[3].Frame.Clock() != "00:00:00" {
		t.Errorf("expected 00:00:00 frame, got %s", effects[3].Frame.Clock())
	}

	c := m.Counts()
	if c.SessionsStarted != 2 || c.SessionsCompleted != 1 {
		t.Errorf("unexpected counts %+v", c)
	}
}

func TestRunningTouchExactlyOneLogEntry(t *testing.T) {
	m := NewMachine(testConfig(), t0)
	m.Touch(elsewhere(t0))

	for i := 1; i <= 5; i++ {
		effects := m.Touch(elsewhere(t0.Add(time.Duration(i) * time.Minute)))
		n := 0
		for _, e := range effects {
			if e.Type == EffectAppendLog {
				n++
			}
		}
		if n != 1 {
			t.Fatalf("reset %d: expected 1 log entry, got %d", i, n)
		}
	}
}

func TestDurationPrefix(t *testing.T) {
	cfg := testConfig()
	cfg.DurationPrefix = "-- "
	m := NewMachine(cfg, t0)
	m.Touch(elsewhere(t0))

	effects := m.Touch(elsewhere(t0.Add(65 * time.Second)))
	if e := findEffect(effects, EffectAppendLog); e == nil || e.Message != "-- Duration: 00:01:05" {
		t.Errorf("unexpected log effect %+v", e)
	}
}

func TestRunningLogViewPreservesSession(t *testing.T) {
	m := NewMachine(testConfig(), t0)
	m.Touch(elsewhere(t0))

	m.Touch(logsBtn(t0.Add(10 * time.Minute)))
	v, ok := m.Mode().(ViewingLog)
	if !ok {
		t.Fatalf("expected ViewingLog, got %T", m.Mode())
	}
	r, ok := v.Return.(Running)
	if !ok {
		t.Fatalf("expected return to Running, got %T", v.Return)
	}
	if !r.Session.Start.Equal(t0) {
		t.Errorf("session start changed: %v", r.Session.Start)
	}
	if m.Elapsed(t0.Add(20*time.Minute)) != 0 {
		t.Error("elapsed should read 0 while the log view is active")
	}
	if h := m.HeldSession(); h == nil || !h.Start.Equal(t0) {
		t.Errorf("expected held session from %v, got %v", t0, h)
	}

	// Leave the log view 30 minutes after start: elapsed includes time spent viewing.
	at := t0.Add(30 * time.Minute)
	effects := m.Touch(elsewhere(at))
	assertEffects(t, effects, EffectRenderRunning)

	if m.Mode().Kind() != KindRunning {
		t.Fatalf("expected RUNNING, got %s", m.Mode().Kind())
	}
	if m.Elapsed(at) != 1800 {
		t.Errorf("expected elapsed 1800, got %d", m.Elapsed(at))
	}
	if f := effects[0].Frame; f.Clock() != "00:30:00" || !f.Full {
		t.Errorf("unexpected frame %+v", f)
	}
	if m.Counts().SessionsCompleted != 0 {
		t.Error("leaving the log view must not complete the session")
	}
}

func TestIdleLogViewReturnsToIdle(t *testing.T) {
	m := NewMachine(testConfig(), t0)
	m.Touch(logsBtn(t0))

	effects := m.Touch(elsewhere(t0.Add(time.Second)))
	assertEffects(t, effects, EffectRenderIdle)
	if m.Mode().Kind() != KindIdle {
		t.Errorf("expected IDLE, got %s", m.Mode().Kind())
	}
}

func TestLogsButtonInsideLogViewExits(t *testing.T) {
	m := NewMachine(testConfig(), t0)
	m.Touch(logsBtn(t0))

	// The Logs button is not special inside the log view.
	effects := m.Touch(logsBtn(t0.Add(time.Second)))
	assertEffects(t, effects, EffectRenderIdle)
}

func TestClearStaysInLogView(t *testing.T) {
	m := NewMachine(testConfig(), t0)
	m.Touch(elsewhere(t0))
	m.Touch(logsBtn(t0.Add(time.Minute)))

	effects := m.Touch(clearBtn(t0.Add(2 * time.Minute)))
	assertEffects(t, effects, EffectClearLog, EffectPublish, EffectRenderLogView)
	if effects[1].Event.Type != EventLogsCleared {
		t.Errorf("expected LOGS_CLEARED, got %s", effects[1].Event.Type)
	}

	v, ok := m.Mode().(ViewingLog)
	if !ok {
		t.Fatalf("expected ViewingLog, got %T", m.Mode())
	}
	if v.Return.Kind() != KindRunning {
		t.Errorf("expected return RUNNING, got %s", v.Return.Kind())
	}

	// A second non-Clear touch exits to the preserved session.
	at := t0.Add(3 * time.Minute)
	effects = m.Touch(elsewhere(at))
	assertEffects(t, effects, EffectRenderRunning)
	if m.Elapsed(at) != 180 {
		t.Errorf("expected elapsed 180, got %d", m.Elapsed(at))
	}
}

func TestClearButtonOutsideLogViewStartsSession(t *testing.T) {
	m := NewMachine(testConfig(), t0)

	effects := m.Touch(clearBtn(t0))
	assertEffects(t, effects, EffectPublish, EffectRenderRunning)
	if m.Mode().Kind() != KindRunning {
		t.Errorf("expected RUNNING, got %s", m.Mode().Kind())
	}
}

func TestDebounce(t *testing.T) {
	m := NewMachine(testConfig(), t0)

	if effects := m.Touch(elsewhere(t0)); len(effects) == 0 {
		t.Fatal("first touch should be accepted")
	}
	if effects := m.Touch(elsewhere(t0.Add(499 * time.Millisecond))); effects != nil {
		t.Fatalf("touch within debounce should be ignored, got %v", effectTypes(effects))
	}
	if m.Counts().SessionsCompleted != 0 {
		t.Error("debounced touch must not reset the session")
	}

	// Exactly at the interval the touch counts.
	effects := m.Touch(elsewhere(t0.Add(500 * time.Millisecond)))
	if findEffect(effects, EffectAppendLog) == nil {
		t.Fatalf("expected reset after debounce, got %v", effectTypes(effects))
	}

	c := m.Counts()
	if c.TouchesAccepted != 2 || c.TouchesIgnored != 1 {
		t.Errorf("unexpected touch counts %+v", c)
	}
}

func TestDebounceMeasuredFromAcceptedTouch(t *testing.T) {
	m := NewMachine(testConfig(), t0)
	m.Touch(elsewhere(t0))

	// Ignored touches do not extend the window.
	m.Touch(elsewhere(t0.Add(300 * time.Millisecond)))
	effects := m.Touch(elsewhere(t0.Add(600 * time.Millisecond)))
	if len(effects) == 0 {
		t.Error("touch 600ms after the accepted one should pass")
	}
}

func TestTickOnlyWhileRunning(t *testing.T) {
	m := NewMachine(testConfig(), t0)
	if effects := m.Tick(t0.Add(5 * time.Second)); effects != nil {
		t.Errorf("idle tick should be silent, got %v", effectTypes(effects))
	}

	m.Touch(logsBtn(t0))
	if effects := m.Tick(t0.Add(10 * time.Second)); effects != nil {
		t.Errorf("log view tick should be silent, got %v", effectTypes(effects))
	}
}

func TestTickOncePerSecond(t *testing.T) {
	m := NewMachine(testConfig(), t0)
	m.Touch(elsewhere(t0))

	if effects := m.Tick(t0.Add(500 * time.Millisecond)); effects != nil {
		t.Errorf("expected no redraw within the first second, got %v", effectTypes(effects))
	}

	effects := m.Tick(t0.Add(1050 * time.Millisecond))
	assertEffects(t, effects, EffectRenderRunning)
	if f := effects[0].Frame; f.Clock() != "00:00:01" || f.Full {
		t.Errorf("expected partial 00:00:01 frame, got %+v", f)
	}

	if effects := m.Tick(t0.Add(1500 * time.Millisecond)); effects != nil {
		t.Errorf("expected no redraw for the same second, got %v", effectTypes(effects))
	}
}

func TestTickBandChangeForcesFullRepaint(t *testing.T) {
	cfg := testConfig()
	cfg.Thresholds = Thresholds{Mid: 3, High: 6}
	m := NewMachine(cfg, t0)
	m.Touch(elsewhere(t0))

	var fulls []int64
	for s := int64(1); s <= 7; s++ {
		effects := m.Tick(t0.Add(time.Duration(s) * time.Second))
		if len(effects) != 1 {
			t.Fatalf("second %d: expected one render, got %d", s, len(effects))
		}
		if effects[0].Frame.Full {
			fulls = append(fulls, s)
		}
	}
	if len(fulls) != 2 || fulls[0] != 3 || fulls[1] != 6 {
		t.Errorf("expected full repaints at 3 and 6, got %v", fulls)
	}
}

func TestEndToEndThresholds(t *testing.T) {
	m := NewMachine(testConfig(), t0)
	m.Touch(elsewhere(t0))

	if got := m.Band(t0.Add(12600 * time.Second)); got != BandMid {
		t.Errorf("at 12600s expected MID, got %s", got)
	}
	at := t0.Add(14400 * time.Second)
	if got := m.Band(at); got != BandHigh {
		t.Errorf("at 14400s expected HIGH, got %s", got)
	}

	effects := m.Touch(elsewhere(at))
	if e := findEffect(effects, EffectAppendLog); e == nil || e.Message != "Duration: 04:00:00" {
		t.Fatalf("unexpected log effect %+v", e)
	}
	if m.Elapsed(at) != 0 {
		t.Errorf("expected elapsed 0 after reset, got %d", m.Elapsed(at))
	}
	if got := m.Band(at); got != BandLow {
		t.Errorf("expected LOW after reset, got %s", got)
	}
}

func TestCheckHeartbeat(t *testing.T) {
	m := NewMachine(testConfig(), t0)

	if hb := m.CheckHeartbeat(t0.Add(time.Hour), 0); hb != nil {
		t.Error("interval 0 should disable heartbeats")
	}
	if hb := m.CheckHeartbeat(t0.Add(10*time.Minute), 15*time.Minute); hb != nil {
		t.Error("heartbeat fired early")
	}

	m.Touch(elsewhere(t0))
	hb := m.CheckHeartbeat(t0.Add(15*time.Minute), 15*time.Minute)
	if hb == nil {
		t.Fatal("expected heartbeat")
	}
	if hb.Uptime != 15*time.Minute {
		t.Errorf("unexpected uptime %v", hb.Uptime)
	}
	if hb.Counts.SessionsStarted != 1 {
		t.Errorf("unexpected counts %+v", hb.Counts)
	}
	if hb := m.CheckHeartbeat(t0.Add(20*time.Minute), 15*time.Minute); hb != nil {
		t.Error("heartbeat should wait a full interval after the last one")
	}
}
