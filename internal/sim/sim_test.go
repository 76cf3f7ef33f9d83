package sim

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sweeney/potty-timer/internal/app"
	"github.com/sweeney/potty-timer/internal/clock"
	"github.com/sweeney/potty-timer/internal/logic"
	"github.com/sweeney/potty-timer/internal/logstore"
	"github.com/sweeney/potty-timer/internal/mqtt"
)

var t0 = time.Date(2026, 1, 1, 7, 0, 0, 0, time.UTC)

func monotonic() clock.Source {
	return clock.NewMonotonic(func() time.Time { return t0 })
}

func TestScreenIdleView(t *testing.T) {
	s := NewScreen(logic.DefaultLayout, monotonic())
	s.RenderIdle()

	view := s.View()
	for _, want := range []string{"Potty Timer!", "Touch to Start", "00:00:00", "LOGS", "No Time"} {
		if !strings.Contains(view, want) {
			t.Errorf("idle view missing %q", want)
		}
	}
	if got := strings.Count(view, "\n") + 1; got != 24 {
		t.Errorf("rows: got %d, want 24", got)
	}
}

func TestScreenRunningView(t *testing.T) {
	s := NewScreen(logic.DefaultLayout, clock.NewSynced(clock.NewMonotonic(func() time.Time { return t0 }), 0, time.UTC))
	s.RenderRunning(logic.Frame{Hours: 1, Minutes: 2, Seconds: 3, Band: logic.BandLow, Full: true})

	view := s.View()
	if !strings.Contains(view, "01:02:03") {
		t.Error("running view missing the elapsed time")
	}
	if !strings.Contains(view, "07:00AM") {
		t.Error("running view missing the wall clock")
	}
	if strings.Contains(view, "Touch to Start") {
		t.Error("running view should not show the idle prompt")
	}
	if s.Kind() != logic.KindRunning || s.Renders != 1 {
		t.Errorf("unexpected state kind=%s renders=%d", s.Kind(), s.Renders)
	}
}

func TestScreenLogView(t *testing.T) {
	s := NewScreen(logic.DefaultLayout, monotonic())
	s.RenderLogView([]logstore.Entry{
		{Timestamp: "01/01/26 07:05 AM", Message: "Duration: 00:04:55"},
		{Timestamp: "10ms", Message: "Boot"},
	}, false)

	view := s.View()
	for _, want := range []string{"Recent Logs", "01/01/26 07:05 AM Duration: 00:04:55", "10ms Boot", "CLEAR", "Touch anywhere to return"} {
		if !strings.Contains(view, want) {
			t.Errorf("log view missing %q", want)
		}
	}

	s.RenderLogView(nil, true)
	if !strings.Contains(s.View(), "No logs found") {
		t.Error("empty log view missing placeholder")
	}
}

func TestScreenLogViewStopsAboveClear(t *testing.T) {
	s := NewScreen(logic.DefaultLayout, monotonic())
	var entries []logstore.Entry
	for i := 0; i < 30; i++ {
		entries = append(entries, logstore.Entry{Timestamp: "1ms", Message: "Boot"})
	}
	s.RenderLogView(entries, false)

	if got := strings.Count(s.View(), "1ms Boot"); got != 17 {
		t.Errorf("visible entries: got %d, want 17", got)
	}
}

func TestPointAt(t *testing.T) {
	s := NewScreen(logic.DefaultLayout, monotonic())

	p, ok := s.PointAt(55, 21)
	if !ok {
		t.Fatal("expected a point inside the grid")
	}
	if !logic.DefaultLayout.Logs.Contains(p.X, p.Y) {
		t.Errorf("cell (55,21) maps to %+v, outside the logs button", p)
	}
	if p, _ := s.PointAt(5, 21); !logic.DefaultLayout.Clear.Contains(p.X, p.Y) {
		t.Errorf("cell (5,21) maps to %+v, outside the clear button", p)
	}
	for _, cell := range [][2]int{{-1, 0}, {64, 0}, {0, 24}} {
		if _, ok := s.PointAt(cell[0], cell[1]); ok {
			t.Errorf("cell %v should be off screen", cell)
		}
	}
}

type simHarness struct {
	model  tea.Model
	screen *Screen
	store  *logstore.Memory
	events *Recorder
	pub    *mqtt.FakePublisher
	now    time.Time
}

func newSimHarness() *simHarness {
	h := &simHarness{now: t0, store: logstore.NewMemory(), pub: mqtt.NewFakePublisher()}
	src := monotonic()
	h.screen = NewScreen(logic.DefaultLayout, src)
	h.events = &Recorder{Next: h.pub}
	ctrl := app.New(logic.NewMachine(logic.Config{
		Thresholds: logic.DefaultThresholds,
		Layout:     logic.DefaultLayout,
		Debounce:   500 * time.Millisecond,
	}, t0), app.Deps{
		Store:     h.store,
		Renderer:  h.screen,
		Publisher: h.events,
		Clock:     src,
	})
	h.model = New(Options{
		Controller: ctrl,
		Screen:     h.screen,
		Layout:     logic.DefaultLayout,
		Events:     h.events,
		Now:        func() time.Time { return h.now },
	})
	return h
}

func (h *simHarness) send(msg tea.Msg) tea.Cmd {
	m, cmd := h.model.Update(msg)
	h.model = m
	return cmd
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func click(col, row int) tea.MouseMsg {
	return tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestModelSessionFlow(t *testing.T) {
	h := newSimHarness()
	h.send(bootMsg{})
	if msgs := h.store.Messages(); len(msgs) != 1 || msgs[0] != "Boot" {
		t.Fatalf("unexpected log after boot: %v", msgs)
	}

	h.now = t0.Add(time.Second)
	h.send(keyMsg('t'))
	if h.screen.Kind() != logic.KindRunning {
		t.Fatalf("expected running, got %s", h.screen.Kind())
	}
	if !strings.Contains(h.events.Last(), "SESSION_START") {
		t.Errorf("expected SESSION_START payload, got %q", h.events.Last())
	}

	h.now = t0.Add(3 * time.Second)
	if cmd := h.send(tickMsg(h.now)); cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if !strings.Contains(h.model.View(), "00:00:02") {
		t.Error("view should show the elapsed time after a tick")
	}

	// Open the log by clicking the LOGS button; the session keeps running.
	h.now = t0.Add(4 * time.Second)
	h.send(click(55, 21))
	if h.screen.Kind() != logic.KindViewingLog {
		t.Fatalf("expected log view, got %s", h.screen.Kind())
	}
	if !strings.Contains(h.model.View(), "Recent Logs") {
		t.Error("view should show the log overlay")
	}

	// Any other touch returns to the running timer.
	h.now = t0.Add(5 * time.Second)
	h.send(click(30, 5))
	if h.screen.Kind() != logic.KindRunning {
		t.Fatalf("expected running after leaving the log, got %s", h.screen.Kind())
	}

	h.now = t0.Add(11 * time.Second)
	h.send(keyMsg(' '))
	msgs := h.store.Messages()
	if len(msgs) != 2 || msgs[1] != "Duration: 00:00:10" {
		t.Errorf("unexpected log after reset: %v", msgs)
	}
	if len(h.pub.Events) != 3 {
		t.Errorf("expected start, end, start forwarded; got %d", len(h.pub.Events))
	}
}

func TestModelClearLog(t *testing.T) {
	h := newSimHarness()
	h.send(bootMsg{})

	h.now = t0.Add(time.Second)
	h.send(keyMsg('l'))
	h.now = t0.Add(2 * time.Second)
	h.send(keyMsg('c'))

	if h.store.Clears != 1 {
		t.Errorf("Clears: got %d, want 1", h.store.Clears)
	}
	if !strings.Contains(h.model.View(), "No logs found") {
		t.Error("expected the emptied log view")
	}
}

func TestModelIgnoresOtherMouseEvents(t *testing.T) {
	h := newSimHarness()
	h.send(bootMsg{})

	h.now = t0.Add(time.Second)
	h.send(tea.MouseMsg{X: 30, Y: 5, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	h.send(tea.MouseMsg{X: 30, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	h.send(click(200, 200))

	if h.screen.Kind() != logic.KindIdle {
		t.Errorf("expected idle, got %s", h.screen.Kind())
	}
}

func TestModelQuit(t *testing.T) {
	h := newSimHarness()
	cmd := h.send(keyMsg('q'))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
