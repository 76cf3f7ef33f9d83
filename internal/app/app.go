// Package app wires the pure state machine to its collaborators. The
// Controller runs each effect the machine returns against the log store,
// the renderer and the publisher. Failures in any of them are logged and
// never stop the timer.
package app

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/potty-timer/internal/clock"
	"github.com/sweeney/potty-timer/internal/display"
	"github.com/sweeney/potty-timer/internal/logic"
	"github.com/sweeney/potty-timer/internal/logstore"
	"github.com/sweeney/potty-timer/internal/mqtt"
	"github.com/sweeney/potty-timer/internal/status"
	"github.com/sweeney/potty-timer/internal/touch"
)

// DefaultMaxLogView is how many entries fit on the log view.
const DefaultMaxLogView = 9

// Deps are the controller's collaborators.
type Deps struct {
	Store     logstore.Store
	Renderer  display.Renderer
	Publisher mqtt.Publisher
	Clock     clock.Source

	// MaxLogView caps the entries shown on the log view. Zero means
	// DefaultMaxLogView.
	MaxLogView int

	// NewID returns a fresh session ID. Nil means uuid.NewString.
	NewID func() string
}

// Controller drives a Machine. It is not safe for concurrent use.
type Controller struct {
	machine *logic.Machine
	deps    Deps

	sessionID    string
	lastDuration *int64
}

// New creates a Controller around m.
func New(m *logic.Machine, d Deps) *Controller {
	if d.MaxLogView <= 0 {
		d.MaxLogView = DefaultMaxLogView
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.Publisher == nil {
		d.Publisher = mqtt.Discard{}
	}
	return &Controller{machine: m, deps: d}
}

// Machine exposes the underlying state machine.
func (c *Controller) Machine() *logic.Machine {
	return c.machine
}

// Boot logs the boot entry and shows the idle screen.
func (c *Controller) Boot(now time.Time) {
	c.apply(c.machine.Boot(), now)
}

// Touch feeds one touch-down through the machine.
func (c *Controller) Touch(p touch.Point, now time.Time) {
	c.apply(c.machine.Touch(logic.TouchEvent{X: p.X, Y: p.Y, Time: now}), now)
}

// Tick advances the running display.
func (c *Controller) Tick(now time.Time) {
	c.apply(c.machine.Tick(now), now)
}

// Core reports the controller state for the status tracker.
func (c *Controller) Core(now time.Time) status.Core {
	mode := c.machine.Mode()
	s := c.machine.Session()
	if s == nil {
		s = c.machine.HeldSession()
	}
	elapsed := logic.ElapsedSeconds(s, now)

	core := status.Core{
		Mode:           mode.Kind(),
		ElapsedSeconds: elapsed,
		Counts:         c.machine.Counts(),
		LastDuration:   c.lastDuration,
	}
	if s != nil {
		core.SessionID = c.sessionID
		core.Band = logic.BandFor(elapsed, c.machine.Config().Thresholds)
	}
	return core
}

// SessionID returns the ID of the current session, or "" when there is none.
func (c *Controller) SessionID() string {
	if c.machine.Session() == nil && c.machine.HeldSession() == nil {
		return ""
	}
	return c.sessionID
}

func (c *Controller) apply(effects []logic.Effect, now time.Time) {
	for _, e := range effects {
		switch e.Type {
		case logic.EffectAppendLog:
			c.appendLog(e.Message, now)
		case logic.EffectClearLog:
			if err := c.deps.Store.Clear(); err != nil {
				log.Printf("app: clear log: %v", err)
			}
		case logic.EffectRenderIdle:
			c.render(c.deps.Renderer.RenderIdle())
		case logic.EffectRenderRunning:
			c.render(c.deps.Renderer.RenderRunning(e.Frame))
		case logic.EffectRenderLogView:
			recent := c.recent()
			c.render(c.deps.Renderer.RenderLogView(recent, len(recent) == 0))
		case logic.EffectPublish:
			c.publish(e.Event)
		default:
			log.Printf("app: unknown effect %q", e.Type)
		}
	}
}

func (c *Controller) appendLog(msg string, now time.Time) {
	entry := logstore.Entry{Timestamp: clock.Timestamp(c.deps.Clock, now), Message: msg}
	if err := c.deps.Store.Append(entry); err != nil {
		log.Printf("app: append log %q: %v", msg, err)
	}
}

// recent reads the most recent entries. A read failure shows an empty log.
func (c *Controller) recent() []logstore.Entry {
	entries, err := c.deps.Store.ReadAll()
	if err != nil {
		log.Printf("app: read log: %v", err)
		return nil
	}
	return logstore.Recent(entries, c.deps.MaxLogView)
}

func (c *Controller) render(err error) {
	if err != nil {
		log.Printf("app: render: %v", err)
	}
}

func (c *Controller) publish(ev logic.Event) {
	se := mqtt.SessionEvent{Event: ev}
	switch ev.Type {
	case logic.EventSessionStart:
		c.sessionID = c.deps.NewID()
		se.SessionID = c.sessionID
	case logic.EventSessionEnd:
		se.SessionID = c.sessionID
		d := ev.Elapsed
		c.lastDuration = &d
	}
	if err := c.deps.Publisher.Publish(se); err != nil {
		log.Printf("app: publish %s: %v", ev.Type, err)
	}
}
