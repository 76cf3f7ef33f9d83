package sim

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sweeney/potty-timer/internal/app"
	"github.com/sweeney/potty-timer/internal/logic"
	"github.com/sweeney/potty-timer/internal/mqtt"
	"github.com/sweeney/potty-timer/internal/touch"
)

// Options configures the simulator.
type Options struct {
	Controller *app.Controller
	Screen     *Screen
	Layout     logic.Layout
	// Events, if set, supplies the last published payload for the footer.
	Events *Recorder
	// Now defaults to time.Now.
	Now func() time.Time
	// Tick defaults to 100ms.
	Tick time.Duration
}

type bootMsg struct{}

type tickMsg time.Time

// Model is the Bubble Tea model for the simulator.
type Model struct {
	ctrl   *app.Controller
	screen *Screen
	layout logic.Layout
	events *Recorder
	now    func() time.Time
	tick   time.Duration

	keys  keyMap
	help  help.Model
	muted lipgloss.Style
}

// New creates a simulator model.
func New(opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Tick <= 0 {
		opts.Tick = 100 * time.Millisecond
	}
	return Model{
		ctrl:   opts.Controller,
		screen: opts.Screen,
		layout: opts.Layout,
		events: opts.Events,
		now:    opts.Now,
		tick:   opts.Tick,
		keys:   defaultKeyMap(),
		help:   help.New(),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(func() tea.Msg { return bootMsg{} }, tickCmd(m.tick))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case bootMsg:
		m.ctrl.Boot(m.now())

	case tickMsg:
		m.ctrl.Tick(m.now())
		return m, tickCmd(m.tick)

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if p, ok := m.screen.PointAt(msg.X, msg.Y); ok {
			m.ctrl.Touch(p, m.now())
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Touch):
			m.ctrl.Touch(regionCenter(m.layout.Timer), m.now())
		case key.Matches(msg, m.keys.Logs):
			m.ctrl.Touch(regionCenter(m.layout.Logs), m.now())
		case key.Matches(msg, m.keys.Clear):
			m.ctrl.Touch(regionCenter(m.layout.Clear), m.now())
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	lines := []string{
		m.screen.View(),
		m.muted.Render("click the panel to touch it") + "  " + m.help.View(m.keys),
	}
	if m.events != nil {
		if last := m.events.Last(); last != "" {
			lines = append(lines, m.muted.Render(last))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func regionCenter(r logic.Region) touch.Point {
	return touch.Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Recorder is a Publisher that remembers the last session payload and
// forwards everything to Next.
type Recorder struct {
	Next mqtt.Publisher
	last string
}

// Publish records the payload and forwards the event.
func (r *Recorder) Publish(ev mqtt.SessionEvent) error {
	if payload, err := mqtt.FormatPayload(ev); err == nil {
		r.last = string(payload)
	}
	if r.Next == nil {
		return nil
	}
	return r.Next.Publish(ev)
}

// PublishSystem forwards the event.
func (r *Recorder) PublishSystem(ev mqtt.SystemEvent) error {
	if r.Next == nil {
		return nil
	}
	return r.Next.PublishSystem(ev)
}

// Close closes Next.
func (r *Recorder) Close() error {
	if r.Next == nil {
		return nil
	}
	return r.Next.Close()
}

// Last returns the most recent session payload.
func (r *Recorder) Last() string { return r.last }
