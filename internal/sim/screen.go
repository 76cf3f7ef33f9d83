// Package sim runs the timer in a terminal. The panel is drawn as a grid
// of character cells and mouse clicks stand in for touches.
package sim

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sweeney/potty-timer/internal/clock"
	"github.com/sweeney/potty-timer/internal/display"
	"github.com/sweeney/potty-timer/internal/logic"
	"github.com/sweeney/potty-timer/internal/logstore"
	"github.com/sweeney/potty-timer/internal/touch"
)

// Pixels per character cell.
const (
	CellW = 5
	CellH = 10
)

// Screen is a display.Renderer that keeps the last requested screen and
// draws it on demand.
type Screen struct {
	layout logic.Layout
	clock  clock.Source

	kind    logic.ModeKind
	frame   logic.Frame
	entries []logstore.Entry
	empty   bool

	// Renders counts render calls.
	Renders int
}

var _ display.Renderer = (*Screen)(nil)

// NewScreen creates a Screen for layout.
func NewScreen(layout logic.Layout, src clock.Source) *Screen {
	return &Screen{layout: layout, clock: src, kind: logic.KindIdle}
}

func (s *Screen) RenderIdle() error {
	s.kind = logic.KindIdle
	s.Renders++
	return nil
}

func (s *Screen) RenderRunning(f logic.Frame) error {
	s.kind = logic.KindRunning
	s.frame = f
	s.Renders++
	return nil
}

func (s *Screen) RenderLogView(entries []logstore.Entry, empty bool) error {
	s.kind = logic.KindViewingLog
	s.entries = entries
	s.empty = empty
	s.Renders++
	return nil
}

// Kind reports the screen currently shown.
func (s *Screen) Kind() logic.ModeKind { return s.kind }

// Size returns the grid size in cells.
func (s *Screen) Size() (cols, rows int) {
	return s.layout.Width / CellW, s.layout.Height / CellH
}

// PointAt maps a cell to the panel pixel at its center.
func (s *Screen) PointAt(col, row int) (touch.Point, bool) {
	cols, rows := s.Size()
	if col < 0 || row < 0 || col >= cols || row >= rows {
		return touch.Point{}, false
	}
	return touch.Point{X: col*CellW + CellW/2, Y: row*CellH + CellH/2}, true
}

// View draws the current screen.
func (s *Screen) View() string {
	cols, rows := s.Size()

	switch s.kind {
	case logic.KindRunning:
		bg, fg := lipColor(display.BandColor(s.frame.Band)), lipColor(display.TextColor(s.frame.Band))
		c := newCanvas(cols, rows, lipgloss.NewStyle().Background(bg).Foreground(fg))
		s.common(c, s.frame.Clock())
		return c.render()

	case logic.KindViewingLog:
		c := newCanvas(cols, rows, lipgloss.NewStyle().
			Background(lipColor(display.Black)).Foreground(lipColor(display.White)))
		c.center(1, display.LogTitle, c.base.Bold(true))
		if s.empty || len(s.entries) == 0 {
			c.center(rows/2, display.LogEmpty, c.base)
		} else {
			last := s.layout.Clear.Y/CellH - 1
			for i, e := range s.entries {
				if 3+i > last {
					break
				}
				c.put(2, 3+i, e.Line(), c.base)
			}
		}
		c.button(s.layout.Clear, "CLEAR", lipgloss.NewStyle().
			Background(lipColor(display.Red)).Foreground(lipColor(display.White)).Bold(true))
		c.center(rows-1, display.LogFooter, c.base.Foreground(lipColor(display.Yellow)))
		return c.render()

	default:
		c := newCanvas(cols, rows, lipgloss.NewStyle().
			Background(lipColor(display.Red)).Foreground(lipColor(display.White)))
		c.center(100/CellH, display.IdlePrompt, c.base)
		s.common(c, logic.FormatClock(0))
		return c.render()
	}
}

// common draws what the idle and running screens share.
func (s *Screen) common(c *canvas, elapsed string) {
	c.center(30/CellH, display.Title, c.base.Bold(true))
	t := s.layout.Timer
	c.center((t.Y+t.H/2)/CellH, elapsed, c.base.Bold(true))
	c.put(0, c.rows-1, clock.Label(s.clock, s.clock.Now()), c.base)
	c.button(s.layout.Logs, "LOGS", c.base.Reverse(true))
}

func lipColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
}

type span struct {
	x     int
	text  string
	style lipgloss.Style
}

// canvas is a grid of styled text runs on a plain background.
type canvas struct {
	cols, rows int
	base       lipgloss.Style
	lines      [][]span
}

func newCanvas(cols, rows int, base lipgloss.Style) *canvas {
	return &canvas{cols: cols, rows: rows, base: base, lines: make([][]span, rows)}
}

func (c *canvas) put(x, y int, text string, style lipgloss.Style) {
	if y < 0 || y >= c.rows || x >= c.cols {
		return
	}
	c.lines[y] = append(c.lines[y], span{x: x, text: text, style: style})
}

func (c *canvas) center(y int, text string, style lipgloss.Style) {
	c.put(max(0, (c.cols-len(text))/2), y, text, style)
}

// button fills r with style and centers label in it.
func (c *canvas) button(r logic.Region, label string, style lipgloss.Style) {
	x, y := r.X/CellW, r.Y/CellH
	w, h := max(r.W/CellW, len(label)), max(r.H/CellH, 1)
	for row := y; row < y+h; row++ {
		text := strings.Repeat(" ", w)
		if row == y+h/2 {
			pad := (w - len(label)) / 2
			text = strings.Repeat(" ", pad) + label + strings.Repeat(" ", w-pad-len(label))
		}
		c.put(x, row, text, style)
	}
}

// render joins the rows. Runs that start under an earlier run are dropped;
// runs past the right edge are cut.
func (c *canvas) render() string {
	out := make([]string, c.rows)
	for y, spans := range c.lines {
		sort.SliceStable(spans, func(i, j int) bool { return spans[i].x < spans[j].x })
		var b strings.Builder
		cursor := 0
		for _, s := range spans {
			if s.x < cursor {
				continue
			}
			if s.x > cursor {
				b.WriteString(c.base.Render(strings.Repeat(" ", s.x-cursor)))
			}
			text := s.text
			if len(text) > c.cols-s.x {
				text = text[:c.cols-s.x]
			}
			b.WriteString(s.style.Render(text))
			cursor = s.x + len(text)
		}
		if cursor < c.cols {
			b.WriteString(c.base.Render(strings.Repeat(" ", c.cols-cursor)))
		}
		out[y] = b.String()
	}
	return strings.Join(out, "\n")
}
