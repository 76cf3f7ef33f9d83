package display

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/sweeney/potty-timer/internal/clock"
	"github.com/sweeney/potty-timer/internal/logic"
	"github.com/sweeney/potty-timer/internal/logstore"
)

// Sink receives finished pixels.
type Sink interface {
	// Flush pushes the pixels inside r to the screen.
	Flush(img *image.RGBA, r image.Rectangle) error
}

// Screen text.
const (
	Title       = "Potty Timer!"
	IdlePrompt  = "Touch to Start"
	LogTitle    = "Recent Logs"
	LogEmpty    = "No logs found"
	LogFooter   = "Touch anywhere to return"
	logLineStep = 18
)

var face = basicfont.Face7x13

// Panel paints screens into an in-memory image and flushes the changed
// area to a Sink.
type Panel struct {
	img    *image.RGBA
	sink   Sink
	layout logic.Layout
	clock  clock.Source

	// clockArea is the lower-left wall clock.
	clockArea image.Rectangle

	lastBand  logic.ColorBand
	lastLabel string
}

// NewPanel creates a Panel for layout. src feeds the corner clock.
func NewPanel(layout logic.Layout, sink Sink, src clock.Source) *Panel {
	return &Panel{
		img:       image.NewRGBA(image.Rect(0, 0, layout.Width, layout.Height)),
		sink:      sink,
		layout:    layout,
		clock:     src,
		clockArea: image.Rect(0, layout.Height-30, 100, layout.Height),
	}
}

// Image exposes the back buffer.
func (p *Panel) Image() *image.RGBA {
	return p.img
}

// RenderIdle paints the waiting screen.
func (p *Panel) RenderIdle() error {
	bg, fg := Red, White
	p.fill(p.img.Bounds(), bg)
	p.text(Title, p.layout.Width/2, 30, 3, fg)
	p.text(IdlePrompt, p.layout.Width/2, 100, 2, fg)
	ctr := rectCenter(p.timerRect())
	p.text(logic.FormatClock(0), ctr.X, ctr.Y, 3, fg)
	p.drawClock(bg, fg)
	p.button(p.layout.Logs, "LOGS", fg)
	p.lastBand = ""
	return p.sink.Flush(p.img, p.img.Bounds())
}

// RenderRunning paints the timer. A full repaint happens when asked for or
// when the band changed since the last frame.
func (p *Panel) RenderRunning(f logic.Frame) error {
	bg, fg := BandColor(f.Band), TextColor(f.Band)
	timer := p.timerRect()

	if f.Full || f.Band != p.lastBand {
		p.fill(p.img.Bounds(), bg)
		p.text(Title, p.layout.Width/2, 30, 3, fg)
		p.button(p.layout.Logs, "LOGS", fg)
		p.drawClock(bg, fg)
		p.text(f.Clock(), rectCenter(timer).X, rectCenter(timer).Y, 3, fg)
		p.lastBand = f.Band
		return p.sink.Flush(p.img, p.img.Bounds())
	}

	p.fill(timer, bg)
	p.text(f.Clock(), rectCenter(timer).X, rectCenter(timer).Y, 3, fg)
	dirty := timer
	if label := clock.Label(p.clock, p.clock.Now()); label != p.lastLabel {
		p.drawClock(bg, fg)
		dirty = dirty.Union(p.clockArea)
	}
	return p.sink.Flush(p.img, dirty)
}

// RenderLogView paints the log overlay.
func (p *Panel) RenderLogView(entries []logstore.Entry, empty bool) error {
	p.fill(p.img.Bounds(), Black)
	p.text(LogTitle, p.layout.Width/2, 18, 2, White)

	if empty || len(entries) == 0 {
		p.text(LogEmpty, p.layout.Width/2, p.layout.Height/2, 2, White)
	} else {
		y := 40
		for _, e := range entries {
			p.textLeft(e.Line(), 10, y, White)
			y += logLineStep
			if y > p.layout.Clear.Y-logLineStep {
				break
			}
		}
	}

	p.button(p.layout.Clear, "CLEAR", Red)
	p.text(LogFooter, p.layout.Width/2, p.layout.Height-8, 1, Yellow)
	p.lastBand = ""
	return p.sink.Flush(p.img, p.img.Bounds())
}

func (p *Panel) timerRect() image.Rectangle {
	t := p.layout.Timer
	return image.Rect(t.X, t.Y, t.X+t.W, t.Y+t.H)
}

func (p *Panel) drawClock(bg, fg color.Color) {
	p.fill(p.clockArea, bg)
	label := clock.Label(p.clock, p.clock.Now())
	p.textLeft(label, p.clockArea.Min.X+5, p.clockArea.Min.Y+8, fg)
	p.lastLabel = label
}

func (p *Panel) fill(r image.Rectangle, c color.Color) {
	draw.Draw(p.img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func (p *Panel) button(r logic.Region, label string, c color.Color) {
	rect := image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
	outline(p.img, rect, c)
	ctr := rectCenter(rect)
	p.text(label, ctr.X, ctr.Y, 1, c)
}

// text draws s centred on (cx, cy), magnified by scale.
func (p *Panel) text(s string, cx, cy, scale int, c color.Color) {
	glyphs := renderText(s, c)
	b := glyphs.Bounds()
	w, h := b.Dx()*scale, b.Dy()*scale
	dst := image.Rect(cx-w/2, cy-h/2, cx-w/2+w, cy-h/2+h)
	draw.NearestNeighbor.Scale(p.img, dst, glyphs, b, draw.Over, nil)
}

// textLeft draws s at normal size with its top-left corner at (x, y).
func (p *Panel) textLeft(s string, x, y int, c color.Color) {
	glyphs := renderText(s, c)
	b := glyphs.Bounds()
	draw.Draw(p.img, b.Add(image.Pt(x, y)), glyphs, image.Point{}, draw.Over)
}

// renderText rasterises s with the 7x13 bitmap face onto a transparent image.
func renderText(s string, c color.Color) *image.RGBA {
	w := font.MeasureString(face, s).Ceil()
	if w == 0 {
		w = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, face.Height))
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(s)
	return img
}

func outline(img *image.RGBA, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

func rectCenter(r image.Rectangle) image.Point {
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}
