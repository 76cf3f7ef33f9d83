// Package display paints the timer screens. The core decides what to show;
// this package only turns that decision into pixels.
package display

import (
	"image/color"

	"github.com/sweeney/potty-timer/internal/logic"
	"github.com/sweeney/potty-timer/internal/logstore"
)

// Renderer paints one of the three screens.
type Renderer interface {
	// RenderIdle paints the "touch to start" screen.
	RenderIdle() error

	// RenderRunning paints the running timer. f.Full asks for a full
	// repaint; otherwise only the time (and corner clock) may be redrawn.
	RenderRunning(f logic.Frame) error

	// RenderLogView paints the log overlay. entries are most recent first.
	RenderLogView(entries []logstore.Entry, empty bool) error
}

// Palette.
var (
	Red    = color.RGBA{R: 0xF8, A: 0xFF}
	Yellow = color.RGBA{R: 0xF8, G: 0xFC, A: 0xFF}
	Green  = color.RGBA{G: 0xFC, A: 0xFF}
	White  = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	Black  = color.RGBA{A: 0xFF}
)

// BandColor returns the background color for a band.
func BandColor(b logic.ColorBand) color.RGBA {
	switch b {
	case logic.BandMid:
		return Yellow
	case logic.BandHigh:
		return Green
	default:
		return Red
	}
}

// TextColor returns a readable foreground for a band's background.
func TextColor(b logic.ColorBand) color.RGBA {
	if b == logic.BandMid {
		return Black
	}
	return White
}
