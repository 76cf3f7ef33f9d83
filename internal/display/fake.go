package display

import (
	"image"

	"github.com/sweeney/potty-timer/internal/logic"
	"github.com/sweeney/potty-timer/internal/logstore"
)

// Call is one recorded renderer call.
type Call struct {
	Screen  logic.ModeKind
	Frame   logic.Frame
	Entries []logstore.Entry
	Empty   bool
}

// FakeRenderer records render calls for test assertions.
type FakeRenderer struct {
	Calls []Call

	// RenderError, if set, will be returned by every call.
	RenderError error
}

// NewFakeRenderer creates a FakeRenderer.
func NewFakeRenderer() *FakeRenderer {
	return &FakeRenderer{}
}

// RenderIdle records an idle render.
func (f *FakeRenderer) RenderIdle() error {
	f.Calls = append(f.Calls, Call{Screen: logic.KindIdle})
	return f.RenderError
}

// RenderRunning records a running render.
func (f *FakeRenderer) RenderRunning(fr logic.Frame) error {
	f.Calls = append(f.Calls, Call{Screen: logic.KindRunning, Frame: fr})
	return f.RenderError
}

// RenderLogView records a log view render.
func (f *FakeRenderer) RenderLogView(entries []logstore.Entry, empty bool) error {
	f.Calls = append(f.Calls, Call{Screen: logic.KindViewingLog, Entries: entries, Empty: empty})
	return f.RenderError
}

// Last returns the most recent call, or nil.
func (f *FakeRenderer) Last() *Call {
	if len(f.Calls) == 0 {
		return nil
	}
	return &f.Calls[len(f.Calls)-1]
}

// Reset clears recorded calls.
func (f *FakeRenderer) Reset() {
	f.Calls = nil
	f.RenderError = nil
}

// CaptureSink records flushed rectangles instead of writing to hardware.
type CaptureSink struct {
	Rects []image.Rectangle
	// FlushError, if set, will be returned by Flush.
	FlushError error
}

// Flush records r.
func (c *CaptureSink) Flush(img *image.RGBA, r image.Rectangle) error {
	if c.FlushError != nil {
		return c.FlushError
	}
	c.Rects = append(c.Rects, r)
	return nil
}
