// Package clock provides the time sources used for session timing and log
// timestamps. Session timing always uses the monotonic reading; the wall
// clock is optional and only decorates log lines and the corner clock.
package clock

import (
	"errors"
	"fmt"
	"time"
)

// ErrTimeSourceUnavailable is returned when no wall clock could be established.
var ErrTimeSourceUnavailable = errors.New("time source unavailable")

// Timestamp layouts.
const (
	LogLayout   = "01/02/06 03:04 PM"
	LabelLayout = "03:04PM"
)

// Source supplies monotonic time and, when available, wall-clock time.
type Source interface {
	// Now returns the current monotonic time.
	Now() time.Time

	// Wall converts a monotonic reading into wall-clock time.
	// Returns false if the wall clock is unknown.
	Wall(now time.Time) (time.Time, bool)

	// Boot returns the monotonic reading taken at startup.
	Boot() time.Time
}

// Monotonic is a Source without a wall clock.
type Monotonic struct {
	boot time.Time
	now  func() time.Time
}

// NewMonotonic creates a monotonic-only source. A nil now uses time.Now.
func NewMonotonic(now func() time.Time) *Monotonic {
	if now == nil {
		now = time.Now
	}
	return &Monotonic{boot: now(), now: now}
}

// Now returns the current monotonic time.
func (m *Monotonic) Now() time.Time { return m.now() }

// Wall always reports the wall clock as unknown.
func (m *Monotonic) Wall(time.Time) (time.Time, bool) { return time.Time{}, false }

// Boot returns the startup reading.
func (m *Monotonic) Boot() time.Time { return m.boot }

// Synced is a Source whose wall clock was confirmed against a time server.
type Synced struct {
	*Monotonic
	offset time.Duration
	loc    *time.Location
}

// NewSynced wraps base with a known offset from the server and a display location.
func NewSynced(base *Monotonic, offset time.Duration, loc *time.Location) *Synced {
	if loc == nil {
		loc = time.Local
	}
	return &Synced{Monotonic: base, offset: offset, loc: loc}
}

// Wall returns the corrected wall-clock time in the configured location.
func (s *Synced) Wall(now time.Time) (time.Time, bool) {
	return now.Add(s.offset).In(s.loc), true
}

// Offset returns the correction applied to the local clock.
func (s *Synced) Offset() time.Duration { return s.offset }

// Timestamp formats the log timestamp for now: wall clock when known,
// otherwise milliseconds since boot ("53211ms").
func Timestamp(src Source, now time.Time) string {
	if wall, ok := src.Wall(now); ok {
		return wall.Format(LogLayout)
	}
	return fmt.Sprintf("%dms", now.Sub(src.Boot()).Milliseconds())
}

// Label formats the corner clock, or "No Time" without a wall clock.
func Label(src Source, now time.Time) string {
	if wall, ok := src.Wall(now); ok {
		return wall.Format(LabelLayout)
	}
	return "No Time"
}

// IsSynced reports whether src has a wall clock.
func IsSynced(src Source) bool {
	_, ok := src.Wall(src.Now())
	return ok
}
