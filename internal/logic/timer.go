package logic

import (
	"errors"
	"fmt"
	"time"
)

// Thresholds are the band boundaries in elapsed seconds. Mid must be below High.
type Thresholds struct {
	Mid  int64
	High int64
}

// DefaultThresholds are 3.5 hours to Mid and 4 hours to High.
var DefaultThresholds = Thresholds{Mid: 12600, High: 14400}

// Validate checks the ordering invariant.
func (t Thresholds) Validate() error {
	if t.Mid < 0 || t.High < 0 {
		return errors.New("thresholds must not be negative")
	}
	if t.Mid >= t.High {
		return fmt.Errorf("threshold mid (%d) must be below high (%d)", t.Mid, t.High)
	}
	return nil
}

// StartSession starts a session at now.
func StartSession(now time.Time) Session {
	return Session{Start: now}
}

// ElapsedSeconds returns whole seconds since the session started.
// A nil session yields 0, as does a clock that appears to run backwards.
func ElapsedSeconds(s *Session, now time.Time) int64 {
	if s == nil {
		return 0
	}
	d := now.Sub(s.Start)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

// BandFor maps elapsed seconds to a color band. The lower bound of each
// higher band is inclusive.
func BandFor(elapsed int64, t Thresholds) ColorBand {
	switch {
	case elapsed < t.Mid:
		return BandLow
	case elapsed < t.High:
		return BandMid
	default:
		return BandHigh
	}
}

// FormatHMS splits elapsed seconds into hours, minutes and seconds.
// Hours are not wrapped at 24.
func FormatHMS(elapsed int64) (hours, minutes, seconds int64) {
	if elapsed < 0 {
		elapsed = 0
	}
	hours = elapsed / 3600
	minutes = (elapsed % 3600) / 60
	seconds = elapsed % 60
	return hours, minutes, seconds
}

// FormatClock renders elapsed seconds as HH:MM:SS.
func FormatClock(elapsed int64) string {
	h, m, s := FormatHMS(elapsed)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FrameFor builds a running-view frame for elapsed seconds.
func FrameFor(elapsed int64, t Thresholds, full bool) Frame {
	h, m, s := FormatHMS(elapsed)
	return Frame{
		Hours:   h,
		Minutes: m,
		Seconds: s,
		Band:    BandFor(elapsed, t),
		Full:    full,
	}
}

// Clock returns the frame's time as HH:MM:SS.
func (f Frame) Clock() string {
	return fmt.Sprintf("%02d:%02d:%02d", f.Hours, f.Minutes, f.Seconds)
}
