package logic

import "fmt"

// RegionID identifies a hit region.
type RegionID string

const (
	RegionLogs  RegionID = "LOGS"
	RegionClear RegionID = "CLEAR"
	RegionTimer RegionID = "TIMER"
)

// Region is a fixed rectangle on the screen.
type Region struct {
	ID RegionID
	X  int
	Y  int
	W  int
	H  int
}

// Contains reports whether (x, y) lies inside the region. All four edges
// are inclusive.
func (r Region) Contains(x, y int) bool {
	return x >= r.X && x <= r.X+r.W &&
		y >= r.Y && y <= r.Y+r.H
}

// HitTest reports whether (x, y) hits region r.
func HitTest(r Region, x, y int) bool {
	return r.Contains(x, y)
}

// Overlaps reports whether two regions share at least one point.
func (r Region) Overlaps(o Region) bool {
	return r.X <= o.X+o.W && o.X <= r.X+r.W &&
		r.Y <= o.Y+o.H && o.Y <= r.Y+r.H
}

// Layout is the static screen geometry.
type Layout struct {
	Width  int
	Height int
	Logs   Region
	Clear  Region
	// Timer is the focal area where the elapsed time is drawn. Buttons must
	// stay clear of it.
	Timer Region
}

// DefaultLayout matches a 320x240 panel in landscape.
var DefaultLayout = Layout{
	Width:  320,
	Height: 240,
	Logs:   Region{ID: RegionLogs, X: 250, Y: 200, W: 70, H: 40},
	Clear:  Region{ID: RegionClear, X: 10, Y: 200, W: 70, H: 30},
	Timer:  Region{ID: RegionTimer, X: 40, Y: 130, W: 240, H: 50},
}

// Validate checks that every region is on screen and that the buttons
// overlap neither each other nor the timer area.
func (l Layout) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("invalid screen size %dx%d", l.Width, l.Height)
	}
	for _, r := range []Region{l.Logs, l.Clear, l.Timer} {
		if r.W <= 0 || r.H <= 0 {
			return fmt.Errorf("region %s: empty size %dx%d", r.ID, r.W, r.H)
		}
		if r.X < 0 || r.Y < 0 || r.X+r.W > l.Width || r.Y+r.H > l.Height {
			return fmt.Errorf("region %s (%d,%d %dx%d) is outside the %dx%d screen",
				r.ID, r.X, r.Y, r.W, r.H, l.Width, l.Height)
		}
	}
	if l.Logs.Overlaps(l.Clear) {
		return fmt.Errorf("region %s overlaps %s", l.Logs.ID, l.Clear.ID)
	}
	if l.Logs.Overlaps(l.Timer) {
		return fmt.Errorf("region %s overlaps %s", l.Logs.ID, l.Timer.ID)
	}
	if l.Clear.Overlaps(l.Timer) {
		return fmt.Errorf("region %s overlaps %s", l.Clear.ID, l.Timer.ID)
	}
	return nil
}
