package touch

// Reading is a single scripted sample.
type Reading struct {
	Point Point
	Down  bool
	Err   error
}

// FakeSampler is a test double that returns scripted readings.
// Each call to Sample() consumes the next reading; once exhausted it
// reports no touch.
type FakeSampler struct {
	Readings []Reading
	index    int
}

// NewFakeSampler creates a FakeSampler with the given readings.
func NewFakeSampler(readings ...Reading) *FakeSampler {
	return &FakeSampler{Readings: readings}
}

// Sample returns the next scripted reading.
func (f *FakeSampler) Sample() (Point, bool, error) {
	if f.index >= len(f.Readings) {
		return Point{}, false, nil
	}
	r := f.Readings[f.index]
	f.index++
	return r.Point, r.Down, r.Err
}

// Fake is an Adapter that returns one scripted press per Poll call.
// A nil entry means "no press this poll".
type Fake struct {
	Presses []*Point

	// PollError, if set, will be returned by Poll.
	PollError error

	index int
}

// NewFake creates a Fake adapter.
func NewFake(presses ...*Point) *Fake {
	return &Fake{Presses: presses}
}

// Press is a helper for building Fake scripts.
func Press(x, y int) *Point {
	return &Point{X: x, Y: y}
}

// Poll returns the next scripted press.
func (f *Fake) Poll() (Point, bool, error) {
	if f.PollError != nil {
		return Point{}, false, f.PollError
	}
	if f.index >= len(f.Presses) {
		return Point{}, false, nil
	}
	p := f.Presses[f.index]
	f.index++
	if p == nil {
		return Point{}, false, nil
	}
	return *p, true, nil
}
