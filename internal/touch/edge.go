package touch

// EdgeTrigger turns a level-triggered Sampler into an edge-triggered Adapter.
// Not safe for concurrent use.
type EdgeTrigger struct {
	sampler Sampler
	held    bool
}

// NewEdgeTrigger wraps s.
func NewEdgeTrigger(s Sampler) *EdgeTrigger {
	return &EdgeTrigger{sampler: s}
}

// Poll samples once and reports the press only on the finger-down edge.
// A read error leaves the held state alone, so a fault in the middle of a
// press does not produce a second edge.
func (e *EdgeTrigger) Poll() (Point, bool, error) {
	p, down, err := e.sampler.Sample()
	if err != nil {
		return Point{}, false, err
	}
	if !down {
		e.held = false
		return Point{}, false, nil
	}
	if e.held {
		return Point{}, false, nil
	}
	e.held = true
	return p, true, nil
}
