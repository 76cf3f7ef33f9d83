package mqtt

import "github.com/sweeney/potty-timer/internal/logic"

// FakePublisher records what the controller publishes so tests can check
// session and lifecycle traffic without a broker.
type FakePublisher struct {
	// Events and Payloads hold session traffic in publish order; Payloads[i]
	// is the JSON sent for Events[i].
	Events   []SessionEvent
	Payloads [][]byte

	// SystemEvents and SystemPayloads hold lifecycle traffic.
	SystemEvents   []SystemEvent
	SystemPayloads [][]byte

	// PublishError and PublishSystemError fail the matching call without
	// recording anything.
	PublishError       error
	PublishSystemError error

	Closed    bool
	Connected bool
}

// NewFakePublisher creates an empty FakePublisher.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records a session event and its payload.
func (f *FakePublisher) Publish(event SessionEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem records a lifecycle event and its payload.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// OfType returns the recorded session events of type t in publish order.
func (f *FakePublisher) OfType(t logic.EventType) []SessionEvent {
	var out []SessionEvent
	for _, ev := range f.Events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// SessionIDs returns each distinct session id in the order it first
// appeared. Events without a session (LOGS_CLEARED) are skipped.
func (f *FakePublisher) SessionIDs() []string {
	var ids []string
	seen := make(map[string]bool)
	for _, ev := range f.Events {
		if ev.SessionID == "" || seen[ev.SessionID] {
			continue
		}
		seen[ev.SessionID] = true
		ids = append(ids, ev.SessionID)
	}
	return ids
}

// Durations returns the elapsed seconds of every SESSION_END.
func (f *FakePublisher) Durations() []int64 {
	var out []int64
	for _, ev := range f.OfType(logic.EventSessionEnd) {
		out = append(out, ev.Elapsed)
	}
	return out
}

// LastSystem returns the most recent lifecycle event named name.
func (f *FakePublisher) LastSystem(name string) (SystemEvent, bool) {
	for i := len(f.SystemEvents) - 1; i >= 0; i-- {
		if f.SystemEvents[i].Event == name {
			return f.SystemEvents[i], true
		}
	}
	return SystemEvent{}, false
}

// Close marks the publisher closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected returns Connected.
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset forgets everything recorded and clears injected errors.
func (f *FakePublisher) Reset() {
	*f = FakePublisher{}
}
