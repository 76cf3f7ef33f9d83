package logstore

// Memory is an in-memory Store. It backs the simulator and tests.
type Memory struct {
	// Entries contains the stored log, oldest first.
	Entries []Entry

	// AppendError, if set, will be returned by Append.
	AppendError error

	// ReadError, if set, will be returned by ReadAll.
	ReadError error

	// ClearError, if set, will be returned by Clear.
	ClearError error

	// Clears counts successful Clear calls.
	Clears int
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Append records the entry.
func (m *Memory) Append(e Entry) error {
	if m.AppendError != nil {
		return m.AppendError
	}
	if err := validate(e); err != nil {
		return err
	}
	m.Entries = append(m.Entries, e)
	return nil
}

// ReadAll returns a copy of the stored entries.
func (m *Memory) ReadAll() ([]Entry, error) {
	if m.ReadError != nil {
		return nil, m.ReadError
	}
	out := make([]Entry, len(m.Entries))
	copy(out, m.Entries)
	return out, nil
}

// Clear empties the store.
func (m *Memory) Clear() error {
	if m.ClearError != nil {
		return m.ClearError
	}
	m.Entries = nil
	m.Clears++
	return nil
}

// Messages returns the stored messages in order.
func (m *Memory) Messages() []string {
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Message
	}
	return out
}
