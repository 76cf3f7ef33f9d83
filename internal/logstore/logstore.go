// Package logstore provides the persistent session log with abstraction for testing.
// The real implementation is an append-only text file, one entry per line.
package logstore

import (
	"errors"
	"fmt"
	"strings"
)

// MaxLineBytes bounds a stored line, matching the device's line buffer.
const MaxLineBytes = 128

var (
	// ErrStorageUnavailable wraps any failure to reach the backing storage.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrEntryTooLong is returned for entries over MaxLineBytes.
	ErrEntryTooLong = errors.New("log entry too long")

	// ErrEntryMultiline is returned for entries that would split across lines.
	ErrEntryMultiline = errors.New("log entry spans lines")
)

// Entry is one immutable log line.
type Entry struct {
	Timestamp string
	Message   string
}

// Line renders the entry as stored: "<timestamp> <message>".
func (e Entry) Line() string {
	if e.Timestamp == "" {
		return e.Message
	}
	return e.Timestamp + " " + e.Message
}

// Store is an append-only sequence of entries.
type Store interface {
	// Append adds an entry at the end of the log.
	Append(e Entry) error

	// ReadAll returns every entry in file order (oldest first).
	ReadAll() ([]Entry, error)

	// Clear removes every entry. It cannot be undone.
	Clear() error
}

// ParseLine splits a stored line into timestamp and message. Both the
// wall-clock form ("12/25/24 03:15 PM Boot") and the fallback tick form
// ("53211ms Boot") are recognised; anything else is returned as a bare message.
// Exactly one space separates the timestamp from the message, so a message
// keeps its own leading whitespace.
func ParseLine(line string) Entry {
	line = strings.TrimLeft(strings.TrimRight(line, "\r\n"), " \t")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Entry{}
	}

	if isTicks(fields[0]) {
		return Entry{
			Timestamp: fields[0],
			Message:   afterSeparator(line[len(fields[0]):]),
		}
	}

	if len(fields) >= 3 && isDate(fields[0]) && isHourMinute(fields[1]) && (fields[2] == "AM" || fields[2] == "PM") {
		ts := fields[0] + " " + fields[1] + " " + fields[2]
		if strings.HasPrefix(line, ts) {
			return Entry{Timestamp: ts, Message: afterSeparator(line[len(ts):])}
		}
	}

	return Entry{Message: line}
}

func afterSeparator(s string) string {
	return strings.TrimPrefix(s, " ")
}

// validate reports whether e can be stored as a single line.
func validate(e Entry) error {
	line := e.Line()
	if strings.ContainsAny(line, "\r\n") {
		return ErrEntryMultiline
	}
	if len(line) > MaxLineBytes {
		return fmt.Errorf("%w: %d bytes", ErrEntryTooLong, len(line))
	}
	return nil
}

// Recent returns up to n entries, most recent first.
func Recent(entries []Entry, n int) []Entry {
	if n <= 0 || len(entries) == 0 {
		return nil
	}
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]Entry, 0, n)
	for i := len(entries) - 1; i >= len(entries)-n; i-- {
		out = append(out, entries[i])
	}
	return out
}

func isTicks(s string) bool {
	if !strings.HasSuffix(s, "ms") || len(s) < 3 {
		return false
	}
	return allDigits(strings.TrimSuffix(s, "ms"))
}

// isDate matches MM/DD/YY.
func isDate(s string) bool {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if len(p) != 2 || !allDigits(p) {
			return false
		}
	}
	return true
}

// isHourMinute matches hh:mm.
func isHourMinute(s string) bool {
	h, m, ok := strings.Cut(s, ":")
	return ok && len(h) == 2 && len(m) == 2 && allDigits(h) && allDigits(m)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
