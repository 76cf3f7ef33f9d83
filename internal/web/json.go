package web

import (
	"encoding/json"

	"github.com/sweeney/potty-timer/internal/logstore"
)

// LogsJSON is the JSON representation of the persistent log.
type LogsJSON struct {
	Count int         `json:"count"`
	Logs  []EntryJSON `json:"logs"`
	Error string      `json:"error,omitempty"`
}

// EntryJSON is one log line.
type EntryJSON struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Line      string `json:"line"`
}

func formatLogs(entries []logstore.Entry) []byte {
	lj := LogsJSON{Count: len(entries), Logs: make([]EntryJSON, 0, len(entries))}
	for _, e := range entries {
		lj.Logs = append(lj.Logs, EntryJSON{Timestamp: e.Timestamp, Message: e.Message, Line: e.Line()})
	}
	data, _ := json.MarshalIndent(lj, "", "  ")
	return data
}

func formatLogsError(err error) []byte {
	data, _ := json.Marshal(LogsJSON{Logs: []EntryJSON{}, Error: err.Error()})
	return data
}
