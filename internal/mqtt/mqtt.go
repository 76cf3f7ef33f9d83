// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/potty-timer/internal/logic"
)

// Topic is the MQTT topic for session events.
const Topic = "home/potty-timer/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/potty-timer/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a session event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event SessionEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SessionEvent is a logic event tagged with the session it belongs to.
type SessionEvent struct {
	logic.Event
	// SessionID is empty for events that are not tied to a session.
	SessionID string
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Potty PottyPayload `json:"potty"`
}

// PottyPayload contains the session event details.
type PottyPayload struct {
	Timestamp      string `json:"timestamp"`
	Event          string `json:"event"`
	SessionID      string `json:"session_id,omitempty"`
	ElapsedSeconds *int64 `json:"elapsed_seconds,omitempty"`
	Duration       string `json:"duration,omitempty"`
}

// FormatPayload creates the JSON payload for a session event.
// Only SESSION_END carries the elapsed time.
func FormatPayload(event SessionEvent) ([]byte, error) {
	p := PottyPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     string(event.Type),
		SessionID: event.SessionID,
	}
	if event.Type == logic.EventSessionEnd {
		elapsed := event.Elapsed
		p.ElapsedSeconds = &elapsed
		p.Duration = logic.FormatClock(elapsed)
	}
	return json.Marshal(Payload{Potty: p})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// Discard is a Publisher that drops everything. It is used when no broker
// is configured.
type Discard struct{}

func (Discard) Publish(SessionEvent) error      { return nil }
func (Discard) PublishSystem(SystemEvent) error { return nil }
func (Discard) Close() error                    { return nil }
func (Discard) IsConnected() bool               { return false }
