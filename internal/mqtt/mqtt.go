// Package mqtt carries relay commands and state over MQTT, with an
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sweeney/pinctl/internal/relay"
)

// DefaultTopicPrefix is the root under which each relay gets its topics.
const DefaultTopicPrefix = "home/relay"

// Topics are the MQTT topics for a single relay.
type Topics struct {
	Set    string // commands in
	State  string // retained state events out
	System string // lifecycle events and LWT
}

// NewTopics builds the topics for the named relay under prefix.
func NewTopics(prefix, name string) Topics {
	base := strings.TrimSuffix(prefix, "/") + "/" + name
	return Topics{
		Set:    base + "/set",
		State:  base + "/state",
		System: base + "/system",
	}
}

// Command is a request received on the set topic.
type Command string

const (
	CommandOn     Command = "ON"
	CommandOff    Command = "OFF"
	CommandToggle Command = "TOGGLE"
)

type commandPayload struct {
	Command string `json:"command"`
}

// ParseCommand accepts a bare ON, OFF or TOGGLE (any case) or a JSON object
// {"command":"ON"}.
func ParseCommand(payload []byte) (Command, error) {
	s := strings.TrimSpace(string(payload))
	if strings.HasPrefix(s, "{") {
		var cp commandPayload
		if err := json.Unmarshal([]byte(s), &cp); err != nil {
			return "", fmt.Errorf("decode command: %w", err)
		}
		s = cp.Command
	}
	switch c := Command(strings.ToUpper(strings.TrimSpace(s))); c {
	case CommandOn, CommandOff, CommandToggle:
		return c, nil
	}
	return "", fmt.Errorf("unknown command %q", s)
}

// Client publishes relay events and delivers commands.
type Client interface {
	// PublishState sends a retained relay state event.
	// Returns error if publishing fails (should not crash the process).
	PublishState(event relay.Event) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// Commands delivers parsed commands from the set topic.
	Commands() <-chan Command

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool
}

// StatePayload is the message published on the state topic.
type StatePayload struct {
	Relay RelayPayload `json:"relay"`
}

// RelayPayload contains the state event details.
type RelayPayload struct {
	Timestamp string `json:"timestamp"`
	Name      string `json:"name"`
	Event     string `json:"event"`
	State     string `json:"state"`
}

// FormatStatePayload creates the JSON payload for a relay event.
func FormatStatePayload(event relay.Event) ([]byte, error) {
	return json.Marshal(StatePayload{
		Relay: RelayPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Name:      event.Name,
			Event:     string(event.Type),
			State:     string(event.State),
		},
	})
}

// SystemPayload is used for simple events (LWT) that don't carry a full
// status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	inner := SystemPayloadInner{
		Event:  event.Event,
		Reason: event.Reason,
	}
	if !event.Timestamp.IsZero() {
		inner.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(SystemPayload{System: inner})
}

// willPayload is registered with the broker at connect time, so it has no timestamp.
func willPayload() string {
	data, _ := FormatSystemPayload(SystemEvent{Event: "OFFLINE", Reason: "CONNECTION_LOST"})
	return string(data)
}
