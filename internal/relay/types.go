// Package relay contains the switching logic for a single relay or lamp.
// It has no knowledge of GPIO drivers, MQTT or the OS: it drives whatever
// pin.StatefulOutput it is given, and time is always passed in.
package relay

import (
	"fmt"
	"strings"
	"time"
)

// State represents the logical state of the relay.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// ParseState parses "ON" or "OFF", ignoring case and surrounding space.
func ParseState(s string) (State, error) {
	switch State(strings.ToUpper(strings.TrimSpace(s))) {
	case StateOn:
		return StateOn, nil
	case StateOff:
		return StateOff, nil
	}
	return "", fmt.Errorf("invalid state %q (want ON or OFF)", s)
}

// EventType represents a state transition event.
type EventType string

const (
	EventSwitchOn  EventType = "SWITCH_ON"
	EventSwitchOff EventType = "SWITCH_OFF"
	// EventState reports the current state without a transition, e.g. at startup.
	EventState EventType = "STATE"
)

// Event represents a state transition to be published.
type Event struct {
	Timestamp time.Time
	Name      string
	Type      EventType
	State     State
}

// Counts tracks switching activity since startup.
type Counts struct {
	On     int
	Off    int
	Errors int
}

func boolToState(on bool) State {
	if on {
		return StateOn
	}
	return StateOff
}
