package relay

import (
	"time"

	"github.com/sweeney/pinctl/pin"
)

// Relay switches a single output. ON drives the pin high; wire an active-low
// relay through pin.InvertStatefulOutput so that ON still means high.
type Relay struct {
	name   string
	pin    pin.StatefulOutput
	counts Counts
}

// New creates a Relay driving p.
func New(name string, p pin.StatefulOutput) *Relay {
	return &Relay{name: name, pin: p}
}

// Name returns the relay name used in events.
func (r *Relay) Name() string {
	return r.name
}

// Current reads the commanded state back from the pin.
func (r *Relay) Current() (State, error) {
	on, err := r.pin.IsSetHigh()
	if err != nil {
		r.counts.Errors++
		return "", err
	}
	return boolToState(on), nil
}

// StateEvent reports the current state as an EventState event. Counts are
// not touched apart from read errors.
func (r *Relay) StateEvent(now time.Time) (Event, error) {
	state, err := r.Current()
	if err != nil {
		return Event{}, err
	}
	return Event{Timestamp: now, Name: r.name, Type: EventState, State: state}, nil
}

// Set drives the relay to state. It returns an event only if the state
// changed. The pin is written even when the state is unchanged, so a command
// always reasserts the level. Pin errors are returned as-is.
func (r *Relay) Set(state State, now time.Time) (*Event, error) {
	prev, err := r.Current()
	if err != nil {
		return nil, err
	}

	if err := pin.Set(r.pin, state == StateOn); err != nil {
		r.counts.Errors++
		return nil, err
	}

	if prev == state {
		return nil, nil
	}

	ev := &Event{Timestamp: now, Name: r.name, State: state}
	if state == StateOn {
		ev.Type = EventSwitchOn
		r.counts.On++
	} else {
		ev.Type = EventSwitchOff
		r.counts.Off++
	}
	return ev, nil
}

// Toggle flips the relay and returns the resulting event.
func (r *Relay) Toggle(now time.Time) (*Event, error) {
	cur, err := r.Current()
	if err != nil {
		return nil, err
	}
	next := StateOn
	if cur == StateOn {
		next = StateOff
	}
	return r.Set(next, now)
}

// CountsSnapshot returns a copy of the switching counts.
func (r *Relay) CountsSnapshot() Counts {
	return r.counts
}
