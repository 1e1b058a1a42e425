package mqtt

import (
	"github.com/sweeney/pinctl/internal/relay"
)

// FakeClient records published events for test assertions and lets tests
// inject commands.
type FakeClient struct {
	// States contains all relay events that were published.
	States []relay.Event

	// StatePayloads contains the JSON payloads for state events.
	StatePayloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishStateError, if set, will be returned by PublishState.
	PublishStateError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	commands chan Command
}

// NewFakeClient creates a FakeClient for testing.
func NewFakeClient() *FakeClient {
	return &FakeClient{commands: make(chan Command, commandBacklog)}
}

// PublishState records the relay event.
func (f *FakeClient) PublishState(event relay.Event) error {
	if f.PublishStateError != nil {
		return f.PublishStateError
	}

	payload, err := FormatStatePayload(event)
	if err != nil {
		return err
	}
	f.States = append(f.States, event)
	f.StatePayloads = append(f.StatePayloads, payload)
	return nil
}

// PublishSystem records the system event.
func (f *FakeClient) PublishSystem(event SystemEvent) error {
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

// Send queues a command as if it arrived from the broker.
func (f *FakeClient) Send(cmd Command) {
	f.commands <- cmd
}

// Commands returns the injected commands.
func (f *FakeClient) Commands() <-chan Command {
	return f.commands
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake client is "connected".
func (f *FakeClient) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded events.
func (f *FakeClient) Reset() {
	f.States = nil
	f.StatePayloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.PublishStateError = nil
	f.PublishSystemError = nil
	f.Closed = false
	f.Connected = false
}
