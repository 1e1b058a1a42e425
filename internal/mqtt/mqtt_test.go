package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/pinctl/internal/relay"
)

var _ Client = (*FakeClient)(nil)
var _ Client = (*RealClient)(nil)
var _ ConnectionStatus = (*RealClient)(nil)

func TestNewTopics(t *testing.T) {
	topics := NewTopics("home/relay/", "porch")

	if topics.Set != "home/relay/porch/set" {
		t.Errorf("Set: got %q", topics.Set)
	}
	if topics.State != "home/relay/porch/state" {
		t.Errorf("State: got %q", topics.State)
	}
	if topics.System != "home/relay/porch/system" {
		t.Errorf("System: got %q", topics.System)
	}
}

func TestParseCommand(t *testing.T) {
	valid := map[string]Command{
		"ON":                      CommandOn,
		"off":                     CommandOff,
		" toggle\n":               CommandToggle,
		`{"command":"ON"}`:        CommandOn,
		` {"command": "toggle"} `: CommandToggle,
	}
	for in, want := range valid {
		got, err := ParseCommand([]byte(in))
		if err != nil {
			t.Errorf("ParseCommand(%q): unexpected error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseCommand(%q): got %s, want %s", in, got, want)
		}
	}

	for _, in := range []string{"", "1", "HIGH", `{"command":"BLINK"}`, `{"command":`, `{"state":"ON"}`} {
		if _, err := ParseCommand([]byte(in)); err == nil {
			t.Errorf("ParseCommand(%q): expected error", in)
		}
	}
}

func TestFormatStatePayloadExactJSON(t *testing.T) {
	event := relay.Event{
		Timestamp: time.Date(2026, 1, 3, 21, 4, 12, 0, time.UTC),
		Name:      "porch",
		Type:      relay.EventSwitchOn,
		State:     relay.StateOn,
	}

	payload, err := FormatStatePayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"relay":{"timestamp":"2026-01-03T21:04:12Z","name":"porch","event":"SWITCH_ON","state":"ON"}}`
	if string(payload) != want {
		t.Errorf("payload mismatch:\ngot:  %s\nwant: %s", payload, want)
	}
}

func TestFormatStatePayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	event := relay.Event{
		Timestamp: time.Date(2026, 1, 3, 16, 0, 0, 0, loc),
		Type:      relay.EventSwitchOff,
		State:     relay.StateOff,
	}

	payload, _ := FormatStatePayload(event)

	var p StatePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Relay.Timestamp != "2026-01-03T21:00:00Z" {
		t.Errorf("expected UTC timestamp, got %s", p.Relay.Timestamp)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 1, 3, 21, 4, 12, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"system":{"timestamp":"2026-01-03T21:04:12Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != want {
		t.Errorf("payload mismatch:\ngot:  %s\nwant: %s", payload, want)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload, got %s", payload)
	}
}

func TestWillPayloadFormat(t *testing.T) {
	want := `{"system":{"event":"OFFLINE","reason":"CONNECTION_LOST"}}`
	if got := willPayload(); got != want {
		t.Errorf("will payload:\ngot:  %s\nwant: %s", got, want)
	}
}

func TestHandleMessage(t *testing.T) {
	c := &RealClient{commands: make(chan Command, 2)}

	c.handleMessage([]byte("on"))
	c.handleMessage([]byte("garbage"))
	c.handleMessage([]byte(`{"command":"OFF"}`))
	// Backlog is full, dropped
	c.handleMessage([]byte("TOGGLE"))

	if got := <-c.commands; got != CommandOn {
		t.Errorf("first command: got %s, want ON", got)
	}
	if got := <-c.commands; got != CommandOff {
		t.Errorf("second command: got %s, want OFF", got)
	}
	select {
	case cmd := <-c.commands:
		t.Errorf("expected no more commands, got %s", cmd)
	default:
	}
}

func TestFakeClientPublish(t *testing.T) {
	f := NewFakeClient()
	event := relay.Event{Timestamp: time.Now(), Name: "porch", Type: relay.EventSwitchOn, State: relay.StateOn}

	if err := f.PublishState(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "HEARTBEAT"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.States) != 1 || len(f.StatePayloads) != 1 {
		t.Errorf("expected 1 state event, got %d", len(f.States))
	}
	if len(f.SystemEvents) != 1 || f.SystemEvents[0].Event != "HEARTBEAT" {
		t.Errorf("unexpected system events: %+v", f.SystemEvents)
	}
}

func TestFakeClientErrors(t *testing.T) {
	f := NewFakeClient()
	f.PublishStateError = errors.New("state failed")
	f.PublishSystemError = errors.New("system failed")

	if err := f.PublishState(relay.Event{}); err != f.PublishStateError {
		t.Errorf("expected state error, got %v", err)
	}
	if err := f.PublishSystem(SystemEvent{}); err != f.PublishSystemError {
		t.Errorf("expected system error, got %v", err)
	}
	if len(f.States) != 0 || len(f.SystemEvents) != 0 {
		t.Error("failed publishes should not be recorded")
	}
}

func TestFakeClientCommands(t *testing.T) {
	f := NewFakeClient()
	f.Send(CommandToggle)

	select {
	case cmd := <-f.Commands():
		if cmd != CommandToggle {
			t.Errorf("got %s, want TOGGLE", cmd)
		}
	default:
		t.Fatal("expected a queued command")
	}
}

func TestFakeClientReset(t *testing.T) {
	f := NewFakeClient()
	f.PublishState(relay.Event{})
	f.Close()
	f.Connected = true

	f.Reset()
	if f.States != nil || f.Closed || f.Connected {
		t.Errorf("Reset should clear state, got %+v", f)
	}
}
