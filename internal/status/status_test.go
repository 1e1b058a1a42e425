package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/pinctl/internal/relay"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newFixedTracker(cfg Config, now time.Time) *Tracker {
	tr := NewTracker(start, cfg)
	tr.now = func() time.Time { return now }
	return tr
}

func TestNewTracker(t *testing.T) {
	cfg := Config{Name: "porch", Driver: "gpiocdev", Broker: "tcp://localhost:1883", HTTPAddr: ":80"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.Name != "porch" {
		t.Errorf("Config.Name: got %q, want porch", snap.Config.Name)
	}
	if snap.State != "" {
		t.Errorf("expected empty State initially, got %q", snap.State)
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(start, Config{})
	at := start.Add(time.Minute)

	tr.Update(relay.StateOn, relay.Counts{On: 3, Off: 1}, at)

	snap := tr.Snapshot()
	if snap.State != relay.StateOn {
		t.Errorf("State: got %q, want ON", snap.State)
	}
	if snap.Counts.On != 3 || snap.Counts.Off != 1 {
		t.Errorf("unexpected counts: %+v", snap.Counts)
	}
	if !snap.LastChange.Equal(at) {
		t.Errorf("LastChange: got %v, want %v", snap.LastChange, at)
	}
}

func TestUpdateKeepsLastChangeWhenUnchanged(t *testing.T) {
	tr := NewTracker(start, Config{})
	first := start.Add(time.Minute)

	tr.Update(relay.StateOn, relay.Counts{On: 1}, first)
	tr.Update(relay.StateOn, relay.Counts{On: 1}, first.Add(time.Hour))

	if got := tr.Snapshot().LastChange; !got.Equal(first) {
		t.Errorf("LastChange: got %v, want %v", got, first)
	}
}

func TestSetMQTTConnectedAndNetwork(t *testing.T) {
	tr := NewTracker(start, Config{})
	tr.SetMQTTConnected(true)
	tr.SetNetwork(&NetworkInfo{Type: "wifi", Status: "connected"})

	snap := tr.Snapshot()
	if !snap.MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}
	if snap.Network == nil || snap.Network.Type != "wifi" {
		t.Errorf("unexpected network: %+v", snap.Network)
	}
}

func TestUptime(t *testing.T) {
	tr := newFixedTracker(Config{}, start.Add(90*time.Second))
	if got := tr.Snapshot().Uptime(); got != 90*time.Second {
		t.Errorf("Uptime: got %v, want 90s", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(start, Config{})
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			tr.Update(relay.StateOn, relay.Counts{On: i}, start)
			tr.SetMQTTConnected(i%2 == 0)
		}(i)
		go func() {
			defer wg.Done()
			_ = tr.Snapshot()
		}()
	}
	wg.Wait()
}

func TestFormatJSON(t *testing.T) {
	cfg := Config{
		Name:        "porch",
		Driver:      "gpiocdev",
		Line:        "gpiochip0:17",
		ActiveLow:   true,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":80",
	}
	tr := newFixedTracker(cfg, start.Add(2*time.Hour))
	tr.Update(relay.StateOff, relay.Counts{On: 2, Off: 3, Errors: 1}, start.Add(time.Hour))
	tr.SetMQTTConnected(true)

	var sj StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	s := sj.Status
	if s.Event != "" || s.Reason != "" {
		t.Errorf("web JSON should have no event/reason, got %q/%q", s.Event, s.Reason)
	}
	if s.Name != "porch" || s.State != "OFF" {
		t.Errorf("unexpected name/state: %q/%q", s.Name, s.State)
	}
	if s.UptimeSeconds != 7200 {
		t.Errorf("UptimeSeconds: got %d, want 7200", s.UptimeSeconds)
	}
	if s.LastChange != "2026-01-01T01:00:00Z" {
		t.Errorf("LastChange: got %q", s.LastChange)
	}
	if !s.MQTT.Connected || s.MQTT.Broker != cfg.Broker {
		t.Errorf("unexpected MQTT: %+v", s.MQTT)
	}
	if s.Counts.On != 2 || s.Counts.Off != 3 || s.Counts.Errors != 1 {
		t.Errorf("unexpected counts: %+v", s.Counts)
	}
	if !s.Config.ActiveLow || s.Config.Line != "gpiochip0:17" {
		t.Errorf("unexpected config: %+v", s.Config)
	}
	if s.Network != nil {
		t.Error("network should be omitted when unset")
	}
}

func TestFormatJSONUnknownState(t *testing.T) {
	tr := newFixedTracker(Config{}, start)

	var sj StatusJSON
	json.Unmarshal(FormatJSON(tr.Snapshot()), &sj)
	if sj.Status.State != "UNKNOWN" {
		t.Errorf("State: got %q, want UNKNOWN", sj.Status.State)
	}
	if sj.Status.LastChange != "" {
		t.Errorf("LastChange should be omitted, got %q", sj.Status.LastChange)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := newFixedTracker(Config{Name: "porch"}, start)
	tr.SetNetwork(&NetworkInfo{Type: "ethernet", IP: "192.168.1.50", Status: "connected"})

	data := FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM")

	var sj StatusJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sj.Status.Event != "SHUTDOWN" || sj.Status.Reason != "SIGTERM" {
		t.Errorf("unexpected event/reason: %q/%q", sj.Status.Event, sj.Status.Reason)
	}
	if sj.Status.Network == nil || sj.Status.Network.IP != "192.168.1.50" {
		t.Errorf("unexpected network: %+v", sj.Status.Network)
	}
}
