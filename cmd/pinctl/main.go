// Command pinctl switches a relay or lamp on a GPIO line, optionally wired
// active-low, from the command line or over MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sweeney/pinctl/internal/gpio"
	"github.com/sweeney/pinctl/internal/mqtt"
	"github.com/sweeney/pinctl/internal/relay"
	"github.com/sweeney/pinctl/internal/status"
	"github.com/sweeney/pinctl/internal/web"
	"github.com/sweeney/pinctl/pin"
)

type config struct {
	driver    string
	chip      string
	line      int
	periphPin string
	activeLow bool
	name      string

	get    bool
	set    string
	toggle bool

	broker      string
	wsBroker    string
	topicPrefix string
	httpAddr    string
	heartbeat   time.Duration
}

func main() {
	var cfg config
	flag.StringVar(&cfg.driver, "driver", "gpiocdev", `GPIO driver: "gpiocdev" or "periph"`)
	flag.StringVar(&cfg.chip, "chip", gpio.DefaultChip, "GPIO chip (gpiocdev driver)")
	flag.IntVar(&cfg.line, "line", gpio.DefaultOffset, "Line offset on the chip (gpiocdev driver)")
	flag.StringVar(&cfg.periphPin, "periph-pin", "GPIO17", "Pin name (periph driver)")
	flag.BoolVar(&cfg.activeLow, "active-low", false, "Load is on when the line is low")
	flag.StringVar(&cfg.name, "name", "relay", "Relay name used in topics and status")
	flag.BoolVar(&cfg.get, "get", false, "Print current state and exit")
	flag.StringVar(&cfg.set, "set", "", "Set state (ON or OFF) and exit")
	flag.BoolVar(&cfg.toggle, "toggle", false, "Toggle state and exit")
	flag.StringVar(&cfg.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address (empty to disable)")
	flag.StringVar(&cfg.wsBroker, "ws-broker", "=broker", `MQTT websocket URL for the live status page ("=broker" derives from -broker, "off" disables)`)
	flag.StringVar(&cfg.topicPrefix, "topic-prefix", mqtt.DefaultTopicPrefix, "MQTT topic prefix")
	flag.StringVar(&cfg.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.DurationVar(&cfg.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")

	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// openPin opens the configured line. With active-low set the returned pin is
// inverted, so high always means the load is on.
func openPin(cfg config) (pin.StatefulIO, func() error, error) {
	var p gpio.Pin
	switch cfg.driver {
	case "gpiocdev":
		l, err := gpio.RequestLine(cfg.chip, cfg.line)
		if err != nil {
			return nil, nil, err
		}
		p = l
	case "periph":
		pp, err := gpio.OpenPeriph(cfg.periphPin)
		if err != nil {
			return nil, nil, err
		}
		p = pp
	default:
		return nil, nil, fmt.Errorf("unknown driver %q", cfg.driver)
	}

	if cfg.activeLow {
		return pin.InvertStatefulIO(p), p.Close, nil
	}
	return p, p.Close, nil
}

func lineName(cfg config) string {
	if cfg.driver == "periph" {
		return cfg.periphPin
	}
	return cfg.chip + ":" + strconv.Itoa(cfg.line)
}

func run(cfg config) error {
	p, closePin, err := openPin(cfg)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer closePin()

	r := relay.New(cfg.name, p)

	if cfg.get || cfg.set != "" || cfg.toggle {
		return runOnce(cfg, r, os.Stdout)
	}

	topics := mqtt.NewTopics(cfg.topicPrefix, cfg.name)
	statusCfg := status.Config{
		Name:        cfg.name,
		Driver:      cfg.driver,
		Line:        lineName(cfg),
		ActiveLow:   cfg.activeLow,
		HeartbeatMs: cfg.heartbeat.Milliseconds(),
		Broker:      cfg.broker,
		HTTPAddr:    cfg.httpAddr,
	}
	if cfg.broker != "" {
		statusCfg.WSBroker = resolveWSBroker(cfg.wsBroker, cfg.broker)
		statusCfg.StateTopic = topics.State
	}
	tracker := status.NewTracker(time.Now(), statusCfg)
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	updateTracker(r, tracker, time.Now())

	var client mqtt.Client
	var mqttStatus mqtt.ConnectionStatus
	var cmds <-chan mqtt.Command
	if cfg.broker != "" {
		rc := mqtt.NewRealClient(cfg.broker, "pinctl-"+cfg.name, topics)
		defer rc.Close()
		client, mqttStatus, cmds = rc, rc, rc.Commands()
		log.Printf("mqtt: commands on %s, state on %s", topics.Set, topics.State)

		snap := tracker.Snapshot()
		startup := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := client.PublishSystem(startup); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
		publishCurrentState(r, client, snap.Now)
	}

	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	log.Printf("started: name=%s line=%s active-low=%v broker=%s heartbeat=%v",
		cfg.name, lineName(cfg), cfg.activeLow, cfg.broker, cfg.heartbeat)

	var tick <-chan time.Time
	if cfg.heartbeat > 0 {
		ticker := time.NewTicker(cfg.heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(r, client, mqttStatus, tracker, time.Now, cmds, tick, sigCh)
}

// publishCurrentState publishes the relay's state as a retained event, so
// subscribers see it even if it has not changed since before a restart.
func publishCurrentState(r *relay.Relay, client mqtt.Client, now time.Time) {
	ev, err := r.StateEvent(now)
	if err != nil {
		log.Printf("read state: %v", err)
		return
	}
	if err := client.PublishState(ev); err != nil {
		log.Printf("failed to publish state: %v", err)
	}
}

// resolveWSBroker converts the -ws-broker flag value into a concrete URL.
// "=broker" derives ws://<broker host>:9001 from the TCP broker URL.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil || u.Hostname() == "" {
		log.Printf("ws-broker: cannot derive from -broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}

// runOnce handles -get, -set and -toggle, printing the resulting state.
func runOnce(cfg config, r *relay.Relay, out io.Writer) error {
	now := time.Now()
	switch {
	case cfg.set != "":
		state, err := relay.ParseState(cfg.set)
		if err != nil {
			return err
		}
		if _, err := r.Set(state, now); err != nil {
			return fmt.Errorf("set %s: %w", state, err)
		}
	case cfg.toggle:
		if _, err := r.Toggle(now); err != nil {
			return fmt.Errorf("toggle: %w", err)
		}
	}

	state, err := r.Current()
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}
	fmt.Fprintf(out, "%s: %s\n", r.Name(), state)
	return nil
}

func runLoop(r *relay.Relay, client mqtt.Client, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, cmds <-chan mqtt.Command, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			if client == nil {
				return nil
			}
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := client.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case cmd := <-cmds:
			t := now()
			var ev *relay.Event
			var err error
			switch cmd {
			case mqtt.CommandOn:
				ev, err = r.Set(relay.StateOn, t)
			case mqtt.CommandOff:
				ev, err = r.Set(relay.StateOff, t)
			case mqtt.CommandToggle:
				ev, err = r.Toggle(t)
			default:
				log.Printf("ignoring unknown command %q", cmd)
				continue
			}
			if err != nil {
				log.Printf("command %s failed: %v", cmd, err)
			} else if ev != nil {
				log.Printf("event: %s (%s=%s)", ev.Type, ev.Name, ev.State)
				if client != nil {
					if err := client.PublishState(*ev); err != nil {
						log.Printf("publish error: %v", err)
					}
				}
			}
			if tracker != nil {
				updateTracker(r, tracker, t)
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

		case <-tick:
			t := now()
			if tracker != nil {
				updateTracker(r, tracker, t)
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				if net := readNetworkInfo(); net != nil {
					tracker.SetNetwork(net)
				}
			}
			c := r.CountsSnapshot()
			log.Printf("heartbeat: on=%d off=%d errors=%d", c.On, c.Off, c.Errors)
			if client == nil {
				continue
			}
			hb := mqtt.SystemEvent{Timestamp: t, Event: "HEARTBEAT"}
			if tracker != nil {
				hb.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
			}
			if err := client.PublishSystem(hb); err != nil {
				log.Printf("heartbeat publish error: %v", err)
			}
		}
	}
}

func updateTracker(r *relay.Relay, tracker *status.Tracker, at time.Time) {
	state, err := r.Current()
	if err != nil {
		log.Printf("read state: %v", err)
		return
	}
	tracker.Update(state, r.CountsSnapshot(), at)
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
