package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/pinctl/internal/relay"
)

const (
	outboxLimit    = 100
	commandBacklog = 16
	publishTimeout = 5 * time.Second
)

// RealClient talks to an actual MQTT broker. It reconnects on its own,
// resubscribes to the set topic after every connect and queues messages
// published while the connection is down.
//
// Messages reach the broker in publish order: while anything is queued or a
// replay is running, new messages join the queue instead of overtaking it.
type RealClient struct {
	client   paho.Client
	topics   Topics
	commands chan Command

	mu        sync.Mutex // guards outbox and replaying, held across direct sends
	outbox    *outbox
	replaying bool
}

func newRealClient(topics Topics) *RealClient {
	return &RealClient{
		topics:   topics,
		commands: make(chan Command, commandBacklog),
		outbox:   newOutbox(outboxLimit),
	}
}

// NewRealClient creates a client for the given broker and starts connecting
// in the background. A retained OFFLINE message is registered as the will on
// the system topic.
func NewRealClient(broker, clientID string, topics Topics) *RealClient {
	c := newRealClient(topics)

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(topics.System, willPayload(), 1, true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	c.client = paho.NewClient(opts)
	c.client.Connect()
	return c
}

func (c *RealClient) onConnect(cl paho.Client) {
	log.Printf("mqtt: connected, subscribing to %s", c.topics.Set)
	token := cl.Subscribe(c.topics.Set, 1, func(_ paho.Client, msg paho.Message) {
		c.handleMessage(msg.Payload())
	})
	if token.WaitTimeout(publishTimeout) && token.Error() != nil {
		log.Printf("mqtt: subscribe %s: %v", c.topics.Set, token.Error())
	}

	c.mu.Lock()
	c.replaying = true
	c.mu.Unlock()

	// Publishes made during the replay are queued, so keep draining until
	// nothing is left.
	for {
		c.mu.Lock()
		msgs, dropped := c.outbox.drain()
		if len(msgs) == 0 {
			c.replaying = false
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		log.Printf("mqtt: replaying %d queued messages (%d dropped)", len(msgs), dropped)
		for _, m := range msgs {
			t := cl.Publish(m.topic, m.qos, m.retained, m.payload)
			if !t.WaitTimeout(publishTimeout) {
				log.Printf("mqtt: replay to %s timed out", m.topic)
			} else if err := t.Error(); err != nil {
				log.Printf("mqtt: replay to %s: %v", m.topic, err)
			}
		}
	}
}

func (c *RealClient) handleMessage(payload []byte) {
	cmd, err := ParseCommand(payload)
	if err != nil {
		log.Printf("mqtt: ignoring command: %v", err)
		return
	}
	select {
	case c.commands <- cmd:
	default:
		log.Printf("mqtt: command backlog full, dropping %s", cmd)
	}
}

func (c *RealClient) publish(topic string, qos byte, retained bool, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.replaying || c.outbox.len() > 0 || !c.client.IsConnectionOpen() {
		c.outbox.push(pendingMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		return nil
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// PublishState sends a relay state event. State events are retained so a
// new subscriber sees the current state immediately.
func (c *RealClient) PublishState(event relay.Event) error {
	payload, err := FormatStatePayload(event)
	if err != nil {
		return fmt.Errorf("format state payload: %w", err)
	}
	return c.publish(c.topics.State, 1, true, payload)
}

// PublishSystem sends a system lifecycle event.
func (c *RealClient) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return c.publish(c.topics.System, 1, event.Retained, payload)
}

// Commands delivers commands received on the set topic.
func (c *RealClient) Commands() <-chan Command {
	return c.commands
}

// IsConnected reports whether the broker connection is currently up.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (c *RealClient) Close() error {
	c.client.Disconnect(1000) // 1 second quiesce
	return nil
}
