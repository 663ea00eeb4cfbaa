package pubsub

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const (
	connectTimeout = 10 * time.Second
	opTimeout      = 5 * time.Second
	qos            = 1
)

// MQTTClient implements Client on top of an MQTT broker.
type MQTTClient struct {
	mu        sync.Mutex
	brokerURL string
	clientID  string
	handler   Handler
	client    mqtt.Client
}

// NewMQTT creates a client for the given broker URL
// (e.g. "tcp://broker.hivemq.com:1883"). Each instance gets a unique
// client ID so concurrent sessions never evict each other.
func NewMQTT(brokerURL string) *MQTTClient {
	return &MQTTClient{
		brokerURL: brokerURL,
		clientID:  "user-client-" + uuid.NewString(),
	}
}

// SetHandler registers the inbound message handler.
func (c *MQTTClient) SetHandler(h Handler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// Connect dials the broker, registering the last will before the
// session is established. Fails after a bounded timeout.
func (c *MQTTClient) Connect(will *Will) error {
	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()

	opts := mqtt.NewClientOptions().
		AddBroker(c.brokerURL).
		SetClientID(c.clientID).
		SetConnectTimeout(connectTimeout).
		SetKeepAlive(60 * time.Second).
		SetAutoReconnect(true).
		SetDefaultPublishHandler(func(_ mqtt.Client, msg mqtt.Message) {
			if handler != nil {
				handler(msg.Topic(), msg.Payload())
			}
		})

	if will != nil {
		slog.Debug("registering last will", "topic", will.Topic, "payload", will.Payload)
		opts.SetWill(will.Topic, will.Payload, qos, true)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("pubsub: connect to %s: timeout", c.brokerURL)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("pubsub: connect to %s: %w", c.brokerURL, err)
	}

	c.mu.Lock()
	c.client = client
	c.mu.Unlock()

	slog.Info("connected to broker", "broker", c.brokerURL, "client_id", c.clientID)
	return nil
}

// Publish sends payload to topic at QoS 1.
func (c *MQTTClient) Publish(topic, payload string, retain bool) error {
	client := c.current()
	if client == nil {
		return fmt.Errorf("pubsub: publish %s: not connected", topic)
	}
	token := client.Publish(topic, qos, retain, payload)
	if !token.WaitTimeout(opTimeout) {
		return fmt.Errorf("pubsub: publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("pubsub: publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe registers interest in a topic. Messages arrive through the
// handler installed with SetHandler.
func (c *MQTTClient) Subscribe(topic string) error {
	client := c.current()
	if client == nil {
		return fmt.Errorf("pubsub: subscribe %s: not connected", topic)
	}

	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()

	token := client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		if handler != nil {
			handler(msg.Topic(), msg.Payload())
		}
	})
	if !token.WaitTimeout(opTimeout) {
		return fmt.Errorf("pubsub: subscribe %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("pubsub: subscribe %s: %w", topic, err)
	}
	slog.Debug("subscribed", "topic", topic)
	return nil
}

// Disconnect closes the session cleanly, giving in-flight work a short
// grace period. The registered will is not published.
func (c *MQTTClient) Disconnect() {
	c.mu.Lock()
	client := c.client
	c.client = nil
	c.mu.Unlock()

	if client != nil {
		client.Disconnect(250)
		slog.Info("disconnected from broker", "broker", c.brokerURL)
	}
}

func (c *MQTTClient) current() mqtt.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client
}

// Compile-time check: *MQTTClient implements Client.
var _ Client = (*MQTTClient)(nil)
