// Package pubsub abstracts the broadcast transport: an at-least-once
// publish/subscribe service with retained messages and a
// last-will-and-testament mechanism. The concrete implementation is an
// MQTT broker; the Client interface keeps the rest of the system
// independent of it.
package pubsub

// Handler receives every inbound message on subscribed topics.
type Handler func(topic string, payload []byte)

// Will is a message the broker publishes on the client's behalf if the
// connection drops without a clean disconnect. It is published retained
// so peers observe an abrupt death exactly like an explicit sign-off.
type Will struct {
	Topic   string
	Payload string
}

// Client is the abstract pub/sub transport.
type Client interface {
	// SetHandler registers the inbound message handler. Must be called
	// before Connect.
	SetHandler(h Handler)

	// Connect establishes the broker session, registering the optional
	// last will. The attempt is bounded by a connect timeout and is not
	// retried automatically.
	Connect(will *Will) error

	// Publish sends payload to topic, optionally retained.
	Publish(topic, payload string, retain bool) error

	// Subscribe registers interest in a topic; matching messages are
	// delivered to the handler.
	Subscribe(topic string) error

	// Disconnect tears the session down cleanly, suppressing the will.
	Disconnect()
}
