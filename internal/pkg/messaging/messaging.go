package messaging

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrDestinationRequired is returned when publishing or consuming without a topic/subject.
	ErrDestinationRequired = errors.New("messaging: destination is required")
	// ErrHandlerRequired is returned when Consume is called with a nil handler.
	ErrHandlerRequired = errors.New("messaging: handler is required")
	// ErrConsumerNameRequired is returned when the broker needs a durable consumer name.
	ErrConsumerNameRequired = errors.New("messaging: consumer name is required")
)

// Messaging is a broker-agnostic client that can publish and consume messages.
type Messaging interface {
	io.Closer

	Publisher
	Consumer
}

// Publisher publishes messages to a destination (topic/subject).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) error
}

// Consumer consumes messages from a source until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message. With auto-ack enabled a nil error
// acknowledges the message and a non-nil error asks the broker to redeliver it.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to be published.
type OutgoingMessage struct {
	Body []byte
	// Key is used by Kafka for partitioning and ignored elsewhere.
	Key     []byte
	Headers []Header
}

// Header is a key/value pair carried next to the body.
type Header struct {
	Key   string
	Value []byte
}

// Message is a received message.
type Message interface {
	Body() []byte
	Headers() []Header
	// Ack acknowledges successful processing. Only the first Ack/Nack takes effect.
	Ack(ctx context.Context) error
	// Nack requests a redelivery. Only the first Ack/Nack takes effect.
	Nack(ctx context.Context) error
}

// HeaderValue returns the first header value stored under key.
func HeaderValue(headers []Header, key string) (string, bool) {
	for i := range headers {
		if headers[i].Key == key {
			return string(headers[i].Value), true
		}
	}

	return "", false
}
