package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	nsq "github.com/nsqio/go-nsq"
)

// NSQConfig configures the NSQ backend.
type NSQConfig struct {
	ProducerAddr         string
	ConsumerNSQDAddrs    []string
	ConsumerLookupdAddrs []string
	ProducerConfig       *nsq.Config
	ConsumerConfig       *nsq.Config
}

// NSQ is a Messaging backed by nsqd. NSQ has no native headers, so bodies are
// wrapped in an envelope that carries them.
type NSQ struct {
	cfg      NSQConfig
	producer *nsq.Producer

	mu        sync.Mutex
	consumers []*nsq.Consumer
}

type nsqEnvelope struct {
	Headers map[string]string `json:"headers,omitempty"`
	Body    []byte            `json:"body"`
}

// NewNSQ creates the producer. Consumers are created per Consume call.
func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	if cfg.ProducerAddr == "" {
		return nil, errors.New("messaging: nsq producer address is required")
	}
	if cfg.ProducerConfig == nil {
		cfg.ProducerConfig = nsq.NewConfig()
	}
	if cfg.ConsumerConfig == nil {
		cfg.ConsumerConfig = nsq.NewConfig()
	}

	producer, err := nsq.NewProducer(cfg.ProducerAddr, cfg.ProducerConfig)
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq new producer: %w", err)
	}
	producer.SetLoggerLevel(nsq.LogLevelError)

	return &NSQ{cfg: cfg, producer: producer}, nil
}

// Close stops every consumer and the producer.
func (n *NSQ) Close() error {
	n.mu.Lock()
	consumers := n.consumers
	n.consumers = nil
	n.mu.Unlock()

	for _, c := range consumers {
		c.Stop()
		<-c.StopChan
	}
	n.producer.Stop()

	return nil
}

// Publish sends msg to the topic named by destination.
func (n *NSQ) Publish(ctx context.Context, destination string, msg OutgoingMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if destination == "" {
		return ErrDestinationRequired
	}

	body, err := encodeNSQEnvelope(msg)
	if err != nil {
		return err
	}

	if err := n.producer.Publish(destination, body); err != nil {
		return fmt.Errorf("messaging: nsq publish: %w", err)
	}

	return nil
}

// Consume reads topic source on the channel named by WithConsumerName.
func (n *NSQ) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	if co.name == "" {
		return ErrConsumerNameRequired
	}

	ccfg := *n.cfg.ConsumerConfig
	ccfg.MaxInFlight = co.maxInFlight

	consumer, err := nsq.NewConsumer(source, co.name, &ccfg)
	if err != nil {
		return fmt.Errorf("messaging: nsq new consumer: %w", err)
	}
	consumer.SetLoggerLevel(nsq.LogLevelError)

	consumer.AddConcurrentHandlers(nsq.HandlerFunc(func(m *nsq.Message) error {
		m.DisableAutoResponse()

		body, headers := decodeNSQEnvelope(m.Body)
		d := newDelivery(body, headers,
			func() error { m.Finish(); return nil },
			func() error { m.Requeue(-1); return nil },
		)

		return dispatch(ctx, "nsq", handler, d, co.autoAck)
	}), co.concurrency)

	if len(n.cfg.ConsumerLookupdAddrs) > 0 {
		err = consumer.ConnectToNSQLookupds(n.cfg.ConsumerLookupdAddrs)
	} else {
		err = consumer.ConnectToNSQDs(n.cfg.ConsumerNSQDAddrs)
	}
	if err != nil {
		consumer.Stop()
		return fmt.Errorf("messaging: nsq connect: %w", err)
	}

	n.mu.Lock()
	n.consumers = append(n.consumers, consumer)
	n.mu.Unlock()

	select {
	case <-ctx.Done():
		consumer.Stop()
		<-consumer.StopChan
		return ctx.Err()
	case <-consumer.StopChan:
		return nil
	}
}

func encodeNSQEnvelope(msg OutgoingMessage) ([]byte, error) {
	env := nsqEnvelope{Body: msg.Body}
	if len(msg.Headers) > 0 {
		env.Headers = make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			if h.Key != "" {
				env.Headers[h.Key] = string(h.Value)
			}
		}
	}

	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq encode envelope: %w", err)
	}

	return body, nil
}

// decodeNSQEnvelope falls back to the raw body for messages published without an envelope.
func decodeNSQEnvelope(raw []byte) ([]byte, []Header) {
	var env nsqEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Body == nil {
		return raw, nil
	}

	headers := make([]Header, 0, len(env.Headers))
	for k, v := range env.Headers {
		headers = append(headers, Header{Key: k, Value: []byte(v)})
	}

	return env.Body, headers
}
