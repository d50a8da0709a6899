package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
)

// KafkaConfig configures the Kafka backend.
type KafkaConfig struct {
	Brokers []string
	Dialer  *kafka.Dialer
}

// Kafka is a Messaging backed by kafka-go. Offsets are committed on Ack; a
// Nack leaves the offset uncommitted so the group redelivers after a rebalance.
type Kafka struct {
	cfg    KafkaConfig
	writer *kafka.Writer
}

// NewKafka creates a writer shared by every topic.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("messaging: kafka brokers are required")
	}

	transport := &kafka.Transport{}
	if cfg.Dialer != nil {
		transport.SASL = cfg.Dialer.SASLMechanism
		transport.TLS = cfg.Dialer.TLS
	}

	return &Kafka{
		cfg: cfg,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Balancer:               &kafka.LeastBytes{},
			Transport:              transport,
			AllowAutoTopicCreation: true,
		},
	}, nil
}

// Close flushes and closes the writer.
func (k *Kafka) Close() error {
	return k.writer.Close()
}

// Publish writes msg to the topic named by destination.
func (k *Kafka) Publish(ctx context.Context, destination string, msg OutgoingMessage) error {
	if destination == "" {
		return ErrDestinationRequired
	}

	kmsg := kafka.Message{Topic: destination, Key: msg.Key, Value: msg.Body}
	for _, h := range msg.Headers {
		if h.Key != "" {
			kmsg.Headers = append(kmsg.Headers, kafka.Header{Key: h.Key, Value: h.Value})
		}
	}

	if err := k.writer.WriteMessages(ctx, kmsg); err != nil {
		return fmt.Errorf("messaging: kafka publish: %w", err)
	}

	return nil
}

// Consume reads topic source as the consumer group named by WithConsumerName.
func (k *Kafka) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
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

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:       k.cfg.Brokers,
		GroupID:       co.name,
		Topic:         source,
		Dialer:        k.cfg.Dialer,
		MaxBytes:      10e6,
		QueueCapacity: co.maxInFlight,
	})

	msgCh := make(chan kafka.Message)
	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for m := range msgCh {
				d := newDelivery(m.Value, kafkaHeaders(m.Headers),
					func() error { return reader.CommitMessages(ctx, m) },
					func() error { return nil },
				)
				//nolint:errcheck // failures stay uncommitted and come back after rebalance
				_ = dispatch(ctx, "kafka", handler, d, co.autoAck)
			}
		})
	}

	var fetchErr error
	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			fetchErr = err
			break
		}
		msgCh <- m
	}
	close(msgCh)
	wg.Wait()

	if errors.Is(fetchErr, context.Canceled) || errors.Is(fetchErr, context.DeadlineExceeded) {
		return errors.Join(fetchErr, reader.Close())
	}

	return errors.Join(fmt.Errorf("messaging: kafka consume: %w", fetchErr), reader.Close())
}

func kafkaHeaders(hs []kafka.Header) []Header {
	headers := make([]Header, 0, len(hs))
	for _, h := range hs {
		headers = append(headers, Header{Key: h.Key, Value: h.Value})
	}

	return headers
}
