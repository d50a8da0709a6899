package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

// NATSConfig configures the NATS backend.
type NATSConfig struct {
	URL     string
	Options []nats.Option
}

// NATS is a Messaging backed by core NATS queue subscriptions.
type NATS struct {
	conn *nats.Conn
}

// NewNATS connects to the NATS server.
func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, errors.New("messaging: nats url is required")
	}

	conn, err := nats.Connect(cfg.URL, cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}

	return &NATS{conn: conn}, nil
}

// Close drains subscriptions and closes the connection.
func (n *NATS) Close() error {
	if n.conn.IsClosed() {
		return nil
	}

	return n.conn.Drain()
}

// Publish sends msg to the subject named by destination.
func (n *NATS) Publish(ctx context.Context, destination string, msg OutgoingMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if destination == "" {
		return ErrDestinationRequired
	}

	nmsg := nats.NewMsg(destination)
	nmsg.Data = msg.Body
	for _, h := range msg.Headers {
		if h.Key != "" {
			nmsg.Header.Add(h.Key, string(h.Value))
		}
	}

	if err := n.conn.PublishMsg(nmsg); err != nil {
		return fmt.Errorf("messaging: nats publish: %w", err)
	}

	return n.conn.Flush()
}

// Consume joins the queue group named by WithConsumerName on subject source.
func (n *NATS) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	msgCh := make(chan *nats.Msg, co.maxInFlight)

	sub, err := n.conn.QueueSubscribe(source, co.name, func(m *nats.Msg) {
		select {
		case msgCh <- m:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fmt.Errorf("messaging: nats subscribe: %w", err)
	}

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case m := <-msgCh:
					d := newDelivery(m.Data, natsHeaders(m.Header), ignoreNoReply(m.Ack), ignoreNoReply(m.Nak))
					//nolint:errcheck // core NATS has no redelivery, errors are logged by the handler
					_ = dispatch(ctx, "nats", handler, d, co.autoAck)
				}
			}
		})
	}

	<-ctx.Done()
	derr := sub.Unsubscribe()
	wg.Wait()

	return errors.Join(ctx.Err(), derr)
}

func natsHeaders(h nats.Header) []Header {
	headers := make([]Header, 0, len(h))
	for k, values := range h {
		for _, v := range values {
			headers = append(headers, Header{Key: k, Value: []byte(v)})
		}
	}

	return headers
}

// ignoreNoReply treats acks on plain (non JetStream) messages as no-ops.
func ignoreNoReply(fn func(...nats.AckOpt) error) func() error {
	return func() error {
		if err := fn(); err != nil && !errors.Is(err, nats.ErrMsgNoReply) && !errors.Is(err, nats.ErrMsgNotBound) {
			return err
		}
		return nil
	}
}
