package messaging

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

const defaultMemoryBuffer = 256

var ErrClosed = errors.New("messaging: client closed")

type MemoryConfig struct {
	Buffer int // per consumer group queue size
}

// Memory is an in-process broker for single-node runs and tests. Each
// consumer name is a group with its own queue: every group sees every
// message published after it subscribed, and members of one group share
// the work. A nacked message is queued again if there is room.
type Memory struct {
	mu     sync.Mutex
	buffer int
	groups map[string]map[string]chan memoryMessage // destination, group
	closed bool
}

type memoryMessage struct {
	body    []byte
	headers []Header
}

func NewMemory(cfg MemoryConfig) *Memory {
	if cfg.Buffer < 1 {
		cfg.Buffer = defaultMemoryBuffer
	}
	return &Memory{buffer: cfg.Buffer, groups: map[string]map[string]chan memoryMessage{}}
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// Publish blocks while a group queue is full, until ctx is done. With no
// subscribers the message is dropped, as core NATS does.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) error {
	if destination == "" {
		return ErrDestinationRequired
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	queues := make([]chan memoryMessage, 0, len(m.groups[destination]))
	for _, q := range m.groups[destination] {
		queues = append(queues, q)
	}
	m.mu.Unlock()

	mm := memoryMessage{body: msg.Body, headers: msg.Headers}
	for _, q := range queues {
		select {
		case q <- mm:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	q, err := m.queue(source, co.name)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case mm := <-q:
					d := newDelivery(mm.body, mm.headers,
						func() error { return nil },
						func() error { return requeue(ctx, q, mm) },
					)
					if err := dispatch(ctx, "memory", handler, d, co.autoAck); err != nil {
						slog.WarnContext(ctx, "memory consumer handler failed", "destination", source, "error", err)
					}
				}
			}
		})
	}

	wg.Wait()
	return ctx.Err()
}

func (m *Memory) queue(destination, group string) (chan memoryMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	if m.groups[destination] == nil {
		m.groups[destination] = map[string]chan memoryMessage{}
	}
	q, ok := m.groups[destination][group]
	if !ok {
		q = make(chan memoryMessage, m.buffer)
		m.groups[destination][group] = q
	}
	return q, nil
}

func requeue(ctx context.Context, q chan memoryMessage, mm memoryMessage) error {
	select {
	case q <- mm:
	default:
		slog.WarnContext(ctx, "memory queue full, dropping nacked message")
	}
	return nil
}
