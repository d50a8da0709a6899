package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

type ackCounter struct {
	acks  int
	nacks int
}

func (c *ackCounter) delivery(body []byte) *delivery {
	return newDelivery(body, nil,
		func() error { c.acks++; return nil },
		func() error { c.nacks++; return nil },
	)
}

func TestDispatch_AutoAck(t *testing.T) {
	var c ackCounter
	err := dispatch(context.Background(), "test", func(context.Context, Message) error {
		return nil
	}, c.delivery([]byte("ok")), true)

	require.NoError(t, err)
	assert.Equal(t, 1, c.acks)
	assert.Equal(t, 0, c.nacks)
}

func TestDispatch_AutoNackOnError(t *testing.T) {
	var c ackCounter
	wantErr := errors.New("boom")
	err := dispatch(context.Background(), "test", func(context.Context, Message) error {
		return wantErr
	}, c.delivery(nil), true)

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 0, c.acks)
	assert.Equal(t, 1, c.nacks)
}

func TestDispatch_RecoversPanic(t *testing.T) {
	var c ackCounter
	err := dispatch(context.Background(), "test", func(context.Context, Message) error {
		panic("handler exploded")
	}, c.delivery(nil), true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler exploded")
	assert.Equal(t, 1, c.nacks)
}

func TestDispatch_ManualAckWins(t *testing.T) {
	var c ackCounter
	err := dispatch(context.Background(), "test", func(ctx context.Context, msg Message) error {
		require.NoError(t, msg.Ack(ctx))
		return errors.New("late failure")
	}, c.delivery(nil), true)

	assert.Error(t, err)
	assert.Equal(t, 1, c.acks)
	assert.Equal(t, 0, c.nacks)
}

func TestDispatch_NoAutoAck(t *testing.T) {
	var c ackCounter
	err := dispatch(context.Background(), "test", func(context.Context, Message) error {
		return nil
	}, c.delivery(nil), false)

	require.NoError(t, err)
	assert.Zero(t, c.acks+c.nacks)
}

func TestDelivery_CanceledContext(t *testing.T) {
	var c ackCounter
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := c.delivery(nil)
	assert.ErrorIs(t, d.Ack(ctx), context.Canceled)
	assert.NoError(t, d.Ack(context.Background()))
	assert.Equal(t, 1, c.acks)
}

func TestNSQEnvelope(t *testing.T) {
	raw, err := encodeNSQEnvelope(OutgoingMessage{
		Body:    []byte(`{"email":"a@example.com"}`),
		Headers: []Header{{Key: "cID", Value: []byte("abc")}},
	})
	require.NoError(t, err)

	body, headers := decodeNSQEnvelope(raw)
	assert.JSONEq(t, `{"email":"a@example.com"}`, string(body))

	cID, ok := HeaderValue(headers, "cID")
	assert.True(t, ok)
	assert.Equal(t, "abc", cID)
}

func TestNSQEnvelope_LegacyBody(t *testing.T) {
	body, headers := decodeNSQEnvelope([]byte("plain text"))

	assert.Equal(t, []byte("plain text"), body)
	assert.Empty(t, headers)
}

func TestNewConsumeOptions(t *testing.T) {
	co := newConsumeOptions(WithConsumerName("notification"), WithConcurrency(0), nil)

	assert.Equal(t, "notification", co.name)
	assert.Equal(t, 1, co.concurrency)
	assert.Equal(t, 1, co.maxInFlight)

	co = newConsumeOptions(WithConcurrency(4), WithMaxInFlight(2), WithAutoAck(true))
	assert.Equal(t, 4, co.maxInFlight)
	assert.True(t, co.autoAck)
}

func TestNewFromDriver_Unknown(t *testing.T) {
	_, err := NewFromDriver(context.Background(), "carrier-pigeon", FactoryOptions{})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestMemory_FanOutAndGroups(t *testing.T) {
	m := NewMemory(MemoryConfig{Buffer: 4})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type got struct {
		group, body, cid string
	}
	received := make(chan got, 8)
	consume := func(group string) {
		go func() {
			_ = m.Consume(ctx, "otp.requested", func(_ context.Context, msg Message) error {
				cid, _ := HeaderValue(msg.Headers(), "cid")
				received <- got{group: group, body: string(msg.Body()), cid: cid}
				return nil
			}, WithConsumerName(group), WithAutoAck(true))
		}()
	}
	consume("notification")
	consume("audit")

	// Consume registers its queue before reading; wait until both groups exist.
	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return len(m.groups["otp.requested"]) == 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, m.Publish(ctx, "otp.requested", OutgoingMessage{
		Body:    []byte("hello"),
		Headers: []Header{{Key: "cid", Value: []byte("c-1")}},
	}))

	groups := map[string]bool{}
	for range 2 {
		select {
		case g := <-received:
			assert.Equal(t, "hello", g.body)
			assert.Equal(t, "c-1", g.cid)
			groups[g.group] = true
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	}
	assert.Equal(t, map[string]bool{"notification": true, "audit": true}, groups)
}

func TestMemory_NackRedelivers(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan struct{})
	go func() {
		_ = m.Consume(ctx, "t", func(context.Context, Message) error {
			if calls.Add(1) == 1 {
				return errors.New("try again")
			}
			close(done)
			return nil
		}, WithConsumerName("g"), WithAutoAck(true))
	}()

	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.groups["t"]["g"] != nil
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, m.Publish(ctx, "t", OutgoingMessage{Body: []byte("x")}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("message not redelivered")
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestMemory_Closed(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	require.NoError(t, m.Close())

	assert.ErrorIs(t, m.Publish(context.Background(), "t", OutgoingMessage{}), ErrClosed)
	assert.ErrorIs(t, m.Consume(context.Background(), "t", func(context.Context, Message) error { return nil }), ErrClosed)
	assert.ErrorIs(t, m.Publish(context.Background(), "", OutgoingMessage{}), ErrDestinationRequired)
}

func TestNewFromDriver_Memory(t *testing.T) {
	client, err := NewFromDriver(context.Background(), " Memory ", FactoryOptions{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, client)
	assert.Equal(t, []string{"google-pubsub", "kafka", "memory", "nats", "nsq"}, Drivers())
}
