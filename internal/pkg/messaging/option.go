package messaging

type consumeOptions struct {
	// name is the durable consumer identity: NSQ channel, NATS queue group,
	// Kafka consumer group or Pub/Sub subscription.
	name        string
	concurrency int
	maxInFlight int
	autoAck     bool
}

// ConsumeOption configures consumer behavior.
type ConsumeOption func(*consumeOptions)

func newConsumeOptions(opts ...ConsumeOption) consumeOptions {
	co := consumeOptions{concurrency: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&co)
		}
	}
	if co.concurrency < 1 {
		co.concurrency = 1
	}
	if co.maxInFlight < co.concurrency {
		co.maxInFlight = co.concurrency
	}

	return co
}

// WithConsumerName sets the durable consumer identity used by every backend.
func WithConsumerName(name string) ConsumeOption {
	return func(o *consumeOptions) { o.name = name }
}

// WithConcurrency sets how many handler goroutines process messages in parallel.
func WithConcurrency(n int) ConsumeOption {
	return func(o *consumeOptions) { o.concurrency = n }
}

// WithMaxInFlight limits the number of unacknowledged messages held by the client.
func WithMaxInFlight(n int) ConsumeOption {
	return func(o *consumeOptions) { o.maxInFlight = n }
}

// WithAutoAck acks or nacks automatically from the handler result.
func WithAutoAck(autoAck bool) ConsumeOption {
	return func(o *consumeOptions) { o.autoAck = autoAck }
}
