package email

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseBackoff = 500 * time.Millisecond
	maxBackoff         = 10 * time.Second
)

type Config struct {
	MaxAttempts int
	BaseBackoff time.Duration
}

type Mail struct {
	client mail.Mail
	cfg    Config
	ins    instrument.Instrumentation
}

func New(client mail.Mail, cfg Config, ins instrument.Instrumentation) *Mail {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = DefaultBaseBackoff
	}

	return &Mail{client: client, cfg: cfg, ins: ins}
}

// permanent reports errors a retry cannot fix.
func permanent(err error) bool {
	return errors.Is(err, mail.ErrSMTPNoRecipients) ||
		errors.Is(err, mail.ErrSMTPNoSender) ||
		errors.Is(err, context.Canceled)
}

// Send delivers msg with exponential backoff and reports how many attempts it took.
func (m *Mail) Send(ctx context.Context, msg mail.Message) (attempts int, err error) {
	ctx, span := m.ins.Tracer("notification.outbound.email").Start(ctx, "Send")
	defer func() {
		span.SetAttributes(attribute.Int("mail.attempts", attempts))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	backoff := retry.NewExponential(m.cfg.BaseBackoff)
	backoff = retry.WithCappedDuration(maxBackoff, backoff)
	backoff = retry.WithMaxRetries(uint64(m.cfg.MaxAttempts-1), backoff)

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		if err := m.client.Send(ctx, msg); err != nil {
			if permanent(err) {
				return err
			}
			return retry.RetryableError(err)
		}
		return nil
	})

	return attempts, err
}
