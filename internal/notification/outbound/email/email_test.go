package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/mail"
	"github.com/stretchr/testify/assert"
)

var errRelay = errors.New("relay unavailable")

// flakyMail fails the first failures sends.
type flakyMail struct {
	failures int
	err      error
	calls    int
	last     mail.Message
}

func (f *flakyMail) Send(_ context.Context, msg mail.Message) error {
	f.calls++
	f.last = msg
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func (*flakyMail) Close() error { return nil }

func newTestMail(client mail.Mail) *Mail {
	return New(client, Config{MaxAttempts: 3, BaseBackoff: time.Millisecond}, instrument.NewNoop())
}

func TestMail_Send(t *testing.T) {
	tests := []struct {
		name     string
		client   *flakyMail
		attempts int
		wantErr  error
	}{
		{name: "first try", client: &flakyMail{}, attempts: 1},
		{name: "recovers after retries", client: &flakyMail{failures: 2, err: errRelay}, attempts: 3},
		{name: "gives up", client: &flakyMail{failures: 5, err: errRelay}, attempts: 3, wantErr: errRelay},
		{name: "permanent error is not retried", client: &flakyMail{failures: 5, err: mail.ErrSMTPNoRecipients}, attempts: 1, wantErr: mail.ErrSMTPNoRecipients},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts, err := newTestMail(tt.client).Send(context.Background(), mail.Message{To: []string{"a@example.com"}, Subject: "s"})

			assert.Equal(t, tt.attempts, attempts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "s", tt.client.last.Subject)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	m := New(&flakyMail{}, Config{}, instrument.NewNoop())
	assert.Equal(t, DefaultMaxAttempts, m.cfg.MaxAttempts)
	assert.Equal(t, DefaultBaseBackoff, m.cfg.BaseBackoff)
}
