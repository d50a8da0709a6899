package render

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/otpflow/internal/notification/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/storage"
	"github.com/shandysiswandi/otpflow/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStorage map[string]string

func (m mapStorage) Get(_ context.Context, bucket, key string) ([]byte, error) {
	v, ok := m[bucket+"/"+key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return []byte(v), nil
}

func (mapStorage) Close() error { return nil }

type brokenStorage struct{}

func (brokenStorage) Get(context.Context, string, string) ([]byte, error) {
	return nil, errors.New("bucket unreachable")
}

func (brokenStorage) Close() error { return nil }

func TestRenderer_Embedded(t *testing.T) {
	r, err := New(Config{}, storage.Noop{}, instrument.NewNoop())
	require.NoError(t, err)

	tests := []struct {
		purpose event.OTPPurpose
		subject string
		body    string
	}{
		{event.OTPPurposeRegistration, "Registration OTP", "Your registration OTP is <b>123456</b>. Valid for 30 minutes."},
		{event.OTPPurposeAuthentication, "Authentication OTP", "Your authentication OTP is <b>123456</b>. Valid for 30 minutes."},
		{event.OTPPurposePasswordReset, "Password Reset OTP", "Your password reset OTP is <b>123456</b>. Valid for 30 minutes."},
		{event.OTPPurposeEmailChange, "Account Email Change OTP", "Your email change OTP is <b>123456</b>. Valid for 30 minutes."},
	}

	for _, tt := range tests {
		t.Run(string(tt.purpose), func(t *testing.T) {
			subject, body, err := r.RenderOTP(context.Background(), entity.OTPMail{
				Purpose:         tt.purpose,
				Code:            "123456",
				ValidForMinutes: 30,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.subject, subject)
			assert.Contains(t, body, tt.body)
			assert.Contains(t, body, "<p>Hi,</p>")
		})
	}
}

func TestRenderer_EscapesName(t *testing.T) {
	r, err := New(Config{}, storage.Noop{}, instrument.NewNoop())
	require.NoError(t, err)

	_, body, err := r.RenderOTP(context.Background(), entity.OTPMail{
		Purpose: event.OTPPurposeRegistration,
		Name:    "<script>x</script>",
		Code:    "123456",
	})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestRenderer_UnknownPurpose(t *testing.T) {
	r, err := New(Config{}, storage.Noop{}, instrument.NewNoop())
	require.NoError(t, err)

	_, _, err = r.RenderOTP(context.Background(), entity.OTPMail{Purpose: "newsletter"})
	assert.ErrorIs(t, err, ErrUnknownPurpose)
}

func TestRenderer_Override(t *testing.T) {
	store := mapStorage{
		"mail/otp/otp_registration.html":   `{{define "subject"}}Welcome code{{end}}{{define "body"}}code={{.Code}}{{end}}`,
		"mail/otp/otp_authentication.html": `{{define "body"}}no subject{{end}}`,
	}
	r, err := New(Config{Bucket: "mail", Prefix: "otp"}, store, instrument.NewNoop())
	require.NoError(t, err)
	ctx := context.Background()

	subject, body, err := r.RenderOTP(ctx, entity.OTPMail{Purpose: event.OTPPurposeRegistration, Code: "4242"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome code", subject)
	assert.Equal(t, "code=4242", body)

	subject, _, err = r.RenderOTP(ctx, entity.OTPMail{Purpose: event.OTPPurposeAuthentication, Code: "4242"})
	require.NoError(t, err)
	assert.Equal(t, "Authentication OTP", subject, "an incomplete override falls back")

	subject, _, err = r.RenderOTP(ctx, entity.OTPMail{Purpose: event.OTPPurposePasswordReset, Code: "4242"})
	require.NoError(t, err)
	assert.Equal(t, "Password Reset OTP", subject)
}

func TestRenderer_StorageErrorFallsBack(t *testing.T) {
	r, err := New(Config{Bucket: "mail"}, brokenStorage{}, instrument.NewNoop())
	require.NoError(t, err)

	subject, _, err := r.RenderOTP(context.Background(), entity.OTPMail{Purpose: event.OTPPurposeEmailChange})
	require.NoError(t, err)
	assert.Equal(t, "Account Email Change OTP", subject)
}
