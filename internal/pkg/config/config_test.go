package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
otp:
  length: 6
  validity_period_seconds: 1800
  seed_key: "AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8="
app:
  server:
    cors: "http://a.test, http://b.test"
jwt:
  audiences:
    - otpflow-api
    - otpflow-admin
  ttl_minutes: 60
modules:
  notification:
    consumer_names: []
`

func TestViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.GetInt("otp.length"))
	assert.Equal(t, 30*time.Minute, cfg.GetSecond("otp.validity_period_seconds"))
	assert.Equal(t, time.Hour, cfg.GetMinute("jwt.ttl_minutes"))
	assert.Len(t, cfg.GetBinary("otp.seed_key"), 32)
	assert.NoError(t, cfg.Close())
}

func TestViper_GetArray(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	tests := []struct {
		key  string
		want []string
	}{
		{key: "app.server.cors", want: []string{"http://a.test", "http://b.test"}},
		{key: "jwt.audiences", want: []string{"otpflow-api", "otpflow-admin"}},
		{key: "modules.notification.consumer_names", want: []string{}},
		{key: "missing.key", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.GetArray(tt.key))
		})
	}
}

func TestViperFromBytes_EmptyType(t *testing.T) {
	_, err := NewViperFromBytes(" ", []byte(sampleYAML))
	assert.ErrorIs(t, err, ErrConfigTypeRequired)
}

func TestViperFromBytes_EnvOverride(t *testing.T) {
	t.Setenv("OTP_LENGTH", "8")
	t.Setenv("JWT_AUDIENCES", "a,b")

	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.GetInt("otp.length"))
	assert.Equal(t, []string{"a", "b"}, cfg.GetArray("jwt.audiences"))
	assert.Equal(t, 30*time.Minute, cfg.GetSecond("otp.validity_period_seconds"))
}

func TestViper_GetBinaryInvalid(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte("otp:\n  seed_key: \"%%%\"\n"))
	require.NoError(t, err)

	assert.Nil(t, cfg.GetBinary("otp.seed_key"))
	assert.Nil(t, cfg.GetBinary("otp.missing"))
}

func TestNewViper_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := NewViper(path)
	require.NoError(t, err)

	assert.Equal(t, 1800, cfg.GetInt("otp.validity_period_seconds"))
}

func TestNewViper_MissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
