package seal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) []byte { return bytes.Repeat([]byte{b}, keyLen) }

func newSealer(t *testing.T, active byte, keys map[byte][]byte) *AESGCM {
	t.Helper()

	s, err := NewAESGCM(active, keys)
	require.NoError(t, err)
	return s
}

func TestAESGCM_RoundTrip(t *testing.T) {
	s := newSealer(t, 1, map[byte][]byte{1: key(7)})
	scope := Scope{Subject: "0192f1c2-0000-7000-8000-000000000001", Purpose: PurposeOTPSeed}

	sealed, err := s.Seal([]byte("JBSWY3DPEHPK3PXP"), scope)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "JBSWY3DPEHPK3PXP")
	assert.Equal(t, []byte{formatVersion, 1}, sealed[:2])

	plain, err := s.Open(sealed, scope)
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", string(plain))

	again, err := s.Seal([]byte("JBSWY3DPEHPK3PXP"), scope)
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again)
}

func TestAESGCM_ScopeMismatch(t *testing.T) {
	s := newSealer(t, 1, map[byte][]byte{1: key(7)})

	sealed, err := s.Seal([]byte("seed"), Scope{Subject: "a", Purpose: PurposeOTPSeed})
	require.NoError(t, err)

	_, err = s.Open(sealed, Scope{Subject: "b", Purpose: PurposeOTPSeed})
	assert.ErrorIs(t, err, ErrOpenFailed)
}

func TestAESGCM_Rotation(t *testing.T) {
	scope := Scope{Subject: "a", Purpose: PurposeOTPSeed}
	old := newSealer(t, 1, map[byte][]byte{1: key(1)})
	sealed, err := old.Seal([]byte("seed"), scope)
	require.NoError(t, err)

	rotated := newSealer(t, 2, map[byte][]byte{1: key(1), 2: key(2)})
	plain, err := rotated.Open(sealed, scope)
	require.NoError(t, err)
	assert.Equal(t, "seed", string(plain))

	fresh, err := rotated.Seal([]byte("seed"), scope)
	require.NoError(t, err)
	assert.Equal(t, byte(2), fresh[1])

	_, err = old.Open(fresh, scope)
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestAESGCM_Errors(t *testing.T) {
	s := newSealer(t, 1, map[byte][]byte{1: key(7)})
	scope := Scope{Subject: "a", Purpose: PurposeOTPSeed}

	_, err := s.Seal(nil, scope)
	assert.ErrorIs(t, err, ErrEmptyPlaintext)

	_, err = s.Open([]byte{formatVersion, 1, 0, 0}, scope)
	assert.ErrorIs(t, err, ErrMalformed)

	sealed, err := s.Seal([]byte("seed"), scope)
	require.NoError(t, err)
	sealed[0] = 1
	_, err = s.Open(sealed, scope)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = NewAESGCM(1, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewAESGCM(2, map[byte][]byte{1: key(7)})
	assert.ErrorIs(t, err, ErrUnknownKey)

	_, err = NewAESGCM(1, map[byte][]byte{1: []byte("short")})
	assert.ErrorIs(t, err, ErrKeyLength)
}

func TestParseKeyID(t *testing.T) {
	id, err := ParseKeyID(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, byte(3), id)

	_, err = ParseKeyID("300")
	assert.Error(t, err)
}
