package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashers(t *testing.T) {
	tests := []struct {
		name   string
		hasher Hash
	}{
		{name: "bcrypt", hasher: NewBcrypt(bcrypt.MinCost, "pepper")},
		{name: "argon2id", hasher: NewArgon2idWithParams(Argon2idParams{MemoryKiB: 64, Iterations: 1, Parallelism: 1}, "pepper", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed, err := tt.hasher.Hash("Secret-pass1!")
			require.NoError(t, err)
			assert.NotContains(t, string(hashed), "Secret-pass1!")

			assert.True(t, tt.hasher.Verify(string(hashed), "Secret-pass1!"))
			assert.False(t, tt.hasher.Verify(string(hashed), "Secret-pass2!"))
			assert.False(t, tt.hasher.Verify("", "Secret-pass1!"))
		})
	}
}

func TestBcrypt_PepperMatters(t *testing.T) {
	hashed, err := NewBcrypt(bcrypt.MinCost, "pepper-a").Hash("Secret-pass1!")
	require.NoError(t, err)

	assert.False(t, NewBcrypt(bcrypt.MinCost, "pepper-b").Verify(string(hashed), "Secret-pass1!"))
}

func TestBcrypt_LongPasswordsDoNotCollide(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost, "pepper")
	prefix := strings.Repeat("a", 80)

	hashed, err := h.Hash(prefix + "1")
	require.NoError(t, err)

	assert.False(t, h.Verify(string(hashed), prefix+"2"))
}

func TestBcrypt_CostClamp(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(0, "").cost)
	assert.Equal(t, bcrypt.MinCost, NewBcrypt(1, "").cost)
	assert.Equal(t, bcrypt.MaxCost, NewBcrypt(99, "").cost)
}

func TestArgon2id_VerifyUsesStoredParams(t *testing.T) {
	old := NewArgon2idWithParams(Argon2idParams{MemoryKiB: 64, Iterations: 1, Parallelism: 1}, "pepper", 0)
	hashed, err := old.Hash("Secret-pass1!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(hashed), "$argon2id$v=19$m=64,t=1,p=1$"))

	current := NewArgon2idWithParams(Argon2idParams{MemoryKiB: 128, Iterations: 2, Parallelism: 1}, "pepper", 0)
	assert.True(t, current.Verify(string(hashed), "Secret-pass1!"))
}

func TestArgon2id_RejectsMalformed(t *testing.T) {
	h := NewArgon2idWithParams(Argon2idParams{MemoryKiB: 64, Iterations: 1, Parallelism: 1}, "", 0)

	for _, encoded := range []string{
		"plain",
		"$bcrypt$v=19$m=64,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=64,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=99999999,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=64,t=1,p=1$!!$a2V5",
	} {
		assert.False(t, h.Verify(encoded, "x"), encoded)
	}
}

func TestHMACSHA256(t *testing.T) {
	h := NewHMACSHA256("secret")

	first, err := h.Hash("otpflow_exchange_abc")
	require.NoError(t, err)
	second, err := h.Hash("otpflow_exchange_abc")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.True(t, h.Verify(string(first), "otpflow_exchange_abc"))
	assert.False(t, h.Verify(string(first), "otpflow_exchange_abd"))
	assert.False(t, NewHMACSHA256("other").Verify(string(first), "otpflow_exchange_abc"))
}
