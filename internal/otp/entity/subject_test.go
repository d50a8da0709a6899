package entity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierSubject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "trimmed", in: "  a@example.com \n", want: "a@example.com"},
		{name: "empty", in: "", wantErr: ErrInvalidSubject},
		{name: "blank", in: "   ", wantErr: ErrInvalidSubject},
		{name: "max length", in: strings.Repeat("x", MaxIdentifierLength), want: strings.Repeat("x", MaxIdentifierLength)},
		{name: "too long", in: strings.Repeat("x", MaxIdentifierLength+1), wantErr: ErrInvalidSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IdentifierSubject(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, got.IsZero())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, SubjectKindIdentifier, got.Kind())
			assert.Equal(t, tt.want, got.Identifier())
			assert.Zero(t, got.AccountID())
		})
	}
}

func TestAccountSubject(t *testing.T) {
	got, err := AccountSubject(42)
	require.NoError(t, err)
	assert.Equal(t, SubjectKindAccount, got.Kind())
	assert.Equal(t, int64(42), got.AccountID())
	assert.Equal(t, "account:42", got.String())

	for _, id := range []int64{0, -1} {
		_, err := AccountSubject(id)
		assert.ErrorIs(t, err, ErrInvalidSubject)
	}
}

func TestSubject_Zero(t *testing.T) {
	var s Subject
	assert.True(t, s.IsZero())
	assert.Equal(t, "unknown", s.Kind().String())
}

func TestRecord_IsExpired(t *testing.T) {
	created := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	rec := Record{CreatedAt: created, ValidityPeriod: 30 * time.Minute}

	assert.Equal(t, created.Add(30*time.Minute), rec.ExpiresAt())
	assert.False(t, rec.IsExpired(created.Add(30*time.Minute)))
	assert.True(t, rec.IsExpired(created.Add(30*time.Minute+time.Second)))
}
