package uid

import (
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecret(t *testing.T) {
	g := NewSecret(0)

	first := g.Generate()
	second := g.Generate()

	assert.Len(t, first, 2*DefaultSecretBytes)
	assert.NotEqual(t, first, second)
	_, err := hex.DecodeString(first)
	assert.NoError(t, err)

	assert.Len(t, NewSecret(8).Generate(), 16)
}

func TestUUID_Version7(t *testing.T) {
	id, err := uuid.Parse(NewUUID().Generate())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestSnowflake(t *testing.T) {
	g, err := NewSnowflakeWithNode(1)
	require.NoError(t, err)

	a, b := g.Generate(), g.Generate()
	assert.Positive(t, a)
	assert.Greater(t, b, a)

	_, err = NewSnowflakeWithNode(-1)
	assert.Error(t, err)
}
