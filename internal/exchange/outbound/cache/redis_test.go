package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/otpflow/internal/exchange/entity"
	"github.com/shandysiswandi/otpflow/internal/exchange/outbound/cache"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/testkit"
	"github.com/shandysiswandi/otpflow/internal/pkg/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_Tokens(t *testing.T) {
	client := testkit.Redis(t)
	store := cache.NewRedis(client, instrument.NewNoop())
	ctx := context.Background()
	now := time.Now()

	tok := entity.Token{
		TokenHash: "hash-1",
		Payload:   valueobject.JSONMap{"email": "a@example.com"},
		ExpiresAt: now.Add(time.Minute),
		CreatedAt: now,
	}
	require.NoError(t, store.CreateToken(ctx, tok))
	assert.ErrorIs(t, store.CreateToken(ctx, tok), goerror.ErrConflict)

	got, err := store.PeekToken(ctx, "hash-1", now)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got["email"])

	got, err = store.TakeToken(ctx, "hash-1", now)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got["email"])

	_, err = store.TakeToken(ctx, "hash-1", now)
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	bad := tok
	bad.ExpiresAt = now
	assert.ErrorIs(t, store.CreateToken(ctx, bad), entity.ErrInvalidTTL)
}

func TestRedis_TokenExpires(t *testing.T) {
	client := testkit.Redis(t)
	store := cache.NewRedis(client, instrument.NewNoop())
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.CreateToken(ctx, entity.Token{
		TokenHash: "short",
		Payload:   valueobject.JSONMap{"k": "v"},
		ExpiresAt: now.Add(200 * time.Millisecond),
		CreatedAt: now,
	}))

	assert.Eventually(t, func() bool {
		_, err := store.PeekToken(ctx, "short", time.Now())
		return errors.Is(err, goerror.ErrNotFound)
	}, 3*time.Second, 50*time.Millisecond)
}
