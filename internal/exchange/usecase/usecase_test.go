package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpflow/internal/exchange/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/clock"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/pkg/hash"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/uid"
	"github.com/shandysiswandi/otpflow/internal/pkg/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqSecret hands out fixed 64-hex ids, repeating the first one `repeat` times.
type seqSecret struct {
	mu     sync.Mutex
	repeat int
	n      int
}

func (g *seqSecret) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	if g.n <= g.repeat {
		return strings.Repeat("a", 64)
	}
	return strings.Repeat(string(rune('0'+g.n%10)), 64)
}

type fakeStore struct {
	mu        sync.Mutex
	tokens    map[string]entity.Token
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{tokens: map[string]entity.Token{}}
}

func (f *fakeStore) CreateToken(_ context.Context, tok entity.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.tokens[tok.TokenHash]; ok {
		return goerror.ErrConflict
	}
	f.tokens[tok.TokenHash] = tok
	return nil
}

func (f *fakeStore) TakeToken(_ context.Context, tokenHash string, now time.Time) (valueobject.JSONMap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, ok := f.tokens[tokenHash]
	if !ok || !tok.ExpiresAt.After(now) {
		return nil, goerror.ErrNotFound
	}
	delete(f.tokens, tokenHash)
	return tok.Payload, nil
}

func (f *fakeStore) PeekToken(_ context.Context, tokenHash string, now time.Time) (valueobject.JSONMap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, ok := f.tokens[tokenHash]
	if !ok || !tok.ExpiresAt.After(now) {
		return nil, goerror.ErrNotFound
	}
	return tok.Payload, nil
}

func (f *fakeStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, tok := range f.tokens {
		if !tok.ExpiresAt.After(now) {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}

type fixture struct {
	uc     *Usecase
	store  *fakeStore
	clock  *clock.Fixed
	secret *seqSecret
}

func newFixture(maxAttempts int) fixture {
	store := newFakeStore()
	clk := clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	secret := &seqSecret{}

	uc := New(Dependency{
		Config:     Config{TokenPrefix: "xt_", MaxAttempts: maxAttempts},
		Store:      store,
		HMAC:       hash.NewHMACSHA256("exchange-test"),
		Secret:     secret,
		UUID:       uid.NewUUID(),
		Clock:      clk,
		Instrument: instrument.NewNoop(),
	})

	return fixture{uc: uc, store: store, clock: clk, secret: secret}
}

func TestExchange_RoundTripOnce(t *testing.T) {
	// Arrange
	fx := newFixture(0)
	ctx := context.Background()
	payload := valueobject.JSONMap{"email": "a@example.com"}

	// Act
	token, err := fx.uc.ExchangeDataForToken(ctx, ExchangeDataInput{Payload: payload, ExpiresAfter: 30 * time.Minute})
	require.NoError(t, err)

	// Assert
	assert.True(t, strings.HasPrefix(token, "xt_"))
	assert.Len(t, token, len("xt_")+64)
	for hashed := range fx.store.tokens {
		assert.NotContains(t, hashed, token, "only the hash is stored")
	}

	got, err := fx.uc.ExchangeTokenForData(ctx, ExchangeTokenInput{Token: token, DeleteOnSuccess: true})
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	_, err = fx.uc.ExchangeTokenForData(ctx, ExchangeTokenInput{Token: token, DeleteOnSuccess: true})
	assert.ErrorIs(t, err, entity.ErrInvalidOrExpiredToken)
}

func TestExchange_PeekKeepsToken(t *testing.T) {
	fx := newFixture(0)
	ctx := context.Background()

	token, err := fx.uc.ExchangeDataForToken(ctx, ExchangeDataInput{Payload: valueobject.JSONMap{"k": "v"}, ExpiresAfter: time.Minute})
	require.NoError(t, err)

	for range 2 {
		got, err := fx.uc.ExchangeTokenForData(ctx, ExchangeTokenInput{Token: token})
		require.NoError(t, err)
		assert.Equal(t, "v", got["k"])
	}
}

func TestExchange_RejectsUniformly(t *testing.T) {
	fx := newFixture(0)
	ctx := context.Background()

	token, err := fx.uc.ExchangeDataForToken(ctx, ExchangeDataInput{Payload: valueobject.JSONMap{"email": "a@example.com"}, ExpiresAfter: time.Minute})
	require.NoError(t, err)

	corrupted := []byte(token)
	if corrupted[len(corrupted)-1] == '0' {
		corrupted[len(corrupted)-1] = '1'
	} else {
		corrupted[len(corrupted)-1] = '0'
	}

	tests := map[string]string{
		"corrupted":      string(corrupted),
		"unknown":        "xt_" + strings.Repeat("f", 64),
		"missing prefix": strings.TrimPrefix(token, "xt_"),
		"not hex":        "xt_" + strings.Repeat("z", 64),
		"empty":          "",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := fx.uc.ExchangeTokenForData(ctx, ExchangeTokenInput{Token: tok, DeleteOnSuccess: true})
			assert.ErrorIs(t, err, entity.ErrInvalidOrExpiredToken)
		})
	}

	t.Run("expired", func(t *testing.T) {
		fx.clock.Advance(time.Minute)
		_, err := fx.uc.ExchangeTokenForData(ctx, ExchangeTokenInput{Token: token, DeleteOnSuccess: true})
		assert.ErrorIs(t, err, entity.ErrInvalidOrExpiredToken)
	})
}

func TestExchange_InvalidInput(t *testing.T) {
	fx := newFixture(0)
	ctx := context.Background()

	_, err := fx.uc.ExchangeDataForToken(ctx, ExchangeDataInput{ExpiresAfter: time.Minute})
	assert.ErrorIs(t, err, entity.ErrInvalidPayload)

	_, err = fx.uc.ExchangeDataForToken(ctx, ExchangeDataInput{Payload: valueobject.JSONMap{"k": "v"}})
	assert.ErrorIs(t, err, entity.ErrInvalidTTL)
}

func TestExchange_RetriesCollisions(t *testing.T) {
	fx := newFixture(3)
	ctx := context.Background()
	payload := valueobject.JSONMap{"k": "v"}

	fx.secret.repeat = 1
	first, err := fx.uc.ExchangeDataForToken(ctx, ExchangeDataInput{Payload: payload, ExpiresAfter: time.Minute})
	require.NoError(t, err)

	// The next two ids collide with the first token; the third is fresh.
	fx.secret.n, fx.secret.repeat = 0, 2
	second, err := fx.uc.ExchangeDataForToken(ctx, ExchangeDataInput{Payload: payload, ExpiresAfter: time.Minute})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, 3, fx.secret.n)
}

func TestExchange_GivesUpAfterMaxAttempts(t *testing.T) {
	fx := newFixture(2)
	ctx := context.Background()
	payload := valueobject.JSONMap{"k": "v"}

	fx.secret.repeat = 100
	_, err := fx.uc.ExchangeDataForToken(ctx, ExchangeDataInput{Payload: payload, ExpiresAfter: time.Minute})
	require.NoError(t, err)

	_, err = fx.uc.ExchangeDataForToken(ctx, ExchangeDataInput{Payload: payload, ExpiresAfter: time.Minute})
	assert.ErrorIs(t, err, goerror.ErrConflict)
	assert.Equal(t, 3, fx.secret.n)
}

func TestExchange_StorageError(t *testing.T) {
	fx := newFixture(0)
	errDown := errors.New("down")
	fx.store.createErr = errDown

	_, err := fx.uc.ExchangeDataForToken(context.Background(), ExchangeDataInput{Payload: valueobject.JSONMap{"k": "v"}, ExpiresAfter: time.Minute})
	assert.ErrorIs(t, err, errDown)

	var gErr *goerror.Error
	require.ErrorAs(t, err, &gErr)
	assert.Equal(t, goerror.CodeInternal, gErr.Code())
}

func TestExchange_PurgeExpired(t *testing.T) {
	fx := newFixture(0)
	ctx := context.Background()

	_, err := fx.uc.ExchangeDataForToken(ctx, ExchangeDataInput{Payload: valueobject.JSONMap{"k": "v"}, ExpiresAfter: time.Minute})
	require.NoError(t, err)

	fx.clock.Advance(time.Minute)
	n, err := fx.uc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
