package usecase

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpflow/internal/exchange/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/pkg/valueobject"
)

type ExchangeDataInput struct {
	Payload      valueobject.JSONMap
	ExpiresAfter time.Duration
}

// ExchangeDataForToken stores Payload and returns the bearer secret that
// redeems it until ExpiresAfter elapses.
func (s *Usecase) ExchangeDataForToken(ctx context.Context, in ExchangeDataInput) (string, error) {
	ctx, span := s.startSpan(ctx, "ExchangeDataForToken")
	defer span.End()

	if len(in.Payload) == 0 {
		return "", entity.ErrInvalidPayload
	}
	if in.ExpiresAfter <= 0 {
		return "", entity.ErrInvalidTTL
	}

	now := s.clock.Now().UTC().Truncate(time.Microsecond)
	backoff := retry.WithMaxRetries(uint64(s.cfg.MaxAttempts-1), retry.NewConstant(time.Millisecond))

	var secret string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		secret = s.cfg.TokenPrefix + s.secret.Generate()

		tokenHash, err := s.hmac.Hash(secret)
		if err != nil {
			return err
		}

		err = s.store.CreateToken(ctx, entity.Token{
			ID:        s.uuid.Generate(),
			TokenHash: string(tokenHash),
			Payload:   in.Payload,
			ExpiresAt: now.Add(in.ExpiresAfter),
			CreatedAt: now,
		})
		if errors.Is(err, goerror.ErrConflict) {
			slog.WarnContext(ctx, "exchange token collision, regenerating")
			return retry.RetryableError(err)
		}

		return err
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create exchange token", "error", err)
		return "", goerror.NewServer(err)
	}

	return secret, nil
}

type ExchangeTokenInput struct {
	Token           string
	DeleteOnSuccess bool
}

// ExchangeTokenForData returns the payload stored behind Token. Unknown,
// expired, consumed and malformed tokens all yield entity.ErrInvalidOrExpiredToken.
func (s *Usecase) ExchangeTokenForData(ctx context.Context, in ExchangeTokenInput) (valueobject.JSONMap, error) {
	ctx, span := s.startSpan(ctx, "ExchangeTokenForData")
	defer span.End()

	if !s.wellFormed(in.Token) {
		return nil, entity.ErrInvalidOrExpiredToken
	}

	tokenHash, err := s.hmac.Hash(in.Token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash exchange token", "error", err)
		return nil, goerror.NewServer(err)
	}

	var payload valueobject.JSONMap
	now := s.clock.Now()
	if in.DeleteOnSuccess {
		payload, err = s.store.TakeToken(ctx, string(tokenHash), now)
	} else {
		payload, err = s.store.PeekToken(ctx, string(tokenHash), now)
	}
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, entity.ErrInvalidOrExpiredToken
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo redeem exchange token", "error", err)
		return nil, goerror.NewServer(err)
	}

	return payload, nil
}

// PurgeExpired removes tokens past their expiry.
func (s *Usecase) PurgeExpired(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "PurgeExpired")
	defer span.End()

	n, err := s.store.DeleteExpired(ctx, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete expired exchange tokens", "error", err)
		return 0, goerror.NewServer(err)
	}

	if n > 0 {
		slog.InfoContext(ctx, "purged expired exchange tokens", "count", n)
	}

	return n, nil
}

func (s *Usecase) wellFormed(token string) bool {
	id, ok := strings.CutPrefix(token, s.cfg.TokenPrefix)
	if !ok || len(id) != secretIDLength {
		return false
	}

	_, err := hex.DecodeString(id)
	return err == nil
}
