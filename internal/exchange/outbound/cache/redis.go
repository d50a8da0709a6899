// Package cache keeps exchange tokens in Redis. Keys expire on their own, so
// tokens here never take part in a database transaction.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpflow/internal/exchange/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/valueobject"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyPrefix = "exchange:token:"

type Redis struct {
	client redis.Cmdable
	ins    instrument.Instrumentation
}

func NewRedis(client redis.Cmdable, ins instrument.Instrumentation) *Redis {
	return &Redis{client: client, ins: ins}
}

func (s *Redis) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("exchange.outbound.cache").Start(ctx, name)
}

func (s *Redis) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Redis) CreateToken(ctx context.Context, tok entity.Token) (err error) {
	ctx, span := s.startSpan(ctx, "CreateToken")
	defer func() { s.endSpan(span, err) }()

	ttl := tok.ExpiresAt.Sub(tok.CreatedAt)
	if ttl <= 0 {
		err = entity.ErrInvalidTTL
		return err
	}

	raw, err := json.Marshal(tok.Payload)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, keyPrefix+tok.TokenHash, raw, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		err = goerror.ErrConflict
	}

	return err
}

// TakeToken reads and deletes atomically with GETDEL.
func (s *Redis) TakeToken(ctx context.Context, tokenHash string, _ time.Time) (_ valueobject.JSONMap, err error) {
	ctx, span := s.startSpan(ctx, "TakeToken")
	defer func() { s.endSpan(span, err) }()

	raw, err := s.client.GetDel(ctx, keyPrefix+tokenHash).Bytes()
	return s.decode(raw, err)
}

func (s *Redis) PeekToken(ctx context.Context, tokenHash string, _ time.Time) (_ valueobject.JSONMap, err error) {
	ctx, span := s.startSpan(ctx, "PeekToken")
	defer func() { s.endSpan(span, err) }()

	raw, err := s.client.Get(ctx, keyPrefix+tokenHash).Bytes()
	return s.decode(raw, err)
}

// DeleteExpired is a no-op; Redis evicts keys at their TTL.
func (s *Redis) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (s *Redis) decode(raw []byte, err error) (valueobject.JSONMap, error) {
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var payload valueobject.JSONMap
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}

	return payload, nil
}
