package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shandysiswandi/otpflow/internal/exchange/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/pgtx"
	"github.com/shandysiswandi/otpflow/internal/pkg/valueobject"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type DB struct {
	conn pgtx.Querier
	ins  instrument.Instrumentation
}

func NewDB(conn pgtx.Querier, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("exchange.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// CreateToken stores tok. A hash collision is reported as goerror.ErrConflict
// without aborting the ambient transaction.
func (s *DB) CreateToken(ctx context.Context, tok entity.Token) (err error) {
	ctx, span := s.startSpan(ctx, "CreateToken")
	defer func() { s.endSpan(span, err) }()

	tag, err := pgtx.From(ctx, s.conn).Exec(ctx, `INSERT INTO exchange_tokens (id, token_hash, payload, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (token_hash) DO NOTHING`,
		tok.ID, tok.TokenHash, tok.Payload, tok.ExpiresAt, tok.CreatedAt)
	if err = s.mapError(err); err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		err = goerror.ErrConflict
	}

	return err
}

// TakeToken deletes the unexpired token and returns its payload in one
// statement, so concurrent redemptions cannot both succeed.
func (s *DB) TakeToken(ctx context.Context, tokenHash string, now time.Time) (_ valueobject.JSONMap, err error) {
	ctx, span := s.startSpan(ctx, "TakeToken")
	defer func() { s.endSpan(span, err) }()

	var payload valueobject.JSONMap
	err = pgtx.From(ctx, s.conn).QueryRow(ctx, `DELETE FROM exchange_tokens
		WHERE token_hash = $1 AND expires_at > $2
		RETURNING payload`, tokenHash, now).Scan(&payload)
	if err = s.mapError(err); err != nil {
		return nil, err
	}

	return payload, nil
}

// PeekToken returns the payload of an unexpired token without consuming it.
func (s *DB) PeekToken(ctx context.Context, tokenHash string, now time.Time) (_ valueobject.JSONMap, err error) {
	ctx, span := s.startSpan(ctx, "PeekToken")
	defer func() { s.endSpan(span, err) }()

	var payload valueobject.JSONMap
	err = pgtx.From(ctx, s.conn).QueryRow(ctx, `SELECT payload FROM exchange_tokens
		WHERE token_hash = $1 AND expires_at > $2`, tokenHash, now).Scan(&payload)
	if err = s.mapError(err); err != nil {
		return nil, err
	}

	return payload, nil
}

func (s *DB) DeleteExpired(ctx context.Context, now time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteExpired")
	defer func() { s.endSpan(span, err) }()

	tag, err := pgtx.From(ctx, s.conn).Exec(ctx, `DELETE FROM exchange_tokens WHERE expires_at <= $1`, now)
	if err = s.mapError(err); err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
