package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/pgtx"
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

// mapError turns no rows into goerror.ErrNotFound and a unique violation into
// goerror.ErrConflict.
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

func (s *DB) querier(ctx context.Context) pgtx.Querier {
	return pgtx.From(ctx, s.conn)
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("account.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
