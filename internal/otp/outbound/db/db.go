package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shandysiswandi/otpflow/internal/otp/entity"
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

// NewDB builds the record store on conn. Every call joins the transaction
// carried by its context when there is one.
func NewDB(conn pgtx.Querier, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

// table names the storage of one subject variant.
type table struct {
	name      string
	keyColumn string
}

var (
	identifierTable = table{name: "otp_identifier_records", keyColumn: "identifier"}
	accountTable    = table{name: "otp_account_records", keyColumn: "account_id"}
)

func tableFor(subject entity.Subject) (table, any, error) {
	switch subject.Kind() {
	case entity.SubjectKindIdentifier:
		return identifierTable, subject.Identifier(), nil
	case entity.SubjectKindAccount:
		return accountTable, subject.AccountID(), nil
	default:
		return table{}, nil, entity.ErrInvalidSubject
	}
}

// - 23505 unique violation → goerror.ErrConflict
// - 23503 foreign_key_violation on otp_account_records → goerror.ErrNotFound (account is gone)
func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return goerror.ErrConflict
		case "23503":
			return goerror.ErrNotFound
		}
	}

	return err
}

func (s *DB) querier(ctx context.Context) pgtx.Querier {
	return pgtx.From(ctx, s.conn)
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
