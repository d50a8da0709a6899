package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shandysiswandi/otpflow/internal/account/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
)

const accountColumns = `id, email, name, password, is_active, created_at, updated_at`

func scanAccount(row interface{ Scan(dest ...any) error }) (*entity.Account, error) {
	var acc entity.Account
	if err := row.Scan(
		&acc.ID,
		&acc.Email,
		&acc.Name,
		&acc.Password,
		&acc.IsActive,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &acc, nil
}

func (s *DB) GetAccountByEmail(ctx context.Context, email string) (_ *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountByEmail")
	defer func() { s.endSpan(span, err) }()

	acc, err := scanAccount(s.querier(ctx).QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email))
	if err = s.mapError(err); err != nil {
		return nil, err
	}

	return acc, nil
}

func (s *DB) GetAccountByID(ctx context.Context, id int64) (_ *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountByID")
	defer func() { s.endSpan(span, err) }()

	acc, err := scanAccount(s.querier(ctx).QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err = s.mapError(err); err != nil {
		return nil, err
	}

	return acc, nil
}

func (s *DB) CreateAccount(ctx context.Context, acc entity.Account) (err error) {
	ctx, span := s.startSpan(ctx, "CreateAccount")
	defer func() { s.endSpan(span, err) }()

	_, err = s.querier(ctx).Exec(ctx, `INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		acc.ID, acc.Email, acc.Name, acc.Password, acc.IsActive, acc.CreatedAt, acc.UpdatedAt)
	err = s.mapError(err)
	return err
}

func (s *DB) UpdateAccountName(ctx context.Context, id int64, name string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateAccountName")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.querier(ctx).Exec(ctx,
		`UPDATE accounts SET name = $2, updated_at = NOW() WHERE id = $1`, id, name)
	err = s.affectedOne(tag, err)
	return err
}

func (s *DB) UpdateAccountEmail(ctx context.Context, id int64, email string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateAccountEmail")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.querier(ctx).Exec(ctx,
		`UPDATE accounts SET email = $2, updated_at = NOW() WHERE id = $1`, id, email)
	err = s.affectedOne(tag, err)
	return err
}

func (s *DB) UpdateAccountPassword(ctx context.Context, id int64, hash string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateAccountPassword")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.querier(ctx).Exec(ctx,
		`UPDATE accounts SET password = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	err = s.affectedOne(tag, err)
	return err
}

// DeleteAccount removes the account; sessions and account OTP records cascade.
func (s *DB) DeleteAccount(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteAccount")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.querier(ctx).Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	err = s.affectedOne(tag, err)
	return err
}

func (s *DB) affectedOne(tag pgconn.CommandTag, err error) error {
	if err = s.mapError(err); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}
