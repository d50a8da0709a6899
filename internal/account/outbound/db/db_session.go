package db

import (
	"context"

	"github.com/shandysiswandi/otpflow/internal/account/entity"
)

func (s *DB) CreateSession(ctx context.Context, sess entity.Session) (err error) {
	ctx, span := s.startSpan(ctx, "CreateSession")
	defer func() { s.endSpan(span, err) }()

	_, err = s.querier(ctx).Exec(ctx, `INSERT INTO account_sessions (id, account_id, ip_address, user_agent, expires_at, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)`,
		sess.ID, sess.AccountID, sess.IPAddress, sess.UserAgent, sess.ExpiresAt, sess.CreatedAt)
	err = s.mapError(err)
	return err
}

func (s *DB) GetSession(ctx context.Context, id string, accountID int64) (_ *entity.Session, err error) {
	ctx, span := s.startSpan(ctx, "GetSession")
	defer func() { s.endSpan(span, err) }()

	var sess entity.Session
	err = s.querier(ctx).QueryRow(ctx, `SELECT id, account_id, COALESCE(ip_address, ''), COALESCE(user_agent, ''), expires_at, created_at
		FROM account_sessions WHERE id = $1 AND account_id = $2`, id, accountID).Scan(
		&sess.ID,
		&sess.AccountID,
		&sess.IPAddress,
		&sess.UserAgent,
		&sess.ExpiresAt,
		&sess.CreatedAt,
	)
	if err = s.mapError(err); err != nil {
		return nil, err
	}

	return &sess, nil
}

// DeleteSessionsByAccount revokes every session of the account.
func (s *DB) DeleteSessionsByAccount(ctx context.Context, accountID int64) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteSessionsByAccount")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.querier(ctx).Exec(ctx, `DELETE FROM account_sessions WHERE account_id = $1`, accountID)
	if err = s.mapError(err); err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
