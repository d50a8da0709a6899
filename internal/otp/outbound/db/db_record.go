package db

import (
	"context"
	"fmt"
	"time"

	"github.com/shandysiswandi/otpflow/internal/otp/entity"
)

const recordColumns = `id, secret_key, last_verified_counter, validity_period, code_length,
	COALESCE(requestor_ip, ''), COALESCE(extra_data, '{}'::jsonb), created_at, updated_at`

// UpsertRecord stores rec as the only live record of its subject, replacing
// any previous one together with its seed and verified counter.
func (s *DB) UpsertRecord(ctx context.Context, rec entity.Record) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertRecord")
	defer func() { s.endSpan(span, err) }()

	tbl, key, err := tableFor(rec.Subject)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %[1]s (
		id, %[2]s, secret_key, last_verified_counter, validity_period, code_length,
		requestor_ip, extra_data, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10)
	ON CONFLICT (%[2]s) DO UPDATE SET
		id = EXCLUDED.id,
		secret_key = EXCLUDED.secret_key,
		last_verified_counter = EXCLUDED.last_verified_counter,
		validity_period = EXCLUDED.validity_period,
		code_length = EXCLUDED.code_length,
		requestor_ip = EXCLUDED.requestor_ip,
		extra_data = EXCLUDED.extra_data,
		created_at = EXCLUDED.created_at,
		updated_at = EXCLUDED.updated_at`, tbl.name, tbl.keyColumn)

	_, err = s.querier(ctx).Exec(ctx, query,
		rec.ID,
		key,
		rec.SecretKey,
		rec.LastVerifiedCounter,
		int32(rec.ValidityPeriod/time.Second),
		int16(rec.CodeLength),
		rec.RequestorIP,
		rec.ExtraData,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	err = s.mapError(err)
	return err
}

// GetRecord returns the live record of subject or goerror.ErrNotFound.
func (s *DB) GetRecord(ctx context.Context, subject entity.Subject) (_ *entity.Record, err error) {
	ctx, span := s.startSpan(ctx, "GetRecord")
	defer func() { s.endSpan(span, err) }()

	tbl, key, err := tableFor(subject)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, recordColumns, tbl.name, tbl.keyColumn)

	var (
		rec        = entity.Record{Subject: subject}
		validity   int32
		codeLength int16
	)
	err = s.querier(ctx).QueryRow(ctx, query, key).Scan(
		&rec.ID,
		&rec.SecretKey,
		&rec.LastVerifiedCounter,
		&validity,
		&codeLength,
		&rec.RequestorIP,
		&rec.ExtraData,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err = s.mapError(err); err != nil {
		return nil, err
	}

	rec.ValidityPeriod = time.Duration(validity) * time.Second
	rec.CodeLength = int(codeLength)

	return &rec, nil
}

// AdvanceCounter moves the verified counter of record id from `from` to `to`.
// It reports false when another verifier changed the counter or replaced the record first.
func (s *DB) AdvanceCounter(ctx context.Context, subject entity.Subject, id string, from, to int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "AdvanceCounter")
	defer func() { s.endSpan(span, err) }()

	tbl, _, err := tableFor(subject)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`UPDATE %s SET last_verified_counter = $3, updated_at = NOW()
		WHERE id = $1 AND last_verified_counter = $2`, tbl.name)

	tag, err := s.querier(ctx).Exec(ctx, query, id, from, to)
	if err = s.mapError(err); err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// DeleteRecordAtCounter removes record id if its verified counter is still `from`.
func (s *DB) DeleteRecordAtCounter(ctx context.Context, subject entity.Subject, id string, from int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "DeleteRecordAtCounter")
	defer func() { s.endSpan(span, err) }()

	tbl, _, err := tableFor(subject)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND last_verified_counter = $2`, tbl.name)

	tag, err := s.querier(ctx).Exec(ctx, query, id, from)
	if err = s.mapError(err); err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// DeleteExpired removes records of both subject kinds whose validity ended before now.
func (s *DB) DeleteExpired(ctx context.Context, now time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteExpired")
	defer func() { s.endSpan(span, err) }()

	var total int64
	for _, tbl := range []table{identifierTable, accountTable} {
		query := fmt.Sprintf(`DELETE FROM %s
			WHERE created_at + validity_period * INTERVAL '1 second' < $1`, tbl.name)

		tag, execErr := s.querier(ctx).Exec(ctx, query, now)
		if err = s.mapError(execErr); err != nil {
			return total, err
		}
		total += tag.RowsAffected()
	}

	return total, nil
}
