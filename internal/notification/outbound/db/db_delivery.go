package db

import (
	"context"

	"github.com/shandysiswandi/otpflow/internal/notification/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/shared/event"
)

func (s *DB) CreateDelivery(ctx context.Context, d entity.Delivery) (err error) {
	ctx, span := s.startSpan(ctx, "CreateDelivery")
	defer func() { s.endSpan(span, err) }()

	_, err = s.querier(ctx).Exec(ctx, `INSERT INTO notification_deliveries
		(id, purpose, channel, recipient, status, attempts, error_message, correlation_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10)`,
		d.ID, string(d.Purpose), int16(d.Channel), d.Recipient, int16(d.Status), int32(d.Attempts),
		d.ErrorMessage, d.CorrelationID, d.CreatedAt, d.UpdatedAt)
	err = s.mapError(err)
	return err
}

func (s *DB) UpdateDeliveryStatus(ctx context.Context, u entity.UpdateDelivery) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateDeliveryStatus")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.querier(ctx).Exec(ctx, `UPDATE notification_deliveries
		SET status = $2, attempts = $3, error_message = NULLIF($4, ''), updated_at = $5
		WHERE id = $1`,
		u.ID, int16(u.Status), int32(u.Attempts), u.ErrorMessage, u.UpdatedAt)
	if err = s.mapError(err); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
	}

	return err
}

func (s *DB) GetDelivery(ctx context.Context, id int64) (_ *entity.Delivery, err error) {
	ctx, span := s.startSpan(ctx, "GetDelivery")
	defer func() { s.endSpan(span, err) }()

	var (
		d        entity.Delivery
		purpose  string
		channel  int16
		status   int16
		attempts int32
	)
	err = s.querier(ctx).QueryRow(ctx, `SELECT id, purpose, channel, recipient, status, attempts,
		COALESCE(error_message, ''), COALESCE(correlation_id, ''), created_at, updated_at
		FROM notification_deliveries WHERE id = $1`, id).Scan(
		&d.ID,
		&purpose,
		&channel,
		&d.Recipient,
		&status,
		&attempts,
		&d.ErrorMessage,
		&d.CorrelationID,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err = s.mapError(err); err != nil {
		return nil, err
	}

	d.Purpose = event.OTPPurpose(purpose)
	d.Channel = entity.Channel(channel)
	d.Status = entity.DeliveryStatus(status)
	d.Attempts = int(attempts)

	return &d, nil
}
