package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpflow/internal/notification/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/mail"
	"github.com/shandysiswandi/otpflow/internal/shared/event"
)

type SendOTPInput struct {
	Purpose         event.OTPPurpose `validate:"required"`
	Email           string           `validate:"required,email"`
	Name            string
	Code            string `validate:"required,otpcode"`
	ValidForMinutes int64  `validate:"gte=0"`
}

// SendOTP mails a code and records the delivery. Malformed requests are
// dropped; only a failure to record the delivery asks for redelivery.
func (s *Usecase) SendOTP(ctx context.Context, in SendOTPInput) error {
	ctx, span := s.startSpan(ctx, "SendOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "validation failed", "purpose", in.Purpose, "error", err)
		return nil
	}
	if !in.Purpose.Valid() {
		slog.ErrorContext(ctx, "unknown otp purpose", "purpose", in.Purpose)
		return nil
	}

	subject, body, err := s.renderer.RenderOTP(ctx, entity.OTPMail{
		Purpose:         in.Purpose,
		Name:            in.Name,
		Code:            in.Code,
		ValidForMinutes: in.ValidForMinutes,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to render otp mail", "purpose", in.Purpose, "error", err)
		return nil
	}

	now := s.clock.Now()
	d := entity.Delivery{
		ID:            s.uid.Generate(),
		Purpose:       in.Purpose,
		Channel:       entity.ChannelEmail,
		Recipient:     in.Email,
		Status:        entity.DeliveryStatusQueued,
		CorrelationID: instrument.GetCorrelationID(ctx),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repoDB.CreateDelivery(ctx, d); err != nil {
		slog.ErrorContext(ctx, "failed to repo create delivery", "purpose", in.Purpose, "error", err)
		return goerror.NewServer(err)
	}

	attempts, mailErr := s.repoMail.Send(ctx, mail.Message{
		To:       []string{in.Email},
		Subject:  subject,
		HTMLBody: body,
	})

	up := entity.UpdateDelivery{
		ID:        d.ID,
		Status:    entity.DeliveryStatusSent,
		Attempts:  attempts,
		UpdatedAt: s.clock.Now(),
	}
	if mailErr != nil {
		up.Status = entity.DeliveryStatusFailed
		up.ErrorMessage = mailErr.Error()
	}
	if err := s.repoDB.UpdateDeliveryStatus(ctx, up); err != nil {
		slog.ErrorContext(ctx, "failed to repo update delivery status", "delivery_id", d.ID, "status", up.Status.String(), "error", err)
	}

	if mailErr != nil {
		slog.ErrorContext(ctx, "failed to send otp mail", "delivery_id", d.ID, "purpose", in.Purpose, "attempts", attempts, "error", mailErr)
		return nil
	}

	slog.InfoContext(ctx, "otp mail sent", "delivery_id", d.ID, "purpose", in.Purpose, "attempts", attempts)
	return nil
}
