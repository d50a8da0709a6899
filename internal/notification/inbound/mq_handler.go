package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/otpflow/internal/notification/usecase"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/messaging"
	"github.com/shandysiswandi/otpflow/internal/pkg/uid"
	"github.com/shandysiswandi/otpflow/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	if cID, ok := messaging.HeaderValue(headers, keyOfCorrelationID); ok && cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) OTPRequestedNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "OTPRequestedNotification")
	defer span.End()

	// the body carries the code, so only its metadata is logged.
	var payload event.OTPRequestedMessage
	if err := json.Unmarshal(msg.Body(), &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp requested notification", "msg_size", len(msg.Body()), "error", err)
		return nil
	}

	slog.InfoContext(ctx, "consume: otp requested notification", "purpose", payload.Purpose, "account_id", payload.AccountID)

	if err := h.uc.SendOTP(ctx, usecase.SendOTPInput{
		Purpose:         payload.Purpose,
		Email:           payload.Email,
		Name:            payload.Name,
		Code:            payload.Code,
		ValidForMinutes: payload.ValidForMinutes,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp requested", "purpose", payload.Purpose, "error", err)
		return err
	}

	return nil
}
