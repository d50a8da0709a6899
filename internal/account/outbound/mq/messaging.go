package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/otpflow/internal/account/usecase"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/messaging"
	"github.com/shandysiswandi/otpflow/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishOTPRequested(ctx context.Context, msg usecase.OTPRequestedEvent) error {
	ctx, span := m.ins.Tracer("account.outbound.mq").Start(ctx, "PublishOTPRequested")
	defer span.End()

	body, err := json.Marshal(event.OTPRequestedMessage{
		Purpose:         msg.Purpose,
		Email:           msg.Email,
		Name:            msg.Name,
		AccountID:       msg.AccountID,
		Code:            msg.Code,
		ValidForMinutes: msg.ValidForMinutes,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if err := m.client.Publish(ctx, event.OTPRequestedDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(msg.Email),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
