package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/otpflow/internal/notification/usecase"
	"github.com/shandysiswandi/otpflow/internal/pkg/config"
	"github.com/shandysiswandi/otpflow/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/messaging"
	"github.com/shandysiswandi/otpflow/internal/pkg/uid"
	"github.com/shandysiswandi/otpflow/internal/shared/event"
)

type uc interface {
	SendOTP(ctx context.Context, in usecase.SendOTPInput) error
}

// RegisterMQConsumer starts the consumers listed in
// modules.notification.consumer_names, or all of them when the list is empty.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Consumer,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notification.consumer_names")

	consumers := []struct {
		name    string
		topic   string // destination where publisher sent message
		handler messaging.Handler
	}{
		{
			name:    event.OTPRequestedConsumerNotification,
			topic:   event.OTPRequestedDestination,
			handler: mqHandler.OTPRequestedNotification,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && !slices.Contains(enableConsumerNames, consumer.name) {
			continue
		}

		err := routine.Go(ctx, consumer.name, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
			return messenger.Consume(pCtx,
				consumer.topic,
				consumer.handler,
				messaging.WithConsumerName(consumer.name),
				messaging.WithAutoAck(true),
				messaging.WithConcurrency(10),
				messaging.WithMaxInFlight(10),
			)
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to start consumer", "consumer", consumer.name, "error", err)
		}
	}
}
