// Package notification mails issued codes to their recipients.
package notification

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/otpflow/internal/notification/inbound"
	"github.com/shandysiswandi/otpflow/internal/notification/outbound/db"
	"github.com/shandysiswandi/otpflow/internal/notification/outbound/email"
	"github.com/shandysiswandi/otpflow/internal/notification/outbound/render"
	"github.com/shandysiswandi/otpflow/internal/notification/usecase"
	"github.com/shandysiswandi/otpflow/internal/pkg/clock"
	"github.com/shandysiswandi/otpflow/internal/pkg/config"
	"github.com/shandysiswandi/otpflow/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/mail"
	"github.com/shandysiswandi/otpflow/internal/pkg/messaging"
	"github.com/shandysiswandi/otpflow/internal/pkg/storage"
	"github.com/shandysiswandi/otpflow/internal/pkg/uid"
	"github.com/shandysiswandi/otpflow/internal/pkg/validator"
)

type Dependency struct {
	Ctx        context.Context
	DBConn     *pgxpool.Pool              `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Storage    storage.Storage
	Mail       mail.Mail                  `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	store := dep.Storage
	if store == nil {
		store = storage.Noop{}
	}

	renderer, err := render.New(render.Config{
		Bucket: dep.Config.GetString("storage.templates.bucket"),
		Prefix: dep.Config.GetString("storage.templates.prefix"),
	}, store, dep.Instrument)
	if err != nil {
		return err
	}

	uc := usecase.NewNotification(usecase.Dependency{
		RepoDB: db.NewDB(dep.DBConn, dep.Instrument),
		RepoMail: email.New(dep.Mail, email.Config{
			MaxAttempts: dep.Config.GetInt("mail.max_attempts"),
			BaseBackoff: dep.Config.GetSecond("mail.backoff_seconds"),
		}, dep.Instrument),
		Renderer:   renderer,
		UID:        dep.UID,
		Clock:      dep.Clock,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	})

	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return nil
}
