package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpflow/internal/account/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/shared/event"
)

type ChangeEmailInitiateInput struct {
	NewEmail string `validate:"required,email,max=200"`
	IP       string
}

// ChangeEmailInitiate mails a code to the new address. The code is bound to
// the caller's account, so it cannot complete a change for anyone else.
func (s *Usecase) ChangeEmailInitiate(ctx context.Context, in ChangeEmailInitiateInput) error {
	ctx, span := s.startSpan(ctx, "ChangeEmailInitiate")
	defer span.End()

	in.NewEmail = normalizeEmail(in.NewEmail)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	acc, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if err := s.allowOTPRequest(ctx, in.NewEmail); err != nil {
		return err
	}

	if err := s.ensureEmailAvailable(ctx, in.NewEmail); err != nil {
		return err
	}

	subject, err := emailChangeSubject(acc.ID, in.NewEmail)
	if err != nil {
		return goerror.NewInvalidInput(nil, "new_email", err.Error())
	}

	return s.issueOTP(ctx, subject, in.IP, OTPRequestedEvent{
		Purpose:   event.OTPPurposeEmailChange,
		Email:     in.NewEmail,
		Name:      acc.Name,
		AccountID: acc.ID,
	})
}

type ChangeEmailCompleteInput struct {
	Email string `validate:"required,email,max=200"`
	OTP   string `validate:"required,otpcode"`
}

func (s *Usecase) ChangeEmailComplete(ctx context.Context, in ChangeEmailCompleteInput) (*AccountOutput, error) {
	ctx, span := s.startSpan(ctx, "ChangeEmailComplete")
	defer span.End()

	in.Email = normalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	acc, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.allowOTPVerify(ctx, in.Email); err != nil {
		return nil, err
	}

	subject, err := emailChangeSubject(acc.ID, in.Email)
	if err != nil {
		return nil, goerror.NewInvalidInput(nil, "email", err.Error())
	}

	if err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.verifyOTP(ctx, subject, in.OTP); err != nil {
			return err
		}

		err := s.repoDB.UpdateAccountEmail(ctx, acc.ID, in.Email)
		if errors.Is(err, goerror.ErrConflict) {
			return goerror.NewBusiness(entity.MsgEmailAlreadyRegistered, goerror.CodeConflict)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo update account email", "account_id", acc.ID, "error", err)
			return goerror.NewServer(err)
		}

		return nil
	}); err != nil {
		return nil, s.txError(ctx, err)
	}

	s.resetOTPVerify(ctx, in.Email)

	acc.Email = in.Email
	out := toAccountOutput(acc)
	return &out, nil
}
