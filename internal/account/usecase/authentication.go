package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpflow/internal/account/entity"
	otpEntity "github.com/shandysiswandi/otpflow/internal/otp/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/shared/event"
)

type AuthenticationInitiateInput struct {
	Email    string `validate:"required,email,max=200"`
	Password string `validate:"required"`
	IP       string
}

// AuthenticationInitiate checks the password and mails a login code.
func (s *Usecase) AuthenticationInitiate(ctx context.Context, in AuthenticationInitiateInput) error {
	ctx, span := s.startSpan(ctx, "AuthenticationInitiate")
	defer span.End()

	in.Email = normalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.allowOTPRequest(ctx, in.Email); err != nil {
		return err
	}

	acc, err := s.repoDB.GetAccountByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "account not found", "email", in.Email)
		return goerror.NewBusiness(entity.MsgInvalidCredentials, goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	if !s.password.Verify(acc.Password, in.Password) {
		slog.WarnContext(ctx, "password account not match", "account_id", acc.ID)
		return goerror.NewBusiness(entity.MsgInvalidCredentials, goerror.CodeUnauthorized)
	}

	if !acc.IsActive {
		slog.WarnContext(ctx, "account is inactive", "account_id", acc.ID)
		return goerror.NewBusiness(entity.MsgAccountInactive, goerror.CodeForbidden)
	}

	subject, err := otpEntity.AccountSubject(acc.ID)
	if err != nil {
		return goerror.NewServer(err)
	}

	return s.issueOTP(ctx, subject, in.IP, OTPRequestedEvent{
		Purpose:   event.OTPPurposeAuthentication,
		Email:     acc.Email,
		Name:      acc.Name,
		AccountID: acc.ID,
	})
}

type AuthenticationCompleteInput struct {
	Email string `validate:"required,email,max=200"`
	OTP   string `validate:"required,otpcode"`
	Meta  ClientMeta
}

// AuthenticationComplete consumes the login code and opens a session.
func (s *Usecase) AuthenticationComplete(ctx context.Context, in AuthenticationCompleteInput) (*AuthOutput, error) {
	ctx, span := s.startSpan(ctx, "AuthenticationComplete")
	defer span.End()

	in.Email = normalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if err := s.allowOTPVerify(ctx, in.Email); err != nil {
		return nil, err
	}

	acc, err := s.repoDB.GetAccountByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "account not found", "email", in.Email)
		return nil, goerror.NewBusiness(entity.MsgInvalidOTP, goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !acc.IsActive {
		return nil, goerror.NewBusiness(entity.MsgAccountInactive, goerror.CodeForbidden)
	}

	subject, err := otpEntity.AccountSubject(acc.ID)
	if err != nil {
		return nil, goerror.NewServer(err)
	}

	var token string
	if err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.verifyOTP(ctx, subject, in.OTP); err != nil {
			return err
		}

		token, err = s.issueSession(ctx, acc, in.Meta)
		return err
	}); err != nil {
		return nil, s.txError(ctx, err)
	}

	s.resetOTPVerify(ctx, in.Email)

	return &AuthOutput{Account: toAccountOutput(acc), AuthToken: token}, nil
}
