package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpflow/internal/account/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/shared/event"
)

type PasswordResetInitiateInput struct {
	Email string `validate:"required,email,max=200"`
	IP    string
}

func (s *Usecase) PasswordResetInitiate(ctx context.Context, in PasswordResetInitiateInput) error {
	ctx, span := s.startSpan(ctx, "PasswordResetInitiate")
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
		return goerror.NewBusiness(entity.MsgAccountNotFound, goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	subject, err := otpSubject(event.OTPPurposePasswordReset, acc.Email)
	if err != nil {
		return goerror.NewServer(err)
	}

	return s.issueOTP(ctx, subject, in.IP, OTPRequestedEvent{
		Purpose:   event.OTPPurposePasswordReset,
		Email:     acc.Email,
		Name:      acc.Name,
		AccountID: acc.ID,
	})
}

type PasswordResetVerifyInput struct {
	Email string `validate:"required,email,max=200"`
	OTP   string `validate:"required,otpcode"`
}

type PasswordResetVerifyOutput struct {
	PasswordResetToken string
}

func (s *Usecase) PasswordResetVerify(ctx context.Context, in PasswordResetVerifyInput) (*PasswordResetVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "PasswordResetVerify")
	defer span.End()

	in.Email = normalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if err := s.allowOTPVerify(ctx, in.Email); err != nil {
		return nil, err
	}

	subject, err := otpSubject(event.OTPPurposePasswordReset, in.Email)
	if err != nil {
		return nil, goerror.NewInvalidInput(nil, "email", err.Error())
	}

	var token string
	if err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.verifyOTP(ctx, subject, in.OTP); err != nil {
			return err
		}

		token, err = s.mintToken(ctx, event.OTPPurposePasswordReset, in.Email)
		return err
	}); err != nil {
		return nil, s.txError(ctx, err)
	}

	s.resetOTPVerify(ctx, in.Email)

	return &PasswordResetVerifyOutput{PasswordResetToken: token}, nil
}

type PasswordResetCompleteInput struct {
	PasswordResetToken string `validate:"required"`
	NewPassword        string `validate:"required,password"`
}

// PasswordResetComplete sets the new password and revokes every session.
func (s *Usecase) PasswordResetComplete(ctx context.Context, in PasswordResetCompleteInput) error {
	ctx, span := s.startSpan(ctx, "PasswordResetComplete")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	hashed, err := s.password.Hash(in.NewPassword)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return goerror.NewServer(err)
	}

	if err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		email, err := s.redeemToken(ctx, event.OTPPurposePasswordReset, in.PasswordResetToken)
		if err != nil {
			return err
		}

		acc, err := s.repoDB.GetAccountByEmail(ctx, email)
		if errors.Is(err, goerror.ErrNotFound) {
			return goerror.NewBusiness(entity.MsgInvalidOrExpiredToken, goerror.CodeUnauthorized)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get account by email", "email", email, "error", err)
			return goerror.NewServer(err)
		}

		return s.replacePassword(ctx, acc.ID, string(hashed))
	}); err != nil {
		return s.txError(ctx, err)
	}

	return nil
}

func (s *Usecase) replacePassword(ctx context.Context, accountID int64, hashed string) error {
	if err := s.repoDB.UpdateAccountPassword(ctx, accountID, hashed); err != nil {
		slog.ErrorContext(ctx, "failed to repo update account password", "account_id", accountID, "error", err)
		return goerror.NewServer(err)
	}

	if _, err := s.repoDB.DeleteSessionsByAccount(ctx, accountID); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete sessions", "account_id", accountID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
