package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpflow/internal/account/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/shared/event"
)

type RegistrationInitiateInput struct {
	Email string `validate:"required,email,max=200"`
	IP    string
}

func (s *Usecase) RegistrationInitiate(ctx context.Context, in RegistrationInitiateInput) error {
	ctx, span := s.startSpan(ctx, "RegistrationInitiate")
	defer span.End()

	in.Email = normalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.allowOTPRequest(ctx, in.Email); err != nil {
		return err
	}

	if err := s.ensureEmailAvailable(ctx, in.Email); err != nil {
		return err
	}

	subject, err := otpSubject(event.OTPPurposeRegistration, in.Email)
	if err != nil {
		return goerror.NewInvalidInput(nil, "email", err.Error())
	}

	return s.issueOTP(ctx, subject, in.IP, OTPRequestedEvent{
		Purpose: event.OTPPurposeRegistration,
		Email:   in.Email,
	})
}

type RegistrationVerifyInput struct {
	Email string `validate:"required,email,max=200"`
	OTP   string `validate:"required,otpcode"`
}

type RegistrationVerifyOutput struct {
	PasswordSetToken string
}

// RegistrationVerify consumes the registration code and mints the token that
// lets the client set a password. Both happen in one transaction.
func (s *Usecase) RegistrationVerify(ctx context.Context, in RegistrationVerifyInput) (*RegistrationVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "RegistrationVerify")
	defer span.End()

	in.Email = normalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if err := s.allowOTPVerify(ctx, in.Email); err != nil {
		return nil, err
	}

	if err := s.ensureEmailAvailable(ctx, in.Email); err != nil {
		return nil, err
	}

	subject, err := otpSubject(event.OTPPurposeRegistration, in.Email)
	if err != nil {
		return nil, goerror.NewInvalidInput(nil, "email", err.Error())
	}

	var token string
	if err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.verifyOTP(ctx, subject, in.OTP); err != nil {
			return err
		}

		token, err = s.mintToken(ctx, event.OTPPurposeRegistration, in.Email)
		return err
	}); err != nil {
		return nil, s.txError(ctx, err)
	}

	s.resetOTPVerify(ctx, in.Email)

	return &RegistrationVerifyOutput{PasswordSetToken: token}, nil
}

type RegistrationCompleteInput struct {
	PasswordSetToken string `validate:"required"`
	Password         string `validate:"required,password"`
	Name             string `validate:"omitempty,max=100"`
	Meta             ClientMeta
}

// RegistrationComplete redeems the password-set token and creates the account
// with its first session.
func (s *Usecase) RegistrationComplete(ctx context.Context, in RegistrationCompleteInput) (*AuthOutput, error) {
	ctx, span := s.startSpan(ctx, "RegistrationComplete")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	hashed, err := s.password.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	var (
		acc   entity.Account
		token string
	)
	if err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		email, err := s.redeemToken(ctx, event.OTPPurposeRegistration, in.PasswordSetToken)
		if err != nil {
			return err
		}

		if err := s.ensureEmailAvailable(ctx, email); err != nil {
			return err
		}

		now := s.clock.Now()
		acc = entity.Account{
			ID:        s.uid.Generate(),
			Email:     email,
			Name:      in.Name,
			Password:  string(hashed),
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repoDB.CreateAccount(ctx, acc); errors.Is(err, goerror.ErrConflict) {
			return goerror.NewBusiness(entity.MsgEmailAlreadyRegistered, goerror.CodeConflict)
		} else if err != nil {
			slog.ErrorContext(ctx, "failed to repo create account", "email", email, "error", err)
			return goerror.NewServer(err)
		}

		token, err = s.issueSession(ctx, &acc, in.Meta)
		return err
	}); err != nil {
		return nil, s.txError(ctx, err)
	}

	return &AuthOutput{Account: toAccountOutput(&acc), AuthToken: token}, nil
}

func (s *Usecase) ensureEmailAvailable(ctx context.Context, email string) error {
	_, err := s.repoDB.GetAccountByEmail(ctx, email)
	if err == nil {
		return goerror.NewBusiness(entity.MsgEmailAlreadyRegistered, goerror.CodeConflict)
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get account by email", "email", email, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

// txError passes flow errors through and wraps commit failures.
func (s *Usecase) txError(ctx context.Context, err error) error {
	var gErr *goerror.Error
	if errors.As(err, &gErr) {
		return err
	}

	slog.ErrorContext(ctx, "failed to commit transaction", "error", err)
	return goerror.NewServer(err)
}
