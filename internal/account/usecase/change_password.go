package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpflow/internal/account/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
)

type ChangePasswordInput struct {
	OldPassword string `validate:"required"`
	NewPassword string `validate:"required,password,nefield=OldPassword"`
}

func (s *Usecase) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	ctx, span := s.startSpan(ctx, "ChangePassword")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	acc, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if !s.password.Verify(acc.Password, in.OldPassword) {
		slog.WarnContext(ctx, "old password not match", "account_id", acc.ID)
		return goerror.NewBusiness(entity.MsgInvalidCredentials, goerror.CodeUnauthorized)
	}

	hashed, err := s.password.Hash(in.NewPassword)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.UpdateAccountPassword(ctx, acc.ID, string(hashed)); err != nil {
		slog.ErrorContext(ctx, "failed to repo update account password", "account_id", acc.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
