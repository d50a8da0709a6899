package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
)

func (s *Usecase) Profile(ctx context.Context) (*AccountOutput, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	acc, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	out := toAccountOutput(acc)
	return &out, nil
}

type ProfileUpdateInput struct {
	Name string `validate:"required,max=100"`
}

func (s *Usecase) ProfileUpdate(ctx context.Context, in ProfileUpdateInput) (*AccountOutput, error) {
	ctx, span := s.startSpan(ctx, "ProfileUpdate")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	acc, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.repoDB.UpdateAccountName(ctx, acc.ID, in.Name); err != nil {
		slog.ErrorContext(ctx, "failed to repo update account name", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	acc.Name = in.Name
	out := toAccountOutput(acc)
	return &out, nil
}

// AccountDelete removes the caller's account; sessions and codes go with it.
func (s *Usecase) AccountDelete(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "AccountDelete")
	defer span.End()

	acc, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if err := s.repoDB.DeleteAccount(ctx, acc.ID); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete account", "account_id", acc.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

// Logout is universal: every session of the account is revoked.
func (s *Usecase) Logout(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	acc, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	n, err := s.repoDB.DeleteSessionsByAccount(ctx, acc.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete sessions", "account_id", acc.ID, "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "account logged out", "account_id", acc.ID, "sessions", n)
	return nil
}
