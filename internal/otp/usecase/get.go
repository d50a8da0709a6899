package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpflow/internal/otp/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
)

// Get returns the live record of subject, expired or not.
func (s *Usecase) Get(ctx context.Context, subject entity.Subject) (*entity.Record, error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer span.End()

	if subject.IsZero() {
		return nil, entity.ErrInvalidSubject
	}

	rec, err := s.repoDB.GetRecord(ctx, subject)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("otp record not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get otp record", "subject", subject.String(), "error", err)
		return nil, goerror.NewServer(err)
	}

	return rec, nil
}

// PurgeExpired deletes every record whose validity has ended.
func (s *Usecase) PurgeExpired(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "PurgeExpired")
	defer span.End()

	n, err := s.repoDB.DeleteExpired(ctx, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete expired otp records", "error", err)
		return 0, goerror.NewServer(err)
	}

	if n > 0 {
		slog.InfoContext(ctx, "purged expired otp records", "count", n)
	}

	return n, nil
}
