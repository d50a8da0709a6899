package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpflow/internal/otp/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/pkg/hotp"
	"github.com/shandysiswandi/otpflow/internal/pkg/valueobject"
)

type GenerateInput struct {
	Subject     entity.Subject
	RequestorIP string `validate:"omitempty,ip"`
	ExtraData   valueobject.JSONMap
}

type GenerateOutput struct {
	Record entity.Record
	// Code is only handed out here; it is never persisted.
	Code string
}

// GenerateForSubject issues a fresh code for the subject. A live record of the
// same subject is replaced, so earlier codes stop verifying immediately.
func (s *Usecase) GenerateForSubject(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	ctx, span := s.startSpan(ctx, "GenerateForSubject")
	defer span.End()

	if in.Subject.IsZero() {
		return nil, entity.ErrInvalidSubject
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	seed, err := s.hotp.NewSecret()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp seed", "subject", in.Subject.String(), "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now().UTC().Truncate(time.Microsecond)
	counter, err := hotp.Counter(now, s.cfg.ValidityPeriod)
	if err != nil {
		slog.ErrorContext(ctx, "failed to compute otp counter", "subject", in.Subject.String(), "error", err)
		return nil, goerror.NewServer(err)
	}

	code, err := s.hotp.Code(seed, counter, s.cfg.CodeLength)
	if err != nil {
		slog.ErrorContext(ctx, "failed to derive otp code", "subject", in.Subject.String(), "error", err)
		return nil, goerror.NewServer(err)
	}

	id := s.uuid.Generate()
	sealed, err := s.sealer.Seal([]byte(seed), seedScope(id))
	if err != nil {
		slog.ErrorContext(ctx, "failed to seal otp seed", "subject", in.Subject.String(), "error", err)
		return nil, goerror.NewServer(err)
	}

	rec := entity.Record{
		ID:                  id,
		Subject:             in.Subject,
		SecretKey:           sealed,
		LastVerifiedCounter: entity.NoVerifiedCounter,
		ValidityPeriod:      s.cfg.ValidityPeriod,
		CodeLength:          s.cfg.CodeLength,
		RequestorIP:         in.RequestorIP,
		ExtraData:           in.ExtraData,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repoDB.UpsertRecord(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert otp record", "subject", in.Subject.String(), "error", err)
		return nil, goerror.NewServer(err)
	}

	return &GenerateOutput{Record: rec, Code: code}, nil
}
