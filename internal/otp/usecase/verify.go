package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpflow/internal/otp/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/pkg/hotp"
)

type VerifyInput struct {
	Subject              entity.Subject
	Code                 string
	DeleteOnVerification bool
}

// Verify reports whether Code is an unused code of the subject's live record.
// Every rejection is (false, nil); only storage and crypto failures are errors.
// An accepted code either advances the record's verified counter or deletes
// the record, and both are compare-and-set so a code verifies at most once.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (bool, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	if in.Subject.IsZero() {
		return false, nil
	}

	rec, err := s.repoDB.GetRecord(ctx, in.Subject)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "otp record not found", "subject", in.Subject.String())
		return false, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get otp record", "subject", in.Subject.String(), "error", err)
		return false, goerror.NewServer(err)
	}

	if !wellFormed(in.Code, rec.CodeLength) {
		return false, nil
	}

	now := s.clock.Now()
	if rec.IsExpired(now) {
		slog.WarnContext(ctx, "otp record expired", "subject", in.Subject.String(), "record_id", rec.ID)
		return false, nil
	}

	seed, err := s.sealer.Open(rec.SecretKey, seedScope(rec.ID))
	if err != nil {
		slog.ErrorContext(ctx, "failed to open otp seed", "record_id", rec.ID, "error", err)
		return false, goerror.NewServer(err)
	}

	current, err := hotp.Counter(now, rec.ValidityPeriod)
	if err != nil {
		slog.ErrorContext(ctx, "failed to compute otp counter", "record_id", rec.ID, "error", err)
		return false, goerror.NewServer(err)
	}
	issued, err := hotp.Counter(rec.CreatedAt, rec.ValidityPeriod)
	if err != nil {
		slog.ErrorContext(ctx, "failed to compute otp counter", "record_id", rec.ID, "error", err)
		return false, goerror.NewServer(err)
	}

	matched, ok := int64(0), false
	for _, counter := range s.candidates(current, issued, rec.LastVerifiedCounter) {
		expected, err := s.hotp.Code(string(seed), counter, rec.CodeLength)
		if err != nil {
			slog.ErrorContext(ctx, "failed to derive otp code", "record_id", rec.ID, "error", err)
			return false, goerror.NewServer(err)
		}

		if hotp.Equal(expected, in.Code) {
			matched, ok = int64(counter), true
			break
		}
	}
	if !ok {
		return false, nil
	}

	var consumed bool
	if in.DeleteOnVerification {
		consumed, err = s.repoDB.DeleteRecordAtCounter(ctx, in.Subject, rec.ID, rec.LastVerifiedCounter)
	} else {
		consumed, err = s.repoDB.AdvanceCounter(ctx, in.Subject, rec.ID, rec.LastVerifiedCounter, matched)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo consume otp record", "record_id", rec.ID, "error", err)
		return false, goerror.NewServer(err)
	}

	if !consumed {
		slog.WarnContext(ctx, "otp record consumed concurrently", "record_id", rec.ID)
	}

	return consumed, nil
}

// candidates lists the current step first, then up to SkewSteps earlier ones,
// keeping only steps at or after issuance and past the last verified counter.
func (s *Usecase) candidates(current, issued uint64, lastVerified int64) []uint64 {
	return lo.FilterMap(lo.RangeFrom(0, s.cfg.SkewSteps+1), func(back int, _ int) (uint64, bool) {
		if uint64(back) > current {
			return 0, false
		}

		counter := current - uint64(back)
		return counter, counter >= issued && int64(counter) > lastVerified
	})
}

func wellFormed(code string, length int) bool {
	if len(code) != length {
		return false
	}

	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
