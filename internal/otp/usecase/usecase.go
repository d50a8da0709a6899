package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shandysiswandi/otpflow/internal/otp/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/clock"
	"github.com/shandysiswandi/otpflow/internal/pkg/hotp"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/seal"
	"github.com/shandysiswandi/otpflow/internal/pkg/uid"
	"github.com/shandysiswandi/otpflow/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultValidityPeriod = 30 * time.Minute
	DefaultSkewSteps      = 1
	maxSkewSteps          = 10

	// maxValidityPeriod is the largest period the int4 column can hold.
	maxValidityPeriod = math.MaxInt32 * time.Second
)

// Config is fixed per deployment and read once at construction.
type Config struct {
	CodeLength     int
	ValidityPeriod time.Duration
	// SkewSteps is how many steps before the current one are still accepted.
	SkewSteps int
}

// DefaultConfig returns 6 digits valid for 30 minutes with one step of skew.
func DefaultConfig() Config {
	return Config{
		CodeLength:     hotp.DefaultDigits,
		ValidityPeriod: DefaultValidityPeriod,
		SkewSteps:      DefaultSkewSteps,
	}
}

func (c Config) validate() error {
	if c.CodeLength < hotp.MinDigits || c.CodeLength > hotp.MaxDigits {
		return fmt.Errorf("%w: code length %d", entity.ErrInvalidConfig, c.CodeLength)
	}
	if c.ValidityPeriod < time.Second || c.ValidityPeriod > maxValidityPeriod || c.ValidityPeriod%time.Second != 0 {
		return fmt.Errorf("%w: validity period %s", entity.ErrInvalidConfig, c.ValidityPeriod)
	}
	if c.SkewSteps < 0 || c.SkewSteps > maxSkewSteps {
		return fmt.Errorf("%w: skew steps %d", entity.ErrInvalidConfig, c.SkewSteps)
	}
	return nil
}

type repoDB interface {
	UpsertRecord(ctx context.Context, rec entity.Record) error
	GetRecord(ctx context.Context, subject entity.Subject) (*entity.Record, error)
	AdvanceCounter(ctx context.Context, subject entity.Subject, id string, from, to int64) (bool, error)
	DeleteRecordAtCounter(ctx context.Context, subject entity.Subject, id string, from int64) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Usecase struct {
	cfg       Config
	repoDB    repoDB
	validator validator.Validator
	hotp      *hotp.HOTP
	sealer    seal.Sealer
	uuid      uid.StringID
	clock     clock.Clocker
	ins       instrument.Instrumentation
}

type Dependency struct {
	Config     Config
	RepoDB     repoDB
	Validator  validator.Validator
	HOTP       *hotp.HOTP
	Sealer     seal.Sealer
	UUID       uid.StringID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func New(dep Dependency) (*Usecase, error) {
	if err := dep.Config.validate(); err != nil {
		return nil, err
	}

	return &Usecase{
		cfg:       dep.Config,
		repoDB:    dep.RepoDB,
		validator: dep.Validator,
		hotp:      dep.HOTP,
		sealer:    dep.Sealer,
		uuid:      dep.UUID,
		clock:     dep.Clock,
		ins:       dep.Instrument,
	}, nil
}

// Config returns the engine settings, e.g. for rendering "valid for N minutes".
func (s *Usecase) Config() Config {
	return s.cfg
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

func seedScope(recordID string) seal.Scope {
	return seal.Scope{Subject: recordID, Purpose: seal.PurposeOTPSeed}
}
