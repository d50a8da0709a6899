package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/otpflow/internal/exchange/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/clock"
	"github.com/shandysiswandi/otpflow/internal/pkg/hash"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/uid"
	"github.com/shandysiswandi/otpflow/internal/pkg/valueobject"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultMaxAttempts = 5
	secretIDLength     = 64
)

type Config struct {
	// TokenPrefix is prepended to every secret, e.g. "xt_".
	TokenPrefix string
	// MaxAttempts bounds regeneration after a hash collision.
	MaxAttempts int
}

// Store persists exchange tokens; implemented by the postgres and redis drivers.
type Store interface {
	CreateToken(ctx context.Context, tok entity.Token) error
	TakeToken(ctx context.Context, tokenHash string, now time.Time) (valueobject.JSONMap, error)
	PeekToken(ctx context.Context, tokenHash string, now time.Time) (valueobject.JSONMap, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Usecase struct {
	cfg    Config
	store  Store
	hmac   hash.Hash
	secret uid.StringID
	uuid   uid.StringID
	clock  clock.Clocker
	ins    instrument.Instrumentation
}

type Dependency struct {
	Config     Config
	Store      Store
	HMAC       hash.Hash
	Secret     uid.StringID
	UUID       uid.StringID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	if dep.Config.MaxAttempts < 1 {
		dep.Config.MaxAttempts = DefaultMaxAttempts
	}

	return &Usecase{
		cfg:    dep.Config,
		store:  dep.Store,
		hmac:   dep.HMAC,
		secret: dep.Secret,
		uuid:   dep.UUID,
		clock:  dep.Clock,
		ins:    dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("exchange.usecase").Start(ctx, name)
}
