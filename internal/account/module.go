// Package account sequences the OTP backed flows: registration,
// authentication, password reset and the signed in account operations.
package account

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/otpflow/internal/account/inbound"
	"github.com/shandysiswandi/otpflow/internal/account/outbound/db"
	"github.com/shandysiswandi/otpflow/internal/account/outbound/mq"
	"github.com/shandysiswandi/otpflow/internal/account/usecase"
	exchangeUsecase "github.com/shandysiswandi/otpflow/internal/exchange/usecase"
	otpUsecase "github.com/shandysiswandi/otpflow/internal/otp/usecase"
	"github.com/shandysiswandi/otpflow/internal/pkg/clock"
	"github.com/shandysiswandi/otpflow/internal/pkg/config"
	"github.com/shandysiswandi/otpflow/internal/pkg/hash"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/jwt"
	"github.com/shandysiswandi/otpflow/internal/pkg/messaging"
	"github.com/shandysiswandi/otpflow/internal/pkg/pgtx"
	"github.com/shandysiswandi/otpflow/internal/pkg/ratelimit"
	"github.com/shandysiswandi/otpflow/internal/pkg/router"
	"github.com/shandysiswandi/otpflow/internal/pkg/uid"
	"github.com/shandysiswandi/otpflow/internal/pkg/validator"
)

const (
	defaultExchangeTTL = 30 * time.Minute
	defaultSessionTTL  = time.Hour
)

var ErrUnknownPasswordAlgorithm = errors.New("account: unknown password algorithm")

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	OTP        *otpUsecase.Usecase        `validate:"required"`
	Exchange   *exchangeUsecase.Usecase   `validate:"required"`
	Limiter    ratelimit.Limiter          `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Bcrypt     hash.Hash                  `validate:"required"`
	Argon2ID   hash.Hash                  `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	password, err := passwordHasher(dep)
	if err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		Config:        ConfigFrom(dep.Config),
		RepoDB:        db.NewDB(dep.DBConn, dep.Instrument),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		OTP:           dep.OTP,
		Exchange:      dep.Exchange,
		Transactor:    pgtx.NewTransactor(dep.DBConn),
		Limiter:       dep.Limiter,
		Validator:     dep.Validator,
		Password:      password,
		UID:           dep.UID,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}

func passwordHasher(dep Dependency) (hash.Hash, error) {
	switch algo := dep.Config.GetString("account.password_algorithm"); algo {
	case "", "argon2id":
		return dep.Argon2ID, nil
	case "bcrypt":
		return dep.Bcrypt, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPasswordAlgorithm, algo)
	}
}

// ConfigFrom reads the flow TTLs and the per email rate limits.
func ConfigFrom(cfg config.Config) usecase.Config {
	out := usecase.Config{
		ExchangeTTL: defaultExchangeTTL,
		SessionTTL:  defaultSessionTTL,
		OTPRequest:  usecase.RateLimit{Limit: 5, Window: 15 * time.Minute},
		OTPVerify:   usecase.RateLimit{Limit: 10, Window: 15 * time.Minute},
	}

	if d := cfg.GetSecond("account.exchange_ttl_seconds"); d > 0 {
		out.ExchangeTTL = d
	}
	if d := cfg.GetMinute("jwt.ttl_minutes"); d > 0 {
		out.SessionTTL = d
	}
	out.OTPRequest = rateLimitFrom(cfg, "ratelimit.otp_request", out.OTPRequest)
	out.OTPVerify = rateLimitFrom(cfg, "ratelimit.otp_verify", out.OTPVerify)

	return out
}

func rateLimitFrom(cfg config.Config, prefix string, def usecase.RateLimit) usecase.RateLimit {
	if n := cfg.GetInt64(prefix + ".limit"); n > 0 {
		def.Limit = n
	}
	if d := cfg.GetSecond(prefix + ".window_seconds"); d > 0 {
		def.Window = d
	}

	return def
}
