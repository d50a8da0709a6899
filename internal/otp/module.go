// Package otp issues and verifies time-based one-time codes bound to a subject.
package otp

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/otpflow/internal/otp/outbound/db"
	"github.com/shandysiswandi/otpflow/internal/otp/usecase"
	"github.com/shandysiswandi/otpflow/internal/pkg/clock"
	"github.com/shandysiswandi/otpflow/internal/pkg/config"
	"github.com/shandysiswandi/otpflow/internal/pkg/hotp"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/seal"
	"github.com/shandysiswandi/otpflow/internal/pkg/uid"
	"github.com/shandysiswandi/otpflow/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	HOTP       *hotp.HOTP                 `validate:"required"`
	Sealer     seal.Sealer                `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
}

// New builds the engine. It has no endpoints of its own; the account flows
// and the purge job call it directly.
func New(dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	return usecase.New(usecase.Dependency{
		Config:     ConfigFrom(dep.Config),
		RepoDB:     db.NewDB(dep.DBConn, dep.Instrument),
		Validator:  dep.Validator,
		HOTP:       dep.HOTP,
		Sealer:     dep.Sealer,
		UUID:       dep.UUID,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	})
}

// ConfigFrom reads otp.length, otp.validity_period_seconds and otp.skew_steps,
// falling back to the defaults for unset keys.
func ConfigFrom(cfg config.Config) usecase.Config {
	out := usecase.DefaultConfig()

	if n := cfg.GetInt("otp.length"); n != 0 {
		out.CodeLength = n
	}
	if d := cfg.GetSecond("otp.validity_period_seconds"); d != 0 {
		out.ValidityPeriod = d
	}
	if cfg.GetString("otp.skew_steps") != "" {
		out.SkewSteps = cfg.GetInt("otp.skew_steps")
	}

	return out
}
