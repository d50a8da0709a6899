// Package exchange swaps verified state for single-use bearer tokens and back.
package exchange

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpflow/internal/exchange/outbound/cache"
	"github.com/shandysiswandi/otpflow/internal/exchange/outbound/db"
	"github.com/shandysiswandi/otpflow/internal/exchange/usecase"
	"github.com/shandysiswandi/otpflow/internal/pkg/clock"
	"github.com/shandysiswandi/otpflow/internal/pkg/config"
	"github.com/shandysiswandi/otpflow/internal/pkg/hash"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/uid"
	"github.com/shandysiswandi/otpflow/internal/pkg/validator"
)

const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

var ErrUnknownDriver = errors.New("exchange: unknown driver")

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  *redis.Client              `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Secret     uid.StringID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
}

// New builds the exchange service on the store named by exchange.driver
// (postgres when unset). Only the postgres store joins an ambient transaction.
func New(dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	var store usecase.Store
	switch driver := dep.Config.GetString("exchange.driver"); driver {
	case "", DriverPostgres:
		store = db.NewDB(dep.DBConn, dep.Instrument)
	case DriverRedis:
		store = cache.NewRedis(dep.CacheConn, dep.Instrument)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}

	return usecase.New(usecase.Dependency{
		Config: usecase.Config{
			TokenPrefix: dep.Config.GetString("exchange.token_prefix"),
			MaxAttempts: dep.Config.GetInt("exchange.max_attempts"),
		},
		Store:      store,
		HMAC:       dep.HMAC,
		Secret:     dep.Secret,
		UUID:       dep.UUID,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	}), nil
}
