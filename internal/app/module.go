package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/otpflow/internal/account"
	"github.com/shandysiswandi/otpflow/internal/exchange"
	"github.com/shandysiswandi/otpflow/internal/notification"
	"github.com/shandysiswandi/otpflow/internal/otp"
)

func (a *App) initModules() {
	otpUC, err := otp.New(otp.Dependency{
		DBConn:     a.dbConn,
		Config:     a.config,
		Instrument: a.ins,
		Validator:  a.validator,
		HOTP:       a.hotp,
		Sealer:     a.seedSealer,
		UUID:       a.uuid,
		Clock:      a.clock,
	})
	if err != nil {
		slog.Error("failed to init module otp", "error", err)
		os.Exit(1)
	}
	a.otp = otpUC

	exchangeUC, err := exchange.New(exchange.Dependency{
		DBConn:     a.dbConn,
		CacheConn:  a.cacheConn,
		Config:     a.config,
		Instrument: a.ins,
		Validator:  a.validator,
		HMAC:       a.hmac,
		Secret:     a.secret,
		UUID:       a.uuid,
		Clock:      a.clock,
	})
	if err != nil {
		slog.Error("failed to init module exchange", "error", err)
		os.Exit(1)
	}
	a.exchange = exchangeUC

	if a.config.GetBool("modules.account.enabled") {
		if err := account.New(account.Dependency{
			DBConn:     a.dbConn,
			Router:     a.router,
			Messaging:  a.messaging,
			OTP:        a.otp,
			Exchange:   a.exchange,
			Limiter:    a.limiter,
			Config:     a.config,
			Instrument: a.ins,
			Validator:  a.validator,
			Bcrypt:     a.bcrypt,
			Argon2ID:   a.argon2id,
			UID:        a.uid,
			UUID:       a.uuid,
			Clock:      a.clock,
			JWT:        a.jwt,
		}); err != nil {
			slog.Error("failed to init module account", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:        a.ctx,
			DBConn:     a.dbConn,
			Messaging:  a.messaging,
			Storage:    a.storage,
			Mail:       a.mail,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			Clock:      a.clock,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
