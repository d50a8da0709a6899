package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	exchangeUsecase "github.com/shandysiswandi/otpflow/internal/exchange/usecase"
	"github.com/shandysiswandi/otpflow/internal/job"
	otpUsecase "github.com/shandysiswandi/otpflow/internal/otp/usecase"
	"github.com/shandysiswandi/otpflow/internal/pkg/clock"
	"github.com/shandysiswandi/otpflow/internal/pkg/config"
	"github.com/shandysiswandi/otpflow/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpflow/internal/pkg/hash"
	"github.com/shandysiswandi/otpflow/internal/pkg/hotp"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/jwt"
	"github.com/shandysiswandi/otpflow/internal/pkg/mail"
	"github.com/shandysiswandi/otpflow/internal/pkg/messaging"
	"github.com/shandysiswandi/otpflow/internal/pkg/ratelimit"
	"github.com/shandysiswandi/otpflow/internal/pkg/router"
	"github.com/shandysiswandi/otpflow/internal/pkg/seal"
	"github.com/shandysiswandi/otpflow/internal/pkg/storage"
	"github.com/shandysiswandi/otpflow/internal/pkg/uid"
	"github.com/shandysiswandi/otpflow/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine  *goroutine.Manager
	validator  validator.Validator
	clock      clock.Clocker
	hmac       hash.Hash
	argon2id   hash.Hash
	bcrypt     hash.Hash
	uid        uid.NumberID
	secret     uid.StringID
	uuid       uid.StringID
	hotp       *hotp.HOTP
	jwt        jwt.JWT
	seedSealer seal.Sealer

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	limiter   ratelimit.Limiter
	mail      mail.Mail
	messaging messaging.Messaging
	storage   storage.Storage

	// engines shared by modules and jobs
	otp      *otpUsecase.Usecase
	exchange *exchangeUsecase.Usecase
	purge    *job.Purge

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initMigrations()
	app.initCache()
	app.initMail()
	app.initStorage()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initJobs()
	app.initClosers()

	return app
}
