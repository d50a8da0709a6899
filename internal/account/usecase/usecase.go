package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/otpflow/internal/account/entity"
	exchangeEntity "github.com/shandysiswandi/otpflow/internal/exchange/entity"
	exchangeUsecase "github.com/shandysiswandi/otpflow/internal/exchange/usecase"
	otpEntity "github.com/shandysiswandi/otpflow/internal/otp/entity"
	otpUsecase "github.com/shandysiswandi/otpflow/internal/otp/usecase"
	"github.com/shandysiswandi/otpflow/internal/pkg/clock"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/pkg/hash"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/jwt"
	"github.com/shandysiswandi/otpflow/internal/pkg/ratelimit"
	"github.com/shandysiswandi/otpflow/internal/pkg/uid"
	"github.com/shandysiswandi/otpflow/internal/pkg/validator"
	"github.com/shandysiswandi/otpflow/internal/pkg/valueobject"
	"github.com/shandysiswandi/otpflow/internal/shared/event"
	"go.opentelemetry.io/otel/trace"
)

type OTPRequestedEvent struct {
	Purpose         event.OTPPurpose
	Email           string
	Name            string
	AccountID       int64
	Code            string
	ValidForMinutes int64
}

type repoMessaging interface {
	PublishOTPRequested(ctx context.Context, msg OTPRequestedEvent) error
}

type repoDB interface {
	GetAccountByEmail(ctx context.Context, email string) (*entity.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*entity.Account, error)
	CreateAccount(ctx context.Context, acc entity.Account) error
	UpdateAccountName(ctx context.Context, id int64, name string) error
	UpdateAccountEmail(ctx context.Context, id int64, email string) error
	UpdateAccountPassword(ctx context.Context, id int64, hash string) error
	DeleteAccount(ctx context.Context, id int64) error

	CreateSession(ctx context.Context, sess entity.Session) error
	GetSession(ctx context.Context, id string, accountID int64) (*entity.Session, error)
	DeleteSessionsByAccount(ctx context.Context, accountID int64) (int64, error)
}

type otpEngine interface {
	GenerateForSubject(ctx context.Context, in otpUsecase.GenerateInput) (*otpUsecase.GenerateOutput, error)
	Verify(ctx context.Context, in otpUsecase.VerifyInput) (bool, error)
	Config() otpUsecase.Config
}

type exchanger interface {
	ExchangeDataForToken(ctx context.Context, in exchangeUsecase.ExchangeDataInput) (string, error)
	ExchangeTokenForData(ctx context.Context, in exchangeUsecase.ExchangeTokenInput) (valueobject.JSONMap, error)
}

type transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RateLimit allows Limit attempts per Window; a zero Limit disables it.
type RateLimit struct {
	Limit  int64
	Window time.Duration
}

type Config struct {
	ExchangeTTL time.Duration
	SessionTTL  time.Duration
	OTPRequest  RateLimit
	OTPVerify   RateLimit
}

type Usecase struct {
	cfg           Config
	repoDB        repoDB
	repoMessaging repoMessaging
	otp           otpEngine
	exchange      exchanger
	tx            transactor
	limiter       ratelimit.Limiter
	validator     validator.Validator
	password      hash.Hash
	uid           uid.NumberID
	uuid          uid.StringID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
}

type Dependency struct {
	Config        Config
	RepoDB        repoDB
	RepoMessaging repoMessaging
	OTP           otpEngine
	Exchange      exchanger
	Transactor    transactor
	Limiter       ratelimit.Limiter
	Validator     validator.Validator
	Password      hash.Hash
	UID           uid.NumberID
	UUID          uid.StringID
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		cfg:           dep.Config,
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		otp:           dep.OTP,
		exchange:      dep.Exchange,
		tx:            dep.Transactor,
		limiter:       dep.Limiter,
		validator:     dep.Validator,
		password:      dep.Password,
		uid:           dep.UID,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("account.usecase").Start(ctx, name)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// otpSubject scopes identifier codes by purpose so a code issued for one flow
// can neither verify in nor replace the code of another.
func otpSubject(purpose event.OTPPurpose, email string) (otpEntity.Subject, error) {
	return otpEntity.IdentifierSubject(string(purpose) + ":" + email)
}

func emailChangeSubject(accountID int64, email string) (otpEntity.Subject, error) {
	return otpEntity.IdentifierSubject(string(event.OTPPurposeEmailChange) + ":" + strconv.FormatInt(accountID, 10) + ":" + email)
}

func (s *Usecase) allow(ctx context.Context, bucket string, rl RateLimit, email string) error {
	res, err := s.limiter.Allow(ctx, bucket+":"+email, rl.Limit, rl.Window)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check rate limit", "bucket", bucket, "email", email, "error", err)
		return goerror.NewServer(err)
	}

	if !res.Allowed {
		slog.WarnContext(ctx, "rate limit exceeded", "bucket", bucket, "email", email, "retry_after", res.RetryAfter.String())
		return goerror.NewBusiness(entity.MsgTooManyRequests, goerror.CodeTooManyRequest)
	}

	return nil
}

func (s *Usecase) allowOTPRequest(ctx context.Context, email string) error {
	return s.allow(ctx, "otp_request", s.cfg.OTPRequest, email)
}

func (s *Usecase) allowOTPVerify(ctx context.Context, email string) error {
	return s.allow(ctx, "otp_verify", s.cfg.OTPVerify, email)
}

// resetOTPVerify clears failed attempts once a code was accepted.
func (s *Usecase) resetOTPVerify(ctx context.Context, email string) {
	if err := s.limiter.Reset(ctx, "otp_verify:"+email); err != nil {
		slog.WarnContext(ctx, "failed to reset rate limit", "email", email, "error", err)
	}
}

// issueOTP generates a code for subject and hands it to the mail sender.
// A publish failure is logged; the caller can request a new code.
func (s *Usecase) issueOTP(ctx context.Context, subject otpEntity.Subject, ip string, msg OTPRequestedEvent) error {
	out, err := s.otp.GenerateForSubject(ctx, otpUsecase.GenerateInput{
		Subject:     subject,
		RequestorIP: ip,
		ExtraData:   valueobject.JSONMap{"purpose": string(msg.Purpose)},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp", "purpose", msg.Purpose, "email", msg.Email, "error", err)
		return err
	}

	msg.Code = out.Code
	msg.ValidForMinutes = validForMinutes(s.otp.Config().ValidityPeriod)
	if err := s.repoMessaging.PublishOTPRequested(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp requested", "purpose", msg.Purpose, "email", msg.Email, "error", err)
	}

	return nil
}

// verifyOTP consumes the code; a rejection becomes the uniform invalid OTP error.
func (s *Usecase) verifyOTP(ctx context.Context, subject otpEntity.Subject, code string) error {
	ok, err := s.otp.Verify(ctx, otpUsecase.VerifyInput{
		Subject:              subject,
		Code:                 code,
		DeleteOnVerification: true,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify otp", "subject", subject.String(), "error", err)
		return err
	}

	if !ok {
		slog.WarnContext(ctx, "otp rejected", "subject", subject.String())
		return goerror.NewBusiness(entity.MsgInvalidOTP, goerror.CodeUnauthorized)
	}

	return nil
}

// mintToken hands verified state over to the completion step.
func (s *Usecase) mintToken(ctx context.Context, purpose event.OTPPurpose, email string) (string, error) {
	token, err := s.exchange.ExchangeDataForToken(ctx, exchangeUsecase.ExchangeDataInput{
		Payload:      valueobject.JSONMap{"email": email, "purpose": string(purpose)},
		ExpiresAfter: s.cfg.ExchangeTTL,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to exchange data for token", "purpose", purpose, "error", err)
		return "", goerror.NewServer(err)
	}

	return token, nil
}

// redeemToken consumes token and returns the email it was minted for.
func (s *Usecase) redeemToken(ctx context.Context, purpose event.OTPPurpose, token string) (string, error) {
	payload, err := s.exchange.ExchangeTokenForData(ctx, exchangeUsecase.ExchangeTokenInput{
		Token:           token,
		DeleteOnSuccess: true,
	})
	if errors.Is(err, exchangeEntity.ErrInvalidOrExpiredToken) {
		slog.WarnContext(ctx, "exchange token rejected", "purpose", purpose)
		return "", goerror.NewBusiness(entity.MsgInvalidOrExpiredToken, goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to exchange token for data", "purpose", purpose, "error", err)
		return "", err
	}

	email := payload.GetString("email")
	got := payload.GetString("purpose")
	if email == "" || got != string(purpose) {
		slog.WarnContext(ctx, "exchange token minted for another flow", "purpose", purpose, "token_purpose", got)
		return "", goerror.NewBusiness(entity.MsgInvalidOrExpiredToken, goerror.CodeUnauthorized)
	}

	return email, nil
}

// issueSession stores a session and signs a token bound to it.
func (s *Usecase) issueSession(ctx context.Context, acc *entity.Account, meta ClientMeta) (string, error) {
	now := s.clock.Now()
	sess := entity.Session{
		ID:        s.uuid.Generate(),
		AccountID: acc.ID,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
		CreatedAt: now,
	}

	if err := s.repoDB.CreateSession(ctx, sess); err != nil {
		slog.ErrorContext(ctx, "failed to repo create session", "account_id", acc.ID, "error", err)
		return "", goerror.NewServer(err)
	}

	token, err := s.jwt.Generate(jwt.GenerateInput{
		AccountID: acc.ID,
		Email:     acc.Email,
		SessionID: sess.ID,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate jwt token", "account_id", acc.ID, "error", err)
		return "", goerror.NewServer(err)
	}

	return token, nil
}

// authenticated resolves the caller from the bearer claims and its session.
func (s *Usecase) authenticated(ctx context.Context) (*entity.Account, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness(entity.MsgAuthRequired, goerror.CodeUnauthorized)
	}

	sess, err := s.repoDB.GetSession(ctx, clm.SessionID(), clm.AccountID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "session not found", "account_id", clm.AccountID)
		return nil, goerror.NewBusiness(entity.MsgSessionExpired, goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get session", "account_id", clm.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if sess.IsExpired(s.clock.Now()) {
		return nil, goerror.NewBusiness(entity.MsgSessionExpired, goerror.CodeUnauthorized)
	}

	acc, err := s.repoDB.GetAccountByID(ctx, clm.AccountID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness(entity.MsgSessionExpired, goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by id", "account_id", clm.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !acc.IsActive {
		return nil, goerror.NewBusiness(entity.MsgAccountInactive, goerror.CodeForbidden)
	}

	return acc, nil
}

// ClientMeta describes where a request came from.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// AccountOutput is the public view of an account.
type AccountOutput struct {
	ID        int64
	Email     string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

func toAccountOutput(acc *entity.Account) AccountOutput {
	return AccountOutput{
		ID:        acc.ID,
		Email:     acc.Email,
		Name:      acc.Name,
		IsActive:  acc.IsActive,
		CreatedAt: acc.CreatedAt,
	}
}

type AuthOutput struct {
	Account   AccountOutput
	AuthToken string
}

// validForMinutes rounds up so a sub-minute period never reads "0 minutes".
func validForMinutes(d time.Duration) int64 {
	return int64((d + time.Minute - 1) / time.Minute)
}
