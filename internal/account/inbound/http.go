package inbound

import (
	"context"

	"github.com/shandysiswandi/otpflow/internal/account/usecase"
	"github.com/shandysiswandi/otpflow/internal/pkg/router"
)

type uc interface {
	RegistrationInitiate(ctx context.Context, in usecase.RegistrationInitiateInput) error
	RegistrationVerify(ctx context.Context, in usecase.RegistrationVerifyInput) (*usecase.RegistrationVerifyOutput, error)
	RegistrationComplete(ctx context.Context, in usecase.RegistrationCompleteInput) (*usecase.AuthOutput, error)

	AuthenticationInitiate(ctx context.Context, in usecase.AuthenticationInitiateInput) error
	AuthenticationComplete(ctx context.Context, in usecase.AuthenticationCompleteInput) (*usecase.AuthOutput, error)

	PasswordResetInitiate(ctx context.Context, in usecase.PasswordResetInitiateInput) error
	PasswordResetVerify(ctx context.Context, in usecase.PasswordResetVerifyInput) (*usecase.PasswordResetVerifyOutput, error)
	PasswordResetComplete(ctx context.Context, in usecase.PasswordResetCompleteInput) error

	Profile(ctx context.Context) (*usecase.AccountOutput, error)
	ProfileUpdate(ctx context.Context, in usecase.ProfileUpdateInput) (*usecase.AccountOutput, error)
	AccountDelete(ctx context.Context) error
	ChangeEmailInitiate(ctx context.Context, in usecase.ChangeEmailInitiateInput) error
	ChangeEmailComplete(ctx context.Context, in usecase.ChangeEmailCompleteInput) (*usecase.AccountOutput, error)
	ChangePassword(ctx context.Context, in usecase.ChangePasswordInput) error
	Logout(ctx context.Context) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Registration
	r.POST("/api/v1/accounts/registration/initiate", end.RegistrationInitiate)
	r.POST("/api/v1/accounts/registration/verify", end.RegistrationVerify)
	r.POST("/api/v1/accounts/registration/complete", end.RegistrationComplete)

	// Authentication
	r.POST("/api/v1/accounts/authentication/initiate", end.AuthenticationInitiate)
	r.POST("/api/v1/accounts/authentication/complete", end.AuthenticationComplete)

	// Password reset
	r.POST("/api/v1/accounts/password-reset/initiate", end.PasswordResetInitiate)
	r.POST("/api/v1/accounts/password-reset/verify-otp", end.PasswordResetVerify)
	r.POST("/api/v1/accounts/password-reset/complete", end.PasswordResetComplete)

	// Account (need authenticated)
	r.GET("/api/v1/accounts/me", end.Profile)
	r.PATCH("/api/v1/accounts/me", end.ProfileUpdate)
	r.DELETE("/api/v1/accounts/me", end.AccountDelete)
	r.POST("/api/v1/accounts/me/change-email/initiate", end.ChangeEmailInitiate)
	r.POST("/api/v1/accounts/me/change-email/complete", end.ChangeEmailComplete)
	r.POST("/api/v1/accounts/me/change-password", end.ChangePassword)
	r.POST("/api/v1/accounts/logout", end.Logout)
}
