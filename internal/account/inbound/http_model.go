package inbound

import (
	"strconv"
	"time"

	"github.com/shandysiswandi/otpflow/internal/account/entity"
	"github.com/shandysiswandi/otpflow/internal/account/usecase"
)

type OTPSentResponse struct{}

func (OTPSentResponse) Message() string { return entity.MsgOTPSent }

type EmailRequest struct {
	Email string `json:"email"`
}

type EmailOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type RegistrationVerifyResponse struct {
	PasswordSetToken string `json:"password_set_token"`
}

type RegistrationCompleteRequest struct {
	PasswordSetToken string `json:"password_set_token"`
	Password         string `json:"password"`
	Name             string `json:"name"`
}

type AuthenticationInitiateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PasswordResetVerifyResponse struct {
	PasswordResetToken string `json:"password_reset_token"`
}

type PasswordResetCompleteRequest struct {
	PasswordResetToken string `json:"password_reset_token"`
	NewPassword        string `json:"new_password"`
}

type PasswordUpdatedResponse struct{}

func (PasswordUpdatedResponse) Message() string { return entity.MsgPasswordUpdated }

type AccountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	Account   AccountResponse `json:"account"`
	AuthToken string          `json:"auth_token"`
}

type ProfileUpdateRequest struct {
	Name string `json:"name"`
}

type ChangeEmailInitiateRequest struct {
	NewEmail string `json:"new_email"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type LogoutResponse struct{}

func (LogoutResponse) Message() string { return entity.MsgLoggedOut }

func toAccountResponse(out usecase.AccountOutput) AccountResponse {
	return AccountResponse{
		ID:        strconv.FormatInt(out.ID, 10),
		Email:     out.Email,
		Name:      out.Name,
		IsActive:  out.IsActive,
		CreatedAt: out.CreatedAt,
	}
}

func toAuthResponse(out *usecase.AuthOutput) AuthResponse {
	return AuthResponse{
		Account:   toAccountResponse(out.Account),
		AuthToken: out.AuthToken,
	}
}
