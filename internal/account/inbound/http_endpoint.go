package inbound

import (
	"github.com/shandysiswandi/otpflow/internal/account/usecase"
	"github.com/shandysiswandi/otpflow/internal/pkg/router"
)

// HTTPEndpoint exposes the OTP backed account flows over HTTP.
type HTTPEndpoint struct {
	uc uc
}

func clientMeta(r *router.Request) usecase.ClientMeta {
	return usecase.ClientMeta{IP: r.ClientIP(), UserAgent: r.UserAgent()}
}

// RegistrationInitiate mails a registration code.
// @Summary Start registration
// @Description Sends a one-time password to an email that has no account yet.
// @Tags Accounts, Registration
// @Accept json
// @Produce json
// @Param request body EmailRequest true "Registration payload"
// @Success 200 {object} router.successResponse "OTP sent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 409 {object} router.errorResponse "Email already registered"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/accounts/registration/initiate [post]
func (h *HTTPEndpoint) RegistrationInitiate(r *router.Request) (any, error) {
	var req EmailRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.RegistrationInitiate(r.Context(), usecase.RegistrationInitiateInput{
		Email: req.Email,
		IP:    r.ClientIP(),
	}); err != nil {
		return nil, err
	}

	return OTPSentResponse{}, nil
}

// RegistrationVerify exchanges a registration code for a password-set token.
// @Summary Verify registration code
// @Tags Accounts, Registration
// @Accept json
// @Produce json
// @Param request body EmailOTPRequest true "Verification payload"
// @Success 200 {object} router.successResponse{data=RegistrationVerifyResponse} "Password-set token"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid OTP token"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/accounts/registration/verify [post]
func (h *HTTPEndpoint) RegistrationVerify(r *router.Request) (any, error) {
	var req EmailOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RegistrationVerify(r.Context(), usecase.RegistrationVerifyInput{
		Email: req.Email,
		OTP:   req.OTP,
	})
	if err != nil {
		return nil, err
	}

	return RegistrationVerifyResponse{PasswordSetToken: resp.PasswordSetToken}, nil
}

// RegistrationComplete creates the account and signs the caller in.
// @Summary Complete registration
// @Tags Accounts, Registration
// @Accept json
// @Produce json
// @Param request body RegistrationCompleteRequest true "Completion payload"
// @Success 200 {object} router.successResponse{data=AuthResponse} "Account and auth token"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid or expired token"
// @Failure 409 {object} router.errorResponse "Email already registered"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/accounts/registration/complete [post]
func (h *HTTPEndpoint) RegistrationComplete(r *router.Request) (any, error) {
	var req RegistrationCompleteRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RegistrationComplete(r.Context(), usecase.RegistrationCompleteInput{
		PasswordSetToken: req.PasswordSetToken,
		Password:         req.Password,
		Name:             req.Name,
		Meta:             clientMeta(r),
	})
	if err != nil {
		return nil, err
	}

	return toAuthResponse(resp), nil
}

// AuthenticationInitiate checks credentials and mails a login code.
// @Summary Start login
// @Tags Accounts, Authentication
// @Accept json
// @Produce json
// @Param request body AuthenticationInitiateRequest true "Credentials"
// @Success 200 {object} router.successResponse "OTP sent"
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Failure 403 {object} router.errorResponse "Account inactive"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Router /api/v1/accounts/authentication/initiate [post]
func (h *HTTPEndpoint) AuthenticationInitiate(r *router.Request) (any, error) {
	var req AuthenticationInitiateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.AuthenticationInitiate(r.Context(), usecase.AuthenticationInitiateInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       r.ClientIP(),
	}); err != nil {
		return nil, err
	}

	return OTPSentResponse{}, nil
}

// AuthenticationComplete verifies the login code and opens a session.
// @Summary Complete login
// @Tags Accounts, Authentication
// @Accept json
// @Produce json
// @Param request body EmailOTPRequest true "Verification payload"
// @Success 200 {object} router.successResponse{data=AuthResponse} "Account and auth token"
// @Failure 401 {object} router.errorResponse "Invalid OTP token"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Router /api/v1/accounts/authentication/complete [post]
func (h *HTTPEndpoint) AuthenticationComplete(r *router.Request) (any, error) {
	var req EmailOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.AuthenticationComplete(r.Context(), usecase.AuthenticationCompleteInput{
		Email: req.Email,
		OTP:   req.OTP,
		Meta:  clientMeta(r),
	})
	if err != nil {
		return nil, err
	}

	return toAuthResponse(resp), nil
}

// PasswordResetInitiate mails a password reset code.
// @Summary Start password reset
// @Tags Accounts, Password
// @Accept json
// @Produce json
// @Param request body EmailRequest true "Account email"
// @Success 200 {object} router.successResponse "OTP sent"
// @Failure 404 {object} router.errorResponse "Account not found"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Router /api/v1/accounts/password-reset/initiate [post]
func (h *HTTPEndpoint) PasswordResetInitiate(r *router.Request) (any, error) {
	var req EmailRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordResetInitiate(r.Context(), usecase.PasswordResetInitiateInput{
		Email: req.Email,
		IP:    r.ClientIP(),
	}); err != nil {
		return nil, err
	}

	return OTPSentResponse{}, nil
}

// PasswordResetVerify exchanges a reset code for a password-reset token.
// @Summary Verify password reset code
// @Tags Accounts, Password
// @Accept json
// @Produce json
// @Param request body EmailOTPRequest true "Verification payload"
// @Success 200 {object} router.successResponse{data=PasswordResetVerifyResponse} "Password-reset token"
// @Failure 401 {object} router.errorResponse "Invalid OTP token"
// @Router /api/v1/accounts/password-reset/verify-otp [post]
func (h *HTTPEndpoint) PasswordResetVerify(r *router.Request) (any, error) {
	var req EmailOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.PasswordResetVerify(r.Context(), usecase.PasswordResetVerifyInput{
		Email: req.Email,
		OTP:   req.OTP,
	})
	if err != nil {
		return nil, err
	}

	return PasswordResetVerifyResponse{PasswordResetToken: resp.PasswordResetToken}, nil
}

// PasswordResetComplete sets a new password and signs out every session.
// @Summary Complete password reset
// @Tags Accounts, Password
// @Accept json
// @Produce json
// @Param request body PasswordResetCompleteRequest true "New password"
// @Success 200 {object} router.successResponse "Password updated"
// @Failure 401 {object} router.errorResponse "Invalid or expired token"
// @Router /api/v1/accounts/password-reset/complete [post]
func (h *HTTPEndpoint) PasswordResetComplete(r *router.Request) (any, error) {
	var req PasswordResetCompleteRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordResetComplete(r.Context(), usecase.PasswordResetCompleteInput{
		PasswordResetToken: req.PasswordResetToken,
		NewPassword:        req.NewPassword,
	}); err != nil {
		return nil, err
	}

	return PasswordUpdatedResponse{}, nil
}

// Profile returns the signed in account.
// @Summary Get account
// @Tags Accounts, Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=AccountResponse} "Account"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Router /api/v1/accounts/me [get]
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return toAccountResponse(*resp), nil
}

// @Summary Update account
// @Tags Accounts, Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProfileUpdateRequest true "Profile fields"
// @Success 200 {object} router.successResponse{data=AccountResponse} "Account"
// @Router /api/v1/accounts/me [patch]
func (h *HTTPEndpoint) ProfileUpdate(r *router.Request) (any, error) {
	var req ProfileUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.ProfileUpdate(r.Context(), usecase.ProfileUpdateInput{Name: req.Name})
	if err != nil {
		return nil, err
	}

	return toAccountResponse(*resp), nil
}

// @Summary Delete account
// @Tags Accounts, Profile
// @Security BearerAuth
// @Success 204 "No Content"
// @Router /api/v1/accounts/me [delete]
func (h *HTTPEndpoint) AccountDelete(r *router.Request) (any, error) {
	if err := h.uc.AccountDelete(r.Context()); err != nil {
		return nil, err
	}

	return nil, nil
}

// ChangeEmailInitiate mails a code to the new address.
// @Summary Start email change
// @Tags Accounts, Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangeEmailInitiateRequest true "New email"
// @Success 200 {object} router.successResponse "OTP sent"
// @Failure 409 {object} router.errorResponse "Email already registered"
// @Router /api/v1/accounts/me/change-email/initiate [post]
func (h *HTTPEndpoint) ChangeEmailInitiate(r *router.Request) (any, error) {
	var req ChangeEmailInitiateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.ChangeEmailInitiate(r.Context(), usecase.ChangeEmailInitiateInput{
		NewEmail: req.NewEmail,
		IP:       r.ClientIP(),
	}); err != nil {
		return nil, err
	}

	return OTPSentResponse{}, nil
}

// @Summary Complete email change
// @Tags Accounts, Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body EmailOTPRequest true "New email and code"
// @Success 200 {object} router.successResponse{data=AccountResponse} "Account"
// @Failure 401 {object} router.errorResponse "Invalid OTP token"
// @Router /api/v1/accounts/me/change-email/complete [post]
func (h *HTTPEndpoint) ChangeEmailComplete(r *router.Request) (any, error) {
	var req EmailOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.ChangeEmailComplete(r.Context(), usecase.ChangeEmailCompleteInput{
		Email: req.Email,
		OTP:   req.OTP,
	})
	if err != nil {
		return nil, err
	}

	return toAccountResponse(*resp), nil
}

// @Summary Change password
// @Tags Accounts, Password
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Old and new password"
// @Success 200 {object} router.successResponse "Password updated"
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Router /api/v1/accounts/me/change-password [post]
func (h *HTTPEndpoint) ChangePassword(r *router.Request) (any, error) {
	var req ChangePasswordRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.ChangePassword(r.Context(), usecase.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	}); err != nil {
		return nil, err
	}

	return PasswordUpdatedResponse{}, nil
}

// Logout revokes every session of the account.
// @Summary Logout everywhere
// @Tags Accounts, Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse "Logged out"
// @Router /api/v1/accounts/logout [post]
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	if err := h.uc.Logout(r.Context()); err != nil {
		return nil, err
	}

	return LogoutResponse{}, nil
}
