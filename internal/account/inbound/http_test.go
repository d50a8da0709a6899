package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otpflow/internal/account/entity"
	"github.com/shandysiswandi/otpflow/internal/account/usecase"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/jwt"
	"github.com/shandysiswandi/otpflow/internal/pkg/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJWT struct{}

func (fakeJWT) Generate(jwt.GenerateInput) (string, error) { return "token", nil }

func (fakeJWT) Verify(tokenStr string) (jwt.Claims, error) {
	if tokenStr != "good" {
		return jwt.Claims{}, jwt.ErrInvalidToken
	}
	return jwt.Claims{AccountID: 42, Email: "a@example.com"}, nil
}

type fixedID string

func (f fixedID) Generate() string { return string(f) }

var testAccount = usecase.AccountOutput{
	ID:        42,
	Email:     "a@example.com",
	Name:      "Ana",
	IsActive:  true,
	CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
}

type fakeUC struct {
	err error

	registrationInitiate usecase.RegistrationInitiateInput
	registrationVerify   usecase.RegistrationVerifyInput
	authComplete         usecase.AuthenticationCompleteInput
	profileUpdate        usecase.ProfileUpdateInput
	changePassword       usecase.ChangePasswordInput
	deleted              bool
	loggedOut            bool
}

func (f *fakeUC) RegistrationInitiate(_ context.Context, in usecase.RegistrationInitiateInput) error {
	f.registrationInitiate = in
	return f.err
}

func (f *fakeUC) RegistrationVerify(_ context.Context, in usecase.RegistrationVerifyInput) (*usecase.RegistrationVerifyOutput, error) {
	f.registrationVerify = in
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.RegistrationVerifyOutput{PasswordSetToken: "set-token"}, nil
}

func (f *fakeUC) RegistrationComplete(context.Context, usecase.RegistrationCompleteInput) (*usecase.AuthOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.AuthOutput{Account: testAccount, AuthToken: "jwt"}, nil
}

func (f *fakeUC) AuthenticationInitiate(context.Context, usecase.AuthenticationInitiateInput) error {
	return f.err
}

func (f *fakeUC) AuthenticationComplete(_ context.Context, in usecase.AuthenticationCompleteInput) (*usecase.AuthOutput, error) {
	f.authComplete = in
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.AuthOutput{Account: testAccount, AuthToken: "jwt"}, nil
}

func (f *fakeUC) PasswordResetInitiate(context.Context, usecase.PasswordResetInitiateInput) error {
	return f.err
}

func (f *fakeUC) PasswordResetVerify(context.Context, usecase.PasswordResetVerifyInput) (*usecase.PasswordResetVerifyOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.PasswordResetVerifyOutput{PasswordResetToken: "reset-token"}, nil
}

func (f *fakeUC) PasswordResetComplete(context.Context, usecase.PasswordResetCompleteInput) error {
	return f.err
}

func (f *fakeUC) Profile(context.Context) (*usecase.AccountOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := testAccount
	return &out, nil
}

func (f *fakeUC) ProfileUpdate(_ context.Context, in usecase.ProfileUpdateInput) (*usecase.AccountOutput, error) {
	f.profileUpdate = in
	out := testAccount
	out.Name = in.Name
	return &out, f.err
}

func (f *fakeUC) AccountDelete(context.Context) error {
	f.deleted = true
	return f.err
}

func (f *fakeUC) ChangeEmailInitiate(context.Context, usecase.ChangeEmailInitiateInput) error {
	return f.err
}

func (f *fakeUC) ChangeEmailComplete(context.Context, usecase.ChangeEmailCompleteInput) (*usecase.AccountOutput, error) {
	out := testAccount
	return &out, f.err
}

func (f *fakeUC) ChangePassword(_ context.Context, in usecase.ChangePasswordInput) error {
	f.changePassword = in
	return f.err
}

func (f *fakeUC) Logout(context.Context) error {
	f.loggedOut = true
	return f.err
}

func newTestServer(uc *fakeUC) *router.Router {
	r := router.NewRouter(router.Config{
		UUID:       fixedID("cid-1"),
		JWT:        fakeJWT{},
		Instrument: instrument.NewNoop(),
	})
	RegisterHTTPEndpoint(r, uc)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHTTP_RegistrationInitiate(t *testing.T) {
	// Arrange
	uc := &fakeUC{}
	srv := newTestServer(uc)

	// Act
	rec, body := do(t, srv, http.MethodPost, "/api/v1/accounts/registration/initiate", `{"email":"a@example.com"}`, "")

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.MsgOTPSent, body["message"])
	assert.Equal(t, "a@example.com", uc.registrationInitiate.Email)
}

func TestHTTP_RegistrationVerify(t *testing.T) {
	uc := &fakeUC{}
	srv := newTestServer(uc)

	rec, body := do(t, srv, http.MethodPost, "/api/v1/accounts/registration/verify", `{"email":"a@example.com","otp":"123456"}`, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "123456", uc.registrationVerify.OTP)
	data := body["data"].(map[string]any)
	assert.Equal(t, "set-token", data["password_set_token"])
}

func TestHTTP_BusinessErrorEnvelope(t *testing.T) {
	uc := &fakeUC{err: goerror.NewBusiness(entity.MsgInvalidOTP, goerror.CodeUnauthorized)}
	srv := newTestServer(uc)

	rec, body := do(t, srv, http.MethodPost, "/api/v1/accounts/authentication/complete", `{"email":"a@example.com","otp":"000000"}`, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, entity.MsgInvalidOTP, body["message"])
}

func TestHTTP_TooManyRequests(t *testing.T) {
	uc := &fakeUC{err: goerror.NewBusiness(entity.MsgTooManyRequests, goerror.CodeTooManyRequest)}
	srv := newTestServer(uc)

	rec, body := do(t, srv, http.MethodPost, "/api/v1/accounts/password-reset/initiate", `{"email":"a@example.com"}`, "")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, entity.MsgTooManyRequests, body["message"])
}

func TestHTTP_AuthenticationComplete(t *testing.T) {
	uc := &fakeUC{}
	srv := newTestServer(uc)

	rec, body := do(t, srv, http.MethodPost, "/api/v1/accounts/authentication/complete", `{"email":"a@example.com","otp":"123456"}`, "")

	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "jwt", data["auth_token"])
	account := data["account"].(map[string]any)
	assert.Equal(t, "42", account["id"])
	assert.Equal(t, "a@example.com", account["email"])
}

func TestHTTP_MeRequiresToken(t *testing.T) {
	srv := newTestServer(&fakeUC{})

	rec, _ := do(t, srv, http.MethodGet, "/api/v1/accounts/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, srv, http.MethodGet, "/api/v1/accounts/me", "", "bad")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHTTP_Me(t *testing.T) {
	uc := &fakeUC{}
	srv := newTestServer(uc)

	rec, body := do(t, srv, http.MethodGet, "/api/v1/accounts/me", "", "good")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ana", body["data"].(map[string]any)["name"])

	rec, body = do(t, srv, http.MethodPatch, "/api/v1/accounts/me", `{"name":"Bea"}`, "good")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bea", uc.profileUpdate.Name)
	assert.Equal(t, "Bea", body["data"].(map[string]any)["name"])

	rec, _ = do(t, srv, http.MethodDelete, "/api/v1/accounts/me", "", "good")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, uc.deleted)
}

func TestHTTP_ChangePasswordAndLogout(t *testing.T) {
	uc := &fakeUC{}
	srv := newTestServer(uc)

	rec, body := do(t, srv, http.MethodPost, "/api/v1/accounts/me/change-password", `{"old_password":"Old-pass1!","new_password":"New-pass1!"}`, "good")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.MsgPasswordUpdated, body["message"])
	assert.Equal(t, "Old-pass1!", uc.changePassword.OldPassword)
	assert.Equal(t, "New-pass1!", uc.changePassword.NewPassword)

	rec, body = do(t, srv, http.MethodPost, "/api/v1/accounts/logout", "", "good")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.MsgLoggedOut, body["message"])
	assert.True(t, uc.loggedOut)
}
