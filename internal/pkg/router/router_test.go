package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/jwt"
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

type initiateResponse struct{}

func (initiateResponse) Message() string { return "OTP sent." }

func newTestRouter() *Router {
	return NewRouter(Config{
		UUID:       fixedID("cid-1"),
		JWT:        fakeJWT{},
		Instrument: instrument.NewNoop(),
	})
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_PublicEndpoint(t *testing.T) {
	r := newTestRouter()
	r.POST("/api/v1/accounts/registration/initiate", func(req *Request) (any, error) {
		var in struct {
			Email string `json:"email"`
		}
		if err := req.DecodeBody(&in); err != nil {
			return nil, err
		}
		return initiateResponse{}, nil
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/registration/initiate", strings.NewReader(`{"email":"a@example.com"}`))
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cid-1", rec.Header().Get(HeaderCorrelationID))
	assert.Equal(t, "OTP sent.", decode(t, rec)["message"])
}

func TestRouter_InvalidBody(t *testing.T) {
	r := newTestRouter()
	r.POST("/api/v1/accounts/registration/initiate", func(req *Request) (any, error) {
		var in struct {
			Email string `json:"email"`
		}
		return nil, req.DecodeBody(&in)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/registration/initiate", strings.NewReader(`{"mail":1}`))
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ProtectedEndpoint(t *testing.T) {
	r := newTestRouter()
	r.GET("/api/v1/accounts/account", func(req *Request) (any, error) {
		clm := jwt.GetAuth(req.Context())
		if clm == nil {
			return nil, errors.New("missing claims")
		}
		return map[string]int64{"id": clm.AccountID}, nil
	})

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/account", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/account", nil)
		req.Header.Set("Authorization", "Bearer nope")
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid or expired token", decode(t, rec)["message"])
	})

	t.Run("valid token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/account", nil)
		req.Header.Set("Authorization", "Bearer good")
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		data := decode(t, rec)["data"].(map[string]any)
		assert.InDelta(t, 42, data["id"], 0)
	})
}

func TestRouter_ErrorCodec(t *testing.T) {
	r := newTestRouter()
	r.POST("/api/v1/accounts/authentication/complete", func(*Request) (any, error) {
		return nil, goerror.NewBusiness("Too many attempts.", goerror.CodeTooManyRequest)
	})
	r.POST("/api/v1/accounts/password-reset/initiate", func(*Request) (any, error) {
		return nil, context.DeadlineExceeded
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/accounts/authentication/complete", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many attempts.", decode(t, rec)["message"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/accounts/password-reset/initiate", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequest_ClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	assert.Equal(t, "10.0.0.7", (&Request{Request: req}).ClientIP())

	req.RemoteAddr = "10.0.0.8"
	assert.Equal(t, "10.0.0.8", (&Request{Request: req}).ClientIP())
}
