package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnake(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"Email":           "email",
		"AccountID":       "account_id",
		"HTTPServer":      "http_server",
		"ValidForMinutes": "valid_for_minutes",
		"OTP":             "otp",
		"Code2FA":         "code2_fa",
	}

	for in, want := range tests {
		assert.Equal(t, want, snake(in), in)
	}
}

type signup struct {
	Email       string `json:"email"       validate:"required,email"`
	NewPassword string `validate:"required,password"`
	OTP         string `json:"otp,omitempty" validate:"omitempty,otpcode"`
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	assert.NoError(t, v.Validate(signup{Email: "a@example.com", NewPassword: "s3cret-pass", OTP: "123456"}))

	err = v.Validate(signup{Email: "nope", NewPassword: "short", OTP: "12ab"})
	require.Error(t, err)

	var verr V10ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Values(), 3)
	assert.Contains(t, verr, "email")
	assert.Equal(t, "new_password must be 8-72 characters", verr["new_password"])
	assert.Equal(t, "otp must be a numeric code", verr["otp"])
}

func TestV10ValidationError_Error(t *testing.T) {
	assert.Equal(t, "validation error", V10ValidationError{}.Error())
	assert.JSONEq(t, `{"email":"email is required"}`, V10ValidationError{"email": "email is required"}.Error())
}
