package entity

// User-visible messages shared by the flows. Rejections never reveal whether a
// code was wrong, missing, expired or already used.
const (
	MsgOTPSent                = "OTP sent."
	MsgInvalidOTP             = "Invalid OTP token."
	MsgInvalidOrExpiredToken  = "Invalid or expired token."
	MsgInvalidCredentials     = "Invalid email or password."
	MsgEmailAlreadyRegistered = "Email already registered."
	MsgAccountNotFound        = "Account not found."
	MsgAccountInactive        = "Account is inactive."
	MsgTooManyRequests        = "Too many requests. Please try again later."
	MsgAuthRequired           = "Authentication required."
	MsgSessionExpired         = "Session expired."
	MsgPasswordUpdated        = "Password updated."
	MsgLoggedOut              = "Logged out."
)
