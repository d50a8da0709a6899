package event

const OTPRequestedDestination string = "otp_requested"
const OTPRequestedConsumerNotification string = "otp_requested_notification"

// OTPPurpose names the flow a code was issued for; it selects the mail template.
type OTPPurpose string

const (
	OTPPurposeRegistration   OTPPurpose = "registration"
	OTPPurposeAuthentication OTPPurpose = "authentication"
	OTPPurposePasswordReset  OTPPurpose = "password_reset"
	OTPPurposeEmailChange    OTPPurpose = "email_change"
)

func (p OTPPurpose) Valid() bool {
	switch p {
	case OTPPurposeRegistration, OTPPurposeAuthentication, OTPPurposePasswordReset, OTPPurposeEmailChange:
		return true
	default:
		return false
	}
}

// OTPRequestedMessage carries a freshly issued code to the mail sender.
type OTPRequestedMessage struct {
	Purpose         OTPPurpose `json:"purpose"`
	Email           string     `json:"email"`
	Name            string     `json:"name,omitempty"`
	AccountID       int64      `json:"account_id,omitempty"`
	Code            string     `json:"code"`
	ValidForMinutes int64      `json:"valid_for_minutes"`
}
