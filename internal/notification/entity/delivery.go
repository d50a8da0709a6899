package entity

import (
	"time"

	"github.com/shandysiswandi/otpflow/internal/shared/event"
)

// Delivery is one attempt to hand a code to its recipient. The code itself is
// never stored.
type Delivery struct {
	ID            int64
	Purpose       event.OTPPurpose
	Channel       Channel
	Recipient     string
	Status        DeliveryStatus
	Attempts      int
	ErrorMessage  string
	CorrelationID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type UpdateDelivery struct {
	ID           int64
	Status       DeliveryStatus
	Attempts     int
	ErrorMessage string
	UpdatedAt    time.Time
}

// OTPMail is the data a purpose template is rendered with.
type OTPMail struct {
	Purpose         event.OTPPurpose
	Name            string
	Code            string
	ValidForMinutes int64
}
