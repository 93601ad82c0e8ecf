package request

import "github.com/goccy/go-json"

// ClientSessionEcho is posted by the browser after the provider redirect.
type ClientSessionEcho struct {
	Session json.RawMessage  `json:"session" validate:"required"`
	Booking *EchoBookingInfo `json:"booking"`
}

type EchoBookingInfo struct {
	ID string `json:"_id"`
	// BookingID is accepted as an alternative spelling of ID.
	BookingID string `json:"bookingId"`
}

func (b *EchoBookingInfo) Identifier() string {
	if b == nil {
		return ""
	}
	if b.ID != "" {
		return b.ID
	}
	return b.BookingID
}

// ReconcileSessionTask is the asynq payload of the scheduled session sweep.
type ReconcileSessionTask struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
	SessionID string `json:"session_id" validate:"required"`
}

type PoisonedQueue struct {
	TopicTarget string      `json:"topic_target" validate:"required"`
	ErrorMsg    string      `json:"error_msg" validate:"required"`
	Payload     interface{} `json:"payload" validate:"required"`
}

type PaymentStatusChanged struct {
	BookingID      string `json:"booking_id"`
	PaymentID      string `json:"payment_id"`
	UserID         string `json:"user_id"`
	PreviousStatus string `json:"previous_status,omitempty"`
	Status         string `json:"status"`
	BookingPaid    bool   `json:"booking_paid"`
	Source         string `json:"source"`
	OccurredAt     string `json:"occurred_at"`
}
