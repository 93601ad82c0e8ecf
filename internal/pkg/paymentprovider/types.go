package paymentprovider

import (
	"strings"
	"time"
)

// Metadata is the booking linkage attached to every session and intent at
// checkout time. It is the only way asynchronous notifications find their booking.
type Metadata struct {
	BookingID string
	UserID    string
}

const (
	MetadataBookingID = "bookingId"
	MetadataUserID    = "userId"
)

func (m Metadata) Map() map[string]string {
	out := map[string]string{MetadataBookingID: m.BookingID}
	if m.UserID != "" {
		out[MetadataUserID] = m.UserID
	}
	return out
}

func metadataFrom(raw map[string]string) Metadata {
	md := Metadata{
		BookingID: strings.TrimSpace(raw[MetadataBookingID]),
		UserID:    strings.TrimSpace(raw[MetadataUserID]),
	}
	if md.BookingID == "" {
		md.BookingID = strings.TrimSpace(raw["booking_id"])
	}
	if md.UserID == "" {
		md.UserID = strings.TrimSpace(raw["user_id"])
	}
	return md
}

// Card is the masked card descriptor. It never carries more than the last four digits.
type Card struct {
	Brand    string
	Funding  string
	Last4    string
	ExpMonth int64
	ExpYear  int64
}

type Charge struct {
	ID              string
	IntentID        string
	PaymentMethodID string
	Status          string
	Paid            bool
	Card            *Card
	Metadata        Metadata
}

const (
	IntentStatusSucceeded = "succeeded"
	IntentStatusCanceled  = "canceled"
)

type PaymentIntent struct {
	ID             string
	Status         string
	Amount         int64
	Currency       string
	Metadata       Metadata
	Charge         *Charge
	FailureCode    string
	FailureMessage string
}

func (pi PaymentIntent) Succeeded() bool {
	return pi.Status == IntentStatusSucceeded
}

const (
	SessionStatusOpen     = "open"
	SessionStatusComplete = "complete"
	SessionStatusExpired  = "expired"

	SessionPaymentPaid              = "paid"
	SessionPaymentUnpaid            = "unpaid"
	SessionPaymentNoPaymentRequired = "no_payment_required"
)

type Session struct {
	ID            string
	URL           string
	Status        string
	PaymentStatus string
	Currency      string
	AmountTotal   int64
	CustomerEmail string
	IntentID      string
	// Intent is set only when the provider expanded the payment intent.
	Intent    *PaymentIntent
	Metadata  Metadata
	ExpiresAt time.Time
}

func (s Session) Paid() bool {
	return s.PaymentStatus == SessionPaymentPaid || s.PaymentStatus == SessionPaymentNoPaymentRequired
}

func (s Session) Expired() bool {
	return s.Status == SessionStatusExpired
}

// CheckoutParams describes a hosted checkout for a single booking.
type CheckoutParams struct {
	Metadata      Metadata
	AmountMinor   int64
	Currency      string
	ProductName   string
	Description   string
	Images        []string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	ExpiresAt     time.Time
}
