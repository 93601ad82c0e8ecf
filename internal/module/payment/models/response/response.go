package response

type UserServiceValidate struct {
	IsValid      bool   `json:"is_valid"`
	UserID       string `json:"user_id"`
	EmailAddress string `json:"email_address"`
}

type CheckoutSession struct {
	URL       string `json:"sessionUrl"`
	SessionID string `json:"sessionId"`
}

type SessionSnapshot struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	AmountTotal   string `json:"amountTotal"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	PaymentIntent string `json:"paymentIntent,omitempty"`
}

type BookingSummary struct {
	ID             string `json:"id"`
	CarID          string `json:"carId"`
	UserID         string `json:"userId"`
	PickupLocation string `json:"pickupLocation"`
	DropLocation   string `json:"dropLocation"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	TotalPrice     string `json:"totalPrice"`
	PaymentStatus  string `json:"paymentStatus"`
	BookingStatus  string `json:"bookingStatus"`
}

type SessionStatus struct {
	Session SessionSnapshot `json:"session"`
	Booking *BookingSummary `json:"booking"`
}

type CardDetails struct {
	Brand    string `json:"brand,omitempty"`
	Funding  string `json:"funding"`
	Last4    string `json:"last4,omitempty"`
	ExpMonth int64  `json:"expMonth,omitempty"`
	ExpYear  int64  `json:"expYear,omitempty"`
}

type HistoryBooking struct {
	ID             string `json:"id"`
	CarName        string `json:"carName,omitempty"`
	PickupLocation string `json:"pickupLocation,omitempty"`
	DropLocation   string `json:"dropLocation,omitempty"`
	StartDate      string `json:"startDate,omitempty"`
	EndDate        string `json:"endDate,omitempty"`
}

type PaymentHistory struct {
	ID             string         `json:"id"`
	Booking        HistoryBooking `json:"booking"`
	SessionID      string         `json:"sessionId,omitempty"`
	IntentID       string         `json:"paymentIntentId,omitempty"`
	Amount         string         `json:"amount"`
	Currency       string         `json:"currency"`
	Status         string         `json:"status"`
	FailureMessage string         `json:"failureMessage,omitempty"`
	Card           CardDetails    `json:"card"`
	CreatedAt      string         `json:"createdAt"`
}

type PaymentStatus struct {
	BookingID     string `json:"bookingId"`
	PaymentStatus string `json:"paymentStatus"`
	BookingStatus string `json:"bookingStatus"`
}

// Reconciliation reports what a single notification did.
type Reconciliation struct {
	BookingID       string `json:"bookingId,omitempty"`
	PaymentID       string `json:"paymentId,omitempty"`
	Status          string `json:"status,omitempty"`
	BookingPaid     bool   `json:"bookingPaid"`
	Ignored         bool   `json:"ignored"`
	Reason          string `json:"reason,omitempty"`
	ConflictIgnored bool   `json:"conflictIgnored,omitempty"`
}
