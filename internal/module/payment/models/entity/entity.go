package entity

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

const (
	BookingPaymentPending   = "Pending"
	BookingPaymentPaid      = "Paid"
	BookingPaymentCancelled = "Cancelled"
)

const (
	PaymentStatusCreated   = "created"
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusConfirmed = "confirmed"
	PaymentStatusFailed    = "failed"
)

const (
	FundingCredit  = "credit"
	FundingDebit   = "debit"
	FundingPrepaid = "prepaid"
	FundingUnknown = "unknown"
)

type Booking struct {
	ID             uuid.UUID       `db:"id"`
	CarID          uuid.UUID       `db:"car_id"`
	UserID         uuid.UUID       `db:"user_id"`
	PickupLocation string          `db:"pickup_location"`
	DropLocation   string          `db:"drop_location"`
	StartDate      time.Time       `db:"start_date"`
	EndDate        time.Time       `db:"end_date"`
	TotalPrice     decimal.Decimal `db:"total_price"`
	PaymentStatus  string          `db:"payment_status"`
	BookingStatus  string          `db:"booking_status"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      sql.NullTime    `db:"updated_at"`
}

func (b Booking) IsPaid() bool {
	return b.PaymentStatus == BookingPaymentPaid
}

func (b Booking) IsCancelled() bool {
	return b.PaymentStatus == BookingPaymentCancelled
}

// BookingDetail is a booking joined with the car and buyer it refers to.
type BookingDetail struct {
	Booking
	CarName   string         `db:"car_name"`
	CarImage  sql.NullString `db:"car_image"`
	UserEmail sql.NullString `db:"user_email"`
}

type Payment struct {
	ID                      uuid.UUID          `db:"id"`
	BookingID               uuid.UUID          `db:"booking_id"`
	UserID                  uuid.UUID          `db:"user_id"`
	ProviderSessionID       sql.NullString     `db:"provider_session_id"`
	ProviderIntentID        sql.NullString     `db:"provider_intent_id"`
	ProviderChargeID        sql.NullString     `db:"provider_charge_id"`
	ProviderPaymentMethodID sql.NullString     `db:"provider_payment_method_id"`
	Amount                  decimal.Decimal    `db:"amount"`
	Currency                string             `db:"currency"`
	Status                  string             `db:"status"`
	FailureCode             sql.NullString     `db:"failure_code"`
	FailureMessage          sql.NullString     `db:"failure_message"`
	CardBrand               sql.NullString     `db:"card_brand"`
	CardFunding             string             `db:"card_funding"`
	CardLast4               sql.NullString     `db:"card_last4"`
	CardExpMonth            sql.NullInt64      `db:"card_exp_month"`
	CardExpYear             sql.NullInt64      `db:"card_exp_year"`
	RawPayload              types.NullJSONText `db:"raw_payload"`
	CreatedAt               time.Time          `db:"created_at"`
	UpdatedAt               sql.NullTime       `db:"updated_at"`
}

// PaymentWithBooking is a history row: the payment and a summary of its booking.
type PaymentWithBooking struct {
	Payment
	CarName        sql.NullString `db:"car_name"`
	PickupLocation sql.NullString `db:"pickup_location"`
	DropLocation   sql.NullString `db:"drop_location"`
	StartDate      sql.NullTime   `db:"start_date"`
	EndDate        sql.NullTime   `db:"end_date"`
}

func IsTerminal(status string) bool {
	return status == PaymentStatusSucceeded || status == PaymentStatusConfirmed || status == PaymentStatusFailed
}

func IsSuccess(status string) bool {
	return status == PaymentStatusSucceeded || status == PaymentStatusConfirmed
}

func statusRank(status string) int {
	switch status {
	case PaymentStatusCreated:
		return 0
	case PaymentStatusPending:
		return 1
	default:
		return 2
	}
}

type Card struct {
	Brand    string
	Funding  string
	Last4    string
	ExpMonth int64
	ExpYear  int64
}

// NormalizeLast4 keeps the trailing four digits of whatever the provider sent.
func NormalizeLast4(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return digits
}

func NormalizeFunding(s string) string {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case FundingCredit, FundingDebit, FundingPrepaid:
		return f
	default:
		return FundingUnknown
	}
}

// PaymentUpdate is the canonical change derived from one provider notification.
type PaymentUpdate struct {
	BookingID       uuid.UUID
	UserID          uuid.UUID
	SessionID       string
	IntentID        string
	ChargeID        string
	PaymentMethodID string
	// Amount is in major units; zero means the notification did not carry it.
	Amount         decimal.Decimal
	Currency       string
	Status         string
	FailureCode    string
	FailureMessage string
	Card           *Card
	RawPayload     []byte
	// CreateIfMissing is false for notifications that must never open a record.
	CreateIfMissing bool
}

func (u PaymentUpdate) HasIdentifier() bool {
	return u.SessionID != "" || u.IntentID != "" || u.ChargeID != ""
}

// SelectMatch picks the record a notification merges into when several share
// its identifiers: a successful one, then any terminal one, then the one that
// already holds the most identifiers, oldest first on ties. Identifiers owned
// by another matched record are removed from the returned update.
func SelectMatch(matches []Payment, upd PaymentUpdate) (*Payment, PaymentUpdate) {
	if len(matches) == 0 {
		return nil, upd
	}

	best := 0
	for i := 1; i < len(matches); i++ {
		if matchScore(matches[i]) > matchScore(matches[best]) {
			best = i
		}
	}

	chosen := matches[best]
	for i, other := range matches {
		if i == best {
			continue
		}
		if owns(other.ProviderSessionID, upd.SessionID) && !chosen.ProviderSessionID.Valid {
			upd.SessionID = ""
		}
		if owns(other.ProviderIntentID, upd.IntentID) && !chosen.ProviderIntentID.Valid {
			upd.IntentID = ""
		}
		if owns(other.ProviderChargeID, upd.ChargeID) && !chosen.ProviderChargeID.Valid {
			upd.ChargeID = ""
		}
	}
	return &chosen, upd
}

func matchScore(p Payment) int {
	score := 0
	switch {
	case IsSuccess(p.Status):
		score = 20
	case IsTerminal(p.Status):
		score = 10
	}
	for _, id := range []sql.NullString{p.ProviderSessionID, p.ProviderIntentID, p.ProviderChargeID} {
		if id.Valid {
			score++
		}
	}
	return score
}

func owns(id sql.NullString, v string) bool {
	return v != "" && id.Valid && id.String == v
}

type MergeResult struct {
	Created         bool
	Changed         bool
	StatusChanged   bool
	ConflictIgnored bool
	Skipped         bool
	PreviousStatus  string
}

// MergePayment applies upd to existing (nil when no record matched) and
// returns the record to persist. A successful record never changes status.
// A failed record only moves to success. Missing identifiers and card
// details are filled in whatever the status.
func MergePayment(existing *Payment, upd PaymentUpdate, now time.Time) (Payment, MergeResult) {
	if existing == nil {
		if !upd.CreateIfMissing {
			return Payment{}, MergeResult{Skipped: true}
		}
		p := Payment{
			ID:          uuid.New(),
			BookingID:   upd.BookingID,
			UserID:      upd.UserID,
			Amount:      upd.Amount,
			Currency:    strings.ToLower(upd.Currency),
			Status:      upd.Status,
			CardFunding: FundingUnknown,
			CreatedAt:   now,
		}
		fillIdentifiers(&p, upd)
		enrichCard(&p, upd.Card)
		if upd.Status == PaymentStatusFailed {
			p.FailureCode = nullString(upd.FailureCode)
			p.FailureMessage = nullString(upd.FailureMessage)
		}
		if len(upd.RawPayload) > 0 {
			p.RawPayload = types.NullJSONText{JSONText: types.JSONText(upd.RawPayload), Valid: true}
		}
		return p, MergeResult{Created: true, Changed: true, StatusChanged: true}
	}

	p := *existing
	res := MergeResult{PreviousStatus: existing.Status}

	if fillIdentifiers(&p, upd) {
		res.Changed = true
	}
	if enrichCard(&p, upd.Card) {
		res.Changed = true
	}
	if p.Amount.IsZero() && !upd.Amount.IsZero() {
		p.Amount = upd.Amount
		res.Changed = true
	}
	if p.Currency == "" && upd.Currency != "" {
		p.Currency = strings.ToLower(upd.Currency)
		res.Changed = true
	}

	switch {
	case IsSuccess(p.Status):
		// succeeded and confirmed describe the same outcome
		if upd.Status == PaymentStatusFailed {
			res.ConflictIgnored = true
		}
	case p.Status == PaymentStatusFailed:
		// a declined attempt is retried on the same intent
		if IsSuccess(upd.Status) {
			advance(&p, upd, &res)
		}
	case IsTerminal(upd.Status) || statusRank(upd.Status) > statusRank(p.Status):
		advance(&p, upd, &res)
	}

	if res.Changed {
		p.UpdatedAt = sql.NullTime{Time: now, Valid: true}
	}
	return p, res
}

func advance(p *Payment, upd PaymentUpdate, res *MergeResult) {
	p.Status = upd.Status
	res.StatusChanged = true
	res.Changed = true
	if upd.Status == PaymentStatusFailed {
		p.FailureCode = nullString(upd.FailureCode)
		p.FailureMessage = nullString(upd.FailureMessage)
	} else {
		p.FailureCode = sql.NullString{}
		p.FailureMessage = sql.NullString{}
	}
	if len(upd.RawPayload) > 0 {
		p.RawPayload = types.NullJSONText{JSONText: types.JSONText(upd.RawPayload), Valid: true}
	}
}

func fillIdentifiers(p *Payment, upd PaymentUpdate) bool {
	changed := false
	fill := func(dst *sql.NullString, v string) {
		if v != "" && !dst.Valid {
			*dst = sql.NullString{String: v, Valid: true}
			changed = true
		}
	}
	fill(&p.ProviderSessionID, upd.SessionID)
	fill(&p.ProviderIntentID, upd.IntentID)
	fill(&p.ProviderChargeID, upd.ChargeID)
	fill(&p.ProviderPaymentMethodID, upd.PaymentMethodID)
	return changed
}

// enrichCard fills card fields that are still empty. Known values are never
// replaced by less specific ones.
func enrichCard(p *Payment, c *Card) bool {
	if c == nil {
		return false
	}
	changed := false
	if c.Brand != "" && !p.CardBrand.Valid {
		p.CardBrand = sql.NullString{String: strings.ToLower(c.Brand), Valid: true}
		changed = true
	}
	if f := NormalizeFunding(c.Funding); f != FundingUnknown && (p.CardFunding == "" || p.CardFunding == FundingUnknown) {
		p.CardFunding = f
		changed = true
	}
	if p.CardFunding == "" {
		p.CardFunding = FundingUnknown
	}
	if last4 := NormalizeLast4(c.Last4); last4 != "" && !p.CardLast4.Valid {
		p.CardLast4 = sql.NullString{String: last4, Valid: true}
		changed = true
	}
	if c.ExpMonth > 0 && !p.CardExpMonth.Valid {
		p.CardExpMonth = sql.NullInt64{Int64: c.ExpMonth, Valid: true}
		changed = true
	}
	if c.ExpYear > 0 && !p.CardExpYear.Valid {
		p.CardExpYear = sql.NullInt64{Int64: c.ExpYear, Valid: true}
		changed = true
	}
	return changed
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
