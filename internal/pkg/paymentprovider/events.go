package paymentprovider

import (
	"encoding/json"

	"rental-payment-service/internal/pkg/errors"

	"github.com/stripe/stripe-go/v74"
)

const (
	EventSessionCompleted      = "checkout.session.completed"
	EventSessionAsyncSucceeded = "checkout.session.async_payment_succeeded"
	EventSessionAsyncFailed    = "checkout.session.async_payment_failed"
	EventSessionExpired        = "checkout.session.expired"
	EventIntentSucceeded       = "payment_intent.succeeded"
	EventIntentFailed          = "payment_intent.payment_failed"
	EventChargeSucceeded       = "charge.succeeded"
)

// Envelope is common to every event. Raw holds the provider's data object as
// received and is kept for audit only.
type Envelope struct {
	ID   string
	Type string
	Raw  []byte
}

func (e Envelope) Meta() Envelope { return e }

// Event is one of the variants below. The set is closed.
type Event interface {
	Meta() Envelope
	isEvent()
}

type SessionCompleted struct {
	Envelope
	Session Session
}

type SessionAsyncSucceeded struct {
	Envelope
	Session Session
}

type SessionAsyncFailed struct {
	Envelope
	Session Session
}

type SessionExpired struct {
	Envelope
	Session Session
}

type IntentSucceeded struct {
	Envelope
	Intent PaymentIntent
}

type IntentFailed struct {
	Envelope
	Intent PaymentIntent
}

type ChargeSucceeded struct {
	Envelope
	Charge Charge
}

// SessionEcho is a session state obtained outside the webhook feed: posted by
// the browser after redirect, or fetched by the scheduled sweep.
type SessionEcho struct {
	Envelope
	Session Session
	// BookingID comes from the booking object embedded in a client echo and is
	// used only when the session metadata lacks one.
	BookingID string
}

// Unhandled is any event type the reconciler does not act on.
type Unhandled struct {
	Envelope
}

func (SessionCompleted) isEvent()      {}
func (SessionAsyncSucceeded) isEvent() {}
func (SessionAsyncFailed) isEvent()    {}
func (SessionExpired) isEvent()        {}
func (IntentSucceeded) isEvent()       {}
func (IntentFailed) isEvent()          {}
func (ChargeSucceeded) isEvent()       {}
func (SessionEcho) isEvent()           {}
func (Unhandled) isEvent()             {}

// DecodeEvent turns a provider event body into its variant. It performs no
// signature check; callers that receive untrusted bytes use ParseWebhook.
func DecodeEvent(payload []byte) (Event, error) {
	var ev stripe.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, errors.BadRequest("malformed provider event")
	}
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return nil, errors.BadRequest("provider event without data object")
	}

	env := Envelope{ID: ev.ID, Type: string(ev.Type), Raw: ev.Data.Raw}

	switch env.Type {
	case EventSessionCompleted, EventSessionAsyncSucceeded, EventSessionAsyncFailed, EventSessionExpired:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return nil, errors.BadRequest("malformed checkout session object")
		}
		session := sessionFrom(&cs)
		switch env.Type {
		case EventSessionCompleted:
			return SessionCompleted{Envelope: env, Session: session}, nil
		case EventSessionAsyncSucceeded:
			return SessionAsyncSucceeded{Envelope: env, Session: session}, nil
		case EventSessionAsyncFailed:
			return SessionAsyncFailed{Envelope: env, Session: session}, nil
		default:
			return SessionExpired{Envelope: env, Session: session}, nil
		}

	case EventIntentSucceeded, EventIntentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, errors.BadRequest("malformed payment intent object")
		}
		intent := intentFrom(&pi)
		if env.Type == EventIntentSucceeded {
			return IntentSucceeded{Envelope: env, Intent: intent}, nil
		}
		return IntentFailed{Envelope: env, Intent: intent}, nil

	case EventChargeSucceeded:
		var ch stripe.Charge
		if err := json.Unmarshal(ev.Data.Raw, &ch); err != nil {
			return nil, errors.BadRequest("malformed charge object")
		}
		return ChargeSucceeded{Envelope: env, Charge: chargeFrom(&ch)}, nil
	}

	return Unhandled{Envelope: env}, nil
}

// DecodeSession reads a provider-shaped checkout session object.
func DecodeSession(payload []byte) (Session, error) {
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(payload, &cs); err != nil {
		return Session{}, errors.BadRequest("malformed checkout session object")
	}
	if cs.ID == "" {
		return Session{}, errors.BadRequest("checkout session id is required")
	}
	return sessionFrom(&cs), nil
}

func sessionFrom(cs *stripe.CheckoutSession) Session {
	s := Session{
		ID:            cs.ID,
		URL:           cs.URL,
		Status:        string(cs.Status),
		PaymentStatus: string(cs.PaymentStatus),
		Currency:      string(cs.Currency),
		AmountTotal:   cs.AmountTotal,
		CustomerEmail: cs.CustomerEmail,
		Metadata:      metadataFrom(cs.Metadata),
	}
	if s.CustomerEmail == "" && cs.CustomerDetails != nil {
		s.CustomerEmail = cs.CustomerDetails.Email
	}
	if cs.ExpiresAt > 0 {
		s.ExpiresAt = unix(cs.ExpiresAt)
	}
	if cs.PaymentIntent != nil && cs.PaymentIntent.ID != "" {
		s.IntentID = cs.PaymentIntent.ID
		// an unexpanded intent decodes with only its id
		if cs.PaymentIntent.Status != "" {
			pi := intentFrom(cs.PaymentIntent)
			s.Intent = &pi
		}
	}
	return s
}

func intentFrom(pi *stripe.PaymentIntent) PaymentIntent {
	out := PaymentIntent{
		ID:       pi.ID,
		Status:   string(pi.Status),
		Amount:   pi.Amount,
		Currency: string(pi.Currency),
		Metadata: metadataFrom(pi.Metadata),
	}
	if pi.LatestCharge != nil && pi.LatestCharge.ID != "" {
		ch := chargeFrom(pi.LatestCharge)
		if ch.IntentID == "" {
			ch.IntentID = pi.ID
		}
		out.Charge = &ch
	}
	if pi.LastPaymentError != nil {
		out.FailureCode = string(pi.LastPaymentError.Code)
		out.FailureMessage = pi.LastPaymentError.Msg
	}
	return out
}

func chargeFrom(ch *stripe.Charge) Charge {
	out := Charge{
		ID:       ch.ID,
		Status:   string(ch.Status),
		Paid:     ch.Paid,
		Metadata: metadataFrom(ch.Metadata),
	}
	if ch.PaymentIntent != nil {
		out.IntentID = ch.PaymentIntent.ID
	}
	if ch.PaymentMethod != "" {
		out.PaymentMethodID = ch.PaymentMethod
	}
	if ch.PaymentMethodDetails != nil && ch.PaymentMethodDetails.Card != nil {
		card := ch.PaymentMethodDetails.Card
		out.Card = &Card{
			Brand:    string(card.Brand),
			Funding:  string(card.Funding),
			Last4:    card.Last4,
			ExpMonth: int64(card.ExpMonth),
			ExpYear:  int64(card.ExpYear),
		}
	}
	return out
}
