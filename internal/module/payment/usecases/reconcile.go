package usecases

import (
	"context"
	"fmt"
	"time"

	"rental-payment-service/internal/module/payment/models/entity"
	"rental-payment-service/internal/module/payment/models/request"
	"rental-payment-service/internal/module/payment/models/response"
	"rental-payment-service/internal/pkg/errors"
	"rental-payment-service/internal/pkg/helpers"
	"rental-payment-service/internal/pkg/messagestream"
	"rental-payment-service/internal/pkg/paymentprovider"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

const (
	eventTypeClientEcho = "client.session_echo"
	eventTypeSweep      = "sweep.session"

	failureSessionExpired = "session_expired"
	failureAsyncPayment   = "async_payment_failed"
)

func lockKey(bookingID uuid.UUID) string {
	return "payment:reconcile:" + bookingID.String()
}

func ignored(bookingID, reason string) response.Reconciliation {
	return response.Reconciliation{BookingID: bookingID, Ignored: true, Reason: reason}
}

// HandleWebhook verifies and applies a pushed provider event. Undecodable
// events are acknowledged so the provider stops redelivering them.
func (u *usecase) HandleWebhook(ctx context.Context, payload []byte, signature string) (response.Reconciliation, error) {
	ev, err := u.provider.ParseWebhook(payload, signature)
	if err != nil {
		if errors.IsUnauthorized(err) {
			u.log.Warn(ctx, "webhook rejected: invalid signature")
			return response.Reconciliation{}, err
		}
		u.log.Warn(ctx, "webhook payload ignored", err)
		return ignored("", "unparseable event"), nil
	}
	return u.processEvent(ctx, ev, SourceWebhook)
}

// ConsumeProviderEvent applies a provider event relayed through the broker.
// The relay has already verified it; malformed payloads are returned as errors.
func (u *usecase) ConsumeProviderEvent(ctx context.Context, payload []byte) (response.Reconciliation, error) {
	ev, err := paymentprovider.DecodeEvent(payload)
	if err != nil {
		return response.Reconciliation{}, err
	}
	return u.processEvent(ctx, ev, SourceBroker)
}

func (u *usecase) processEvent(ctx context.Context, ev paymentprovider.Event, source string) (response.Reconciliation, error) {
	eventID := ev.Meta().ID
	if eventID != "" {
		processed, err := u.repo.IsEventProcessed(ctx, eventID)
		if err != nil {
			u.log.Warn(ctx, "processed-event check failed, reconciling anyway", err)
		}
		if processed {
			u.log.Info(ctx, fmt.Sprintf("event %s already processed", eventID))
			return ignored("", "duplicate event"), nil
		}
	}

	result, err := u.Reconcile(ctx, ev, source)
	if err != nil {
		return result, err
	}

	if eventID != "" {
		if err := u.repo.MarkEventProcessed(ctx, eventID, processedEventTTL); err != nil {
			u.log.Warn(ctx, fmt.Sprintf("event %s not marked processed", eventID), err)
		}
	}
	return result, nil
}

// SaveFrontend reconciles the session the browser reports after redirect.
// The reported state is never trusted; the session is re-read from the provider.
func (u *usecase) SaveFrontend(ctx context.Context, payload *request.ClientSessionEcho) (response.Reconciliation, error) {
	reported, err := paymentprovider.DecodeSession(payload.Session)
	if err != nil {
		return response.Reconciliation{}, err
	}

	session, err := u.provider.RetrieveSession(ctx, reported.ID)
	if err != nil {
		return response.Reconciliation{}, err
	}

	echoBooking := payload.Booking.Identifier()
	if echoBooking != "" && session.Metadata.BookingID != "" && echoBooking != session.Metadata.BookingID {
		u.log.Warn(ctx, fmt.Sprintf("session %s belongs to booking %s, client reported %s", session.ID, session.Metadata.BookingID, echoBooking))
		return response.Reconciliation{}, errors.BadRequest("session does not belong to booking")
	}

	return u.Reconcile(ctx, paymentprovider.SessionEcho{
		Envelope:  paymentprovider.Envelope{Type: eventTypeClientEcho, Raw: payload.Session},
		Session:   session,
		BookingID: echoBooking,
	}, SourceClient)
}

// ReconcileSession is the scheduled sweep for one checkout session.
func (u *usecase) ReconcileSession(ctx context.Context, payload *request.ReconcileSessionTask) (response.Reconciliation, error) {
	session, err := u.provider.RetrieveSession(ctx, payload.SessionID)
	if errors.IsNotFound(err) {
		u.log.Warn(ctx, fmt.Sprintf("sweep: session %s not found at provider", payload.SessionID))
		return ignored(payload.BookingID, "session not found"), nil
	}
	if err != nil {
		return response.Reconciliation{}, err
	}

	if !session.Paid() && !session.Expired() {
		return ignored(payload.BookingID, "session still open"), nil
	}

	return u.Reconcile(ctx, paymentprovider.SessionEcho{
		Envelope:  paymentprovider.Envelope{Type: eventTypeSweep},
		Session:   session,
		BookingID: payload.BookingID,
	}, SourceSweep)
}

func (u *usecase) Reconcile(ctx context.Context, ev paymentprovider.Event, source string) (response.Reconciliation, error) {
	span, ctx := apm.StartSpan(ctx, "usecase.Reconcile", "app")
	defer span.End()

	env := ev.Meta()
	fields := []any{zap.String("event_type", env.Type), zap.String("event_id", env.ID), zap.String("source", source)}

	bookingRef, upd, reason, err := u.normalize(ctx, ev)
	if err != nil {
		return response.Reconciliation{}, err
	}
	if reason != "" {
		u.log.Info(ctx, "notification ignored: "+reason, fields...)
		return ignored(bookingRef, reason), nil
	}

	bookingID, err := uuid.Parse(bookingRef)
	if err != nil {
		u.log.Warn(ctx, "notification ignored: missing or invalid bookingId", fields...)
		return ignored(bookingRef, "missing booking id"), nil
	}

	booking, err := u.repo.FindBookingByID(ctx, bookingID)
	if errors.IsNotFound(err) {
		u.log.Warn(ctx, fmt.Sprintf("notification ignored: booking %s not found", bookingID), fields...)
		return ignored(bookingRef, "booking not found"), nil
	}
	if err != nil {
		return response.Reconciliation{}, err
	}

	upd.BookingID = booking.ID
	upd.UserID = booking.UserID
	if upd.Amount.IsZero() {
		upd.Amount = booking.TotalPrice
	}
	if upd.Currency == "" {
		upd.Currency = u.cfgStripe.Currency
	}
	if !upd.HasIdentifier() {
		u.log.Warn(ctx, "notification ignored: no provider identifier", fields...)
		return ignored(bookingRef, "no provider identifier"), nil
	}

	// the booking row lock in UpsertPayment still serializes writers
	// when the distributed lock is unavailable
	unlock, err := u.locker.Lock(ctx, lockKey(booking.ID))
	if err != nil {
		u.log.Warn(ctx, fmt.Sprintf("lock for booking %s not acquired, relying on row lock", booking.ID), err)
	} else {
		defer func() {
			if err := unlock(ctx); err != nil {
				u.log.Warn(ctx, fmt.Sprintf("error release lock for booking %s", booking.ID), err)
			}
		}()
	}

	payment, res, err := u.repo.UpsertPayment(ctx, upd)
	if errors.IsNotFound(err) {
		return ignored(bookingRef, "booking not found"), nil
	}
	if err != nil {
		return response.Reconciliation{}, err
	}
	if res.Skipped {
		u.log.Info(ctx, "notification ignored: no payment to update", fields...)
		return ignored(bookingRef, "no matching payment"), nil
	}

	result := response.Reconciliation{
		BookingID:       booking.ID.String(),
		PaymentID:       payment.ID.String(),
		Status:          payment.Status,
		BookingPaid:     booking.IsPaid(),
		ConflictIgnored: res.ConflictIgnored,
	}
	if res.ConflictIgnored {
		u.log.Info(ctx, fmt.Sprintf("payment %s is %s, %s ignored", payment.ID, payment.Status, upd.Status), fields...)
	}

	flipped := false
	if entity.IsSuccess(upd.Status) || entity.IsSuccess(payment.Status) {
		flipped, err = u.repo.MarkBookingPaid(ctx, booking.ID)
		if err != nil {
			return response.Reconciliation{}, err
		}
		if flipped {
			result.BookingPaid = true
			u.log.Info(ctx, fmt.Sprintf("booking %s marked as Paid", booking.ID), fields...)
		} else if booking.IsCancelled() {
			u.log.Warn(ctx, fmt.Sprintf("booking %s is cancelled but payment %s succeeded", booking.ID, payment.ID), fields...)
		}
	}

	if res.StatusChanged || flipped {
		u.publishStatusChanged(ctx, payment, res.PreviousStatus, result.BookingPaid, source)
	}

	return result, nil
}

// normalize maps an event to the canonical update. A non-empty reason means
// the event is acknowledged without touching any record.
func (u *usecase) normalize(ctx context.Context, ev paymentprovider.Event) (string, entity.PaymentUpdate, string, error) {
	raw := ev.Meta().Raw

	switch e := ev.(type) {
	case paymentprovider.SessionCompleted:
		status := entity.PaymentStatusPending
		if e.Session.Paid() {
			status = entity.PaymentStatusSucceeded
		}
		return e.Session.Metadata.BookingID, sessionUpdate(e.Session, status, raw, true), "", nil

	case paymentprovider.SessionAsyncSucceeded:
		return e.Session.Metadata.BookingID, sessionUpdate(e.Session, entity.PaymentStatusSucceeded, raw, true), "", nil

	case paymentprovider.SessionAsyncFailed:
		upd := sessionUpdate(e.Session, entity.PaymentStatusFailed, raw, true)
		upd.FailureCode = failureAsyncPayment
		return e.Session.Metadata.BookingID, upd, "", nil

	case paymentprovider.SessionExpired:
		upd := sessionUpdate(e.Session, entity.PaymentStatusFailed, raw, false)
		upd.FailureCode = failureSessionExpired
		upd.FailureMessage = "checkout session expired"
		return e.Session.Metadata.BookingID, upd, "", nil

	case paymentprovider.SessionEcho:
		bookingRef := e.Session.Metadata.BookingID
		if bookingRef == "" {
			bookingRef = e.BookingID
		}
		switch {
		case e.Session.Paid():
			return bookingRef, sessionUpdate(e.Session, entity.PaymentStatusConfirmed, raw, true), "", nil
		case e.Session.Expired():
			upd := sessionUpdate(e.Session, entity.PaymentStatusFailed, raw, false)
			upd.FailureCode = failureSessionExpired
			upd.FailureMessage = "checkout session expired"
			return bookingRef, upd, "", nil
		default:
			return bookingRef, sessionUpdate(e.Session, entity.PaymentStatusCreated, raw, true), "", nil
		}

	case paymentprovider.IntentSucceeded:
		intent := e.Intent
		if intent.Charge == nil || intent.Charge.Card == nil {
			intent = u.expandIntent(ctx, intent)
		}
		return intent.Metadata.BookingID, intentUpdate(intent, entity.PaymentStatusSucceeded, raw), "", nil

	case paymentprovider.IntentFailed:
		upd := intentUpdate(e.Intent, entity.PaymentStatusFailed, raw)
		upd.FailureCode = e.Intent.FailureCode
		upd.FailureMessage = e.Intent.FailureMessage
		return e.Intent.Metadata.BookingID, upd, "", nil

	case paymentprovider.ChargeSucceeded:
		return u.normalizeCharge(ctx, e.Charge, raw)

	case paymentprovider.Unhandled:
		return "", entity.PaymentUpdate{}, "unhandled event type " + e.Type, nil
	}

	return "", entity.PaymentUpdate{}, fmt.Sprintf("unsupported event %T", ev), nil
}

// normalizeCharge trusts a charge only once its intent has succeeded.
func (u *usecase) normalizeCharge(ctx context.Context, ch paymentprovider.Charge, raw []byte) (string, entity.PaymentUpdate, string, error) {
	if ch.IntentID == "" {
		return ch.Metadata.BookingID, entity.PaymentUpdate{}, "charge without payment intent", nil
	}

	intent, err := u.provider.RetrievePaymentIntent(ctx, ch.IntentID)
	if errors.IsNotFound(err) {
		return ch.Metadata.BookingID, entity.PaymentUpdate{}, "payment intent not found", nil
	}
	if err != nil {
		return "", entity.PaymentUpdate{}, "", err
	}
	if !intent.Succeeded() {
		return ch.Metadata.BookingID, entity.PaymentUpdate{}, "payment intent not succeeded", nil
	}

	bookingRef := ch.Metadata.BookingID
	if bookingRef == "" {
		bookingRef = intent.Metadata.BookingID
	}

	upd := intentUpdate(intent, entity.PaymentStatusSucceeded, raw)
	upd.ChargeID = ch.ID
	if ch.PaymentMethodID != "" {
		upd.PaymentMethodID = ch.PaymentMethodID
	}
	if ch.Card != nil {
		upd.Card = cardFrom(ch.Card)
	}
	return bookingRef, upd, "", nil
}

// expandIntent fetches the intent with its latest charge to get card details.
// Failure leaves the event as received.
func (u *usecase) expandIntent(ctx context.Context, intent paymentprovider.PaymentIntent) paymentprovider.PaymentIntent {
	full, err := u.provider.RetrievePaymentIntent(ctx, intent.ID)
	if err != nil {
		u.log.Warn(ctx, fmt.Sprintf("card details unavailable for %s", intent.ID), err)
		return intent
	}
	if full.Metadata.BookingID == "" {
		full.Metadata = intent.Metadata
	}
	return full
}

func sessionUpdate(s paymentprovider.Session, status string, raw []byte, create bool) entity.PaymentUpdate {
	upd := entity.PaymentUpdate{
		SessionID:       s.ID,
		IntentID:        s.IntentID,
		Currency:        s.Currency,
		Status:          status,
		RawPayload:      raw,
		CreateIfMissing: create,
	}
	if s.AmountTotal > 0 {
		upd.Amount = helpers.FromMinorUnits(s.AmountTotal)
	}
	if s.Intent != nil && s.Intent.Charge != nil {
		upd.ChargeID = s.Intent.Charge.ID
		upd.PaymentMethodID = s.Intent.Charge.PaymentMethodID
		upd.Card = cardFrom(s.Intent.Charge.Card)
	}
	return upd
}

func intentUpdate(pi paymentprovider.PaymentIntent, status string, raw []byte) entity.PaymentUpdate {
	upd := entity.PaymentUpdate{
		IntentID:        pi.ID,
		Currency:        pi.Currency,
		Status:          status,
		RawPayload:      raw,
		CreateIfMissing: true,
	}
	if pi.Amount > 0 {
		upd.Amount = helpers.FromMinorUnits(pi.Amount)
	}
	if pi.Charge != nil {
		upd.ChargeID = pi.Charge.ID
		upd.PaymentMethodID = pi.Charge.PaymentMethodID
		upd.Card = cardFrom(pi.Charge.Card)
	}
	return upd
}

func cardFrom(c *paymentprovider.Card) *entity.Card {
	if c == nil {
		return nil
	}
	return &entity.Card{
		Brand:    c.Brand,
		Funding:  c.Funding,
		Last4:    c.Last4,
		ExpMonth: c.ExpMonth,
		ExpYear:  c.ExpYear,
	}
}

func (u *usecase) publishStatusChanged(ctx context.Context, payment entity.Payment, previous string, bookingPaid bool, source string) {
	if u.publisher == nil {
		return
	}

	payload, err := json.Marshal(request.PaymentStatusChanged{
		BookingID:      payment.BookingID.String(),
		PaymentID:      payment.ID.String(),
		UserID:         payment.UserID.String(),
		PreviousStatus: previous,
		Status:         payment.Status,
		BookingPaid:    bookingPaid,
		Source:         source,
		OccurredAt:     u.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		u.log.Error(ctx, "error marshal payment status change", err)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := u.publisher.Publish(messagestream.TopicPaymentStatusChanged, msg); err != nil {
		u.log.Error(ctx, fmt.Sprintf("error publish payment status change for %s", payment.ID), err)
	}
}
