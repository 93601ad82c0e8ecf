package usecases

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"rental-payment-service/config"
	"rental-payment-service/internal/module/payment/models/entity"
	"rental-payment-service/internal/module/payment/models/request"
	"rental-payment-service/internal/module/payment/models/response"
	"rental-payment-service/internal/module/payment/repositories"
	"rental-payment-service/internal/pkg/errors"
	"rental-payment-service/internal/pkg/helpers"
	"rental-payment-service/internal/pkg/lock"
	"rental-payment-service/internal/pkg/log"
	"rental-payment-service/internal/pkg/paymentprovider"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.elastic.co/apm"
)

const (
	SourceWebhook = "webhook"
	SourceBroker  = "broker"
	SourceClient  = "client"
	SourceSweep   = "sweep"
)

const (
	minSessionTTL     = 30 * time.Minute
	maxSessionTTL     = 24 * time.Hour
	processedEventTTL = 72 * time.Hour
)

type usecase struct {
	repo        repositories.Repositories
	provider    paymentprovider.Provider
	locker      lock.Locker
	publisher   message.Publisher
	log         log.Logger
	cfgStripe   *config.StripeConfig
	cfgCheckout *config.CheckoutConfig
	now         func() time.Time
}

type Usecase interface {
	// http
	InitiateCheckout(ctx context.Context, bookingID string) (response.CheckoutSession, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (response.Reconciliation, error)
	SaveFrontend(ctx context.Context, payload *request.ClientSessionEcho) (response.Reconciliation, error)
	GetSession(ctx context.Context, sessionID, bookingID, userID string) (response.SessionStatus, error)
	GetHistory(ctx context.Context, userID string) ([]response.PaymentHistory, error)
	GetPaymentStatus(ctx context.Context, bookingID string) (response.PaymentStatus, error)
	// message stream
	ConsumeProviderEvent(ctx context.Context, payload []byte) (response.Reconciliation, error)
	// scheduler
	ReconcileSession(ctx context.Context, payload *request.ReconcileSessionTask) (response.Reconciliation, error)
	// Reconcile applies one decoded notification. Every entry point above ends here.
	Reconcile(ctx context.Context, ev paymentprovider.Event, source string) (response.Reconciliation, error)
}

func New(repo repositories.Repositories, provider paymentprovider.Provider, locker lock.Locker, publisher message.Publisher, log log.Logger, cfgStripe *config.StripeConfig, cfgCheckout *config.CheckoutConfig) Usecase {
	return &usecase{
		repo:        repo,
		provider:    provider,
		locker:      locker,
		publisher:   publisher,
		log:         log,
		cfgStripe:   cfgStripe,
		cfgCheckout: cfgCheckout,
		now:         time.Now,
	}
}

func (u *usecase) InitiateCheckout(ctx context.Context, bookingID string) (response.CheckoutSession, error) {
	span, ctx := apm.StartSpan(ctx, "usecase.InitiateCheckout", "app")
	defer span.End()

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return response.CheckoutSession{}, errors.BadRequest("invalid booking id")
	}

	booking, err := u.repo.FindBookingDetail(ctx, id)
	if err != nil {
		return response.CheckoutSession{}, err
	}

	switch {
	case booking.IsPaid():
		return response.CheckoutSession{}, errors.Conflict("booking is already paid")
	case booking.IsCancelled():
		return response.CheckoutSession{}, errors.Conflict("booking is cancelled")
	case !booking.TotalPrice.IsPositive():
		return response.CheckoutSession{}, errors.BadRequest("booking total price must be positive")
	}

	ttl := u.cfgCheckout.SessionTTL
	if ttl < minSessionTTL {
		ttl = minSessionTTL
	}
	if ttl > maxSessionTTL {
		ttl = maxSessionTTL
	}
	expiresAt := u.now().Add(ttl)

	carName := booking.CarName
	if carName == "" {
		carName = "Car"
	}

	var images []string
	if booking.CarImage.Valid && isAbsoluteURL(booking.CarImage.String) {
		images = []string{booking.CarImage.String}
	}

	frontend := strings.TrimRight(u.cfgCheckout.FrontendURL, "/")

	session, err := u.provider.CreateCheckoutSession(ctx, paymentprovider.CheckoutParams{
		Metadata:      paymentprovider.Metadata{BookingID: booking.ID.String(), UserID: booking.UserID.String()},
		AmountMinor:   helpers.ToMinorUnits(booking.TotalPrice),
		Currency:      u.cfgStripe.Currency,
		ProductName:   fmt.Sprintf("Car Rental: %s", carName),
		Description:   fmt.Sprintf("Booking ID: %s\nPickup: %s\nDrop: %s", booking.ID, booking.PickupLocation, booking.DropLocation),
		Images:        images,
		SuccessURL:    fmt.Sprintf("%s/payment-success?bookingId=%s&sessionId={CHECKOUT_SESSION_ID}", frontend, booking.ID),
		CancelURL:     frontend + "/mybooking?cancelled=true",
		CustomerEmail: booking.UserEmail.String,
		ExpiresAt:     expiresAt,
	})
	if err != nil {
		u.log.Error(ctx, fmt.Sprintf("error create checkout session for booking %s", booking.ID), err)
		return response.CheckoutSession{}, err
	}

	// the sweep recovers payments whose notifications never arrive
	task := request.ReconcileSessionTask{BookingID: booking.ID.String(), SessionID: session.ID}
	if err := u.repo.ScheduleSessionSweep(ctx, task, expiresAt.Add(u.cfgCheckout.SweepGrace)); err != nil {
		u.log.Warn(ctx, fmt.Sprintf("session sweep not scheduled for %s", session.ID), err)
	}

	u.log.Info(ctx, fmt.Sprintf("checkout session %s created for booking %s", session.ID, booking.ID))

	return response.CheckoutSession{URL: session.URL, SessionID: session.ID}, nil
}

// GetSession returns the live session and its local booking. Only the user
// the session was created for may read it.
func (u *usecase) GetSession(ctx context.Context, sessionID, bookingID, userID string) (response.SessionStatus, error) {
	session, err := u.provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		return response.SessionStatus{}, err
	}

	owner := session.Metadata.UserID
	if owner != "" && owner != userID {
		u.log.Warn(ctx, fmt.Sprintf("user %s requested session %s owned by %s", userID, sessionID, owner))
		return response.SessionStatus{}, errors.Forbidden("cannot read another user's session")
	}

	resp := response.SessionStatus{
		Session: response.SessionSnapshot{
			ID:            session.ID,
			Status:        session.Status,
			PaymentStatus: session.PaymentStatus,
			AmountTotal:   helpers.FromMinorUnits(session.AmountTotal).StringFixed(2),
			Currency:      session.Currency,
			CustomerEmail: session.CustomerEmail,
			PaymentIntent: session.IntentID,
		},
	}

	if bookingID == "" {
		bookingID = session.Metadata.BookingID
	}

	var booking *entity.Booking
	if id, err := uuid.Parse(bookingID); err == nil {
		b, err := u.repo.FindBookingByID(ctx, id)
		if err != nil {
			u.log.Warn(ctx, fmt.Sprintf("booking %s lookup failed for session %s", id, sessionID), err)
		} else {
			booking = &b
		}
	}

	if booking != nil && booking.UserID.String() != userID {
		return response.SessionStatus{}, errors.Forbidden("cannot read another user's booking")
	}
	if owner == "" && booking == nil {
		return response.SessionStatus{}, errors.Forbidden("session owner unknown")
	}
	if booking == nil {
		return resp, nil
	}

	resp.Booking = &response.BookingSummary{
		ID:             booking.ID.String(),
		CarID:          booking.CarID.String(),
		UserID:         booking.UserID.String(),
		PickupLocation: booking.PickupLocation,
		DropLocation:   booking.DropLocation,
		StartDate:      booking.StartDate.Format(time.RFC3339),
		EndDate:        booking.EndDate.Format(time.RFC3339),
		TotalPrice:     booking.TotalPrice.StringFixed(2),
		PaymentStatus:  booking.PaymentStatus,
		BookingStatus:  booking.BookingStatus,
	}
	return resp, nil
}

func (u *usecase) GetHistory(ctx context.Context, userID string) ([]response.PaymentHistory, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, errors.BadRequest("invalid user id")
	}

	payments, err := u.repo.FindPaymentsByUserID(ctx, id)
	if err != nil {
		return nil, err
	}

	history := make([]response.PaymentHistory, 0, len(payments))
	for _, p := range payments {
		item := response.PaymentHistory{
			ID: p.ID.String(),
			Booking: response.HistoryBooking{
				ID:             p.BookingID.String(),
				CarName:        p.CarName.String,
				PickupLocation: p.PickupLocation.String,
				DropLocation:   p.DropLocation.String,
			},
			SessionID: p.ProviderSessionID.String,
			IntentID:  p.ProviderIntentID.String,
			Amount:    p.Amount.StringFixed(2),
			Currency:  p.Currency,
			Status:    p.Status,
			Card: response.CardDetails{
				Brand:    p.CardBrand.String,
				Funding:  p.CardFunding,
				Last4:    entity.NormalizeLast4(p.CardLast4.String),
				ExpMonth: p.CardExpMonth.Int64,
				ExpYear:  p.CardExpYear.Int64,
			},
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		}
		if p.Status == entity.PaymentStatusFailed {
			item.FailureMessage = p.FailureMessage.String
		}
		if p.StartDate.Valid {
			item.Booking.StartDate = p.StartDate.Time.Format(time.RFC3339)
		}
		if p.EndDate.Valid {
			item.Booking.EndDate = p.EndDate.Time.Format(time.RFC3339)
		}
		history = append(history, item)
	}

	return history, nil
}

func (u *usecase) GetPaymentStatus(ctx context.Context, bookingID string) (response.PaymentStatus, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return response.PaymentStatus{}, errors.BadRequest("invalid booking id")
	}

	booking, err := u.repo.FindBookingByID(ctx, id)
	if err != nil {
		return response.PaymentStatus{}, err
	}

	return response.PaymentStatus{
		BookingID:     booking.ID.String(),
		PaymentStatus: booking.PaymentStatus,
		BookingStatus: booking.BookingStatus,
	}, nil
}

func isAbsoluteURL(s string) bool {
	parsed, err := url.Parse(s)
	return err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
