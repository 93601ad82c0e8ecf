package usecases_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"rental-payment-service/config"
	"rental-payment-service/internal/module/payment/mocks"
	"rental-payment-service/internal/module/payment/models/entity"
	"rental-payment-service/internal/module/payment/models/request"
	"rental-payment-service/internal/module/payment/usecases"
	"rental-payment-service/internal/pkg/errors"
	"rental-payment-service/internal/pkg/lock"
	log_internal "rental-payment-service/internal/pkg/log"
	"rental-payment-service/internal/pkg/paymentprovider"
	providermocks "rental-payment-service/internal/pkg/paymentprovider/mocks"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var (
	cfgStripe   = &config.StripeConfig{Currency: "inr", WebhookSecret: "whsec_test"}
	cfgCheckout = &config.CheckoutConfig{FrontendURL: "https://rent.example/", SessionTTL: 30 * time.Minute, SweepGrace: 5 * time.Minute}
)

type mockPublisher struct{}

// Close implements message.Publisher.
func (m *mockPublisher) Close() error {
	return nil
}

// Publish implements message.Publisher.
func (m *mockPublisher) Publish(topic string, messages ...*message.Message) error {
	return nil
}

func nopLogger() log_internal.Logger {
	return log_internal.New(otelzap.New(zap.NewNop()))
}

func newWithMocks(t *testing.T) (usecases.Usecase, *mocks.Repositories, *providermocks.Provider) {
	repoMock := mocks.NewRepositories(t)
	providerMock := providermocks.NewProvider(t)
	uc := usecases.New(repoMock, providerMock, lock.NewLocal(), &mockPublisher{}, nopLogger(), cfgStripe, cfgCheckout)
	return uc, repoMock, providerMock
}

func bookingDetail(status string, price string) entity.BookingDetail {
	return entity.BookingDetail{
		Booking: entity.Booking{
			ID:             uuid.New(),
			CarID:          uuid.New(),
			UserID:         uuid.New(),
			PickupLocation: "Airport",
			DropLocation:   "Downtown",
			TotalPrice:     decimal.RequireFromString(price),
			PaymentStatus:  status,
			BookingStatus:  "Pending",
		},
		CarName:   "Sedan X",
		CarImage:  sql.NullString{String: "https://cdn.example/sedan.png", Valid: true},
		UserEmail: sql.NullString{String: "renter@example.com", Valid: true},
	}
}

func TestInitiateCheckout(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		uc, repoMock, providerMock := newWithMocks(t)
		detail := bookingDetail(entity.BookingPaymentPending, "1500.00")

		repoMock.On("FindBookingDetail", mock.Anything, detail.ID).Return(detail, nil)
		providerMock.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(p paymentprovider.CheckoutParams) bool {
			return p.AmountMinor == 150000 &&
				p.Currency == "inr" &&
				p.Metadata.BookingID == detail.ID.String() &&
				p.Metadata.UserID == detail.UserID.String() &&
				p.ProductName == "Car Rental: Sedan X" &&
				strings.Contains(p.Description, detail.ID.String()) &&
				p.SuccessURL == "https://rent.example/payment-success?bookingId="+detail.ID.String()+"&sessionId={CHECKOUT_SESSION_ID}" &&
				p.CancelURL == "https://rent.example/mybooking?cancelled=true" &&
				p.CustomerEmail == "renter@example.com" &&
				len(p.Images) == 1 &&
				!p.ExpiresAt.IsZero()
		})).Return(paymentprovider.Session{ID: "cs_1", URL: "https://checkout.example/cs_1"}, nil)
		repoMock.On("ScheduleSessionSweep", mock.Anything,
			request.ReconcileSessionTask{BookingID: detail.ID.String(), SessionID: "cs_1"},
			mock.AnythingOfType("time.Time")).Return(nil)

		resp, err := uc.InitiateCheckout(context.Background(), detail.ID.String())

		require.NoError(t, err)
		assert.Equal(t, "cs_1", resp.SessionID)
		assert.Equal(t, "https://checkout.example/cs_1", resp.URL)
	})

	t.Run("sweep scheduling failure does not fail checkout", func(t *testing.T) {
		uc, repoMock, providerMock := newWithMocks(t)
		detail := bookingDetail(entity.BookingPaymentPending, "99.99")

		repoMock.On("FindBookingDetail", mock.Anything, detail.ID).Return(detail, nil)
		providerMock.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(p paymentprovider.CheckoutParams) bool {
			return p.AmountMinor == 9999
		})).Return(paymentprovider.Session{ID: "cs_2", URL: "https://checkout.example/cs_2"}, nil)
		repoMock.On("ScheduleSessionSweep", mock.Anything, mock.Anything, mock.Anything).
			Return(errors.InternalServerError("redis down"))

		resp, err := uc.InitiateCheckout(context.Background(), detail.ID.String())

		require.NoError(t, err)
		assert.Equal(t, "cs_2", resp.SessionID)
	})

	rejections := []struct {
		name     string
		status   string
		price    string
		wantCode int
	}{
		{name: "already paid", status: entity.BookingPaymentPaid, price: "1500", wantCode: 409},
		{name: "cancelled", status: entity.BookingPaymentCancelled, price: "1500", wantCode: 409},
		{name: "zero price", status: entity.BookingPaymentPending, price: "0", wantCode: 400},
		{name: "negative price", status: entity.BookingPaymentPending, price: "-10", wantCode: 400},
	}
	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			uc, repoMock, _ := newWithMocks(t)
			detail := bookingDetail(tt.status, tt.price)
			repoMock.On("FindBookingDetail", mock.Anything, detail.ID).Return(detail, nil)

			_, err := uc.InitiateCheckout(context.Background(), detail.ID.String())

			assert.Equal(t, tt.wantCode, errors.Code(err))
		})
	}

	t.Run("invalid booking id", func(t *testing.T) {
		uc, _, _ := newWithMocks(t)
		_, err := uc.InitiateCheckout(context.Background(), "not-a-uuid")
		assert.True(t, errors.IsBadRequest(err))
	})

	t.Run("booking not found", func(t *testing.T) {
		uc, repoMock, _ := newWithMocks(t)
		id := uuid.New()
		repoMock.On("FindBookingDetail", mock.Anything, id).Return(entity.BookingDetail{}, errors.NotFound("booking not found"))

		_, err := uc.InitiateCheckout(context.Background(), id.String())
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("provider unavailable", func(t *testing.T) {
		uc, repoMock, providerMock := newWithMocks(t)
		detail := bookingDetail(entity.BookingPaymentPending, "1500")
		repoMock.On("FindBookingDetail", mock.Anything, detail.ID).Return(detail, nil)
		providerMock.On("CreateCheckoutSession", mock.Anything, mock.Anything).
			Return(paymentprovider.Session{}, errors.ServiceUnavailable("payment provider is not configured"))

		_, err := uc.InitiateCheckout(context.Background(), detail.ID.String())
		assert.Equal(t, 503, errors.Code(err))
	})
}

func TestHandleWebhookSignatureAndParsing(t *testing.T) {
	t.Run("invalid signature", func(t *testing.T) {
		uc, _, providerMock := newWithMocks(t)
		providerMock.On("ParseWebhook", []byte(`{}`), "bad").Return(nil, errors.UnauthorizedError("invalid webhook signature"))

		_, err := uc.HandleWebhook(context.Background(), []byte(`{}`), "bad")
		assert.True(t, errors.IsUnauthorized(err))
	})

	t.Run("unparseable event is acknowledged", func(t *testing.T) {
		uc, _, providerMock := newWithMocks(t)
		providerMock.On("ParseWebhook", []byte(`{`), "sig").Return(nil, errors.BadRequest("malformed provider event"))

		res, err := uc.HandleWebhook(context.Background(), []byte(`{`), "sig")
		require.NoError(t, err)
		assert.True(t, res.Ignored)
	})

	t.Run("already processed event", func(t *testing.T) {
		uc, repoMock, providerMock := newWithMocks(t)
		ev := paymentprovider.IntentSucceeded{Envelope: paymentprovider.Envelope{ID: "evt_1", Type: paymentprovider.EventIntentSucceeded}}
		providerMock.On("ParseWebhook", mock.Anything, "sig").Return(ev, nil)
		repoMock.On("IsEventProcessed", mock.Anything, "evt_1").Return(true, nil)

		res, err := uc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
		require.NoError(t, err)
		assert.True(t, res.Ignored)
		assert.Equal(t, "duplicate event", res.Reason)
	})

	t.Run("unhandled event type", func(t *testing.T) {
		uc, repoMock, providerMock := newWithMocks(t)
		ev := paymentprovider.Unhandled{Envelope: paymentprovider.Envelope{ID: "evt_2", Type: "customer.created"}}
		providerMock.On("ParseWebhook", mock.Anything, "sig").Return(ev, nil)
		repoMock.On("IsEventProcessed", mock.Anything, "evt_2").Return(false, nil)
		repoMock.On("MarkEventProcessed", mock.Anything, "evt_2", mock.Anything).Return(nil)

		res, err := uc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
		require.NoError(t, err)
		assert.True(t, res.Ignored)
	})

	t.Run("retryable failure leaves event unmarked", func(t *testing.T) {
		uc, repoMock, providerMock := newWithMocks(t)
		bookingID := uuid.New()
		ev := paymentprovider.IntentSucceeded{
			Envelope: paymentprovider.Envelope{ID: "evt_3", Type: paymentprovider.EventIntentSucceeded},
			Intent: paymentprovider.PaymentIntent{ID: "pi_1", Status: "succeeded", Metadata: paymentprovider.Metadata{BookingID: bookingID.String()},
				Charge: &paymentprovider.Charge{ID: "ch_1", Card: &paymentprovider.Card{Last4: "4242"}}},
		}
		providerMock.On("ParseWebhook", mock.Anything, "sig").Return(ev, nil)
		repoMock.On("IsEventProcessed", mock.Anything, "evt_3").Return(false, nil)
		repoMock.On("FindBookingByID", mock.Anything, bookingID).Return(entity.Booking{}, errors.InternalServerError("db down"))

		_, err := uc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
		assert.True(t, errors.IsRetryable(err))
		repoMock.AssertNotCalled(t, "MarkEventProcessed", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetHistoryMasksCardData(t *testing.T) {
	uc, repoMock, _ := newWithMocks(t)
	userID := uuid.New()
	now := time.Now().UTC()

	repoMock.On("FindPaymentsByUserID", mock.Anything, userID).Return([]entity.PaymentWithBooking{
		{
			Payment: entity.Payment{
				ID:               uuid.New(),
				BookingID:        uuid.New(),
				UserID:           userID,
				ProviderIntentID: sql.NullString{String: "pi_1", Valid: true},
				Amount:           decimal.RequireFromString("1500"),
				Currency:         "inr",
				Status:           entity.PaymentStatusSucceeded,
				CardBrand:        sql.NullString{String: "visa", Valid: true},
				CardFunding:      entity.FundingCredit,
				CardLast4:        sql.NullString{String: "4242", Valid: true},
				CardExpMonth:     sql.NullInt64{Int64: 12, Valid: true},
				CardExpYear:      sql.NullInt64{Int64: 2030, Valid: true},
				CreatedAt:        now,
			},
			CarName: sql.NullString{String: "Sedan X", Valid: true},
		},
	}, nil)

	history, err := uc.GetHistory(context.Background(), userID.String())

	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "1500.00", history[0].Amount)
	assert.Equal(t, "4242", history[0].Card.Last4)
	assert.Equal(t, "visa", history[0].Card.Brand)
	assert.Equal(t, "Sedan X", history[0].Booking.CarName)
}

func TestGetPaymentStatus(t *testing.T) {
	uc, repoMock, _ := newWithMocks(t)
	b := bookingDetail(entity.BookingPaymentPaid, "10").Booking
	repoMock.On("FindBookingByID", mock.Anything, b.ID).Return(b, nil)

	resp, err := uc.GetPaymentStatus(context.Background(), b.ID.String())

	require.NoError(t, err)
	assert.Equal(t, entity.BookingPaymentPaid, resp.PaymentStatus)
	assert.Equal(t, b.ID.String(), resp.BookingID)
}

func TestGetSessionBookingLookupFailureYieldsNullBooking(t *testing.T) {
	uc, repoMock, providerMock := newWithMocks(t)
	bookingID := uuid.New()
	userID := uuid.New().String()
	providerMock.On("RetrieveSession", mock.Anything, "cs_1").Return(paymentprovider.Session{
		ID: "cs_1", Status: "complete", PaymentStatus: "paid", AmountTotal: 150000, Currency: "inr",
		Metadata: paymentprovider.Metadata{BookingID: bookingID.String(), UserID: userID},
	}, nil)
	repoMock.On("FindBookingByID", mock.Anything, bookingID).Return(entity.Booking{}, errors.NotFound("booking not found"))

	resp, err := uc.GetSession(context.Background(), "cs_1", bookingID.String(), userID)

	require.NoError(t, err)
	assert.Nil(t, resp.Booking)
	assert.Equal(t, "1500.00", resp.Session.AmountTotal)
}

func TestGetSessionOwnership(t *testing.T) {
	b := bookingDetail(entity.BookingPaymentPending, "1500").Booking
	owned := paymentprovider.Session{
		ID: "cs_1", Status: "open", CustomerEmail: "renter@example.com",
		Metadata: paymentprovider.Metadata{BookingID: b.ID.String(), UserID: b.UserID.String()},
	}

	t.Run("owner reads session and booking", func(t *testing.T) {
		uc, repoMock, providerMock := newWithMocks(t)
		providerMock.On("RetrieveSession", mock.Anything, "cs_1").Return(owned, nil)
		repoMock.On("FindBookingByID", mock.Anything, b.ID).Return(b, nil)

		resp, err := uc.GetSession(context.Background(), "cs_1", "", b.UserID.String())

		require.NoError(t, err)
		require.NotNil(t, resp.Booking)
		assert.Equal(t, b.ID.String(), resp.Booking.ID)
		assert.Equal(t, "renter@example.com", resp.Session.CustomerEmail)
	})

	t.Run("another user is forbidden", func(t *testing.T) {
		uc, _, providerMock := newWithMocks(t)
		providerMock.On("RetrieveSession", mock.Anything, "cs_1").Return(owned, nil)

		_, err := uc.GetSession(context.Background(), "cs_1", "", uuid.New().String())

		assert.Equal(t, 403, errors.Code(err))
	})

	t.Run("booking of another user is forbidden", func(t *testing.T) {
		uc, repoMock, providerMock := newWithMocks(t)
		other := bookingDetail(entity.BookingPaymentPending, "1500").Booking
		providerMock.On("RetrieveSession", mock.Anything, "cs_1").Return(owned, nil)
		repoMock.On("FindBookingByID", mock.Anything, other.ID).Return(other, nil)

		_, err := uc.GetSession(context.Background(), "cs_1", other.ID.String(), b.UserID.String())

		assert.Equal(t, 403, errors.Code(err))
	})

	t.Run("unknown owner is forbidden", func(t *testing.T) {
		uc, _, providerMock := newWithMocks(t)
		providerMock.On("RetrieveSession", mock.Anything, "cs_1").Return(paymentprovider.Session{ID: "cs_1"}, nil)

		_, err := uc.GetSession(context.Background(), "cs_1", "", uuid.New().String())

		assert.Equal(t, 403, errors.Code(err))
	})
}
