package handler_test

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"rental-payment-service/internal/module/payment/handler"
	"rental-payment-service/internal/module/payment/mocks"
	"rental-payment-service/internal/module/payment/models/request"
	"rental-payment-service/internal/module/payment/models/response"
	"rental-payment-service/internal/pkg/errors"
	"rental-payment-service/internal/pkg/messagestream"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	topics []string
}

// Close implements message.Publisher.
func (m *recordingPublisher) Close() error {
	return nil
}

// Publish implements message.Publisher.
func (m *recordingPublisher) Publish(topic string, messages ...*message.Message) error {
	m.topics = append(m.topics, topic)
	return nil
}

func setup(t *testing.T) (*handler.PaymentHandler, *mocks.Usecase, *recordingPublisher, *fiber.App) {
	ucm := mocks.NewUsecase(t)
	pub := &recordingPublisher{}
	h := &handler.PaymentHandler{
		Log:       otelzap.New(zap.NewNop()),
		Validator: validator.New(),
		Usecase:   ucm,
		Publish:   pub,
	}

	app := fiber.New()
	app.Use(func(ctx *fiber.Ctx) error {
		ctx.Locals("user_id", "3f1a6c9e-2d7b-4e58-9a40-6b1f0c2d8e71")
		return ctx.Next()
	})
	app.Post("/checkout/:bookingId", h.CreateCheckoutSession)
	app.Post("/webhook", h.Webhook)
	app.Post("/save-frontend", h.SaveFrontend)
	app.Get("/session/:sessionId", h.GetSession)
	app.Get("/history/:userId", h.GetHistory)
	app.Get("/bookings/:bookingId/payment-status", h.GetPaymentStatus)
	return h, ucm, pub, app
}

func decode(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestCreateCheckoutSession(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		_, ucm, _, app := setup(t)
		ucm.On("InitiateCheckout", mock.Anything, "b-1").
			Return(response.CheckoutSession{URL: "https://checkout.example/cs_1", SessionID: "cs_1"}, nil)

		resp, err := app.Test(httptest.NewRequest("POST", "/checkout/b-1", nil))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		body := decode(t, resp.Body)
		data := body["data"].(map[string]any)
		assert.Equal(t, "https://checkout.example/cs_1", data["sessionUrl"])
		assert.Equal(t, "cs_1", data["sessionId"])
	})

	t.Run("already paid", func(t *testing.T) {
		_, ucm, _, app := setup(t)
		ucm.On("InitiateCheckout", mock.Anything, "b-1").
			Return(response.CheckoutSession{}, errors.Conflict("booking is already paid"))

		resp, err := app.Test(httptest.NewRequest("POST", "/checkout/b-1", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})
}

func TestWebhook(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "processed", wantStatus: fiber.StatusOK},
		{name: "bad signature", err: errors.UnauthorizedError("invalid webhook signature"), wantStatus: fiber.StatusUnauthorized},
		{name: "transient failure", err: errors.ServiceUnavailable("provider down"), wantStatus: fiber.StatusServiceUnavailable},
		{name: "database failure", err: errors.InternalServerError("db down"), wantStatus: fiber.StatusServiceUnavailable},
		{name: "not actionable", err: errors.BadRequest("session does not belong to booking"), wantStatus: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ucm, _, app := setup(t)
			payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
			ucm.On("HandleWebhook", mock.Anything, payload, "t=1,v1=abc").Return(response.Reconciliation{}, tt.err)

			req := httptest.NewRequest("POST", "/webhook", bytes.NewReader(payload))
			req.Header.Set("Stripe-Signature", "t=1,v1=abc")
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus == fiber.StatusOK {
				assert.Equal(t, true, decode(t, resp.Body)["received"])
			}
		})
	}
}

func TestSaveFrontend(t *testing.T) {
	h, ucm, _, _ := setup(t)
	app := fiber.New()

	body := []byte(`{"session":{"id":"cs_1","payment_status":"paid"},"booking":{"_id":"b-1"}}`)
	ucm.On("SaveFrontend", mock.Anything, mock.MatchedBy(func(req *request.ClientSessionEcho) bool {
		return req.Booking.Identifier() == "b-1" && bytes.Contains(req.Session, []byte(`"cs_1"`))
	})).Return(response.Reconciliation{Status: "confirmed", BookingPaid: true}, nil)

	ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
	defer app.ReleaseCtx(ctx)
	ctx.Request().SetRequestURI("/api/v1/save-frontend")
	ctx.Request().Header.SetContentType("application/json")
	ctx.Request().Header.SetMethod("POST")
	ctx.Request().SetBody(body)

	err := h.SaveFrontend(ctx)

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, ctx.Response().StatusCode())
}

func TestSaveFrontendRequiresSession(t *testing.T) {
	_, _, _, app := setup(t)

	req := httptest.NewRequest("POST", "/save-frontend", bytes.NewReader([]byte(`{"booking":{"_id":"b-1"}}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetHistory(t *testing.T) {
	t.Run("own history", func(t *testing.T) {
		_, ucm, _, app := setup(t)
		ucm.On("GetHistory", mock.Anything, "3f1a6c9e-2d7b-4e58-9a40-6b1f0c2d8e71").
			Return([]response.PaymentHistory{{ID: "p-1", Status: "succeeded", Card: response.CardDetails{Last4: "4242"}}}, nil)

		resp, err := app.Test(httptest.NewRequest("GET", "/history/3f1a6c9e-2d7b-4e58-9a40-6b1f0c2d8e71", nil))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		data := decode(t, resp.Body)["data"].(map[string]any)
		assert.Equal(t, float64(1), data["count"])
	})

	t.Run("someone else's history", func(t *testing.T) {
		_, _, _, app := setup(t)

		resp, err := app.Test(httptest.NewRequest("GET", "/history/00000000-0000-0000-0000-000000000000", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestGetSessionAndPaymentStatus(t *testing.T) {
	_, ucm, _, app := setup(t)
	ucm.On("GetSession", mock.Anything, "cs_1", "b-1", "3f1a6c9e-2d7b-4e58-9a40-6b1f0c2d8e71").
		Return(response.SessionStatus{Session: response.SessionSnapshot{ID: "cs_1"}}, nil)
	ucm.On("GetPaymentStatus", mock.Anything, "b-1").
		Return(response.PaymentStatus{}, errors.NotFound("booking not found"))

	resp, err := app.Test(httptest.NewRequest("GET", "/session/cs_1?bookingId=b-1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := decode(t, resp.Body)["data"].(map[string]any)
	assert.Nil(t, data["booking"])

	resp, err = app.Test(httptest.NewRequest("GET", "/bookings/b-1/payment-status", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetSessionOfAnotherUser(t *testing.T) {
	_, ucm, _, app := setup(t)
	ucm.On("GetSession", mock.Anything, "cs_2", "", "3f1a6c9e-2d7b-4e58-9a40-6b1f0c2d8e71").
		Return(response.SessionStatus{}, errors.Forbidden("cannot read another user's session"))

	resp, err := app.Test(httptest.NewRequest("GET", "/session/cs_2", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestConsumeProviderEvents(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h, ucm, pub, _ := setup(t)
		msg := message.NewMessage(watermill.NewUUID(), []byte(`{"id":"evt_1"}`))
		ucm.On("ConsumeProviderEvent", mock.Anything, []byte(msg.Payload)).Return(response.Reconciliation{Status: "succeeded"}, nil)

		assert.NoError(t, h.ConsumeProviderEvents(msg))
		assert.Empty(t, pub.topics)
	})

	t.Run("malformed event goes to poison queue", func(t *testing.T) {
		h, ucm, pub, _ := setup(t)
		msg := message.NewMessage(watermill.NewUUID(), []byte(`garbage`))
		ucm.On("ConsumeProviderEvent", mock.Anything, []byte(msg.Payload)).Return(response.Reconciliation{}, errors.BadRequest("malformed provider event"))

		assert.NoError(t, h.ConsumeProviderEvents(msg))
		assert.Equal(t, []string{messagestream.TopicProviderEventsPoisoned}, pub.topics)
	})

	t.Run("transient failure is retried", func(t *testing.T) {
		h, ucm, pub, _ := setup(t)
		msg := message.NewMessage(watermill.NewUUID(), []byte(`{"id":"evt_2"}`))
		ucm.On("ConsumeProviderEvent", mock.Anything, []byte(msg.Payload)).Return(response.Reconciliation{}, errors.ServiceUnavailable("lock busy"))

		assert.Error(t, h.ConsumeProviderEvents(msg))
		assert.Empty(t, pub.topics)
	})
}

func TestReconcileCheckoutSession(t *testing.T) {
	ctx := context.Background()
	bookingID := "3f1a6c9e-2d7b-4e58-9a40-6b1f0c2d8e71"

	t.Run("success", func(t *testing.T) {
		h, ucm, _, _ := setup(t)
		task := asynq.NewTask("reconcile_checkout_session", []byte(`{"booking_id":"`+bookingID+`","session_id":"cs_1"}`))
		ucm.On("ReconcileSession", ctx, &request.ReconcileSessionTask{BookingID: bookingID, SessionID: "cs_1"}).
			Return(response.Reconciliation{Status: "confirmed"}, nil)

		assert.NoError(t, h.ReconcileCheckoutSession(ctx, task))
	})

	t.Run("invalid payload is not retried", func(t *testing.T) {
		h, _, _, _ := setup(t)
		task := asynq.NewTask("reconcile_checkout_session", []byte(`{"session_id":"cs_1"}`))

		err := h.ReconcileCheckoutSession(ctx, task)
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("transient failure is retried", func(t *testing.T) {
		h, ucm, _, _ := setup(t)
		task := asynq.NewTask("reconcile_checkout_session", []byte(`{"booking_id":"`+bookingID+`","session_id":"cs_1"}`))
		ucm.On("ReconcileSession", ctx, mock.Anything).Return(response.Reconciliation{}, errors.ServiceUnavailable("provider down"))

		err := h.ReconcileCheckoutSession(ctx, task)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, asynq.SkipRetry)
	})
}
