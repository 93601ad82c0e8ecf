package handler

import (
	"context"
	"fmt"

	"rental-payment-service/internal/module/payment/models/request"
	"rental-payment-service/internal/module/payment/usecases"
	"rental-payment-service/internal/pkg/errors"
	"rental-payment-service/internal/pkg/helpers"
	"rental-payment-service/internal/pkg/messagestream"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

const signatureHeader = "Stripe-Signature"

type PaymentHandler struct {
	Log       *otelzap.Logger
	Validator *validator.Validate
	Usecase   usecases.Usecase
	Publish   message.Publisher
}

func (h *PaymentHandler) CreateCheckoutSession(ctx *fiber.Ctx) error {
	bookingID := ctx.Params("bookingId")
	if bookingID == "" {
		return helpers.RespError(ctx, h.Log, errors.BadRequest("bookingId is required"))
	}

	resp, err := h.Usecase.InitiateCheckout(ctx.UserContext(), bookingID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error create checkout session: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccessWithStatus(ctx, h.Log, fiber.StatusCreated, resp, "success create checkout session")
}

// Webhook receives provider pushes. The body is passed on untouched for
// signature verification. Anything but a bad signature or a transient
// failure is acknowledged so the provider does not redeliver it.
func (h *PaymentHandler) Webhook(ctx *fiber.Ctx) error {
	payload := append([]byte(nil), ctx.Body()...)
	signature := ctx.Get(signatureHeader)

	_, err := h.Usecase.HandleWebhook(ctx.UserContext(), payload, signature)
	switch {
	case err == nil:
	case errors.IsUnauthorized(err):
		return helpers.RespError(ctx, h.Log, err)
	case errors.IsRetryable(err):
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error process webhook: %v", err))
		return helpers.RespError(ctx, h.Log, errors.ServiceUnavailable("webhook processing failed, retry later"))
	default:
		h.Log.Ctx(ctx.UserContext()).Warn(fmt.Sprintf("webhook acknowledged without processing: %v", err))
	}

	return ctx.JSON(fiber.Map{"received": true})
}

func (h *PaymentHandler) SaveFrontend(ctx *fiber.Ctx) error {
	var req request.ClientSessionEcho
	if err := ctx.BodyParser(&req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error parse request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse request"))
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error validate request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest(err.Error()))
	}

	resp, err := h.Usecase.SaveFrontend(ctx.UserContext(), &req)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error save frontend payment: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success save payment")
}

func (h *PaymentHandler) GetSession(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("sessionId")
	if sessionID == "" {
		return helpers.RespError(ctx, h.Log, errors.BadRequest("sessionId is required"))
	}

	userID, _ := ctx.Locals("user_id").(string)
	resp, err := h.Usecase.GetSession(ctx.UserContext(), sessionID, ctx.Query("bookingId"), userID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error get session: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success get session")
}

func (h *PaymentHandler) GetHistory(ctx *fiber.Ctx) error {
	userID := ctx.Params("userId")
	if userID == "" {
		return helpers.RespError(ctx, h.Log, errors.BadRequest("userId is required"))
	}

	if tokenUser, _ := ctx.Locals("user_id").(string); tokenUser != userID {
		return helpers.RespError(ctx, h.Log, errors.Forbidden("cannot read another user's payments"))
	}

	history, err := h.Usecase.GetHistory(ctx.UserContext(), userID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error get payment history: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, fiber.Map{"payments": history, "count": len(history)}, "success get payment history")
}

func (h *PaymentHandler) GetPaymentStatus(ctx *fiber.Ctx) error {
	resp, err := h.Usecase.GetPaymentStatus(ctx.UserContext(), ctx.Params("bookingId"))
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error get payment status: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success get payment status")
}

func (h *PaymentHandler) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "ok"})
}

// ConsumeProviderEvents applies provider events relayed through the broker.
// Returning an error hands the message to the router's retry and poison queue.
func (h *PaymentHandler) ConsumeProviderEvents(msg *message.Message) error {
	res, err := h.Usecase.ConsumeProviderEvent(msg.Context(), msg.Payload)
	if err == nil {
		h.Log.Ctx(msg.Context()).Info(fmt.Sprintf("provider event %s reconciled: status=%s ignored=%t", msg.UUID, res.Status, res.Ignored))
		return nil
	}

	if errors.IsRetryable(err) {
		h.Log.Ctx(msg.Context()).Error(fmt.Sprintf("error consume provider event: %v", err))
		return err
	}

	// not retryable: park it for inspection and ack
	reqPoisoned := request.PoisonedQueue{
		TopicTarget: messagestream.TopicProviderEvents,
		ErrorMsg:    err.Error(),
		Payload:     string(msg.Payload),
	}

	jsonPayload, _ := json.Marshal(reqPoisoned)
	if perr := h.Publish.Publish(messagestream.TopicProviderEventsPoisoned, message.NewMessage(watermill.NewUUID(), jsonPayload)); perr != nil {
		h.Log.Ctx(msg.Context()).Error(fmt.Sprintf("error publish to poison queue: %v", perr))
		return perr
	}

	return nil
}

func (h *PaymentHandler) ReconcileCheckoutSession(ctx context.Context, t *asynq.Task) error {
	var req request.ReconcileSessionTask
	if err := json.Unmarshal(t.Payload(), &req); err != nil {
		h.Log.Ctx(ctx).Error(fmt.Sprintf("error unmarshal payload: %v", err))
		return fmt.Errorf("unmarshal reconcile task: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(ctx).Error(fmt.Sprintf("error validate payload: %v", err))
		return fmt.Errorf("validate reconcile task: %v: %w", err, asynq.SkipRetry)
	}

	res, err := h.Usecase.ReconcileSession(ctx, &req)
	if err != nil {
		h.Log.Ctx(ctx).Error(fmt.Sprintf("error reconcile session %s: %v", req.SessionID, err))
		if errors.IsRetryable(err) {
			return err
		}
		return fmt.Errorf("reconcile session %s: %v: %w", req.SessionID, err, asynq.SkipRetry)
	}

	h.Log.Ctx(ctx).Info(fmt.Sprintf("session %s swept: status=%s ignored=%t reason=%s", req.SessionID, res.Status, res.Ignored, res.Reason))
	return nil
}
