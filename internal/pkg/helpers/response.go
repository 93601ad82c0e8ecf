package helpers

import (
	"rental-payment-service/internal/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespSuccess(ctx *fiber.Ctx, log *otelzap.Logger, data interface{}, message string) error {
	return RespSuccessWithStatus(ctx, log, fiber.StatusOK, data, message)
}

func RespSuccessWithStatus(ctx *fiber.Ctx, log *otelzap.Logger, status int, data interface{}, message string) error {
	log.Ctx(ctx.UserContext()).Debug("response success", zap.Int("status", status), zap.String("message", message))
	return ctx.Status(status).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func RespError(ctx *fiber.Ctx, log *otelzap.Logger, err error) error {
	code := errors.Code(err)
	message := err.Error()
	if code == fiber.StatusInternalServerError {
		// do not leak driver or provider internals
		message = "internal server error"
	}

	log.Ctx(ctx.UserContext()).Debug("response error", zap.Int("status", code), zap.Error(err))
	return ctx.Status(code).JSON(Response{
		Success: false,
		Message: message,
	})
}
