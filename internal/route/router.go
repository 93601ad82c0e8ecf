package router

import (
	"rental-payment-service/internal/module/payment/handler"
	"rental-payment-service/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
)

func Initialize(app *fiber.App, handlerPayment *handler.PaymentHandler, m *middleware.Middleware) *fiber.App {

	// health check
	app.Get("/health", handlerPayment.Health)

	Api := app.Group("/api")

	v1 := Api.Group("/v1")
	v1.Get("/health", handlerPayment.Health)

	// provider callbacks, authenticated by signature
	v1.Post("/webhook", handlerPayment.Webhook)

	// user routes
	v1.Post("/checkout/:bookingId", m.ValidateToken, handlerPayment.CreateCheckoutSession)
	v1.Post("/save-frontend", m.ValidateToken, handlerPayment.SaveFrontend)
	v1.Get("/session/:sessionId", m.ValidateToken, handlerPayment.GetSession)
	v1.Get("/history/:userId", m.ValidateToken, handlerPayment.GetHistory)
	v1.Get("/bookings/:bookingId/payment-status", m.ValidateToken, handlerPayment.GetPaymentStatus)

	return app

}
