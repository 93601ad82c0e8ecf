package paymentprovider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"rental-payment-service/config"
	"rental-payment-service/internal/pkg/errors"
	"rental-payment-service/internal/pkg/log"

	circuit "github.com/rubyist/circuitbreaker"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.elastic.co/apm"
)

type Provider interface {
	CreateCheckoutSession(ctx context.Context, in CheckoutParams) (Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (Session, error)
	RetrievePaymentIntent(ctx context.Context, intentID string) (PaymentIntent, error)
	ParseWebhook(payload []byte, signature string) (Event, error)
}

type webhookParser struct {
	secret string
	log    log.Logger
}

// ParseWebhook verifies the signature header when a secret is configured and
// decodes the event. Verification only checks the signature and timestamp
// tolerance; the event's API version is not compared against the client's.
func (w webhookParser) ParseWebhook(payload []byte, signature string) (Event, error) {
	if w.secret != "" {
		if err := webhook.ValidatePayload(payload, signature, w.secret); err != nil {
			return nil, errors.UnauthorizedError("invalid webhook signature")
		}
	} else if w.log != nil {
		w.log.Warn(context.Background(), "webhook secret not configured, accepting unsigned event")
	}
	return DecodeEvent(payload)
}

type stripeProvider struct {
	webhookParser
	api     *client.API
	timeout time.Duration
}

// New returns the Stripe-backed provider. Without a secret key every outbound
// call fails with ServiceUnavailable while webhook parsing keeps working.
func New(cfg *config.StripeConfig, httpClient *http.Client, logger log.Logger) Provider {
	parser := webhookParser{secret: cfg.WebhookSecret, log: logger}
	if cfg.SecretKey == "" {
		logger.Warn(context.Background(), "stripe secret key not configured, payment provider disabled")
		return &disabledProvider{webhookParser: parser}
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg),
	})

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &stripeProvider{webhookParser: parser, api: api, timeout: timeout}
}

func (p *stripeProvider) CreateCheckoutSession(ctx context.Context, in CheckoutParams) (Session, error) {
	span, ctx := apm.StartSpan(ctx, "stripe.checkout.sessions.create", "external.stripe")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(in.ProductName),
	}
	if in.Description != "" {
		product.Description = stripe.String(in.Description)
	}
	if len(in.Images) > 0 {
		product.Images = stripe.StringSlice(in.Images)
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(in.Currency),
					ProductData: product,
					UnitAmount:  stripe.Int64(in.AmountMinor),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(in.SuccessURL),
		CancelURL:         stripe.String(in.CancelURL),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{Metadata: in.Metadata.Map()},
	}
	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}
	if !in.ExpiresAt.IsZero() {
		params.ExpiresAt = stripe.Int64(in.ExpiresAt.Unix())
	}
	for k, v := range in.Metadata.Map() {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	cs, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		p.log.Error(ctx, "stripe create checkout session failed", err)
		return Session{}, mapError("create checkout session", err)
	}
	return sessionFrom(cs), nil
}

func (p *stripeProvider) RetrieveSession(ctx context.Context, sessionID string) (Session, error) {
	span, ctx := apm.StartSpan(ctx, "stripe.checkout.sessions.get", "external.stripe")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("payment_intent")
	params.AddExpand("payment_intent.latest_charge")
	params.Context = ctx

	cs, err := p.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return Session{}, mapError("retrieve checkout session", err)
	}
	return sessionFrom(cs), nil
}

func (p *stripeProvider) RetrievePaymentIntent(ctx context.Context, intentID string) (PaymentIntent, error) {
	span, ctx := apm.StartSpan(ctx, "stripe.payment_intents.get", "external.stripe")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.AddExpand("latest_charge")
	params.Context = ctx

	pi, err := p.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return PaymentIntent{}, mapError("retrieve payment intent", err)
	}
	return intentFrom(pi), nil
}

type disabledProvider struct {
	webhookParser
}

var errDisabled = errors.ServiceUnavailable("payment provider is not configured")

func (d *disabledProvider) CreateCheckoutSession(context.Context, CheckoutParams) (Session, error) {
	return Session{}, errDisabled
}

func (d *disabledProvider) RetrieveSession(context.Context, string) (Session, error) {
	return Session{}, errDisabled
}

func (d *disabledProvider) RetrievePaymentIntent(context.Context, string) (PaymentIntent, error) {
	return PaymentIntent{}, errDisabled
}

func mapError(op string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		switch {
		case se.HTTPStatusCode == http.StatusNotFound:
			return errors.NotFound(fmt.Sprintf("%s: not found at payment provider", op))
		case se.HTTPStatusCode == http.StatusUnauthorized || se.HTTPStatusCode == http.StatusForbidden:
			return errors.ServiceUnavailable("payment provider rejected credentials")
		case se.HTTPStatusCode == http.StatusBadRequest && se.Type == stripe.ErrorTypeInvalidRequest:
			return errors.BadRequest(fmt.Sprintf("%s: %s", op, se.Msg))
		}
	}
	if errors.Is(err, circuit.ErrBreakerOpen) {
		return errors.ServiceUnavailable("payment provider circuit open")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.ServiceUnavailable(fmt.Sprintf("%s: payment provider timed out", op))
	}
	return errors.ServiceUnavailable(fmt.Sprintf("%s: payment provider unavailable", op))
}

func unix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
