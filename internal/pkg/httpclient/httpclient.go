package httpclient

import (
	"fmt"
	"net/http"
	"time"

	"rental-payment-service/config"

	circuit "github.com/rubyist/circuitbreaker"
)

const (
	BreakerConsecutive = "consecutive"
	BreakerThreshold   = "threshold"
	BreakerRate        = "rate"
)

func InitCircuitBreaker(cfg *config.HttpClientConfig, cbType string) *circuit.Breaker {
	switch cbType {
	case BreakerThreshold:
		return circuit.NewThresholdBreaker(cfg.Threshold)
	case BreakerRate:
		return circuit.NewRateBreaker(cfg.Rate, cfg.MinSamples)
	default:
		return circuit.NewConsecutiveBreaker(cfg.Threshold)
	}
}

// InitHttpClient is used for internal service calls (user service).
func InitHttpClient(cfg *config.HttpClientConfig, cb *circuit.Breaker) *circuit.HTTPClient {
	client := &http.Client{Timeout: cfg.Timeout}
	return circuit.NewHTTPClientWithBreaker(cb, cfg.Timeout, client)
}

// NewBreakerClient returns a plain *http.Client whose transport goes through cb.
// SDKs that only accept *http.Client (the payment provider) use this.
func NewBreakerClient(cb *circuit.Breaker, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &breakerTransport{breaker: cb, base: http.DefaultTransport},
	}
}

type breakerTransport struct {
	breaker *circuit.Breaker
	base    http.RoundTripper
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	err := t.breaker.Call(func() error {
		var err error
		resp, err = t.base.RoundTrip(req)
		if err != nil {
			return err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("upstream responded %d", resp.StatusCode)
		}
		return nil
	}, 0)

	// 5xx counts as a breaker failure but the caller still gets the response
	if resp != nil && err != nil && resp.StatusCode >= http.StatusInternalServerError {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}
