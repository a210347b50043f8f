// Package deposyt talks to the Deposyt card processor: hosted checkout
// sessions out, signed payment notifications in.
package deposyt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/josh-kwaku/dermapay-backend/internal/domain"
	"github.com/josh-kwaku/dermapay-backend/internal/logging"
	"github.com/josh-kwaku/dermapay-backend/internal/metrics"
	"github.com/josh-kwaku/dermapay-backend/internal/service/payment"
)

const checkoutSessionsPath = "/v1/checkout-sessions"

type Client struct {
	baseURL     string
	apiKey      string
	callbackURL string
	httpClient  *http.Client
}

func NewClient(baseURL, apiKey, callbackURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		callbackURL: callbackURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

// CheckoutSessionRequest is the wire body for creating a hosted checkout.
type CheckoutSessionRequest struct {
	ClientReferenceID string `json:"client_reference_id"`
	Amount            int64  `json:"amount"`
	Mode              string `json:"mode"`
	Description       string `json:"description"`
	CallbackURL       string `json:"callback_url"`
}

type CheckoutSessionResponse struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkout_url"`
}

// OpenCheckout creates a checkout session. Every failure is reported as
// domain.ErrUpstreamUnavailable; processor detail only reaches the logs.
func (c *Client) OpenCheckout(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	log := logging.FromContext(ctx)

	body, err := json.Marshal(CheckoutSessionRequest{
		ClientReferenceID: req.PaymentID.String(),
		Amount:            req.Amount,
		Mode:              string(req.Mode),
		Description:       req.Description,
		CallbackURL:       c.callbackURL,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenCheckout: marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+checkoutSessionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("OpenCheckout: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	log.Info("processor request sent", "processor", "deposyt", "payment_id", req.PaymentID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		observe("error", start)
		log.Error("processor request failed", "error", err)
		return nil, fmt.Errorf("OpenCheckout: send: %w: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	log.Info("processor response received",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		observe("failed", start)
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Error("processor rejected checkout session", "status", resp.StatusCode, "body", string(snippet))
		return nil, fmt.Errorf("OpenCheckout: unexpected status %d: %w", resp.StatusCode, domain.ErrUpstreamUnavailable)
	}

	var session CheckoutSessionResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&session); err != nil {
		observe("failed", start)
		return nil, fmt.Errorf("OpenCheckout: decode: %w: %w", domain.ErrUpstreamUnavailable, err)
	}
	if session.ID == "" || session.CheckoutURL == "" {
		observe("failed", start)
		return nil, fmt.Errorf("OpenCheckout: incomplete session: %w", domain.ErrUpstreamUnavailable)
	}

	observe("success", start)
	return &payment.CheckoutSession{ID: session.ID, URL: session.CheckoutURL}, nil
}

func observe(status string, start time.Time) {
	metrics.ProcessorRequestDuration.WithLabelValues("open_checkout", status).Observe(time.Since(start).Seconds())
}
