package deposyt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Notifier delivers signed events to a callback URL the way the processor
// does. The mock processor and the operator CLI both use it.
type Notifier struct {
	secret     string
	httpClient *http.Client
}

func NewNotifier(secret string, timeout time.Duration) *Notifier {
	return &Notifier{
		secret: secret,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

// Send returns the callback's status code. Non-2xx responses are errors so
// callers can retry.
func (n *Notifier) Send(ctx context.Context, callbackURL string, ev Event) (int, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return 0, fmt.Errorf("Send: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callbackURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("Send: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, Sign(body, n.secret))

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("Send: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("Send: callback returned %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
