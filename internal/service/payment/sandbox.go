package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var sandboxNamespace = uuid.MustParse("6f1c2f0e-5d7a-4b8e-9a43-0d3c8e1b7a55")

// SandboxCheckout stands in for the processor in demo sessions. It never
// leaves the process and answers after a fixed delay so the caller sees the
// same pacing as a live request.
type SandboxCheckout struct {
	baseURL string
	latency time.Duration
}

func NewSandboxCheckout(baseURL string, latency time.Duration) *SandboxCheckout {
	return &SandboxCheckout{
		baseURL: strings.TrimRight(baseURL, "/"),
		latency: latency,
	}
}

func (s *SandboxCheckout) OpenCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("OpenCheckout: %w", ctx.Err())
		case <-timer.C:
		}
	}

	hexID := strings.ReplaceAll(req.PaymentID.String(), "-", "")
	return &CheckoutSession{
		ID:  "demo_" + hexID,
		URL: s.baseURL + "/" + hexID[:8],
	}, nil
}

// SequentialIDs mints well-formed, deterministic ids for demo payments.
type SequentialIDs struct {
	next atomic.Uint64
}

func (g *SequentialIDs) New() uuid.UUID {
	n := g.next.Add(1)
	return uuid.NewSHA1(sandboxNamespace, []byte(strconv.FormatUint(n, 10)))
}
