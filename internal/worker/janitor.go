package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/josh-kwaku/dermapay-backend/internal/metrics"
)

type idempotencyPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type deliveryPruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Janitor periodically drops expired idempotency entries and webhook
// delivery records older than the retention window. A zero retention keeps
// deliveries forever.
type Janitor struct {
	idempotency idempotencyPurger
	deliveries  deliveryPruner
	retention   time.Duration
	interval    time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

func NewJanitor(
	idempotency idempotencyPurger,
	deliveries deliveryPruner,
	retention time.Duration,
	interval time.Duration,
	logger *slog.Logger,
) *Janitor {
	return &Janitor{
		idempotency: idempotency,
		deliveries:  deliveries,
		retention:   retention,
		interval:    interval,
		logger:      logger,
		now:         time.Now,
	}
}

// Start blocks until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info("janitor started", "interval", j.interval, "delivery_retention", j.retention)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	n, err := j.idempotency.PurgeExpired(ctx)
	if err != nil {
		j.logger.Warn("idempotency purge failed", "error", err)
	} else if n > 0 {
		metrics.JanitorRowsRemoved.WithLabelValues("idempotency_cache").Add(float64(n))
		j.logger.Info("expired idempotency entries purged", "count", n)
	}

	if j.retention <= 0 {
		return
	}

	cutoff := j.now().UTC().Add(-j.retention)
	n, err = j.deliveries.PruneBefore(ctx, cutoff)
	if err != nil {
		j.logger.Warn("webhook delivery prune failed", "error", err)
		return
	}
	if n > 0 {
		metrics.JanitorRowsRemoved.WithLabelValues("webhook_deliveries").Add(float64(n))
		j.logger.Info("old webhook deliveries pruned", "count", n, "cutoff", cutoff)
	}
}
