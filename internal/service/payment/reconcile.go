package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/dermapay-backend/internal/domain"
	"github.com/josh-kwaku/dermapay-backend/internal/logging"
	"github.com/josh-kwaku/dermapay-backend/internal/metrics"
)

// The transition graph has at most two edges on any path, so three reads
// always observe a settled row.
const maxTransitionAttempts = 3

// Notification is an authenticated processor event. EventType is the raw
// vocabulary as delivered ("payment.succeeded").
type Notification struct {
	ExternalPaymentID string
	EventType         string
	Payload           json.RawMessage
}

type ReconcileResult struct {
	Outcome domain.DeliveryOutcome
	Payment *domain.Payment
}

// Reconcile applies a processor notification to the payment it names.
//
// The result is non-nil whenever the notification was handled, including the
// reportable cases (unknown payment, conflict, unrecognized event) where the
// returned error describes why nothing changed. A nil result means a storage
// failure and the notification should be redelivered.
func (e *Engine) Reconcile(ctx context.Context, n Notification) (*ReconcileResult, error) {
	ctx = logging.With(ctx, "external_payment_id", n.ExternalPaymentID, "event_type", n.EventType)

	p, err := e.payments.GetByExternalID(ctx, n.ExternalPaymentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			res := e.finish(ctx, n, domain.DeliveryOutcomeUnknownPayment, nil, nil)
			return res, fmt.Errorf("Reconcile: %w", domain.ErrUnknownPayment)
		}
		return nil, fmt.Errorf("Reconcile: %w", err)
	}

	target, ok := domain.ParseEventType(n.EventType).TargetStatus()
	if !ok {
		res := e.finish(ctx, n, domain.DeliveryOutcomeUnrecognizedEvent, p, nil)
		return res, fmt.Errorf("Reconcile: %w", domain.ErrUnrecognizedEventType)
	}

	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		if p.Status == target {
			return e.finish(ctx, n, domain.DeliveryOutcomeDuplicate, p, nil), nil
		}
		if !p.Status.CanTransitionTo(target) {
			res := e.finish(ctx, n, domain.DeliveryOutcomeConflict, p, &target)
			return res, fmt.Errorf("Reconcile: %s to %s: %w", p.Status, target, domain.ErrConflictingTransition)
		}

		from := p.Status
		at := e.transitionTime(p.UpdatedAt)
		err := e.payments.TransitionStatus(ctx, p.ID, from, target, at)
		if err == nil {
			before := from
			p.Status = target
			p.UpdatedAt = at
			res := e.finish(ctx, n, domain.DeliveryOutcomeApplied, p, &before)
			return res, nil
		}
		if !errors.Is(err, domain.ErrStatusChanged) {
			return nil, fmt.Errorf("Reconcile: %w", err)
		}

		logging.FromContext(ctx).Info("payment changed concurrently, re-reading",
			"payment_id", p.ID,
			"attempt", attempt,
		)
		p, err = e.payments.GetByID(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("Reconcile: %w", err)
		}
	}

	return nil, fmt.Errorf("Reconcile: %w", domain.ErrStatusChanged)
}

// transitionTime keeps updatedAt strictly increasing even when the clock is
// coarser than successive writes.
func (e *Engine) transitionTime(prev time.Time) time.Time {
	at := e.now().Truncate(time.Microsecond)
	if !at.After(prev) {
		at = prev.Add(time.Microsecond)
	}
	return at
}

// finish records the delivery and reports the outcome. For a conflict, other
// is the status the event asked for; for an applied change it is the status
// the payment left.
func (e *Engine) finish(
	ctx context.Context,
	n Notification,
	outcome domain.DeliveryOutcome,
	p *domain.Payment,
	other *domain.PaymentStatus,
) *ReconcileResult {
	log := logging.FromContext(ctx)

	d := &domain.WebhookDelivery{
		ID:                uuid.New(),
		ExternalPaymentID: n.ExternalPaymentID,
		EventType:         n.EventType,
		Outcome:           outcome,
		Payload:           n.Payload,
		ReceivedAt:        e.now(),
	}
	if p != nil {
		id := p.ID
		current := p.Status
		d.PaymentID = &id
		switch outcome {
		case domain.DeliveryOutcomeApplied:
			d.FromStatus = other
			d.ToStatus = &current
		case domain.DeliveryOutcomeConflict:
			d.FromStatus = &current
			d.ToStatus = other
		default:
			d.FromStatus = &current
		}
	}

	if err := e.deliveries.Create(ctx, d); err != nil {
		log.Error("failed to record webhook delivery", "outcome", outcome, "error", err)
	}

	metrics.ReconciliationOutcomes.WithLabelValues(string(outcome)).Inc()

	switch outcome {
	case domain.DeliveryOutcomeApplied:
		log.Info("payment status updated",
			"payment_id", p.ID,
			"from", *d.FromStatus,
			"to", p.Status,
		)
	case domain.DeliveryOutcomeDuplicate:
		log.Info("duplicate notification ignored", "payment_id", p.ID, "status", p.Status)
	default:
		log.Warn("notification not applied", "outcome", outcome)
	}

	return &ReconcileResult{Outcome: outcome, Payment: p}
}
