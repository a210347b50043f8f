package payment

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/josh-kwaku/dermapay-backend/internal/auth"
	"github.com/josh-kwaku/dermapay-backend/internal/domain"
	"github.com/josh-kwaku/dermapay-backend/internal/logging"
	"github.com/josh-kwaku/dermapay-backend/internal/metrics"
)

const (
	maxNoteLength       = 500
	maxClientNameLength = 120
	defaultDescription  = "DermaPay payment"
)

type CreatePaymentInput struct {
	Mode   domain.PaymentMode
	Amount     int64
	FeePayer   domain.FeePayer
	Note       *string
	ClientName *string
}

type Receipt struct {
	ID                    uuid.UUID
	CheckoutURL           string
	Amount                int64
	CustomerChargedAmount int64
	Status                domain.PaymentStatus
}

// CreatePayment opens a checkout session with the processor and records the
// payment as pending. Nothing is persisted if the processor call fails.
func (e *Engine) CreatePayment(ctx context.Context, actor auth.Actor, in CreatePaymentInput) (*Receipt, error) {
	log := logging.FromContext(ctx)

	m, err := e.resolveMerchant(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	if err := e.validateCreate(in); err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	charged, err := e.fees.ComputeCharge(in.Amount, in.FeePayer)
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	id := e.newID()
	session, err := e.checkout.OpenCheckout(ctx, CheckoutRequest{
		PaymentID:   id,
		Amount:      charged,
		Mode:        in.Mode,
		Description: description(in),
	})
	if err != nil {
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
		}
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	now := e.now()
	p := &domain.Payment{
		ID:                    id,
		MerchantID:            m.ID,
		ExternalPaymentID:     session.ID,
		RequestedAmount:       in.Amount,
		CustomerChargedAmount: charged,
		FeePayer:              in.FeePayer,
		Mode:                  in.Mode,
		Status:                domain.PaymentStatusPending,
		CheckoutURL:           session.URL,
		Note:                  in.Note,
		ClientName:            in.ClientName,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if e.ephemeral {
		log.Info("payment previewed", "payment_id", p.ID, "engine", e.name, "mode", p.Mode)
		metrics.PaymentsCreated.WithLabelValues(string(p.Mode), e.name).Inc()
		return receiptFor(p), nil
	}

	if err := e.payments.Create(ctx, p); err != nil {
		log.Error("checkout session opened but payment not stored",
			"payment_id", id,
			"external_payment_id", session.ID,
			"error", err,
		)
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	metrics.PaymentsCreated.WithLabelValues(string(p.Mode), e.name).Inc()

	log.Info("payment created",
		"payment_id", p.ID,
		"merchant_id", m.ID,
		"engine", e.name,
		"mode", p.Mode,
		"fee_payer", p.FeePayer,
		"amount", p.RequestedAmount,
		"customer_charged_amount", p.CustomerChargedAmount,
	)

	return receiptFor(p), nil
}

func receiptFor(p *domain.Payment) *Receipt {
	return &Receipt{
		ID:                    p.ID,
		CheckoutURL:           p.CheckoutURL,
		Amount:                p.RequestedAmount,
		CustomerChargedAmount: p.CustomerChargedAmount,
		Status:                p.Status,
	}
}

func (e *Engine) validateCreate(in CreatePaymentInput) error {
	if !in.Mode.IsValid() {
		return domain.InvalidField("mode", "must be in_person or link")
	}
	if in.Amount <= 0 {
		return domain.InvalidField("amount", "must be a positive integer in minor units")
	}
	if e.maxAmount > 0 && in.Amount > e.maxAmount {
		return domain.InvalidField("amount", fmt.Sprintf("must not exceed %d", e.maxAmount))
	}
	if in.FeePayer == "" {
		return domain.InvalidField("feePayer", "required")
	}
	if !in.FeePayer.IsValid() {
		return domain.InvalidField("feePayer", "must be merchant or customer")
	}
	if in.Note != nil && utf8.RuneCountInString(*in.Note) > maxNoteLength {
		return domain.InvalidField("note", fmt.Sprintf("must be at most %d characters", maxNoteLength))
	}
	if in.ClientName != nil && utf8.RuneCountInString(*in.ClientName) > maxClientNameLength {
		return domain.InvalidField("clientName", fmt.Sprintf("must be at most %d characters", maxClientNameLength))
	}
	return nil
}

func description(in CreatePaymentInput) string {
	if in.Note != nil && *in.Note != "" {
		return *in.Note
	}
	return defaultDescription
}
