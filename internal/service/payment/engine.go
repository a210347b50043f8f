package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/dermapay-backend/internal/auth"
	"github.com/josh-kwaku/dermapay-backend/internal/domain"
	"github.com/josh-kwaku/dermapay-backend/internal/fee"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

type merchantStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Merchant, error)
}

type paymentStore interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.Payment, error)
	// TransitionStatus moves the row from one status to another only if it
	// is still in the expected status; otherwise domain.ErrStatusChanged.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.PaymentStatus, at time.Time) error
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit int) ([]domain.Payment, error)
}

type deliveryStore interface {
	Create(ctx context.Context, d *domain.WebhookDelivery) error
}

type checkoutOpener interface {
	OpenCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

// CheckoutRequest asks the processor for a hosted checkout session for one
// payment. Amount is what the customer will be charged.
type CheckoutRequest struct {
	PaymentID   uuid.UUID
	Amount      int64
	Mode        domain.PaymentMode
	Description string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Engine runs the payment lifecycle against whatever stores and processor it
// is given. The live API and the demo sandbox are two Engines.
type Engine struct {
	name       string
	merchants  merchantStore
	payments   paymentStore
	deliveries deliveryStore
	checkout   checkoutOpener
	fees       *fee.Policy
	maxAmount  int64
	newID      func() uuid.UUID
	now        func() time.Time
	ephemeral  bool
}

type Option func(*Engine)

func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(e *Engine) { e.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(e *Engine) { e.now = fn }
}

// Ephemeral makes CreatePayment return a receipt without storing the
// payment. The demo engine runs this way so sessions never see each other's
// writes.
func Ephemeral() Option {
	return func(e *Engine) { e.ephemeral = true }
}

func NewEngine(
	name string,
	merchants merchantStore,
	payments paymentStore,
	deliveries deliveryStore,
	checkout checkoutOpener,
	fees *fee.Policy,
	maxAmount int64,
	opts ...Option,
) *Engine {
	e := &Engine{
		name:       name,
		merchants:  merchants,
		payments:   payments,
		deliveries: deliveries,
		checkout:   checkout,
		fees:       fees,
		maxAmount:  maxAmount,
		newID:      uuid.New,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Name() string {
	return e.name
}

func (e *Engine) GetPayment(ctx context.Context, actor auth.Actor, id uuid.UUID) (*domain.Payment, error) {
	m, err := e.resolveMerchant(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("GetPayment: %w", err)
	}

	p, err := e.payments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetPayment: %w", err)
	}
	if p.MerchantID != m.ID {
		return nil, fmt.Errorf("GetPayment: %w", domain.ErrNotFound)
	}
	return p, nil
}

func (e *Engine) ListPayments(ctx context.Context, actor auth.Actor, limit int) ([]domain.Payment, error) {
	m, err := e.resolveMerchant(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("ListPayments: %w", err)
	}

	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	payments, err := e.payments.ListByMerchant(ctx, m.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("ListPayments: %w", err)
	}
	return payments, nil
}

// resolveMerchant derives the merchant from the authenticated actor. Callers
// never get to name a merchant themselves.
func (e *Engine) resolveMerchant(ctx context.Context, actor auth.Actor) (*domain.Merchant, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	m, err := e.merchants.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrMerchantNotFound
		}
		return nil, err
	}
	return m, nil
}
