package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/dermapay-backend/internal/domain"
)

func newPayment(merchantID uuid.UUID, createdAt time.Time) *domain.Payment {
	id := uuid.New()
	return &domain.Payment{
		ID:                    id,
		MerchantID:            merchantID,
		ExternalPaymentID:     "cs_" + id.String(),
		RequestedAmount:       1000,
		CustomerChargedAmount: 1030,
		FeePayer:              domain.FeePayerCustomer,
		Mode:                  domain.PaymentModeLink,
		Status:                domain.PaymentStatusPending,
		CreatedAt:             createdAt,
		UpdatedAt:             createdAt,
	}
}

func TestPaymentStore_TransitionStatus(t *testing.T) {
	ctx := context.Background()
	store := NewPaymentStore(10)
	p := newPayment(uuid.New(), time.Now())
	require.NoError(t, store.Create(ctx, p))

	at := time.Now().Add(time.Second)
	require.NoError(t, store.TransitionStatus(ctx, p.ID, domain.PaymentStatusPending, domain.PaymentStatusPaid, at))

	got, err := store.GetByExternalID(ctx, p.ExternalPaymentID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, got.Status)
	assert.Equal(t, at, got.UpdatedAt)

	err = store.TransitionStatus(ctx, p.ID, domain.PaymentStatusPending, domain.PaymentStatusFailed, at)
	assert.ErrorIs(t, err, domain.ErrStatusChanged)

	err = store.TransitionStatus(ctx, uuid.New(), domain.PaymentStatusPending, domain.PaymentStatusPaid, at)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPaymentStore_ConcurrentTransitionHasOneWinner(t *testing.T) {
	ctx := context.Background()
	store := NewPaymentStore(10)
	p := newPayment(uuid.New(), time.Now())
	require.NoError(t, store.Create(ctx, p))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.TransitionStatus(ctx, p.ID, domain.PaymentStatusPending, domain.PaymentStatusPaid, time.Now()) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestPaymentStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewPaymentStore(10)
	note := "deposit"
	p := newPayment(uuid.New(), time.Now())
	p.Note = &note
	require.NoError(t, store.Create(ctx, p))

	got, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	got.Status = domain.PaymentStatusPaid
	*got.Note = "changed"

	again, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, again.Status)
	assert.Equal(t, "deposit", *again.Note)
}

func TestPaymentStore_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	store := NewPaymentStore(2)
	merchantID := uuid.New()
	now := time.Now()

	first := newPayment(merchantID, now.Add(-2*time.Minute))
	second := newPayment(merchantID, now.Add(-time.Minute))
	third := newPayment(merchantID, now)
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, second))
	require.NoError(t, store.Create(ctx, third))

	_, err := store.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.GetByExternalID(ctx, first.ExternalPaymentID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := store.ListByMerchant(ctx, merchantID, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, third.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

func TestPaymentStore_RejectsDuplicateExternalID(t *testing.T) {
	ctx := context.Background()
	store := NewPaymentStore(10)
	p := newPayment(uuid.New(), time.Now())
	require.NoError(t, store.Create(ctx, p))

	dup := newPayment(uuid.New(), time.Now())
	dup.ExternalPaymentID = p.ExternalPaymentID
	require.Error(t, store.Create(ctx, dup))
}

func TestMerchantStore(t *testing.T) {
	ctx := context.Background()
	store := NewMerchantStore()
	m := &domain.Merchant{ID: uuid.New(), UserID: uuid.New(), DefaultFeePayer: domain.FeePayerMerchant}
	require.NoError(t, store.Create(ctx, m))

	err := store.Create(ctx, &domain.Merchant{ID: uuid.New(), UserID: m.UserID})
	assert.ErrorIs(t, err, domain.ErrMerchantExists)

	require.NoError(t, store.UpdateDefaultFeePayer(ctx, m.ID, domain.FeePayerCustomer))
	got, err := store.GetByUserID(ctx, m.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.FeePayerCustomer, got.DefaultFeePayer)

	_, err = store.GetByUserID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBankDestinationStore_OneActivePerMerchant(t *testing.T) {
	ctx := context.Background()
	store := NewBankDestinationStore()
	merchantID := uuid.New()

	require.NoError(t, store.Create(ctx, &domain.BankDestination{ID: uuid.New(), MerchantID: merchantID, IsActive: true}))
	err := store.Create(ctx, &domain.BankDestination{ID: uuid.New(), MerchantID: merchantID, IsActive: true})
	assert.ErrorIs(t, err, domain.ErrBankDestinationExists)

	_, err = store.GetActiveByMerchant(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeliveryStore_NewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewDeliveryStore(2)

	for _, outcome := range []domain.DeliveryOutcome{
		domain.DeliveryOutcomeApplied,
		domain.DeliveryOutcomeDuplicate,
		domain.DeliveryOutcomeConflict,
	} {
		require.NoError(t, store.Create(ctx, &domain.WebhookDelivery{ID: uuid.New(), ExternalPaymentID: "cs_1", Outcome: outcome}))
	}

	got, err := store.ListByExternalID(ctx, "cs_1", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.DeliveryOutcomeConflict, got[0].Outcome)
	assert.Equal(t, domain.DeliveryOutcomeDuplicate, got[1].Outcome)
}

func TestNewSandbox_SeedsDemoMerchant(t *testing.T) {
	ctx := context.Background()
	demoUser := uuid.New()

	sb, err := NewSandbox(ctx, demoUser, "https://pay.dermapay.com/", time.Now(), 0)
	require.NoError(t, err)

	m, err := sb.Merchants.GetByUserID(ctx, demoUser)
	require.NoError(t, err)
	assert.Equal(t, DemoMerchantID, m.ID)
	assert.Equal(t, "Demo Tattoo Studio", m.ShopName)
	assert.Equal(t, domain.FeePayerCustomer, m.DefaultFeePayer)

	payments, err := sb.Payments.ListByMerchant(ctx, m.ID, 10)
	require.NoError(t, err)
	require.Len(t, payments, 3)
	assert.Equal(t, domain.PaymentStatusPaid, payments[0].Status)
	assert.Equal(t, int64(25750), payments[0].CustomerChargedAmount)
	assert.Equal(t, "https://pay.dermapay.com/demo1", payments[0].CheckoutURL)
	assert.Equal(t, domain.PaymentStatusPending, payments[1].Status)
	assert.Equal(t, domain.PaymentStatusFailed, payments[2].Status)
}
