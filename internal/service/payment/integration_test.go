package payment_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/dermapay-backend/internal/auth"
	"github.com/josh-kwaku/dermapay-backend/internal/domain"
	"github.com/josh-kwaku/dermapay-backend/internal/fee"
	"github.com/josh-kwaku/dermapay-backend/internal/repository"
	"github.com/josh-kwaku/dermapay-backend/internal/service/payment"
	"github.com/josh-kwaku/dermapay-backend/internal/testutil"
)

type stubProcessor struct {
	err error
}

func (s stubProcessor) OpenCheckout(_ context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &payment.CheckoutSession{
		ID:  "cs_" + req.PaymentID.String()[:8],
		URL: "https://checkout.test/" + req.PaymentID.String()[:8],
	}, nil
}

func setupEngine(t *testing.T, db *sql.DB, processor stubProcessor) *payment.Engine {
	t.Helper()

	policy, err := fee.NewPolicy(fee.DefaultSurchargeRate)
	require.NoError(t, err)

	return payment.NewEngine("live",
		repository.NewMerchantRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewWebhookDeliveryRepository(db),
		processor,
		policy,
		10_000_000,
	)
}

func TestEndToEnd_CreateThenReconcile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := setupEngine(t, db, stubProcessor{})
	ctx := context.Background()

	actor := auth.Actor{UserID: uuid.New()}
	m := testutil.SeedMerchant(t, db, actor.UserID, "Black Lotus Tattoo")

	receipt, err := engine.CreatePayment(ctx, actor, payment.CreatePaymentInput{
		Mode:     domain.PaymentModeLink,
		Amount:   15000,
		FeePayer: domain.FeePayerCustomer,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15450), receipt.CustomerChargedAmount)
	assert.Equal(t, domain.PaymentStatusPending, receipt.Status)

	created, err := engine.GetPayment(ctx, actor, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, created.MerchantID)

	n := payment.Notification{
		ExternalPaymentID: created.ExternalPaymentID,
		EventType:         "payment.succeeded",
		Payload:           []byte(`{"event_type":"payment.succeeded","payment_id":"` + created.ExternalPaymentID + `"}`),
	}
	res, err := engine.Reconcile(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryOutcomeApplied, res.Outcome)

	paid, err := engine.GetPayment(ctx, actor, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, paid.Status)
	assert.True(t, paid.UpdatedAt.After(created.UpdatedAt))

	res, err = engine.Reconcile(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryOutcomeDuplicate, res.Outcome)
	assert.Equal(t, domain.PaymentStatusPaid, testutil.GetPaymentStatus(t, db, receipt.ID))

	assert.Equal(t, 1, testutil.CountDeliveries(t, db, created.ExternalPaymentID, domain.DeliveryOutcomeApplied))
	assert.Equal(t, 1, testutil.CountDeliveries(t, db, created.ExternalPaymentID, domain.DeliveryOutcomeDuplicate))
}

func TestCreatePayment_UpstreamFailureLeavesNoRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := setupEngine(t, db, stubProcessor{err: errors.New("dial tcp: connection refused")})
	ctx := context.Background()

	actor := auth.Actor{UserID: uuid.New()}
	m := testutil.SeedMerchant(t, db, actor.UserID, "Studio")

	_, err := engine.CreatePayment(ctx, actor, payment.CreatePaymentInput{
		Mode: domain.PaymentModeInPerson, Amount: 5000, FeePayer: domain.FeePayerMerchant,
	})
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Equal(t, 0, testutil.CountPayments(t, db, m.ID))
}

func TestCreatePayment_MerchantScoping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := setupEngine(t, db, stubProcessor{})
	ctx := context.Background()

	alice := auth.Actor{UserID: uuid.New()}
	bob := auth.Actor{UserID: uuid.New()}
	aliceShop := testutil.SeedMerchant(t, db, alice.UserID, "Alice Ink")
	bobShop := testutil.SeedMerchant(t, db, bob.UserID, "Bob Ink")

	receipt, err := engine.CreatePayment(ctx, alice, payment.CreatePaymentInput{
		Mode: domain.PaymentModeLink, Amount: 1000, FeePayer: domain.FeePayerMerchant,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, testutil.CountPayments(t, db, aliceShop.ID))
	assert.Equal(t, 0, testutil.CountPayments(t, db, bobShop.ID))

	_, err = engine.GetPayment(ctx, bob, receipt.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreatePayment_NotOnboarded(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := setupEngine(t, db, stubProcessor{})

	_, err := engine.CreatePayment(context.Background(), auth.Actor{UserID: uuid.New()}, payment.CreatePaymentInput{
		Mode: domain.PaymentModeLink, Amount: 1000, FeePayer: domain.FeePayerMerchant,
	})
	require.ErrorIs(t, err, domain.ErrMerchantNotFound)
}

func TestReconcile_ConcurrentConflictingDeliveries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := setupEngine(t, db, stubProcessor{})
	ctx := context.Background()

	m := testutil.SeedMerchant(t, db, uuid.New(), "Studio")
	p := testutil.SeedPayment(t, db, m.ID, 2000, domain.PaymentStatusPending)

	events := []string{
		"payment.succeeded", "payment.failed",
		"payment.succeeded", "payment.failed",
		"payment.succeeded", "payment.failed",
	}

	var wg sync.WaitGroup
	for _, eventType := range events {
		wg.Add(1)
		go func(eventType string) {
			defer wg.Done()
			_, err := engine.Reconcile(ctx, payment.Notification{
				ExternalPaymentID: p.ExternalPaymentID,
				EventType:         eventType,
			})
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrConflictingTransition)
			}
		}(eventType)
	}
	wg.Wait()

	final := testutil.GetPaymentStatus(t, db, p.ID)
	assert.Contains(t, []domain.PaymentStatus{domain.PaymentStatusPaid, domain.PaymentStatusFailed}, final)
	assert.Equal(t, 1, testutil.CountDeliveries(t, db, p.ExternalPaymentID, domain.DeliveryOutcomeApplied))
	assert.Equal(t, 2, testutil.CountDeliveries(t, db, p.ExternalPaymentID, domain.DeliveryOutcomeDuplicate))
	assert.Equal(t, 3, testutil.CountDeliveries(t, db, p.ExternalPaymentID, domain.DeliveryOutcomeConflict))
}

func TestReconcile_UnknownPaymentRecordedNotCreated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := setupEngine(t, db, stubProcessor{})

	res, err := engine.Reconcile(context.Background(), payment.Notification{
		ExternalPaymentID: "cs_ghost",
		EventType:         "payment.succeeded",
	})
	require.ErrorIs(t, err, domain.ErrUnknownPayment)
	assert.Equal(t, domain.DeliveryOutcomeUnknownPayment, res.Outcome)
	assert.Equal(t, 1, testutil.CountDeliveries(t, db, "cs_ghost", domain.DeliveryOutcomeUnknownPayment))

	var n int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM payments WHERE external_payment_id = 'cs_ghost'`).Scan(&n))
	assert.Equal(t, 0, n)
}
