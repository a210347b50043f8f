package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/dermapay-backend/internal/domain"
)

func SeedMerchant(t *testing.T, db *sql.DB, userID uuid.UUID, shopName string) *domain.Merchant {
	t.Helper()

	m := &domain.Merchant{
		ID:              uuid.New(),
		UserID:          userID,
		FullName:        "Test Artist",
		Email:           "artist-" + userID.String()[:8] + "@test.com",
		Phone:           "555-0100",
		ShopName:        shopName,
		City:            "Portland",
		State:           "OR",
		BusinessType:    "sole_proprietor",
		MonthlyVolume:   "0-10000",
		DefaultFeePayer: domain.FeePayerMerchant,
		CreatedAt:       time.Now().UTC().Truncate(time.Microsecond),
	}
	_, err := db.Exec(
		`INSERT INTO merchants (id, user_id, full_name, email, phone, shop_name, city, state,
			business_type, monthly_volume, default_fee_payer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.UserID, m.FullName, m.Email, m.Phone, m.ShopName, m.City, m.State,
		m.BusinessType, m.MonthlyVolume, m.DefaultFeePayer, m.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed merchant: %v", err)
	}
	return m
}

func SeedPayment(t *testing.T, db *sql.DB, merchantID uuid.UUID, amount int64, status domain.PaymentStatus) *domain.Payment {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	id := uuid.New()
	p := &domain.Payment{
		ID:                    id,
		MerchantID:            merchantID,
		ExternalPaymentID:     "cs_" + id.String(),
		RequestedAmount:       amount,
		CustomerChargedAmount: amount,
		FeePayer:              domain.FeePayerMerchant,
		Mode:                  domain.PaymentModeLink,
		Status:                status,
		CheckoutURL:           "https://checkout.test/" + id.String(),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	_, err := db.Exec(
		`INSERT INTO payments (id, merchant_id, external_payment_id, amount, customer_charged_amount,
			fee_payer, mode, status, checkout_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.MerchantID, p.ExternalPaymentID, p.RequestedAmount, p.CustomerChargedAmount,
		p.FeePayer, p.Mode, p.Status, p.CheckoutURL, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	return p
}

func GetPaymentStatus(t *testing.T, db *sql.DB, id uuid.UUID) domain.PaymentStatus {
	t.Helper()
	var status domain.PaymentStatus
	if err := db.QueryRow(`SELECT status FROM payments WHERE id = $1`, id).Scan(&status); err != nil {
		t.Fatalf("get payment status: %v", err)
	}
	return status
}

func CountPayments(t *testing.T, db *sql.DB, merchantID uuid.UUID) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT count(*) FROM payments WHERE merchant_id = $1`, merchantID).Scan(&n); err != nil {
		t.Fatalf("count payments: %v", err)
	}
	return n
}

func CountDeliveries(t *testing.T, db *sql.DB, externalID string, outcome domain.DeliveryOutcome) int {
	t.Helper()
	var n int
	err := db.QueryRow(
		`SELECT count(*) FROM webhook_deliveries WHERE external_payment_id = $1 AND outcome = $2`,
		externalID, outcome,
	).Scan(&n)
	if err != nil {
		t.Fatalf("count deliveries: %v", err)
	}
	return n
}
