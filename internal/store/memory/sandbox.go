package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/dermapay-backend/internal/domain"
)

var (
	seedNamespace  = uuid.MustParse("0b8e5d2c-3f41-4c6a-8d7e-2a9f1c4b6e13")
	DemoMerchantID = uuid.NewSHA1(seedNamespace, []byte("merchant"))
)

// Sandbox is the full set of stores backing demo sessions.
type Sandbox struct {
	Merchants  *MerchantStore
	Payments   *PaymentStore
	Banks      *BankDestinationStore
	Deliveries *DeliveryStore
}

type seedPayment struct {
	amount, charged int64
	status          domain.PaymentStatus
	mode            domain.PaymentMode
	payer           domain.FeePayer
	note, client    string
	age             time.Duration
}

var seedPayments = []seedPayment{
	{25000, 25750, domain.PaymentStatusPaid, domain.PaymentModeInPerson, domain.FeePayerCustomer, "Half sleeve deposit", "Sarah Johnson", 0},
	{8000, 8000, domain.PaymentStatusPending, domain.PaymentModeLink, domain.FeePayerMerchant, "Flash piece - walk-in", "Mike Chen", 90 * time.Minute},
	{15000, 15450, domain.PaymentStatusFailed, domain.PaymentModeInPerson, domain.FeePayerCustomer, "Touch-up session", "Alex Rivera", 24 * time.Hour},
}

// NewSandbox returns stores holding the demo merchant, owned by demoUserID,
// and its sample payment history.
func NewSandbox(ctx context.Context, demoUserID uuid.UUID, checkoutBaseURL string, now time.Time, capacity int) (*Sandbox, error) {
	sb := &Sandbox{
		Merchants:  NewMerchantStore(),
		Payments:   NewPaymentStore(capacity),
		Banks:      NewBankDestinationStore(),
		Deliveries: NewDeliveryStore(capacity),
	}

	merchant := &domain.Merchant{
		ID:              DemoMerchantID,
		UserID:          demoUserID,
		FullName:        "Demo Artist",
		Email:           "demo@dermapay.com",
		Phone:           "555-0123",
		ShopName:        "Demo Tattoo Studio",
		City:            "Los Angeles",
		State:           "CA",
		BusinessType:    "sole_proprietor",
		MonthlyVolume:   "10000-50000",
		DefaultFeePayer: domain.FeePayerCustomer,
		CreatedAt:       now,
	}
	if err := sb.Merchants.Create(ctx, merchant); err != nil {
		return nil, fmt.Errorf("NewSandbox: %w", err)
	}

	base := strings.TrimRight(checkoutBaseURL, "/")
	// Oldest first so eviction removes history before recent activity.
	for i := len(seedPayments) - 1; i >= 0; i-- {
		sp := seedPayments[i]
		n := i + 1
		note, client := sp.note, sp.client
		at := now.Add(-sp.age)
		p := &domain.Payment{
			ID:                    uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("payment-%d", n))),
			MerchantID:            merchant.ID,
			ExternalPaymentID:     fmt.Sprintf("demo_seed_%d", n),
			RequestedAmount:       sp.amount,
			CustomerChargedAmount: sp.charged,
			FeePayer:              sp.payer,
			Mode:                  sp.mode,
			Status:                sp.status,
			CheckoutURL:           fmt.Sprintf("%s/demo%d", base, n),
			Note:                  &note,
			ClientName:            &client,
			CreatedAt:             at,
			UpdatedAt:             at,
		}
		if err := sb.Payments.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("NewSandbox: %w", err)
		}
	}

	return sb, nil
}
