package merchant

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/dermapay-backend/internal/auth"
	"github.com/josh-kwaku/dermapay-backend/internal/domain"
	"github.com/josh-kwaku/dermapay-backend/internal/logging"
)

type merchantStore interface {
	Create(ctx context.Context, m *domain.Merchant) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Merchant, error)
	UpdateDefaultFeePayer(ctx context.Context, id uuid.UUID, payer domain.FeePayer) error
}

type bankStore interface {
	Create(ctx context.Context, b *domain.BankDestination) error
	GetActiveByMerchant(ctx context.Context, merchantID uuid.UUID) (*domain.BankDestination, error)
}

type Service struct {
	merchants merchantStore
	banks     bankStore
	readOnly  bool
}

type Option func(*Service)

// ReadOnly validates and answers every mutation as if it succeeded but never
// writes. The demo sandbox is shared by all demo sessions, so one visitor's
// changes must not leak into another's.
func ReadOnly() Option {
	return func(s *Service) { s.readOnly = true }
}

func NewService(merchants merchantStore, banks bankStore, opts ...Option) *Service {
	s := &Service{merchants: merchants, banks: banks}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type OnboardInput struct {
	FullName        string
	Email           string
	Phone           string
	ShopName        string
	City            string
	State           string
	BusinessType    string
	MonthlyVolume   string
	DefaultFeePayer domain.FeePayer
}

type BankInput struct {
	RoutingNumber string
	AccountNumber string
	AccountType   domain.BankAccountType
}

func (s *Service) Onboard(ctx context.Context, actor auth.Actor, in OnboardInput) (*domain.Merchant, error) {
	log := logging.FromContext(ctx)

	if !actor.Authenticated() {
		return nil, fmt.Errorf("Onboard: %w", domain.ErrUnauthenticated)
	}

	in = in.trimmed()
	if in.DefaultFeePayer == "" {
		in.DefaultFeePayer = domain.FeePayerMerchant
	}
	if err := in.validate(); err != nil {
		return nil, fmt.Errorf("Onboard: %w", err)
	}

	m := &domain.Merchant{
		ID:              uuid.New(),
		UserID:          actor.UserID,
		FullName:        in.FullName,
		Email:           in.Email,
		Phone:           in.Phone,
		ShopName:        in.ShopName,
		City:            in.City,
		State:           in.State,
		BusinessType:    in.BusinessType,
		MonthlyVolume:   in.MonthlyVolume,
		DefaultFeePayer: in.DefaultFeePayer,
		CreatedAt:       time.Now().UTC(),
	}

	if s.readOnly {
		if _, err := s.merchants.GetByUserID(ctx, actor.UserID); err == nil {
			return nil, fmt.Errorf("Onboard: %w", domain.ErrMerchantExists)
		}
		return m, nil
	}
	if err := s.merchants.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("Onboard: %w", err)
	}

	log.Info("merchant onboarded", "merchant_id", m.ID, "user_id", actor.UserID)
	return m, nil
}

func (s *Service) Current(ctx context.Context, actor auth.Actor) (*domain.Merchant, error) {
	m, err := s.resolve(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("Current: %w", err)
	}
	return m, nil
}

func (s *Service) UpdateDefaultFeePayer(ctx context.Context, actor auth.Actor, payer domain.FeePayer) (*domain.Merchant, error) {
	m, err := s.resolve(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("UpdateDefaultFeePayer: %w", err)
	}
	if !payer.IsValid() {
		return nil, fmt.Errorf("UpdateDefaultFeePayer: %w", domain.InvalidField("defaultFeePayer", "must be merchant or customer"))
	}

	if !s.readOnly {
		if err := s.merchants.UpdateDefaultFeePayer(ctx, m.ID, payer); err != nil {
			return nil, fmt.Errorf("UpdateDefaultFeePayer: %w", err)
		}
	}
	m.DefaultFeePayer = payer

	logging.FromContext(ctx).Info("default fee payer updated", "merchant_id", m.ID, "fee_payer", payer)
	return m, nil
}

// LinkBankDestination stores the payout account. The full account number is
// validated and then discarded; only its last four digits are kept.
func (s *Service) LinkBankDestination(ctx context.Context, actor auth.Actor, in BankInput) (*domain.BankDestination, error) {
	m, err := s.resolve(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("LinkBankDestination: %w", err)
	}

	routing := strings.TrimSpace(in.RoutingNumber)
	account := strings.TrimSpace(in.AccountNumber)
	if len(routing) != 9 || !allDigits(routing) {
		return nil, fmt.Errorf("LinkBankDestination: %w", domain.InvalidField("routingNumber", "must be 9 digits"))
	}
	if len(account) < 4 || len(account) > 17 || !allDigits(account) {
		return nil, fmt.Errorf("LinkBankDestination: %w", domain.InvalidField("accountNumber", "must be 4 to 17 digits"))
	}
	if in.AccountType == "" {
		in.AccountType = domain.BankAccountChecking
	}
	if !in.AccountType.IsValid() {
		return nil, fmt.Errorf("LinkBankDestination: %w", domain.InvalidField("accountType", "must be checking or savings"))
	}

	b := &domain.BankDestination{
		ID:                 uuid.New(),
		MerchantID:         m.ID,
		RoutingNumber:      routing,
		AccountNumberLast4: account[len(account)-4:],
		AccountType:        in.AccountType,
		IsActive:           true,
		CreatedAt:          time.Now().UTC(),
	}
	if s.readOnly {
		return b, nil
	}
	if err := s.banks.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("LinkBankDestination: %w", err)
	}

	logging.FromContext(ctx).Info("bank destination linked",
		"merchant_id", m.ID,
		"bank_destination_id", b.ID,
		"account_last4", b.AccountNumberLast4,
	)
	return b, nil
}

func (s *Service) ActiveBankDestination(ctx context.Context, actor auth.Actor) (*domain.BankDestination, error) {
	m, err := s.resolve(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("ActiveBankDestination: %w", err)
	}

	b, err := s.banks.GetActiveByMerchant(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("ActiveBankDestination: %w", err)
	}
	return b, nil
}

func (s *Service) resolve(ctx context.Context, actor auth.Actor) (*domain.Merchant, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	m, err := s.merchants.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrMerchantNotFound
		}
		return nil, err
	}
	return m, nil
}

func (in OnboardInput) trimmed() OnboardInput {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.ShopName = strings.TrimSpace(in.ShopName)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.BusinessType = strings.TrimSpace(in.BusinessType)
	in.MonthlyVolume = strings.TrimSpace(in.MonthlyVolume)
	return in
}

func (in OnboardInput) validate() error {
	required := []struct{ field, value string }{
		{"fullName", in.FullName},
		{"email", in.Email},
		{"phone", in.Phone},
		{"shopName", in.ShopName},
		{"city", in.City},
		{"state", in.State},
	}
	for _, r := range required {
		if r.value == "" {
			return domain.InvalidField(r.field, "required")
		}
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return domain.InvalidField("email", "must be a valid email address")
	}
	if !in.DefaultFeePayer.IsValid() {
		return domain.InvalidField("defaultFeePayer", "must be merchant or customer")
	}
	return nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
