package domain

import (
	"time"

	"github.com/google/uuid"
)

type Merchant struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	FullName        string
	Email           string
	Phone           string
	ShopName        string
	City            string
	State           string
	BusinessType    string
	MonthlyVolume   string
	DefaultFeePayer FeePayer
	CreatedAt       time.Time
}

type BankAccountType string

const (
	BankAccountChecking BankAccountType = "checking"
	BankAccountSavings  BankAccountType = "savings"
)

func (t BankAccountType) IsValid() bool {
	return t == BankAccountChecking || t == BankAccountSavings
}

// BankDestination is a merchant's payout target. Only the last four digits
// of the account number are ever stored.
type BankDestination struct {
	ID                 uuid.UUID
	MerchantID         uuid.UUID
	RoutingNumber      string
	AccountNumberLast4 string
	AccountType        BankAccountType
	ProcessorAccountID *string
	IsActive           bool
	CreatedAt          time.Time
}
