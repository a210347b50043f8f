package fee

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/dermapay-backend/internal/domain"
)

// DefaultSurchargeRate is used when no rate is configured.
var DefaultSurchargeRate = decimal.RequireFromString("0.03")

// Policy computes what the customer is charged for a requested amount. It is
// the only place surcharge arithmetic happens.
type Policy struct {
	surchargeRate decimal.Decimal
	multiplier    decimal.Decimal
}

func NewPolicy(surchargeRate decimal.Decimal) (*Policy, error) {
	if surchargeRate.IsNegative() {
		return nil, fmt.Errorf("NewPolicy: negative surcharge rate %s", surchargeRate)
	}
	return &Policy{
		surchargeRate: surchargeRate,
		multiplier:    decimal.NewFromInt(1).Add(surchargeRate),
	}, nil
}

func (p *Policy) SurchargeRate() decimal.Decimal {
	return p.surchargeRate
}

// ComputeCharge rounds half-up to the nearest minor unit. Amounts are
// positive, so decimal's half-away-from-zero rounding is half-up here.
func (p *Policy) ComputeCharge(requestedAmount int64, payer domain.FeePayer) (int64, error) {
	if requestedAmount <= 0 {
		return 0, fmt.Errorf("ComputeCharge: %w", domain.ErrInvalidAmount)
	}

	switch payer {
	case domain.FeePayerMerchant:
		return requestedAmount, nil
	case domain.FeePayerCustomer:
		charged := decimal.NewFromInt(requestedAmount).Mul(p.multiplier).Round(0)
		if charged.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
			return 0, fmt.Errorf("ComputeCharge: %w", domain.ErrInvalidAmount)
		}
		return charged.IntPart(), nil
	default:
		return 0, fmt.Errorf("ComputeCharge: %w", domain.InvalidField("feePayer", "must be merchant or customer"))
	}
}
