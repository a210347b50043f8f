package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type PaymentMode string

const (
	PaymentModeInPerson PaymentMode = "in_person"
	PaymentModeLink     PaymentMode = "link"
)

func (m PaymentMode) IsValid() bool {
	return m == PaymentModeInPerson || m == PaymentModeLink
}

type FeePayer string

const (
	FeePayerMerchant FeePayer = "merchant"
	FeePayerCustomer FeePayer = "customer"
)

func (f FeePayer) IsValid() bool {
	return f == FeePayerMerchant || f == FeePayerCustomer
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// A refund may still arrive after the customer paid; every other terminal
// state is final.
var allowedTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded},
	PaymentStatusPaid:    {PaymentStatusRefunded},
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Payment struct {
	ID                    uuid.UUID
	MerchantID            uuid.UUID
	ExternalPaymentID     string
	RequestedAmount       int64
	CustomerChargedAmount int64
	FeePayer              FeePayer
	Mode                  PaymentMode
	Status                PaymentStatus
	CheckoutURL           string
	Note                  *string
	ClientName            *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// EventType is the processor's notification vocabulary, normalised so that
// "payment.succeeded" and "succeeded" are the same event.
type EventType string

const (
	EventTypeSucceeded EventType = "succeeded"
	EventTypeFailed    EventType = "failed"
	EventTypeRefunded  EventType = "refunded"
	EventTypeUnknown   EventType = "unknown"
)

func ParseEventType(raw string) EventType {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(raw)), "payment.")
	switch EventType(name) {
	case EventTypeSucceeded, EventTypeFailed, EventTypeRefunded:
		return EventType(name)
	default:
		return EventTypeUnknown
	}
}

func (e EventType) TargetStatus() (PaymentStatus, bool) {
	switch e {
	case EventTypeSucceeded:
		return PaymentStatusPaid, true
	case EventTypeFailed:
		return PaymentStatusFailed, true
	case EventTypeRefunded:
		return PaymentStatusRefunded, true
	default:
		return "", false
	}
}
