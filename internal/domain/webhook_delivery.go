package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type DeliveryOutcome string

const (
	DeliveryOutcomeApplied           DeliveryOutcome = "applied"
	DeliveryOutcomeDuplicate         DeliveryOutcome = "duplicate"
	DeliveryOutcomeUnknownPayment    DeliveryOutcome = "unknown_payment"
	DeliveryOutcomeConflict          DeliveryOutcome = "conflict"
	DeliveryOutcomeUnrecognizedEvent DeliveryOutcome = "unrecognized_event"
)

// WebhookDelivery is the audit record of one processor notification and
// what reconciliation did with it.
type WebhookDelivery struct {
	ID                uuid.UUID
	ExternalPaymentID string
	EventType         string
	Outcome           DeliveryOutcome
	PaymentID         *uuid.UUID
	FromStatus        *PaymentStatus
	ToStatus          *PaymentStatus
	Payload           json.RawMessage
	ReceivedAt        time.Time
}
