package memory

import (
	"context"
	"sync"

	"github.com/josh-kwaku/dermapay-backend/internal/domain"
)

const defaultDeliveryCapacity = 1000

// DeliveryStore keeps the most recent webhook deliveries in arrival order.
type DeliveryStore struct {
	mu         sync.Mutex
	deliveries []domain.WebhookDelivery
	capacity   int
}

func NewDeliveryStore(capacity int) *DeliveryStore {
	if capacity <= 0 {
		capacity = defaultDeliveryCapacity
	}
	return &DeliveryStore{capacity: capacity}
}

func (s *DeliveryStore) Create(_ context.Context, d *domain.WebhookDelivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.deliveries) >= s.capacity {
		s.deliveries = s.deliveries[1:]
	}
	s.deliveries = append(s.deliveries, *d)
	return nil
}

func (s *DeliveryStore) ListByExternalID(_ context.Context, externalID string, limit int) ([]domain.WebhookDelivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.WebhookDelivery
	for i := len(s.deliveries) - 1; i >= 0; i-- {
		if s.deliveries[i].ExternalPaymentID != externalID {
			continue
		}
		out = append(out, s.deliveries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
