package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/dermapay-backend/internal/domain"
)

// DefaultPaymentCapacity bounds how many sandbox payments are kept before the
// oldest are evicted.
const DefaultPaymentCapacity = 1000

type PaymentStore struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]domain.Payment
	byExternal map[string]uuid.UUID
	order      []uuid.UUID
	capacity   int
}

func NewPaymentStore(capacity int) *PaymentStore {
	if capacity <= 0 {
		capacity = DefaultPaymentCapacity
	}
	return &PaymentStore{
		byID:       make(map[uuid.UUID]domain.Payment),
		byExternal: make(map[string]uuid.UUID),
		capacity:   capacity,
	}
}

func (s *PaymentStore) Create(_ context.Context, p *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[p.ID]; ok {
		return fmt.Errorf("Create: payment %s already exists", p.ID)
	}
	if _, ok := s.byExternal[p.ExternalPaymentID]; ok {
		return fmt.Errorf("Create: external payment id %q already exists", p.ExternalPaymentID)
	}

	for len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.byExternal, s.byID[oldest].ExternalPaymentID)
		delete(s.byID, oldest)
	}

	s.byID[p.ID] = clonePayment(*p)
	s.byExternal[p.ExternalPaymentID] = p.ID
	s.order = append(s.order, p.ID)
	return nil
}

func (s *PaymentStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
	}
	out := clonePayment(p)
	return &out, nil
}

func (s *PaymentStore) GetByExternalID(_ context.Context, externalID string) (*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byExternal[externalID]
	if !ok {
		return nil, fmt.Errorf("GetByExternalID: %w", domain.ErrNotFound)
	}
	out := clonePayment(s.byID[id])
	return &out, nil
}

func (s *PaymentStore) TransitionStatus(_ context.Context, id uuid.UUID, from, to domain.PaymentStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("TransitionStatus: %w", domain.ErrNotFound)
	}
	if p.Status != from {
		return fmt.Errorf("TransitionStatus: %w", domain.ErrStatusChanged)
	}
	p.Status = to
	p.UpdatedAt = at
	s.byID[id] = p
	return nil
}

func (s *PaymentStore) ListByMerchant(_ context.Context, merchantID uuid.UUID, limit int) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Payment
	for _, p := range s.byID {
		if p.MerchantID == merchantID {
			out = append(out, clonePayment(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func clonePayment(p domain.Payment) domain.Payment {
	if p.Note != nil {
		note := *p.Note
		p.Note = &note
	}
	if p.ClientName != nil {
		name := *p.ClientName
		p.ClientName = &name
	}
	return p
}
