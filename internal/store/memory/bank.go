package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/josh-kwaku/dermapay-backend/internal/domain"
)

type BankDestinationStore struct {
	mu     sync.RWMutex
	active map[uuid.UUID]domain.BankDestination
}

func NewBankDestinationStore() *BankDestinationStore {
	return &BankDestinationStore{active: make(map[uuid.UUID]domain.BankDestination)}
}

func (s *BankDestinationStore) Create(_ context.Context, b *domain.BankDestination) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !b.IsActive {
		return nil
	}
	if _, ok := s.active[b.MerchantID]; ok {
		return fmt.Errorf("Create: %w", domain.ErrBankDestinationExists)
	}
	s.active[b.MerchantID] = *b
	return nil
}

func (s *BankDestinationStore) GetActiveByMerchant(_ context.Context, merchantID uuid.UUID) (*domain.BankDestination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.active[merchantID]
	if !ok {
		return nil, fmt.Errorf("GetActiveByMerchant: %w", domain.ErrNotFound)
	}
	return &b, nil
}
