// Package memory holds process-local stores with the same contracts as the
// Postgres repositories. The demo sandbox runs on them.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/josh-kwaku/dermapay-backend/internal/domain"
)

type MerchantStore struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]domain.Merchant
	byUser map[uuid.UUID]uuid.UUID
}

func NewMerchantStore() *MerchantStore {
	return &MerchantStore{
		byID:   make(map[uuid.UUID]domain.Merchant),
		byUser: make(map[uuid.UUID]uuid.UUID),
	}
}

func (s *MerchantStore) Create(_ context.Context, m *domain.Merchant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUser[m.UserID]; ok {
		return fmt.Errorf("Create: %w", domain.ErrMerchantExists)
	}
	s.byID[m.ID] = *m
	s.byUser[m.UserID] = m.ID
	return nil
}

func (s *MerchantStore) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Merchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUser[userID]
	if !ok {
		return nil, fmt.Errorf("GetByUserID: %w", domain.ErrNotFound)
	}
	m := s.byID[id]
	return &m, nil
}

func (s *MerchantStore) UpdateDefaultFeePayer(_ context.Context, id uuid.UUID, payer domain.FeePayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("UpdateDefaultFeePayer: %w", domain.ErrNotFound)
	}
	m.DefaultFeePayer = payer
	s.byID[id] = m
	return nil
}
