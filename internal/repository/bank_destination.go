package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/dermapay-backend/internal/domain"
)

const bankDestinationColumns = `id, merchant_id, routing_number, account_number_last4,
	account_type, processor_account_id, is_active, created_at`

type BankDestinationRepository struct {
	db *sql.DB
}

func NewBankDestinationRepository(db *sql.DB) *BankDestinationRepository {
	return &BankDestinationRepository{db: db}
}

func (r *BankDestinationRepository) Create(ctx context.Context, b *domain.BankDestination) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bank_destinations (`+bankDestinationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.MerchantID, b.RoutingNumber, b.AccountNumberLast4,
		b.AccountType, b.ProcessorAccountID, b.IsActive, b.CreatedAt,
	)
	if err != nil {
		if uniqueConstraint(err) == "uq_bank_destinations_active" {
			return fmt.Errorf("Create: %w", domain.ErrBankDestinationExists)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *BankDestinationRepository) GetActiveByMerchant(ctx context.Context, merchantID uuid.UUID) (*domain.BankDestination, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bankDestinationColumns+` FROM bank_destinations
		WHERE merchant_id = $1 AND is_active`, merchantID,
	)
	var b domain.BankDestination
	err := row.Scan(
		&b.ID, &b.MerchantID, &b.RoutingNumber, &b.AccountNumberLast4,
		&b.AccountType, &b.ProcessorAccountID, &b.IsActive, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetActiveByMerchant: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetActiveByMerchant: %w", err)
	}
	return &b, nil
}
