package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/dermapay-backend/internal/domain"
)

const paymentColumns = `id, merchant_id, external_payment_id, amount, customer_charged_amount,
	fee_payer, mode, status, checkout_url, note, client_name, created_at, updated_at`

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.MerchantID, p.ExternalPaymentID, p.RequestedAmount, p.CustomerChargedAmount,
		p.FeePayer, p.Mode, p.Status, p.CheckoutURL, p.Note, p.ClientName, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id,
	)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return p, nil
}

func (r *PaymentRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE external_payment_id = $1`, externalID,
	)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByExternalID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByExternalID: %w", err)
	}
	return p, nil
}

// TransitionStatus is a compare-and-set on status: the row changes only if
// nobody moved it since it was read.
func (r *PaymentRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.PaymentStatus, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payments SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`,
		to, at, id, from,
	)
	if err != nil {
		return fmt.Errorf("TransitionStatus: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("TransitionStatus: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("TransitionStatus: %w", domain.ErrStatusChanged)
	}
	return nil
}

func (r *PaymentRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit int) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments
		WHERE merchant_id = $1 ORDER BY created_at DESC, id LIMIT $2`,
		merchantID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByMerchant: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByMerchant: scan: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByMerchant: rows: %w", err)
	}
	return payments, nil
}

func scanPayment(s scanner) (*domain.Payment, error) {
	var p domain.Payment
	err := s.Scan(
		&p.ID, &p.MerchantID, &p.ExternalPaymentID, &p.RequestedAmount, &p.CustomerChargedAmount,
		&p.FeePayer, &p.Mode, &p.Status, &p.CheckoutURL, &p.Note, &p.ClientName, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
