package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/dermapay-backend/internal/domain"
)

const merchantColumns = `id, user_id, full_name, email, phone, shop_name, city, state,
	business_type, monthly_volume, default_fee_payer, created_at`

type MerchantRepository struct {
	db *sql.DB
}

func NewMerchantRepository(db *sql.DB) *MerchantRepository {
	return &MerchantRepository{db: db}
}

func (r *MerchantRepository) Create(ctx context.Context, m *domain.Merchant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO merchants (`+merchantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.UserID, m.FullName, m.Email, m.Phone, m.ShopName, m.City, m.State,
		m.BusinessType, m.MonthlyVolume, m.DefaultFeePayer, m.CreatedAt,
	)
	if err != nil {
		if uniqueConstraint(err) != "" {
			return fmt.Errorf("Create: %w", domain.ErrMerchantExists)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *MerchantRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Merchant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+merchantColumns+` FROM merchants WHERE user_id = $1`, userID,
	)
	m, err := scanMerchant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByUserID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByUserID: %w", err)
	}
	return m, nil
}

func (r *MerchantRepository) UpdateDefaultFeePayer(ctx context.Context, id uuid.UUID, payer domain.FeePayer) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE merchants SET default_fee_payer = $1 WHERE id = $2`, payer, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateDefaultFeePayer: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateDefaultFeePayer: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateDefaultFeePayer: %w", domain.ErrNotFound)
	}
	return nil
}

func scanMerchant(s scanner) (*domain.Merchant, error) {
	var m domain.Merchant
	err := s.Scan(
		&m.ID, &m.UserID, &m.FullName, &m.Email, &m.Phone, &m.ShopName, &m.City, &m.State,
		&m.BusinessType, &m.MonthlyVolume, &m.DefaultFeePayer, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
