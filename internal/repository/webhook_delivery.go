package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/josh-kwaku/dermapay-backend/internal/domain"
)

const webhookDeliveryColumns = `id, external_payment_id, event_type, outcome, payment_id,
	from_status, to_status, payload, received_at`

type WebhookDeliveryRepository struct {
	db *sql.DB
}

func NewWebhookDeliveryRepository(db *sql.DB) *WebhookDeliveryRepository {
	return &WebhookDeliveryRepository{db: db}
}

func (r *WebhookDeliveryRepository) Create(ctx context.Context, d *domain.WebhookDelivery) error {
	// lib/pq sends []byte as bytea, which jsonb will not accept.
	var payload *string
	if len(d.Payload) > 0 {
		s := string(d.Payload)
		payload = &s
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO webhook_deliveries (`+webhookDeliveryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.ExternalPaymentID, d.EventType, d.Outcome, d.PaymentID,
		d.FromStatus, d.ToStatus, payload, d.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// ListByExternalID returns the most recent deliveries for one processor
// payment, newest first.
func (r *WebhookDeliveryRepository) ListByExternalID(ctx context.Context, externalID string, limit int) ([]domain.WebhookDelivery, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+webhookDeliveryColumns+` FROM webhook_deliveries
		WHERE external_payment_id = $1 ORDER BY received_at DESC LIMIT $2`,
		externalID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByExternalID: %w", err)
	}
	defer rows.Close()

	var deliveries []domain.WebhookDelivery
	for rows.Next() {
		d, err := scanWebhookDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByExternalID: scan: %w", err)
		}
		deliveries = append(deliveries, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByExternalID: rows: %w", err)
	}
	return deliveries, nil
}

func scanWebhookDelivery(s scanner) (*domain.WebhookDelivery, error) {
	var d domain.WebhookDelivery
	var from, to sql.NullString
	var payload []byte
	err := s.Scan(
		&d.ID, &d.ExternalPaymentID, &d.EventType, &d.Outcome, &d.PaymentID,
		&from, &to, &payload, &d.ReceivedAt,
	)
	if err != nil {
		return nil, err
	}
	if from.Valid {
		st := domain.PaymentStatus(from.String)
		d.FromStatus = &st
	}
	if to.Valid {
		st := domain.PaymentStatus(to.String)
		d.ToStatus = &st
	}
	d.Payload = payload
	return &d, nil
}

// PruneBefore deletes audit records received before the cutoff.
func (r *WebhookDeliveryRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM webhook_deliveries WHERE received_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("PruneBefore: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("PruneBefore: rows affected: %w", err)
	}
	return n, nil
}
