package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepo struct{ DB *pgxpool.Pool }

// RecordOrderPlaced idempotent per event_id (ON CONFLICT DO NOTHING),
// aman utk redelivery dari consumer.
func (r *NotificationRepo) RecordOrderPlaced(ctx context.Context, eventID, orderID, userID, body string) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		INSERT INTO notifications(id, event_id, order_id, user_id, kind, body)
		VALUES ($1, $2, $3, $4, 'ORDER_PLACED', $5)
		ON CONFLICT (event_id) DO NOTHING`,
		uuid.NewString(), eventID, orderID, userID, body)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// SudahTercatat: short-circuit idempotency check by event_id.
func (r *NotificationRepo) SudahTercatat(ctx context.Context, eventID string) (bool, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE event_id=$1`, eventID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
