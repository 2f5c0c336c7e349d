package repositories

import (
	"context"
	"database/sql"

	"rentaBack/internal/models"
)

type WebhookEventRepository struct {
	DB *sql.DB
}

func (r *WebhookEventRepository) Record(ctx context.Context, e models.WebhookEventRecord) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
	INSERT INTO payment_webhook_events (provider, event_type, transaction_id, status, signature_valid, payload, outcome)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Provider, e.EventType, e.TransactionID, e.Status, e.SignatureValid, string(e.Payload), e.Outcome)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *WebhookEventRepository) SetOutcome(ctx context.Context, id int64, outcome string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE payment_webhook_events SET outcome = ? WHERE id = ?`, outcome, id)
	return err
}
