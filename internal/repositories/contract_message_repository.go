package repositories

import (
	"context"
	"database/sql"

	"rentaBack/internal/models"
)

type ContractMessageRepository struct {
	DB *sql.DB
}

func insertContractMessage(ctx context.Context, db execer, m *models.ContractMessage) error {
	res, err := db.ExecContext(ctx,
		`INSERT INTO contract_messages (contract_id, sender_id, content, message_type) VALUES (?, ?, ?, ?)`,
		m.ContractID, m.SenderID, m.Content, m.Type)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// Add appends a message to the thread and queues the notification with it.
func (r *ContractMessageRepository) Add(ctx context.Context, m models.ContractMessage, n *models.Notification) (models.ContractMessage, error) {
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := insertContractMessage(ctx, tx, &m); err != nil {
			return err
		}
		return insertNotification(ctx, tx, n)
	})
	return m, err
}

func (r *ContractMessageRepository) List(ctx context.Context, contractID int64) ([]models.ContractMessage, error) {
	query := `
	SELECT m.id, m.contract_id, m.sender_id, m.content, m.message_type, m.is_read, m.created_at, COALESCE(p.full_name, '')
	FROM contract_messages m
	LEFT JOIN profiles p ON p.id = m.sender_id
	WHERE m.contract_id = ?
	ORDER BY m.created_at ASC, m.id ASC`
	rows, err := r.DB.QueryContext(ctx, query, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ContractMessage{}
	for rows.Next() {
		var m models.ContractMessage
		if err := rows.Scan(&m.ID, &m.ContractID, &m.SenderID, &m.Content, &m.Type, &m.IsRead, &m.CreatedAt, &m.SenderName); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkRead flags the counterpart's messages as read and returns how many changed.
func (r *ContractMessageRepository) MarkRead(ctx context.Context, contractID int64, readerID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE contract_messages SET is_read = 1 WHERE contract_id = ? AND sender_id <> ? AND is_read = 0`,
		contractID, readerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
