package repositories

import (
	"context"
	"database/sql"

	"rentaBack/internal/models"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type NotificationRepository struct {
	DB *sql.DB
}

const insertNotificationSQL = `INSERT INTO notifications (user_id, type, title, body, link) VALUES (?, ?, ?, ?, ?)`

func insertNotification(ctx context.Context, db execer, n *models.Notification) error {
	if n == nil {
		return nil
	}
	res, err := db.ExecContext(ctx, insertNotificationSQL, n.UserID, n.Type, n.Title, n.Body, n.Link)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

func (r *NotificationRepository) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	err := insertNotification(ctx, r.DB, &n)
	return n, err
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, onlyUnread bool, limit int) ([]models.Notification, error) {
	query := `SELECT id, user_id, type, title, body, link, is_read, created_at FROM notifications WHERE user_id = ?`
	if onlyUnread {
		query += " AND is_read = 0"
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query += " ORDER BY created_at DESC LIMIT ?"

	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID).Scan(&n)
	return n, err
}

// MarkRead marks one notification, or all of them when id is 0.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID string, id int64) error {
	if id == 0 {
		_, err := r.DB.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID)
		return err
	}
	res, err := r.DB.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNoRecord
	}
	return nil
}

func (r *NotificationRepository) SaveToken(ctx context.Context, t models.DeviceToken) error {
	_, err := r.DB.ExecContext(ctx, `
	INSERT INTO device_tokens (token, user_id, platform) VALUES (?, ?, ?)
	ON DUPLICATE KEY UPDATE user_id = VALUES(user_id), platform = VALUES(platform)`, t.Token, t.UserID, t.Platform)
	return err
}

func (r *NotificationRepository) DeleteToken(ctx context.Context, userID, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM device_tokens WHERE token = ? AND user_id = ?`, token, userID)
	return err
}

func (r *NotificationRepository) Tokens(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT token FROM device_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
