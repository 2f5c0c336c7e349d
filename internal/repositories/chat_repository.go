package repositories

import (
	"context"
	"database/sql"
	"errors"

	"rentaBack/internal/models"
)

type ChatRepository struct {
	DB *sql.DB
}

// pair orders two user ids so a conversation is stored once.
func pair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// FindOrCreate returns the conversation between two users about a property.
func (r *ChatRepository) FindOrCreate(ctx context.Context, userA, userB string, propertyID *int64) (models.Conversation, error) {
	u1, u2 := pair(userA, userB)
	var conv models.Conversation
	query := `SELECT id, property_id, user1_id, user2_id, created_at FROM conversations WHERE user1_id = ? AND user2_id = ?`
	args := []interface{}{u1, u2}
	if propertyID != nil {
		query += " AND property_id = ?"
		args = append(args, *propertyID)
	} else {
		query += " AND property_id IS NULL"
	}

	var prop sql.NullInt64
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&conv.ID, &prop, &conv.User1ID, &conv.User2ID, &conv.CreatedAt)
	if err == nil {
		conv.PropertyID = nullInt(prop)
		return conv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, err
	}

	res, err := r.DB.ExecContext(ctx, `INSERT INTO conversations (property_id, user1_id, user2_id) VALUES (?, ?, ?)`, propertyID, u1, u2)
	if err != nil {
		return models.Conversation{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Conversation{}, err
	}
	return models.Conversation{ID: id, PropertyID: propertyID, User1ID: u1, User2ID: u2}, nil
}

func (r *ChatRepository) GetByID(ctx context.Context, id int64) (models.Conversation, error) {
	var conv models.Conversation
	var prop sql.NullInt64
	err := r.DB.QueryRowContext(ctx, `SELECT id, property_id, user1_id, user2_id, created_at FROM conversations WHERE id = ?`, id).
		Scan(&conv.ID, &prop, &conv.User1ID, &conv.User2ID, &conv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, models.ErrConversationNotFound
	}
	conv.PropertyID = nullInt(prop)
	return conv, err
}

// ListForUser returns the user's conversations with the last message and unread count.
func (r *ChatRepository) ListForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	query := `
	SELECT c.id, c.property_id, c.user1_id, c.user2_id, c.created_at,
	       lm.text, lm.created_at,
	       (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id AND m.receiver_id = ? AND m.is_read = 0),
	       pr.id, COALESCE(pr.full_name, ''), pr.avatar_url,
	       p.title, p.images
	FROM conversations c
	LEFT JOIN messages lm ON lm.id = (SELECT MAX(id) FROM messages WHERE conversation_id = c.id)
	LEFT JOIN profiles pr ON pr.id = IF(c.user1_id = ?, c.user2_id, c.user1_id)
	LEFT JOIN properties p ON p.id = c.property_id
	WHERE c.user1_id = ? OR c.user2_id = ?
	ORDER BY COALESCE(lm.created_at, c.created_at) DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Conversation{}
	for rows.Next() {
		var c models.Conversation
		var prop sql.NullInt64
		var lastText, cpID, avatar, title, images sql.NullString
		var lastAt sql.NullTime
		var cp models.ProfileSummary
		if err := rows.Scan(&c.ID, &prop, &c.User1ID, &c.User2ID, &c.CreatedAt,
			&lastText, &lastAt, &c.UnreadCount,
			&cpID, &cp.FullName, &avatar, &title, &images); err != nil {
			return nil, err
		}
		c.PropertyID = nullInt(prop)
		c.LastMessage = lastText.String
		c.LastMessageAt = nullTime(lastAt)
		cp.ID = cpID.String
		cp.AvatarURL = nullString(avatar)
		c.Counterparty = &cp
		if c.PropertyID != nil {
			c.Property = &models.PropertySummary{ID: *c.PropertyID, Title: title.String, ImagePath: firstImage(images)}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type MessageRepository struct {
	DB *sql.DB
}

func (r *MessageRepository) Create(ctx context.Context, m models.Message) (models.Message, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO messages (conversation_id, sender_id, receiver_id, text) VALUES (?, ?, ?, ?)`,
		m.ConversationID, m.SenderID, m.ReceiverID, m.Text)
	if err != nil {
		return models.Message{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Message{}, err
	}
	m.ID = id
	return m, nil
}

// List pages backwards from beforeID; 0 starts from the newest message.
func (r *MessageRepository) List(ctx context.Context, conversationID, beforeID int64, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := `SELECT id, conversation_id, sender_id, receiver_id, text, is_read, created_at FROM messages WHERE conversation_id = ?`
	args := []interface{}{conversationID}
	if beforeID > 0 {
		query += " AND id < ?"
		args = append(args, beforeID)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.ReceiverID, &m.Text, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MessageRepository) MarkRead(ctx context.Context, conversationID int64, readerID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE messages SET is_read = 1 WHERE conversation_id = ? AND receiver_id = ? AND is_read = 0`,
		conversationID, readerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
