package services

import (
	"context"
	"fmt"
	"strings"

	"rentaBack/internal/models"
)

type conversationStore interface {
	FindOrCreate(ctx context.Context, userA, userB string, propertyID *int64) (models.Conversation, error)
	GetByID(ctx context.Context, id int64) (models.Conversation, error)
	ListForUser(ctx context.Context, userID string) ([]models.Conversation, error)
}

type messageStore interface {
	Create(ctx context.Context, m models.Message) (models.Message, error)
	List(ctx context.Context, conversationID, beforeID int64, limit int) ([]models.Message, error)
	MarkRead(ctx context.Context, conversationID int64, readerID string) (int64, error)
}

type MessagingService struct {
	Chats    conversationStore
	Messages messageStore
	Notifier notifier
}

// Send delivers a direct message, opening the conversation on first contact.
func (s *MessagingService) Send(ctx context.Context, senderID string, req models.SendMessageRequest) (models.Message, error) {
	text := strings.TrimSpace(req.Text)
	switch {
	case text == "":
		return models.Message{}, fmt.Errorf("%w: text is required", models.ErrInvalidInput)
	case req.ReceiverID == "" || req.ReceiverID == senderID:
		return models.Message{}, fmt.Errorf("%w: invalid receiver", models.ErrInvalidInput)
	}

	conv, err := s.Chats.FindOrCreate(ctx, senderID, req.ReceiverID, req.PropertyID)
	if err != nil {
		return models.Message{}, err
	}
	msg, err := s.Messages.Create(ctx, models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		ReceiverID:     req.ReceiverID,
		Text:           text,
	})
	if err != nil {
		return models.Message{}, err
	}
	if s.Notifier != nil {
		_, _ = s.Notifier.Notify(ctx, models.Notification{
			UserID: req.ReceiverID,
			Type:   models.NotificationNewMessage,
			Title:  "Nuevo mensaje",
			Body:   preview(text, 80),
			Link:   fmt.Sprintf("/messages/%d", conv.ID),
		})
	}
	return msg, nil
}

func preview(text string, max int) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max]) + "…"
}

func (s *MessagingService) Conversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	return s.Chats.ListForUser(ctx, userID)
}

func (s *MessagingService) conversation(ctx context.Context, userID string, id int64) (models.Conversation, error) {
	conv, err := s.Chats.GetByID(ctx, id)
	if err != nil {
		return models.Conversation{}, err
	}
	if !conv.Has(userID) {
		return models.Conversation{}, models.ErrForbidden
	}
	return conv, nil
}

// History pages backwards through a conversation; beforeID 0 starts at the newest message.
func (s *MessagingService) History(ctx context.Context, userID string, conversationID, beforeID int64, limit int) ([]models.Message, error) {
	if _, err := s.conversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.Messages.List(ctx, conversationID, beforeID, limit)
}

func (s *MessagingService) MarkRead(ctx context.Context, userID string, conversationID int64) (int64, error) {
	if _, err := s.conversation(ctx, userID, conversationID); err != nil {
		return 0, err
	}
	return s.Messages.MarkRead(ctx, conversationID, userID)
}
