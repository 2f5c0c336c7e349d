package services

import (
	"context"
	"log"
	"strconv"
	"time"

	"rentaBack/internal/models"
	"rentaBack/internal/push"
)

const pushTimeout = 10 * time.Second

type notificationStore interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	ListByUser(ctx context.Context, userID string, onlyUnread bool, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID string, id int64) error
	SaveToken(ctx context.Context, t models.DeviceToken) error
	DeleteToken(ctx context.Context, userID, token string) error
	Tokens(ctx context.Context, userID string) ([]string, error)
}

// notifier is what the workflow services need: rows written inside their own
// transactions are pushed after commit, standalone ones are stored and pushed.
type notifier interface {
	Notify(ctx context.Context, n models.Notification) (models.Notification, error)
	Push(ctx context.Context, n models.Notification)
}

type NotificationService struct {
	Repo     notificationStore
	Sender   push.Sender
	ErrorLog *log.Logger
}

func (s *NotificationService) Notify(ctx context.Context, n models.Notification) (models.Notification, error) {
	saved, err := s.Repo.Create(ctx, n)
	if err != nil {
		return models.Notification{}, err
	}
	s.Push(ctx, saved)
	return saved, nil
}

// Push sends n to every device of its recipient. Failures are logged only.
func (s *NotificationService) Push(ctx context.Context, n models.Notification) {
	if s.Sender == nil || n.UserID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()

	tokens, err := s.Repo.Tokens(ctx, n.UserID)
	if err != nil {
		s.logf("load device tokens for %s: %v", n.UserID, err)
		return
	}
	msg := push.Message{
		Title: n.Title,
		Body:  n.Body,
		Link:  n.Link,
		Data:  map[string]string{"type": n.Type},
	}
	if n.ID > 0 {
		msg.Data["notification_id"] = strconv.FormatInt(n.ID, 10)
	}
	for _, token := range tokens {
		if err := s.Sender.Send(ctx, token, msg); err != nil {
			s.logf("push to %s: %v", n.UserID, err)
		}
	}
}

func (s *NotificationService) List(ctx context.Context, userID string, onlyUnread bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.Repo.ListByUser(ctx, userID, onlyUnread, limit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.Repo.UnreadCount(ctx, userID)
}

// MarkRead marks one notification as read, or all of them when id is 0.
func (s *NotificationService) MarkRead(ctx context.Context, userID string, id int64) error {
	return s.Repo.MarkRead(ctx, userID, id)
}

func (s *NotificationService) RegisterToken(ctx context.Context, t models.DeviceToken) error {
	if t.Token == "" {
		return models.ErrInvalidInput
	}
	if t.Platform == "" {
		t.Platform = "android"
	}
	return s.Repo.SaveToken(ctx, t)
}

func (s *NotificationService) RemoveToken(ctx context.Context, userID, token string) error {
	return s.Repo.DeleteToken(ctx, userID, token)
}

func (s *NotificationService) logf(format string, args ...interface{}) {
	if s.ErrorLog != nil {
		s.ErrorLog.Printf(format, args...)
	}
}

// pushAll delivers notifications that were inserted by a repository transaction.
func pushAll(ctx context.Context, n notifier, list ...*models.Notification) {
	if n == nil {
		return
	}
	for _, item := range list {
		if item != nil {
			n.Push(ctx, *item)
		}
	}
}
