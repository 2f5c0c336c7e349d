package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaBack/internal/models"
	"rentaBack/internal/push"
)

type fakeNotificationStore struct {
	created []models.Notification
	tokens  map[string][]string
}

func (f *fakeNotificationStore) Create(_ context.Context, n models.Notification) (models.Notification, error) {
	n.ID = int64(len(f.created) + 1)
	f.created = append(f.created, n)
	return n, nil
}

func (f *fakeNotificationStore) ListByUser(context.Context, string, bool, int) ([]models.Notification, error) {
	return f.created, nil
}

func (f *fakeNotificationStore) UnreadCount(context.Context, string) (int, error) { return len(f.created), nil }

func (f *fakeNotificationStore) MarkRead(context.Context, string, int64) error { return nil }

func (f *fakeNotificationStore) SaveToken(_ context.Context, t models.DeviceToken) error {
	f.tokens[t.UserID] = append(f.tokens[t.UserID], t.Token)
	return nil
}

func (f *fakeNotificationStore) DeleteToken(context.Context, string, string) error { return nil }

func (f *fakeNotificationStore) Tokens(_ context.Context, userID string) ([]string, error) {
	return f.tokens[userID], nil
}

type recordingSender struct {
	sent map[string]push.Message
	fail string
}

func (r *recordingSender) Send(_ context.Context, token string, msg push.Message) error {
	if token == r.fail {
		return errors.New("registration-token-not-registered")
	}
	r.sent[token] = msg
	return nil
}

func TestNotifyStoresAndPushesToEveryDevice(t *testing.T) {
	store := &fakeNotificationStore{tokens: map[string][]string{"u1": {"tok-a", "tok-bad", "tok-b"}}}
	sender := &recordingSender{sent: map[string]push.Message{}, fail: "tok-bad"}
	svc := &NotificationService{Repo: store, Sender: sender}

	saved, err := svc.Notify(context.Background(), models.Notification{UserID: "u1", Type: models.NotificationNewMessage, Title: "Hola", Body: "mensaje", Link: "/messages/3"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.ID)
	require.Len(t, sender.sent, 2)
	msg := sender.sent["tok-b"]
	assert.Equal(t, "Hola", msg.Title)
	assert.Equal(t, "/messages/3", msg.Link)
	assert.Equal(t, "1", msg.Data["notification_id"])
	assert.Equal(t, models.NotificationNewMessage, msg.Data["type"])
}

func TestNotifyWithoutSender(t *testing.T) {
	store := &fakeNotificationStore{tokens: map[string][]string{}}
	svc := &NotificationService{Repo: store}
	_, err := svc.Notify(context.Background(), models.Notification{UserID: "u1", Title: "x"})
	require.NoError(t, err)
	assert.Len(t, store.created, 1)
}

func TestRegisterTokenDefaultsPlatform(t *testing.T) {
	store := &fakeNotificationStore{tokens: map[string][]string{}}
	svc := &NotificationService{Repo: store}
	assert.ErrorIs(t, svc.RegisterToken(context.Background(), models.DeviceToken{UserID: "u1"}), models.ErrInvalidInput)
	require.NoError(t, svc.RegisterToken(context.Background(), models.DeviceToken{UserID: "u1", Token: "tok"}))
	assert.Equal(t, []string{"tok"}, store.tokens["u1"])
}

type fakeChats struct {
	convs map[int64]models.Conversation
}

func (f *fakeChats) FindOrCreate(_ context.Context, a, b string, propertyID *int64) (models.Conversation, error) {
	for _, c := range f.convs {
		if c.Has(a) && c.Has(b) {
			return c, nil
		}
	}
	c := models.Conversation{ID: int64(len(f.convs) + 1), User1ID: a, User2ID: b, PropertyID: propertyID}
	f.convs[c.ID] = c
	return c, nil
}

func (f *fakeChats) GetByID(_ context.Context, id int64) (models.Conversation, error) {
	c, ok := f.convs[id]
	if !ok {
		return models.Conversation{}, models.ErrConversationNotFound
	}
	return c, nil
}

func (f *fakeChats) ListForUser(context.Context, string) ([]models.Conversation, error) { return nil, nil }

type fakeMessages struct {
	msgs []models.Message
}

func (f *fakeMessages) Create(_ context.Context, m models.Message) (models.Message, error) {
	m.ID = int64(len(f.msgs) + 1)
	m.CreatedAt = time.Now()
	f.msgs = append(f.msgs, m)
	return m, nil
}

func (f *fakeMessages) List(_ context.Context, convID, _ int64, limit int) ([]models.Message, error) {
	var out []models.Message
	for _, m := range f.msgs {
		if m.ConversationID == convID && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessages) MarkRead(context.Context, int64, string) (int64, error) { return 0, nil }

func TestSendMessageReusesConversation(t *testing.T) {
	chats := &fakeChats{convs: map[int64]models.Conversation{}}
	msgs := &fakeMessages{}
	n := &fakeNotifier{}
	svc := &MessagingService{Chats: chats, Messages: msgs, Notifier: n}
	ctx := context.Background()

	first, err := svc.Send(ctx, "a", models.SendMessageRequest{ReceiverID: "b", Text: " hola "})
	require.NoError(t, err)
	second, err := svc.Send(ctx, "b", models.SendMessageRequest{ReceiverID: "a", Text: "qué tal"})
	require.NoError(t, err)

	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.Equal(t, "hola", first.Text)
	require.Len(t, n.notified, 2)
	assert.Equal(t, "b", n.notified[0].UserID)

	_, err = svc.History(ctx, "c", first.ConversationID, 0, 0)
	assert.ErrorIs(t, err, models.ErrForbidden)
	history, err := svc.History(ctx, "a", first.ConversationID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestSendMessageValidation(t *testing.T) {
	svc := &MessagingService{}
	_, err := svc.Send(context.Background(), "a", models.SendMessageRequest{ReceiverID: "b", Text: "  "})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = svc.Send(context.Background(), "a", models.SendMessageRequest{ReceiverID: "a", Text: "yo"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestPreviewTruncatesRunes(t *testing.T) {
	assert.Equal(t, "ñandú", preview("ñandú", 5))
	assert.Equal(t, "ñan…", preview("ñandú", 3))
}
