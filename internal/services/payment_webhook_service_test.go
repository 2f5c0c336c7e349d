package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaBack/internal/models"
	"rentaBack/internal/wompi"
)

const eventsSecret = "prod_events_secret"

func wompiBody(id, status string) []byte {
	const amount, ts = 4990000, 1773144000
	sum := wompi.Checksum([]string{id, status, fmt.Sprint(amount)}, fmt.Sprint(ts), eventsSecret)
	return []byte(fmt.Sprintf(`{"event":"transaction.updated","data":{"transaction":{"id":%q,"status":%q,"amount_in_cents":%d,"reference":"sub_ref","currency":"COP"}},"signature":{"properties":["transaction.id","transaction.status","transaction.amount_in_cents"],"checksum":%q},"timestamp":%d}`,
		id, status, amount, sum, ts))
}

// fakeLedger mimics the unique (transaction_id, status) payment rows.
type fakeLedger struct {
	mapped  map[string]*models.Subscription
	applied map[string]bool
	calls   int
	err     error
}

func (f *fakeLedger) ApplyPaymentEvent(_ context.Context, ev models.PaymentEvent, now time.Time) (models.PaymentOutcome, error) {
	f.calls++
	if f.err != nil {
		return models.PaymentOutcome{}, f.err
	}
	sub, ok := f.mapped[ev.TransactionID]
	if !ok {
		return models.PaymentOutcome{}, models.ErrSubscriptionNotFound
	}
	out := models.PaymentOutcome{SubscriptionID: sub.ID, UserID: sub.UserID}
	key := ev.TransactionID + "/" + ev.Status
	if f.applied[key] {
		out.AlreadyProcessed = true
		out.Status = sub.Status
		out.ExpiresAt = sub.ExpiresAt
		return out, nil
	}
	f.applied[key] = true
	if ev.Status == models.TransactionApproved {
		exp := now.AddDate(0, 1, 0)
		sub.Status, sub.ExpiresAt = models.SubscriptionStatusActive, &exp
	} else {
		sub.Status = models.SubscriptionStatusExpired
	}
	out.Status, out.ExpiresAt = sub.Status, sub.ExpiresAt
	return out, nil
}

type fakeWebhookEvents struct {
	records  []models.WebhookEventRecord
	outcomes map[int64]string
}

func (f *fakeWebhookEvents) Record(_ context.Context, e models.WebhookEventRecord) (int64, error) {
	f.records = append(f.records, e)
	return int64(len(f.records)), nil
}

func (f *fakeWebhookEvents) SetOutcome(_ context.Context, id int64, outcome string) error {
	f.outcomes[id] = outcome
	return nil
}

func newWebhookService() (*PaymentWebhookService, *fakeLedger, *fakeWebhookEvents, *fakeNotifier) {
	ledger := &fakeLedger{
		mapped:  map[string]*models.Subscription{"tx_1": {ID: 1, UserID: "tenant", PlanID: "pro_monthly", Status: models.SubscriptionStatusPending}},
		applied: map[string]bool{},
	}
	events := &fakeWebhookEvents{outcomes: map[int64]string{}}
	n := &fakeNotifier{}
	return &PaymentWebhookService{
		Payments:     ledger,
		Events:       events,
		Notifier:     n,
		EventsSecret: eventsSecret,
		Now:          clock,
	}, ledger, events, n
}

func TestWebhookApprovedActivates(t *testing.T) {
	svc, ledger, events, n := newWebhookService()

	res, err := svc.Handle(context.Background(), wompiBody("tx_1", "APPROVED"), http.Header{})
	require.NoError(t, err)
	require.NotNil(t, res.Outcome)
	assert.Equal(t, "subscription activated", res.Message)
	assert.Equal(t, models.SubscriptionStatusActive, res.Outcome.Status)
	assert.Equal(t, fixedNow.AddDate(0, 1, 0), *res.Outcome.ExpiresAt)

	require.Len(t, events.records, 1)
	assert.True(t, events.records[0].SignatureValid)
	assert.Equal(t, "tx_1", events.records[0].TransactionID)
	assert.Equal(t, OutcomeApplied, events.outcomes[1])
	assert.Equal(t, 1, ledger.calls)
	require.Len(t, n.notified, 1)
	assert.Equal(t, "tenant", n.notified[0].UserID)
}

func TestWebhookReplayIsAcknowledged(t *testing.T) {
	svc, _, events, n := newWebhookService()
	body := wompiBody("tx_1", "APPROVED")

	first, err := svc.Handle(context.Background(), body, http.Header{})
	require.NoError(t, err)
	second, err := svc.Handle(context.Background(), body, http.Header{})
	require.NoError(t, err)

	assert.Equal(t, "event already processed", second.Message)
	assert.True(t, second.Outcome.AlreadyProcessed)
	assert.Equal(t, *first.Outcome.ExpiresAt, *second.Outcome.ExpiresAt)
	assert.Equal(t, OutcomeDuplicate, events.outcomes[2])
	assert.Len(t, n.notified, 1)
}

func TestWebhookUnmappedTransaction(t *testing.T) {
	svc, ledger, events, n := newWebhookService()

	_, err := svc.Handle(context.Background(), wompiBody("tx_2", "DECLINED"), http.Header{})
	assert.ErrorIs(t, err, models.ErrSubscriptionNotFound)
	require.Len(t, events.records, 1)
	assert.Equal(t, "tx_2", events.records[0].TransactionID)
	assert.Equal(t, OutcomeUnmapped, events.outcomes[1])
	assert.Empty(t, ledger.applied)
	assert.Empty(t, n.notified)
}

func TestWebhookDeclinedExpires(t *testing.T) {
	svc, _, _, n := newWebhookService()

	res, err := svc.Handle(context.Background(), wompiBody("tx_1", "DECLINED"), http.Header{})
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusExpired, res.Outcome.Status)
	assert.Equal(t, "subscription expired", res.Message)
	require.Len(t, n.notified, 1)
	assert.Equal(t, models.NotificationSubscription, n.notified[0].Type)
}

func TestWebhookInvalidSignature(t *testing.T) {
	svc, ledger, events, _ := newWebhookService()
	svc.EventsSecret = "another_secret"

	_, err := svc.Handle(context.Background(), wompiBody("tx_1", "APPROVED"), http.Header{})
	assert.ErrorIs(t, err, wompi.ErrInvalidSignature)
	assert.Zero(t, ledger.calls)
	require.Len(t, events.records, 1)
	assert.False(t, events.records[0].SignatureValid)
	assert.Equal(t, OutcomeInvalidSignature, events.outcomes[1])
}

func TestWebhookPendingIsIgnored(t *testing.T) {
	svc, ledger, events, _ := newWebhookService()

	res, err := svc.Handle(context.Background(), wompiBody("tx_1", "PENDING"), http.Header{})
	require.NoError(t, err)
	assert.Nil(t, res.Outcome)
	assert.Zero(t, ledger.calls)
	assert.Equal(t, OutcomeIgnored, events.outcomes[1])
}

func TestWebhookStorageError(t *testing.T) {
	svc, ledger, events, _ := newWebhookService()
	ledger.err = errors.New("deadlock found")

	_, err := svc.Handle(context.Background(), wompiBody("tx_1", "APPROVED"), http.Header{})
	assert.EqualError(t, err, "deadlock found")
	assert.Equal(t, OutcomeError, events.outcomes[1])
}
