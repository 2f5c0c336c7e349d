package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaBack/internal/models"
	"rentaBack/internal/wompi"
)

type fakeSubscriptions struct {
	latest  *models.Subscription
	pending []models.Subscription
}

func (f *fakeSubscriptions) Latest(context.Context, string) (models.Subscription, error) {
	if f.latest == nil {
		return models.Subscription{}, models.ErrSubscriptionNotFound
	}
	return *f.latest, nil
}

func (f *fakeSubscriptions) CreatePending(_ context.Context, sub models.Subscription) (models.Subscription, error) {
	sub.ID = int64(len(f.pending) + 1)
	sub.Status = models.SubscriptionStatusPending
	f.pending = append(f.pending, sub)
	return sub, nil
}

func (f *fakeSubscriptions) AttachTransaction(context.Context, string, int64, string) error { return nil }

func (f *fakeSubscriptions) ExpireLapsed(context.Context, time.Time) (int64, error) { return 0, nil }

func (f *fakeSubscriptions) ListPayments(context.Context, string) ([]models.PaymentTransaction, error) {
	return nil, nil
}

func newSubscriptionService(repo *fakeSubscriptions) *SubscriptionService {
	return &SubscriptionService{
		Repo: repo,
		Catalog: []models.Plan{
			{ID: "basic_monthly", Name: "Básico", AmountInCents: 1990000, Currency: "COP"},
			{ID: "pro_monthly", Name: "PRO", AmountInCents: 4990000, Currency: "COP"},
		},
		PublicKey:       "pub_test_key",
		IntegritySecret: "test_integrity",
		Now:             clock,
	}
}

func TestCheckoutSignsReference(t *testing.T) {
	repo := &fakeSubscriptions{}
	svc := newSubscriptionService(repo)

	co, err := svc.Checkout(context.Background(), "tenant", "pro_monthly")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(co.Reference, "sub_"))
	assert.Equal(t, int64(4990000), co.AmountInCents)
	assert.Equal(t, "pub_test_key", co.PublicKey)
	assert.Equal(t, wompi.IntegritySignature(co.Reference, 4990000, "COP", "test_integrity"), co.IntegritySignature)
	require.Len(t, repo.pending, 1)
	assert.Equal(t, "pro_monthly", repo.pending[0].PlanID)

	again, err := svc.Checkout(context.Background(), "tenant", "pro_monthly")
	require.NoError(t, err)
	assert.NotEqual(t, co.Reference, again.Reference)
}

func TestCheckoutUnknownPlan(t *testing.T) {
	repo := &fakeSubscriptions{}
	_, err := newSubscriptionService(repo).Checkout(context.Background(), "tenant", "gold")
	assert.ErrorIs(t, err, models.ErrUnknownPlan)
	assert.Empty(t, repo.pending)
}

func TestCurrentReportsPro(t *testing.T) {
	future := fixedNow.Add(24 * time.Hour)
	past := fixedNow.Add(-time.Hour)

	view, err := newSubscriptionService(&fakeSubscriptions{}).Current(context.Background(), "tenant")
	require.NoError(t, err)
	assert.Nil(t, view.Subscription)
	assert.False(t, view.HasPro)

	repo := &fakeSubscriptions{latest: &models.Subscription{PlanID: "pro_monthly", Status: models.SubscriptionStatusActive, ExpiresAt: &future}}
	view, err = newSubscriptionService(repo).Current(context.Background(), "tenant")
	require.NoError(t, err)
	assert.True(t, view.HasPro)

	repo.latest.ExpiresAt = &past
	view, err = newSubscriptionService(repo).Current(context.Background(), "tenant")
	require.NoError(t, err)
	assert.False(t, view.HasPro)
}
