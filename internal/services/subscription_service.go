package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentaBack/internal/models"
	"rentaBack/internal/wompi"
)

type subscriptionStore interface {
	Latest(ctx context.Context, userID string) (models.Subscription, error)
	CreatePending(ctx context.Context, sub models.Subscription) (models.Subscription, error)
	AttachTransaction(ctx context.Context, userID string, subscriptionID int64, transactionID string) error
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)
	ListPayments(ctx context.Context, userID string) ([]models.PaymentTransaction, error)
}

type SubscriptionService struct {
	Repo            subscriptionStore
	Catalog         []models.Plan
	PublicKey       string
	IntegritySecret string
	RedirectURL     string
	Now             func() time.Time
}

func (s *SubscriptionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SubscriptionService) Plans() []models.Plan {
	plans := make([]models.Plan, len(s.Catalog))
	copy(plans, s.Catalog)
	return plans
}

func (s *SubscriptionService) plan(id string) (models.Plan, bool) {
	for _, p := range s.Catalog {
		if p.ID == id {
			return p, true
		}
	}
	return models.Plan{}, false
}

// Current returns the user's latest subscription and whether it grants PRO now.
func (s *SubscriptionService) Current(ctx context.Context, userID string) (models.SubscriptionStatusView, error) {
	sub, err := s.Repo.Latest(ctx, userID)
	if errors.Is(err, models.ErrSubscriptionNotFound) {
		return models.SubscriptionStatusView{}, nil
	}
	if err != nil {
		return models.SubscriptionStatusView{}, err
	}
	return models.SubscriptionStatusView{Subscription: &sub, HasPro: sub.ActivePro(s.now())}, nil
}

// Checkout opens a pending subscription and returns what the payment widget needs.
func (s *SubscriptionService) Checkout(ctx context.Context, userID, planID string) (models.Checkout, error) {
	plan, ok := s.plan(strings.TrimSpace(planID))
	if !ok {
		return models.Checkout{}, models.ErrUnknownPlan
	}
	if s.IntegritySecret == "" {
		return models.Checkout{}, fmt.Errorf("wompi integrity secret is not configured")
	}
	sub, err := s.Repo.CreatePending(ctx, models.Subscription{
		UserID:           userID,
		PlanID:           plan.ID,
		PaymentReference: "sub_" + uuid.NewString(),
		AmountInCents:    plan.AmountInCents,
		Currency:         plan.Currency,
	})
	if err != nil {
		return models.Checkout{}, err
	}
	return models.Checkout{
		SubscriptionID:     sub.ID,
		Reference:          sub.PaymentReference,
		AmountInCents:      sub.AmountInCents,
		Currency:           sub.Currency,
		IntegritySignature: wompi.IntegritySignature(sub.PaymentReference, sub.AmountInCents, sub.Currency, s.IntegritySecret),
		PublicKey:          s.PublicKey,
		RedirectURL:        s.RedirectURL,
	}, nil
}

func (s *SubscriptionService) AttachTransaction(ctx context.Context, userID string, subscriptionID int64, transactionID string) error {
	transactionID = strings.TrimSpace(transactionID)
	if subscriptionID <= 0 || transactionID == "" {
		return models.ErrInvalidInput
	}
	return s.Repo.AttachTransaction(ctx, userID, subscriptionID, transactionID)
}

func (s *SubscriptionService) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	return s.Repo.ExpireLapsed(ctx, now)
}

func (s *SubscriptionService) Payments(ctx context.Context, userID string) ([]models.PaymentTransaction, error) {
	return s.Repo.ListPayments(ctx, userID)
}
