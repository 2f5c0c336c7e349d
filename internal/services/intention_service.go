package services

import (
	"context"
	"fmt"
	"strings"

	"rentaBack/internal/models"
)

type intentionStore interface {
	Create(ctx context.Context, in models.Intention) (models.Intention, bool, error)
	ListForOwner(ctx context.Context, ownerID string) ([]models.Intention, error)
	ListForTenant(ctx context.Context, tenantID string) ([]models.Intention, error)
}

type IntentionService struct {
	Repo       intentionStore
	Properties propertyReader
	Notifier   notifier
}

// Express records the tenant's interest in a listing. Repeating it returns the
// first intention and does not notify the owner again.
func (s *IntentionService) Express(ctx context.Context, tenantID string, propertyID int64, message string) (models.Intention, error) {
	prop, err := s.Properties.GetByID(ctx, propertyID)
	if err != nil {
		return models.Intention{}, err
	}
	if prop.OwnerID == tenantID {
		return models.Intention{}, models.ErrOwnPropertyRequest
	}
	if prop.Status != models.PropertyStatusActive {
		return models.Intention{}, models.ErrPropertyUnavailable
	}
	in, created, err := s.Repo.Create(ctx, models.Intention{
		PropertyID: prop.ID,
		TenantID:   tenantID,
		OwnerID:    prop.OwnerID,
		Message:    strings.TrimSpace(message),
	})
	if err != nil {
		return models.Intention{}, err
	}
	if created && s.Notifier != nil {
		_, _ = s.Notifier.Notify(ctx, models.Notification{
			UserID: prop.OwnerID,
			Type:   models.NotificationIntention,
			Title:  "Alguien está interesado en tu inmueble",
			Body:   fmt.Sprintf("Un arrendatario mostró interés en %s", prop.Title),
			Link:   "/intentions",
		})
	}
	return in, nil
}

func (s *IntentionService) ListForOwner(ctx context.Context, ownerID string) ([]models.Intention, error) {
	return s.Repo.ListForOwner(ctx, ownerID)
}

func (s *IntentionService) ListForTenant(ctx context.Context, tenantID string) ([]models.Intention, error) {
	return s.Repo.ListForTenant(ctx, tenantID)
}
