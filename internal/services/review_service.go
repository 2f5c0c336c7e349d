package services

import (
	"context"
	"fmt"
	"strings"

	"rentaBack/internal/models"
)

type reviewStore interface {
	Create(ctx context.Context, rev models.Review) (models.Review, error)
	Delete(ctx context.Context, id int64, userID string) error
	ListByProperty(ctx context.Context, propertyID int64) (models.PropertyReviews, error)
}

type ReviewService struct {
	Repo reviewStore
}

func (s *ReviewService) Create(ctx context.Context, userID string, rev models.Review) (models.Review, error) {
	if rev.Rating < 1 || rev.Rating > 5 {
		return models.Review{}, fmt.Errorf("%w: rating must be between 1 and 5", models.ErrInvalidInput)
	}
	rev.UserID = userID
	rev.Comment = strings.TrimSpace(rev.Comment)
	return s.Repo.Create(ctx, rev)
}

func (s *ReviewService) Delete(ctx context.Context, userID string, id int64) error {
	return s.Repo.Delete(ctx, id, userID)
}

func (s *ReviewService) List(ctx context.Context, propertyID int64) (models.PropertyReviews, error) {
	return s.Repo.ListByProperty(ctx, propertyID)
}
