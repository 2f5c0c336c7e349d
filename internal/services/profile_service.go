package services

import (
	"context"
	"fmt"
	"strings"

	"rentaBack/internal/models"
)

type profileStore interface {
	Get(ctx context.Context, id string) (models.Profile, error)
	Upsert(ctx context.Context, p models.Profile) error
}

type ProfileService struct {
	Repo profileStore
}

func (s *ProfileService) Get(ctx context.Context, id string) (models.Profile, error) {
	return s.Repo.Get(ctx, id)
}

// Save creates or updates the caller's own profile. The role is never taken from input.
func (s *ProfileService) Save(ctx context.Context, userID, email string, p models.Profile) (models.Profile, error) {
	p.ID = userID
	p.FullName = strings.TrimSpace(p.FullName)
	if p.FullName == "" {
		return models.Profile{}, fmt.Errorf("%w: full_name is required", models.ErrInvalidInput)
	}
	if p.Email == "" {
		p.Email = email
	}
	p.Role = ""
	if err := s.Repo.Upsert(ctx, p); err != nil {
		return models.Profile{}, err
	}
	return s.Repo.Get(ctx, userID)
}
