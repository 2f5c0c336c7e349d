package services

import (
	"context"
	"log"
	"strconv"
	"time"

	"rentaBack/internal/cache"
	"rentaBack/internal/models"
)

const favoriteCountTTL = 5 * time.Minute

type favoriteStore interface {
	Add(ctx context.Context, userID string, propertyID int64) error
	Remove(ctx context.Context, userID string, propertyID int64) error
	IsFavorite(ctx context.Context, userID string, propertyID int64) (bool, error)
	Count(ctx context.Context, propertyID int64) (int, error)
	ListByUser(ctx context.Context, userID string) ([]models.Favorite, error)
}

type FavoriteService struct {
	Repo     favoriteStore
	Cache    cache.Cache
	ErrorLog *log.Logger
}

func favoriteCountKey(propertyID int64) string {
	return cache.Key("favorites", "count", strconv.FormatInt(propertyID, 10))
}

func (s *FavoriteService) Add(ctx context.Context, userID string, propertyID int64) error {
	if err := s.Repo.Add(ctx, userID, propertyID); err != nil {
		return err
	}
	s.invalidate(ctx, propertyID)
	return nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID string, propertyID int64) error {
	if err := s.Repo.Remove(ctx, userID, propertyID); err != nil {
		return err
	}
	s.invalidate(ctx, propertyID)
	return nil
}

// invalidate drops the cached count. The favorite is already stored, so a cache
// failure is logged and the stale count ages out with its TTL.
func (s *FavoriteService) invalidate(ctx context.Context, propertyID int64) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, favoriteCountKey(propertyID)); err != nil && s.ErrorLog != nil {
		s.ErrorLog.Printf("favorites %d: invalidate count: %v", propertyID, err)
	}
}

func (s *FavoriteService) IsFavorite(ctx context.Context, userID string, propertyID int64) (bool, error) {
	return s.Repo.IsFavorite(ctx, userID, propertyID)
}

func (s *FavoriteService) List(ctx context.Context, userID string) ([]models.Favorite, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Count returns how many users saved the property, served from cache when possible.
func (s *FavoriteService) Count(ctx context.Context, propertyID int64) (int, error) {
	key := favoriteCountKey(propertyID)
	if s.Cache != nil {
		var n int
		if ok, err := s.Cache.GetJSON(ctx, key, &n); err == nil && ok {
			return n, nil
		}
	}
	n, err := s.Repo.Count(ctx, propertyID)
	if err != nil {
		return 0, err
	}
	if s.Cache != nil {
		_ = s.Cache.SetJSON(ctx, key, n, favoriteCountTTL)
	}
	return n, nil
}
