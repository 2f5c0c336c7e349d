package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"rentaBack/internal/geo"
	"rentaBack/internal/models"
)

type propertyStore interface {
	Create(ctx context.Context, p models.Property) (models.Property, error)
	GetByID(ctx context.Context, id int64) (models.Property, error)
	Update(ctx context.Context, p models.Property) (models.Property, error)
	UpdateStatus(ctx context.Context, id int64, ownerID, status string) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Property, error)
	Search(ctx context.Context, f models.PropertyFilter, userID string) (models.PropertyListResponse, error)
}

type PropertyService struct {
	Repo      propertyStore
	Favorites favoriteChecker
	Geocoder  geo.Geocoder
	ErrorLog  *log.Logger
}

type favoriteChecker interface {
	IsFavorite(ctx context.Context, userID string, propertyID int64) (bool, error)
}

func validateProperty(p models.Property) error {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return fmt.Errorf("%w: title is required", models.ErrInvalidInput)
	case strings.TrimSpace(p.City) == "":
		return fmt.Errorf("%w: city is required", models.ErrInvalidInput)
	case p.Price <= 0:
		return fmt.Errorf("%w: price must be positive", models.ErrInvalidInput)
	case p.Deposit < 0 || p.Bedrooms < 0 || p.Bathrooms < 0:
		return fmt.Errorf("%w: negative values are not allowed", models.ErrInvalidInput)
	}
	return nil
}

// Create stores a new listing. Missing coordinates are looked up from the
// address; a failed lookup leaves them empty.
func (s *PropertyService) Create(ctx context.Context, ownerID string, p models.Property) (models.Property, error) {
	p.OwnerID = ownerID
	if err := validateProperty(p); err != nil {
		return models.Property{}, err
	}
	p.Status = models.PropertyStatusActive
	s.locate(ctx, &p)
	return s.Repo.Create(ctx, p)
}

func (s *PropertyService) locate(ctx context.Context, p *models.Property) {
	if s.Geocoder == nil || (p.Latitude != nil && p.Longitude != nil) {
		return
	}
	pt, err := s.Geocoder.Forward(ctx, geo.Query{Address: p.Address, Neighborhood: p.Neighborhood, City: p.City})
	if err != nil {
		if !errors.Is(err, geo.ErrLocationUnavailable) && s.ErrorLog != nil {
			s.ErrorLog.Printf("geocode property %q: %v", p.Address, err)
		}
		return
	}
	p.Latitude = &pt.Lat
	p.Longitude = &pt.Lon
}

func (s *PropertyService) Update(ctx context.Context, ownerID string, p models.Property) (models.Property, error) {
	current, err := s.Repo.GetByID(ctx, p.ID)
	if err != nil {
		return models.Property{}, err
	}
	if current.OwnerID != ownerID {
		return models.Property{}, models.ErrForbidden
	}
	p.OwnerID = ownerID
	if err := validateProperty(p); err != nil {
		return models.Property{}, err
	}
	if p.Address != current.Address && p.Latitude == nil {
		s.locate(ctx, &p)
	} else if p.Latitude == nil {
		p.Latitude, p.Longitude = current.Latitude, current.Longitude
	}
	return s.Repo.Update(ctx, p)
}

func (s *PropertyService) SetStatus(ctx context.Context, ownerID string, id int64, status string) error {
	switch status {
	case models.PropertyStatusActive, models.PropertyStatusRented, models.PropertyStatusArchived:
	default:
		return fmt.Errorf("%w: unknown property status %q", models.ErrInvalidInput, status)
	}
	return s.Repo.UpdateStatus(ctx, id, ownerID, status)
}

func (s *PropertyService) Archive(ctx context.Context, ownerID string, id int64) error {
	return s.SetStatus(ctx, ownerID, id, models.PropertyStatusArchived)
}

// Get returns a listing. userID may be empty for anonymous visitors.
func (s *PropertyService) Get(ctx context.Context, id int64, userID string) (models.Property, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return models.Property{}, err
	}
	if userID != "" && s.Favorites != nil {
		liked, err := s.Favorites.IsFavorite(ctx, userID, id)
		if err != nil {
			return models.Property{}, err
		}
		p.Liked = liked
	}
	return p, nil
}

func (s *PropertyService) Search(ctx context.Context, f models.PropertyFilter, userID string) (models.PropertyListResponse, error) {
	if f.PriceFrom > 0 && f.PriceTo > 0 && f.PriceFrom > f.PriceTo {
		f.PriceFrom, f.PriceTo = f.PriceTo, f.PriceFrom
	}
	return s.Repo.Search(ctx, f, userID)
}

func (s *PropertyService) ListByOwner(ctx context.Context, ownerID string) ([]models.Property, error) {
	return s.Repo.ListByOwner(ctx, ownerID)
}

// ReverseGeocode resolves a map pin to a display address.
func (s *PropertyService) ReverseGeocode(ctx context.Context, lat, lon float64) (geo.Point, error) {
	if s.Geocoder == nil {
		return geo.Point{}, geo.ErrLocationUnavailable
	}
	return s.Geocoder.Reverse(ctx, lat, lon)
}
