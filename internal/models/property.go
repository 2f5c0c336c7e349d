package models

import (
	"time"
)

const (
	PropertyStatusActive   = "active"
	PropertyStatusRented   = "rented"
	PropertyStatusArchived = "archived"
)

type Property struct {
	ID            int64      `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	PropertyType  string     `json:"property_type"`
	Address       string     `json:"address"`
	Neighborhood  string     `json:"neighborhood"`
	City          string     `json:"city"`
	Price         float64    `json:"price"`
	Deposit       float64    `json:"deposit"`
	AreaM2        *float64   `json:"area_m2,omitempty"`
	Bedrooms      int        `json:"bedrooms"`
	Bathrooms     int        `json:"bathrooms"`
	Latitude      *float64   `json:"latitude,omitempty"`
	Longitude     *float64   `json:"longitude,omitempty"`
	Images        []string   `json:"images"`
	Status        string     `json:"status"`
	FavoriteCount int        `json:"favorite_count"`
	Liked         bool       `json:"liked"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// PropertySummary is embedded into favorites and contract projections.
type PropertySummary struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Price     float64 `json:"price"`
	ImagePath *string `json:"image_path,omitempty"`
}

type PropertyFilter struct {
	City         string  `json:"city"`
	Neighborhood string  `json:"neighborhood"`
	PropertyType string  `json:"property_type"`
	PriceFrom    float64 `json:"price_from"`
	PriceTo      float64 `json:"price_to"`
	MinBedrooms  int     `json:"min_bedrooms"`
	Sort         int     `json:"sort"` // 1 - newest, 2 - price desc, 3 - price asc
	Page         int     `json:"page"`
	Limit        int     `json:"limit"`
}

type PropertyListResponse struct {
	Properties []Property `json:"properties"`
	MinPrice   float64    `json:"min_price"`
	MaxPrice   float64    `json:"max_price"`
}

type Favorite struct {
	ID         int64            `json:"id"`
	UserID     string           `json:"user_id"`
	PropertyID int64            `json:"property_id"`
	Property   *PropertySummary `json:"property,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

type Review struct {
	ID         int64     `json:"id"`
	PropertyID int64     `json:"property_id"`
	UserID     string    `json:"user_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	UserName   string    `json:"user_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type PropertyReviews struct {
	Reviews   []Review `json:"reviews"`
	AvgRating float64  `json:"avg_rating"`
	Count     int      `json:"count"`
}

// Intention is a lightweight expression of interest by a tenant, prior to any contract.
type Intention struct {
	ID         int64            `json:"id"`
	PropertyID int64            `json:"property_id"`
	TenantID   string           `json:"tenant_id"`
	OwnerID    string           `json:"owner_id"`
	Message    string           `json:"message"`
	Property   *PropertySummary `json:"property,omitempty"`
	Tenant     *ProfileSummary  `json:"tenant,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
