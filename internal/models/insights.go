package models

const (
	ComparisonAbove = "above"
	ComparisonBelow = "below"
	ComparisonAt    = "at"
)

// MinComparables is the smallest sample that produces a price distribution.
const MinComparables = 3

type InsightFilter struct {
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood,omitempty"`
	PropertyType string `json:"property_type,omitempty"`
	Bedrooms     int    `json:"bedrooms,omitempty"`
	PropertyID   int64  `json:"property_id,omitempty"`
}

// Comparable is the slice of a listing price insights work with.
type Comparable struct {
	PropertyID int64
	Price      float64
	AreaM2     *float64
}

type PriceInsights struct {
	Filter           InsightFilter    `json:"filter"`
	Count            int              `json:"count"`
	InsufficientData bool             `json:"insufficient_data"`
	Average          float64          `json:"average,omitempty"`
	Median           float64          `json:"median,omitempty"`
	Min              float64          `json:"min,omitempty"`
	Max              float64          `json:"max,omitempty"`
	AvgPricePerM2    float64          `json:"avg_price_per_m2,omitempty"`
	P25              *float64         `json:"p25,omitempty"`
	P75              *float64         `json:"p75,omitempty"`
	Comparison       *PriceComparison `json:"comparison,omitempty"`
	Pro              bool             `json:"pro"`
}

type PriceComparison struct {
	PropertyID int64   `json:"property_id"`
	Price      float64 `json:"price"`
	Position   string  `json:"position"`
	DiffPct    float64 `json:"diff_pct"`
}
