package services

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"rentaBack/internal/cache"
	"rentaBack/internal/models"
)

const (
	insightsTTL = 10 * time.Minute

	// atMarketBand is the distance from the median, in percent, still reported as "at".
	atMarketBand = 5.0
)

type comparableStore interface {
	GetByID(ctx context.Context, id int64) (models.Property, error)
	Comparables(ctx context.Context, f models.InsightFilter) ([]models.Comparable, error)
}

type InsightsService struct {
	Properties    comparableStore
	Subscriptions entitlementStore
	Cache         cache.Cache
	Now           func() time.Time
}

func (s *InsightsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Insights aggregates the active listings matching f. PRO users also get the
// interquartile range and, for a given listing, its position against the median.
func (s *InsightsService) Insights(ctx context.Context, userID string, f models.InsightFilter) (models.PriceInsights, error) {
	var subject *models.Property
	if f.PropertyID > 0 {
		p, err := s.Properties.GetByID(ctx, f.PropertyID)
		if err != nil {
			return models.PriceInsights{}, err
		}
		subject = &p
		if f.City == "" {
			f.City = p.City
			f.PropertyType = p.PropertyType
			f.Bedrooms = p.Bedrooms
		}
	}
	f.City = strings.TrimSpace(f.City)
	if f.City == "" {
		return models.PriceInsights{}, models.ErrInvalidInput
	}

	pro := false
	if userID != "" && s.Subscriptions != nil {
		var err error
		if pro, err = hasPro(ctx, s.Subscriptions, userID, s.now()); err != nil {
			return models.PriceInsights{}, err
		}
	}

	key := insightsKey(f, pro)
	if s.Cache != nil {
		var cached models.PriceInsights
		if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return cached, nil
		}
	}

	comps, err := s.Properties.Comparables(ctx, f)
	if err != nil {
		return models.PriceInsights{}, err
	}
	if subject != nil {
		comps = withoutProperty(comps, subject.ID)
	}
	out := computeInsights(f, comps, pro)
	if pro && subject != nil && !out.InsufficientData {
		out.Comparison = compare(*subject, out.Median)
	}

	if s.Cache != nil {
		_ = s.Cache.SetJSON(ctx, key, out, insightsTTL)
	}
	return out, nil
}

func insightsKey(f models.InsightFilter, pro bool) string {
	tier := "basic"
	if pro {
		tier = "pro"
	}
	return cache.Key("insights", tier, f.City, f.Neighborhood, f.PropertyType,
		strconv.Itoa(f.Bedrooms), strconv.FormatInt(f.PropertyID, 10))
}

func withoutProperty(comps []models.Comparable, id int64) []models.Comparable {
	var out []models.Comparable
	for _, c := range comps {
		if c.PropertyID != id {
			out = append(out, c)
		}
	}
	return out
}

func computeInsights(f models.InsightFilter, comps []models.Comparable, pro bool) models.PriceInsights {
	out := models.PriceInsights{Filter: f, Count: len(comps), Pro: pro}
	if len(comps) < models.MinComparables {
		out.InsufficientData = true
		return out
	}

	prices := make([]float64, 0, len(comps))
	var sum, perM2Sum float64
	perM2Count := 0
	for _, c := range comps {
		prices = append(prices, c.Price)
		sum += c.Price
		if c.AreaM2 != nil && *c.AreaM2 > 0 {
			perM2Sum += c.Price / *c.AreaM2
			perM2Count++
		}
	}
	sort.Float64s(prices)

	out.Average = round2(sum / float64(len(prices)))
	out.Median = round2(percentile(prices, 50))
	out.Min = prices[0]
	out.Max = prices[len(prices)-1]
	if perM2Count > 0 {
		out.AvgPricePerM2 = round2(perM2Sum / float64(perM2Count))
	}
	if pro {
		p25 := round2(percentile(prices, 25))
		p75 := round2(percentile(prices, 75))
		out.P25, out.P75 = &p25, &p75
	}
	return out
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}

func compare(p models.Property, median float64) *models.PriceComparison {
	if median <= 0 {
		return nil
	}
	diff := round2((p.Price - median) / median * 100)
	pos := models.ComparisonAt
	switch {
	case diff > atMarketBand:
		pos = models.ComparisonAbove
	case diff < -atMarketBand:
		pos = models.ComparisonBelow
	}
	return &models.PriceComparison{PropertyID: p.ID, Price: p.Price, Position: pos, DiffPct: diff}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
