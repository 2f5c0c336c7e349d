package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaBack/internal/cache"
	"rentaBack/internal/models"
)

type fakeComparables struct {
	fakeProperties
	comps []models.Comparable
	calls int
}

func (f *fakeComparables) Comparables(context.Context, models.InsightFilter) ([]models.Comparable, error) {
	f.calls++
	return f.comps, nil
}

func area(v float64) *float64 { return &v }

func TestInsightsInsufficientData(t *testing.T) {
	store := &fakeComparables{comps: []models.Comparable{{PropertyID: 1, Price: 1000000}, {PropertyID: 2, Price: 1200000}}}
	svc := &InsightsService{Properties: store, Now: clock}

	out, err := svc.Insights(context.Background(), "", models.InsightFilter{City: "Cali"})
	require.NoError(t, err)
	assert.True(t, out.InsufficientData)
	assert.Equal(t, 2, out.Count)
	assert.Zero(t, out.Median)
	assert.Nil(t, out.P25)
}

func TestInsightsBasicAndPro(t *testing.T) {
	comps := []models.Comparable{
		{PropertyID: 1, Price: 1000000, AreaM2: area(50)},
		{PropertyID: 2, Price: 2000000, AreaM2: area(80)},
		{PropertyID: 3, Price: 1500000},
		{PropertyID: 4, Price: 3000000, AreaM2: area(100)},
		{PropertyID: 9, Price: 2500000},
	}
	props := fakeProperties{9: {ID: 9, City: "Medellín", PropertyType: "apartment", Bedrooms: 2, Price: 2500000}}

	basic := &InsightsService{Properties: &fakeComparables{fakeProperties: props, comps: comps}, Subscriptions: fakeEntitlements{}, Now: clock}
	out, err := basic.Insights(context.Background(), "user", models.InsightFilter{PropertyID: 9})
	require.NoError(t, err)
	assert.False(t, out.Pro)
	assert.Equal(t, "Medellín", out.Filter.City)
	assert.Equal(t, 4, out.Count)
	assert.Equal(t, 1875000.0, out.Average)
	assert.Equal(t, 1750000.0, out.Median)
	assert.Equal(t, 1000000.0, out.Min)
	assert.Equal(t, 3000000.0, out.Max)
	assert.Equal(t, 25000.0, out.AvgPricePerM2)
	assert.Nil(t, out.P25)
	assert.Nil(t, out.Comparison)

	pro := &InsightsService{Properties: &fakeComparables{fakeProperties: props, comps: comps}, Subscriptions: fakeEntitlements{"user": {"pro_monthly"}}, Now: clock}
	out, err = pro.Insights(context.Background(), "user", models.InsightFilter{PropertyID: 9})
	require.NoError(t, err)
	assert.True(t, out.Pro)
	require.NotNil(t, out.P25)
	require.NotNil(t, out.P75)
	assert.Equal(t, 1375000.0, *out.P25)
	assert.Equal(t, 2250000.0, *out.P75)
	require.NotNil(t, out.Comparison)
	assert.Equal(t, models.ComparisonAbove, out.Comparison.Position)
	assert.Equal(t, 42.86, out.Comparison.DiffPct)
}

func TestInsightsAreCached(t *testing.T) {
	store := &fakeComparables{comps: []models.Comparable{{PropertyID: 1, Price: 1}, {PropertyID: 2, Price: 2}, {PropertyID: 3, Price: 3}}}
	svc := &InsightsService{Properties: store, Cache: cache.NewMemory(), Now: clock}

	first, err := svc.Insights(context.Background(), "", models.InsightFilter{City: "Cali"})
	require.NoError(t, err)
	second, err := svc.Insights(context.Background(), "", models.InsightFilter{City: "cali"})
	require.NoError(t, err)
	assert.Equal(t, first.Median, second.Median)
	assert.Equal(t, 1, store.calls)
}

func TestInsightsRequireCity(t *testing.T) {
	svc := &InsightsService{Properties: &fakeComparables{}, Now: clock}
	_, err := svc.Insights(context.Background(), "", models.InsightFilter{})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestPercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}
	assert.Equal(t, 10.0, percentile(sorted, 0))
	assert.Equal(t, 25.0, percentile(sorted, 50))
	assert.Equal(t, 40.0, percentile(sorted, 100))
	assert.Equal(t, 7.0, percentile([]float64{7}, 75))
}
