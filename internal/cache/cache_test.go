package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var out map[string]int
	hit, err := m.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, m.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute))
	hit, err = m.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, out["a"])

	require.NoError(t, m.Delete(ctx, "k"))
	hit, _ = m.GetJSON(ctx, "k", &out)
	assert.False(t, hit)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.SetJSON(ctx, "k", 5, time.Minute))
	now = now.Add(2 * time.Minute)

	var v int
	hit, err := m.GetJSON(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "insights:bogotá:chapinero", Key("insights", " Bogotá", "Chapinero "))
}
