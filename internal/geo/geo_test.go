package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaBack/internal/cache"
)

func TestStripAccents(t *testing.T) {
	assert.Equal(t, "Bogota", StripAccents("Bogotá"))
	assert.Equal(t, "Medellin Antioquia", StripAccents("Medellín Antioquia"))
	assert.Equal(t, "Nunez", StripAccents("Nuñez"))
}

func TestStripStreetNumber(t *testing.T) {
	tests := map[string]string{
		"Calle 45 # 12-34":      "Calle 45",
		"Carrera 7 #12 - 80":    "Carrera 7",
		"Av. Siempre Viva 742":  "Av. Siempre Viva 742",
		"Camino 5 Sur":          "Camino 5 Sur",
		"Cra 15 No. 93-47, Apt": "Cra 15, Apt",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripStreetNumber(in), in)
	}
}

func TestCandidatesOrder(t *testing.T) {
	got := Candidates(Query{Address: "Calle 45 # 12-34", Neighborhood: "Chapinero", City: "Bogotá", Country: "Colombia"})
	assert.Equal(t, []string{
		"Calle 45 # 12-34, Chapinero, Bogotá, Colombia",
		"Calle 45 # 12-34, Chapinero, Bogota, Colombia",
		"Calle 45, Bogota, Colombia",
		"Chapinero, Bogotá, Colombia",
		"Bogotá, Colombia",
	}, got)
}

func TestCandidatesDeduplicate(t *testing.T) {
	got := Candidates(Query{City: "Cali"})
	assert.Equal(t, []string{"Cali"}, got)
	assert.Empty(t, Candidates(Query{}))
}

func TestForwardFallsBack(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		mu.Lock()
		seen = append(seen, q)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if q == "Chapinero, Bogotá" {
			_, _ = w.Write([]byte(`[{"lat":"4.6486","lon":"-74.0628","display_name":"Chapinero, Bogotá"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	mem := cache.NewMemory()
	c := NewClient(ts.Client(), ts.URL, "test", "", mem, nil)
	q := Query{Address: "Calle 45 # 12-34", Neighborhood: "Chapinero", City: "Bogotá"}
	p, err := c.Forward(context.Background(), q)
	require.NoError(t, err)
	assert.InDelta(t, 4.6486, p.Lat, 1e-6)
	assert.InDelta(t, -74.0628, p.Lon, 1e-6)
	assert.Len(t, seen, 4)

	// second lookup is served from cache
	_, err = c.Forward(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, seen, 4)
}

func TestForwardUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewClient(ts.Client(), ts.URL, "", "", nil, nil)
	_, err := c.Forward(context.Background(), Query{City: "Cali"})
	assert.ErrorIs(t, err, ErrLocationUnavailable)
}

func TestReverse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		_, _ = w.Write([]byte(`{"lat":"4.6","lon":"-74.0","display_name":"Bogotá, Colombia"}`))
	}))
	defer ts.Close()

	c := NewClient(ts.Client(), ts.URL, "", "", nil, nil)
	p, err := c.Reverse(context.Background(), 4.6, -74.0)
	require.NoError(t, err)
	assert.Equal(t, "Bogotá, Colombia", p.Label)

	_, err = c.Reverse(context.Background(), 100, 0)
	assert.ErrorIs(t, err, ErrLocationUnavailable)
}
