// Package geo resolves addresses to coordinates through a Nominatim compatible API.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rentaBack/internal/cache"
)

const (
	defaultBaseURL = "https://nominatim.openstreetmap.org"
	cacheTTL       = 30 * 24 * time.Hour
)

var ErrLocationUnavailable = errors.New("location unavailable")

type Query struct {
	Address      string
	Neighborhood string
	City         string
	Country      string
}

type Point struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label"`
}

type Geocoder interface {
	Forward(ctx context.Context, q Query) (Point, error)
	Reverse(ctx context.Context, lat, lon float64) (Point, error)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	country    string
	cache      cache.Cache
	logger     *slog.Logger
}

func NewClient(httpClient *http.Client, baseURL, userAgent, countryCode string, c cache.Cache, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		country:    countryCode,
		cache:      c,
		logger:     logger,
	}
}

// Forward tries progressively coarser queries until one resolves.
func (c *Client) Forward(ctx context.Context, q Query) (Point, error) {
	candidates := Candidates(q)
	if len(candidates) == 0 {
		return Point{}, ErrLocationUnavailable
	}

	cacheKey := cache.Key("geo", "fwd", candidates[0])
	var cached Point
	if c.cache != nil {
		if hit, err := c.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var lastErr error
	for _, candidate := range candidates {
		params := url.Values{}
		params.Set("q", candidate)
		params.Set("format", "jsonv2")
		params.Set("limit", "1")
		if c.country != "" {
			params.Set("countrycodes", c.country)
		}

		var results []nominatimPlace
		if err := c.get(ctx, "/search", params, &results); err != nil {
			lastErr = err
			continue
		}
		if len(results) == 0 {
			continue
		}
		p, err := results[0].point()
		if err != nil {
			lastErr = err
			continue
		}
		if c.cache != nil {
			if err := c.cache.SetJSON(ctx, cacheKey, p, cacheTTL); err != nil {
				c.logger.Warn("geo: cache write failed", "err", err)
			}
		}
		return p, nil
	}
	if lastErr != nil {
		c.logger.Warn("geo: forward lookup failed", "query", candidates[0], "err", lastErr)
	}
	return Point{}, ErrLocationUnavailable
}

func (c *Client) Reverse(ctx context.Context, lat, lon float64) (Point, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Point{}, ErrLocationUnavailable
	}
	cacheKey := cache.Key("geo", "rev", strconv.FormatFloat(lat, 'f', 5, 64), strconv.FormatFloat(lon, 'f', 5, 64))
	var cached Point
	if c.cache != nil {
		if hit, err := c.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "jsonv2")

	var place nominatimPlace
	if err := c.get(ctx, "/reverse", params, &place); err != nil {
		c.logger.Warn("geo: reverse lookup failed", "lat", lat, "lon", lon, "err", err)
		return Point{}, ErrLocationUnavailable
	}
	if place.DisplayName == "" {
		return Point{}, ErrLocationUnavailable
	}
	p := Point{Lat: lat, Lon: lon, Label: place.DisplayName}
	if c.cache != nil {
		_ = c.cache.SetJSON(ctx, cacheKey, p, cacheTTL)
	}
	return p, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dest any) error {
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("geo: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geo: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("geo: http %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("geo: decode: %w", err)
	}
	return nil
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (p nominatimPlace) point() (Point, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return Point{}, fmt.Errorf("geo: bad lat %q", p.Lat)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return Point{}, fmt.Errorf("geo: bad lon %q", p.Lon)
	}
	return Point{Lat: lat, Lon: lon, Label: p.DisplayName}, nil
}
