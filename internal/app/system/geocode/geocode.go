// internal/app/system/geocode/geocode.go

// Package geocode resolves free-text queries to coordinates through the
// Mapbox forward-geocoding API. The access token stays server-side; the
// browser talks to our /api/search proxy instead.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// DefaultLimit matches the suggestion list size of the search bar.
const DefaultLimit = 5

// ErrNotConfigured is returned when no access token was provided.
var ErrNotConfigured = errors.New("geocoding is not configured")

// Place is one ranked candidate for a query.
type Place struct {
	Name string  `json:"name"`
	Lng  float64 `json:"lng"`
	Lat  float64 `json:"lat"`
}

// Client is a Mapbox forward-geocoding client.
type Client struct {
	token   string
	baseURL string
	hc      *http.Client
	log     *zap.Logger
}

// New builds a geocoding client. An empty token yields a client whose
// Forward always returns ErrNotConfigured, so callers don't need a nil
// check.
func New(token string, logger *zap.Logger) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		hc:      &http.Client{Timeout: 15 * time.Second},
		log:     logger,
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimSuffix(base, "/")
	return c
}

// mapboxResponse mirrors the fields we read from the places API.
type mapboxResponse struct {
	Features []struct {
		PlaceName string    `json:"place_name"`
		Center    []float64 `json:"center"` // [lng, lat]
	} `json:"features"`
}

// Forward resolves a query to up to limit ranked places. A blank query
// returns an empty result without calling the API.
func (c *Client) Forward(ctx context.Context, query string, limit int) ([]Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Place{}, nil
	}
	if c.token == "" {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	u := fmt.Sprintf("%s/%s.json?access_token=%s&limit=%s",
		c.baseURL,
		url.PathEscape(query),
		url.QueryEscape(c.token),
		strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("geocoding API returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.String("query", query))
		return nil, fmt.Errorf("geocoding API status %d", resp.StatusCode)
	}

	var body mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("geocoding response: %w", err)
	}

	places := make([]Place, 0, len(body.Features))
	for _, f := range body.Features {
		if len(f.Center) < 2 {
			continue
		}
		places = append(places, Place{
			Name: f.PlaceName,
			Lng:  f.Center[0],
			Lat:  f.Center[1],
		})
	}
	return places, nil
}
