// Package geocode resolves coordinates to a human readable address using a nominatim compatible server.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/jon4hz/safebadge/internal/cache"
	"github.com/jon4hz/safebadge/internal/config"
)

// ErrNoResult is returned when the server has no address for a location.
var ErrNoResult = errors.New("no address found")

// Geocoder turns coordinates into addresses.
type Geocoder interface {
	Reverse(ctx context.Context, latitude, longitude float64) (string, error)
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// Client is a nominatim reverse geocoding client with a result cache.
type Client struct {
	http  *resty.Client
	cache *cache.GeocodeCache
}

var _ Geocoder = (*Client)(nil)

// New creates a new nominatim client. The cache is optional.
func New(cfg *config.GeocodingConfig, c *cache.GeocodeCache) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent)

	return &Client{
		http:  httpClient,
		cache: c,
	}
}

// Reverse returns the display name of the given coordinates.
func (c *Client) Reverse(ctx context.Context, latitude, longitude float64) (string, error) {
	key := cache.GeocodeKey(latitude, longitude)
	if c.cache != nil {
		if address, err := c.cache.Get(ctx, key); err == nil && address != "" {
			log.Debug("Geocode cache hit", "key", key)
			return address, nil
		}
	}

	var result reverseResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"format": "jsonv2",
			"lat":    strconv.FormatFloat(latitude, 'f', -1, 64),
			"lon":    strconv.FormatFloat(longitude, 'f', -1, 64),
		}).
		SetResult(&result).
		Get("/reverse")
	if err != nil {
		return "", fmt.Errorf("failed to reverse geocode: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("geocoding server returned status %d", resp.StatusCode())
	}
	if result.Error != "" || result.DisplayName == "" {
		return "", ErrNoResult
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, result.DisplayName); err != nil {
			log.Warn("Failed to cache geocode result", "key", key, "error", err)
		}
	}
	return result.DisplayName, nil
}
