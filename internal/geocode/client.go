// Package geocode turns map coordinates into a readable address via Nominatim.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mitronepal/JobMandu/internal/cache"
	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/observability"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "jobmandu-api/1.0"
	serviceName      = "geocode"
)

// Config for the reverse geocoder.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client performs reverse lookups, caching results in Redis when available.
type Client struct {
	cfg  Config
	http *http.Client
	rdb  *redis.Client
}

// NewClient creates a client. httpClient and rdb may be nil.
func NewClient(cfg Config, httpClient *http.Client, rdb *redis.Client) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{cfg: cfg, http: httpClient, rdb: rdb}
}

// Reverse returns the display address for (lat, lon).
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return "", models.NewValidationError("Coordinates out of range")
	}

	var address string
	err := cache.Aside(ctx, c.rdb, cache.GeocodeKey(lat, lon), &address, cache.GeocodeTTL, func() error {
		a, err := c.lookup(ctx, lat, lon)
		if err != nil {
			return err
		}
		address = a
		return nil
	})
	if err != nil {
		return "", models.NewUpstreamError(models.CodeGeocodeUnavailable, "Address lookup is unavailable", err)
	}
	return address, nil
}

func (c *Client) lookup(ctx context.Context, lat, lon float64) (string, error) {
	ctx, span := observability.GetTraceLayer().TraceExternalCall(ctx, serviceName, "reverse")
	span.SetAttributes(attribute.Float64("geo.lat", lat), attribute.Float64("geo.lon", lon))

	address, err := c.fetch(ctx, lat, lon)
	observability.ObserveExternalCall(serviceName, err)
	observability.EndSpan(span, err)
	return address, err
}

func (c *Client) fetch(ctx context.Context, lat, lon float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("nominatim http %d", resp.StatusCode)
	}

	var body struct {
		DisplayName string `json:"display_name"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode nominatim response: %w", err)
	}
	if body.Error != "" {
		return "", fmt.Errorf("nominatim: %s", body.Error)
	}
	if strings.TrimSpace(body.DisplayName) == "" {
		return "", fmt.Errorf("nominatim response empty")
	}
	return body.DisplayName, nil
}
