// Package places implements the restaurant locator backed by the Google
// Places web service.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/willzeng274/HaystackDiet/internal/menu"
	"github.com/willzeng274/HaystackDiet/internal/pool"
)

const (
	defaultBaseURL    = "https://maps.googleapis.com/maps/api/place"
	detailFields      = "name,rating,formatted_phone_number,website,price_level,reviews,editorial_summary"
	statusOK          = "OK"
	detailConcurrency = 10
)

// Config controls the Places client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client implements menu.Locator against the Places nearby-search and
// place-details endpoints.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// New builds a Client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type nearbyResponse struct {
	Status  string     `json:"status"`
	Results []placeHit `json:"results"`
}

type placeHit struct {
	PlaceID    string  `json:"place_id"`
	Name       string  `json:"name"`
	Vicinity   string  `json:"vicinity"`
	Rating     float64 `json:"rating"`
	PriceLevel int     `json:"price_level"`
}

type detailsResponse struct {
	Status string        `json:"status"`
	Result *placeDetails `json:"result"`
}

type placeDetails struct {
	Name       string  `json:"name"`
	Rating     float64 `json:"rating"`
	Website    string  `json:"website"`
	PriceLevel int     `json:"price_level"`
}

// Locate returns restaurants near the coordinate. Provider failures degrade
// to an empty slice and are logged; they never surface to the caller.
func (c *Client) Locate(ctx context.Context, lat, lon float64, radius int) []menu.Restaurant {
	hits, ok := c.nearbySearch(ctx, lat, lon, radius)
	if !ok {
		return nil
	}

	return pool.Map(ctx, detailConcurrency, hits, func(ctx context.Context, hit placeHit) (menu.Restaurant, error) {
		details, err := c.placeDetails(ctx, hit.PlaceID)
		if err != nil {
			c.logger.Warn("place details lookup failed",
				zap.String("place_id", hit.PlaceID),
				zap.String("name", hit.Name),
				zap.Error(err),
			)
			return menu.Restaurant{}, err
		}
		return menu.Restaurant{
			Name:       hit.Name,
			Address:    hit.Vicinity,
			Rating:     hit.Rating,
			PriceLevel: hit.PriceLevel,
			Website:    details.Website,
		}, nil
	})
}

func (c *Client) nearbySearch(ctx context.Context, lat, lon float64, radius int) ([]placeHit, bool) {
	query := url.Values{}
	query.Set("location", fmt.Sprintf("%f,%f", lat, lon))
	query.Set("radius", strconv.Itoa(radius))
	query.Set("type", "restaurant")
	query.Set("key", c.cfg.APIKey)

	var parsed nearbyResponse
	if err := c.getJSON(ctx, c.cfg.BaseURL+"/nearbysearch/json", query, &parsed); err != nil {
		c.logger.Error("nearby search failed", zap.Error(err))
		return nil, false
	}
	if parsed.Status != statusOK {
		c.logger.Error("nearby search returned non-OK status", zap.String("status", parsed.Status))
		return nil, false
	}
	return parsed.Results, true
}

func (c *Client) placeDetails(ctx context.Context, placeID string) (placeDetails, error) {
	query := url.Values{}
	query.Set("place_id", placeID)
	query.Set("fields", detailFields)
	query.Set("key", c.cfg.APIKey)

	var parsed detailsResponse
	if err := c.getJSON(ctx, c.cfg.BaseURL+"/details/json", query, &parsed); err != nil {
		return placeDetails{}, err
	}
	if parsed.Status != statusOK || parsed.Result == nil {
		return placeDetails{}, fmt.Errorf("details status %q", parsed.Status)
	}
	return *parsed.Result, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected http status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
