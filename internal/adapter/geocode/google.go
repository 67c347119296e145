package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/domain"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
)

// Client calls the Google Geocoding API wire format: a single GET per lookup,
// no retry or backoff.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(baseURL, apiKey string, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: log.Named("Geocoder"),
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves a free-text location into coordinates. An empty result set
// yields domain.ErrGeocodeNoMatch.
func (c *Client) Geocode(ctx context.Context, location string) (float64, float64, error) {
	c.logger.Debug("Geocoding location", zap.String("location", location))

	query := url.Values{}
	query.Set("address", location)
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Geocode request failed", zap.String("location", location), zap.Error(err))
		return 0, 0, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Geocode provider returned non-OK status", zap.String("location", location), zap.Int("status", resp.StatusCode))
		return 0, 0, fmt.Errorf("geocode provider returned status %d", resp.StatusCode)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, 0, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	if body.Status == "ZERO_RESULTS" || len(body.Results) == 0 {
		c.logger.Warn("Geocode returned no match", zap.String("location", location), zap.String("provider_status", body.Status))
		return 0, 0, domain.ErrGeocodeNoMatch
	}

	loc := body.Results[0].Geometry.Location
	c.logger.Debug("Geocoded location", zap.String("location", location), zap.Float64("lat", loc.Lat), zap.Float64("lng", loc.Lng))
	return loc.Lat, loc.Lng, nil
}
