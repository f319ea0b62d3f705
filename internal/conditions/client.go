// Package conditions fetches current resort observations from the
// resort-conditions service, the collaborator that owns the resort registry
// and the snow heuristics. The radar engine only needs the point list.
package conditions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/powder-radar-service/internal/domain"
)

// Provider supplies the current observation point list.
type Provider interface {
	Current(ctx context.Context) ([]domain.ObservationPoint, error)
}

// Client implements Provider against the resort-conditions HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a resort-conditions client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Current fetches the observation list. Missing upstream fields decode to
// zero; resorts without coordinates are dropped since they cannot be placed
// on the map.
func (c *Client) Current(ctx context.Context) ([]domain.ObservationPoint, error) {
	u := c.baseURL + "/resorts/conditions"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("conditions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("conditions API error: status %d: %s", resp.StatusCode, body)
	}

	var cr conditionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	points := make([]domain.ObservationPoint, 0, len(cr.Resorts))
	for _, r := range cr.Resorts {
		if r.Lat == 0 && r.Lon == 0 {
			c.logger.Warn("resort without coordinates skipped", "resort_id", r.ID)
			continue
		}
		points = append(points, domain.ObservationPoint{
			ID:             r.ID,
			Name:           r.Name,
			Lat:            r.Lat,
			Lon:            r.Lon,
			RecentSnowfall: r.Conditions.RecentSnowfall,
			SnowDepth:      r.Conditions.SnowDepth,
			BaseTemp:       r.Conditions.BaseTemp,
			WindSpeed:      r.Conditions.WindSpeed,
			Visibility:     r.Conditions.Visibility,
		})
	}
	return points, nil
}

// Resort-conditions API response types.

type conditionsResponse struct {
	Resorts []resort `json:"resorts"`
}

type resort struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Lat        float64          `json:"lat"`
	Lon        float64          `json:"lon"`
	Conditions resortConditions `json:"conditions"`
}

type resortConditions struct {
	SnowDepth      float64 `json:"snowDepth"`
	RecentSnowfall float64 `json:"recentSnowfall"`
	WeeklySnowfall float64 `json:"weeklySnowfall"`
	BaseTemp       float64 `json:"baseTemp"`
	WindSpeed      float64 `json:"windSpeed"`
	Visibility     float64 `json:"visibility"`
}
