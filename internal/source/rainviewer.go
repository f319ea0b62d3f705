package source

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

const rainviewerName = "rainviewer"

// RainViewer adapts the RainViewer public weather-maps API. It publishes a
// rolling window of global composite radar frames, no API key required.
type RainViewer struct {
	httpClient *http.Client
	apiURL     string
	logger     *slog.Logger
}

// NewRainViewer creates the RainViewer adapter.
func NewRainViewer(timeout time.Duration, logger *slog.Logger) *RainViewer {
	return &RainViewer{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     "https://api.rainviewer.com/public/weather-maps.json",
		logger:     logger,
	}
}

func (r *RainViewer) Descriptor() Descriptor {
	return Descriptor{
		Name:            rainviewerName,
		Priority:        100,
		Coverage:        "global",
		MaxHistoryHours: 2,
		RequiresAPIKey:  false,
		Quality:         4,
	}
}

// DiscoverFrames lists the past radar snapshots RainViewer currently hosts.
// The frame identifier is the host-relative tile path for that snapshot.
func (r *RainViewer) DiscoverFrames(ctx context.Context) ([]domain.RadarFrame, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rainviewer discovery: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rainviewer API error: status %d: %s", resp.StatusCode, body)
	}

	var wm weatherMaps
	if err := json.NewDecoder(resp.Body).Decode(&wm); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	frames := make([]domain.RadarFrame, 0, len(wm.Radar.Past))
	for _, f := range wm.Radar.Past {
		frames = append(frames, domain.RadarFrame{
			Time:       time.Unix(f.Time, 0).UTC(),
			Identifier: wm.Host + f.Path,
			Source:     rainviewerName,
			Coverage:   "global",
			Quality:    4,
		})
	}
	return frames, nil
}

// FetchTile downloads one 256px tile for a frame previously discovered.
func (r *RainViewer) FetchTile(ctx context.Context, frame domain.RadarFrame, z, x, y int) ([]byte, error) {
	if frame.Source != rainviewerName || frame.Identifier == "" {
		return nil, nil
	}

	// Identifier carries host+path; 2 is the color scheme, 1_1 enables
	// smoothing and snow colors.
	u := fmt.Sprintf("%s/256/%d/%d/%d/2/1_1.png", frame.Identifier, z, x, y)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rainviewer tile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rainviewer tile: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rainviewer tile body: %w", err)
	}
	return data, nil
}

// RainViewer API response types.

type weatherMaps struct {
	Host  string `json:"host"`
	Radar struct {
		Past []radarSnapshot `json:"past"`
	} `json:"radar"`
}

type radarSnapshot struct {
	Time int64  `json:"time"`
	Path string `json:"path"`
}
