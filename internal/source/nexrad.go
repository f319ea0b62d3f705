package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/powder-radar-service/internal/domain"
)

const (
	nexradName = "nexrad"

	// The IEM cache republishes the CONUS NEXRAD composite as tile layers:
	// the current scan plus snapshots at 5-minute steps back to -50 minutes.
	nexradStepMinutes = 5
	nexradMaxSteps    = 10
)

// NEXRAD adapts the Iowa Environmental Mesonet tile cache for the US
// national base-reflectivity composite. The IEM has no discovery endpoint;
// the layer names themselves encode the time offsets, so frames are derived
// from the clock.
type NEXRAD struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewNEXRAD creates the IEM NEXRAD composite adapter.
func NewNEXRAD(timeout time.Duration, logger *slog.Logger) *NEXRAD {
	return &NEXRAD{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://mesonet.agron.iastate.edu/cache/tile.py/1.0.0",
		logger:     logger,
	}
}

func (n *NEXRAD) Descriptor() Descriptor {
	return Descriptor{
		Name:            nexradName,
		Priority:        80,
		Coverage:        "conus",
		MaxHistoryHours: 1,
		RequiresAPIKey:  false,
		Quality:         5,
	}
}

// DiscoverFrames synthesizes frame descriptors for the current scan and the
// ten archived 5-minute steps, aligned to the cache's update boundary.
func (n *NEXRAD) DiscoverFrames(_ context.Context) ([]domain.RadarFrame, error) {
	now := domain.Clock().Now().UTC().Truncate(nexradStepMinutes * time.Minute)

	frames := make([]domain.RadarFrame, 0, nexradMaxSteps+1)
	for step := nexradMaxSteps; step >= 0; step-- {
		layer := "nexrad-n0q-900913"
		if step > 0 {
			layer = fmt.Sprintf("nexrad-n0q-900913-m%02dm", step*nexradStepMinutes)
		}
		frames = append(frames, domain.RadarFrame{
			Time:       now.Add(-time.Duration(step*nexradStepMinutes) * time.Minute),
			Identifier: layer,
			Source:     nexradName,
			Coverage:   "conus",
			Quality:    5,
		})
	}
	return frames, nil
}

// FetchTile downloads one tile from the IEM cache for the frame's layer.
func (n *NEXRAD) FetchTile(ctx context.Context, frame domain.RadarFrame, z, x, y int) ([]byte, error) {
	if frame.Source != nexradName || frame.Identifier == "" {
		return nil, nil
	}

	u := fmt.Sprintf("%s/%s/%d/%d/%d.png", n.baseURL, frame.Identifier, z, x, y)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nexrad tile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nexrad tile: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("nexrad tile body: %w", err)
	}
	return data, nil
}
