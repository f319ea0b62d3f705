package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/powder-radar-service/internal/conditions"
	"github.com/couchcryptid/powder-radar-service/internal/domain"
	"github.com/couchcryptid/powder-radar-service/internal/observability"
	"github.com/couchcryptid/powder-radar-service/internal/synth"
)

const syntheticName = "synthetic"

// Synthetic generates radar imagery from resort observations when no real
// provider can serve a frame. It is registered at the lowest priority so it
// only wins when everything upstream has failed or has no coverage — and it
// is the only source with 48 hours of history, so the long animation tail is
// always synthetic.
type Synthetic struct {
	conditions conditions.Provider
	renderer   *synth.Renderer
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewSynthetic creates the synthetic tile source.
func NewSynthetic(provider conditions.Provider, renderer *synth.Renderer, logger *slog.Logger, metrics *observability.Metrics) *Synthetic {
	return &Synthetic{
		conditions: provider,
		renderer:   renderer,
		logger:     logger,
		metrics:    metrics,
	}
}

func (s *Synthetic) Descriptor() Descriptor {
	return Descriptor{
		Name:            syntheticName,
		Priority:        10,
		Coverage:        "resorts",
		MaxHistoryHours: synth.MaxHoursAgo,
		RequiresAPIKey:  false,
		Quality:         2,
	}
}

// DiscoverFrames lists 48 hourly frames ending at the current hour. This
// never fails: frames are pure time descriptors, so even with the
// conditions service down the animation timeline stays intact.
func (s *Synthetic) DiscoverFrames(_ context.Context) ([]domain.RadarFrame, error) {
	now := domain.Clock().Now().UTC().Truncate(time.Hour)

	frames := make([]domain.RadarFrame, 0, synth.MaxHoursAgo+1)
	for hoursAgo := synth.MaxHoursAgo; hoursAgo >= 0; hoursAgo-- {
		frames = append(frames, domain.RadarFrame{
			Time:       now.Add(-time.Duration(hoursAgo) * time.Hour),
			Identifier: fmt.Sprintf("synthetic-h%02d", hoursAgo),
			Source:     syntheticName,
			Coverage:   "resorts",
			Quality:    2,
		})
	}
	return frames, nil
}

// FetchTile runs the synthesis pipeline for one frame/tile: fetch current
// observations, advect them back to the frame's hour, render.
func (s *Synthetic) FetchTile(ctx context.Context, frame domain.RadarFrame, z, x, y int) ([]byte, error) {
	if frame.Source != syntheticName {
		return nil, nil
	}

	hoursAgo := hoursAgoOf(frame.Time)
	return s.render(ctx, hoursAgo, z, x, y)
}

// RenderAt synthesizes a tile for an explicit hour offset, bypassing frame
// discovery. Backs the /radar/synthetic debug endpoint.
func (s *Synthetic) RenderAt(ctx context.Context, hoursAgo, z, x, y int) ([]byte, error) {
	if hoursAgo < 0 || hoursAgo > synth.MaxHoursAgo {
		return nil, fmt.Errorf("hour offset %d out of range", hoursAgo)
	}
	return s.render(ctx, hoursAgo, z, x, y)
}

func (s *Synthetic) render(ctx context.Context, hoursAgo, z, x, y int) ([]byte, error) {
	points, err := s.conditions.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch conditions: %w", err)
	}
	s.metrics.ConditionsPoints.Set(float64(len(points)))

	advected := synth.Advect(points, hoursAgo)
	return s.renderer.RenderTile(advected, z, x, y), nil
}

// hoursAgoOf converts a frame timestamp back to the model's hour offset,
// clamped to the synthetic window.
func hoursAgoOf(frameTime time.Time) int {
	now := domain.Clock().Now().UTC().Truncate(time.Hour)
	h := int(now.Sub(frameTime).Round(time.Hour).Hours())
	if h < 0 {
		return 0
	}
	if h > synth.MaxHoursAgo {
		return synth.MaxHoursAgo
	}
	return h
}
