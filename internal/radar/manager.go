// Package radar orchestrates the registered tile sources: it aggregates and
// deduplicates their frame lists, caches frames and tiles, and resolves tile
// requests by priority-ordered failover.
package radar

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/powder-radar-service/internal/domain"
	"github.com/couchcryptid/powder-radar-service/internal/geo"
	"github.com/couchcryptid/powder-radar-service/internal/observability"
	"github.com/couchcryptid/powder-radar-service/internal/source"
)

// Manager owns the frame and tile caches and the source failover policy.
// Created once at startup and shared by all requests.
type Manager struct {
	registry      *source.Registry
	logger        *slog.Logger
	metrics       *observability.Metrics
	frameTTL      time.Duration
	sourceTimeout time.Duration

	mu        sync.Mutex
	frames    []domain.RadarFrame
	fetchedAt time.Time
	warm      bool

	tiles *tileCache
	ready atomic.Bool
}

// New creates a Manager over the given source registry.
func New(registry *source.Registry, frameTTL, sourceTimeout time.Duration, tileCacheSize int, logger *slog.Logger, metrics *observability.Metrics) *Manager {
	return &Manager{
		registry:      registry,
		logger:        logger,
		metrics:       metrics,
		frameTTL:      frameTTL,
		sourceTimeout: sourceTimeout,
		tiles:         newTileCache(tileCacheSize),
	}
}

// CheckReadiness returns nil once at least one frame discovery has
// completed with a contributing source.
func (m *Manager) CheckReadiness(_ context.Context) error {
	if !m.ready.Load() {
		return errors.New("no frame discovery has succeeded yet")
	}
	return nil
}

// AllFrames returns the aggregated, deduplicated, time-sorted frame list.
// It never fails; with every source down the list is empty.
//
// The tile cache is cleared on every call, warm or not: frame identities
// repeat across cache generations (the synthetic source reuses hour slots),
// so a stale tile under a reused key would corrupt the animation. Frame
// listing happens once per animation load, so the hit-rate cost is small.
func (m *Manager) AllFrames(ctx context.Context) []domain.RadarFrame {
	m.tiles.clear()
	m.metrics.CacheEvents.WithLabelValues("tiles", "clear").Inc()
	return m.currentFrames(ctx)
}

// RefreshFrames forces the next frame read to rediscover, then performs the
// discovery. Used by the background warm-refresh job.
func (m *Manager) RefreshFrames(ctx context.Context) {
	m.mu.Lock()
	m.warm = false
	m.mu.Unlock()
	m.AllFrames(ctx)
}

// ResolveTile returns the encoded tile for the frame at the given time, or
// nil when no source can serve it (the caller substitutes a blank tile).
// Sources are tried strictly in descending priority order, sequentially, so
// lower-priority upstreams see no traffic for tiles the leader can serve.
func (m *Manager) ResolveTile(ctx context.Context, at time.Time, z, x, y int) []byte {
	if !geo.IsValidTile(z, x, y) {
		m.metrics.TileRequests.WithLabelValues("invalid").Inc()
		return nil
	}

	key := tileKey(at, z, x, y)
	if data, ok := m.tiles.get(key); ok {
		m.metrics.CacheEvents.WithLabelValues("tiles", "hit").Inc()
		m.metrics.TileRequests.WithLabelValues("cached").Inc()
		return data
	}
	m.metrics.CacheEvents.WithLabelValues("tiles", "miss").Inc()

	frames := m.currentFrames(ctx)

	for _, src := range m.registry.Sources() {
		name := src.Descriptor().Name

		frame, ok := frameFor(frames, name, at)
		if !ok {
			m.metrics.TileSourceAttempts.WithLabelValues(name, "noframe").Inc()
			continue
		}

		data, err := m.fetchWithTimeout(ctx, src, frame, z, x, y)
		if err != nil {
			m.logger.Warn("tile fetch failed, trying next source",
				"source", name, "z", z, "x", x, "y", y, "error", err)
			m.metrics.TileSourceAttempts.WithLabelValues(name, "error").Inc()
			continue
		}
		if data == nil {
			m.metrics.TileSourceAttempts.WithLabelValues(name, "miss").Inc()
			continue
		}

		m.metrics.TileSourceAttempts.WithLabelValues(name, "hit").Inc()
		m.metrics.TileRequests.WithLabelValues("served").Inc()
		m.tiles.put(key, data)
		return data
	}

	m.metrics.TileRequests.WithLabelValues("unserved").Inc()
	return nil
}

// currentFrames returns the cached frame list, rediscovering when the TTL
// has expired. Discovery clears both caches first so frames and tiles never
// mix generations.
func (m *Manager) currentFrames(ctx context.Context) []domain.RadarFrame {
	m.mu.Lock()
	now := domain.Clock().Now()
	if m.warm && now.Sub(m.fetchedAt) < m.frameTTL {
		frames := make([]domain.RadarFrame, len(m.frames))
		copy(frames, m.frames)
		m.metrics.CacheEvents.WithLabelValues("frames", "hit").Inc()
		m.metrics.FrameCacheAge.Set(now.Sub(m.fetchedAt).Seconds())
		m.mu.Unlock()
		return frames
	}
	m.mu.Unlock()

	m.metrics.CacheEvents.WithLabelValues("frames", "miss").Inc()
	m.tiles.clear()

	frames, anySucceeded := m.discover(ctx)

	m.mu.Lock()
	m.frames = frames
	m.fetchedAt = domain.Clock().Now()
	m.warm = true
	m.mu.Unlock()

	if anySucceeded {
		m.ready.Store(true)
	}
	m.metrics.FrameCacheAge.Set(0)

	out := make([]domain.RadarFrame, len(frames))
	copy(out, frames)
	return out
}

// discover fans frame discovery out to every source concurrently. Each
// failure is isolated: a slow or broken source contributes nothing while the
// rest proceed. Results are deduplicated by (time, source) and sorted
// ascending by time.
func (m *Manager) discover(ctx context.Context) ([]domain.RadarFrame, bool) {
	sources := m.registry.Sources()

	type result struct {
		name   string
		frames []domain.RadarFrame
		err    error
	}
	results := make([]result, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src source.Source) {
			defer wg.Done()
			discoverCtx, cancel := context.WithTimeout(ctx, m.sourceTimeout)
			defer cancel()

			frames, err := src.DiscoverFrames(discoverCtx)
			results[i] = result{name: src.Descriptor().Name, frames: frames, err: err}
		}(i, src)
	}
	wg.Wait()

	var all []domain.RadarFrame
	anySucceeded := false
	for _, res := range results {
		if res.err != nil {
			m.logger.Warn("frame discovery failed for source", "source", res.name, "error", res.err)
			m.metrics.FramesDiscovered.WithLabelValues(res.name, "error").Inc()
			continue
		}
		anySucceeded = true
		m.metrics.FramesDiscovered.WithLabelValues(res.name, "success").Inc()
		all = append(all, res.frames...)
	}

	seen := make(map[string]struct{}, len(all))
	frames := make([]domain.RadarFrame, 0, len(all))
	for _, f := range all {
		if _, dup := seen[f.Key()]; dup {
			continue
		}
		seen[f.Key()] = struct{}{}
		frames = append(frames, f)
	}

	sort.Slice(frames, func(i, j int) bool { return frames[i].Time.Before(frames[j].Time) })

	m.logger.Info("frame discovery complete",
		"sources", len(sources), "frames", len(frames), "succeeded", anySucceeded)
	return frames, anySucceeded
}

func (m *Manager) fetchWithTimeout(ctx context.Context, src source.Source, frame domain.RadarFrame, z, x, y int) ([]byte, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, m.sourceTimeout)
	defer cancel()

	start := time.Now()
	data, err := src.FetchTile(fetchCtx, frame, z, x, y)
	m.metrics.SourceFetchDuration.WithLabelValues(src.Descriptor().Name).Observe(time.Since(start).Seconds())
	return data, err
}

// frameFor finds the given source's frame at the requested instant.
func frameFor(frames []domain.RadarFrame, sourceName string, at time.Time) (domain.RadarFrame, bool) {
	for _, f := range frames {
		if f.Source == sourceName && f.Time.UnixMilli() == at.UnixMilli() {
			return f, true
		}
	}
	return domain.RadarFrame{}, false
}
