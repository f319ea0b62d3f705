package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// radar tile engine.
type Metrics struct {
	FramesDiscovered   *prometheus.CounterVec // labels: source, outcome={success,error}
	TileRequests       *prometheus.CounterVec // labels: outcome={cached,served,unserved,invalid}
	TileSourceAttempts *prometheus.CounterVec // labels: source, outcome={hit,miss,error,noframe}
	CacheEvents        *prometheus.CounterVec // labels: cache={frames,tiles}, event={hit,miss,clear,evict}

	RenderDuration      prometheus.Histogram
	SourceFetchDuration *prometheus.HistogramVec // labels: source

	FrameCacheAge    prometheus.Gauge
	ConditionsPoints prometheus.Gauge
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FramesDiscovered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "powder_radar",
			Name:      "frames_discovered_total",
			Help:      "Frame discovery calls by source and outcome.",
		}, []string{"source", "outcome"}),
		TileRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "powder_radar",
			Name:      "tile_requests_total",
			Help:      "Tile resolutions by outcome.",
		}, []string{"outcome"}),
		TileSourceAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "powder_radar",
			Name:      "tile_source_attempts_total",
			Help:      "Per-source tile fetch attempts during priority failover.",
		}, []string{"source", "outcome"}),
		CacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "powder_radar",
			Name:      "cache_events_total",
			Help:      "Frame and tile cache activity.",
		}, []string{"cache", "event"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "powder_radar",
			Name:      "render_duration_seconds",
			Help:      "Duration of one synthetic 256x256 tile render.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		SourceFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "powder_radar",
			Name:      "source_fetch_duration_seconds",
			Help:      "Upstream tile fetch duration by source.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"source"}),
		FrameCacheAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "powder_radar",
			Name:      "frame_cache_age_seconds",
			Help:      "Age of the cached frame list at last read.",
		}),
		ConditionsPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "powder_radar",
			Name:      "conditions_points",
			Help:      "Observation points available to the synthesizer.",
		}),
	}

	prometheus.MustRegister(
		m.FramesDiscovered,
		m.TileRequests,
		m.TileSourceAttempts,
		m.CacheEvents,
		m.RenderDuration,
		m.SourceFetchDuration,
		m.FrameCacheAge,
		m.ConditionsPoints,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FramesDiscovered:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "powder_radar", Name: "frames_discovered_total"}, []string{"source", "outcome"}),
		TileRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "powder_radar", Name: "tile_requests_total"}, []string{"outcome"}),
		TileSourceAttempts:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "powder_radar", Name: "tile_source_attempts_total"}, []string{"source", "outcome"}),
		CacheEvents:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "powder_radar", Name: "cache_events_total"}, []string{"cache", "event"}),
		RenderDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "powder_radar", Name: "render_duration_seconds"}),
		SourceFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "powder_radar", Name: "source_fetch_duration_seconds"}, []string{"source"}),
		FrameCacheAge:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "powder_radar", Name: "frame_cache_age_seconds"}),
		ConditionsPoints:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "powder_radar", Name: "conditions_points"}),
	}
}
