package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/powder-radar-service/internal/domain"
	"github.com/couchcryptid/powder-radar-service/internal/synth"
)

// RadarService resolves aggregated frame lists and individual tiles.
type RadarService interface {
	AllFrames(ctx context.Context) []domain.RadarFrame
	ResolveTile(ctx context.Context, at time.Time, z, x, y int) []byte
}

// SyntheticRenderer renders a synthetic tile for an explicit hour offset,
// bypassing frame discovery and source failover.
type SyntheticRenderer interface {
	RenderAt(ctx context.Context, hoursAgo, z, x, y int) ([]byte, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the radar API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	radar      RadarService
	synthetic  SyntheticRenderer
	logger     *slog.Logger
}

// NewServer creates the HTTP server and wires all routes.
func NewServer(addr string, radar RadarService, synthetic SyntheticRenderer, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		radar:     radar,
		synthetic: synthetic,
		logger:    logger,
	}

	mux.HandleFunc("GET /radar/frames", s.handleFrames)
	mux.HandleFunc("GET /radar/tile", s.handleTile)
	mux.HandleFunc("GET /radar/synthetic", s.handleSynthetic)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// frameEntry is one animation frame in the /radar/frames response. URL is a
// slippy-map template with {z}/{x}/{y} placeholders left for the client.
type frameEntry struct {
	Time     int64  `json:"time"`
	URL      string `json:"url"`
	Source   string `json:"source"`
	Coverage string `json:"coverage"`
	Quality  int    `json:"quality"`
}

type framesMetadata struct {
	Count          int      `json:"count"`
	Sources        []string `json:"sources"`
	TotalAvailable int      `json:"totalAvailable"`
}

type framesResponse struct {
	Frames   []frameEntry   `json:"frames"`
	Metadata framesMetadata `json:"metadata"`
}

// handleFrames returns the aggregated frame list. It never errors: on total
// upstream failure the list is simply empty.
func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	frames := s.radar.AllFrames(r.Context())

	entries := make([]frameEntry, 0, len(frames))
	seen := make(map[string]bool)
	sources := make([]string, 0, 4)
	for _, f := range frames {
		entries = append(entries, frameEntry{
			Time:     f.Time.UnixMilli(),
			URL:      frameURL(f),
			Source:   f.Source,
			Coverage: f.Coverage,
			Quality:  f.Quality,
		})
		if !seen[f.Source] {
			seen[f.Source] = true
			sources = append(sources, f.Source)
		}
	}

	writeJSON(w, http.StatusOK, framesResponse{
		Frames: entries,
		Metadata: framesMetadata{
			Count:          len(entries),
			Sources:        sources,
			TotalAvailable: len(entries),
		},
	})
}

// frameURL builds the tile URL template for one frame. Synthetic frames
// route to the direct synthesis endpoint; everything else goes through the
// Manager's failover path.
func frameURL(f domain.RadarFrame) string {
	if f.Source == "synthetic" {
		now := domain.Clock().Now().UTC().Truncate(time.Hour)
		hoursAgo := int(now.Sub(f.Time).Round(time.Hour).Hours())
		if hoursAgo < 0 {
			hoursAgo = 0
		}
		if hoursAgo > synth.MaxHoursAgo {
			hoursAgo = synth.MaxHoursAgo
		}
		return fmt.Sprintf("/radar/synthetic?hour=%d&z={z}&x={x}&y={y}", synth.MaxHoursAgo-hoursAgo)
	}
	return fmt.Sprintf("/radar/tile?time=%d&z={z}&x={x}&y={y}", f.Time.UnixMilli())
}

// handleTile serves one radar tile through priority-ordered source failover.
// Bad syntax is a 400; an unservable tile is a well-formed transparent
// placeholder, because map layers want an empty image, not an error page.
func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	timeMs, err := strconv.ParseInt(q.Get("time"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "time must be unix milliseconds"})
		return
	}
	z, x, y, err := parseTileCoords(q.Get("z"), q.Get("x"), q.Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	data := s.radar.ResolveTile(r.Context(), time.UnixMilli(timeMs).UTC(), z, x, y)
	if data == nil {
		data = synth.PlaceholderPNG()
	}
	writePNG(w, data)
}

// handleSynthetic renders a tile directly from the synthesis pipeline.
// hour counts up to now: 0 is the oldest modeled state, 47 is the present.
// Syntax errors are 400s like the tile endpoint; an out-of-range hour or
// tile degrades to the placeholder.
func (s *Server) handleSynthetic(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	hour, err := strconv.Atoi(q.Get("hour"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "hour must be an integer"})
		return
	}
	z, x, y, err := parseTileCoords(q.Get("z"), q.Get("x"), q.Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if hour < 0 || hour > synth.MaxHoursAgo {
		writePNG(w, synth.PlaceholderPNG())
		return
	}

	data, renderErr := s.synthetic.RenderAt(r.Context(), synth.MaxHoursAgo-hour, z, x, y)
	if renderErr != nil {
		s.logger.Warn("synthetic render failed", "error", renderErr, "hour", hour, "z", z, "x", x, "y", y)
		data = synth.PlaceholderPNG()
	}
	writePNG(w, data)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func parseTileCoords(zs, xs, ys string) (z, x, y int, err error) {
	if z, err = strconv.Atoi(zs); err != nil {
		return 0, 0, 0, fmt.Errorf("z must be an integer")
	}
	if x, err = strconv.Atoi(xs); err != nil {
		return 0, 0, 0, fmt.Errorf("x must be an integer")
	}
	if y, err = strconv.Atoi(ys); err != nil {
		return 0, 0, 0, fmt.Errorf("y must be an integer")
	}
	return z, x, y, nil
}

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // best-effort image response
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort JSON response
}
