package synth

import (
	"bytes"
	"image"
	"image/png"
	"log/slog"
	"time"

	"github.com/couchcryptid/powder-radar-service/internal/domain"
	"github.com/couchcryptid/powder-radar-service/internal/geo"
	"github.com/couchcryptid/powder-radar-service/internal/observability"
)

// DefaultBlurSigma is the post-process gaussian σ. Small on purpose: just
// enough to soften bucket edges without smearing the field.
const DefaultBlurSigma = 0.5

var placeholderPNG = encodePlaceholder()

// PlaceholderPNG returns the shared 1×1 fully-transparent tile used whenever
// a real or synthetic tile cannot be produced. Callers must not mutate it.
func PlaceholderPNG() []byte {
	return placeholderPNG
}

func encodePlaceholder() []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		// Encoding a 1x1 in-memory image cannot fail at runtime; panic at
		// init beats serving corrupt bytes forever.
		panic(err)
	}
	return buf.Bytes()
}

// Renderer rasterizes advected observation points into PNG map tiles.
type Renderer struct {
	logger    *slog.Logger
	metrics   *observability.Metrics
	blurSigma float64
}

// NewRenderer creates a tile renderer with the default blur.
func NewRenderer(logger *slog.Logger, metrics *observability.Metrics) *Renderer {
	return &Renderer{
		logger:    logger,
		metrics:   metrics,
		blurSigma: DefaultBlurSigma,
	}
}

// RenderTile rasterizes a 256×256 precipitation tile from the given
// (already advected) points. It never fails: invalid addresses and encoding
// errors degrade to the transparent placeholder.
func (r *Renderer) RenderTile(points []domain.ObservationPoint, z, x, y int) []byte {
	if !geo.IsValidTile(z, x, y) {
		return placeholderPNG
	}

	start := time.Now()

	samples := make([]geo.Sample, len(points))
	for i, p := range points {
		samples[i] = geo.Sample{Lat: p.Lat, Lon: p.Lon, Value: p.RecentSnowfall}
	}

	img := image.NewNRGBA(image.Rect(0, 0, geo.TileSize, geo.TileSize))

	if tileInRange(z, x, y, samples) {
		for py := 0; py < geo.TileSize; py++ {
			for px := 0; px < geo.TileSize; px++ {
				lon, lat := geo.TileToLonLat(z, x, y, float64(px)+0.5, float64(py)+0.5)
				v := geo.Interpolate(lat, lon, samples, geo.DefaultNeighbors, geo.DefaultMaxRadiusDeg)
				c := snowfallColor(v)
				i := img.PixOffset(px, py)
				img.Pix[i] = c.R
				img.Pix[i+1] = c.G
				img.Pix[i+2] = c.B
				img.Pix[i+3] = c.A
			}
		}
		img = gaussianBlur(img, r.blurSigma)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		r.logger.Warn("tile encode failed", "z", z, "x", x, "y", y, "error", err)
		return placeholderPNG
	}

	r.metrics.RenderDuration.Observe(time.Since(start).Seconds())
	return buf.Bytes()
}

// tileInRange reports whether any sample could influence the tile: a sample
// within the interpolation radius of the tile's bounding box. Lets far-away
// tiles skip 65k interpolation calls and come back blank immediately.
func tileInRange(z, x, y int, samples []geo.Sample) bool {
	b := geo.TileBounds(z, x, y)
	for _, s := range samples {
		lat := clamp(s.Lat, b.South, b.North)
		lon := clamp(s.Lon, b.West, b.East)
		if geo.DistanceDeg(s.Lat, s.Lon, lat, lon) <= geo.DefaultMaxRadiusDeg {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
