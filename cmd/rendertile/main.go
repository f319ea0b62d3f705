// Command rendertile renders a single synthetic radar tile to a PNG file,
// for eyeballing the color ramp, advection, and blur without running the
// service or the conditions API.
//
// Usage:
//
//	go run ./cmd/rendertile -hour 47 -z 8 -x 77 -y 93 -out tile.png
//	go run ./cmd/rendertile -points fixtures/resorts.json -hour 24 -z 6 -x 19 -y 23 -out tile.png
//
// Without -points a small built-in set of White Mountains resorts is used.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/couchcryptid/powder-radar-service/internal/domain"
	"github.com/couchcryptid/powder-radar-service/internal/geo"
	"github.com/couchcryptid/powder-radar-service/internal/observability"
	"github.com/couchcryptid/powder-radar-service/internal/synth"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	hour := flag.Int("hour", synth.MaxHoursAgo, "animation hour, 0 (oldest) to 47 (now)")
	z := flag.Int("z", 8, "tile zoom")
	x := flag.Int("x", 77, "tile x")
	y := flag.Int("y", 93, "tile y")
	out := flag.String("out", "tile.png", "output PNG path")
	pointsPath := flag.String("points", "", "optional JSON file with observation points")
	flag.Parse()

	if *hour < 0 || *hour > synth.MaxHoursAgo {
		return fmt.Errorf("hour %d out of range 0..%d", *hour, synth.MaxHoursAgo)
	}
	if !geo.IsValidTile(*z, *x, *y) {
		return fmt.Errorf("invalid tile %d/%d/%d", *z, *x, *y)
	}

	points, err := loadPoints(*pointsPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	renderer := synth.NewRenderer(logger, observability.NewMetrics())

	hoursAgo := synth.MaxHoursAgo - *hour
	advected := synth.Advect(points, hoursAgo)
	data := renderer.RenderTile(advected, *z, *x, *y)

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	log.Printf("wrote %s (%d bytes, %d points, hoursAgo=%d)", *out, len(data), len(points), hoursAgo)
	return nil
}

func loadPoints(path string) ([]domain.ObservationPoint, error) {
	if path == "" {
		return defaultPoints(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var points []domain.ObservationPoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return points, nil
}

func defaultPoints() []domain.ObservationPoint {
	return []domain.ObservationPoint{
		{ID: "loon", Name: "Loon Mountain", Lat: 44.0364, Lon: -71.6214, RecentSnowfall: 6.0, SnowDepth: 40},
		{ID: "cannon", Name: "Cannon Mountain", Lat: 44.1567, Lon: -71.6984, RecentSnowfall: 4.5, SnowDepth: 44},
		{ID: "bretton-woods", Name: "Bretton Woods", Lat: 44.2587, Lon: -71.4398, RecentSnowfall: 2.0, SnowDepth: 35},
		{ID: "wildcat", Name: "Wildcat Mountain", Lat: 44.2640, Lon: -71.2394, RecentSnowfall: 1.0, SnowDepth: 28},
		{ID: "sunday-river", Name: "Sunday River", Lat: 44.4734, Lon: -70.8569, RecentSnowfall: 0.5, SnowDepth: 30},
	}
}
