package domain

import (
	"fmt"
	"time"
)

// ObservationPoint is one resort's current surface conditions, as reported
// by the resort-conditions service. Treated as immutable per request.
type ObservationPoint struct {
	ID             string  `json:"id"`
	Name           string  `json:"name,omitempty"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	RecentSnowfall float64 `json:"recent_snowfall"` // inches over the last 24h
	SnowDepth      float64 `json:"snow_depth,omitempty"`
	BaseTemp       float64 `json:"base_temp,omitempty"`
	WindSpeed      float64 `json:"wind_speed,omitempty"`
	Visibility     float64 `json:"visibility,omitempty"`
}

// RadarFrame describes one precipitation snapshot available for animation.
type RadarFrame struct {
	Time       time.Time `json:"time"`
	Identifier string    `json:"identifier"` // opaque source-specific handle (URL path, layer name, hour index)
	Source     string    `json:"source"`
	Coverage   string    `json:"coverage,omitempty"`
	Quality    int       `json:"quality"` // 1–5, informational only; not used in failover
}

// Key returns the frame's identity. Frames with equal keys are duplicates.
func (f RadarFrame) Key() string {
	return fmt.Sprintf("%d|%s", f.Time.UnixMilli(), f.Source)
}

// TileCoordinate addresses a 256×256 Web Mercator tile.
type TileCoordinate struct {
	Z int `json:"z"`
	X int `json:"x"`
	Y int `json:"y"`
}

func (t TileCoordinate) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}
