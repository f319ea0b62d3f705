package geo

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidTile(t *testing.T) {
	tests := []struct {
		z, x, y int
		want    bool
	}{
		{0, 0, 0, true},
		{18, 0, 0, true},
		{18, (1 << 18) - 1, (1 << 18) - 1, true},
		{19, 0, 0, false},     // beyond max zoom
		{3, 8, 0, false},      // x must be < 2^3
		{3, 0, 8, false},      // y must be < 2^3
		{3, -1, 0, false},
		{-1, 0, 0, false},
		{6, 18, 23, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("z%d_x%d_y%d", tt.z, tt.x, tt.y), func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidTile(tt.z, tt.x, tt.y))
		})
	}
}

func TestTileToLonLat_KnownPoints(t *testing.T) {
	// Top-left of the single zoom-0 tile is the projection's corner.
	lon, lat := TileToLonLat(0, 0, 0, 0, 0)
	assert.InDelta(t, -180.0, lon, 1e-9)
	assert.InDelta(t, 85.0511, lat, 0.001)

	// Center of the zoom-0 tile is (0, 0).
	lon, lat = TileToLonLat(0, 0, 0, 128, 128)
	assert.InDelta(t, 0.0, lon, 1e-9)
	assert.InDelta(t, 0.0, lat, 1e-9)
}

// Forward/inverse composition must reproduce the pixel within ±1.
func TestProjectionRoundTrip(t *testing.T) {
	cases := []struct {
		z, x, y int
		px, py  float64
	}{
		{0, 0, 0, 128, 128},
		{3, 2, 2, 0.5, 0.5},
		{6, 18, 23, 100, 200},
		{10, 301, 380, 255.5, 0.5},
		{18, 77000, 97000, 13, 247},
	}

	for _, c := range cases {
		t.Run(fmt.Sprintf("z%d_x%d_y%d", c.z, c.x, c.y), func(t *testing.T) {
			lon, lat := TileToLonLat(c.z, c.x, c.y, c.px, c.py)
			x2, y2, px2, py2 := LonLatToTilePixel(c.z, lon, lat)

			gotX := float64(x2)*TileSize + px2
			gotY := float64(y2)*TileSize + py2
			wantX := float64(c.x)*TileSize + c.px
			wantY := float64(c.y)*TileSize + c.py

			assert.InDelta(t, wantX, gotX, 1.0)
			assert.InDelta(t, wantY, gotY, 1.0)
		})
	}
}

func TestTileBounds(t *testing.T) {
	b := TileBounds(0, 0, 0)
	assert.InDelta(t, -180.0, b.West, 1e-9)
	assert.InDelta(t, 180.0, b.East, 1e-9)
	assert.Greater(t, b.North, b.South)

	// Mount Washington area tile at zoom 6.
	x, y, _, _ := LonLatToTilePixel(6, -71.6, 44.0)
	b = TileBounds(6, x, y)
	assert.True(t, b.Contains(44.0, -71.6))
	assert.False(t, b.Contains(44.0, -71.6+360.0/math.Exp2(6)*2))
}

func TestBoundsContains_Edges(t *testing.T) {
	b := Bounds{North: 45, South: 44, East: -70, West: -72}
	assert.True(t, b.Contains(45, -72))
	assert.True(t, b.Contains(44, -70))
	assert.False(t, b.Contains(45.0001, -71))
	assert.False(t, b.Contains(44.5, -69.9999))
}
