// Package geo holds the Web Mercator tile math and the inverse-distance
// interpolator used by the synthetic radar pipeline.
package geo

import "math"

const (
	// TileSize is the pixel width/height of a slippy-map tile.
	TileSize = 256

	// MaxZoom is the deepest zoom level the service serves.
	MaxZoom = 18
)

// Bounds is a geographic bounding box in WGS-84 degrees.
type Bounds struct {
	North float64
	South float64
	East  float64
	West  float64
}

// Contains reports whether the point lies inside the box (edges inclusive).
func (b Bounds) Contains(lat, lon float64) bool {
	return lat <= b.North && lat >= b.South && lon >= b.West && lon <= b.East
}

// IsValidTile reports whether (z, x, y) addresses a tile on the Web Mercator
// grid: zoom 0..MaxZoom and 0 ≤ x,y < 2^z.
func IsValidTile(z, x, y int) bool {
	if z < 0 || z > MaxZoom {
		return false
	}
	n := 1 << uint(z)
	return x >= 0 && x < n && y >= 0 && y < n
}

// TileToLonLat inverts the Web Mercator projection for a pixel position
// (px, py) within tile (z, x, y). Pixel offsets are fractional; pass the
// pixel center (px+0.5) to sample mid-pixel.
func TileToLonLat(z, x, y int, px, py float64) (lon, lat float64) {
	n := math.Exp2(float64(z))
	lon = (float64(x)+px/TileSize)/n*360.0 - 180.0
	merc := math.Pi * (1.0 - 2.0*(float64(y)+py/TileSize)/n)
	lat = math.Atan(math.Sinh(merc)) * 180.0 / math.Pi
	return lon, lat
}

// LonLatToTilePixel is the forward projection: it returns the tile that
// contains the coordinate at zoom z and the pixel position within that tile.
func LonLatToTilePixel(z int, lon, lat float64) (x, y int, px, py float64) {
	n := math.Exp2(float64(z))

	fx := (lon + 180.0) / 360.0 * n
	latRad := lat * math.Pi / 180.0
	fy := (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n

	x = int(math.Floor(fx))
	y = int(math.Floor(fy))
	px = (fx - float64(x)) * TileSize
	py = (fy - float64(y)) * TileSize
	return x, y, px, py
}

// TileBounds returns the geographic extent of tile (z, x, y). Used for
// bounding-box intersection tests when deciding whether any observation can
// influence a tile at all.
func TileBounds(z, x, y int) Bounds {
	west, north := TileToLonLat(z, x, y, 0, 0)
	east, south := TileToLonLat(z, x, y, TileSize, TileSize)
	return Bounds{North: north, South: south, East: east, West: west}
}
