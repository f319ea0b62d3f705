package geo

import (
	"math"
	"sort"
)

const (
	// DefaultNeighbors is how many nearby samples contribute to an estimate.
	DefaultNeighbors = 6

	// DefaultMaxRadiusDeg bounds the search radius in degrees (~550 km).
	// Samples beyond it cannot influence the estimate.
	DefaultMaxRadiusDeg = 5.0

	// power is the inverse-distance exponent. Softer than the classic 2.0
	// so the synthesized field has smoother gradients between resorts.
	power = 2.5

	epsilon = 1e-9

	// coincidentWeight stands in for the infinite weight of a zero-distance
	// sample. Large enough to dominate every realistic neighbor weight.
	coincidentWeight = 1e12
)

// Sample is one weighted observation for interpolation.
type Sample struct {
	Lat   float64
	Lon   float64
	Value float64
}

// Interpolate estimates the scalar field at (lat, lon) by inverse-distance
// weighting over the k nearest samples within maxRadiusDeg. Pass k <= 0 or
// maxRadiusDeg <= 0 to use the defaults. With no sample in range the
// estimate is 0.
func Interpolate(lat, lon float64, samples []Sample, k int, maxRadiusDeg float64) float64 {
	if k <= 0 {
		k = DefaultNeighbors
	}
	if maxRadiusDeg <= 0 {
		maxRadiusDeg = DefaultMaxRadiusDeg
	}

	type neighbor struct {
		dist  float64
		value float64
	}

	neighbors := make([]neighbor, 0, len(samples))
	for _, s := range samples {
		d := DistanceDeg(lat, lon, s.Lat, s.Lon)
		if d > maxRadiusDeg {
			continue
		}
		neighbors = append(neighbors, neighbor{dist: d, value: s.Value})
	}
	if len(neighbors) == 0 {
		return 0
	}

	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].dist < neighbors[j].dist })
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}

	var weightSum, valueSum float64
	for _, n := range neighbors {
		w := coincidentWeight
		if n.dist > 0 {
			w = 1.0 / math.Pow(n.dist+epsilon, power)
		}
		weightSum += w
		valueSum += w * n.value
	}
	return valueSum / weightSum
}

// DistanceDeg is a planar-approximate distance in degrees between two
// coordinates: Euclidean over latitude difference and cos(lat)-corrected
// longitude difference. Good enough at resort-cluster scale; not geodesic.
func DistanceDeg(lat1, lon1, lat2, lon2 float64) float64 {
	midLat := (lat1 + lat2) / 2.0 * math.Pi / 180.0
	dLat := lat1 - lat2
	dLon := (lon1 - lon2) * math.Cos(midLat)
	return math.Sqrt(dLat*dLat + dLon*dLon)
}
