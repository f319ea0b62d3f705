// Package synth procedurally generates radar imagery from sparse resort
// observations: a storm advection/decay model positions past precipitation,
// inverse-distance interpolation fills the field, and a color ramp plus
// gaussian blur turn it into a map tile.
package synth

import (
	"math"

	"github.com/couchcryptid/powder-radar-service/internal/domain"
)

const (
	// MaxHoursAgo is the oldest synthetic frame offset. Offset 0 is "now".
	MaxHoursAgo = 47

	// The synthetic storm travels northeast at a fixed speed. These are not
	// fitted to any real system; they only need to look plausible on a map.
	stormBearingDeg = 45.0
	stormSpeedKmh   = 35.0

	kmPerDegreeLat = 111.32
)

// Advect returns a copy of points displaced and intensity-scaled to
// represent the storm state hoursAgo hours before the observations. Snowfall
// values shrink with age per the decay curve; all other fields pass through.
func Advect(points []domain.ObservationPoint, hoursAgo int) []domain.ObservationPoint {
	if hoursAgo < 0 {
		hoursAgo = 0
	}
	if hoursAgo > MaxHoursAgo {
		hoursAgo = MaxHoursAgo
	}

	bearing := stormBearingDeg * math.Pi / 180.0
	multiplier := intensityMultiplier(hoursAgo)

	out := make([]domain.ObservationPoint, len(points))
	for i, p := range points {
		dLatPerHour := stormSpeedKmh * math.Cos(bearing) / kmPerDegreeLat

		// Longitude degrees shrink with latitude; guard the pole-adjacent
		// cosine even though no resort is anywhere near it.
		latCos := math.Cos(p.Lat * math.Pi / 180.0)
		if math.Abs(latCos) < 1e-6 {
			latCos = 1e-6
		}
		dLonPerHour := stormSpeedKmh * math.Sin(bearing) / (kmPerDegreeLat * latCos)

		h := float64(hoursAgo)
		adv := p
		adv.Lat = p.Lat - dLatPerHour*h
		adv.Lon = p.Lon - dLonPerHour*h
		adv.RecentSnowfall = math.Max(0, p.RecentSnowfall*multiplier)
		out[i] = adv
	}
	return out
}

// intensityMultiplier maps frame age to a snowfall scale factor: a flat peak
// near "now", a linear ramp-down through mid-history, then quadratic decay
// to zero at the oldest frame. Non-increasing in hoursAgo.
func intensityMultiplier(hoursAgo int) float64 {
	s := float64(hoursAgo) / float64(MaxHoursAgo)
	switch {
	case s < 0.2:
		return 1.0
	case s < 0.5:
		return 0.8 - 0.4*((s-0.2)/0.3)
	default:
		rem := 1.0 - (s-0.5)/0.5
		return 0.4 * rem * rem
	}
}
