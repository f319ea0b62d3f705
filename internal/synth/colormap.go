package synth

import "image/color"

// rampStop maps a snowfall threshold (inches/24h) to a tile color. Stops are
// ordered descending; the first threshold the value meets wins.
type rampStop struct {
	threshold float64
	c         color.NRGBA
}

// snowfallRamp mirrors the intensity buckets the map legend documents.
// Alpha steps down with intensity so light snow reads as a wash, not a blob.
var snowfallRamp = []rampStop{
	{8.0, color.NRGBA{R: 255, G: 0, B: 255, A: 255}},    // magenta, extreme
	{4.0, color.NRGBA{R: 255, G: 0, B: 0, A: 230}},      // red
	{2.0, color.NRGBA{R: 255, G: 140, B: 0, A: 204}},    // orange
	{1.0, color.NRGBA{R: 255, G: 255, B: 0, A: 178}},    // yellow
	{0.5, color.NRGBA{R: 0, G: 200, B: 0, A: 153}},      // green
	{0.1, color.NRGBA{R: 144, G: 238, B: 144, A: 102}},  // light green
	{0.05, color.NRGBA{R: 175, G: 238, B: 238, A: 51}},  // pale cyan, trace
}

var transparent = color.NRGBA{}

// snowfallColor maps an interpolated snowfall estimate to its bucket color.
// Below the trace threshold the pixel stays fully transparent.
func snowfallColor(inches float64) color.NRGBA {
	for _, stop := range snowfallRamp {
		if inches >= stop.threshold {
			return stop.c
		}
	}
	return transparent
}
