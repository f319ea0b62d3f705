// Package domain models the radar tile engine's core data: resort surface
// observations, radar animation frames, and Web Mercator tile addresses.
//
// # Observation points
//
// Observations come from the resort-conditions service, one point per ski
// resort: coordinates plus recent snowfall (inches over the last 24 hours),
// snow depth, base temperature, wind speed, and visibility. Missing upstream
// fields decode to zero; the synthesis pipeline treats a zero-snowfall point
// as a valid "no precipitation here" sample rather than skipping it.
//
// # Frames
//
// A RadarFrame is one time-stamped precipitation snapshot. Frame identity is
// the (time, source) pair: two frames sharing both are duplicates and the
// manager collapses them to one. Frames are descriptors only — the image for
// a frame is fetched (or synthesized) on demand and never persisted.
//
// # Tiles
//
// Tiles follow the slippy-map convention: 256×256 pixels addressed by
// (zoom, x, y) with zoom 0–18 and 0 ≤ x,y < 2^zoom. An out-of-range address
// is not an error; every layer above resolves it to a blank transparent tile
// because the map client expects a well-formed empty image, not a failure.
package domain
