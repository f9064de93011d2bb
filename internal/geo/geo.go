// Package geo holds the geodetic and planar point types shared across the
// engine, plus the pure projector functions between them. A projector is a
// bidirectional function: WGS84 -> planar and planar -> WGS84 round-trip to
// within the tolerance asserted in the package tests.
package geo

import "math"

// WGS84 is a geodetic point: longitude, latitude in degrees, and an
// optional elevation in meters. HasElevation distinguishes "elevation is
// zero" from "elevation was never supplied" (only track points require it).
type WGS84 struct {
	Lon, Lat   float64
	Elevation  float64
	HasElevation bool
}

// NewWGS84 builds a point with elevation present.
func NewWGS84(lon, lat, elevation float64) WGS84 {
	return WGS84{Lon: lon, Lat: lat, Elevation: elevation, HasElevation: true}
}

// NewWGS84NoElevation builds a point with no elevation data.
func NewWGS84NoElevation(lon, lat float64) WGS84 {
	return WGS84{Lon: lon, Lat: lat}
}

const earthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance between two geodetic
// points, ignoring elevation.
func HaversineMeters(a, b WGS84) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)
	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}
