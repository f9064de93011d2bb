package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineMeters_KnownDistance(t *testing.T) {
	// Roughly one degree of longitude at the equator is ~111.2km.
	a := NewWGS84NoElevation(0, 0)
	b := NewWGS84NoElevation(1, 0)
	d := HaversineMeters(a, b)
	assert.InDelta(t, 111195.0, d, 500.0)
}

func TestHaversineMeters_SamePointIsZero(t *testing.T) {
	p := NewWGS84(2.3, 48.8, 35)
	require.Zero(t, HaversineMeters(p, p))
}

func TestWebMercator_RoundTrip(t *testing.T) {
	proj := WebMercator{}
	cases := []WGS84{
		NewWGS84NoElevation(0, 0),
		NewWGS84NoElevation(2.294, 48.858),
		NewWGS84NoElevation(-122.4, 37.77),
		NewWGS84NoElevation(139.69, 35.68),
	}
	for _, p := range cases {
		planar := proj.Project(p)
		back := proj.Unproject(planar)
		assert.InDelta(t, p.Lon, back.Lon, 1e-5)
		assert.InDelta(t, p.Lat, back.Lat, 1e-5)
	}
}

func TestUTMZone(t *testing.T) {
	tests := []struct {
		lon  float64
		zone int
	}{
		{0, 31},
		{-122.4, 10},
		{2.3, 31},
		{179.9, 60},
		{-180, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.zone, UTMZone(tt.lon))
	}
}

func TestUTM_RoundTrip(t *testing.T) {
	center := NewWGS84NoElevation(2.3, 48.8)
	proj := NewUTM(center)
	cases := []WGS84{
		center,
		NewWGS84NoElevation(2.31, 48.81),
		NewWGS84NoElevation(1.9, 49.2),
		NewWGS84NoElevation(2.9, 48.2),
	}
	for _, p := range cases {
		planar := proj.Project(p)
		back := proj.Unproject(planar)
		assert.InDelta(t, p.Lon, back.Lon, 1e-5)
		assert.InDelta(t, p.Lat, back.Lat, 1e-5)
	}
}

func TestUTM_RoundTrip_SouthernHemisphere(t *testing.T) {
	center := NewWGS84NoElevation(-70.6, -33.4)
	proj := NewUTM(center)
	cases := []WGS84{
		center,
		NewWGS84NoElevation(-70.55, -33.35),
		NewWGS84NoElevation(-70.7, -33.5),
	}
	for _, p := range cases {
		planar := proj.Project(p)
		back := proj.Unproject(planar)
		assert.InDelta(t, p.Lon, back.Lon, 1e-5)
		assert.InDelta(t, p.Lat, back.Lat, 1e-5)
	}
}

func TestUTM_ProjectsConsistentZone(t *testing.T) {
	center := NewWGS84NoElevation(2.3, 48.8)
	proj := NewUTM(center)
	assert.Equal(t, 31, proj.Zone())

	p1 := proj.Project(center)
	p2 := proj.Project(NewWGS84NoElevation(2.31, 48.81))
	// Nearby points project to nearby, finite coordinates in the same zone.
	assert.Less(t, Distance(p1, p2), 2000.0)
	assert.Greater(t, Distance(p1, p2), 0.0)
}

func TestDistance(t *testing.T) {
	a := Planar{X: 0, Y: 0}
	b := Planar{X: 3, Y: 4}
	assert.InDelta(t, 5.0, Distance(a, b), 1e-9)
	assert.InDelta(t, 25.0, Distance2(a, b), 1e-9)
}

func TestLerp(t *testing.T) {
	a := Planar{X: 0, Y: 0}
	b := Planar{X: 10, Y: 0}
	mid := Lerp(a, b, 0.5)
	assert.InDelta(t, 5.0, mid.X, 1e-9)
}
