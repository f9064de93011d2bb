package userstep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fellridge/routebook/internal/config"
	"github.com/fellridge/routebook/internal/geo"
	"github.com/fellridge/routebook/internal/track"
)

func straightTrack(t *testing.T, n int, elevationStep float64) *track.Track {
	t.Helper()
	pts := make([]geo.WGS84, n)
	for i := 0; i < n; i++ {
		pts[i] = geo.NewWGS84(float64(i)*0.01, 45.0, float64(i)*elevationStep)
	}
	trk, err := track.New([]track.NamedSegment{{Name: "s", Points: pts}}, geo.WebMercator{}, 1)
	require.NoError(t, err)
	return trk
}

func TestGenerateByDistanceRespectsMinimumSpacing(t *testing.T) {
	trk := straightTrack(t, 500, 1)
	steps := GenerateByDistance(trk, 5000)
	require.NotEmpty(t, steps)
	for i := 1; i < len(steps); i++ {
		d0, _ := steps[i-1].FirstProjection()
		d1, _ := steps[i].FirstProjection()
		assert.GreaterOrEqual(t, d1.DistanceOnTrack-d0.DistanceOnTrack, 5000.0)
	}
	name, _ := steps[0].Name()
	assert.Equal(t, "P1", name)
}

func TestGenerateByElevationGainExceedingTotalYieldsNone(t *testing.T) {
	trk := straightTrack(t, 100, 1) // total gain ~= 100 smoothed-window distorted but small
	steps := GenerateByElevationGain(trk, 1_000_000)
	assert.Empty(t, steps)
}

func TestGenerateMergesBothGenerators(t *testing.T) {
	trk := straightTrack(t, 300, 2)
	dist := 10000.0
	gain := 50.0
	opts := config.UserStepOptions{StepDistanceMeters: &dist, StepElevationGainMeters: &gain}

	merged := Generate(trk, opts)
	byDist := GenerateByDistance(trk, dist)
	byGain := GenerateByElevationGain(trk, gain)
	assert.Len(t, merged, len(byDist)+len(byGain))
}

func TestGenerateSkipsAbsentOptions(t *testing.T) {
	trk := straightTrack(t, 50, 1)
	assert.Empty(t, Generate(trk, config.UserStepOptions{}))
}
