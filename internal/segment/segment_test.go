package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fellridge/routebook/internal/config"
	"github.com/fellridge/routebook/internal/geo"
	"github.com/fellridge/routebook/internal/track"
)

func TestSliceShortTrackYieldsOneSegment(t *testing.T) {
	ranges := Slice(50_000, 120_000, 5_000)
	require.Len(t, ranges, 1)
	assert.Equal(t, DistanceRange{0, 50_000}, ranges[0])
}

func TestSliceOverlapsAndCoversTotal(t *testing.T) {
	ranges := Slice(300_000, 120_000, 5_000)
	require.GreaterOrEqual(t, len(ranges), 2)
	assert.Equal(t, 0.0, ranges[0].Start)
	assert.Equal(t, 300_000.0, ranges[len(ranges)-1].End)
	for i := 1; i < len(ranges); i++ {
		assert.Less(t, ranges[i].Start, ranges[i-1].End, "segments must overlap")
	}
}

func buildStraightTrack(t *testing.T, n int) *track.Track {
	t.Helper()
	pts := make([]geo.WGS84, n)
	for i := 0; i < n; i++ {
		pts[i] = geo.NewWGS84(float64(i)*0.01, 45.0, 100)
	}
	trk, err := track.New([]track.NamedSegment{{Name: "s", Points: pts}}, geo.WebMercator{}, 200)
	require.NoError(t, err)
	return trk
}

func TestBuildSegmentsCoverTrack(t *testing.T) {
	trk := buildStraightTrack(t, 500)
	params := config.Defaults()
	params.SegmentLengthMeters = trk.TotalDistance() / 3
	params.SegmentOverlapMeters = 100

	segs := Build(trk, params)
	require.NotEmpty(t, segs)
	last := segs[len(segs)-1]
	assert.InDelta(t, trk.TotalDistance(), last.EndDistance, 1e-6)
	for _, s := range segs {
		assert.Greater(t, s.Tiles.Len(), 0)
	}
}
