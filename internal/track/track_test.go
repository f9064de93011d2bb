package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/fellridge/routebook/internal/geo"
)

func straightTrack(t *testing.T, n int) *Track {
	t.Helper()
	points := make([]geo.WGS84, n)
	for i := 0; i < n; i++ {
		points[i] = geo.NewWGS84(float64(i)*0.001, 0, float64(i))
	}
	trk, err := New([]NamedSegment{{Name: "a", Points: points}}, geo.WebMercator{}, 200)
	require.NoError(t, err)
	return trk
}

func TestNew_MissingElevation(t *testing.T) {
	points := []geo.WGS84{
		geo.NewWGS84(0, 0, 10),
		geo.NewWGS84NoElevation(0.001, 0),
	}
	_, err := New([]NamedSegment{{Name: "a", Points: points}}, geo.WebMercator{}, 200)
	require.Error(t, err)
	var missing *MissingElevationError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 1, missing.Index)
}

func TestNew_CumulativeDistanceMonotonic(t *testing.T) {
	trk := straightTrack(t, 20)
	assert.True(t, floats.IsSorted(trk.CumulativeDistance))
}

func TestNew_GainMonotonic(t *testing.T) {
	trk := straightTrack(t, 20)
	assert.True(t, floats.IsSorted(trk.SmoothedGain))
}

func TestIndexAfterBefore_Straddle(t *testing.T) {
	trk := straightTrack(t, 50)
	for _, d := range []float64{0, 123.4, trk.TotalDistance() / 2, trk.TotalDistance()} {
		after := trk.IndexAfter(d)
		before := trk.IndexBefore(d)
		if before >= 0 {
			assert.Less(t, trk.Distance(before), d)
		}
		if after < trk.Len() {
			assert.GreaterOrEqual(t, trk.Distance(after), d)
		}
	}
}

func TestSubrange(t *testing.T) {
	trk := straightTrack(t, 50)
	r := trk.Subrange(0, trk.TotalDistance())
	assert.Equal(t, 0, r.Start)
	// IndexBefore(total) is the last index strictly below the total
	// distance, so the final point falls outside the range.
	assert.Equal(t, trk.Len()-1, r.End)
}

func TestElevationGainOnRange(t *testing.T) {
	trk := straightTrack(t, 10)
	full := trk.ElevationGainOnRange(0, trk.Len())
	assert.InDelta(t, trk.ElevationGain(trk.Len()-1), full, 1e-6)
}

func TestDouglasPeucker_KeepsEndpoints(t *testing.T) {
	trk := straightTrack(t, 30)
	idx := trk.DouglasPeucker(1.0, Range{Start: 0, End: trk.Len()})
	require.NotEmpty(t, idx)
	assert.Equal(t, 0, idx[0])
	assert.Equal(t, trk.Len()-1, idx[len(idx)-1])
}

func TestDouglasPeucker_StraightLineCollapses(t *testing.T) {
	// A perfectly linear elevation profile needs no intermediate points.
	trk := straightTrack(t, 30)
	idx := trk.DouglasPeucker(0.5, Range{Start: 0, End: trk.Len()})
	assert.Len(t, idx, 2)
}

func TestMultipleSegmentsConcatenate(t *testing.T) {
	seg1 := []geo.WGS84{geo.NewWGS84(0, 0, 0), geo.NewWGS84(0.001, 0, 1)}
	seg2 := []geo.WGS84{geo.NewWGS84(0.002, 0, 2), geo.NewWGS84(0.003, 0, 3)}
	trk, err := New([]NamedSegment{{Name: "p1", Points: seg1}, {Name: "p2", Points: seg2}}, geo.WebMercator{}, 200)
	require.NoError(t, err)
	assert.Equal(t, 4, trk.Len())
	require.Len(t, trk.Parts, 2)
	assert.Equal(t, Part{Name: "p1", Start: 0, End: 2}, trk.Parts[0])
	assert.Equal(t, Part{Name: "p2", Start: 2, End: 4}, trk.Parts[1])
	// distance is continuous across the segment boundary.
	assert.Greater(t, trk.Distance(2), trk.Distance(1))
}

func TestTilesNonEmpty(t *testing.T) {
	trk := straightTrack(t, 5)
	assert.NotEmpty(t, trk.Tiles())
}
