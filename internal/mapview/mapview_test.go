package mapview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fellridge/routebook/internal/config"
	"github.com/fellridge/routebook/internal/geo"
	"github.com/fellridge/routebook/internal/points"
	"github.com/fellridge/routebook/internal/segment"
	"github.com/fellridge/routebook/internal/track"
)

func buildTestSegment(t *testing.T) *segment.Segment {
	t.Helper()
	n := 200
	pts := make([]geo.WGS84, n)
	for i := 0; i < n; i++ {
		pts[i] = geo.NewWGS84(float64(i)*0.01, 45.0, 1000)
	}
	trk, err := track.New([]track.NamedSegment{{Name: "s", Points: pts}}, geo.WebMercator{}, 200)
	require.NoError(t, err)

	params := config.Defaults()
	segs := segment.Build(trk, params)
	require.NotEmpty(t, segs)
	return segs[0]
}

func TestRenderProducesWellFormedSVG(t *testing.T) {
	seg := buildTestSegment(t)
	gpx := points.New(seg.Track.WGS84[0], seg.Track.Planar[0], points.KindGPX)
	gpx.Tags["name"] = "Start"
	gpx.AddProjection(points.TrackProjection{DistanceOnTrack: 0})

	out := Render(seg, []*points.InputPoint{gpx}, seg.Params)
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0"`))
	assert.Contains(t, out, "map-line")
}

func TestExpandToAspectMatchesTargetRatio(t *testing.T) {
	b := bbox{MinX: 0, MaxX: 100, MinY: 0, MaxY: 100}
	expanded := expandToAspect(b, 1000, 500)
	w, h := expanded.MaxX-expanded.MinX, expanded.MaxY-expanded.MinY
	assert.InDelta(t, 1000.0/500.0, w/h, 1e-9)
}

func TestPlanarBBoxAddsMargin(t *testing.T) {
	pts := []geo.Planar{{X: 0, Y: 0}, {X: 100, Y: 100}}
	b := planarBBox(pts, 10)
	assert.Equal(t, -10.0, b.MinX)
	assert.Equal(t, 110.0, b.MaxX)
}
