package routebook

import (
	"sort"

	"github.com/fellridge/routebook/internal/config"
	"github.com/fellridge/routebook/internal/format"
	"github.com/fellridge/routebook/internal/points"
	"github.com/fellridge/routebook/internal/track"
)

// Waypoint is the exported shape of spec.md §6: "A sorted sequence of
// (lon, lat, ele, rendered_name, description)".
type Waypoint struct {
	Lon, Lat, Elevation float64
	RenderedName        string
	Description         string
}

// ExportWaypoints renders every Control and UserStep in pts through its
// configured name-format string (spec.md §4.10) and returns them sorted
// by distance-on-track, the shape a GPX or CSV exporter downstream can
// consume directly without re-deriving anything. GPX/Place points are
// included too (rendered_name is just their name), matching the original
// source's waypoint_values table, which doesn't distinguish input kind.
func ExportWaypoints(trk *track.Track, pts []*points.InputPoint, params config.Parameters) []Waypoint {
	type scored struct {
		wp       Waypoint
		distance float64
	}
	out := make([]scored, 0, len(pts))
	for _, p := range pts {
		proj, ok := p.FirstProjection()
		if !ok {
			continue
		}
		name, _ := p.Name()
		rendered := name
		switch p.Kind {
		case points.KindControl:
			rendered = format.Render(params.ControlNameFormat, format.Context{
				Name: name, DistanceMeters: proj.DistanceOnTrack, StartTime: params.StartTime,
				SpeedMPS: params.SpeedMPS, Slope: trk.SlopeAt(proj.IntegerIndex),
			})
		case points.KindUserStep:
			rendered = format.Render(params.UserStepNameFormat, format.Context{
				Name: name, DistanceMeters: proj.DistanceOnTrack, StartTime: params.StartTime,
				SpeedMPS: params.SpeedMPS, Slope: trk.SlopeAt(proj.IntegerIndex),
			})
		}
		out = append(out, scored{
			wp: Waypoint{
				Lon:          p.WGS84.Lon,
				Lat:          p.WGS84.Lat,
				Elevation:    proj.Elevation,
				RenderedName: rendered,
				Description:  p.Description(),
			},
			distance: proj.DistanceOnTrack,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].distance < out[j].distance })

	waypoints := make([]Waypoint, len(out))
	for i, s := range out {
		waypoints[i] = s.wp
	}
	return waypoints
}
