// Package userstep implements spec.md §4.5: regular sampling of the
// track at fixed distance or elevation-gain intervals, emitting UserStep
// InputPoints named "P1, P2, ...". Grounded on the original source's
// user_step.rs.
package userstep

import (
	"fmt"

	"github.com/fellridge/routebook/internal/config"
	"github.com/fellridge/routebook/internal/points"
	"github.com/fellridge/routebook/internal/track"
)

// GenerateByDistance walks the track emitting a UserStep every time
// cumulative distance advances by stepDistance since the previous
// emission (spec.md §4.5).
func GenerateByDistance(trk *track.Track, stepDistance float64) []*points.InputPoint {
	if stepDistance <= 0 {
		return nil
	}
	var out []*points.InputPoint
	next := stepDistance
	n := 0
	for i := 0; i < trk.Len(); i++ {
		if trk.Distance(i) < next {
			continue
		}
		n++
		out = append(out, newUserStep(trk, i, n))
		next = trk.Distance(i) + stepDistance
	}
	return out
}

// GenerateByElevationGain walks the track emitting a UserStep every time
// cumulative smoothed elevation gain advances by stepGain since the
// previous emission (spec.md §4.5). A stepGain exceeding the track's
// total gain emits zero points.
func GenerateByElevationGain(trk *track.Track, stepGain float64) []*points.InputPoint {
	if stepGain <= 0 {
		return nil
	}
	var out []*points.InputPoint
	next := stepGain
	n := 0
	for i := 0; i < trk.Len(); i++ {
		if trk.ElevationGain(i) < next {
			continue
		}
		n++
		out = append(out, newUserStep(trk, i, n))
		next = trk.ElevationGain(i) + stepGain
	}
	return out
}

// Generate runs both generators per opts and merges their results,
// preserving each generator's own internal ordering (spec.md §4.5: "two
// independent generators, applied in order and merged").
func Generate(trk *track.Track, opts config.UserStepOptions) []*points.InputPoint {
	var out []*points.InputPoint
	if opts.StepDistanceMeters != nil {
		out = append(out, GenerateByDistance(trk, *opts.StepDistanceMeters)...)
	}
	if opts.StepElevationGainMeters != nil {
		out = append(out, GenerateByElevationGain(trk, *opts.StepElevationGainMeters)...)
	}
	return out
}

func newUserStep(trk *track.Track, index, n int) *points.InputPoint {
	p := points.New(trk.WGS84[index], trk.Planar[index], points.KindUserStep)
	p.Tags["name"] = fmt.Sprintf("P%d", n)
	p.AddProjection(points.TrackProjection{
		IntegerIndex:    index,
		FloatingIndex:   float64(index),
		Planar:          trk.Planar[index],
		Elevation:       trk.Elevation(index),
		TrackDistance:   0,
		DistanceOnTrack: trk.Distance(index),
	})
	return p
}
