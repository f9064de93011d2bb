// Package controls implements spec.md §4.4: deriving brevet-style
// Control InputPoints from a track via one of three strategies
// (segments-as-controls, waypoints-as-controls, population-weighted
// scan), followed by Start/End augmentation. Grounded on the original
// source's controls.rs.
package controls

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/fellridge/routebook/internal/geo"
	"github.com/fellridge/routebook/internal/points"
	"github.com/fellridge/routebook/internal/projection"
	"github.com/fellridge/routebook/internal/track"
)

const (
	segmentAdoptRadiusMeters  = 200.0
	waypointControlRadius     = 100.0
	sectorMarginMeters        = 10_000.0
	startEndThresholdMeters   = 1000.0
)

// Derive runs the three strategies of spec.md §4.4 in priority order and
// augments the result with Start/End controls.
func Derive(trk *track.Track, idx *projection.Index, gpxWaypoints, places []*points.InputPoint) []*points.InputPoint {
	var controls []*points.InputPoint
	switch {
	case len(trk.Parts) > 1:
		controls = segmentsAsControls(trk, gpxWaypoints)
	case hasNearbyWaypoint(idx, gpxWaypoints):
		controls = waypointsAsControls(trk, idx, gpxWaypoints)
	default:
		controls = populationWeightedScan(trk, places)
	}
	sortByTrackPosition(controls)
	return augmentStartEnd(trk, controls)
}

// segmentsAsControls emits one control at the end of each named part
// except the last (spec.md §4.4 strategy 1).
func segmentsAsControls(trk *track.Track, gpxWaypoints []*points.InputPoint) []*points.InputPoint {
	var out []*points.InputPoint
	for i := 0; i < len(trk.Parts)-1; i++ {
		part := trk.Parts[i]
		idx := part.End - 1
		if idx < 0 {
			idx = 0
		}
		planar := trk.Planar[idx]

		name := lastAlnumWord(part.Name)
		description := ""
		for _, wp := range gpxWaypoints {
			if geo.Distance(wp.Planar, planar) <= segmentAdoptRadiusMeters {
				if n, ok := wp.Name(); ok {
					name = n
				}
				description = wp.Description()
				break
			}
		}

		ctrl := points.New(trk.WGS84[idx], planar, points.KindControl)
		ctrl.Tags["name"] = name
		if description != "" {
			ctrl.Tags["description"] = description
		}
		ctrl.AddProjection(trackPointProjection(trk, idx))
		out = append(out, ctrl)
	}
	sortByTrackPosition(out)
	return out
}

// hasNearbyWaypoint reports whether any GPX waypoint projects within
// waypointControlRadius of the track — the condition spec.md §4.4 asks
// be met before the waypoints-as-controls strategy is usable.
func hasNearbyWaypoint(idx *projection.Index, gpxWaypoints []*points.InputPoint) bool {
	for _, wp := range gpxWaypoints {
		if idx.ProjectPoint(wp.Planar).TrackDistance <= waypointControlRadius {
			return true
		}
	}
	return false
}

// waypointsAsControls projects every GPX waypoint onto the track and
// keeps those within 100m (spec.md §4.4 strategy 2).
func waypointsAsControls(trk *track.Track, idx *projection.Index, gpxWaypoints []*points.InputPoint) []*points.InputPoint {
	var out []*points.InputPoint
	for _, wp := range gpxWaypoints {
		proj := idx.ProjectPoint(wp.Planar)
		if proj.TrackDistance > waypointControlRadius {
			continue
		}
		i := proj.IntegerIndex
		ctrl := points.New(trk.WGS84[i], trk.Planar[i], points.KindControl)
		if n, ok := wp.Name(); ok {
			ctrl.Tags["name"] = n
		}
		if d := wp.Description(); d != "" {
			ctrl.Tags["description"] = d
		}
		ctrl.AddProjection(trackPointProjection(trk, i))
		out = append(out, ctrl)
	}
	sortByTrackPosition(out)
	return out
}

// candidate is a place point scored for one sector of the
// population-weighted scan.
type candidate struct {
	point *points.InputPoint
	proj  points.TrackProjection
	score int64
}

// populationWeightedScan implements spec.md §4.4 strategy 3.
func populationWeightedScan(trk *track.Track, places []*points.InputPoint) []*points.InputPoint {
	total := trk.TotalDistance()
	sectors := int(math.Ceil(total / 1000 / 70))
	if sectors < 4 {
		sectors = 4
	}
	sectorLen := total / float64(sectors)

	var out []*points.InputPoint
	prevControlDistance := -math.MaxFloat64
	for k := 0; k < sectors; k++ {
		sectorStart := float64(k) * sectorLen
		sectorEnd := float64(k+1) * sectorLen
		if k == sectors-1 {
			sectorEnd = total
		}

		var best *candidate
		for _, place := range places {
			population, _ := place.Population()
			for _, proj := range place.TrackProjections {
				if proj.DistanceOnTrack < sectorStart || proj.DistanceOnTrack >= sectorEnd {
					continue
				}
				if !projection.IsCloseToTrack(proj.TrackDistance, place.Kind, population) {
					continue
				}
				if math.Abs(proj.DistanceOnTrack-prevControlDistance) <= sectorMarginMeters {
					continue
				}
				if total-proj.DistanceOnTrack <= sectorMarginMeters {
					continue
				}
				sc := score(place.Kind, population)
				if best == nil || sc > best.score {
					best = &candidate{point: place, proj: proj, score: sc}
				}
				break // first projection on this sector only
			}
		}

		if best == nil {
			continue
		}
		name, _ := best.point.Name()
		ctrl := points.New(best.point.WGS84, best.point.Planar, points.KindControl)
		ctrl.Tags["name"] = fmt.Sprintf("K%d - %s", k+1, shorten(name))
		if d := best.point.Description(); d != "" {
			ctrl.Tags["description"] = d
		}
		ctrl.AddProjection(best.proj)
		out = append(out, ctrl)
		prevControlDistance = best.proj.DistanceOnTrack
	}
	return out
}

// score implements spec.md §4.4's per-kind scoring function.
func score(kind points.Kind, population int) int64 {
	switch kind {
	case points.KindUserStep:
		return math.MinInt64
	case points.KindGPX, points.KindControl:
		return math.MaxInt64
	case points.KindCity, points.KindTown:
		return int64(maxInt(population, 10000))
	case points.KindVillage:
		return int64(maxInt(population, 1000))
	case points.KindHamlet:
		return int64(maxInt(population, 100))
	default:
		return int64(population)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// shorten trims name to the first whitespace/hyphen-separated prefix
// exceeding 5 characters, falling back to the full name when it is
// already under 10 characters (spec.md §4.4).
func shorten(name string) string {
	if len(name) < 10 {
		return name
	}
	for i, r := range name {
		if (r == ' ' || r == '-') && i > 5 {
			return name[:i]
		}
	}
	return name
}

// lastAlnumWord returns the last whitespace-separated token of name,
// trimmed of any leading/trailing non-alphanumeric punctuation.
func lastAlnumWord(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return name
	}
	return strings.TrimFunc(fields[len(fields)-1], func(r rune) bool {
		return !isAlnum(r)
	})
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// augmentStartEnd prepends a "Start" control and/or appends an "End"
// control when no existing control lies within startEndThresholdMeters
// of the track's start/end (spec.md §4.4).
func augmentStartEnd(trk *track.Track, controls []*points.InputPoint) []*points.InputPoint {
	near := func(distance float64) bool {
		for _, c := range controls {
			p, ok := c.FirstProjection()
			if ok && math.Abs(p.DistanceOnTrack-distance) <= startEndThresholdMeters {
				return true
			}
		}
		return false
	}

	total := trk.TotalDistance()
	if !near(0) {
		start := points.New(trk.WGS84[0], trk.Planar[0], points.KindControl)
		start.Tags["name"] = "Start"
		start.AddProjection(trackPointProjection(trk, 0))
		controls = append([]*points.InputPoint{start}, controls...)
	}
	if !near(total) {
		last := trk.Len() - 1
		end := points.New(trk.WGS84[last], trk.Planar[last], points.KindControl)
		end.Tags["name"] = "End"
		end.AddProjection(trackPointProjection(trk, last))
		controls = append(controls, end)
	}
	return controls
}

// trackPointProjection builds the degenerate (on-track, zero-distance)
// projection record for a control that sits exactly at a track index.
func trackPointProjection(trk *track.Track, index int) points.TrackProjection {
	return points.TrackProjection{
		IntegerIndex:    index,
		FloatingIndex:   float64(index),
		Planar:          trk.Planar[index],
		Elevation:       trk.Elevation(index),
		TrackDistance:   0,
		DistanceOnTrack: trk.Distance(index),
	}
}

func sortByTrackPosition(pts []*points.InputPoint) {
	sort.Slice(pts, func(i, j int) bool {
		pi, _ := pts[i].FirstProjection()
		pj, _ := pts[j].FirstProjection()
		return pi.FloatingIndex < pj.FloatingIndex
	})
}
