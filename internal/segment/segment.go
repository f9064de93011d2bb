// Package segment implements spec.md §4.6: covering a track with
// overlapping distance ranges, and §3's Segment record — a range plus a
// filtered point view and its own tile set. Grounded on the original
// source's segment.rs (Segment::create_segments / Segment::points).
package segment

import (
	"github.com/fellridge/routebook/internal/config"
	"github.com/fellridge/routebook/internal/points"
	"github.com/fellridge/routebook/internal/tile"
	"github.com/fellridge/routebook/internal/track"
)

// DistanceRange is a half-open [Start,End) range in track distance
// (meters), the unit segments are sliced in before being converted to
// track index ranges.
type DistanceRange struct {
	Start, End float64
}

// Slice covers [0,total] with overlapping distance ranges: each runs for
// length meters, the next starts length-overlap meters after the
// previous start, and the last range is clamped to end exactly at total
// (spec.md §4.6). A track shorter than length produces exactly one
// range covering the whole track (spec.md §8 boundary behavior).
func Slice(total, length, overlap float64) []DistanceRange {
	if length <= 0 || total <= length {
		return []DistanceRange{{Start: 0, End: total}}
	}
	step := length - overlap
	if step <= 0 {
		step = length
	}

	var out []DistanceRange
	start := 0.0
	for {
		end := start + length
		if end >= total {
			out = append(out, DistanceRange{Start: start, End: total})
			break
		}
		out = append(out, DistanceRange{Start: start, End: end})
		start += step
	}
	return out
}

// Segment is the record of spec.md §3: an id, a distance range over one
// track, and that range's tile set, bundled with the parameters that
// produced it.
type Segment struct {
	ID                   int
	StartDistance        float64
	EndDistance          float64
	Track                *track.Track
	Tiles                *tile.Set
	Params               config.Parameters
}

// Range returns track.Subrange(StartDistance, EndDistance) — the index
// range this segment covers (spec.md §3).
func (s *Segment) Range() track.Range {
	return s.Track.Subrange(s.StartDistance, s.EndDistance)
}

// Build slices trk per Params.SegmentLengthMeters/SegmentOverlapMeters
// and computes each segment's enlarged tile set.
func Build(trk *track.Track, params config.Parameters) []*Segment {
	ranges := Slice(trk.TotalDistance(), params.SegmentLengthMeters, params.SegmentOverlapMeters)
	segs := make([]*Segment, len(ranges))
	for i, r := range ranges {
		seg := &Segment{
			ID:            i,
			StartDistance: r.Start,
			EndDistance:   r.End,
			Track:         trk,
			Params:        params,
			Tiles:         tile.NewSet(),
		}
		rng := seg.Range()
		for idx := rng.Start; idx < rng.End; idx++ {
			seg.Tiles.AddPointWithNeighbors(trk.Planar[idx])
		}
		segs[i] = seg
	}
	return segs
}

// FilterPoints returns the subset of all whose at least one projection's
// DistanceOnTrack falls within [StartDistance, EndDistance) — the
// "filtered point view" of spec.md §3.
func (s *Segment) FilterPoints(all []*points.InputPoint) []*points.InputPoint {
	out := make([]*points.InputPoint, 0, len(all))
	for _, p := range all {
		for _, proj := range p.TrackProjections {
			if proj.DistanceOnTrack >= s.StartDistance && proj.DistanceOnTrack < s.EndDistance {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
