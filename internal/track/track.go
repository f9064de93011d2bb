// Package track builds the core polyline model: one or more named input
// segments concatenated into a single indexed track with cumulative
// distance, smoothed elevation, and cumulative elevation gain. Grounded on
// the original source's track.rs (Track::from_tracks) and elevation.rs
// (the sliding-window smoother).
package track

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/fellridge/routebook/internal/geo"
	"github.com/fellridge/routebook/internal/tile"
)

// MissingElevationError reports a track point with no elevation, a fatal
// construction error per spec.md §4.1.
type MissingElevationError struct {
	Index int
}

func (e *MissingElevationError) Error() string {
	return fmt.Sprintf("track point %d has no elevation", e.Index)
}

// Part names one contiguous input segment's range within the concatenated
// track, as [Start, End) indices.
type Part struct {
	Name       string
	Start, End int
}

// NamedSegment is one raw input segment before concatenation.
type NamedSegment struct {
	Name   string
	Points []geo.WGS84
}

// Projector is the pure bidirectional function between geodetic and
// planar coordinates a Track is built against. geo.WebMercator satisfies
// it; so does any zone-pinned geo.UTM.
type Projector interface {
	Project(geo.WGS84) geo.Planar
}

// Range is a half-open index range [Start, End) over a track.
type Range struct {
	Start, End int
}

// Len returns the number of indices the range covers.
func (r Range) Len() int { return r.End - r.Start }

// Track is the indexed polyline described in spec.md §3: for every index,
// the geodetic point, its planar projection, the cumulative distance from
// index 0, the boxcar-smoothed elevation, and the cumulative elevation
// gain (prefix sum of positive smoothed deltas).
type Track struct {
	WGS84               []geo.WGS84
	Planar              []geo.Planar
	CumulativeDistance  []float64
	SmoothedElevation   []float64
	SmoothedGain        []float64
	Parts               []Part

	tiles *tile.Set
}

// New concatenates segments, in order, into one Track. smoothWindow is
// the boxcar window width in meters used for elevation smoothing
// (spec.md default 200m). Every point across every segment must carry
// elevation or construction fails with *MissingElevationError.
func New(segments []NamedSegment, projector Projector, smoothWindow float64) (*Track, error) {
	t := &Track{}
	globalIndex := 0
	rawElevation := make([]float64, 0)

	for _, seg := range segments {
		start := globalIndex
		for i, p := range seg.Points {
			if !p.HasElevation {
				return nil, &MissingElevationError{Index: globalIndex}
			}
			t.WGS84 = append(t.WGS84, p)
			t.Planar = append(t.Planar, projector.Project(p))
			rawElevation = append(rawElevation, p.Elevation)

			if globalIndex == 0 {
				t.CumulativeDistance = append(t.CumulativeDistance, 0)
			} else {
				if i == 0 {
					// First point of a later segment: distance continues
					// from the last point of the previous segment.
					prevGlobal := t.WGS84[globalIndex-1]
					t.CumulativeDistance = append(t.CumulativeDistance,
						t.CumulativeDistance[globalIndex-1]+geo.HaversineMeters(prevGlobal, p))
				} else {
					prev := seg.Points[i-1]
					t.CumulativeDistance = append(t.CumulativeDistance,
						t.CumulativeDistance[globalIndex-1]+geo.HaversineMeters(prev, p))
				}
			}
			globalIndex++
		}
		t.Parts = append(t.Parts, Part{Name: seg.Name, Start: start, End: globalIndex})
	}

	if len(t.WGS84) < 2 {
		return nil, fmt.Errorf("track must have at least 2 points, got %d", len(t.WGS84))
	}

	t.SmoothedElevation = smooth(t.CumulativeDistance, rawElevation, smoothWindow)
	t.SmoothedGain = cumulativeGain(t.SmoothedElevation)

	t.tiles = tile.NewSet()
	for _, p := range t.Planar {
		t.tiles.AddPointWithNeighbors(p)
	}

	return t, nil
}

// smooth computes, for every index, the mean of raw values whose
// cumulative distance lies within window/2 of the query index's distance
// — a symmetric boxcar — via a sliding two-pointer sum so the whole pass
// is O(n).
func smooth(cumDist, raw []float64, window float64) []float64 {
	n := len(raw)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	half := window / 2
	lo, hi := 0, 0
	sum := 0.0
	for i := 0; i < n; i++ {
		d := cumDist[i]
		for lo < i && cumDist[lo] < d-half {
			sum -= raw[lo]
			lo++
		}
		if hi < lo {
			hi = lo
			sum = 0
			for k := lo; k < n && cumDist[k] <= d+half; k++ {
				sum += raw[k]
				hi = k + 1
			}
		}
		for hi < n && cumDist[hi] <= d+half {
			sum += raw[hi]
			hi++
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// cumulativeGain prefix-sums the positive elevation deltas via
// gonum/floats.CumSum: each step's contribution is clamped to the
// non-negative part of the delta, then summed in one pass.
func cumulativeGain(elevation []float64) []float64 {
	deltas := make([]float64, len(elevation))
	for i := 1; i < len(elevation); i++ {
		if d := elevation[i] - elevation[i-1]; d > 0 {
			deltas[i] = d
		}
	}
	return floats.CumSum(make([]float64, len(deltas)), deltas)
}

// Len returns the number of points in the track.
func (t *Track) Len() int { return len(t.WGS84) }

// TotalDistance returns the cumulative distance at the last index.
func (t *Track) TotalDistance() float64 {
	if len(t.CumulativeDistance) == 0 {
		return 0
	}
	return t.CumulativeDistance[len(t.CumulativeDistance)-1]
}

// Distance returns the cumulative distance at index.
func (t *Track) Distance(index int) float64 { return t.CumulativeDistance[index] }

// Elevation returns the smoothed elevation at index.
func (t *Track) Elevation(index int) float64 { return t.SmoothedElevation[index] }

// ElevationGain returns the cumulative smoothed elevation gain at index.
func (t *Track) ElevationGain(index int) float64 { return t.SmoothedGain[index] }

// ElevationGainOnRange returns gain(b-1) - gain(a), the gain accrued
// strictly within [a,b).
func (t *Track) ElevationGainOnRange(a, b int) float64 {
	if b <= a {
		return 0
	}
	return t.SmoothedGain[b-1] - t.SmoothedGain[a]
}

// SlopeAt returns the fractional (not percentage) elevation slope of the
// track segment straddling index i: the shared definition used by the
// profile view's numeric-slope indication glyph and the §4.10 SLOPE
// format token wherever a point's projection anchors on index i.
func (t *Track) SlopeAt(i int) float64 {
	i0, i1 := i, i+1
	if i1 >= t.Len() {
		i1 = i0
		i0--
	}
	if i0 < 0 {
		return 0
	}
	dd := t.CumulativeDistance[i1] - t.CumulativeDistance[i0]
	if dd == 0 {
		return 0
	}
	return (t.SmoothedElevation[i1] - t.SmoothedElevation[i0]) / dd
}

// IndexAfter returns the smallest index whose cumulative distance >= d.
func (t *Track) IndexAfter(d float64) int {
	return sort.Search(len(t.CumulativeDistance), func(i int) bool {
		return t.CumulativeDistance[i] >= d
	})
}

// IndexBefore returns the largest index whose cumulative distance < d.
func (t *Track) IndexBefore(d float64) int {
	i := sort.Search(len(t.CumulativeDistance), func(i int) bool {
		return t.CumulativeDistance[i] >= d
	})
	return i - 1
}

// Subrange returns the index range [IndexAfter(d0), IndexBefore(d1)+1).
func (t *Track) Subrange(d0, d1 float64) Range {
	return Range{Start: t.IndexAfter(d0), End: t.IndexBefore(d1) + 1}
}

// Tiles returns every tile touched by the track, enlarged by 8-neighbors,
// for use as the place-store read set.
func (t *Track) Tiles() []tile.Tile {
	return t.tiles.Tiles()
}

// TileSet returns the track's enlarged tile set directly, for callers
// (internal/placestore) that want the set itself rather than a flattened
// slice.
func (t *Track) TileSet() *tile.Set {
	return t.tiles
}
