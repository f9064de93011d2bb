// Package projection implements §4.2 of spec.md: building a spatial index
// over the track's planar points, projecting arbitrary query points onto
// the polyline with sub-segment precision, and the multi-projection /
// deduplication rules used for self-crossing tracks.
package projection

import (
	"github.com/fellridge/routebook/internal/geo"
	"github.com/fellridge/routebook/internal/geoindex"
	"github.com/fellridge/routebook/internal/points"
	"github.com/fellridge/routebook/internal/track"
)

// MinSeparationMeters is the deduplication threshold of spec.md §4.2:
// two projections of the same InputPoint are considered distinct only if
// their distance-on-track differs by at least this much.
const MinSeparationMeters = 10.0

// Index answers nearest-point-on-track queries. It must be built once per
// track and reused (spec.md §9 design note on index correctness).
type Index struct {
	trk   *track.Track
	pidx  *geoindex.PointIndex
}

// New builds a projection index over a track's planar points.
func New(trk *track.Track) *Index {
	payloads := make([]int, trk.Len())
	for i := range payloads {
		payloads[i] = i
	}
	return &Index{trk: trk, pidx: geoindex.NewPointIndex(trk.Planar, payloads)}
}

// NearestTrackIndex returns the index of the track point closest to p in
// the planar metric.
func (idx *Index) NearestTrackIndex(p geo.Planar) int {
	i, ok := idx.pidx.Nearest(p)
	if !ok {
		return 0
	}
	return i
}

// projectAt implements the 5-step algorithm of spec.md §4.2, anchored
// at the given nearest-neighbor index (so both the primary nearest-point
// path and the local-minimum scan used for looping tracks share one
// implementation).
func (idx *Index) projectAt(anchor int, p geo.Planar) points.TrackProjection {
	n := idx.trk.Len()

	type seg struct{ a, b int }
	var candidates []seg
	if anchor-1 >= 0 {
		candidates = append(candidates, seg{anchor - 1, anchor})
	}
	if anchor+1 < n {
		candidates = append(candidates, seg{anchor, anchor + 1})
	}
	if len(candidates) == 0 {
		candidates = []seg{{anchor, anchor}}
	}

	best := candidates[0]
	bestDist := geo.Distance(idx.trk.Planar[best.a], p)
	for _, c := range candidates[1:] {
		d := geo.Distance(idx.trk.Planar[c.a], p)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}

	a := idx.trk.Planar[best.a]
	b := idx.trk.Planar[best.b]
	t := lineLocateFraction(a, b, p)
	floatingIndex := float64(best.a) + t
	interp := geo.Lerp(a, b, t)

	elevA := idx.trk.Elevation(best.a)
	elevB := idx.trk.Elevation(best.b)
	elev := elevA + t*(elevB-elevA)

	trackDistance := geo.Distance(p, interp)
	// Open question preserved verbatim (spec.md §9): the anchor used for
	// distance-on-track is the nearest-neighbor index, even when the
	// fractional point actually falls on the segment before it.
	distanceOnTrack := idx.trk.Distance(anchor) + geo.Distance(idx.trk.Planar[anchor], interp)

	return points.TrackProjection{
		IntegerIndex:    best.a,
		FloatingIndex:   floatingIndex,
		Planar:          interp,
		Elevation:       elev,
		TrackDistance:   trackDistance,
		DistanceOnTrack: distanceOnTrack,
	}
}

// ProjectPoint projects p onto the track using the globally nearest track
// index as anchor — the single-projection path used for Control and
// UserStep points, which always have exactly one projection.
func (idx *Index) ProjectPoint(p geo.Planar) points.TrackProjection {
	return idx.projectAt(idx.NearestTrackIndex(p), p)
}

// lineLocateFraction returns the fraction t in [0,1] of segment (a,b)
// closest to p. Degenerate segments (a==b) fall back to t=0 (spec.md §9
// design note, preserved verbatim).
func lineLocateFraction(a, b, p geo.Planar) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	denom := dx*dx + dy*dy
	if denom == 0 {
		return 0
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / denom
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// IsCloseToTrack implements spec.md §4.2's threshold rule: 2000m for a
// City kind or a population over 1000, otherwise 300m.
func IsCloseToTrack(trackDistance float64, kind points.Kind, population int) bool {
	threshold := 300.0
	if kind == points.KindCity || population > 1000 {
		threshold = 2000.0
	}
	return trackDistance <= threshold
}

// ScanLocalMinima walks every track index and returns the indices where
// the distance from p to the track planar point is a local minimum —
// candidate anchors for a self-crossing track's multiple projections of
// the same point.
func (idx *Index) ScanLocalMinima(p geo.Planar) []int {
	n := idx.trk.Len()
	if n == 0 {
		return nil
	}
	dist := make([]float64, n)
	for i := 0; i < n; i++ {
		dist[i] = geo.Distance(idx.trk.Planar[i], p)
	}
	var minima []int
	for i := 0; i < n; i++ {
		leftOK := i == 0 || dist[i] <= dist[i-1]
		rightOK := i == n-1 || dist[i] <= dist[i+1]
		if leftOK && rightOK {
			minima = append(minima, i)
		}
	}
	return minima
}

// ProjectAllCandidates returns one projection per local minimum of the
// distance function, the candidate set a multi-projection point (GPX,
// place) should be filtered against with IsCloseToTrack and deduplicated
// against via points.InputPoint.IsFarFromEvery.
func (idx *Index) ProjectAllCandidates(p geo.Planar) []points.TrackProjection {
	minima := idx.ScanLocalMinima(p)
	out := make([]points.TrackProjection, 0, len(minima))
	for _, m := range minima {
		out = append(out, idx.projectAt(m, p))
	}
	return out
}

// UpdateProjections applies spec.md §4.2 in full to ip: for a Control or
// UserStep (kind without multi-projection support) it assigns exactly the
// single nearest projection; for every other kind it scans all local
// minima, keeps those passing IsCloseToTrack, and deduplicates by
// distance-on-track separation of at least MinSeparationMeters.
func (idx *Index) UpdateProjections(ip *points.InputPoint) {
	if ip.Kind == points.KindControl || ip.Kind == points.KindUserStep {
		ip.AddProjection(idx.ProjectPoint(ip.Planar))
		return
	}

	population, _ := ip.Population()
	for _, proj := range idx.ProjectAllCandidates(ip.Planar) {
		if !IsCloseToTrack(proj.TrackDistance, ip.Kind, population) {
			continue
		}
		if len(ip.TrackProjections) > 0 && !ip.IsFarFromEvery(proj.DistanceOnTrack, MinSeparationMeters) {
			continue
		}
		ip.AddProjection(proj)
	}
}
