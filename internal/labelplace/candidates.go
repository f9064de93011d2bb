package labelplace

import (
	"math"
	"sort"

	"github.com/fellridge/routebook/internal/geo"
	"github.com/fellridge/routebook/internal/geoindex"
)

// GeneratorKind selects which candidate generator applies to a feature,
// dispatched by Kind per spec.md §9's "avoid virtual dispatch, prefer
// inline match" design note.
type GeneratorKind int

const (
	// GeneratorCardinal is the 8-position generator for place points.
	GeneratorCardinal GeneratorKind = iota
	// GeneratorExtendedCardinal adds the vertical-stack positions used
	// for user steps.
	GeneratorExtendedCardinal
	// GeneratorHeaderOnly is the fixed-y-coordinate generator used for
	// GPX waypoints and controls.
	GeneratorHeaderOnly
)

const cardinalGap = 2.0

// GenerateCardinal emits the 8 standard positions of spec.md §4.9.1: the
// 4 diagonals plus the 4 axis-aligned positions, each 2px from center.
func GenerateCardinal(center geo.Planar, w, h float64) []Box {
	cx, cy := center.X, center.Y
	return []Box{
		// Diagonals.
		{MinX: cx + cardinalGap, MinY: cy - cardinalGap - h, MaxX: cx + cardinalGap + w, MaxY: cy - cardinalGap},             // NE
		{MinX: cx - cardinalGap - w, MinY: cy - cardinalGap - h, MaxX: cx - cardinalGap, MaxY: cy - cardinalGap},             // NW
		{MinX: cx + cardinalGap, MinY: cy + cardinalGap, MaxX: cx + cardinalGap + w, MaxY: cy + cardinalGap + h},             // SE
		{MinX: cx - cardinalGap - w, MinY: cy + cardinalGap, MaxX: cx - cardinalGap, MaxY: cy + cardinalGap + h},             // SW
		// Axis-aligned.
		{MinX: cx + cardinalGap, MinY: cy - h/2, MaxX: cx + cardinalGap + w, MaxY: cy + h/2}, // E
		{MinX: cx - cardinalGap - w, MinY: cy - h/2, MaxX: cx - cardinalGap, MaxY: cy + h/2}, // W
		{MinX: cx - w/2, MinY: cy - cardinalGap - h, MaxX: cx + w/2, MaxY: cy - cardinalGap}, // N
		{MinX: cx - w/2, MinY: cy + cardinalGap, MaxX: cx + w/2, MaxY: cy + cardinalGap + h}, // S
	}
}

// GenerateExtendedCardinal adds, to the 8 cardinal positions, the 20px
// above/below positions (clamped to the drawing area) and the 5
// stacked-below-the-top-border positions, for user steps (spec.md
// §4.9.1).
func GenerateExtendedCardinal(center geo.Planar, w, h float64, drawingArea Box) []Box {
	cx, cy := center.X, center.Y
	out := GenerateCardinal(center, w, h)

	above := Box{MinX: cx - w/2, MinY: cy - 20 - h, MaxX: cx + w/2, MaxY: cy - 20}.Clamp(drawingArea)
	below := Box{MinX: cx - w/2, MinY: cy + 20, MaxX: cx + w/2, MaxY: cy + 20 + h}.Clamp(drawingArea)
	out = append(out, above, below)

	for _, mult := range []float64{1, 3, 5, 7, 9} {
		minY := drawingArea.MinY + mult*h
		out = append(out, Box{MinX: cx - w/2, MinY: minY, MaxX: cx + w/2, MaxY: minY + h})
	}
	return out
}

// GenerateHeaderOnly emits fixed-y-coordinate candidates at the feature's
// x-center, for GPX waypoints and controls (spec.md §4.9.1).
func GenerateHeaderOnly(center geo.Planar, w, h, drawingHeight float64) []Box {
	cx := center.X
	ys := []float64{25, drawingHeight - 20}
	out := make([]Box, 0, len(ys))
	for _, y := range ys {
		out = append(out, Box{MinX: cx - w/2, MinY: y, MaxX: cx + w/2, MaxY: y + h})
	}
	return out
}

// Candidate is one scored, ordered label box for a feature (spec.md
// §4.9.1).
type Candidate struct {
	Box     Box
	DTarget float64
	DOthers float64
}

// ScoreAndOrder computes DTarget/DOthers for every raw box relative to
// target and the other feature centers, then returns them in the total
// order of spec.md §4.9.1: primary key ceil(dtarget/2) ascending,
// secondary key dothers descending.
func ScoreAndOrder(boxes []Box, target geo.Planar, others []geo.Planar) []Candidate {
	out := make([]Candidate, 0, len(boxes))
	for _, b := range boxes {
		dTarget := DistanceToBorder(b, target)
		dOthers := math.Inf(1)
		for _, o := range others {
			if d := DistanceToBorder(b, o); d < dOthers {
				dOthers = d
			}
		}
		out = append(out, Candidate{Box: b, DTarget: dTarget, DOthers: dOthers})
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := math.Ceil(out[i].DTarget/2), math.Ceil(out[j].DTarget/2)
		if pi != pj {
			return pi < pj
		}
		return out[i].DOthers > out[j].DOthers
	})
	return out
}

// FilterCandidates drops candidates whose box hits the polyline (any
// vertex of polylineIdx falls inside the box) and candidates where
// DOthers < DTarget (spec.md §4.9.1).
func FilterCandidates(cands []Candidate, polylineIdx *geoindex.PointIndex) []Candidate {
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.DOthers < c.DTarget {
			continue
		}
		if polylineIdx != nil {
			hits := polylineIdx.SearchRect(geo.Planar{X: c.Box.MinX, Y: c.Box.MinY}, geo.Planar{X: c.Box.MaxX, Y: c.Box.MaxY})
			if len(hits) > 0 {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

const (
	pruneOverlapRatio = 0.75
	pruneMaxKept      = 16
)

// PruneCandidates implements spec.md §4.9.1's candidate pruning: always
// keep the first (already best-ordered) candidate, then keep any later
// one whose area-overlap ratio with the most recently kept candidate is
// below pruneOverlapRatio, stopping after pruneMaxKept kept.
func PruneCandidates(cands []Candidate) []Candidate {
	if len(cands) == 0 {
		return nil
	}
	kept := []Candidate{cands[0]}
	last := cands[0]
	for _, c := range cands[1:] {
		if len(kept) >= pruneMaxKept {
			break
		}
		ratio := overlapRatio(c.Box, last.Box)
		if ratio < pruneOverlapRatio {
			kept = append(kept, c)
			last = c
		}
	}
	return kept
}

func overlapRatio(a, b Box) float64 {
	minArea := math.Min(a.Area(), b.Area())
	if minArea <= 0 {
		return 0
	}
	return a.OverlapArea(b) / minArea
}
