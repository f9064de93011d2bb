// Package geoindex wraps github.com/dhconnelly/rtreego behind the two
// spatial queries the engine actually needs: "nearest indexed point to a
// query point" and "every indexed box whose rectangle intersects a query
// rectangle". Every spatial structure in the engine — the track's
// nearest-point index, the polyline-hit test used while filtering label
// candidates, and the conflict-graph's box index — is one of these two
// shapes, so a single R-tree wrapper serves all of them (spec.md §9
// design note: "must be built once per inputs and reused").
package geoindex

import (
	"github.com/dhconnelly/rtreego"
	"github.com/fellridge/routebook/internal/geo"
)

const pointEpsilon = 1e-6

// PointIndex answers nearest-neighbor queries over a fixed set of 2D
// points, each tagged with an arbitrary payload (a track index, a
// polyline vertex id, ...).
type PointIndex struct {
	tree *rtreego.Rtree
}

type pointLeaf struct {
	p       geo.Planar
	payload int
}

func (l *pointLeaf) Bounds() *rtreego.Rect {
	rect, _ := rtreego.NewRect(rtreego.Point{l.p.X, l.p.Y}, []float64{pointEpsilon, pointEpsilon})
	return rect
}

// NewPointIndex builds an index over points, where point i carries
// payload payloads[i] (typically i itself, or a vertex id).
func NewPointIndex(pts []geo.Planar, payloads []int) *PointIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for i, p := range pts {
		tree.Insert(&pointLeaf{p: p, payload: payloads[i]})
	}
	return &PointIndex{tree: tree}
}

// Nearest returns the payload of the indexed point closest to query, and
// false if the index is empty.
func (idx *PointIndex) Nearest(query geo.Planar) (int, bool) {
	results := idx.tree.NearestNeighbors(1, rtreego.Point{query.X, query.Y})
	if len(results) == 0 {
		return 0, false
	}
	return results[0].(*pointLeaf).payload, true
}

// SearchRect returns the payloads of every indexed point falling within
// the axis-aligned box [min,max].
func (idx *PointIndex) SearchRect(min, max geo.Planar) []int {
	lengths := []float64{max.X - min.X, max.Y - min.Y}
	if lengths[0] <= 0 {
		lengths[0] = pointEpsilon
	}
	if lengths[1] <= 0 {
		lengths[1] = pointEpsilon
	}
	rect, err := rtreego.NewRect(rtreego.Point{min.X, min.Y}, lengths)
	if err != nil {
		return nil
	}
	hits := idx.tree.SearchIntersect(rect)
	out := make([]int, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*pointLeaf).payload)
	}
	return out
}

// BoxIndex answers "which indexed boxes intersect this box" queries, used
// by the conflict graph to find candidate label boxes overlapping a given
// one without an O(n^2) scan.
type BoxIndex struct {
	tree *rtreego.Rtree
}

type boxLeaf struct {
	min, max geo.Planar
	payload  int
}

func (l *boxLeaf) Bounds() *rtreego.Rect {
	w := l.max.X - l.min.X
	h := l.max.Y - l.min.Y
	if w <= 0 {
		w = pointEpsilon
	}
	if h <= 0 {
		h = pointEpsilon
	}
	rect, _ := rtreego.NewRect(rtreego.Point{l.min.X, l.min.Y}, []float64{w, h})
	return rect
}

// NewBoxIndex builds an empty box index.
func NewBoxIndex() *BoxIndex {
	return &BoxIndex{tree: rtreego.NewTree(2, 25, 50)}
}

// Insert adds a box with the given payload.
func (idx *BoxIndex) Insert(min, max geo.Planar, payload int) {
	idx.tree.Insert(&boxLeaf{min: min, max: max, payload: payload})
}

// Delete removes a previously inserted box. Both min/max and payload must
// match the original Insert call.
func (idx *BoxIndex) Delete(min, max geo.Planar, payload int) {
	idx.tree.Delete(&boxLeaf{min: min, max: max, payload: payload})
}

// SearchIntersect returns the payloads of every box overlapping [min,max].
func (idx *BoxIndex) SearchIntersect(min, max geo.Planar) []int {
	w := max.X - min.X
	h := max.Y - min.Y
	if w <= 0 {
		w = pointEpsilon
	}
	if h <= 0 {
		h = pointEpsilon
	}
	rect, err := rtreego.NewRect(rtreego.Point{min.X, min.Y}, []float64{w, h})
	if err != nil {
		return nil
	}
	hits := idx.tree.SearchIntersect(rect)
	out := make([]int, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*boxLeaf).payload)
	}
	return out
}
