package labelplace

import (
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/fellridge/routebook/internal/geo"
)

const leaderEnlargeMeters = 2.0

// borderTouchTolerance is how far segmentCrossesBox shrinks a box before
// testing, so touching its border is not a crossing.
const borderTouchTolerance = 1e-6

// zeroHeuristic is the "admissible zero heuristic" spec.md §4.9.4
// explicitly allows, reducing A* to Dijkstra. Named rather than inlined
// so the routing intent reads at the call site.
func zeroHeuristic(x, y graph.Node) float64 { return 0 }

// RouteLeaderLine implements spec.md §4.9.4: a leader line from a
// feature's glyph center to the nearest border point of its placed label
// box, routed around every already-placed label rectangle (enlarged by
// 2px) via a visibility graph and A*. Falls back to the direct segment
// when no path exists (isolated target, or source/target wedged inside
// an obstacle).
func RouteLeaderLine(center geo.Planar, label Box, obstacles []Box) []geo.Planar {
	target := nearestBorderPoint(label, center)
	straight := []geo.Planar{center, target}

	enlarged := make([]Box, len(obstacles))
	for i, b := range obstacles {
		enlarged[i] = Enlarge(b, leaderEnlargeMeters)
	}

	nodes := []geo.Planar{center, target}
	const sourceID, targetID = 0, 1
	for _, b := range enlarged {
		if b.Contains(center) && b.Contains(target) {
			continue
		}
		for _, c := range b.Corners() {
			nodes = append(nodes, c)
		}
	}

	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := range nodes {
		g.AddNode(simple.Node(i))
	}
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if !segmentCrossesAny(nodes[i], nodes[j], enlarged) {
				w := geo.Distance(nodes[i], nodes[j])
				g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(i), simple.Node(j), w))
			}
		}
	}

	shortest, _ := path.AStar(simple.Node(sourceID), simple.Node(targetID), g, zeroHeuristic)
	route, _ := shortest.To(int64(targetID))
	if len(route) < 2 {
		return straight
	}

	out := make([]geo.Planar, len(route))
	for i, n := range route {
		out[i] = nodes[n.ID()]
	}
	return out
}

// nearestBorderPoint returns the point on b's border closest to p, used
// as the leader line's label-side endpoint.
func nearestBorderPoint(b Box, p geo.Planar) geo.Planar {
	x := clamp(p.X, b.MinX, b.MaxX)
	y := clamp(p.Y, b.MinY, b.MaxY)

	if x != b.MinX && x != b.MaxX && y != b.MinY && y != b.MaxY {
		// p projects to the interior: snap to the nearest of the four edges.
		dLeft, dRight := x-b.MinX, b.MaxX-x
		dTop, dBottom := y-b.MinY, b.MaxY-y
		min := dLeft
		edge := "left"
		if dRight < min {
			min, edge = dRight, "right"
		}
		if dTop < min {
			min, edge = dTop, "top"
		}
		if dBottom < min {
			min, edge = dBottom, "bottom"
		}
		switch edge {
		case "left":
			x = b.MinX
		case "right":
			x = b.MaxX
		case "top":
			y = b.MinY
		case "bottom":
			y = b.MaxY
		}
	}
	return geo.Planar{X: x, Y: y}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// segmentCrossesAny reports whether segment a-b crosses the border of
// any box in boxes (a clear line must not intersect an obstacle's
// rectangle, spec.md §4.9.4).
func segmentCrossesAny(a, b geo.Planar, boxes []Box) bool {
	for _, box := range boxes {
		if segmentCrossesBox(a, b, box) {
			return true
		}
	}
	return false
}

func segmentCrossesBox(a, b geo.Planar, box Box) bool {
	// Test against a hair-shrunk box so a segment that only touches the
	// border (in particular one ending on a corner, which is how the
	// visibility graph reaches its nodes) does not count as crossing.
	box = Enlarge(box, -borderTouchTolerance)
	corners := box.Corners()
	for i := 0; i < 4; i++ {
		c1 := corners[i]
		c2 := corners[(i+1)%4]
		if segmentsIntersect(a, b, c1, c2) {
			return true
		}
	}
	// A segment fully inside the box (both endpoints interior, parallel
	// to no edge) never crosses an edge; treat that as a crossing too,
	// since it still passes through the obstacle.
	midX, midY := (a.X+b.X)/2, (a.Y+b.Y)/2
	if box.Contains(a) || box.Contains(b) || box.Contains(geo.Planar{X: midX, Y: midY}) {
		return true
	}
	return false
}

func segmentsIntersect(p1, p2, p3, p4 geo.Planar) bool {
	d1 := cross(p3, p4, p1)
	d2 := cross(p3, p4, p2)
	d3 := cross(p1, p2, p3)
	d4 := cross(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

func cross(a, b, p geo.Planar) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

func onSegment(a, b, p geo.Planar) bool {
	return min(a.X, b.X) <= p.X && p.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= p.Y && p.Y <= max(a.Y, b.Y)
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
