package labelplace

import (
	"sort"

	"github.com/fellridge/routebook/internal/geo"
	"github.com/fellridge/routebook/internal/geoindex"
)

// PlacedLabel is one feature's chosen label box.
type PlacedLabel struct {
	FeatureID int
	Box       Box
}

// conflictNode is one feature's mutable solver state: its remaining
// candidate list and the set of neighbor feature ids it conflicts with.
// Kept as a hand-rolled adjacency map rather than a general graph
// library: the solver repeatedly mutates both the candidate list and
// the live node set mid-traversal (removing nodes, pruning neighbor
// candidate lists), which does not map cleanly onto an immutable
// node/edge iterator API — see DESIGN.md.
type conflictNode struct {
	feature     *Feature
	candidates  []Candidate
	fallback    Candidate
	hasFallback bool
	neighbors   map[int]bool
}

// buildConflictGraph implements spec.md §4.9.3: nodes are features in
// packet, each carrying its prepared candidate list (already run through
// PrepareCandidates); a box index over every candidate finds overlapping
// pairs without an O(n^2) box/box scan for large packets, matching the
// design note that spatial indices "must be built once per inputs and
// reused".
func buildConflictGraph(packet []*Feature) map[int]*conflictNode {
	nodes := make(map[int]*conflictNode, len(packet))
	boxIdx := geoindex.NewBoxIndex()
	for i, f := range packet {
		n := &conflictNode{feature: f, candidates: append([]Candidate(nil), f.Candidates...), neighbors: map[int]bool{}}
		if len(n.candidates) > 0 {
			n.fallback = n.candidates[0]
			n.hasFallback = true
		}
		nodes[f.ID] = n
		for _, c := range f.Candidates {
			boxIdx.Insert(minPoint(c.Box), maxPoint(c.Box), i)
		}
	}
	for i, f := range packet {
		seen := map[int]bool{}
		for _, c := range f.Candidates {
			for _, j := range boxIdx.SearchIntersect(minPoint(c.Box), maxPoint(c.Box)) {
				if j == i || seen[j] {
					continue
				}
				seen[j] = true
				other := packet[j]
				nodes[f.ID].neighbors[other.ID] = true
				nodes[other.ID].neighbors[f.ID] = true
			}
		}
	}
	return nodes
}

func minPoint(b Box) geo.Planar { return geo.Planar{X: b.MinX, Y: b.MinY} }
func maxPoint(b Box) geo.Planar { return geo.Planar{X: b.MaxX, Y: b.MaxY} }

// blocksNeighbor reports whether placing box for the current node would
// leave neighbor nb with zero non-overlapping candidates ("every
// remaining candidate of the other node overlaps this one", spec.md
// §4.9.3 step 3). A neighbor that is already candidate-less doesn't
// count: it is already unplaceable, independent of this choice.
func blocksNeighbor(nb *conflictNode, box Box) bool {
	if len(nb.candidates) == 0 {
		return false
	}
	for _, c := range nb.candidates {
		if !c.Box.Overlaps(box) {
			return false
		}
	}
	return true
}

// pruneNeighborCandidates drops every candidate of nb that overlaps box,
// except the node's original fallback candidate, which is always kept
// (spec.md §4.9.3 step 4).
func pruneNeighborCandidates(nb *conflictNode, box Box) {
	if !nb.hasFallback {
		return
	}
	kept := make([]Candidate, 0, len(nb.candidates))
	fallbackKept := false
	for _, c := range nb.candidates {
		if sameCandidate(c, nb.fallback) {
			fallbackKept = true
			kept = append(kept, c)
			continue
		}
		if !c.Box.Overlaps(box) {
			kept = append(kept, c)
		}
	}
	if !fallbackKept {
		kept = append([]Candidate{nb.fallback}, kept...)
	}
	nb.candidates = kept
}

func sameCandidate(a, b Candidate) bool { return a.Box == b.Box }

// solvePacket runs the greedy solver of spec.md §4.9.3 over one priority
// packet, consuming from (and updating) the shared area budget.
func solvePacket(packet []*Feature, drawingArea Box, maxAreaRatio float64, usedArea *float64) []PlacedLabel {
	nodes := buildConflictGraph(packet)
	budget := drawingArea.Area() * maxAreaRatio

	order := make([]int, 0, len(packet))
	for _, f := range packet {
		order = append(order, f.ID)
	}
	sort.Ints(order) // stable insertion order for degree ties

	remaining := make(map[int]bool, len(order))
	for _, id := range order {
		remaining[id] = true
	}

	var placed []PlacedLabel
	for len(remaining) > 0 {
		id := pickHighestDegree(order, remaining, nodes)
		n := nodes[id]
		delete(remaining, id)

		if len(n.candidates) == 0 {
			continue
		}
		area := n.candidates[0].Box.Area()
		if *usedArea+area > budget {
			continue
		}

		var chosen *Box
		for _, c := range n.candidates {
			blocksAny := false
			for nbID := range n.neighbors {
				if !remaining[nbID] {
					continue
				}
				if blocksNeighbor(nodes[nbID], c.Box) {
					blocksAny = true
					break
				}
			}
			if !blocksAny {
				box := c.Box
				chosen = &box
				break
			}
		}
		if chosen == nil {
			continue
		}

		placed = append(placed, PlacedLabel{FeatureID: id, Box: *chosen})
		*usedArea += area
		for nbID := range n.neighbors {
			if remaining[nbID] {
				pruneNeighborCandidates(nodes[nbID], *chosen)
			}
		}
	}
	return placed
}

// pickHighestDegree returns the remaining node id with the most
// neighbors (counting only still-remaining neighbors), breaking ties by
// insertion order.
func pickHighestDegree(order []int, remaining map[int]bool, nodes map[int]*conflictNode) int {
	best := -1
	bestDeg := -1
	for _, id := range order {
		if !remaining[id] {
			continue
		}
		deg := 0
		for nbID := range nodes[id].neighbors {
			if remaining[nbID] {
				deg++
			}
		}
		if deg > bestDeg {
			bestDeg = deg
			best = id
		}
	}
	return best
}

// Place runs the full priority-packet pipeline of spec.md §4.9.2-§4.9.3
// over every feature: packets are processed in priority order, each
// packet's own placements feed back as obstacles (via PrepareCandidates)
// for every later packet, and the area budget is shared across the
// entire drawing.
func Place(features []*Feature, drawingArea Box, maxAreaRatio float64, polylineIdx *geoindex.PointIndex) []PlacedLabel {
	packets := SplitPackets(features)
	var allPlaced []PlacedLabel
	var obstacles []Box
	usedArea := 0.0

	for _, packet := range packets {
		PrepareCandidates(packet, drawingArea, polylineIdx, obstacles)
		placed := solvePacket(packet, drawingArea, maxAreaRatio, &usedArea)
		allPlaced = append(allPlaced, placed...)
		for _, pl := range placed {
			obstacles = append(obstacles, pl.Box)
		}
	}
	return allPlaced
}
