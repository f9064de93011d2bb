package track

import "math"

// DouglasPeucker simplifies the (distance, elevation) profile over rng,
// returning the retained indices in ascending order (always including the
// range's first and last index). The profile view does not call it; its
// elevation-gain ticks are drawn unthinned. Grounded on the original
// source's use of `geo::SimplifyIdx` over the same (distance, elevation)
// series in track.rs.
func (t *Track) DouglasPeucker(epsilon float64, rng Range) []int {
	if rng.Len() <= 0 {
		return nil
	}
	if rng.Len() == 1 {
		return []int{rng.Start}
	}
	keep := make([]bool, rng.Len())
	keep[0] = true
	keep[rng.Len()-1] = true
	t.simplifySpan(epsilon, rng.Start, 0, rng.Len()-1, keep)

	out := make([]int, 0, rng.Len())
	for i, k := range keep {
		if k {
			out = append(out, rng.Start+i)
		}
	}
	return out
}

// simplifySpan recurses over the local [lo,hi] window of keep (indexed
// relative to rng.Start), marking any point whose perpendicular distance
// from the chord (lo,hi) exceeds epsilon, then recursing on both halves.
func (t *Track) simplifySpan(epsilon float64, base, lo, hi int, keep []bool) {
	if hi-lo < 2 {
		return
	}
	x0, y0 := t.CumulativeDistance[base+lo], t.SmoothedElevation[base+lo]
	x1, y1 := t.CumulativeDistance[base+hi], t.SmoothedElevation[base+hi]

	maxDist := -1.0
	maxIdx := -1
	for i := lo + 1; i < hi; i++ {
		d := perpendicularDistance(t.CumulativeDistance[base+i], t.SmoothedElevation[base+i], x0, y0, x1, y1)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}
	if maxIdx == -1 || maxDist <= epsilon {
		return
	}
	keep[maxIdx] = true
	t.simplifySpan(epsilon, base, lo, maxIdx, keep)
	t.simplifySpan(epsilon, base, maxIdx, hi, keep)
}

func perpendicularDistance(px, py, x0, y0, x1, y1 float64) float64 {
	dx := x1 - x0
	dy := y1 - y0
	if dx == 0 && dy == 0 {
		return math.Hypot(px-x0, py-y0)
	}
	num := math.Abs(dy*px - dx*py + x1*y0 - y1*x0)
	den := math.Hypot(dx, dy)
	return num / den
}
