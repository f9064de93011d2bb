// Package labelplace implements spec.md §4.9, the hardest subsystem in
// the engine: candidate label-box generation per feature, a conflict
// graph over features whose candidates overlap, a priority-ordered
// greedy solver bounded by an area budget, and (in leader.go) an
// obstacle-aware leader-line router. Grounded on the original source's
// label_placement.rs / packet.rs / candidates.rs.
package labelplace

import (
	"math"

	"github.com/fellridge/routebook/internal/geo"
)

// Box is an axis-aligned rectangle in the same pixel space as the
// feature centers it is placed relative to.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// NewBox builds a box from a corner and a size.
func NewBox(minX, minY, width, height float64) Box {
	return Box{MinX: minX, MinY: minY, MaxX: minX + width, MaxY: minY + height}
}

// Width returns the box's horizontal extent.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the box's vertical extent.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Area returns the box's area.
func (b Box) Area() float64 { return b.Width() * b.Height() }

// Overlaps reports whether b and o share any interior area.
func (b Box) Overlaps(o Box) bool {
	return b.MinX < o.MaxX && b.MaxX > o.MinX && b.MinY < o.MaxY && b.MaxY > o.MinY
}

// OverlapArea returns the area of the intersection of b and o (zero if
// they don't overlap).
func (b Box) OverlapArea(o Box) float64 {
	w := math.Min(b.MaxX, o.MaxX) - math.Max(b.MinX, o.MinX)
	h := math.Min(b.MaxY, o.MaxY) - math.Max(b.MinY, o.MinY)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Contains reports whether p lies within (or on the border of) b.
func (b Box) Contains(p geo.Planar) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Translate returns a copy of b shifted by (dx,dy).
func (b Box) Translate(dx, dy float64) Box {
	return Box{MinX: b.MinX + dx, MinY: b.MinY + dy, MaxX: b.MaxX + dx, MaxY: b.MaxY + dy}
}

// Clamp returns a copy of b shifted (without resizing) so it lies fully
// within bounds, used by the extended-cardinal generator's "clamped to
// keep the label inside the drawing area" rule.
func (b Box) Clamp(bounds Box) Box {
	w, h := b.Width(), b.Height()
	minX, maxX := b.MinX, b.MaxX
	if minX < bounds.MinX {
		minX, maxX = bounds.MinX, bounds.MinX+w
	}
	if maxX > bounds.MaxX {
		maxX, minX = bounds.MaxX, bounds.MaxX-w
	}
	minY, maxY := b.MinY, b.MaxY
	if minY < bounds.MinY {
		minY, maxY = bounds.MinY, bounds.MinY+h
	}
	if maxY > bounds.MaxY {
		maxY, minY = bounds.MaxY, bounds.MaxY-h
	}
	return Box{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// DistanceToBorder returns the Euclidean distance from p to the nearest
// point on b's border (zero if p is inside b).
func DistanceToBorder(b Box, p geo.Planar) float64 {
	dx := math.Max(b.MinX-p.X, math.Max(0, p.X-b.MaxX))
	dy := math.Max(b.MinY-p.Y, math.Max(0, p.Y-b.MaxY))
	return math.Hypot(dx, dy)
}

// Enlarge grows b by d on every side, used when inflating placed label
// rectangles into leader-line routing obstacles (spec.md §4.9.4).
func Enlarge(b Box, d float64) Box {
	return Box{MinX: b.MinX - d, MinY: b.MinY - d, MaxX: b.MaxX + d, MaxY: b.MaxY + d}
}

// Corners returns the box's four corners in a fixed order.
func (b Box) Corners() [4]geo.Planar {
	return [4]geo.Planar{
		{X: b.MinX, Y: b.MinY},
		{X: b.MaxX, Y: b.MinY},
		{X: b.MaxX, Y: b.MaxY},
		{X: b.MinX, Y: b.MaxY},
	}
}
