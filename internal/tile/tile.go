// Package tile implements the fixed-width spatial partitioning used to
// decide which part of the place store a track or segment needs to read.
// Grounded on the original source's tile.rs: a Tile is a 10km square in
// planar coordinates; a Chunk groups a 10x10 block of tiles (100km) as
// the persistence unit of the place store.
package tile

import (
	"math"

	"github.com/fellridge/routebook/internal/geo"
)

// BBoxWidth is the side length of one tile, in meters.
const BBoxWidth = 10000.0

// ChunkWidth is the number of tiles per chunk side.
const ChunkWidth = 10

// Tile identifies a square by its integer grid coordinate.
type Tile struct {
	X, Y int
}

// ForPoint returns the tile containing a planar point.
func ForPoint(p geo.Planar) Tile {
	return Tile{
		X: int(math.Floor(p.X / BBoxWidth)),
		Y: int(math.Floor(p.Y / BBoxWidth)),
	}
}

// Chunk is the coordinate of a ChunkWidth x ChunkWidth tile block.
type Chunk struct {
	X, Y int
}

// ChunkCoord returns the chunk containing this tile.
func (t Tile) ChunkCoord() Chunk {
	return Chunk{
		X: floorDiv(t.X, ChunkWidth),
		Y: floorDiv(t.Y, ChunkWidth),
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Neighbors returns the 8 tiles surrounding t (not including t itself).
func (t Tile) Neighbors() []Tile {
	out := make([]Tile, 0, 8)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			out = append(out, Tile{X: t.X + dx, Y: t.Y + dy})
		}
	}
	return out
}

// BoundingBox returns the planar bounding box covered by a tile.
func (t Tile) BoundingBox() (min, max geo.Planar) {
	min = geo.Planar{X: float64(t.X) * BBoxWidth, Y: float64(t.Y) * BBoxWidth}
	max = geo.Planar{X: min.X + BBoxWidth, Y: min.Y + BBoxWidth}
	return min, max
}

// Set is a deduplicated collection of tiles, built incrementally by
// AddWithNeighbors so callers never have to hand-roll a map[Tile]bool.
type Set struct {
	m map[Tile]struct{}
}

// NewSet returns an empty tile set.
func NewSet() *Set {
	return &Set{m: make(map[Tile]struct{})}
}

// Add inserts a single tile.
func (s *Set) Add(t Tile) {
	s.m[t] = struct{}{}
}

// AddWithNeighbors inserts a tile and its 8-neighborhood, matching the
// enlargement spec.md §4.6 requires for a segment's tile set.
func (s *Set) AddWithNeighbors(t Tile) {
	s.Add(t)
	for _, n := range t.Neighbors() {
		s.Add(n)
	}
}

// AddPoint is a convenience for Add(ForPoint(p)).
func (s *Set) AddPoint(p geo.Planar) {
	s.Add(ForPoint(p))
}

// AddPointWithNeighbors is a convenience for AddWithNeighbors(ForPoint(p)).
func (s *Set) AddPointWithNeighbors(p geo.Planar) {
	s.AddWithNeighbors(ForPoint(p))
}

// Tiles returns the set's members in no particular order.
func (s *Set) Tiles() []Tile {
	out := make([]Tile, 0, len(s.m))
	for t := range s.m {
		out = append(out, t)
	}
	return out
}

// Len returns the number of tiles in the set.
func (s *Set) Len() int { return len(s.m) }

// Chunks returns the deduplicated set of chunk coordinates touched by
// every tile in s, the unit the place store actually fetches.
func (s *Set) Chunks() []Chunk {
	seen := make(map[Chunk]struct{})
	out := make([]Chunk, 0)
	for t := range s.m {
		c := t.ChunkCoord()
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
