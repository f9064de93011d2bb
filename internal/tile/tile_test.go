package tile

import (
	"testing"

	"github.com/fellridge/routebook/internal/geo"
	"github.com/stretchr/testify/assert"
)

func TestForPoint(t *testing.T) {
	assert.Equal(t, Tile{X: 0, Y: 0}, ForPoint(geo.Planar{X: 0, Y: 0}))
	assert.Equal(t, Tile{X: 1, Y: 0}, ForPoint(geo.Planar{X: 10001, Y: 0}))
	assert.Equal(t, Tile{X: -1, Y: 0}, ForPoint(geo.Planar{X: -1, Y: 0}))
}

func TestChunkCoord(t *testing.T) {
	assert.Equal(t, Chunk{X: 0, Y: 0}, Tile{X: 5, Y: 9}.ChunkCoord())
	assert.Equal(t, Chunk{X: 1, Y: 0}, Tile{X: 10, Y: 0}.ChunkCoord())
	assert.Equal(t, Chunk{X: -1, Y: 0}, Tile{X: -1, Y: 0}.ChunkCoord())
}

func TestNeighbors(t *testing.T) {
	n := Tile{X: 0, Y: 0}.Neighbors()
	assert.Len(t, n, 8)
	for _, nb := range n {
		assert.NotEqual(t, Tile{X: 0, Y: 0}, nb)
	}
}

func TestSet_AddWithNeighbors(t *testing.T) {
	s := NewSet()
	s.AddWithNeighbors(Tile{X: 5, Y: 5})
	assert.Equal(t, 9, s.Len())
}

func TestSet_Chunks(t *testing.T) {
	s := NewSet()
	s.Add(Tile{X: 0, Y: 0})
	s.Add(Tile{X: 9, Y: 9})
	s.Add(Tile{X: 10, Y: 0})
	chunks := s.Chunks()
	assert.Len(t, chunks, 2)
}

func TestBoundingBox(t *testing.T) {
	min, max := Tile{X: 1, Y: 1}.BoundingBox()
	assert.Equal(t, geo.Planar{X: BBoxWidth, Y: BBoxWidth}, min)
	assert.Equal(t, geo.Planar{X: 2 * BBoxWidth, Y: 2 * BBoxWidth}, max)
}
