package labelplace

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fellridge/routebook/internal/geo"
)

func TestBoxOverlapsAndArea(t *testing.T) {
	a := NewBox(0, 0, 10, 10)
	b := NewBox(5, 5, 10, 10)
	c := NewBox(20, 20, 5, 5)

	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c))
	assert.Equal(t, 25.0, a.OverlapArea(b))
	assert.Equal(t, 100.0, a.Area())
}

func TestBoxClampShiftsWithoutResizing(t *testing.T) {
	bounds := NewBox(0, 0, 100, 100)
	b := NewBox(-5, 90, 10, 20)
	clamped := b.Clamp(bounds)
	assert.Equal(t, b.Width(), clamped.Width())
	assert.Equal(t, b.Height(), clamped.Height())
	assert.GreaterOrEqual(t, clamped.MinX, bounds.MinX)
	assert.LessOrEqual(t, clamped.MaxY, bounds.MaxY)
}

func TestDistanceToBorder(t *testing.T) {
	b := NewBox(0, 0, 10, 10)
	assert.Equal(t, 0.0, DistanceToBorder(b, geo.Planar{X: 5, Y: 5}))
	assert.Equal(t, 5.0, DistanceToBorder(b, geo.Planar{X: 15, Y: 5}))
}
