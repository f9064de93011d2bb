package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderEmptyFormatYieldsName(t *testing.T) {
	got := Render("", Context{Name: "Col du Galibier"})
	assert.Equal(t, "Col du Galibier", got)
}

func TestRenderNameToken(t *testing.T) {
	got := Render("Control: NAME", Context{Name: "K3"})
	assert.Equal(t, "Control: K3", got)
}

func TestRenderSlopeNoPadding(t *testing.T) {
	got := Render("SLOPE[4.1%]", Context{Slope: 0.101})
	assert.Equal(t, "10.1%", got)
}

func TestRenderSlopePadded(t *testing.T) {
	got := Render("SLOPE[4.1%]", Context{Slope: 0.091})
	assert.Equal(t, " 9.1%", got)
}

func TestRenderTimeToken(t *testing.T) {
	start := time.Date(2026, 7, 29, 6, 0, 0, 0, time.UTC)
	got := Render("TIME[%H:%M]", Context{
		StartTime:      start,
		SpeedMPS:       10,
		DistanceMeters: 36000, // 1 hour at 10 m/s
	})
	assert.Equal(t, "07:00", got)
}

func TestRenderUnrecognizedTokenLeftVerbatim(t *testing.T) {
	got := Render("NAME FOO", Context{Name: "P1"})
	assert.Equal(t, "P1 FOO", got)
}

func TestInterSlope(t *testing.T) {
	assert.InDelta(t, 0.1, InterSlope(0, 0, 100, 10), 1e-9)
	assert.Equal(t, 0.0, InterSlope(100, 5, 100, 20))
}
