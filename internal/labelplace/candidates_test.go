package labelplace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fellridge/routebook/internal/geo"
	"github.com/fellridge/routebook/internal/geoindex"
)

func TestGenerateCardinalProducesEightDistinctBoxes(t *testing.T) {
	boxes := GenerateCardinal(geo.Planar{X: 100, Y: 100}, 40, 10)
	require.Len(t, boxes, 8)
	for _, b := range boxes {
		assert.False(t, b.Contains(geo.Planar{X: 100, Y: 100}), "candidate box must not cover the glyph center")
	}
}

func TestGenerateHeaderOnlyUsesFixedYPositions(t *testing.T) {
	boxes := GenerateHeaderOnly(geo.Planar{X: 50, Y: 300}, 30, 12, 500)
	require.Len(t, boxes, 2)
	assert.Equal(t, 25.0, boxes[0].MinY)
	assert.Equal(t, 480.0, boxes[1].MinY)
}

func TestScoreAndOrderRanksByDTargetThenDOthers(t *testing.T) {
	boxes := GenerateCardinal(geo.Planar{X: 0, Y: 0}, 20, 10)
	others := []geo.Planar{{X: 1000, Y: 1000}}
	cands := ScoreAndOrder(boxes, geo.Planar{X: 0, Y: 0}, others)
	require.Len(t, cands, len(boxes))
	for i := 1; i < len(cands); i++ {
		pi := cands[i-1].DTarget
		pj := cands[i].DTarget
		assert.LessOrEqual(t, pi, pj+1e-9)
	}
}

func TestFilterCandidatesDropsPolylineHits(t *testing.T) {
	boxes := []Box{NewBox(0, 0, 10, 10), NewBox(100, 100, 10, 10)}
	cands := ScoreAndOrder(boxes, geo.Planar{X: 5, Y: 5}, nil)
	idx := geoindex.NewPointIndex([]geo.Planar{{X: 5, Y: 5}}, []int{0})

	filtered := FilterCandidates(cands, idx)
	for _, c := range filtered {
		assert.False(t, c.Box.Contains(geo.Planar{X: 5, Y: 5}))
	}
}

func TestPruneCandidatesKeepsFirstAndDropsHeavyOverlap(t *testing.T) {
	cands := []Candidate{
		{Box: NewBox(0, 0, 10, 10)},
		{Box: NewBox(1, 1, 10, 10)},   // heavy overlap with the first
		{Box: NewBox(500, 500, 10, 10)}, // no overlap
	}
	kept := PruneCandidates(cands)
	require.GreaterOrEqual(t, len(kept), 2)
	assert.Equal(t, cands[0].Box, kept[0].Box)
}
