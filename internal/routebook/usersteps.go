package routebook

import (
	"github.com/fellridge/routebook/internal/config"
	"github.com/fellridge/routebook/internal/points"
	"github.com/fellridge/routebook/internal/track"
	"github.com/fellridge/routebook/internal/userstep"
)

// Generate runs internal/userstep's distance and elevation-gain
// generators per params.UserStep (spec.md §4.5).
func Generate(trk *track.Track, params config.Parameters) []*points.InputPoint {
	return userstep.Generate(trk, params.UserStep)
}
