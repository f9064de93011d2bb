// Package routebook wires the leaves-first pipeline spec.md §2 describes
// (Track -> ProjectionIndex -> AnnotatedPoints -> Segments ->
// LabelPlacement -> SvgRenderer) into a single top-level entry point, the
// shape a CLI or HTTPS front-end actually calls. Every package it imports
// is independently testable; this package only sequences them.
package routebook

import (
	"context"

	"github.com/google/uuid"

	"github.com/fellridge/routebook/internal/config"
	"github.com/fellridge/routebook/internal/controls"
	"github.com/fellridge/routebook/internal/mapview"
	"github.com/fellridge/routebook/internal/points"
	"github.com/fellridge/routebook/internal/profileview"
	"github.com/fellridge/routebook/internal/projection"
	"github.com/fellridge/routebook/internal/segment"
	"github.com/fellridge/routebook/internal/tile"
	"github.com/fellridge/routebook/internal/track"
)

// PlaceSource supplies place points for a tile set (spec.md §4.3's place
// store). *placestore.Store satisfies this directly; tests can supply a
// func-backed fake.
type PlaceSource interface {
	Fetch(ctx context.Context, tiles *tile.Set) []*points.InputPoint
}

// PlaceSourceFunc adapts a plain function to PlaceSource.
type PlaceSourceFunc func(ctx context.Context, tiles *tile.Set) []*points.InputPoint

func (f PlaceSourceFunc) Fetch(ctx context.Context, tiles *tile.Set) []*points.InputPoint {
	return f(ctx, tiles)
}

// Request bundles everything one render call needs: the raw track input,
// the projector to build it against, any GPX waypoints (kind
// points.KindGPX, not yet projected), a place source, and the active
// parameter bundle. Params is passed by value and never mutated (spec.md
// §5).
type Request struct {
	Segments     []track.NamedSegment
	Projector    track.Projector
	GPXWaypoints []*points.InputPoint
	Places       PlaceSource
	Params       config.Parameters
}

// SegmentResult is one segment's rendered output.
type SegmentResult struct {
	Segment    *segment.Segment
	ProfileSVG string
	MapSVG     string
}

// Result is the full output of one Build call: a request-scoped id (for
// log correlation across the embedding layer), the constructed track, the
// derived annotation points, and one SegmentResult per sliced segment.
type Result struct {
	ID           uuid.UUID
	Track        *track.Track
	Controls     []*points.InputPoint
	UserSteps    []*points.InputPoint
	AllPoints    []*points.InputPoint
	Segments     []SegmentResult
}

// Build runs the full pipeline of spec.md §2 over req: constructs the
// track, projects every GPX waypoint and place point onto it, derives
// controls (§4.4), generates user steps (§4.5), slices segments (§4.6),
// and renders each segment's profile and map SVG (§4.7-§4.9).
//
// The only suspension point is req.Places.Fetch (spec.md §5); every other
// step is synchronous.
func Build(ctx context.Context, req Request) (*Result, error) {
	trk, err := track.New(req.Segments, req.Projector, req.Params.ElevationSmoothWindowMeters)
	if err != nil {
		return nil, err
	}

	idx := projection.New(trk)
	for _, wp := range req.GPXWaypoints {
		idx.UpdateProjections(wp)
	}

	var places []*points.InputPoint
	if req.Places != nil {
		places = req.Places.Fetch(ctx, trk.TileSet())
		for _, p := range places {
			idx.UpdateProjections(p)
		}
	}

	derivedControls := controls.Derive(trk, idx, req.GPXWaypoints, places)
	steps := Generate(trk, req.Params)

	allPoints := make([]*points.InputPoint, 0, len(req.GPXWaypoints)+len(places)+len(derivedControls)+len(steps))
	allPoints = append(allPoints, req.GPXWaypoints...)
	allPoints = append(allPoints, places...)
	allPoints = append(allPoints, derivedControls...)
	allPoints = append(allPoints, steps...)

	segs := segment.Build(trk, req.Params)
	results := make([]SegmentResult, len(segs))
	for i, seg := range segs {
		results[i] = SegmentResult{
			Segment:    seg,
			ProfileSVG: profileview.Render(seg, allPoints, req.Params),
			MapSVG:     mapview.Render(seg, allPoints, req.Params),
		}
	}

	return &Result{
		ID:        uuid.New(),
		Track:     trk,
		Controls:  derivedControls,
		UserSteps: steps,
		AllPoints: allPoints,
		Segments:  results,
	}, nil
}
