package labelplace

import (
	"strings"

	"github.com/fellridge/routebook/internal/geo"
	"github.com/fellridge/routebook/internal/geoindex"
	"github.com/fellridge/routebook/internal/points"
	"github.com/fellridge/routebook/internal/projection"
)

// Feature is one point to be labeled: a glyph center, a label box size,
// the rendered text, and the track_distance of whichever projection put
// it on this segment (used for the near/far packet split of spec.md
// §4.9.2).
type Feature struct {
	ID            int
	Point         *points.InputPoint
	Center        geo.Planar
	LabelWidth    float64
	LabelHeight   float64
	Name          string
	TrackDistance float64

	// Candidates is populated by the solver pipeline; callers should not
	// set it directly.
	Candidates []Candidate
}

// generatorFor dispatches a feature's candidate generator by kind.
func generatorFor(kind points.Kind) GeneratorKind {
	switch kind {
	case points.KindGPX, points.KindControl:
		return GeneratorHeaderOnly
	case points.KindUserStep:
		return GeneratorExtendedCardinal
	default:
		return GeneratorCardinal
	}
}

// rawCandidates generates the unfiltered candidate box list for f.
func rawCandidates(f *Feature, drawingArea Box) []Box {
	switch generatorFor(f.Point.Kind) {
	case GeneratorHeaderOnly:
		return GenerateHeaderOnly(f.Center, f.LabelWidth, f.LabelHeight, drawingArea.Height())
	case GeneratorExtendedCardinal:
		return GenerateExtendedCardinal(f.Center, f.LabelWidth, f.LabelHeight, drawingArea)
	default:
		return GenerateCardinal(f.Center, f.LabelWidth, f.LabelHeight)
	}
}

// PrepareCandidates runs the full §4.9.1 pipeline for every feature in
// features: generate, score/order against every other feature's center,
// filter against the polyline and the dothers<dtarget rule, and prune.
// obstacles additionally removes any candidate overlapping an
// already-placed label box from an earlier priority packet (spec.md
// §4.9.2: "each packet's placements become obstacles for later packets").
func PrepareCandidates(features []*Feature, drawingArea Box, polylineIdx *geoindex.PointIndex, obstacles []Box) {
	centers := make([]geo.Planar, len(features))
	for i, f := range features {
		centers[i] = f.Center
	}
	for i, f := range features {
		others := make([]geo.Planar, 0, len(centers)-1)
		for j, c := range centers {
			if j != i {
				others = append(others, c)
			}
		}
		raw := rawCandidates(f, drawingArea)
		scored := ScoreAndOrder(raw, f.Center, others)
		filtered := FilterCandidates(scored, polylineIdx)
		filtered = dropOverlappingObstacles(filtered, obstacles)
		f.Candidates = PruneCandidates(filtered)
	}
}

func dropOverlappingObstacles(cands []Candidate, obstacles []Box) []Candidate {
	if len(obstacles) == 0 {
		return cands
	}
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		blocked := false
		for _, o := range obstacles {
			if c.Box.Overlaps(o) {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, c)
		}
	}
	return out
}

// SplitPackets groups features into the priority packets of spec.md
// §4.9.2, in processing order: GPX/Control, major user steps (name ends
// in "0"), remaining user steps, near place points, far place points.
func SplitPackets(features []*Feature) [][]*Feature {
	var headers, major, minor, near, far []*Feature
	for _, f := range features {
		switch f.Point.Kind {
		case points.KindGPX, points.KindControl:
			headers = append(headers, f)
		case points.KindUserStep:
			if strings.HasSuffix(f.Name, "0") {
				major = append(major, f)
			} else {
				minor = append(minor, f)
			}
		default:
			population, _ := f.Point.Population()
			if projection.IsCloseToTrack(f.TrackDistance, f.Point.Kind, population) {
				near = append(near, f)
			} else {
				far = append(far, f)
			}
		}
	}
	var packets [][]*Feature
	for _, p := range [][]*Feature{headers, major, minor, near, far} {
		if len(p) > 0 {
			packets = append(packets, p)
		}
	}
	return packets
}
