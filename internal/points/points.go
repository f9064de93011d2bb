// Package points implements the InputPoint / TrackProjection model of
// spec.md §3: a single tagged record type for every point the engine
// places on a map — GPX waypoints, places from the external store,
// automatically derived controls, and generated user steps — each
// carrying zero or more projections onto the track.
package points

import (
	"sort"
	"strconv"

	"github.com/fellridge/routebook/internal/geo"
)

// Kind tags what an InputPoint represents. Candidate generation and the
// control-derivation scoring function dispatch on it directly (spec.md
// §9 design note: "avoid virtual dispatch across hot loops; prefer
// inline match").
type Kind int

const (
	KindGPX Kind = iota
	KindCity
	KindTown
	KindVillage
	KindHamlet
	KindMountainPass
	KindPeak
	KindControl
	KindUserStep
)

func (k Kind) String() string {
	switch k {
	case KindGPX:
		return "gpx"
	case KindCity:
		return "city"
	case KindTown:
		return "town"
	case KindVillage:
		return "village"
	case KindHamlet:
		return "hamlet"
	case KindMountainPass:
		return "mountain_pass"
	case KindPeak:
		return "peak"
	case KindControl:
		return "control"
	case KindUserStep:
		return "user_step"
	default:
		return "unknown"
	}
}

// IsPlace reports whether the kind is one of the place-store sub-kinds.
func (k Kind) IsPlace() bool {
	switch k {
	case KindCity, KindTown, KindVillage, KindHamlet, KindMountainPass, KindPeak:
		return true
	default:
		return false
	}
}

// Tags carries free-form key/value metadata; name, ele, population, and
// description are the recognized keys (spec.md §3).
type Tags map[string]string

// TrackProjection is a single projection of an InputPoint onto the track
// polyline (spec.md §3). The ordered set of projections on one InputPoint
// is sorted by FloatingIndex.
type TrackProjection struct {
	IntegerIndex    int
	FloatingIndex   float64
	Planar          geo.Planar
	Elevation       float64
	TrackDistance   float64
	DistanceOnTrack float64
}

// InputPoint is the unified tagged record of spec.md §3.
type InputPoint struct {
	WGS84               geo.WGS84
	Planar              geo.Planar
	Kind                Kind
	Tags                Tags
	TrackProjections    []TrackProjection
	LabelPlacementOrder int
}

// New builds a bare InputPoint with no projections yet.
func New(wgs84 geo.WGS84, planar geo.Planar, kind Kind) *InputPoint {
	return &InputPoint{
		WGS84:               wgs84,
		Planar:              planar,
		Kind:                kind,
		Tags:                make(Tags),
		LabelPlacementOrder: int(^uint(0) >> 1), // max int: unplaced until a placement packet claims it
	}
}

// Name returns the "name" tag if present.
func (p *InputPoint) Name() (string, bool) {
	v, ok := p.Tags["name"]
	return v, ok
}

// Description returns the "description" tag, or "" if absent.
func (p *InputPoint) Description() string {
	return p.Tags["description"]
}

// Population returns the "population" tag parsed as an integer.
func (p *InputPoint) Population() (int, bool) {
	v, ok := p.Tags["population"]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Elevation returns the "ele" tag parsed as a float, falling back to the
// WGS84 elevation if the tag is absent.
func (p *InputPoint) Elevation() float64 {
	if v, ok := p.Tags["ele"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return p.WGS84.Elevation
}

// FirstProjection returns the projection with the lowest FloatingIndex,
// the one used wherever exactly-one-projection is required (UserStep,
// Control).
func (p *InputPoint) FirstProjection() (TrackProjection, bool) {
	if len(p.TrackProjections) == 0 {
		return TrackProjection{}, false
	}
	return p.TrackProjections[0], true
}

// AddProjection inserts a projection, keeping TrackProjections sorted by
// FloatingIndex. It is the caller's responsibility (internal/projection)
// to apply the is_close_to_track and 10m-dedup filtering from spec.md
// §4.2 before calling this.
func (p *InputPoint) AddProjection(tp TrackProjection) {
	p.TrackProjections = append(p.TrackProjections, tp)
	sort.Slice(p.TrackProjections, func(i, j int) bool {
		return p.TrackProjections[i].FloatingIndex < p.TrackProjections[j].FloatingIndex
	})
}

// IsFarFromEvery reports whether distanceOnTrack differs from every
// existing projection's DistanceOnTrack by at least minSeparation —
// the deduplication rule of spec.md §4.2.
func (p *InputPoint) IsFarFromEvery(distanceOnTrack, minSeparation float64) bool {
	for _, tp := range p.TrackProjections {
		if abs(tp.DistanceOnTrack-distanceOnTrack) < minSeparation {
			return false
		}
	}
	return true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
