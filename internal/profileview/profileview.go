// Package profileview implements spec.md §4.7: rendering one segment's
// elevation profile to an SVG document — axis tick selection, the
// polyline, per-interval indication glyphs, and feature glyphs/labels
// routed through internal/labelplace. Grounded on the original source's
// profile.rs and the teacher repo's gridplotter.go for the
// three-coordinate-group layout idiom.
package profileview

import (
	"fmt"
	"math"

	"github.com/fellridge/routebook/internal/config"
	"github.com/fellridge/routebook/internal/format"
	"github.com/fellridge/routebook/internal/geo"
	"github.com/fellridge/routebook/internal/geoindex"
	"github.com/fellridge/routebook/internal/labelplace"
	"github.com/fellridge/routebook/internal/points"
	"github.com/fellridge/routebook/internal/segment"
	"github.com/fellridge/routebook/internal/svgutil"
	"github.com/fellridge/routebook/internal/track"
)

var xTickStepsKM = []float64{1, 2, 10, 20, 50, 100, 250}
var yTickStepsM = []float64{10, 20, 50, 100, 200, 250, 500, 1000}

const (
	leftMargin   = 60.0
	bottomMargin = 40.0
	topMargin    = 20.0
	rightMargin  = 20.0
	minYSpan     = 750.0
)

// axes is the snapped drawing-area bbox of spec.md §4.7.
type axes struct {
	minX, maxX float64 // distance meters
	minY, maxY float64 // elevation meters
	xStep      float64 // meters
	yStep      float64 // meters
}

func computeAxes(rangeStart, rangeEnd, minElev, maxElev float64, opts config.ProfileOptions, drawingW, drawingH float64) axes {
	grid := opts.MinXRangeKM * 1000
	if grid <= 0 {
		grid = 20_000
	}
	minX := math.Floor(rangeStart/grid) * grid
	maxX := math.Ceil(rangeEnd/grid) * grid
	if maxX-minX < grid {
		maxX = minX + grid
	}

	yStep, minY, maxY := chooseYAxis(minElev, maxElev, drawingH)
	xStep := chooseXStep(maxX-minX, drawingW)

	return axes{minX: minX, maxX: maxX, minY: minY, maxY: maxY, xStep: xStep, yStep: yStep}
}

func chooseXStep(rangeMeters, drawingW float64) float64 {
	for _, km := range xTickStepsKM {
		stepM := km * 1000
		numSteps := math.Max(1, rangeMeters/stepM)
		if drawingW/numSteps >= 50 {
			return stepM
		}
	}
	return xTickStepsKM[len(xTickStepsKM)-1] * 1000
}

func chooseYAxis(minElev, maxElev, drawingH float64) (step, lo, hi float64) {
	for _, c := range yTickStepsM {
		l, h := snapElevationAxis(minElev, maxElev, c)
		numSteps := math.Max(1, (h-l)/c)
		if drawingH/numSteps >= 20 {
			return c, l, h
		}
	}
	c := yTickStepsM[len(yTickStepsM)-1]
	l, h := snapElevationAxis(minElev, maxElev, c)
	return c, l, h
}

func snapElevationAxis(minElev, maxElev, step float64) (lo, hi float64) {
	lo = math.Floor(minElev/step) * step
	hi = math.Ceil(maxElev/step) * step
	for hi-lo < minYSpan {
		if lo-step >= 0 {
			lo -= step
		}
		hi += step
	}
	if lo < 0 {
		lo = 0
	}
	return lo, hi
}

// Render produces the profile-view SVG for seg, given the full set of
// candidate feature points (controls, user steps, GPX waypoints, place
// points already projected onto the track) and the active parameters.
func Render(seg *segment.Segment, allPoints []*points.InputPoint, params config.Parameters) string {
	rng := seg.Range()
	trk := seg.Track
	opts := params.Profile

	minElev, maxElev := trk.Elevation(rng.Start), trk.Elevation(rng.Start)
	for i := rng.Start; i < rng.End; i++ {
		e := trk.Elevation(i)
		if e < minElev {
			minElev = e
		}
		if e > maxElev {
			maxElev = e
		}
	}

	drawingW := opts.PixelSize.Width - leftMargin - rightMargin
	drawingH := opts.PixelSize.Height - topMargin - bottomMargin
	ax := computeAxes(seg.StartDistance, seg.EndDistance, minElev, maxElev, opts, drawingW, drawingH)

	toPixel := func(distance, elevation float64) geo.Planar {
		x := (distance - ax.minX) / (ax.maxX - ax.minX) * drawingW
		y := drawingH - (elevation-ax.minY)/(ax.maxY-ax.minY)*drawingH
		return geo.Planar{X: x, Y: y}
	}

	polyPts := make([]svgutil.Point, 0, rng.Len())
	polyPlanar := make([]geo.Planar, 0, rng.Len())
	for i := rng.Start; i < rng.End; i++ {
		p := toPixel(trk.Distance(i), trk.Elevation(i))
		polyPts = append(polyPts, svgutil.Point{X: p.X, Y: p.Y})
		polyPlanar = append(polyPlanar, p)
	}
	polylineIdx := geoindex.NewPointIndex(polyPlanar, sequentialPayload(len(polyPlanar)))

	featureList := seg.FilterPoints(allPoints)
	features := buildFeatures(featureList, trk, params, toPixel)

	drawingArea := labelplace.NewBox(0, 0, drawingW, drawingH)
	placed := labelplace.Place(features, drawingArea, opts.MaxAreaRatio, polylineIdx)
	placedByID := make(map[int]labelplace.Box, len(placed))
	for _, pl := range placed {
		placedByID[pl.FeatureID] = pl.Box
	}

	var obstacleBoxes []labelplace.Box
	for _, pl := range placed {
		obstacleBoxes = append(obstacleBoxes, pl.Box)
	}

	drawingGroup := svgutil.New("g")
	drawingGroup.Append(svgutil.Polyline(polyPts, svgutil.A("class", "profile-line"), svgutil.A("fill", "none"), svgutil.A("stroke", "#2b5"), svgutil.F("stroke-width", 2)))
	drawingGroup.Append(xGridLines(ax, drawingW, drawingH)...)
	drawingGroup.Append(indicationGlyphs(seg, ax, opts, toPixel, drawingH)...)

	for _, f := range features {
		drawingGroup.Append(featureGlyph(f))
		if box, ok := placedByID[f.ID]; ok {
			drawingGroup.Append(labelElement(f, box))
			leaderObstacles := obstaclesExcluding(obstacleBoxes, box)
			route := labelplace.RouteLeaderLine(f.Center, box, leaderObstacles)
			drawingGroup.Append(leaderLineElement(route))
		}
	}

	leftAxisGroup := svgutil.Group(0, topMargin, nil, yAxisTicks(ax, drawingH)...)
	bottomAxisGroup := svgutil.Group(leftMargin, topMargin+drawingH, nil, xAxisTicks(ax, drawingW)...)
	drawingAreaAttrs := []svgutil.Attr{svgutil.A("shape-rendering", "geometricPrecision"), svgutil.A("font-size", "11")}
	drawingAreaGroup := svgutil.Group(leftMargin, topMargin, drawingAreaAttrs, drawingGroup)

	root := svgutil.NewSVGDocument(opts.PixelSize.Width, opts.PixelSize.Height, 0, 0, opts.PixelSize.Width, opts.PixelSize.Height)
	root.Append(leftAxisGroup, bottomAxisGroup, drawingAreaGroup)
	return svgutil.Render(root)
}

func sequentialPayload(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func obstaclesExcluding(all []labelplace.Box, exclude labelplace.Box) []labelplace.Box {
	out := make([]labelplace.Box, 0, len(all))
	for _, b := range all {
		if b != exclude {
			out = append(out, b)
		}
	}
	return out
}

func buildFeatures(pts []*points.InputPoint, trk *track.Track, params config.Parameters, toPixel func(float64, float64) geo.Planar) []*labelplace.Feature {
	out := make([]*labelplace.Feature, 0, len(pts))
	for i, p := range pts {
		proj, ok := p.FirstProjection()
		if !ok {
			continue
		}
		center := toPixel(proj.DistanceOnTrack, proj.Elevation)
		text := labelText(p, proj, trk, params)
		w, h := estimateLabelSize(text)
		out = append(out, &labelplace.Feature{
			ID:            i,
			Point:         p,
			Center:        center,
			LabelWidth:    w,
			LabelHeight:   h,
			Name:          text,
			TrackDistance: proj.TrackDistance,
		})
	}
	return out
}

func labelText(p *points.InputPoint, proj points.TrackProjection, trk *track.Track, params config.Parameters) string {
	name, _ := p.Name()
	switch p.Kind {
	case points.KindControl:
		return format.Render(params.ControlNameFormat, format.Context{
			Name: name, DistanceMeters: proj.DistanceOnTrack, StartTime: params.StartTime, SpeedMPS: params.SpeedMPS,
			Slope: trk.SlopeAt(proj.IntegerIndex),
		})
	case points.KindUserStep:
		return format.Render(params.UserStepNameFormat, format.Context{
			Name: name, DistanceMeters: proj.DistanceOnTrack, StartTime: params.StartTime, SpeedMPS: params.SpeedMPS,
			Slope: trk.SlopeAt(proj.IntegerIndex),
		})
	default:
		return name
	}
}

// estimateLabelSize approximates rendered text dimensions without a font
// metrics library: a fixed-width assumption is close enough for label
// placement's purposes (it only needs a sized box, not pixel-perfect
// typography).
func estimateLabelSize(text string) (w, h float64) {
	const charWidth = 6.5
	const lineHeight = 14.0
	return math.Max(20, float64(len(text))*charWidth+8), lineHeight
}

func featureGlyph(f *labelplace.Feature) *svgutil.Element {
	return svgutil.Circle(f.Center.X, f.Center.Y, glyphRadius(f.Point.Kind), svgutil.A("class", "feature-glyph-"+f.Point.Kind.String()))
}

func glyphRadius(k points.Kind) float64 {
	if k == points.KindControl || k == points.KindGPX {
		return 4
	}
	return 3
}

func labelElement(f *labelplace.Feature, box labelplace.Box) *svgutil.Element {
	g := svgutil.New("g", svgutil.A("class", "label-"+f.Point.Kind.String()))
	g.Append(svgutil.Rect(box.MinX, box.MinY, box.Width(), box.Height(), svgutil.A("fill", "white"), svgutil.A("fill-opacity", "0.8")))
	g.Append(svgutil.Text(box.MinX+2, box.MaxY-3, f.Name, svgutil.A("font-size", "11")))
	return g
}

func leaderLineElement(route []geo.Planar) *svgutil.Element {
	pts := make([]svgutil.Point, len(route))
	for i, p := range route {
		pts[i] = svgutil.Point{X: p.X, Y: p.Y}
	}
	return svgutil.Polyline(pts, svgutil.A("class", "leader-line"), svgutil.A("fill", "none"), svgutil.A("stroke", "#333"), svgutil.F("stroke-width", 0.75))
}

func xGridLines(ax axes, drawingW, drawingH float64) []*svgutil.Element {
	var out []*svgutil.Element
	n := 0
	for x := ax.minX; x <= ax.maxX+1e-6; x += ax.xStep {
		px := (x - ax.minX) / (ax.maxX - ax.minX) * drawingW
		attrs := []svgutil.Attr{svgutil.A("stroke", "#ccc"), svgutil.F("stroke-width", 1)}
		if n%2 == 1 {
			attrs = append(attrs, svgutil.A("stroke-dasharray", "4,3"))
		}
		out = append(out, svgutil.Line(px, 0, px, drawingH, attrs...))
		n++
	}
	return out
}

func yAxisTicks(ax axes, drawingH float64) []*svgutil.Element {
	var out []*svgutil.Element
	for y := ax.minY; y <= ax.maxY+1e-6; y += ax.yStep {
		py := drawingH - (y-ax.minY)/(ax.maxY-ax.minY)*drawingH
		out = append(out, svgutil.Text(0, py, fmt.Sprintf("%.0fm", y), svgutil.A("font-size", "11"), svgutil.A("text-anchor", "end")))
	}
	return out
}

func xAxisTicks(ax axes, drawingW float64) []*svgutil.Element {
	var out []*svgutil.Element
	for x := ax.minX; x <= ax.maxX+1e-6; x += ax.xStep {
		px := (x - ax.minX) / (ax.maxX - ax.minX) * drawingW
		out = append(out, svgutil.Text(px, 12, fmt.Sprintf("%.0fkm", x/1000), svgutil.A("font-size", "11"), svgutil.A("text-anchor", "middle")))
	}
	return out
}

// indicationGlyphs draws the per-X-tick-interval indicator of spec.md
// §4.7: none, gain ticks, or the numeric slope.
func indicationGlyphs(seg *segment.Segment, ax axes, opts config.ProfileOptions, toPixel func(float64, float64) geo.Planar, drawingH float64) []*svgutil.Element {
	if opts.Indicator == config.IndicatorNone {
		return nil
	}
	trk := seg.Track
	var out []*svgutil.Element
	for x := ax.minX; x < ax.maxX-1e-6; x += ax.xStep {
		x0, x1 := x, x+ax.xStep
		i0 := clampIndex(trk.IndexAfter(x0), trk.Len())
		i1 := clampIndex(trk.IndexAfter(x1), trk.Len())
		if i1 <= i0 {
			continue
		}
		gainDelta := trk.ElevationGainOnRange(i0, i1)
		midX := toPixel((x0+x1)/2, 0).X

		switch opts.Indicator {
		case config.IndicatorGainTicks:
			width := gainTickWidth(gainDelta)
			if width > 0 {
				out = append(out, svgutil.Line(midX, drawingH-10, midX, drawingH, svgutil.F("stroke-width", width), svgutil.A("stroke", "#940")))
			}
		case config.IndicatorSlope:
			slope := format.InterSlope(trk.Distance(i0), trk.Elevation(i0), trk.Distance(i1), trk.Elevation(i1))
			out = append(out, svgutil.Text(midX, drawingH-4, fmt.Sprintf("%.1f%%", 100*slope), svgutil.A("font-size", "9"), svgutil.A("text-anchor", "middle")))
		}
	}
	return out
}

func clampIndex(i, length int) int {
	if i >= length {
		return length - 1
	}
	return i
}

func gainTickWidth(gainDelta float64) float64 {
	switch {
	case gainDelta >= 1000:
		return 6
	case gainDelta >= 500:
		return 3
	case gainDelta >= 50:
		return 1
	default:
		return 0
	}
}
