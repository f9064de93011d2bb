// Package mapview implements spec.md §4.8: a schematic planar view of one
// segment's track, UTM-projected for aspect fidelity, expanded to the
// requested pixel aspect ratio with a 2km margin, and rendered through
// the same labelplace pipeline as profileview. Grounded on the original
// source's map_view.rs.
package mapview

import (
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

const marginMeters = 2_000.0

// Render produces the map-view SVG for seg: a UTM-projected, aspect-fixed
// schematic of the segment's planar track plus its in-range features.
func Render(seg *segment.Segment, allPoints []*points.InputPoint, params config.Parameters) string {
	rng := seg.Range()
	trk := seg.Track
	opts := params.Map

	utm := geo.NewUTM(trk.WGS84[rng.Start])
	planar := make([]geo.Planar, 0, rng.Len())
	for i := rng.Start; i < rng.End; i++ {
		planar = append(planar, utm.Project(trk.WGS84[i]))
	}

	bbox := planarBBox(planar, marginMeters)
	bbox = expandToAspect(bbox, opts.PixelSize.Width, opts.PixelSize.Height)

	toPixel := func(p geo.Planar) geo.Planar {
		x := (p.X - bbox.MinX) / (bbox.MaxX - bbox.MinX) * opts.PixelSize.Width
		y := opts.PixelSize.Height - (p.Y-bbox.MinY)/(bbox.MaxY-bbox.MinY)*opts.PixelSize.Height
		return geo.Planar{X: x, Y: y}
	}

	polyPts := make([]svgutil.Point, len(planar))
	polyPlanar := make([]geo.Planar, len(planar))
	for i, p := range planar {
		px := toPixel(p)
		polyPts[i] = svgutil.Point{X: px.X, Y: px.Y}
		polyPlanar[i] = px
	}
	polylineIdx := geoindex.NewPointIndex(polyPlanar, sequentialPayload(len(polyPlanar)))

	featureList := seg.FilterPoints(allPoints)
	features := make([]*labelplace.Feature, 0, len(featureList))
	for i, p := range featureList {
		proj, ok := p.FirstProjection()
		if !ok {
			continue
		}
		center := toPixel(utm.Project(p.WGS84))
		text := labelText(p, proj, trk, params)
		w, h := estimateLabelSize(text)
		features = append(features, &labelplace.Feature{
			ID: i, Point: p, Center: center, LabelWidth: w, LabelHeight: h, Name: text, TrackDistance: proj.TrackDistance,
		})
	}

	drawingArea := labelplace.NewBox(0, 0, opts.PixelSize.Width, opts.PixelSize.Height)
	placed := labelplace.Place(features, drawingArea, opts.MaxAreaRatio, polylineIdx)
	placedByID := make(map[int]labelplace.Box, len(placed))
	var obstacles []labelplace.Box
	for _, pl := range placed {
		placedByID[pl.FeatureID] = pl.Box
		obstacles = append(obstacles, pl.Box)
	}

	body := svgutil.New("g")
	body.Append(svgutil.Polyline(polyPts, svgutil.A("class", "map-line"), svgutil.A("fill", "none"), svgutil.A("stroke", "#24a"), svgutil.F("stroke-width", 2)))
	for _, f := range features {
		body.Append(svgutil.Circle(f.Center.X, f.Center.Y, 3, svgutil.A("class", "map-glyph-"+f.Point.Kind.String())))
		if box, ok := placedByID[f.ID]; ok {
			g := svgutil.New("g", svgutil.A("class", "map-label"))
			g.Append(svgutil.Rect(box.MinX, box.MinY, box.Width(), box.Height(), svgutil.A("fill", "white"), svgutil.A("fill-opacity", "0.8")))
			g.Append(svgutil.Text(box.MinX+2, box.MaxY-3, f.Name, svgutil.A("font-size", "11")))
			body.Append(g)

			route := labelplace.RouteLeaderLine(f.Center, box, obstaclesExcluding(obstacles, box))
			pts := make([]svgutil.Point, len(route))
			for i, p := range route {
				pts[i] = svgutil.Point{X: p.X, Y: p.Y}
			}
			body.Append(svgutil.Polyline(pts, svgutil.A("class", "leader-line"), svgutil.A("fill", "none"), svgutil.A("stroke", "#333"), svgutil.F("stroke-width", 0.75)))
		}
	}

	root := svgutil.NewSVGDocument(opts.PixelSize.Width, opts.PixelSize.Height, 0, 0, opts.PixelSize.Width, opts.PixelSize.Height)
	root.Append(body)
	return svgutil.Render(root)
}

// bbox is an axis-aligned planar bounding box.
type bbox struct{ MinX, MinY, MaxX, MaxY float64 }

func planarBBox(pts []geo.Planar, margin float64) bbox {
	b := bbox{MinX: pts[0].X, MaxX: pts[0].X, MinY: pts[0].Y, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		if p.X < b.MinX {
			b.MinX = p.X
		}
		if p.X > b.MaxX {
			b.MaxX = p.X
		}
		if p.Y < b.MinY {
			b.MinY = p.Y
		}
		if p.Y > b.MaxY {
			b.MaxY = p.Y
		}
	}
	b.MinX -= margin
	b.MinY -= margin
	b.MaxX += margin
	b.MaxY += margin
	return b
}

// expandToAspect grows b on its shorter axis so its aspect ratio matches
// pixelW/pixelH, keeping the box centered (spec.md §4.8: "expand to the
// requested pixel aspect ratio").
func expandToAspect(b bbox, pixelW, pixelH float64) bbox {
	targetRatio := pixelW / pixelH
	w, h := b.MaxX-b.MinX, b.MaxY-b.MinY
	ratio := w / h

	cx, cy := (b.MinX+b.MaxX)/2, (b.MinY+b.MaxY)/2
	if ratio < targetRatio {
		w = h * targetRatio
	} else {
		h = w / targetRatio
	}
	return bbox{MinX: cx - w/2, MaxX: cx + w/2, MinY: cy - h/2, MaxY: cy + h/2}
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

func labelText(p *points.InputPoint, proj points.TrackProjection, trk *track.Track, params config.Parameters) string {
	name, _ := p.Name()
	switch p.Kind {
	case points.KindControl:
		return format.Render(params.ControlNameFormat, format.Context{Name: name, DistanceMeters: proj.DistanceOnTrack, StartTime: params.StartTime, SpeedMPS: params.SpeedMPS, Slope: trk.SlopeAt(proj.IntegerIndex)})
	case points.KindUserStep:
		return format.Render(params.UserStepNameFormat, format.Context{Name: name, DistanceMeters: proj.DistanceOnTrack, StartTime: params.StartTime, SpeedMPS: params.SpeedMPS, Slope: trk.SlopeAt(proj.IntegerIndex)})
	default:
		return name
	}
}

func estimateLabelSize(text string) (w, h float64) {
	const charWidth = 6.5
	const lineHeight = 14.0
	return math.Max(20, float64(len(text))*charWidth+8), lineHeight
}
