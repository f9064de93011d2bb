// Package svgutil is a minimal, deterministic SVG 1.1 element writer.
//
// spec.md §6 requires sub-pixel precision ("shape-rendering=
// geometricPrecision") and byte-stable output across runs (spec.md §8
// idempotence law). github.com/ajstarks/svgo — the teacher pack's only
// SVG library, pulled in transitively through gonum.org/v1/plot — types
// every coordinate as int, which would silently truncate the sub-pixel
// label and tick positions this engine computes. Hand-rolling the
// element/attribute writer is the documented exception to "prefer a
// pack library" (see DESIGN.md): the original source uses an equally
// thin `svg` crate for exactly this reason.
package svgutil

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is a plain 2D coordinate, kept free of any planar-projection
// package so svgutil has no domain dependencies.
type Point struct{ X, Y float64 }

// Attr is a single SVG attribute. Attrs are stored as an ordered slice
// (not a map) throughout this package so rendering is deterministic.
type Attr struct{ Key, Value string }

// A is a plain string attribute.
func A(key, value string) Attr { return Attr{key, value} }

// F is a float attribute, formatted with fixed precision so repeated
// renders of the same geometry produce byte-identical output.
func F(key string, value float64) Attr {
	return Attr{key, formatFloat(value)}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// Element is one SVG node: a tag, its attributes, and either children or
// text content (never both).
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []*Element
	Text     string
}

// New builds an element with the given tag and attributes.
func New(tag string, attrs ...Attr) *Element {
	return &Element{Tag: tag, Attrs: attrs}
}

// Append adds children and returns the element for chaining.
func (e *Element) Append(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// NewSVGDocument builds the root <svg> element with an explicit width,
// height, and viewBox, as spec.md §6 requires.
func NewSVGDocument(width, height float64, viewMinX, viewMinY, viewWidth, viewHeight float64) *Element {
	return New("svg",
		A("xmlns", "http://www.w3.org/2000/svg"),
		A("version", "1.1"),
		F("width", width),
		F("height", height),
		A("viewBox", fmt.Sprintf("%s %s %s %s",
			formatFloat(viewMinX), formatFloat(viewMinY), formatFloat(viewWidth), formatFloat(viewHeight))),
	)
}

// Group wraps children in a <g> with a single translate(...) transform,
// the structure spec.md §6 requires for the profile view's three
// coordinate groups (left axis, bottom axis, drawing area).
func Group(translateX, translateY float64, attrs []Attr, children ...*Element) *Element {
	g := New("g", append([]Attr{A("transform", fmt.Sprintf("translate(%s,%s)", formatFloat(translateX), formatFloat(translateY)))}, attrs...)...)
	return g.Append(children...)
}

// Line draws a straight line.
func Line(x1, y1, x2, y2 float64, attrs ...Attr) *Element {
	return New("line", append([]Attr{F("x1", x1), F("y1", y1), F("x2", x2), F("y2", y2)}, attrs...)...)
}

// Circle draws a filled/stroked circle glyph.
func Circle(cx, cy, r float64, attrs ...Attr) *Element {
	return New("circle", append([]Attr{F("cx", cx), F("cy", cy), F("r", r)}, attrs...)...)
}

// Rect draws an axis-aligned rectangle, used for label boxes.
func Rect(x, y, w, h float64, attrs ...Attr) *Element {
	return New("rect", append([]Attr{F("x", x), F("y", y), F("width", w), F("height", h)}, attrs...)...)
}

// Polyline draws a connected sequence of points.
func Polyline(points []Point, attrs ...Attr) *Element {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = formatFloat(p.X) + "," + formatFloat(p.Y)
	}
	return New("polyline", append([]Attr{A("points", strings.Join(parts, " "))}, attrs...)...)
}

// Path draws an arbitrary path from a precomputed "d" attribute value.
// Leader lines are emitted with Polyline, not Path.
func Path(d string, attrs ...Attr) *Element {
	return New("path", append([]Attr{A("d", d)}, attrs...)...)
}

// Text draws a text label anchored at (x,y).
func Text(x, y float64, content string, attrs ...Attr) *Element {
	e := New("text", append([]Attr{F("x", x), F("y", y)}, attrs...)...)
	e.Text = content
	return e
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Render serializes the element tree to a standalone SVG string,
// prefixed with an XML declaration.
func Render(root *Element) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	writeElement(&b, root, 0)
	return b.String()
}

func writeElement(b *strings.Builder, e *Element, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteString("<")
	b.WriteString(e.Tag)
	for _, a := range e.Attrs {
		b.WriteString(" ")
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(escaper.Replace(a.Value))
		b.WriteString(`"`)
	}
	if len(e.Children) == 0 && e.Text == "" {
		b.WriteString("/>\n")
		return
	}
	b.WriteString(">")
	if e.Text != "" {
		b.WriteString(escaper.Replace(e.Text))
	} else {
		b.WriteString("\n")
		for _, c := range e.Children {
			writeElement(b, c, depth+1)
		}
		b.WriteString(indent)
	}
	b.WriteString("</")
	b.WriteString(e.Tag)
	b.WriteString(">\n")
}
