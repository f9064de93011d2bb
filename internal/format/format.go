// Package format implements the §4.10 name-formatting mini-language used
// for UserStep and Control labels: a user-supplied format string with
// NAME, TIME[<strftime-spec>], and SLOPE[W.P[%]] tokens substituted in.
// Grounded on the original source's format.rs token scanner; the
// strftime formatting itself is delegated to the teacher's indirect
// dependency github.com/ncruces/go-strftime, promoted to direct here
// since spec.md §4.10 explicitly calls for "strftime-style" formatting.
package format

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	strftime "github.com/ncruces/go-strftime"
)

// Context carries every value a format string's tokens may reference.
type Context struct {
	// Name substitutes the NAME token verbatim.
	Name string
	// DistanceMeters is this point's distance-on-track, used together
	// with SpeedMPS to compute the TIME token's instant.
	DistanceMeters float64
	// StartTime anchors TIME[...]: computed as StartTime + distance/speed.
	StartTime time.Time
	// SpeedMPS is the nominal travel speed used for the TIME token.
	SpeedMPS float64
	// Slope is the fractional (not percentage) inter-segment slope at
	// this point, used by the SLOPE token ("100*inter_slope").
	Slope float64
}

var tokenPattern = regexp.MustCompile(`NAME|TIME\[([^\]]*)\]|SLOPE\[([^\]]*)\]`)

// Render substitutes every recognized token in format with values drawn
// from ctx. An empty format string yields ctx.Name verbatim (spec.md
// §4.10: "An empty format string yields the raw name."). Unrecognized
// tokens — any text that isn't NAME/TIME[...]/SLOPE[...] — are left as-is.
func Render(format string, ctx Context) string {
	if format == "" {
		return ctx.Name
	}
	return tokenPattern.ReplaceAllStringFunc(format, func(tok string) string {
		m := tokenPattern.FindStringSubmatch(tok)
		switch {
		case tok == "NAME":
			return ctx.Name
		case strings.HasPrefix(tok, "TIME["):
			return renderTime(m[1], ctx)
		case strings.HasPrefix(tok, "SLOPE["):
			return renderSlope(m[2], ctx)
		default:
			return tok
		}
	})
}

func renderTime(spec string, ctx Context) string {
	t := ctx.StartTime
	if ctx.SpeedMPS > 0 {
		seconds := ctx.DistanceMeters / ctx.SpeedMPS
		t = t.Add(time.Duration(seconds * float64(time.Second)))
	}
	return strftime.Format(spec, t)
}

// renderSlope implements SLOPE[W.P[%]]: "100*inter_slope" formatted with
// width W and precision P; a trailing "%" in the spec is kept literal in
// the output. If the rendered number (before the % suffix) is already at
// least W characters wide, no padding is applied (spec.md §4.10 example
// 4: "if the rendered value exceeds the requested width, no padding is
// applied").
func renderSlope(spec string, ctx Context) string {
	percent := strings.HasSuffix(spec, "%")
	numSpec := strings.TrimSuffix(spec, "%")

	width, precision := parseWidthPrecision(numSpec)
	value := 100 * ctx.Slope
	s := strconv.FormatFloat(value, 'f', precision, 64)
	if width > len(s) {
		s = strings.Repeat(" ", width-len(s)) + s
	}
	if percent {
		s += "%"
	}
	return s
}

// parseWidthPrecision parses a "W.P" spec (either part optional) into
// integers, defaulting to 0 for whichever half is missing or unparsable.
func parseWidthPrecision(spec string) (width, precision int) {
	parts := strings.SplitN(spec, ".", 2)
	if len(parts) > 0 && parts[0] != "" {
		if w, err := strconv.Atoi(parts[0]); err == nil {
			width = w
		}
	}
	if len(parts) > 1 && parts[1] != "" {
		if p, err := strconv.Atoi(parts[1]); err == nil {
			precision = p
		}
	}
	return width, precision
}

// InterSlope computes the fractional slope (rise over run, not a
// percentage) between two (distance, elevation) samples, returning 0 when
// both share the same distance — the shared definition used both by the SLOPE
// token and the profile view's numeric-slope indication glyph (spec.md
// §4.7, §4.10).
func InterSlope(d0, e0, d1, e1 float64) float64 {
	dd := d1 - d0
	if dd == 0 {
		return 0
	}
	return (e1 - e0) / dd
}
