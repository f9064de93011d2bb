// Package debugplot renders a segment's smoothed-elevation profile to a
// standalone PNG, independent of the canonical SVG path. It exists only
// for Parameters.Debug (spec.md §7's RendererIOError: "optional debug
// writes to /tmp may fail; logged, never surfaced"). Grounded on the
// teacher's internal/lidar/monitor/gridplotter.go, which builds one
// gonum/plot plot.Plot per series and saves it as a PNG via vg.Inch
// sizing.
package debugplot

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/fellridge/routebook/internal/monitoring"
	"github.com/fellridge/routebook/internal/segment"
)

// WriteElevationProfile renders seg's smoothed-elevation-vs-distance
// series to outputDir/profile-<seg.ID>.png. A failure is logged and
// swallowed; it is a RendererIOError, never surfaced to the caller
// (spec.md §7).
func WriteElevationProfile(seg *segment.Segment, outputDir string) {
	rng := seg.Range()
	pts := make(plotter.XYs, 0, rng.Len())
	for i := rng.Start; i < rng.End; i++ {
		pts = append(pts, plotter.XY{
			X: seg.Track.CumulativeDistance[i] / 1000,
			Y: seg.Track.SmoothedElevation[i],
		})
	}
	if len(pts) == 0 {
		return
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("segment %d - smoothed elevation", seg.ID)
	p.X.Label.Text = "distance (km)"
	p.Y.Label.Text = "elevation (m)"

	line, err := plotter.NewLine(pts)
	if err != nil {
		monitoring.Logf("debugplot: segment %d: build line: %v", seg.ID, err)
		return
	}
	line.Width = vg.Points(1)
	p.Add(line)

	path := filepath.Join(outputDir, fmt.Sprintf("profile-%d.png", seg.ID))
	if err := p.Save(12*vg.Inch, 4*vg.Inch, path); err != nil {
		monitoring.Logf("debugplot: segment %d: save %s: %v", seg.ID, path, err)
	}
}
