// Command routebook is the batch entry point spec.md §6 describes: it
// reads a GPX file, runs the full leaves-first pipeline of
// internal/routebook, and writes one profile SVG and one map SVG per
// sliced segment. GPX parsing, the place-database HTTP client, and the
// on-disk cache are all "external collaborators" spec.md §1 explicitly
// keeps out of the core; this command is where they're wired together,
// grounded on the teacher's cmd/tools/backfill_ring_elevations (flag
// parsing, log.Fatalf on unrecoverable input errors) and
// dyuri-vibe-tracker's tools/gpxup (tkrajina/gpxgo parsing idiom).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/tkrajina/gpxgo/gpx"

	"github.com/fellridge/routebook/internal/config"
	"github.com/fellridge/routebook/internal/debugplot"
	"github.com/fellridge/routebook/internal/fsutil"
	"github.com/fellridge/routebook/internal/geo"
	"github.com/fellridge/routebook/internal/httputil"
	"github.com/fellridge/routebook/internal/placeclient"
	"github.com/fellridge/routebook/internal/placestore"
	"github.com/fellridge/routebook/internal/points"
	"github.com/fellridge/routebook/internal/routebook"
	"github.com/fellridge/routebook/internal/security"
	"github.com/fellridge/routebook/internal/timeutil"
	"github.com/fellridge/routebook/internal/track"
	"github.com/fellridge/routebook/internal/units"
	"github.com/fellridge/routebook/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	gpxPath := flag.String("gpx", "", "input GPX file (required)")
	outDir := flag.String("out", ".", "directory to write profile/map SVGs (and debug PNGs) into")
	configPath := flag.String("config", "", "optional JSON parameter overlay (see internal/config.Overlay)")
	placeAPI := flag.String("place-api", "", "base URL of the place database HTTP API; places are skipped if empty")
	placeDB := flag.String("place-db", "routebook_places.db", "sqlite cache path for place-store chunks")
	exportGPX := flag.Bool("export-gpx", false, "also write waypoints.gpx with every rendered control/user-step")
	speedKMH := flag.Float64("speed-kmh", 0, "nominal riding speed in km/h, overriding the default Parameters.SpeedMPS (used for the TIME[] format token)")
	startTimeStr := flag.String("start-time", "", "RFC3339 departure time, used to log a projected arrival time (defaults to now)")
	flag.Parse()

	fs := fsutil.OSFileSystem{}
	clock := timeutil.RealClock{}

	if *showVersion {
		fmt.Printf("routebook v%s (git SHA: %s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *gpxPath == "" {
		log.Fatal("routebook: -gpx is required")
	}

	params := config.Defaults()
	if *configPath != "" {
		overlay, err := config.LoadOverlay(*configPath)
		if err != nil {
			log.Fatalf("routebook: load config overlay: %v", err)
		}
		params = overlay.Apply(params)
	}
	if *speedKMH > 0 {
		params.SpeedMPS = units.MPSFromKMH(*speedKMH)
	}

	startTime := clock.Now()
	if *startTimeStr != "" {
		parsed, err := time.Parse(time.RFC3339, *startTimeStr)
		if err != nil {
			log.Fatalf("routebook: parse -start-time %q: %v", *startTimeStr, err)
		}
		startTime = parsed
	}

	if err := fs.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("routebook: create output dir %s: %v", *outDir, err)
	}

	gpxData, err := gpx.ParseFile(*gpxPath)
	if err != nil {
		log.Fatalf("routebook: parse GPX %s: %v", *gpxPath, err)
	}
	if len(gpxData.Tracks) == 0 {
		log.Fatalf("routebook: GPX %s has no track segment", *gpxPath)
	}

	segments, err := namedSegmentsFromGPX(gpxData)
	if err != nil {
		log.Fatalf("routebook: %v", err)
	}

	projector := geo.WebMercator{}

	var places routebook.PlaceSource
	if *placeAPI != "" {
		client := placeclient.New(*placeAPI, httputil.NewStandardClient(nil), projector)
		store, err := placestore.Open(*placeDB, client, projector)
		if err != nil {
			log.Fatalf("routebook: open place store %s: %v", *placeDB, err)
		}
		defer store.Close()
		places = store
	}

	req := routebook.Request{
		Segments:     segments,
		Projector:    projector,
		GPXWaypoints: waypointsFromGPX(gpxData),
		Places:       places,
		Params:       params,
	}

	result, err := routebook.Build(context.Background(), req)
	if err != nil {
		var missing *track.MissingElevationError
		if errors.As(err, &missing) {
			log.Fatalf("routebook: track point %d has no elevation", missing.Index)
		}
		log.Fatalf("routebook: build pipeline: %v", err)
	}

	arrival := timeutil.ArrivalTime(startTime, result.Track.TotalDistance(), params.SpeedMPS)
	log.Printf("routebook: request %s: track %s long at %.1f km/h, %d controls, %d user steps, %d segments, estimated arrival %s",
		result.ID, humanize.SIWithDigits(result.Track.TotalDistance(), 1, "m"),
		units.KMHFromMPS(params.SpeedMPS),
		len(result.Controls), len(result.UserSteps), len(result.Segments),
		arrival.Format(time.RFC3339))

	for _, seg := range result.Segments {
		profilePath := filepath.Join(*outDir, fmt.Sprintf("profile-%d.svg", seg.Segment.ID))
		if err := writeExport(fs, profilePath, []byte(seg.ProfileSVG)); err != nil {
			log.Fatalf("routebook: write %s: %v", profilePath, err)
		}
		mapPath := filepath.Join(*outDir, fmt.Sprintf("map-%d.svg", seg.Segment.ID))
		if err := writeExport(fs, mapPath, []byte(seg.MapSVG)); err != nil {
			log.Fatalf("routebook: write %s: %v", mapPath, err)
		}
		if params.Debug {
			debugplot.WriteElevationProfile(seg.Segment, *outDir)
		}
	}

	if *exportGPX {
		waypoints := routebook.ExportWaypoints(result.Track, result.AllPoints, params)
		xmlBytes, err := marshalWaypointsGPX(waypoints)
		if err != nil {
			log.Fatalf("routebook: marshal waypoints.gpx: %v", err)
		}
		if err := writeExport(fs, filepath.Join(*outDir, "waypoints.gpx"), xmlBytes); err != nil {
			log.Fatalf("routebook: write waypoints.gpx: %v", err)
		}
		log.Printf("routebook: exported %d waypoints", len(waypoints))
	}
}

// writeExport validates path against the export allow-list (spec.md's
// debug/profile writes only ever target the temp directory or the
// caller's working directory) before writing through fs, mirroring the
// teacher's server-side export-path check.
func writeExport(fs fsutil.FileSystem, path string, data []byte) error {
	if err := security.ValidateExportPath(path); err != nil {
		return err
	}
	return fs.WriteFile(path, data, 0o644)
}

// namedSegmentsFromGPX flattens every track's segments into
// track.NamedSegment, in file order, naming each one after its parent
// track (disambiguated by segment index when a track has more than one
// <trkseg>).
func namedSegmentsFromGPX(g *gpx.GPX) ([]track.NamedSegment, error) {
	var out []track.NamedSegment
	for ti, trk := range g.Tracks {
		name := trk.Name
		if name == "" {
			name = fmt.Sprintf("track-%d", ti)
		}
		for si, seg := range trk.Segments {
			segName := name
			if len(trk.Segments) > 1 {
				segName = fmt.Sprintf("%s-%d", name, si)
			}
			pts := make([]geo.WGS84, len(seg.Points))
			for pi, p := range seg.Points {
				if !p.Elevation.NotNull() {
					return nil, fmt.Errorf("%s point %d has no elevation", segName, pi)
				}
				pts[pi] = geo.NewWGS84(p.Longitude, p.Latitude, p.Elevation.Value())
			}
			out = append(out, track.NamedSegment{Name: segName, Points: pts})
		}
	}
	return out, nil
}

// waypointsFromGPX converts every top-level GPX waypoint into a
// points.KindGPX InputPoint, not yet projected onto any track (the
// pipeline projects them via projection.Index.UpdateProjections).
func waypointsFromGPX(g *gpx.GPX) []*points.InputPoint {
	out := make([]*points.InputPoint, 0, len(g.Waypoints))
	for _, wp := range g.Waypoints {
		var wgs geo.WGS84
		if wp.Elevation.NotNull() {
			wgs = geo.NewWGS84(wp.Longitude, wp.Latitude, wp.Elevation.Value())
		} else {
			wgs = geo.NewWGS84NoElevation(wp.Longitude, wp.Latitude)
		}
		ip := points.New(wgs, geo.WebMercator{}.Project(wgs), points.KindGPX)
		if wp.Name != "" {
			ip.Tags["name"] = wp.Name
		}
		if wp.Description != "" {
			ip.Tags["description"] = wp.Description
		}
		out = append(out, ip)
	}
	return out
}

// marshalWaypointsGPX builds one <wpt> per routebook.Waypoint using
// tkrajina/gpxgo's writer, the same library the importer side uses to
// read tracks (spec.md's "Supplemented Features" waypoint export).
func marshalWaypointsGPX(waypoints []routebook.Waypoint) ([]byte, error) {
	out := gpx.GPX{}
	for _, wp := range waypoints {
		out.Waypoints = append(out.Waypoints, gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  wp.Lat,
				Longitude: wp.Lon,
				Elevation: *gpx.NewNullableFloat64(wp.Elevation),
			},
			Name:        wp.RenderedName,
			Description: wp.Description,
		})
	}
	xmlBytes, err := out.ToXml(gpx.ToXmlParams{Indent: true})
	if err != nil {
		return nil, fmt.Errorf("marshal gpx: %w", err)
	}
	return xmlBytes, nil
}
