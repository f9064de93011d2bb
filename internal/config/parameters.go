// Package config holds the Parameters bundle of spec.md §3 — the single
// value every top-level core call is threaded with — plus a sparse JSON
// overlay loader so a deployment can tune one field (say,
// SegmentLengthMeters) without recompiling. Grounded on the teacher
// repo's internal/config/tuning.go: a root struct with sane defaults and
// a *T-pointer-per-field overlay that JSON-unmarshals only the fields a
// deployment actually wants to change.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Indicator selects the glyph drawn at each X-tick interval on the
// profile view (spec.md §4.7).
type Indicator int

const (
	// IndicatorNone draws no per-interval glyph.
	IndicatorNone Indicator = iota
	// IndicatorGainTicks draws width-6/3/1px ticks at 1000/500/50m of
	// cumulative gain.
	IndicatorGainTicks
	// IndicatorSlope prints the numeric slope in 80%-size font.
	IndicatorSlope
)

// PixelSize is a target raster size in device pixels for an SVG view.
type PixelSize struct {
	Width, Height float64
}

// ProfileOptions configures the elevation-profile renderer (spec.md §4.7).
type ProfileOptions struct {
	Indicator    Indicator
	MinXRangeKM  float64
	MaxAreaRatio float64
	PixelSize    PixelSize
}

// MapOptions configures the schematic map renderer (spec.md §4.8).
type MapOptions struct {
	MaxAreaRatio float64
	PixelSize    PixelSize
}

// UserStepOptions configures the two optional generators of spec.md §4.5.
// Either field may be nil, meaning that generator is skipped.
type UserStepOptions struct {
	StepDistanceMeters      *float64
	StepElevationGainMeters *float64
}

// Parameters is the full parameter bundle of spec.md §3. It is passed by
// value on every top-level call and is never mutated by the core
// (spec.md §5: "the core never mutates it").
type Parameters struct {
	Debug                       bool
	SpeedMPS                    float64
	StartTime                   time.Time
	SegmentLengthMeters         float64
	SegmentOverlapMeters        float64
	ElevationSmoothWindowMeters float64
	Profile                     ProfileOptions
	Map                         MapOptions
	UserStep                    UserStepOptions
	// ControlNameFormat and UserStepNameFormat are the §4.10 format
	// strings applied to Control and UserStep labels respectively.
	ControlNameFormat  string
	UserStepNameFormat string
}

// Defaults returns the zero-value-safe default bundle the source tunes
// its own test fixtures against.
func Defaults() Parameters {
	return Parameters{
		Debug:                       false,
		SpeedMPS:                    5.0,
		StartTime:                   time.Time{},
		SegmentLengthMeters:         120_000,
		SegmentOverlapMeters:        5_000,
		ElevationSmoothWindowMeters: 200,
		Profile: ProfileOptions{
			Indicator:    IndicatorGainTicks,
			MinXRangeKM:  20,
			MaxAreaRatio: 0.10,
			PixelSize:    PixelSize{Width: 1600, Height: 500},
		},
		Map: MapOptions{
			MaxAreaRatio: 0.10,
			PixelSize:    PixelSize{Width: 1000, Height: 1000},
		},
		UserStep:           UserStepOptions{},
		ControlNameFormat:  "NAME",
		UserStepNameFormat: "NAME",
	}
}

// Overlay is the sparse, JSON-friendly mirror of Parameters: every field
// is a pointer, so a deployment's JSON file only needs to mention the
// fields it wants to override. Fields omitted from the JSON retain the
// Defaults() value they're overlaid onto.
type Overlay struct {
	Debug                       *bool    `json:"debug,omitempty"`
	SpeedMPS                    *float64 `json:"speed_mps,omitempty"`
	SegmentLengthMeters         *float64 `json:"segment_length_meters,omitempty"`
	SegmentOverlapMeters        *float64 `json:"segment_overlap_meters,omitempty"`
	ElevationSmoothWindowMeters *float64 `json:"elevation_smooth_window_meters,omitempty"`

	ProfileIndicator    *string  `json:"profile_indicator,omitempty"` // "none" | "gain_ticks" | "slope"
	ProfileMinXRangeKM  *float64 `json:"profile_min_x_range_km,omitempty"`
	ProfileMaxAreaRatio *float64 `json:"profile_max_area_ratio,omitempty"`
	ProfilePixelWidth   *float64 `json:"profile_pixel_width,omitempty"`
	ProfilePixelHeight  *float64 `json:"profile_pixel_height,omitempty"`

	MapMaxAreaRatio *float64 `json:"map_max_area_ratio,omitempty"`
	MapPixelWidth   *float64 `json:"map_pixel_width,omitempty"`
	MapPixelHeight  *float64 `json:"map_pixel_height,omitempty"`

	StepDistanceMeters      *float64 `json:"step_distance_meters,omitempty"`
	StepElevationGainMeters *float64 `json:"step_elevation_gain_meters,omitempty"`

	ControlNameFormat  *string `json:"control_name_format,omitempty"`
	UserStepNameFormat *string `json:"user_step_name_format,omitempty"`
}

// LoadOverlay reads and parses a JSON overlay file. The file must have a
// .json extension, matching the teacher repo's config-path validation.
func LoadOverlay(path string) (*Overlay, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config overlay must have .json extension, got %q", ext)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read config overlay: %w", err)
	}
	var o Overlay
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse config overlay %s: %w", path, err)
	}
	return &o, nil
}

// Apply returns a copy of base with every non-nil Overlay field applied.
func (o *Overlay) Apply(base Parameters) Parameters {
	if o == nil {
		return base
	}
	p := base
	if o.Debug != nil {
		p.Debug = *o.Debug
	}
	if o.SpeedMPS != nil {
		p.SpeedMPS = *o.SpeedMPS
	}
	if o.SegmentLengthMeters != nil {
		p.SegmentLengthMeters = *o.SegmentLengthMeters
	}
	if o.SegmentOverlapMeters != nil {
		p.SegmentOverlapMeters = *o.SegmentOverlapMeters
	}
	if o.ElevationSmoothWindowMeters != nil {
		p.ElevationSmoothWindowMeters = *o.ElevationSmoothWindowMeters
	}
	if o.ProfileIndicator != nil {
		switch *o.ProfileIndicator {
		case "gain_ticks":
			p.Profile.Indicator = IndicatorGainTicks
		case "slope":
			p.Profile.Indicator = IndicatorSlope
		default:
			p.Profile.Indicator = IndicatorNone
		}
	}
	if o.ProfileMinXRangeKM != nil {
		p.Profile.MinXRangeKM = *o.ProfileMinXRangeKM
	}
	if o.ProfileMaxAreaRatio != nil {
		p.Profile.MaxAreaRatio = *o.ProfileMaxAreaRatio
	}
	if o.ProfilePixelWidth != nil {
		p.Profile.PixelSize.Width = *o.ProfilePixelWidth
	}
	if o.ProfilePixelHeight != nil {
		p.Profile.PixelSize.Height = *o.ProfilePixelHeight
	}
	if o.MapMaxAreaRatio != nil {
		p.Map.MaxAreaRatio = *o.MapMaxAreaRatio
	}
	if o.MapPixelWidth != nil {
		p.Map.PixelSize.Width = *o.MapPixelWidth
	}
	if o.MapPixelHeight != nil {
		p.Map.PixelSize.Height = *o.MapPixelHeight
	}
	if o.StepDistanceMeters != nil {
		p.UserStep.StepDistanceMeters = o.StepDistanceMeters
	}
	if o.StepElevationGainMeters != nil {
		p.UserStep.StepElevationGainMeters = o.StepElevationGainMeters
	}
	if o.ControlNameFormat != nil {
		p.ControlNameFormat = *o.ControlNameFormat
	}
	if o.UserStepNameFormat != nil {
		p.UserStepNameFormat = *o.UserStepNameFormat
	}
	return p
}
