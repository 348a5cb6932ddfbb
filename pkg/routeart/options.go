package routeart

import "fmt"

// Options is the per-request configuration bundle of §3. Every numeric
// field except GlobalRotDeg has a validated range; Defaults returns the recommended starting point and
// Validate rejects out-of-range values the way the teacher's ServerConfig
// is constructed once and never mutated, but scoped per-request instead
// of per-process.
type Options struct {
	SVGPathIndex     int // the sentinel -1 means "auto": merge all sub-paths by endpoint proximity
	SVGSamplesPerSeg int
	SVGSimplify      float64
	SVGFlipY         bool

	CanvasBoxFrac float64
	GlobalRotDeg  float64

	SampleStepM float64
	MinWPGapM   float64

	GraphRadiusM float64

	ReturnToStart bool

	TolRatio float64
	Iters    int

	ShapeBiasLambda float64

	AnchorCount       int
	UseAnchors        bool
	ConnectFromStart  bool
	MaxConnectorM     float64

	ProximityAlpha       float64
	ProximityMaxShiftM   float64
}

// Defaults returns an Options populated with the reference values named
// throughout §4 and §8's concrete scenarios.
func Defaults() Options {
	return Options{
		SVGPathIndex:     -1,
		SVGSamplesPerSeg: 8,
		SVGSimplify:      0,
		SVGFlipY:         false,

		CanvasBoxFrac: 0.8,
		GlobalRotDeg:  0,

		SampleStepM: 15,
		MinWPGapM:   25,

		GraphRadiusM: 3000,

		ReturnToStart: false,

		TolRatio: 0.1,
		Iters:    16,

		ShapeBiasLambda: 2.0,

		AnchorCount:      12,
		UseAnchors:       true,
		ConnectFromStart: true,
		MaxConnectorM:    1500,

		ProximityAlpha:     0.5,
		ProximityMaxShiftM: 300,
	}
}

// Validate rejects out-of-range values, per Design Note 9's requirement
// that dynamic config reject unknown keys and out-of-range values. Since
// Options is a typed struct rather than a map, "unknown keys" are rejected
// structurally at decode time (§6's JSON decoder); Validate enforces range.
func (o Options) Validate() error {
	if o.SVGPathIndex < -1 {
		return fmt.Errorf("svg_path_index must be >= 0, or the sentinel auto, got %d", o.SVGPathIndex)
	}
	if o.SVGSamplesPerSeg <= 0 {
		return fmt.Errorf("svg_samples_per_seg must be positive, got %d", o.SVGSamplesPerSeg)
	}
	if o.SVGSimplify < 0 {
		return fmt.Errorf("svg_simplify must be >= 0, got %f", o.SVGSimplify)
	}
	if o.CanvasBoxFrac <= 0 || o.CanvasBoxFrac > 1 {
		return fmt.Errorf("canvas_box_frac must be in (0,1], got %f", o.CanvasBoxFrac)
	}
	if o.SampleStepM <= 0 {
		return fmt.Errorf("sample_step_m must be positive, got %f", o.SampleStepM)
	}
	if o.MinWPGapM <= 0 {
		return fmt.Errorf("min_wp_gap_m must be positive, got %f", o.MinWPGapM)
	}
	if o.GraphRadiusM <= 0 {
		return fmt.Errorf("graph_radius_m must be positive, got %f", o.GraphRadiusM)
	}
	if o.TolRatio < 0 || o.TolRatio > 1 {
		return fmt.Errorf("tol_ratio must be in [0,1], got %f", o.TolRatio)
	}
	if o.Iters <= 0 {
		return fmt.Errorf("iters must be positive, got %d", o.Iters)
	}
	if o.ShapeBiasLambda < 0 {
		return fmt.Errorf("shape_bias_lambda must be >= 0, got %f", o.ShapeBiasLambda)
	}
	if o.UseAnchors && o.AnchorCount <= 0 {
		return fmt.Errorf("anchor_count must be positive when use_anchors is set, got %d", o.AnchorCount)
	}
	if o.ConnectFromStart && o.MaxConnectorM <= 0 {
		return fmt.Errorf("max_connector_m must be positive when connect_from_start is set, got %f", o.MaxConnectorM)
	}
	if o.ProximityAlpha < 0 || o.ProximityAlpha > 1 {
		return fmt.Errorf("proximity_alpha must be in [0,1], got %f", o.ProximityAlpha)
	}
	if o.ProximityMaxShiftM <= 0 {
		return fmt.Errorf("proximity_max_shift_m must be positive, got %f", o.ProximityMaxShiftM)
	}
	return nil
}

// Settings is the static, process-wide configuration of §3, constructed
// once in cmd/server/main.go and never mutated — mirroring the teacher's
// ServerConfig/DefaultConfig split.
type Settings struct {
	Host       string
	Port       int
	DataRoot   string
	CacheDir   string
	OutputDir  string
}

// DefaultSettings returns sensible defaults for local development.
func DefaultSettings() Settings {
	return Settings{
		Host:      "0.0.0.0",
		Port:      8080,
		DataRoot:  "./data",
		CacheDir:  "./cache",
		OutputDir: "./output",
	}
}
