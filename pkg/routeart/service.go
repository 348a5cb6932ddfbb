// Package routeart orchestrates the full GPS-art pipeline: template
// loading, placement, shape-biased routing, distance fitting, guidance
// extraction, and GeoJSON assembly, per §4.7 and §6.
package routeart

import (
	"context"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"gpsartroute/pkg/geo"
	"gpsartroute/pkg/guidance"
	"gpsartroute/pkg/placement"
	"gpsartroute/pkg/roadgraph"
	"gpsartroute/pkg/scalefit"
	"gpsartroute/pkg/shaperoute"
	"gpsartroute/pkg/svgtemplate"
)

// ErrTemplateNotFound is returned by a TemplateSource when the requested
// template name has no backing bytes.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateSource loads raw SVG path-data bytes by template name, per §6.
type TemplateSource interface {
	LoadTemplateBytes(ctx context.Context, templateName string) ([]byte, error)
}

// GraphProvider resolves a routable graph adapter for a geographic area.
// *roadgraph.Cache satisfies this.
type GraphProvider interface {
	Get(ctx context.Context, lat, lng, radiusM float64) (*roadgraph.Adapter, error)
}

// OutputSink persists an assembled GeoJSON feature collection, per §6.
type OutputSink interface {
	SaveGeoJSON(ctx context.Context, fc *geojson.FeatureCollection) (string, error)
}

// Service ties the pipeline stages together behind the three external
// collaborators named in §6.
type Service struct {
	Templates TemplateSource
	Graphs    GraphProvider
	Output    OutputSink
}

// NewService constructs a Service from its three collaborators.
func NewService(templates TemplateSource, graphs GraphProvider, output OutputSink) *Service {
	return &Service{Templates: templates, Graphs: graphs, Output: output}
}

// StartPoint is a request's geographic start coordinate.
type StartPoint struct {
	Lat float64
	Lng float64
}

// Request is the §6 POST /routes/generate request body, already decoded.
type Request struct {
	TemplateName string
	StartPoint   StartPoint
	TargetKm     float64
	Options      Options
	SaveGeoJSON  bool
}

// Metrics summarizes the accepted route, per §4.7.
type Metrics struct {
	Nodes        int
	RouteLengthM float64
	TargetKm     float64
}

// Response is the §4.7 assembled package.
type Response struct {
	Metrics  Metrics
	GeoJSON  *geojson.FeatureCollection
	Guidance GuidanceBundle
	Saved    *string
	Matched  bool
	ScaleUsed float64
}

// GuidanceBundle wraps the guidance point list for §4.7's packaging shape.
type GuidanceBundle struct {
	GuidancePoints []guidance.Point
}

// Generate runs the full pipeline for one request.
func (s *Service) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, newErr(BadRequest, err.Error(), err)
	}
	if err := req.Options.Validate(); err != nil {
		return nil, newErr(BadRequest, err.Error(), err)
	}

	raw, err := s.Templates.LoadTemplateBytes(ctx, req.TemplateName)
	if err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			return nil, newErr(TemplateNotFound, fmt.Sprintf("template %q not found", req.TemplateName), err)
		}
		return nil, newErr(Internal, "loading template", err)
	}

	unit, err := svgtemplate.Load(raw, svgtemplate.Options{
		PathIndex:     req.Options.SVGPathIndex,
		Auto:          req.Options.SVGPathIndex < 0,
		SamplesPerSeg: req.Options.SVGSamplesPerSeg,
		Simplify:      req.Options.SVGSimplify,
		FlipY:         req.Options.SVGFlipY,
	})
	if err != nil {
		return nil, newErr(TemplateInvalid, "parsing template", err)
	}

	adapter, err := s.Graphs.Get(ctx, req.StartPoint.Lat, req.StartPoint.Lng, req.Options.GraphRadiusM)
	if err != nil {
		return nil, newErr(GraphUnavailable, "resolving road graph", err)
	}

	proj := geo.NewProjection(geo.LatLng{Lat: req.StartPoint.Lat, Lng: req.StartPoint.Lng})

	eval := func(ctx context.Context, scale float64) (*shaperoute.Result, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		placed := placement.Place(unit, proj, placement.Params{
			CanvasBoxFrac:      req.Options.CanvasBoxFrac,
			GlobalRotDeg:       req.Options.GlobalRotDeg,
			Scale:              scale,
			GraphRadiusM:       req.Options.GraphRadiusM,
			ProximityAlpha:     req.Options.ProximityAlpha,
			ProximityMaxShiftM: req.Options.ProximityMaxShiftM,
		})
		return shaperoute.Route(ctx, adapter, proj, placed, req.StartPoint.Lat, req.StartPoint.Lng, shaperoute.Params{
			SampleStepM:      req.Options.SampleStepM,
			MinWPGapM:        req.Options.MinWPGapM,
			AnchorCount:      req.Options.AnchorCount,
			UseAnchors:       req.Options.UseAnchors,
			ShapeBiasLambda:  req.Options.ShapeBiasLambda,
			ConnectFromStart: req.Options.ConnectFromStart,
			MaxConnectorM:    req.Options.MaxConnectorM,
			ReturnToStart:    req.Options.ReturnToStart,
		})
	}

	outcome, err := scalefit.Fit(ctx, eval, req.TargetKm, req.Options.TolRatio, req.Options.Iters)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, newErr(Cancelled, "request cancelled during scaling loop", err)
		case errors.Is(err, scalefit.ErrFitFailed):
			return nil, newErr(FitFailed, "no feasible scale found", err)
		case errors.Is(err, shaperoute.ErrTemplateTooSparse):
			return nil, newErr(TemplateTooSparse, "template too sparse after densify/thin", err)
		case errors.Is(err, shaperoute.ErrConnectorTooLong):
			return nil, newErr(ConnectorTooLong, "start connector exceeds max_connector_m", err)
		case errors.Is(err, roadgraph.ErrNoPath):
			return nil, newErr(NoPath, "no path between anchors", err)
		default:
			return nil, newErr(Internal, "scaling loop", err)
		}
	}

	result := outcome.Iterate.Result
	guidePoints := guidance.ExtractWithGap(result.Geo, req.Options.MinWPGapM)

	fc := assembleGeoJSON(req, result, outcome.Matched, outcome.Iterate.Scale)

	var saved *string
	if req.SaveGeoJSON {
		path, err := s.Output.SaveGeoJSON(ctx, fc)
		if err != nil {
			return nil, newErr(OutputUnavailable, "saving geojson output", err)
		}
		saved = &path
	}

	return &Response{
		Metrics: Metrics{
			Nodes:        len(result.Nodes),
			RouteLengthM: result.LengthM,
			TargetKm:     req.TargetKm,
		},
		GeoJSON:   fc,
		Guidance:  GuidanceBundle{GuidancePoints: guidePoints},
		Saved:     saved,
		Matched:   outcome.Matched,
		ScaleUsed: outcome.Iterate.Scale,
	}, nil
}

func validateRequest(req Request) error {
	if req.TemplateName == "" {
		return errors.New("template_name is required")
	}
	if req.TargetKm <= 0 {
		return errors.New("target_km must be positive")
	}
	if req.StartPoint.Lat < -90 || req.StartPoint.Lat > 90 {
		return errors.New("start_point.lat out of range")
	}
	if req.StartPoint.Lng < -180 || req.StartPoint.Lng > 180 {
		return errors.New("start_point.lng out of range")
	}
	return nil
}

// assembleGeoJSON builds the §4.7 FeatureCollection: a single LineString
// feature whose properties are template, align_mode, matched, scale_used
// and name (the route metrics travel in Response.Metrics instead).
func assembleGeoJSON(req Request, result *shaperoute.Result, matched bool, scaleUsed float64) *geojson.FeatureCollection {
	ls := make(orb.LineString, len(result.Geo))
	for i, ll := range result.Geo {
		ls[i] = orb.Point{ll.Lng, ll.Lat}
	}

	feature := geojson.NewFeature(ls)
	feature.Properties = geojson.Properties{
		"template":    req.TemplateName,
		"align_mode":  alignMode(req.Options),
		"matched":     matched,
		"scale_used":  scaleUsed,
		"name":        fmt.Sprintf("%s (%.1fkm)", req.TemplateName, req.TargetKm),
	}

	fc := geojson.NewFeatureCollection()
	fc.Append(feature)
	return fc
}

func alignMode(o Options) string {
	if o.UseAnchors {
		return "anchors"
	}
	return "endpoints"
}
