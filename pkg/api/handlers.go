package api

import (
	"encoding/json"
	"mime"
	"net/http"

	"gpsartroute/pkg/routeart"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	service *routeart.Service
}

// NewHandlers creates handlers backed by the given orchestration service.
func NewHandlers(service *routeart.Service) *Handlers {
	return &Handlers{service: service}
}

// HandleGenerate handles POST /routes/generate.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeEnvelopeError(w, http.StatusBadRequest, routeart.BadRequest, "Content-Type must be application/json")
		return
	}

	var req GenerateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeEnvelopeError(w, http.StatusBadRequest, routeart.BadRequest, "malformed request body")
		return
	}

	opts := mergeOptions(routeart.Defaults(), req.Options)
	generateReq := routeart.Request{
		TemplateName: req.TemplateName,
		StartPoint: routeart.StartPoint{
			Lat: req.StartPoint.Lat,
			Lng: req.StartPoint.Lng,
		},
		TargetKm:    req.TargetKm,
		Options:     opts,
		SaveGeoJSON: req.SaveGeoJSON,
	}

	resp, err := h.service.Generate(r.Context(), generateReq)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeEnvelopeData(w, toGenerateData(resp))
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

func mergeOptions(base routeart.Options, o OptionsJSON) routeart.Options {
	if o.SVGPathIndex != nil {
		base.SVGPathIndex = o.SVGPathIndex.Value
	}
	if o.SVGSamplesPerSeg != nil {
		base.SVGSamplesPerSeg = *o.SVGSamplesPerSeg
	}
	if o.SVGSimplify != nil {
		base.SVGSimplify = *o.SVGSimplify
	}
	if o.SVGFlipY != nil {
		base.SVGFlipY = *o.SVGFlipY
	}
	if o.CanvasBoxFrac != nil {
		base.CanvasBoxFrac = *o.CanvasBoxFrac
	}
	if o.GlobalRotDeg != nil {
		base.GlobalRotDeg = *o.GlobalRotDeg
	}
	if o.SampleStepM != nil {
		base.SampleStepM = *o.SampleStepM
	}
	if o.MinWPGapM != nil {
		base.MinWPGapM = *o.MinWPGapM
	}
	if o.GraphRadiusM != nil {
		base.GraphRadiusM = *o.GraphRadiusM
	}
	if o.ReturnToStart != nil {
		base.ReturnToStart = *o.ReturnToStart
	}
	if o.TolRatio != nil {
		base.TolRatio = *o.TolRatio
	}
	if o.Iters != nil {
		base.Iters = *o.Iters
	}
	if o.ShapeBiasLambda != nil {
		base.ShapeBiasLambda = *o.ShapeBiasLambda
	}
	if o.AnchorCount != nil {
		base.AnchorCount = *o.AnchorCount
	}
	if o.UseAnchors != nil {
		base.UseAnchors = *o.UseAnchors
	}
	if o.ConnectFromStart != nil {
		base.ConnectFromStart = *o.ConnectFromStart
	}
	if o.MaxConnectorM != nil {
		base.MaxConnectorM = *o.MaxConnectorM
	}
	if o.ProximityAlpha != nil {
		base.ProximityAlpha = *o.ProximityAlpha
	}
	if o.ProximityMaxShiftM != nil {
		base.ProximityMaxShiftM = *o.ProximityMaxShiftM
	}
	return base
}

func toGenerateData(resp *routeart.Response) *GenerateData {
	points := make([]GuidancePointJSON, len(resp.Guidance.GuidancePoints))
	for i, p := range resp.Guidance.GuidancePoints {
		gp := GuidancePointJSON{
			Sequence:           p.Sequence,
			Type:               string(p.Type),
			Lat:                p.Lat,
			Lng:                p.Lng,
			Direction:          string(p.Direction),
			AngleDeg:           p.AngleDeg,
			DistanceFromStartM: p.DistanceFromStartM,
			DistanceToNextM:    p.DistanceToNextM,
			GuidanceID:         p.GuidanceID,
			TriggerDistanceM:   p.TriggerDistanceM,
			ShowPace:           p.ShowPace,
		}
		if p.HasKMMark {
			mark := p.KMMark
			gp.KMMark = &mark
		}
		points[i] = gp
	}

	return &GenerateData{
		Metrics: MetricsJSON{
			Nodes:        resp.Metrics.Nodes,
			RouteLengthM: resp.Metrics.RouteLengthM,
			TargetKm:     resp.Metrics.TargetKm,
		},
		GeoJSON:   resp.GeoJSON,
		Guidance:  GuidanceJSON{GuidancePoints: points},
		Saved:     resp.Saved,
		Matched:   resp.Matched,
		ScaleUsed: resp.ScaleUsed,
	}
}

func writeEnvelopeData(w http.ResponseWriter, data *GenerateData) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Envelope{OK: true, Data: data})
}

func writeEnvelopeError(w http.ResponseWriter, status int, kind routeart.Kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{OK: false, Error: &ErrorJSON{Kind: string(kind), Message: message}})
}

// writeServiceError maps a *routeart.Error to its §6 HTTP status and
// writes the §7 envelope.
func writeServiceError(w http.ResponseWriter, err error) {
	rerr, ok := asRouteartError(err)
	if !ok {
		writeEnvelopeError(w, http.StatusInternalServerError, routeart.Internal, err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch rerr.Kind {
	case routeart.BadRequest, routeart.TemplateInvalid, routeart.TemplateTooSparse,
		routeart.NoPath, routeart.ConnectorTooLong, routeart.FitFailed:
		status = http.StatusBadRequest
	case routeart.TemplateNotFound:
		status = http.StatusNotFound
	case routeart.GraphUnavailable, routeart.OutputUnavailable, routeart.Internal:
		status = http.StatusInternalServerError
	case routeart.Cancelled:
		status = http.StatusServiceUnavailable
	}

	writeEnvelopeError(w, status, rerr.Kind, rerr.Msg)
}

func asRouteartError(err error) (*routeart.Error, bool) {
	rerr, ok := err.(*routeart.Error)
	return rerr, ok
}
