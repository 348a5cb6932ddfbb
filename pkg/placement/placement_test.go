package placement

import (
	"math"
	"testing"

	"gpsartroute/pkg/geo"
	"gpsartroute/pkg/svgtemplate"
)

func squareUnit() []svgtemplate.Point {
	return []svgtemplate.Point{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	}
}

func TestPlaceScalesByRadiusAndCanvasFrac(t *testing.T) {
	proj := geo.NewProjection(geo.LatLng{Lat: 1.0, Lng: 103.0})
	placed := Place(squareUnit(), proj, Params{
		CanvasBoxFrac:      1.0,
		Scale:              1.0,
		GraphRadiusM:       1000,
		ProximityAlpha:     0, // disable offset to isolate scaling
		ProximityMaxShiftM: 1,
	})

	maxX, maxY := math.Inf(-1), math.Inf(-1)
	minX, minY := math.Inf(1), math.Inf(1)
	for _, p := range placed {
		maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
	}
	spanX, spanY := maxX-minX, maxY-minY
	if math.Abs(spanX-1000) > 1e-6 || math.Abs(spanY-1000) > 1e-6 {
		t.Errorf("span = (%f,%f), want (1000,1000)", spanX, spanY)
	}
}

func TestPlaceProximityOffsetCapped(t *testing.T) {
	proj := geo.NewProjection(geo.LatLng{Lat: 1.0, Lng: 103.0})
	placedFull := Place(squareUnit(), proj, Params{
		CanvasBoxFrac:      1.0,
		Scale:              1.0,
		GraphRadiusM:       10000,
		ProximityAlpha:     1.0,
		ProximityMaxShiftM: 50,
	})

	// Find the point nearest the origin after placement; it should have
	// moved closer to (0,0) than before, but the shift itself must never
	// exceed the cap.
	nearestDist := math.Inf(1)
	for _, p := range placedFull {
		d := math.Hypot(p.X, p.Y)
		if d < nearestDist {
			nearestDist = d
		}
	}
	if nearestDist > 10000 {
		t.Errorf("nearest sample distance %f seems too large given a 50m cap", nearestDist)
	}

	placedNoShift := Place(squareUnit(), proj, Params{
		CanvasBoxFrac: 1.0, Scale: 1.0, GraphRadiusM: 10000, ProximityAlpha: 0, ProximityMaxShiftM: 50,
	})
	shift := math.Hypot(placedFull[0].X-placedNoShift[0].X, placedFull[0].Y-placedNoShift[0].Y)
	if shift > 50+1e-9 {
		t.Errorf("offset magnitude %f exceeds the 50m cap", shift)
	}
}

func TestPlaceRotationPreservesSpanMagnitude(t *testing.T) {
	proj := geo.NewProjection(geo.LatLng{Lat: 1.0, Lng: 103.0})
	base := Place(squareUnit(), proj, Params{
		CanvasBoxFrac: 1.0, Scale: 1.0, GraphRadiusM: 1000, ProximityAlpha: 0, ProximityMaxShiftM: 1,
	})
	rotated := Place(squareUnit(), proj, Params{
		CanvasBoxFrac: 1.0, Scale: 1.0, GraphRadiusM: 1000, GlobalRotDeg: 45, ProximityAlpha: 0, ProximityMaxShiftM: 1,
	})

	baseLen := geo.PolylineLength(append(base, base[0]))
	rotLen := geo.PolylineLength(append(rotated, rotated[0]))
	if math.Abs(baseLen-rotLen) > 1e-6 {
		t.Errorf("rotation changed perimeter: %f vs %f", baseLen, rotLen)
	}
}
