// Package placement maps a normalized unit-square template polyline into
// meter space around a start point, per §4.2: centering, scaling,
// rotation, and a proximity-biased offset.
package placement

import (
	"math"

	"gpsartroute/pkg/geo"
	"gpsartroute/pkg/svgtemplate"
)

// Params bundles the §4.2 inputs beyond the unit polyline and start point.
type Params struct {
	CanvasBoxFrac      float64
	GlobalRotDeg       float64
	Scale              float64 // current scaling-loop iterate
	GraphRadiusM       float64 // reference side length L
	ProximityAlpha     float64
	ProximityMaxShiftM float64
}

// Place maps unit into meter space anchored at proj's origin (the start
// point), following §4.2's center→scale→rotate→proximity-offset pipeline.
func Place(unit []svgtemplate.Point, proj geo.Projection, p Params) []geo.Meter {
	if len(unit) == 0 {
		return nil
	}

	cx, cy := centroid(unit)

	factor := p.CanvasBoxFrac * p.GraphRadiusM * p.Scale
	rot := p.GlobalRotDeg * math.Pi / 180
	cosR, sinR := math.Cos(rot), math.Sin(rot)

	placed := make([]geo.Meter, len(unit))
	for i, pt := range unit {
		x := (pt.X - cx) * factor
		y := (pt.Y - cy) * factor
		rx := x*cosR - y*sinR
		ry := x*sinR + y*cosR
		placed[i] = geo.Meter{X: rx, Y: ry}
	}

	offset := proximityOffset(placed, p.ProximityAlpha, p.ProximityMaxShiftM)
	for i := range placed {
		placed[i].X += offset.X
		placed[i].Y += offset.Y
	}

	return placed
}

func centroid(pts []svgtemplate.Point) (cx, cy float64) {
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(pts))
	return cx / n, cy / n
}

// proximityOffset computes the blended, capped offset of §4.2: the vector
// from the (post scale/rotation) centroid to the negation of the nearest
// template sample to the origin — the start point, since Place's caller
// anchors proj's origin at start — weighted by alpha and capped in
// magnitude.
func proximityOffset(placed []geo.Meter, alpha, maxShiftM float64) geo.Meter {
	if len(placed) == 0 {
		return geo.Meter{}
	}

	nearestIdx := 0
	nearestDist := math.Inf(1)
	for i, p := range placed {
		d := p.X*p.X + p.Y*p.Y
		if d < nearestDist {
			nearestDist = d
			nearestIdx = i
		}
	}
	nearest := placed[nearestIdx]

	// Centroid of `placed` is ~(0,0): it started centered on the unit
	// polyline's own centroid, and scale/rotation about the origin both
	// preserve that. So v = centroid - nearest = -nearest.
	vx, vy := -nearest.X, -nearest.Y

	ox, oy := alpha*vx, alpha*vy
	mag := math.Hypot(ox, oy)
	if mag > maxShiftM && mag > 0 {
		s := maxShiftM / mag
		ox *= s
		oy *= s
	}
	return geo.Meter{X: ox, Y: oy}
}
