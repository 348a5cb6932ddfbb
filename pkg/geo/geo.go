// Package geo provides the meter-scale projection and polyline utilities
// shared by every stage of the route pipeline: placement, shape-biased
// routing, and guidance extraction all work in the same local
// equirectangular projection so that a single start latitude determines
// every meter conversion in a request.
package geo

import "math"

const earthRadiusMeters = 6_371_000.0

// LatLng is a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// Meter is a point in the local projected plane, in meters. X is east,
// Y is north.
type Meter struct {
	X float64
	Y float64
}

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// HaversineLatLng is Haversine over two LatLng values.
func HaversineLatLng(a, b LatLng) float64 {
	return Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
}

// HaversineLength returns the total great-circle length of a polyline.
func HaversineLength(pts []LatLng) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += HaversineLatLng(pts[i-1], pts[i])
	}
	return total
}

// degToMeters converts degree-scaled equirectangular distances to meters.
const degToMeters = math.Pi / 180 * earthRadiusMeters

// DegToMetersApprox returns the approximate number of meters per degree of
// latitude, used by spatial-index search radii that are expressed in
// degrees but need a rough meter bound to decide when to stop widening.
func DegToMetersApprox() float64 {
	return degToMeters
}

// Projection is a local equirectangular projection anchored at an origin
// latitude/longitude. Design Note 9 requires every meter conversion in a
// single request to share one such projection, parameterized by the
// start latitude, for reproducibility.
type Projection struct {
	originLat float64
	originLng float64
	cosLat    float64
}

// NewProjection anchors a projection at origin.
func NewProjection(origin LatLng) Projection {
	return Projection{
		originLat: origin.Lat,
		originLng: origin.Lng,
		cosLat:    math.Cos(origin.Lat * math.Pi / 180),
	}
}

// ToMeters converts a geographic point to the local projected plane.
func (p Projection) ToMeters(ll LatLng) Meter {
	dLat := ll.Lat - p.originLat
	dLng := ll.Lng - p.originLng
	return Meter{
		X: dLng * math.Pi / 180 * earthRadiusMeters * p.cosLat,
		Y: dLat * math.Pi / 180 * earthRadiusMeters,
	}
}

// ToLatLng converts a point in the local projected plane back to geographic
// coordinates.
func (p Projection) ToLatLng(m Meter) LatLng {
	dLat := m.Y / earthRadiusMeters * 180 / math.Pi
	dLng := m.X / (earthRadiusMeters * p.cosLat) * 180 / math.Pi
	return LatLng{Lat: p.originLat + dLat, Lng: p.originLng + dLng}
}

// ToLatLngs converts a whole meter-space polyline.
func (p Projection) ToLatLngs(pts []Meter) []LatLng {
	out := make([]LatLng, len(pts))
	for i, m := range pts {
		out[i] = p.ToLatLng(m)
	}
	return out
}

// Dist returns the Euclidean distance in meters between two Meter points.
func Dist(a, b Meter) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// PolylineLength sums consecutive Euclidean distances in meter space.
func PolylineLength(pts []Meter) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += Dist(pts[i-1], pts[i])
	}
	return total
}

// Densify inserts evenly spaced points along a meter-space polyline so
// that no two consecutive points are farther apart than step. Endpoints
// of the input are always preserved.
func Densify(pts []Meter, step float64) []Meter {
	if len(pts) < 2 || step <= 0 {
		return pts
	}
	out := []Meter{pts[0]}
	remain := 0.0
	for i := 1; i < len(pts); i++ {
		x1, y1 := pts[i-1].X, pts[i-1].Y
		x2, y2 := pts[i].X, pts[i].Y
		segLen := math.Hypot(x2-x1, y2-y1)
		if segLen == 0 {
			continue
		}
		d := remain
		for d+step <= segLen {
			t := (d + step) / segLen
			out = append(out, Meter{X: x1 + (x2-x1)*t, Y: y1 + (y2-y1)*t})
			d += step
		}
		remain = d - segLen
	}
	last := pts[len(pts)-1]
	if out[len(out)-1] != last {
		out = append(out, last)
	}
	return out
}

// Thin drops points closer than minGap to the last kept point.
func Thin(pts []Meter, minGap float64) []Meter {
	if len(pts) == 0 {
		return pts
	}
	out := []Meter{pts[0]}
	last := pts[0]
	for _, p := range pts[1:] {
		if Dist(p, last) >= minGap {
			out = append(out, p)
			last = p
		}
	}
	// Always keep the true endpoint even if it falls inside minGap of the
	// last kept sample, so routing anchors still reach the template's end.
	if out[len(out)-1] != pts[len(pts)-1] {
		out = append(out, pts[len(pts)-1])
	}
	return out
}

// DistanceToPolyline returns the minimum Euclidean distance in meters from
// p to any segment of poly. Used by shape-biased routing to measure how
// far a candidate edge strays from the ideal template trajectory.
func DistanceToPolyline(p Meter, poly []Meter) float64 {
	if len(poly) == 0 {
		return math.Inf(1)
	}
	if len(poly) == 1 {
		return Dist(p, poly[0])
	}
	best := math.Inf(1)
	for i := 0; i+1 < len(poly); i++ {
		d := distToSegment(p, poly[i], poly[i+1])
		if d < best {
			best = d
		}
	}
	return best
}

func distToSegment(p, a, b Meter) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return Dist(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := Meter{X: a.X + t*dx, Y: a.Y + t*dy}
	return Dist(p, proj)
}

// Bearing returns the compass bearing in degrees, [-180, 180], from a to b
// in meter space (0 = north, 90 = east).
func Bearing(a, b Meter) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Atan2(dx, dy) * 180 / math.Pi
}

// NormalizeAngle wraps an angle in degrees to (-180, 180].
func NormalizeAngle(a float64) float64 {
	for a <= -180 {
		a += 360
	}
	for a > 180 {
		a -= 360
	}
	return a
}
