// Package guidance derives turn-by-turn instructions from a routed
// geographic polyline, per §4.6.
package guidance

import (
	"math"

	"gpsartroute/pkg/geo"
	"gpsartroute/pkg/roadgraph"
)

// Direction is the §3 guidance direction vocabulary.
type Direction string

const (
	DirLeft        Direction = "left"
	DirRight       Direction = "right"
	DirStraight    Direction = "straight"
	DirUTurn       Direction = "u_turn"
	DirSlightLeft  Direction = "slight_left"
	DirSlightRight Direction = "slight_right"
	DirSharpLeft   Direction = "sharp_left"
	DirSharpRight  Direction = "sharp_right"
)

// Type is the §3 guidance point type vocabulary.
type Type string

const (
	TypeStart      Type = "start"
	TypeTurn       Type = "turn"
	TypeKM         Type = "km"
	TypeFinish     Type = "finish"
	TypeCheckpoint Type = "checkpoint"
	TypeEvent      Type = "event"
)

// Stable guidance template ids, per spec.md §9's GUIDANCE_TEMPLATES set.
// Only the start/turn/finish ids are declared here; of these,
// TURN_LEFT_10 and TURN_RIGHT_10 are never emitted by Extract, since
// turnID only sees angles of 30 degrees or more. The rest of §9's
// vocabulary (checkpoint, off-route, long straight stretches) has no
// producer in §4.6 and is left for whichever component gains that behavior.
const (
	IDRunStart      = "RUN_START"
	IDTurnLeft10    = "TURN_LEFT_10"
	IDTurnLeft30    = "TURN_LEFT_30"
	IDTurnLeft50    = "TURN_LEFT_50"
	IDTurnRight10   = "TURN_RIGHT_10"
	IDTurnRight30   = "TURN_RIGHT_30"
	IDTurnRight50   = "TURN_RIGHT_50"
	IDSlightLeft    = "SLIGHT_LEFT"
	IDSlightRight   = "SLIGHT_RIGHT"
	IDSharpLeft     = "SHARP_LEFT"
	IDSharpRight    = "SHARP_RIGHT"
	IDUTurn         = "U_TURN"
	IDRouteComplete = "ROUTE_COMPLETE"
)

// triggerDistances are the candidate trigger_distance_m values a turn may
// take, largest-first so the first one not exceeding the gap to the
// previous guidance wins.
var triggerDistances = []float64{50, 30, 10}

const uTurnDefaultTrigger = 15.0

// Point is a single guidance point on the final polyline.
type Point struct {
	Sequence           int
	Type               Type
	Lat, Lng           float64
	Direction          Direction
	AngleDeg           float64
	DistanceFromStartM float64
	DistanceToNextM    float64
	GuidanceID         string
	TriggerDistanceM   float64
	KMMark             int
	HasKMMark          bool
	ShowPace           bool
}

// Extract runs the §4.6 algorithm over a routed geographic polyline,
// using a permissive default merge gap. Callers that have the request's
// actual min_wp_gap_m should use ExtractWithGap instead.
func Extract(poly []roadgraph.LatLng) []Point {
	return ExtractWithGap(poly, defaultMergeGapM)
}

// ExtractWithGap runs the §4.6 algorithm with minWPGapM as the merging
// rule's distance threshold.
func ExtractWithGap(poly []roadgraph.LatLng, minWPGapM float64) []Point {
	if len(poly) == 0 {
		return nil
	}
	cum := cumulativeDistances(poly)
	total := cum[len(cum)-1]

	points := []Point{{
		Type:               TypeStart,
		Lat:                poly[0].Lat,
		Lng:                poly[0].Lng,
		Direction:           DirStraight,
		DistanceFromStartM: 0,
		GuidanceID:          IDRunStart,
	}}

	lastGuidanceDist := 0.0
	for i := 1; i+1 < len(poly); i++ {
		inBearing := bearingLL(poly[i-1], poly[i])
		outBearing := bearingLL(poly[i], poly[i+1])
		angle := geo.NormalizeAngle(outBearing - inBearing)
		if math.Abs(angle) < 15 {
			continue
		}

		dir, id := classify(angle)
		gapToPrev := cum[i] - lastGuidanceDist
		trigger := pickTrigger(gapToPrev, dir == DirUTurn)

		points = append(points, Point{
			Type:                TypeTurn,
			Lat:                 poly[i].Lat,
			Lng:                 poly[i].Lng,
			Direction:           dir,
			AngleDeg:            angle,
			DistanceFromStartM:  cum[i],
			GuidanceID:          id,
			TriggerDistanceM:    trigger,
		})
		lastGuidanceDist = cum[i]
	}

	points = mergeCloseSameSignTurns(points, minWPGapM)
	points = insertKMMarks(points, poly, cum, total)

	points = append(points, Point{
		Type:                TypeFinish,
		Lat:                 poly[len(poly)-1].Lat,
		Lng:                 poly[len(poly)-1].Lng,
		Direction:            DirStraight,
		DistanceFromStartM:  total,
		GuidanceID:          IDRouteComplete,
	})

	resequence(points, total)
	return points
}

const defaultMergeGapM = 25.0

func cumulativeDistances(poly []roadgraph.LatLng) []float64 {
	cum := make([]float64, len(poly))
	for i := 1; i < len(poly); i++ {
		cum[i] = cum[i-1] + geo.HaversineLatLng(
			geo.LatLng{Lat: poly[i-1].Lat, Lng: poly[i-1].Lng},
			geo.LatLng{Lat: poly[i].Lat, Lng: poly[i].Lng},
		)
	}
	return cum
}

// bearingLL delegates to geo.Bearing by projecting b into a's local
// meter-space frame; the projection's scale factor cancels inside
// Bearing's atan2, so this gives the exact compass bearing from a to b.
func bearingLL(a, b roadgraph.LatLng) float64 {
	proj := geo.NewProjection(geo.LatLng{Lat: a.Lat, Lng: a.Lng})
	bm := proj.ToMeters(geo.LatLng{Lat: b.Lat, Lng: b.Lng})
	return geo.Bearing(geo.Meter{}, bm)
}

// classify buckets a signed turn angle per §4.6 step 2. Negative is left.
func classify(angle float64) (Direction, string) {
	a := math.Abs(angle)
	left := angle < 0

	switch {
	case a >= 150:
		return DirUTurn, IDUTurn
	case a >= 60:
		if left {
			return DirSharpLeft, IDSharpLeft
		}
		return DirSharpRight, IDSharpRight
	case a >= 30:
		if left {
			return DirLeft, turnID(left, a)
		}
		return DirRight, turnID(left, a)
	default: // 15 <= a < 30
		if left {
			return DirSlightLeft, IDSlightLeft
		}
		return DirSlightRight, IDSlightRight
	}
}

// turnID picks the TURN_LEFT_nn / TURN_RIGHT_nn id from the turn angle's
// magnitude, not from the turn's trigger distance: 50 degrees or more
// gives _50, 30 or more gives _30, and anything smaller gives _10.
func turnID(left bool, angle float64) string {
	bucket := "30"
	switch {
	case angle >= 50:
		bucket = "50"
	case angle >= 30:
		bucket = "30"
	default:
		bucket = "10"
	}
	if left {
		switch bucket {
		case "50":
			return IDTurnLeft50
		case "10":
			return IDTurnLeft10
		default:
			return IDTurnLeft30
		}
	}
	switch bucket {
	case "50":
		return IDTurnRight50
	case "10":
		return IDTurnRight10
	default:
		return IDTurnRight30
	}
}

// pickTrigger selects the largest candidate in {10,30,50} not exceeding
// gapToPrev, defaulting to 15 for u-turns per §4.6 step 3.
func pickTrigger(gapToPrev float64, isUTurn bool) float64 {
	if isUTurn {
		return uTurnDefaultTrigger
	}
	for _, d := range triggerDistances {
		if d <= gapToPrev {
			return d
		}
	}
	return triggerDistances[len(triggerDistances)-1]
}

// mergeCloseSameSignTurns drops the smaller-|angle| of any two consecutive
// turn points within minWPGapM of each other that share a sign.
func mergeCloseSameSignTurns(points []Point, minWPGapM float64) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Type != TypeTurn || len(out) == 0 {
			out = append(out, p)
			continue
		}
		prev := &out[len(out)-1]
		if prev.Type == TypeTurn &&
			math.Abs(p.DistanceFromStartM-prev.DistanceFromStartM) <= minWPGapM &&
			sameSign(p.AngleDeg, prev.AngleDeg) {
			if math.Abs(p.AngleDeg) > math.Abs(prev.AngleDeg) {
				out[len(out)-1] = p
			}
			continue
		}
		out = append(out, p)
	}
	return out
}

func sameSign(a, b float64) bool {
	return (a < 0 && b < 0) || (a > 0 && b > 0) || (a == 0 && b == 0)
}

// insertKMMarks inserts a km guidance at each integral kilometer boundary
// by interpolating along the polyline, per §4.6 step 4.
func insertKMMarks(points []Point, poly []roadgraph.LatLng, cum []float64, total float64) []Point {
	marks := int(total / 1000)
	if marks == 0 {
		return points
	}

	kmPoints := make([]Point, 0, marks)
	for k := 1; k <= marks; k++ {
		target := float64(k) * 1000
		lat, lng := interpolateAt(poly, cum, target)
		kmPoints = append(kmPoints, Point{
			Type:                TypeKM,
			Lat:                 lat,
			Lng:                 lng,
			Direction:           DirStraight,
			DistanceFromStartM:  target,
			KMMark:              k,
			HasKMMark:           true,
			ShowPace:            true,
		})
	}

	out := make([]Point, 0, len(points)+len(kmPoints))
	ki := 0
	for _, p := range points {
		for ki < len(kmPoints) && kmPoints[ki].DistanceFromStartM < p.DistanceFromStartM {
			out = append(out, kmPoints[ki])
			ki++
		}
		out = append(out, p)
	}
	for ; ki < len(kmPoints); ki++ {
		out = append(out, kmPoints[ki])
	}
	return out
}

// interpolateAt returns the lat/lng at cumulative distance target along
// poly, whose cumulative distances are cum.
func interpolateAt(poly []roadgraph.LatLng, cum []float64, target float64) (float64, float64) {
	for i := 1; i < len(cum); i++ {
		if cum[i] >= target {
			segLen := cum[i] - cum[i-1]
			if segLen <= 0 {
				return poly[i].Lat, poly[i].Lng
			}
			t := (target - cum[i-1]) / segLen
			lat := poly[i-1].Lat + (poly[i].Lat-poly[i-1].Lat)*t
			lng := poly[i-1].Lng + (poly[i].Lng-poly[i-1].Lng)*t
			return lat, lng
		}
	}
	last := poly[len(poly)-1]
	return last.Lat, last.Lng
}

// resequence numbers points 1..K and fills distance_to_next_m.
func resequence(points []Point, total float64) {
	for i := range points {
		points[i].Sequence = i + 1
		if i+1 < len(points) {
			points[i].DistanceToNextM = points[i+1].DistanceFromStartM - points[i].DistanceFromStartM
		} else {
			points[i].DistanceToNextM = 0
		}
	}
}
