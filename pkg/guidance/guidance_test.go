package guidance

import (
	"testing"

	"gpsartroute/pkg/roadgraph"
)

// rightAngleTurnPoly walks east, then turns south at (1.000, 103.810),
// producing a single clean ~90 degree right turn roughly 1100m in.
func rightAngleTurnPoly() []roadgraph.LatLng {
	return []roadgraph.LatLng{
		{Lat: 1.000, Lng: 103.800},
		{Lat: 1.000, Lng: 103.805},
		{Lat: 1.000, Lng: 103.810},
		{Lat: 0.995, Lng: 103.810},
		{Lat: 0.990, Lng: 103.810},
	}
}

func TestExtractEmitsStartAndFinish(t *testing.T) {
	points := Extract(rightAngleTurnPoly())
	if len(points) < 2 {
		t.Fatalf("expected at least start+finish, got %d points", len(points))
	}
	if points[0].Type != TypeStart || points[0].GuidanceID != IDRunStart {
		t.Errorf("first point = %+v, want start/RUN_START", points[0])
	}
	last := points[len(points)-1]
	if last.Type != TypeFinish || last.GuidanceID != IDRouteComplete {
		t.Errorf("last point = %+v, want finish/ROUTE_COMPLETE", last)
	}
	if last.DistanceToNextM != 0 {
		t.Errorf("last DistanceToNextM = %f, want 0", last.DistanceToNextM)
	}
}

func TestExtractDetectsRightTurn(t *testing.T) {
	points := Extract(rightAngleTurnPoly())

	var turns []Point
	for _, p := range points {
		if p.Type == TypeTurn {
			turns = append(turns, p)
		}
	}
	if len(turns) != 1 {
		t.Fatalf("expected exactly one turn, got %d", len(turns))
	}
	turn := turns[0]
	if turn.Direction != DirRight && turn.Direction != DirSharpRight {
		t.Errorf("Direction = %s, want a right-hand turn", turn.Direction)
	}
	if turn.AngleDeg <= 0 {
		t.Errorf("AngleDeg = %f, want positive (right)", turn.AngleDeg)
	}
}

func TestExtractSequenceIsContiguousAndMonotone(t *testing.T) {
	points := Extract(rightAngleTurnPoly())
	for i, p := range points {
		if p.Sequence != i+1 {
			t.Errorf("point %d: Sequence = %d, want %d", i, p.Sequence, i+1)
		}
		if i > 0 && p.DistanceFromStartM < points[i-1].DistanceFromStartM {
			t.Errorf("point %d: DistanceFromStartM decreased (%f < %f)", i, p.DistanceFromStartM, points[i-1].DistanceFromStartM)
		}
	}
}

func TestExtractInsertsKMMarks(t *testing.T) {
	// A straight line roughly 2.2km long should get two km marks.
	poly := []roadgraph.LatLng{
		{Lat: 1.000, Lng: 103.800},
		{Lat: 1.000, Lng: 103.820},
	}
	points := Extract(poly)

	var kmMarks []int
	for _, p := range points {
		if p.Type == TypeKM {
			kmMarks = append(kmMarks, p.KMMark)
			if !p.ShowPace {
				t.Errorf("km mark %d: ShowPace = false, want true", p.KMMark)
			}
		}
	}
	if len(kmMarks) < 1 {
		t.Fatalf("expected at least one km mark on a >1km straight line")
	}
	for i, m := range kmMarks {
		if m != i+1 {
			t.Errorf("km mark %d = %d, want %d", i, m, i+1)
		}
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	poly := rightAngleTurnPoly()
	a := Extract(poly)
	b := Extract(poly)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("point %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestPickTriggerDefaultsForUTurn(t *testing.T) {
	if got := pickTrigger(1000, true); got != uTurnDefaultTrigger {
		t.Errorf("pickTrigger(uturn) = %f, want %f", got, uTurnDefaultTrigger)
	}
}

func TestPickTriggerPicksLargestNotExceedingGap(t *testing.T) {
	if got := pickTrigger(40, false); got != 30 {
		t.Errorf("pickTrigger(40) = %f, want 30", got)
	}
	if got := pickTrigger(5, false); got != 10 {
		t.Errorf("pickTrigger(5) = %f, want smallest bucket 10", got)
	}
}

func TestClassifyBuckets(t *testing.T) {
	cases := []struct {
		angle float64
		want  Direction
	}{
		{20, DirSlightRight},
		{-20, DirSlightLeft},
		{45, DirRight},
		{-45, DirLeft},
		{90, DirSharpRight},
		{-90, DirSharpLeft},
		{170, DirUTurn},
		{-170, DirUTurn},
	}
	for _, c := range cases {
		dir, _ := classify(c.angle)
		if dir != c.want {
			t.Errorf("classify(%f) = %s, want %s", c.angle, dir, c.want)
		}
	}
}

func TestMergeCloseSameSignTurnsKeepsLargerAngle(t *testing.T) {
	points := []Point{
		{Type: TypeTurn, DistanceFromStartM: 100, AngleDeg: 20},
		{Type: TypeTurn, DistanceFromStartM: 110, AngleDeg: 35},
	}
	merged := mergeCloseSameSignTurns(points, 25)
	if len(merged) != 1 {
		t.Fatalf("expected merge down to 1 turn, got %d", len(merged))
	}
	if merged[0].AngleDeg != 35 {
		t.Errorf("AngleDeg = %f, want 35 (the larger magnitude)", merged[0].AngleDeg)
	}
}

func TestMergeCloseSameSignTurnsKeepsOppositeSignsSeparate(t *testing.T) {
	points := []Point{
		{Type: TypeTurn, DistanceFromStartM: 100, AngleDeg: 20},
		{Type: TypeTurn, DistanceFromStartM: 110, AngleDeg: -35},
	}
	merged := mergeCloseSameSignTurns(points, 25)
	if len(merged) != 2 {
		t.Fatalf("expected both opposite-sign turns kept, got %d", len(merged))
	}
}
