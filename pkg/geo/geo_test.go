package geo

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name             string
		lat1, lon1       float64
		lat2, lon2       float64
		wantMeters       float64
		tolerancePercent float64
	}{
		{
			name:             "Raffles Place to Changi Airport",
			lat1:             1.2830, lon1: 103.8513,
			lat2:             1.3644, lon2: 103.9915,
			wantMeters:       18_023,
			tolerancePercent: 1,
		},
		{
			name:             "Same point",
			lat1:             1.3521, lon1: 103.8198,
			lat2:             1.3521, lon2: 103.8198,
			wantMeters:       0,
			tolerancePercent: 0,
		},
		{
			name:             "London to Paris",
			lat1:             51.5074, lon1: -0.1278,
			lat2:             48.8566, lon2: 2.3522,
			wantMeters:       343_500,
			tolerancePercent: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if tt.wantMeters == 0 {
				if got != 0 {
					t.Errorf("expected 0, got %f", got)
				}
				return
			}
			diff := math.Abs(got-tt.wantMeters) / tt.wantMeters * 100
			if diff > tt.tolerancePercent {
				t.Errorf("Haversine = %f m, want ~%f m (diff %.1f%%)", got, tt.wantMeters, diff)
			}
		})
	}
}

func TestProjectionRoundTrip(t *testing.T) {
	origin := LatLng{Lat: 33.4996, Lng: 126.5312}
	proj := NewProjection(origin)

	pts := []LatLng{
		{Lat: 33.5010, Lng: 126.5330},
		{Lat: 33.4980, Lng: 126.5290},
		origin,
	}
	for _, ll := range pts {
		m := proj.ToMeters(ll)
		back := proj.ToLatLng(m)
		if math.Abs(back.Lat-ll.Lat) > 1e-9 || math.Abs(back.Lng-ll.Lng) > 1e-9 {
			t.Errorf("round trip %+v -> %+v -> %+v", ll, m, back)
		}
	}
}

func TestProjectionMatchesHaversineForShortHops(t *testing.T) {
	origin := LatLng{Lat: 33.4996, Lng: 126.5312}
	proj := NewProjection(origin)
	target := LatLng{Lat: 33.5020, Lng: 126.5350}

	meterDist := Dist(Meter{}, proj.ToMeters(target))
	haversineDist := HaversineLatLng(origin, target)

	diffPercent := math.Abs(meterDist-haversineDist) / haversineDist * 100
	if diffPercent > 0.5 {
		t.Errorf("projection distance differs from haversine by %.2f%%", diffPercent)
	}
}

func TestDensifyRespectsStep(t *testing.T) {
	pts := []Meter{{X: 0, Y: 0}, {X: 100, Y: 0}}
	out := Densify(pts, 10)

	if len(out) < 10 {
		t.Fatalf("expected at least 10 points, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		d := Dist(out[i-1], out[i])
		if d > 10+1e-9 {
			t.Errorf("segment %d length %f exceeds step 10", i, d)
		}
	}
	if out[0] != pts[0] || out[len(out)-1] != pts[len(pts)-1] {
		t.Error("Densify must preserve input endpoints")
	}
}

func TestThinEnforcesMinGap(t *testing.T) {
	pts := []Meter{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 20, Y: 0}}
	out := Thin(pts, 10)

	for i := 1; i < len(out)-1; i++ {
		if Dist(out[i-1], out[i]) < 10 {
			t.Errorf("points %d and %d closer than min gap", i-1, i)
		}
	}
	if out[len(out)-1] != pts[len(pts)-1] {
		t.Error("Thin must preserve the final point")
	}
}

func TestNormalizeAngle(t *testing.T) {
	cases := map[float64]float64{
		0:    0,
		180:  180,
		181:  -179,
		-181: 179,
		360:  0,
		-360: 0,
	}
	for in, want := range cases {
		got := NormalizeAngle(in)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("NormalizeAngle(%f) = %f, want %f", in, got, want)
		}
	}
}

func TestBearingStableUnderRotation(t *testing.T) {
	a := Meter{X: 0, Y: 0}
	b := Meter{X: 10, Y: 10}
	b1 := Bearing(a, b)

	rot := 37.0 * math.Pi / 180
	rotate := func(p Meter) Meter {
		return Meter{
			X: p.X*math.Cos(rot) - p.Y*math.Sin(rot),
			Y: p.X*math.Sin(rot) + p.Y*math.Cos(rot),
		}
	}
	b2 := Bearing(rotate(a), rotate(b))

	// rotate turns points counter-clockwise, and Bearing is measured
	// clockwise from north, so every bearing drops by exactly 37 degrees.
	delta := NormalizeAngle(b2 - b1 + 37.0)
	if math.Abs(delta) > 1e-6 {
		t.Errorf("bearing not stable under rotation: delta=%f", delta)
	}
}

func BenchmarkHaversine(b *testing.B) {
	for n := 0; n < b.N; n++ {
		Haversine(1.3521, 103.8198, 1.2905, 103.8520)
	}
}
