package scalefit

import (
	"context"
	"errors"
	"math"
	"testing"

	"gpsartroute/pkg/shaperoute"
)

// linearEval simulates a routing pipeline whose length grows linearly with
// scale, the weak-monotonicity property of §8 testable property 6.
func linearEval(metersPerScale float64) EvalFunc {
	return func(ctx context.Context, scale float64) (*shaperoute.Result, error) {
		return &shaperoute.Result{LengthM: scale * metersPerScale}, nil
	}
}

func TestFitConvergesWithinTolerance(t *testing.T) {
	// At scale=1, length=5000m. Target 5km with 5% tolerance should match
	// near scale=1.
	outcome, err := Fit(context.Background(), linearEval(5000), 5.0, 0.05, 16)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if !outcome.Matched {
		t.Errorf("expected matched=true, got false (length=%f)", outcome.Iterate.LengthM)
	}
	wantM := 5000.0
	if math.Abs(outcome.Iterate.LengthM-wantM) > 0.05*wantM {
		t.Errorf("LengthM = %f, want within 5%% of %f", outcome.Iterate.LengthM, wantM)
	}
}

func TestFitBracketGrowsWhenTargetBelowInitialLo(t *testing.T) {
	// metersPerScale=10000: at s_lo=0.2, length=2000m already. A target of
	// 500m requires growing below 0.2.
	outcome, err := Fit(context.Background(), linearEval(10000), 0.5, 0.1, 16)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if outcome.Iterate.Scale <= 0 {
		t.Errorf("Scale = %f, want > 0", outcome.Iterate.Scale)
	}
	if outcome.Iterate.Scale >= initialSLo {
		t.Errorf("Scale = %f, want < initial s_lo %f after bracket-grow", outcome.Iterate.Scale, initialSLo)
	}
}

func TestFitBracketGrowsWhenTargetAboveInitialHi(t *testing.T) {
	// metersPerScale=100: at s_hi=3.0, length=300m. A target of 50km
	// requires growing above 3.0.
	outcome, err := Fit(context.Background(), linearEval(100), 50.0, 0.1, 16)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if outcome.Iterate.Scale <= initialSHi {
		t.Errorf("Scale = %f, want > initial s_hi %f after bracket-grow", outcome.Iterate.Scale, initialSHi)
	}
}

func TestFitReturnsBestEffortWhenUnreachable(t *testing.T) {
	// A target far outside any achievable range within iters steps, with a
	// tolerance tight enough that nothing matches.
	outcome, err := Fit(context.Background(), linearEval(1), 1000000.0, 0.0001, 4)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if outcome.Matched {
		t.Error("expected matched=false for an unreachable target")
	}
}

func TestFitConnectorTooLongTreatedAsZeroLength(t *testing.T) {
	calls := 0
	eval := func(ctx context.Context, scale float64) (*shaperoute.Result, error) {
		calls++
		if scale < 1.0 {
			return nil, shaperoute.ErrConnectorTooLong
		}
		return &shaperoute.Result{LengthM: scale * 1000}, nil
	}

	outcome, err := Fit(context.Background(), eval, 2.0, 0.1, 16)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if outcome.Iterate.LengthM <= 0 && !outcome.Matched {
		t.Errorf("expected a feasible non-zero-length iterate to win, got %f", outcome.Iterate.LengthM)
	}
}

func TestFitFatalErrorAborts(t *testing.T) {
	boom := errors.New("template invalid")
	eval := func(ctx context.Context, scale float64) (*shaperoute.Result, error) {
		return nil, boom
	}

	_, err := Fit(context.Background(), eval, 2.0, 0.1, 16)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}
