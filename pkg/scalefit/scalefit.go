// Package scalefit implements the §4.5 binary search over a template
// scale multiplier that drives the routed on-road length toward a target
// distance.
package scalefit

import (
	"context"
	"errors"
	"math"

	"gpsartroute/pkg/roadgraph"
	"gpsartroute/pkg/shaperoute"
)

// ErrFitFailed is returned when every evaluated scale was infeasible.
var ErrFitFailed = errors.New("no feasible scale found")

const (
	initialSLo = 0.2
	initialSHi = 3.0
)

// EvalFunc runs placement + shape-biased routing at a given scale and
// returns the resulting route, or a non-fatal routing error
// (shaperoute.ErrConnectorTooLong, roadgraph.ErrNoPath) that the fit loop
// treats as an infeasible iterate rather than aborting. Any other error is
// fatal and aborts the fit immediately.
type EvalFunc func(ctx context.Context, scale float64) (*shaperoute.Result, error)

// Iterate records one evaluated scale and its outcome.
type Iterate struct {
	Scale   float64
	LengthM float64
	Result  *shaperoute.Result
}

// Outcome is the result of Fit: the accepted (or best-effort) iterate and
// whether it actually met tolerance.
type Outcome struct {
	Iterate Iterate
	Matched bool
}

// Fit runs the §4.5 binary search. targetKm and tolRatio follow §3;
// iters bounds the number of bisection steps (the two bracket-grow
// evaluations, if needed, are not counted against it).
func Fit(ctx context.Context, eval EvalFunc, targetKm, tolRatio float64, iters int) (*Outcome, error) {
	targetM := targetKm * 1000
	tolM := tolRatio * targetM

	sLo, sHi := initialSLo, initialSHi

	// best tracks only iterates that produced an actual route (Result !=
	// nil); an infeasible iterate (ConnectorTooLong/NoPath) has nothing to
	// report even if its synthetic L happens to be numerically closest.
	var best *Iterate
	consider := func(it Iterate) {
		if it.Result == nil {
			return
		}
		if best == nil || math.Abs(it.LengthM-targetM) < math.Abs(best.LengthM-targetM) {
			bestCopy := it
			best = &bestCopy
		}
	}

	evalAt := func(s float64) (Iterate, error) {
		if err := ctx.Err(); err != nil {
			return Iterate{}, err
		}
		res, err := eval(ctx, s)
		if err != nil {
			switch {
			case errors.Is(err, shaperoute.ErrConnectorTooLong):
				// No anchors could be reached at all.
				return Iterate{Scale: s, LengthM: 0}, nil
			case errors.Is(err, roadgraph.ErrNoPath):
				// Failure mid-stitch on a sub-segment.
				return Iterate{Scale: s, LengthM: math.Inf(1)}, nil
			default:
				return Iterate{}, err
			}
		}
		return Iterate{Scale: s, LengthM: res.LengthM, Result: res}, nil
	}

	loIt, err := evalAt(sLo)
	if err != nil {
		return nil, err
	}
	consider(loIt)

	hiIt, err := evalAt(sHi)
	if err != nil {
		return nil, err
	}
	consider(hiIt)

	// Bracket-grow: widen once if the initial bracket doesn't span target.
	if loIt.LengthM > targetM {
		sLo /= 2
		loIt, err = evalAt(sLo)
		if err != nil {
			return nil, err
		}
		consider(loIt)
	}
	if hiIt.LengthM < targetM {
		sHi *= 2
		hiIt, err = evalAt(sHi)
		if err != nil {
			return nil, err
		}
		consider(hiIt)
	}

	for i := 0; i < iters; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s := (sLo + sHi) / 2
		it, err := evalAt(s)
		if err != nil {
			return nil, err
		}
		consider(it)

		if it.Result != nil && math.Abs(it.LengthM-targetM) <= tolM {
			return &Outcome{Iterate: it, Matched: true}, nil
		}
		if it.LengthM < targetM {
			sLo = s
		} else {
			sHi = s
		}
	}

	if best == nil || best.Result == nil {
		return nil, ErrFitFailed
	}
	return &Outcome{Iterate: *best, Matched: false}, nil
}
