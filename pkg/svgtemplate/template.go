// Package svgtemplate loads a 2-D vector template from a path-description
// string into a normalized unit-square polyline ready for placement.
package svgtemplate

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// Options configures template loading, matching the svg_* keys of §3.
type Options struct {
	PathIndex     int // ignored when Auto is set
	Auto          bool
	SamplesPerSeg int
	Simplify      float64 // Douglas-Peucker tolerance in unit coordinates; 0 disables
	FlipY         bool
}

// Point is a 2-D point in unit coordinates, both axes in [0,1].
type Point struct {
	X, Y float64
}

// Load parses pathData and returns the normalized unit-square polyline.
func Load(pathData []byte, opts Options) ([]Point, error) {
	subpaths, err := parsePathData(string(pathData))
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	var chosen subpath
	if opts.Auto {
		chosen, err = mergeByEndpointProximity(subpaths)
		if err != nil {
			return nil, err
		}
	} else {
		if opts.PathIndex < 0 || opts.PathIndex >= len(subpaths) {
			return nil, fmt.Errorf("svg_path_index %d out of range [0,%d)", opts.PathIndex, len(subpaths))
		}
		chosen = subpaths[opts.PathIndex]
	}

	samplesPerSeg := opts.SamplesPerSeg
	if samplesPerSeg <= 0 {
		samplesPerSeg = 8
	}
	pts := sampleSubpath(chosen, samplesPerSeg+1)
	if len(pts) == 0 {
		return nil, fmt.Errorf("template sampling produced zero points")
	}

	unit, err := letterboxNormalize(pts, opts.FlipY)
	if err != nil {
		return nil, err
	}

	if opts.Simplify > 0 {
		unit = simplifyUnit(unit, opts.Simplify)
	}

	return unit, nil
}

// mergeByEndpointProximity implements §4.1's "merge all sub-paths into one
// polyline by greedy endpoint chaining": starting from sub-path 0 in
// (min(x), min(y))-sorted insertion order, repeatedly append whichever
// remaining sub-path has the endpoint closest to the current tail,
// reversing it if its far endpoint is the closer one. Ties are broken by
// the initial sort order, which is the insertion order.
func mergeByEndpointProximity(subpaths []subpath) (subpath, error) {
	var usable []subpath
	for _, sp := range subpaths {
		if len(sp.segments) > 0 {
			usable = append(usable, sp)
		}
	}
	if len(usable) == 0 {
		return subpath{}, fmt.Errorf("no usable sub-paths")
	}

	sort.SliceStable(usable, func(i, j int) bool {
		si, ei := usable[i].endpoints()
		sj, ej := usable[j].endpoints()
		xi, yi := math.Min(si.X, ei.X), math.Min(si.Y, ei.Y)
		xj, yj := math.Min(sj.X, ej.X), math.Min(sj.Y, ej.Y)
		if xi != xj {
			return xi < xj
		}
		return yi < yj
	})

	merged := []segment{}
	merged = append(merged, usable[0].segments...)
	unused := usable[1:]

	for len(unused) > 0 {
		_, tail := subpath{segments: merged}.endpoints()

		bestIdx := -1
		bestRev := false
		bestDist := math.Inf(1)
		for idx, cand := range unused {
			s, e := cand.endpoints()
			if d := dist2(tail, s); d < bestDist {
				bestDist, bestIdx, bestRev = d, idx, false
			}
			if d := dist2(tail, e); d < bestDist {
				bestDist, bestIdx, bestRev = d, idx, true
			}
		}

		next := unused[bestIdx]
		if bestRev {
			next = next.reversed()
		}
		merged = append(merged, next.segments...)
		unused = append(unused[:bestIdx], unused[bestIdx+1:]...)
	}

	return subpath{segments: merged}, nil
}

func dist2(a, b point2) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

func sampleSubpath(sp subpath, perSeg int) []Point {
	var pts []Point
	for i, seg := range sp.segments {
		samples := seg.Sample(perSeg)
		start := 0
		if i > 0 {
			start = 1 // avoid duplicating the shared joint point
		}
		for _, p := range samples[start:] {
			pts = append(pts, Point{X: p.X, Y: p.Y})
		}
	}
	return pts
}

// letterboxNormalize affine-maps pts into [0,1]x[0,1] while preserving
// aspect ratio: the longer axis fills [0,1] and the shorter axis is
// centered (letterboxed), per §4.1.
func letterboxNormalize(pts []Point, flipY bool) ([]Point, error) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	spanX := maxX - minX
	spanY := maxY - minY
	if spanX <= 0 && spanY <= 0 {
		return nil, fmt.Errorf("degenerate bounding box")
	}

	span := math.Max(spanX, spanY)
	if span == 0 {
		span = 1
	}

	out := make([]Point, len(pts))
	for i, p := range pts {
		x := (p.X - minX) / span
		y := (p.Y - minY) / span
		// Center the shorter axis within the unit square.
		x += (1 - spanX/span) / 2
		y += (1 - spanY/span) / 2
		if flipY {
			y = 1 - y
		}
		out[i] = Point{X: x, Y: y}
	}
	return out, nil
}

// simplifyUnit applies Douglas-Peucker simplification in unit coordinates
// via orb/simplify, resolving §9's open question in favor of unit-space
// tolerance.
func simplifyUnit(pts []Point, tolerance float64) []Point {
	ls := make(orb.LineString, len(pts))
	for i, p := range pts {
		ls[i] = orb.Point{p.X, p.Y}
	}
	simplifier := simplify.DouglasPeucker(tolerance)
	out := simplifier.Simplify(ls.Clone()).(orb.LineString)

	result := make([]Point, len(out))
	for i, p := range out {
		result[i] = Point{X: p[0], Y: p[1]}
	}
	return result
}
