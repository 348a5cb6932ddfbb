package svgtemplate

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// point2 is a 2-D point in the template's own path-description coordinate
// space (before normalization into the unit square).
type point2 struct {
	X, Y float64
}

// segKind distinguishes the interpolation used by Sample.
type segKind int

const (
	segLine segKind = iota
	segQuad
	segCubic
)

// segment is one drawable piece of a sub-path: a line or a quadratic/cubic
// Bezier, carrying its own start/end/control points so sampling needs no
// cursor state.
type segment struct {
	kind       segKind
	p0, p1, p2, p3 point2 // p0=start; end is p1 for a line, p2 for a quad, p3 for a cubic
}

// Sample returns n evenly-t-spaced points along the segment, inclusive of
// both endpoints.
func (s segment) Sample(n int) []point2 {
	if n < 2 {
		n = 2
	}
	pts := make([]point2, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		pts[i] = s.at(t)
	}
	return pts
}

func (s segment) at(t float64) point2 {
	switch s.kind {
	case segLine:
		return lerp(s.p0, s.p1, t)
	case segQuad:
		a := lerp(s.p0, s.p1, t)
		b := lerp(s.p1, s.p2, t)
		return lerp(a, b, t)
	default: // segCubic
		a := lerp(s.p0, s.p1, t)
		b := lerp(s.p1, s.p2, t)
		c := lerp(s.p2, s.p3, t)
		ab := lerp(a, b, t)
		bc := lerp(b, c, t)
		return lerp(ab, bc, t)
	}
}

func lerp(a, b point2, t float64) point2 {
	return point2{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// subpath is a contiguous run of segments from one M command to the next.
type subpath struct {
	segments []segment
}

// endpoints returns the subpath's first and last points.
func (sp subpath) endpoints() (start, end point2) {
	start = sp.segments[0].p0
	last := sp.segments[len(sp.segments)-1]
	switch last.kind {
	case segLine:
		end = last.p1
	case segQuad:
		end = last.p2
	default:
		end = last.p3
	}
	return
}

// reversed returns the subpath with its segments and endpoints swapped,
// used when endpoint-chaining wants to walk it tail-first.
func (sp subpath) reversed() subpath {
	out := make([]segment, len(sp.segments))
	for i, s := range sp.segments {
		var r segment
		r.kind = s.kind
		switch s.kind {
		case segLine:
			r.p0, r.p1 = s.p1, s.p0
		case segQuad:
			r.p0, r.p1, r.p2 = s.p2, s.p1, s.p0
		default:
			r.p0, r.p1, r.p2, r.p3 = s.p3, s.p2, s.p1, s.p0
		}
		out[len(sp.segments)-1-i] = r
	}
	return subpath{segments: out}
}

// parsePathData parses an SVG path "d"-attribute-style description into
// sub-paths, one per M/m command. Supports M/m, L/l, H/h, V/v, C/c, Q/q,
// Z/z — the commands svgpathtools exposes via point()/real/imag that the
// original template pipeline relies on.
func parsePathData(d string) ([]subpath, error) {
	toks := tokenizePath(d)
	if len(toks) == 0 {
		return nil, fmt.Errorf("empty path data")
	}

	var subpaths []subpath
	var cur []segment
	var cursor, subpathStart point2
	var lastCmd byte

	flushSubpath := func() {
		if len(cur) > 0 {
			subpaths = append(subpaths, subpath{segments: cur})
			cur = nil
		}
	}

	i := 0
	readNums := func(n int) ([]float64, error) {
		if i+n > len(toks) {
			return nil, fmt.Errorf("unexpected end of path data")
		}
		out := make([]float64, n)
		for k := 0; k < n; k++ {
			v, err := strconv.ParseFloat(toks[i+k], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q: %w", toks[i+k], err)
			}
			out[k] = v
		}
		i += n
		return out, nil
	}

	for i < len(toks) {
		tok := toks[i]
		var cmd byte
		if len(tok) == 1 && isCmdLetter(tok[0]) {
			cmd = tok[0]
			i++
		} else {
			// Repeated-arguments shorthand: reuse the previous command.
			cmd = lastCmd
			if cmd == 0 {
				return nil, fmt.Errorf("path data starts without a command")
			}
		}

		rel := unicode.IsLower(rune(cmd))
		switch upper(cmd) {
		case 'M':
			flushSubpath()
			nums, err := readNums(2)
			if err != nil {
				return nil, err
			}
			p := point2{X: nums[0], Y: nums[1]}
			if rel {
				p.X += cursor.X
				p.Y += cursor.Y
			}
			cursor = p
			subpathStart = p
		case 'L':
			nums, err := readNums(2)
			if err != nil {
				return nil, err
			}
			p := point2{X: nums[0], Y: nums[1]}
			if rel {
				p.X += cursor.X
				p.Y += cursor.Y
			}
			cur = append(cur, segment{kind: segLine, p0: cursor, p1: p})
			cursor = p
		case 'H':
			nums, err := readNums(1)
			if err != nil {
				return nil, err
			}
			x := nums[0]
			if rel {
				x += cursor.X
			}
			p := point2{X: x, Y: cursor.Y}
			cur = append(cur, segment{kind: segLine, p0: cursor, p1: p})
			cursor = p
		case 'V':
			nums, err := readNums(1)
			if err != nil {
				return nil, err
			}
			y := nums[0]
			if rel {
				y += cursor.Y
			}
			p := point2{X: cursor.X, Y: y}
			cur = append(cur, segment{kind: segLine, p0: cursor, p1: p})
			cursor = p
		case 'Q':
			nums, err := readNums(4)
			if err != nil {
				return nil, err
			}
			c1 := point2{X: nums[0], Y: nums[1]}
			end := point2{X: nums[2], Y: nums[3]}
			if rel {
				c1.X += cursor.X
				c1.Y += cursor.Y
				end.X += cursor.X
				end.Y += cursor.Y
			}
			cur = append(cur, segment{kind: segQuad, p0: cursor, p1: c1, p2: end})
			cursor = end
		case 'C':
			nums, err := readNums(6)
			if err != nil {
				return nil, err
			}
			c1 := point2{X: nums[0], Y: nums[1]}
			c2 := point2{X: nums[2], Y: nums[3]}
			end := point2{X: nums[4], Y: nums[5]}
			if rel {
				c1.X += cursor.X
				c1.Y += cursor.Y
				c2.X += cursor.X
				c2.Y += cursor.Y
				end.X += cursor.X
				end.Y += cursor.Y
			}
			cur = append(cur, segment{kind: segCubic, p0: cursor, p1: c1, p2: c2, p3: end})
			cursor = end
		case 'Z':
			if cursor != subpathStart {
				cur = append(cur, segment{kind: segLine, p0: cursor, p1: subpathStart})
				cursor = subpathStart
			}
		default:
			return nil, fmt.Errorf("unsupported path command %q", cmd)
		}
		lastCmd = cmd
	}
	flushSubpath()

	if len(subpaths) == 0 {
		return nil, fmt.Errorf("path data yielded no sub-paths")
	}
	return subpaths, nil
}

func isCmdLetter(b byte) bool {
	switch upper(b) {
	case 'M', 'L', 'H', 'V', 'Q', 'C', 'Z':
		return true
	}
	return false
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// tokenizePath splits path data into command letters and numeric tokens,
// handling the comma/whitespace-optional, sign-delimited number runs SVG
// path grammar allows (e.g. "1.5-2.3" is two numbers).
func tokenizePath(d string) []string {
	var toks []string
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			toks = append(toks, buf.String())
			buf.Reset()
		}
	}
	runes := []rune(d)
	for idx := 0; idx < len(runes); idx++ {
		r := runes[idx]
		switch {
		case isCmdLetter(byte(r)) || isCmdLetter(upperRune(r)):
			flush()
			toks = append(toks, string(r))
		case r == ',' || unicode.IsSpace(r):
			flush()
		case r == '-' || r == '+':
			// A sign starts a new number unless it's the leading char of
			// the current buffer (exponent signs are not supported, which
			// matches the simple numeric literals templates use).
			if buf.Len() > 0 {
				flush()
			}
			buf.WriteRune(r)
		case r == '.':
			// A second '.' in the same run starts a new number:
			// "1.5.25" means "1.5" then ".25".
			if strings.Contains(buf.String(), ".") {
				flush()
			}
			buf.WriteRune(r)
		default:
			buf.WriteRune(r)
		}
	}
	flush()
	return toks
}

func upperRune(r rune) byte {
	if r >= 'a' && r <= 'z' {
		return byte(r) - 'a' + 'A'
	}
	return byte(r)
}
