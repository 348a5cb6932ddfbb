package roadgraph

import (
	"math"

	"github.com/tidwall/rtree"

	"gpsartroute/pkg/geo"
	"gpsartroute/pkg/graph"
)

// Snapper provides nearest-node lookup backed by an rtree spatial index
// over node coordinates.
type Snapper struct {
	g   *graph.Graph
	nTr rtree.RTreeG[uint32] // indexes node id by its (lon, lat) point
}

// NewSnapper builds a spatial index over every node of g.
func NewSnapper(g *graph.Graph) *Snapper {
	s := &Snapper{g: g}

	for u := uint32(0); u < g.NumNodes; u++ {
		pt := [2]float64{g.NodeLon[u], g.NodeLat[u]}
		s.nTr.Insert(pt, pt, u)
	}

	return s
}

// NearestNode returns the graph node id closest to the given lat/lng.
func (s *Snapper) NearestNode(lat, lng float64) (uint32, bool) {
	if s.g.NumNodes == 0 {
		return 0, false
	}

	best := uint32(0)
	bestDist := math.Inf(1)
	found := false

	for radiusDeg := 0.005; radiusDeg <= 2.0; radiusDeg *= 4 {
		bestDist = math.Inf(1)
		found = false
		min := [2]float64{lng - radiusDeg, lat - radiusDeg}
		max := [2]float64{lng + radiusDeg, lat + radiusDeg}

		s.nTr.Search(min, max, func(_, _ [2]float64, n uint32) bool {
			d := geo.Haversine(lat, lng, s.g.NodeLat[n], s.g.NodeLon[n])
			if d < bestDist {
				bestDist = d
				best = n
				found = true
			}
			return true
		})

		if found && bestDist < radiusDeg*geo.DegToMetersApprox() {
			break
		}
	}

	return best, found
}
