// Package roadgraph wraps the CSR road graph behind the four primitives
// the routing core needs — nearest-node lookup, coordinate lookup, edge
// length, and pluggable-cost shortest path — plus the process-wide cache
// that keeps a small number of regional graphs loaded.
package roadgraph

import (
	"errors"

	"gpsartroute/pkg/graph"
)

// ErrEdgeNotFound is returned by EdgeLength when u and v are not directly
// connected by an edge.
var ErrEdgeNotFound = errors.New("no direct edge between nodes")

// ErrPointTooFar is returned when a query point has no node within the
// Snapper's search radius.
var ErrPointTooFar = errors.New("point too far from road")

// Adapter exposes the graph-adapter primitives of §4.3 over a loaded
// Graph: nearest_node, coords, edge_length, and shortest_path.
type Adapter struct {
	g       *graph.Graph
	snapper *Snapper
}

// NewAdapter builds an Adapter (and its spatial index) over g.
func NewAdapter(g *graph.Graph) *Adapter {
	return &Adapter{g: g, snapper: NewSnapper(g)}
}

// Graph exposes the underlying CSR graph, for components (shaperoute,
// guidance) that need edge geometry directly.
func (a *Adapter) Graph() *graph.Graph {
	return a.g
}

// NearestNode returns the graph node closest to (lat, lng).
func (a *Adapter) NearestNode(lat, lng float64) (uint32, error) {
	n, ok := a.snapper.NearestNode(lat, lng)
	if !ok {
		return 0, ErrPointTooFar
	}
	return n, nil
}

// Coords returns the (lat, lng) of a node id.
func (a *Adapter) Coords(node uint32) (lat, lng float64) {
	return a.g.NodeLat[node], a.g.NodeLon[node]
}

// EdgeLength returns the length in meters of the direct edge from u to v.
func (a *Adapter) EdgeLength(u, v uint32) (float64, error) {
	e, ok := a.g.FindEdge(u, v)
	if !ok {
		return 0, ErrEdgeNotFound
	}
	return a.g.EdgeLengthMeters(e), nil
}

// ShortestPath finds the lowest-cost node path from u to v under cost.
// When cost is nil, falls back to plain edge length per §4.3.
func (a *Adapter) ShortestPath(u, v uint32, cost CostFunc) ([]uint32, error) {
	if cost == nil {
		cost = DistanceCost
	}
	return ShortestPath(a.g, u, v, cost)
}

// GeoPolyline renders the geographic polyline traced by a node path,
// concatenating each edge's stored geometry (or a straight segment
// between endpoints when none is stored) and deduplicating shared joints.
func (a *Adapter) GeoPolyline(path []uint32) []LatLng {
	if len(path) == 0 {
		return nil
	}
	lat0, lng0 := a.Coords(path[0])
	out := []LatLng{{Lat: lat0, Lng: lng0}}

	for i := 0; i+1 < len(path); i++ {
		u, v := path[i], path[i+1]
		e, ok := a.g.FindEdge(u, v)
		if !ok {
			lat, lng := a.Coords(v)
			out = append(out, LatLng{Lat: lat, Lng: lng})
			continue
		}
		shapeLats, shapeLons := a.g.EdgeGeometry(e)
		for k := range shapeLats {
			out = append(out, LatLng{Lat: shapeLats[k], Lng: shapeLons[k]})
		}
		lat, lng := a.Coords(v)
		out = append(out, LatLng{Lat: lat, Lng: lng})
	}
	return out
}

// LatLng is a plain geographic coordinate, kept local to roadgraph so
// callers don't need to import pkg/geo just to read GeoPolyline's result.
type LatLng struct {
	Lat, Lng float64
}

// PathLengthMeters sums the physical lengths of consecutive edges for a
// node path on this adapter's graph.
func (a *Adapter) PathLengthMeters(path []uint32) float64 {
	return PathLengthMeters(a.g, path)
}
