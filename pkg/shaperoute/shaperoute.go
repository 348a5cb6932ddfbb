// Package shaperoute turns an ideal meter-space template trajectory into
// a continuous road-graph path whose projected geometry stays close to
// it, per §4.4.
package shaperoute

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"gpsartroute/pkg/geo"
	"gpsartroute/pkg/graph"
	"gpsartroute/pkg/roadgraph"
)

// ErrTemplateTooSparse is returned when the densified/thinned template
// has fewer than 2 points.
var ErrTemplateTooSparse = errors.New("template too sparse after densify/thin")

// ErrConnectorTooLong is returned when the start-to-first-anchor
// connector exceeds MaxConnectorM.
var ErrConnectorTooLong = errors.New("connector path exceeds max_connector_m")

// Params bundles the §4.4 inputs beyond the meter-space polyline.
type Params struct {
	SampleStepM      float64
	MinWPGapM        float64
	AnchorCount      int
	UseAnchors       bool
	ShapeBiasLambda  float64
	ConnectFromStart bool
	MaxConnectorM    float64
	ReturnToStart    bool
}

// Result is the routed node sequence and its rendered geographic polyline.
type Result struct {
	Nodes      []uint32
	Geo        []roadgraph.LatLng
	LengthM    float64
}

// Route runs the full §4.4 pipeline: densify/thin, anchor selection,
// connector, shape-biased stitching, and optional loop close. ctx is
// checked between anchor-pair stitches, per §5's cancellation model.
func Route(ctx context.Context, adapter *roadgraph.Adapter, proj geo.Projection, template []geo.Meter, startLat, startLng float64, p Params) (*Result, error) {
	trajectory := geo.Thin(geo.Densify(template, p.SampleStepM), p.MinWPGapM)
	if len(trajectory) < 2 {
		return nil, ErrTemplateTooSparse
	}

	anchorNodes, err := selectAnchors(adapter, proj, trajectory, p)
	if err != nil {
		return nil, err
	}
	if len(anchorNodes) == 0 {
		return nil, ErrTemplateTooSparse
	}

	var nodes []uint32

	if p.ConnectFromStart {
		startNode, err := adapter.NearestNode(startLat, startLng)
		if err != nil {
			return nil, fmt.Errorf("snap start point: %w", err)
		}
		if startNode != anchorNodes[0] {
			connector, err := adapter.ShortestPath(startNode, anchorNodes[0], roadgraph.DistanceCost)
			if err != nil {
				return nil, err
			}
			length := adapter.PathLengthMeters(connector)
			if length > p.MaxConnectorM {
				return nil, ErrConnectorTooLong
			}
			nodes = append(nodes, connector...)
		} else {
			nodes = append(nodes, startNode)
		}
	} else {
		nodes = append(nodes, anchorNodes[0])
	}

	for i := 0; i+1 < len(anchorNodes); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a, b := anchorNodes[i], anchorNodes[i+1]
		if a == b {
			continue
		}
		cost := shapeBiasCost(adapter, proj, trajectory, a, b, p.ShapeBiasLambda)
		seg, err := adapter.ShortestPath(a, b, cost)
		if err != nil {
			return nil, err
		}
		nodes = appendDedup(nodes, seg)
	}

	if p.ReturnToStart {
		startNode, err := adapter.NearestNode(startLat, startLng)
		if err != nil {
			return nil, fmt.Errorf("snap start point: %w", err)
		}
		last := nodes[len(nodes)-1]
		if last != startNode {
			cost := shapeBiasCost(adapter, proj, trajectory, last, startNode, p.ShapeBiasLambda)
			seg, err := adapter.ShortestPath(last, startNode, cost)
			if err != nil {
				return nil, err
			}
			nodes = appendDedup(nodes, seg)
		}
	}

	geoPoly := adapter.GeoPolyline(nodes)
	lengthM := adapter.PathLengthMeters(nodes)
	checkLengthAgreement(lengthM, geoPoly)

	return &Result{
		Nodes:   nodes,
		Geo:     geoPoly,
		LengthM: lengthM,
	}, nil
}

// checkLengthAgreement logs when the geographic polyline's haversine
// length disagrees with the graph-edge length sum by more than 0.5%,
// per §8's length-agreement validation property.
func checkLengthAgreement(edgeLengthM float64, geoPoly []roadgraph.LatLng) {
	if edgeLengthM == 0 {
		return
	}
	pts := make([]geo.LatLng, len(geoPoly))
	for i, ll := range geoPoly {
		pts[i] = geo.LatLng{Lat: ll.Lat, Lng: ll.Lng}
	}
	haversineM := geo.HaversineLength(pts)
	if math.Abs(haversineM-edgeLengthM)/edgeLengthM > 0.005 {
		log.Printf("route length disagreement: edge sum %.1fm vs haversine %.1fm (%.2f%%)",
			edgeLengthM, haversineM, 100*math.Abs(haversineM-edgeLengthM)/edgeLengthM)
	}
}

// appendDedup appends seg to nodes, dropping seg's first element when it
// duplicates nodes' current last element (the shared joint node).
func appendDedup(nodes, seg []uint32) []uint32 {
	if len(nodes) > 0 && len(seg) > 0 && nodes[len(nodes)-1] == seg[0] {
		seg = seg[1:]
	}
	return append(nodes, seg...)
}

// selectAnchors picks AnchorCount points from trajectory at equal
// arclength spacing (or just its endpoints when UseAnchors is false or
// AnchorCount is below 2),
// converts each to a nearest graph node, and collapses consecutive
// duplicates.
func selectAnchors(adapter *roadgraph.Adapter, proj geo.Projection, trajectory []geo.Meter, p Params) ([]uint32, error) {
	var samples []geo.Meter
	if p.UseAnchors && p.AnchorCount > 1 {
		samples = equalArclengthSamples(trajectory, p.AnchorCount)
	} else {
		samples = []geo.Meter{trajectory[0], trajectory[len(trajectory)-1]}
	}

	var nodes []uint32
	for _, m := range samples {
		ll := proj.ToLatLng(m)
		n, err := adapter.NearestNode(ll.Lat, ll.Lng)
		if err != nil {
			return nil, fmt.Errorf("snap anchor: %w", err)
		}
		if len(nodes) == 0 || nodes[len(nodes)-1] != n {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

// equalArclengthSamples returns n points spaced evenly by arclength along
// pts, inclusive of both endpoints.
func equalArclengthSamples(pts []geo.Meter, n int) []geo.Meter {
	if n < 2 {
		n = 2
	}
	total := geo.PolylineLength(pts)
	if total == 0 {
		return []geo.Meter{pts[0]}
	}

	out := make([]geo.Meter, 0, n)
	step := total / float64(n-1)
	target := 0.0
	acc := 0.0
	out = append(out, pts[0])
	target += step

	for i := 0; i+1 < len(pts) && len(out) < n-1; i++ {
		segLen := geo.Dist(pts[i], pts[i+1])
		for acc+segLen >= target && len(out) < n-1 {
			t := (target - acc) / segLen
			out = append(out, geo.Meter{
				X: pts[i].X + (pts[i+1].X-pts[i].X)*t,
				Y: pts[i].Y + (pts[i+1].Y-pts[i].Y)*t,
			})
			target += step
		}
		acc += segLen
	}

	out = append(out, pts[len(pts)-1])
	return out
}

// shapeBiasCost builds the §4.4 step-4 cost function for a single anchor
// pair: cost(u,v) = length_m(u,v) * (1 + lambda * dev(u,v)), where dev is
// the mean perpendicular distance of u and v to the ideal trajectory,
// normalized by the anchor pair's straight-line distance.
func shapeBiasCost(adapter *roadgraph.Adapter, proj geo.Projection, trajectory []geo.Meter, a, b uint32, lambda float64) roadgraph.CostFunc {
	aLat, aLng := adapter.Coords(a)
	bLat, bLng := adapter.Coords(b)
	aM := proj.ToMeters(geo.LatLng{Lat: aLat, Lng: aLng})
	bM := proj.ToMeters(geo.LatLng{Lat: bLat, Lng: bLng})
	reference := geo.Dist(aM, bM)
	if reference < 1 {
		reference = 1
	}

	return func(g *graph.Graph, u, v, e uint32) float64 {
		length := g.EdgeLengthMeters(e)
		if lambda == 0 {
			return length
		}
		uLat, uLng := g.NodeLat[u], g.NodeLon[u]
		vLat, vLng := g.NodeLat[v], g.NodeLon[v]
		uM := proj.ToMeters(geo.LatLng{Lat: uLat, Lng: uLng})
		vM := proj.ToMeters(geo.LatLng{Lat: vLat, Lng: vLng})
		dev := (geo.DistanceToPolyline(uM, trajectory) + geo.DistanceToPolyline(vM, trajectory)) / 2 / reference
		return length * (1 + lambda*dev)
	}
}
