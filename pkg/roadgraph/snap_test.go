package roadgraph

import (
	"testing"

	"github.com/paulmach/osm"

	"gpsartroute/pkg/graph"
	osmparser "gpsartroute/pkg/osm"
)

func buildSnapTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 1, ToNodeID: 2, Weight: 100000},
			{FromNodeID: 2, ToNodeID: 1, Weight: 100000},
		},
		NodeLat: map[osm.NodeID]float64{1: 1.300, 2: 1.301},
		NodeLon: map[osm.NodeID]float64{1: 103.800, 2: 103.800},
	}
	return graph.Build(result)
}

func TestNearestNode(t *testing.T) {
	g := buildSnapTestGraph(t)
	s := NewSnapper(g)

	n, ok := s.NearestNode(1.3001, 103.800)
	if !ok {
		t.Fatal("NearestNode: not found")
	}
	if g.NodeLat[n] != 1.300 {
		t.Errorf("NearestNode lat = %f, want 1.300", g.NodeLat[n])
	}
}

func TestNearestNodeEmptyGraph(t *testing.T) {
	g := graph.Build(&osmparser.ParseResult{
		NodeLat: map[osm.NodeID]float64{},
		NodeLon: map[osm.NodeID]float64{},
	})
	s := NewSnapper(g)

	_, ok := s.NearestNode(1.3, 103.8)
	if ok {
		t.Error("NearestNode on empty graph should report not found")
	}
}
