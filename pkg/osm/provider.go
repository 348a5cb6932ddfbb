package osm

import (
	"context"
	"fmt"
	"math"
	"os"

	"gpsartroute/pkg/graph"
)

// metersPerDegreeLat approximates the length in meters of one degree of
// latitude; GetGraph divides radiusM by it to size the bounding box that
// Parse filters by. Parse applies no further distance filter, so the
// loaded region is that box, not a circle of radiusM.
const metersPerDegreeLat = 111_320.0

// Provider is the reference roadgraph.Provider backed by a single OSM PBF
// extract on disk. It is the concrete instance behind the opaque
// `get_graph` collaborator named in §6.
type Provider struct {
	PBFPath string
}

// NewProvider returns a Provider that reads road data from pbfPath.
func NewProvider(pbfPath string) *Provider {
	return &Provider{PBFPath: pbfPath}
}

// GetGraph loads the road graph within radiusM of (centerLat, centerLng),
// filtered to its largest connected component so routing never stalls on
// an unreachable pocket of road.
func (p *Provider) GetGraph(ctx context.Context, centerLat, centerLng, radiusM float64) (*graph.Graph, error) {
	f, err := os.Open(p.PBFPath)
	if err != nil {
		return nil, fmt.Errorf("open PBF extract %s: %w", p.PBFPath, err)
	}
	defer f.Close()

	dLat := radiusM / metersPerDegreeLat
	cosLat := math.Cos(centerLat * math.Pi / 180)
	dLng := radiusM / (metersPerDegreeLat * math.Max(cosLat, 0.01))

	bbox := BBox{
		MinLat: centerLat - dLat,
		MaxLat: centerLat + dLat,
		MinLng: centerLng - dLng,
		MaxLng: centerLng + dLng,
	}

	result, err := Parse(ctx, f, ParseOptions{BBox: bbox})
	if err != nil {
		return nil, fmt.Errorf("parse PBF extract: %w", err)
	}

	g := graph.Build(result)
	largest := graph.LargestComponent(g)
	return graph.FilterToComponent(g, largest), nil
}
