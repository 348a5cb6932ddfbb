package roadgraph

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"gpsartroute/pkg/graph"
)

// ErrGraphUnavailable is returned when a Provider cannot produce a graph
// for the requested region.
var ErrGraphUnavailable = errors.New("road graph unavailable")

// Provider is the opaque road-graph collaborator named in §6: given a
// center point and a radius, it returns a Graph. Implementations may load
// from an OSM PBF extract, a remote service, or a persisted binary cache.
type Provider interface {
	GetGraph(ctx context.Context, centerLat, centerLng, radiusM float64) (*graph.Graph, error)
}

// cacheKey identifies a cached regional graph by rounded center and
// radius, per §6's persisted-cache keying rule.
type cacheKey struct {
	lat, lng float64
	radiusM  int64
}

func roundTo3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

func makeCacheKey(lat, lng, radiusM float64) cacheKey {
	return cacheKey{lat: roundTo3(lat), lng: roundTo3(lng), radiusM: int64(math.Round(radiusM))}
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%.3f,%.3f,%dm", k.lat, k.lng, k.radiusM)
}

// Cache wraps a Provider with a process-wide, read-mostly LRU of loaded
// regional adapters (§5). At most maxEntries regions are kept resident;
// loading a region acquires a per-key mutex so concurrent requests for the
// same key perform exactly one load. Cache entries, once constructed, are
// immutable and require no further locking to read.
type Cache struct {
	provider Provider
	lru      *lru.Cache[cacheKey, *Adapter]

	keyMusMu sync.Mutex
	keyMus   map[cacheKey]*sync.Mutex
}

const defaultMaxCacheEntries = 4

// NewCache wraps provider with an LRU of at most maxEntries regional
// graphs. maxEntries <= 0 uses the recommended default of 4.
func NewCache(provider Provider, maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = defaultMaxCacheEntries
	}
	l, err := lru.New[cacheKey, *Adapter](maxEntries)
	if err != nil {
		// Only fails for maxEntries <= 0, already guarded above.
		panic(err)
	}
	return &Cache{
		provider: provider,
		lru:      l,
		keyMus:   make(map[cacheKey]*sync.Mutex),
	}
}

// Get returns the Adapter for the region around (lat, lng) within
// radiusM, loading it through the wrapped Provider on first access.
func (c *Cache) Get(ctx context.Context, lat, lng, radiusM float64) (*Adapter, error) {
	key := makeCacheKey(lat, lng, radiusM)

	if a, ok := c.lru.Get(key); ok {
		return a, nil
	}

	mu := c.keyMutex(key)
	mu.Lock()
	defer mu.Unlock()

	// Re-check: another goroutine may have loaded it while we waited.
	if a, ok := c.lru.Get(key); ok {
		return a, nil
	}

	g, err := c.provider.GetGraph(ctx, lat, lng, radiusM)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGraphUnavailable, err)
	}

	adapter := NewAdapter(g)
	c.lru.Add(key, adapter)
	return adapter, nil
}

func (c *Cache) keyMutex(key cacheKey) *sync.Mutex {
	c.keyMusMu.Lock()
	defer c.keyMusMu.Unlock()
	mu, ok := c.keyMus[key]
	if !ok {
		mu = &sync.Mutex{}
		c.keyMus[key] = mu
	}
	return mu
}
