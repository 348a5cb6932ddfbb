package roadgraph

import (
	"errors"
	"math"

	"gpsartroute/pkg/graph"
)

// ErrNoPath is returned when no path exists between two nodes in the graph.
var ErrNoPath = errors.New("no path between nodes")

const noNode = math.MaxUint32

// CostFunc computes the traversal cost of directed edge e (from u to v).
// Shape-biased routing swaps this in per-query; plain distance routing uses
// DistanceCost. The cost must be non-negative.
type CostFunc func(g *graph.Graph, u, v, e uint32) float64

// DistanceCost is the CostFunc that ignores shape and costs an edge by its
// physical length, equivalent to ordinary shortest-path routing.
func DistanceCost(g *graph.Graph, u, v, e uint32) float64 {
	return g.EdgeLengthMeters(e)
}

// MinHeap is a concrete-typed min-heap for the Dijkstra priority queue.
// Avoids interface boxing overhead of container/heap.
type MinHeap struct {
	items []PQItem
}

// PQItem is a priority queue entry.
type PQItem struct {
	Node uint32
	Dist float64
}

func (h *MinHeap) Len() int { return len(h.items) }

func (h *MinHeap) Push(node uint32, dist float64) {
	h.items = append(h.items, PQItem{node, dist})
	h.siftUp(len(h.items) - 1)
}

func (h *MinHeap) Pop() PQItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *MinHeap) Reset() {
	h.items = h.items[:0]
}

func (h *MinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].Dist >= h.items[parent].Dist {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].Dist < h.items[smallest].Dist {
			smallest = left
		}
		if right < n && h.items[right].Dist < h.items[smallest].Dist {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// ShortestPath runs single-source Dijkstra from source to target using cost
// as the edge weight function, returning the node sequence of the shortest
// path (inclusive of both endpoints). When two candidate edges into the same
// unsettled node tie on cost, the edge from the smaller predecessor node id
// wins, so results are reproducible across runs.
func ShortestPath(g *graph.Graph, source, target uint32, cost CostFunc) ([]uint32, error) {
	if source == target {
		return []uint32{source}, nil
	}

	dist := make([]float64, g.NumNodes)
	pred := make([]uint32, g.NumNodes)
	visited := make([]bool, g.NumNodes)
	for i := range dist {
		dist[i] = math.Inf(1)
		pred[i] = noNode
	}
	dist[source] = 0

	var pq MinHeap
	pq.Push(source, 0)

	for pq.Len() > 0 {
		cur := pq.Pop()
		u := cur.Node
		if visited[u] {
			continue
		}
		if cur.Dist > dist[u] {
			continue
		}
		visited[u] = true
		if u == target {
			break
		}

		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			if visited[v] {
				continue
			}
			w := cost(g, u, v, e)
			if w < 0 {
				w = 0
			}
			nd := dist[u] + w
			if nd < dist[v] {
				dist[v] = nd
				pred[v] = u
				pq.Push(v, nd)
			} else if nd == dist[v] && pred[v] != noNode && u < pred[v] {
				// Deterministic tie-break: the smaller predecessor id wins.
				pred[v] = u
			}
		}
	}

	if dist[target] == math.Inf(1) {
		return nil, ErrNoPath
	}

	// Reconstruct path.
	path := []uint32{target}
	cur := target
	for cur != source {
		cur = pred[cur]
		path = append(path, cur)
	}
	// Reverse in place.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// PathLengthMeters sums the physical lengths of consecutive edges in a node
// path, independent of whatever CostFunc was used to find the path.
func PathLengthMeters(g *graph.Graph, path []uint32) float64 {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		e, ok := g.FindEdge(path[i], path[i+1])
		if !ok {
			continue
		}
		total += g.EdgeLengthMeters(e)
	}
	return total
}
