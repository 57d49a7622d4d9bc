package routing

import (
	"fmt"
	"math"
	"slices"

	"network_router/pkg/graph"
)

const noNode = ^uint32(0) // sentinel for "no node"

// MinHeap is a concrete-typed min-heap for the Dijkstra priority queue.
// Avoids interface boxing overhead of container/heap.
//
// Items are ordered by distance, then by node index, so that among equally
// distant nodes the one inserted into the graph first is settled first.
type MinHeap struct {
	items []PQItem
}

// PQItem is a priority queue entry.
type PQItem struct {
	Node uint32
	Dist float64
}

func (a PQItem) less(b PQItem) bool {
	if a.Dist != b.Dist {
		return a.Dist < b.Dist
	}
	return a.Node < b.Node
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

func (h *MinHeap) PeekDist() float64 {
	if len(h.items) == 0 {
		return math.Inf(1)
	}
	return h.items[0].Dist
}

func (h *MinHeap) Reset() {
	h.items = h.items[:0]
}

func (h *MinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.items[i].less(h.items[parent]) {
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
		if left < n && h.items[left].less(h.items[smallest]) {
			smallest = left
		}
		if right < n && h.items[right].less(h.items[smallest]) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// ShortestPath runs Dijkstra from start to goal and returns the node sequence
// start..goal with its total weight in meters. The search stops as soon as
// the goal is settled.
//
// The result is identical to the textbook linear scan that settles the first
// unvisited minimum in node index order.
func ShortestPath(g *graph.Graph, start, goal uint32) ([]uint32, float64, error) {
	n := uint32(g.NumNodes())
	if start >= n || goal >= n {
		return nil, 0, fmt.Errorf("%w: node out of range (start %d, goal %d, nodes %d)", ErrInternalComputation, start, goal, n)
	}

	dist := make([]float64, n)
	pred := make([]uint32, n)
	visited := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		pred[i] = noNode
	}
	dist[start] = 0

	var pq MinHeap
	pq.Push(start, 0)

	for pq.Len() > 0 {
		item := pq.Pop()
		u := item.Node
		if visited[u] || item.Dist > dist[u] {
			continue // stale entry
		}
		visited[u] = true
		if u == goal {
			break
		}

		for _, e := range g.Nodes[u].Neighbors {
			if visited[e.To] {
				continue
			}
			alt := dist[u] + e.Weight
			if alt < dist[e.To] {
				dist[e.To] = alt
				pred[e.To] = u
				pq.Push(e.To, alt)
			}
		}
	}

	if math.IsInf(dist[goal], 1) {
		return nil, 0, ErrNoPathFound
	}
	if math.IsNaN(dist[goal]) {
		return nil, 0, fmt.Errorf("%w: non-finite path length", ErrInternalComputation)
	}

	var path []uint32
	for at := goal; at != noNode; at = pred[at] {
		path = append(path, at)
		if at == start {
			break
		}
	}
	slices.Reverse(path)

	return path, dist[goal], nil
}
