package graph

import (
	"math"

	"github.com/paulmach/orb"

	"network_router/pkg/geo"
)

// DefaultPrecision is the number of decimal places used to decide whether two
// coordinates are the same node. 1e-6 degrees is about 0.11 m at the equator.
const DefaultPrecision = 6

// MaxPrecision bounds the quantization scale so grid keys stay well inside int64.
const MaxPrecision = 12

// Key is the quantized identity of a coordinate.
type Key struct {
	X int64 // round(lon * 10^precision)
	Y int64 // round(lat * 10^precision)
}

// Quantizer maps coordinates onto an integer grid. Coordinates that land on
// the same grid cell share a Key and therefore a Node.
type Quantizer struct {
	precision int
	scale     float64
}

// NewQuantizer returns a Quantizer with the given number of decimal places,
// clamped to [0, MaxPrecision].
func NewQuantizer(precision int) Quantizer {
	precision = max(0, min(precision, MaxPrecision))
	return Quantizer{precision: precision, scale: math.Pow10(precision)}
}

// Precision returns the number of decimal places.
func (q Quantizer) Precision() int { return q.precision }

// Key returns the grid key for p.
func (q Quantizer) Key(p orb.Point) Key {
	if q.scale == 0 {
		q = NewQuantizer(DefaultPrecision)
	}
	return Key{
		X: int64(math.Round(p[0] * q.scale)),
		Y: int64(math.Round(p[1] * q.scale)),
	}
}

// Point decodes a grid key back into degrees.
func (q Quantizer) Point(k Key) orb.Point {
	if q.scale == 0 {
		q = NewQuantizer(DefaultPrecision)
	}
	return orb.Point{float64(k.X) / q.scale, float64(k.Y) / q.scale}
}

// Edge is an undirected adjacency entry.
type Edge struct {
	To     uint32
	Weight float64 // great-circle distance in meters
}

// Node is a deduplicated coordinate in the routing graph.
type Node struct {
	Key       Key
	Point     orb.Point // Key decoded back to degrees
	Neighbors []Edge    // in insertion order
}

// Graph is an undirected arena graph. Node indices are assigned in first-seen
// order and are stable for the lifetime of the graph, which makes them the
// deterministic iteration order for the path solver.
type Graph struct {
	Nodes    []Node
	NumEdges int

	q     Quantizer
	index map[Key]uint32
}

// New creates an empty graph using q for node identity.
func New(q Quantizer) *Graph {
	return &Graph{
		q:     q,
		index: make(map[Key]uint32),
	}
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int { return len(g.Nodes) }

// Quantizer returns the quantizer used for node identity.
func (g *Graph) Quantizer() Quantizer { return g.q }

// Lookup returns the node whose key matches p.
func (g *Graph) Lookup(p orb.Point) (uint32, bool) {
	idx, ok := g.index[g.q.Key(p)]
	return idx, ok
}

// Nearest returns the node closest to p by great-circle distance. Ties go to
// the lowest index. ok is false for an empty graph.
func (g *Graph) Nearest(p orb.Point) (idx uint32, ok bool) {
	best := math.Inf(1)
	for i := range g.Nodes {
		d := geo.Distance(p, g.Nodes[i].Point)
		if d < best {
			best = d
			idx = uint32(i)
			ok = true
		}
	}
	return idx, ok
}

// ensureNode returns the index for k, creating the node if needed.
func (g *Graph) ensureNode(k Key) uint32 {
	if idx, ok := g.index[k]; ok {
		return idx
	}
	idx := uint32(len(g.Nodes))
	g.index[k] = idx
	g.Nodes = append(g.Nodes, Node{Key: k, Point: g.q.Point(k)})
	return idx
}

// addEdge inserts u-v in both directions. When the pair is already connected
// the shorter weight is kept.
func (g *Graph) addEdge(u, v uint32, w float64) {
	if u == v {
		return
	}
	if g.setWeight(u, v, w) {
		g.setWeight(v, u, w)
		return
	}
	g.Nodes[u].Neighbors = append(g.Nodes[u].Neighbors, Edge{To: v, Weight: w})
	g.Nodes[v].Neighbors = append(g.Nodes[v].Neighbors, Edge{To: u, Weight: w})
	g.NumEdges++
}

// setWeight lowers the weight of an existing u->v entry. It reports whether
// the entry exists.
func (g *Graph) setWeight(u, v uint32, w float64) bool {
	nbrs := g.Nodes[u].Neighbors
	for i := range nbrs {
		if nbrs[i].To == v {
			if w < nbrs[i].Weight {
				nbrs[i].Weight = w
			}
			return true
		}
	}
	return false
}
