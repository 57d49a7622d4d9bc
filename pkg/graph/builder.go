package graph

import (
	"slices"

	"network_router/pkg/geo"
)

// Build splits every segment at its split points and merges the pieces into
// one undirected graph.
//
// For each segment the two endpoints and its extra split points are stably
// sorted by T, points whose key was already seen on that segment are dropped,
// and consecutive survivors are joined by an edge weighted with their
// great-circle distance. Coincident points from different segments share a
// node because nodes are keyed by q.
func Build(segments []Segment, splits *Splits, q Quantizer) *Graph {
	g := New(q)

	var pts []SplitPoint
	seen := make(map[Key]struct{})
	for i, s := range segments {
		pts = append(pts[:0], SplitPoint{Point: s.A, T: 0}, SplitPoint{Point: s.B, T: 1})
		if splits != nil && i < splits.Len() {
			pts = append(pts, splits.At(i)...)
		}
		slices.SortStableFunc(pts, func(a, b SplitPoint) int {
			switch {
			case a.T < b.T:
				return -1
			case a.T > b.T:
				return 1
			}
			return 0
		})

		// Nodes are only created for points that end up on an edge, so a
		// zero-length segment leaves no isolated node behind.
		clear(seen)
		var prev SplitPoint
		var prevKey Key
		first := true
		for _, sp := range pts {
			key := q.Key(sp.Point)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			if !first {
				u := g.ensureNode(prevKey)
				v := g.ensureNode(key)
				g.addEdge(u, v, geo.Distance(prev.Point, sp.Point))
			}
			prev, prevKey, first = sp, key, false
		}
	}

	return g
}
