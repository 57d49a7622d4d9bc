package graph

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte // rank stays below 32 for any uint32-sized set
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Size returns the number of elements in x's set.
func (uf *UnionFind) Size(x uint32) uint32 {
	return uf.size[uf.Find(x)]
}

// connect unions every edge of g.
func connect(g *Graph) *UnionFind {
	uf := NewUnionFind(uint32(g.NumNodes()))
	for u := range g.Nodes {
		for _, e := range g.Nodes[u].Neighbors {
			uf.Union(uint32(u), e.To)
		}
	}
	return uf
}

// CountComponents returns the number of connected components of g.
func CountComponents(g *Graph) int {
	uf := connect(g)
	count := 0
	for i := range uint32(g.NumNodes()) {
		if uf.Find(i) == i {
			count++
		}
	}
	return count
}

// LargestComponent returns the node indices of the largest connected
// component, in index order. Ties go to the component holding the lowest index.
func LargestComponent(g *Graph) []uint32 {
	if g.NumNodes() == 0 {
		return nil
	}

	uf := connect(g)

	bestRoot := uint32(0)
	bestSize := uint32(0)
	for i := range uint32(g.NumNodes()) {
		root := uf.Find(i)
		if uf.size[root] > bestSize {
			bestRoot = root
			bestSize = uf.size[root]
		}
	}

	nodes := make([]uint32, 0, bestSize)
	for i := range uint32(g.NumNodes()) {
		if uf.Find(i) == bestRoot {
			nodes = append(nodes, i)
		}
	}
	return nodes
}
