package routing

import (
	"context"
	"fmt"

	"network_router/pkg/graph"
	"network_router/pkg/network"
)

// NetworkStats describes the graph a network produces before any query
// endpoints are projected onto it.
type NetworkStats struct {
	Network          string
	Lines            int
	Segments         int
	Crossings        int
	Nodes            int
	Edges            int
	Components       int
	LargestComponent int
}

// Stats builds the named network's graph and reports its size and connectivity.
func (e *Engine) Stats(ctx context.Context, name string) (*NetworkStats, error) {
	if name == "" {
		name = e.network
	}
	if err := network.ValidateName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	n, err := e.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	segments, err := graph.Decompose(n.Lines)
	if err != nil {
		return nil, fmt.Errorf("network %s: %w", name, err)
	}
	splits := graph.DetectIntersections(segments, e.strategy)
	g := graph.Build(segments, splits, e.q)

	return &NetworkStats{
		Network:          name,
		Lines:            len(n.Lines),
		Segments:         len(segments),
		Crossings:        splits.Crossings,
		Nodes:            g.NumNodes(),
		Edges:            g.NumEdges,
		Components:       graph.CountComponents(g),
		LargestComponent: len(graph.LargestComponent(g)),
	}, nil
}
