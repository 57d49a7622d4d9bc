package routing

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"

	"network_router/pkg/graph"
	"network_router/pkg/network"
)

// DefaultNetwork is used when a request names no network.
const DefaultNetwork = "streets"

// Request is a single route query.
type Request struct {
	Network string
	From    orb.Point // [lon, lat]
	To      orb.Point // [lon, lat]
}

// RouteResult is the output of a route query.
type RouteResult struct {
	Network             string
	Coordinates         []orb.Point
	TotalDistanceMeters float64
}

// LineString returns the route geometry.
func (r *RouteResult) LineString() orb.LineString {
	return orb.LineString(r.Coordinates)
}

// Router is the interface for route queries.
type Router interface {
	Route(ctx context.Context, req Request) (*RouteResult, error)
}

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	DefaultNetwork string
	Precision      int
	Strategy       graph.Strategy
	MaxSnapMeters  float64 // 0 disables the limit
	Logger         *log.Logger
}

// Engine implements Router. The graph is rebuilt from the stored geometry on
// every request so edits to a network are visible immediately.
type Engine struct {
	store    network.Store
	network  string
	q        graph.Quantizer
	strategy graph.Strategy
	maxSnap  float64
	logger   *log.Logger
}

// NewEngine creates a routing engine over store.
func NewEngine(store network.Store, opts Options) *Engine {
	if opts.DefaultNetwork == "" {
		opts.DefaultNetwork = DefaultNetwork
	}
	if opts.Precision <= 0 {
		opts.Precision = graph.DefaultPrecision
	}
	if opts.Strategy == "" {
		opts.Strategy = graph.StrategyPairwise
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Engine{
		store:    store,
		network:  opts.DefaultNetwork,
		q:        graph.NewQuantizer(opts.Precision),
		strategy: opts.Strategy,
		maxSnap:  opts.MaxSnapMeters,
		logger:   opts.Logger,
	}
}

// Route computes the shortest path between two points on the requested network.
func (e *Engine) Route(ctx context.Context, req Request) (*RouteResult, error) {
	name := req.Network
	if name == "" {
		name = e.network
	}
	if err := network.ValidateName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := validatePoint("from", req.From); err != nil {
		return nil, err
	}
	if err := validatePoint("to", req.To); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := e.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	res, st, err := e.solve(n, req.From, req.To)
	if err != nil {
		e.logger.Debug("route failed", "network", name, "kind", KindOf(err), "err", err)
		return nil, err
	}
	e.logger.Debug("route computed",
		"network", name,
		"segments", st.Segments,
		"crossings", st.Crossings,
		"nodes", st.Nodes,
		"edges", st.Edges,
		"points", len(res.Coordinates),
		"meters", res.TotalDistanceMeters,
		"took", time.Since(start),
	)
	return res, nil
}

// solve runs the pipeline on already loaded geometry:
// decompose, detect crossings, project both endpoints, build, search.
func (e *Engine) solve(n *network.Network, from, to orb.Point) (*RouteResult, *NetworkStats, error) {
	segments, err := graph.Decompose(n.Lines)
	if err != nil {
		return nil, nil, fmt.Errorf("network %s: %w", n.Name, err)
	}

	splits := graph.DetectIntersections(segments, e.strategy)

	startSnap, err := e.project(segments, from)
	if err != nil {
		return nil, nil, fmt.Errorf("start: %w", err)
	}
	goalSnap, err := e.project(segments, to)
	if err != nil {
		return nil, nil, fmt.Errorf("goal: %w", err)
	}
	splits.Add(startSnap.Segment, graph.SplitPoint{Point: startSnap.Point, T: startSnap.T})
	splits.Add(goalSnap.Segment, graph.SplitPoint{Point: goalSnap.Point, T: goalSnap.T})

	g := graph.Build(segments, splits, e.q)
	st := &NetworkStats{
		Network:   n.Name,
		Lines:     len(n.Lines),
		Segments:  len(segments),
		Crossings: splits.Crossings,
		Nodes:     g.NumNodes(),
		Edges:     g.NumEdges,
	}
	if g.NumNodes() == 0 {
		return nil, st, fmt.Errorf("%w: network %s has only zero-length segments", ErrInternalComputation, n.Name)
	}

	startNode, err := nodeFor(g, startSnap.Point)
	if err != nil {
		return nil, st, err
	}
	goalNode, err := nodeFor(g, goalSnap.Point)
	if err != nil {
		return nil, st, err
	}

	path, meters, err := ShortestPath(g, startNode, goalNode)
	if err != nil {
		return nil, st, err
	}
	return formatRoute(n.Name, g, path, meters), st, nil
}

func (e *Engine) project(segments []graph.Segment, p orb.Point) (Projection, error) {
	snap, err := Project(segments, p)
	if err != nil {
		return Projection{}, err
	}
	if e.maxSnap > 0 && snap.Distance > e.maxSnap {
		return Projection{}, fmt.Errorf("%w: %v is %.1f m from the network (limit %.1f m)",
			ErrProjectionFailed, p, snap.Distance, e.maxSnap)
	}
	return snap, nil
}

// nodeFor resolves a projected point to its graph node. A projected point
// always becomes a node unless its segment collapsed under quantization; in
// that case the nearest node stands in.
func nodeFor(g *graph.Graph, p orb.Point) (uint32, error) {
	if id, ok := g.Lookup(p); ok {
		return id, nil
	}
	if id, ok := g.Nearest(p); ok {
		return id, nil
	}
	return 0, fmt.Errorf("%w: no node near %v", ErrInternalComputation, p)
}

// formatRoute maps a node path to coordinates. A start that resolves to the
// goal yields a single point of length zero.
func formatRoute(name string, g *graph.Graph, path []uint32, meters float64) *RouteResult {
	coords := make([]orb.Point, len(path))
	for i, id := range path {
		coords[i] = g.Nodes[id].Point
	}
	return &RouteResult{
		Network:             name,
		Coordinates:         coords,
		TotalDistanceMeters: meters,
	}
}

func validatePoint(field string, p orb.Point) error {
	lon, lat := p[0], p[1]
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return fmt.Errorf("%w: %s must be finite", ErrInvalidRequest, field)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: %s longitude %v out of range [-180, 180]", ErrInvalidRequest, field, lon)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: %s latitude %v out of range [-90, 90]", ErrInvalidRequest, field, lat)
	}
	return nil
}
