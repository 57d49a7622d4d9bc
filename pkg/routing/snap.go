package routing

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"network_router/pkg/geo"
	"network_router/pkg/graph"
)

// Projection is a query point snapped onto a segment.
type Projection struct {
	Segment  int       // index into the decomposed segments
	Point    orb.Point // closest point on the segment
	T        float64   // 0.0 = at A, 1.0 = at B
	Distance float64   // meters from the query point to Point
}

// Project snaps p onto the nearest segment. Every segment is considered; on
// equal distance the lowest segment index wins.
func Project(segments []graph.Segment, p orb.Point) (Projection, error) {
	if len(segments) == 0 {
		return Projection{}, fmt.Errorf("%w: network has no segments", ErrProjectionFailed)
	}

	best := Projection{Segment: -1, Distance: math.Inf(1)}
	for i, s := range segments {
		pt, t := geo.ProjectOntoSegment(p, s.A, s.B)
		d := geo.Distance(p, pt)
		if d < best.Distance {
			best = Projection{Segment: i, Point: pt, T: t, Distance: d}
		}
	}

	if best.Segment < 0 || math.IsInf(best.Distance, 0) || math.IsNaN(best.Distance) {
		return Projection{}, fmt.Errorf("%w: no finite distance from %v to the network", ErrProjectionFailed, p)
	}
	return best, nil
}
