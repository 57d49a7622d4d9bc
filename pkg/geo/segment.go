package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// parallelEpsilon is the determinant magnitude below which two segments are
// treated as parallel or collinear.
const parallelEpsilon = 1e-12

// ProjectOntoSegment returns the closest point on segment AB to p and its
// parametric position t in [0,1] from A to B.
//
// The projection is computed in raw lon/lat degrees so that t agrees with
// SegmentIntersection. A degenerate segment (A == B) returns (A, 0).
func ProjectOntoSegment(p, a, b orb.Point) (orb.Point, float64) {
	abx := b[0] - a[0]
	aby := b[1] - a[1]
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return a, 0
	}

	t := ((p[0]-a[0])*abx + (p[1]-a[1])*aby) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return orb.Point{a[0] + t*abx, a[1] + t*aby}, t
}

// SegmentIntersection returns the crossing point of segments AB and CD.
//
// Longitude and latitude are treated as planar coordinates. This only holds
// for segments that are short relative to the Earth's curvature and degrades
// near the poles; it is kept planar so results match networks prepared with
// the same approximation.
//
// ok is false when the segments are parallel or collinear, or when the
// crossing of the supporting lines falls outside either segment.
func SegmentIntersection(a, b, c, d orb.Point) (orb.Point, bool) {
	x1, y1 := a[0], a[1]
	x2, y2 := b[0], b[1]
	x3, y3 := c[0], c[1]
	x4, y4 := d[0], d[1]

	denom := (y4-y3)*(x2-x1) - (x4-x3)*(y2-y1)
	if math.Abs(denom) < parallelEpsilon {
		return orb.Point{}, false
	}

	ua := ((x4-x3)*(y1-y3) - (y4-y3)*(x1-x3)) / denom
	ub := ((x2-x1)*(y1-y3) - (y2-y1)*(x1-x3)) / denom
	if ua < 0 || ua > 1 || ub < 0 || ub > 1 {
		return orb.Point{}, false
	}

	return orb.Point{x1 + ua*(x2-x1), y1 + ua*(y2-y1)}, true
}
