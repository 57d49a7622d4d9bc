package graph

import (
	"fmt"
	"slices"

	"github.com/tidwall/rtree"

	"network_router/pkg/geo"
)

// Strategy selects how candidate segment pairs are enumerated when looking
// for crossings. Both strategies record identical split points.
type Strategy string

const (
	// StrategyPairwise tests every unordered pair. O(n²) in segment count.
	StrategyPairwise Strategy = "pairwise"
	// StrategyIndexed prefilters pairs with an R-tree over segment bounds.
	StrategyIndexed Strategy = "indexed"
)

// boundPad widens R-tree queries so that crossings found right at a segment
// end are never lost to floating-point rounding of the bounds.
const boundPad = 1e-9

// ParseStrategy parses a strategy name. The empty string means pairwise.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyPairwise:
		return StrategyPairwise, nil
	case StrategyIndexed:
		return StrategyIndexed, nil
	}
	return "", fmt.Errorf("unknown intersection strategy %q", s)
}

// DetectIntersections finds every crossing between two distinct segments and
// records a split point on both of them.
//
// Pairs are visited in (i, j) order with i < j regardless of strategy, so the
// resulting split lists are identical.
func DetectIntersections(segments []Segment, strategy Strategy) *Splits {
	splits := NewSplits(len(segments))
	if strategy == StrategyIndexed {
		detectIndexed(segments, splits)
	} else {
		detectPairwise(segments, splits)
	}
	return splits
}

func detectPairwise(segments []Segment, splits *Splits) {
	for i := 0; i < len(segments); i++ {
		for j := i + 1; j < len(segments); j++ {
			recordCrossing(segments, splits, i, j)
		}
	}
}

func detectIndexed(segments []Segment, splits *Splits) {
	var tr rtree.RTreeG[int]
	for i, s := range segments {
		b := s.Bound()
		tr.Insert([2]float64{b.Min[0], b.Min[1]}, [2]float64{b.Max[0], b.Max[1]}, i)
	}

	var candidates []int
	for i, s := range segments {
		b := s.Bound()
		candidates = candidates[:0]
		tr.Search(
			[2]float64{b.Min[0] - boundPad, b.Min[1] - boundPad},
			[2]float64{b.Max[0] + boundPad, b.Max[1] + boundPad},
			func(_, _ [2]float64, j int) bool {
				if j > i {
					candidates = append(candidates, j)
				}
				return true
			},
		)
		slices.Sort(candidates)
		for _, j := range candidates {
			recordCrossing(segments, splits, i, j)
		}
	}
}

func recordCrossing(segments []Segment, splits *Splits, i, j int) {
	si, sj := segments[i], segments[j]
	hit, ok := geo.SegmentIntersection(si.A, si.B, sj.A, sj.B)
	if !ok {
		return
	}

	// Re-derive t on each segment with the projection formula so that the
	// builder sorts crossings and endpoints on the same scale.
	pi, ti := geo.ProjectOntoSegment(hit, si.A, si.B)
	pj, tj := geo.ProjectOntoSegment(hit, sj.A, sj.B)
	splits.Add(i, SplitPoint{Point: pi, T: ti})
	splits.Add(j, SplitPoint{Point: pj, T: tj})
	splits.Crossings++
}
