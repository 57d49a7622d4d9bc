package graph

import (
	"errors"

	"github.com/paulmach/orb"
)

// ErrNoSegments is returned when a network decomposes into zero segments.
var ErrNoSegments = errors.New("no routable segments")

// Segment is a straight two-point piece of a source line.
type Segment struct {
	A, B    orb.Point
	Feature int // index of the source line in the network
	Index   int // position of the segment within that line
}

// Bound returns the segment's bounding box.
func (s Segment) Bound() orb.Bound {
	return orb.MultiPoint{s.A, s.B}.Bound()
}

// SplitPoint is a coordinate along a segment at parametric position T in [0,1].
type SplitPoint struct {
	Point orb.Point
	T     float64
}

// Decompose flattens lines into segments, tagging each with its line index and
// position within the line. Lines with fewer than two points contribute nothing.
func Decompose(lines []orb.LineString) ([]Segment, error) {
	if len(lines) == 0 {
		return nil, ErrNoSegments
	}

	var segments []Segment
	for fi, ls := range lines {
		for si := 0; si < len(ls)-1; si++ {
			segments = append(segments, Segment{
				A:       ls[si],
				B:       ls[si+1],
				Feature: fi,
				Index:   si,
			})
		}
	}

	if len(segments) == 0 {
		return nil, ErrNoSegments
	}
	return segments, nil
}

// Splits holds the extra split points attributed to each segment, beyond the
// segment's own endpoints.
type Splits struct {
	points    [][]SplitPoint
	Crossings int // number of segment pairs found to cross
}

// NewSplits returns empty split lists for n segments.
func NewSplits(n int) *Splits {
	return &Splits{points: make([][]SplitPoint, n)}
}

// Add attributes sp to segment i.
func (s *Splits) Add(i int, sp SplitPoint) {
	s.points[i] = append(s.points[i], sp)
}

// At returns the split points attributed to segment i, in insertion order.
func (s *Splits) At(i int) []SplitPoint {
	return s.points[i]
}

// Len returns the number of segments tracked.
func (s *Splits) Len() int { return len(s.points) }
