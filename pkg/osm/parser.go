package osm

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

// ParseResult holds the line network extracted from an OSM PBF file.
type ParseResult struct {
	Lines         []orb.LineString // one or more runs per routable way, in file order
	NumWays       int              // routable ways seen in pass 1
	MissingCoords int              // way nodes with no coordinate in the file
	BBoxFiltered  int              // way nodes dropped by the bounding box
}

// nonRoutableHighways lists highway values that never carry traffic.
var nonRoutableHighways = map[string]bool{
	"proposed":      true,
	"construction":  true,
	"abandoned":     true,
	"platform":      true,
	"raceway":       true,
	"bus_stop":      true,
	"elevator":      true,
	"rest_area":     true,
	"services":      true,
	"emergency_bay": true,
}

// isRoutable returns true if the way is a highway some traveller may use.
// Direction tags are ignored: the routing graph is undirected.
func isRoutable(tags osm.Tags) bool {
	hw := tags.Find("highway")
	if hw == "" || nonRoutableHighways[hw] {
		return false
	}

	// Skip area highways (pedestrian plazas).
	if tags.Find("area") == "yes" {
		return false
	}

	if tags.Find("access") == "no" {
		return false
	}

	return true
}

// BBox defines a geographic bounding box for filtering.
// If non-zero, way nodes outside the box are dropped and the way is split
// into the runs that remain inside.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// Named bounding boxes accepted by ParseBBox.
var bboxPresets = map[string]BBox{
	"singapore": {MinLat: 1.15, MaxLat: 1.48, MinLng: 103.6, MaxLng: 104.1},
	"kl":        {MinLat: 2.75, MaxLat: 3.5, MinLng: 101.2, MaxLng: 102.0},
}

// ParseBBox parses "minLat,minLng,maxLat,maxLng" or a preset name
// ("singapore", "kl"). An empty string yields the zero BBox.
func ParseBBox(s string) (BBox, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return BBox{}, nil
	}
	if b, ok := bboxPresets[strings.ToLower(s)]; ok {
		return b, nil
	}

	var b BBox
	if _, err := fmt.Sscanf(s, "%f,%f,%f,%f", &b.MinLat, &b.MinLng, &b.MaxLat, &b.MaxLng); err != nil {
		return BBox{}, fmt.Errorf("invalid bbox %q (expected minLat,minLng,maxLat,maxLng): %w", s, err)
	}
	if b.MinLat > b.MaxLat || b.MinLng > b.MaxLng {
		return BBox{}, fmt.Errorf("invalid bbox %q: min exceeds max", s)
	}
	return b, nil
}

// ParseOptions configures the OSM parser.
type ParseOptions struct {
	BBox   BBox        // if non-zero, filter lines to this bounding box
	Logger *log.Logger // optional progress logger
}

// Parse reads an OSM PBF file and returns its routable ways as lon/lat lines.
// The reader is consumed twice (seeks back to start for the second pass),
// so it must implement io.ReadSeeker.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...ParseOptions) (*ParseResult, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	logger := opt.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	// Pass 1: Scan ways to collect referenced node IDs.
	referencedNodes := make(map[osm.NodeID]struct{})
	var ways [][]osm.NodeID

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if !isRoutable(w.Tags) || len(w.Nodes) < 2 {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referencedNodes[wn.ID] = struct{}{}
		}
		ways = append(ways, nodeIDs)
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	logger.Info("pass 1 complete", "ways", len(ways), "referenced_nodes", len(referencedNodes))

	// Pass 2: Scan nodes to collect coordinates for referenced nodes only.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	coords := make(map[osm.NodeID]orb.Point, len(referencedNodes))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}
		coords[n.ID] = orb.Point{n.Lon, n.Lat}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	logger.Info("pass 2 complete", "coordinates", len(coords))

	result := buildLines(ways, coords, opt.BBox)
	result.NumWays = len(ways)

	if result.MissingCoords > 0 {
		logger.Warn("way nodes without coordinates", "count", result.MissingCoords)
	}
	if result.BBoxFiltered > 0 {
		logger.Info("way nodes outside bounding box", "count", result.BBoxFiltered)
	}
	logger.Info("lines built", "lines", len(result.Lines))

	return result, nil
}

// buildLines turns way node lists into lines. A node with no coordinate, or
// one outside a non-zero bbox, ends the current run; runs shorter than two
// points are dropped.
func buildLines(ways [][]osm.NodeID, coords map[osm.NodeID]orb.Point, bbox BBox) *ParseResult {
	useBBox := !bbox.IsZero()
	result := &ParseResult{}
	for _, w := range ways {
		var run orb.LineString
		flush := func() {
			if len(run) >= 2 {
				result.Lines = append(result.Lines, run)
			}
			run = nil
		}
		for _, id := range w {
			p, ok := coords[id]
			if !ok {
				result.MissingCoords++
				flush()
				continue
			}
			if useBBox && !bbox.Contains(p.Lat(), p.Lon()) {
				result.BBoxFiltered++
				flush()
				continue
			}
			run = append(run, p)
		}
		flush()
	}
	return result
}
