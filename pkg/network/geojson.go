package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoJSONExt is the file extension of network files in a DirStore.
const GeoJSONExt = ".geojson"

// DirStore serves networks from a directory of <name>.geojson files.
type DirStore struct {
	dir    string
	logger *log.Logger
}

// NewDirStore returns a store rooted at dir. A nil logger disables logging.
func NewDirStore(dir string, logger *log.Logger) *DirStore {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &DirStore{dir: dir, logger: logger}
}

// Path returns the file backing the named network.
func (s *DirStore) Path(name string) string {
	return filepath.Join(s.dir, name+GeoJSONExt)
}

// Load reads and decodes the named network.
func (s *DirStore) Load(ctx context.Context, name string) (*Network, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read network %s: %w", name, err)
	}

	lines, err := DecodeLines(data)
	if err != nil {
		return nil, fmt.Errorf("decode network %s: %w", name, err)
	}

	s.logger.Debug("network loaded", "network", name, "lines", len(lines), "bytes", len(data))
	return &Network{Name: name, Lines: lines}, nil
}

// List returns the names of all .geojson files in the directory, sorted.
// A missing directory lists as empty.
func (s *DirStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list networks: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), GeoJSONExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), GeoJSONExt))
	}
	slices.Sort(names)
	return names, nil
}

// DecodeLines extracts line geometries from a GeoJSON FeatureCollection,
// Feature or bare geometry, preserving document order. LineStrings yield one
// line each, MultiLineStrings one line per part, and every other geometry type
// is skipped.
func DecodeLines(data []byte) ([]orb.LineString, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	var geoms []orb.Geometry
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, err
		}
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		geoms = append(geoms, f.Geometry)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, err
		}
		geoms = append(geoms, g.Geometry())
	}

	var lines []orb.LineString
	for _, g := range geoms {
		switch g := g.(type) {
		case orb.LineString:
			lines = append(lines, g)
		case orb.MultiLineString:
			lines = append(lines, g...)
		}
	}
	return lines, nil
}

// FeatureCollection renders a network as one LineString feature per line.
func FeatureCollection(n *Network) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, ls := range n.Lines {
		f := geojson.NewFeature(ls)
		f.Properties["layer"] = n.Name
		f.Properties["index"] = i
		fc.Append(f)
	}
	return fc
}

// WriteFile stores lines as <dir>/<name>.geojson, replacing any existing file.
func WriteFile(dir, name string, lines []orb.LineString) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	data, err := json.Marshal(FeatureCollection(&Network{Name: name, Lines: lines}))
	if err != nil {
		return fmt.Errorf("encode network %s: %w", name, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name+GeoJSONExt)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", tmpPath, err)
	}
	return nil
}
