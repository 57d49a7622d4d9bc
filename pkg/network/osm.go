package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	osmparser "network_router/pkg/osm"
)

// PBFExt is the file extension of network files in an OSMStore.
const PBFExt = ".osm.pbf"

// OSMStore serves networks from a directory of <name>.osm.pbf extracts.
// Every routable way becomes one or more lines.
type OSMStore struct {
	dir    string
	bbox   osmparser.BBox
	logger *log.Logger
}

// NewOSMStore returns a store rooted at dir. A non-zero bbox clips every extract.
func NewOSMStore(dir string, bbox osmparser.BBox, logger *log.Logger) *OSMStore {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &OSMStore{dir: dir, bbox: bbox, logger: logger}
}

// Load parses the named extract.
func (s *OSMStore) Load(ctx context.Context, name string) (*Network, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.dir, name+PBFExt))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("open network %s: %w", name, err)
	}
	defer f.Close()

	res, err := osmparser.Parse(ctx, f, osmparser.ParseOptions{
		BBox:   s.bbox,
		Logger: s.logger.With("network", name),
	})
	if err != nil {
		return nil, fmt.Errorf("parse network %s: %w", name, err)
	}
	return &Network{Name: name, Lines: res.Lines}, nil
}

// List returns the names of all .osm.pbf files in the directory, sorted.
func (s *OSMStore) List(ctx context.Context) ([]string, error) {
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
		if e.IsDir() || !strings.HasSuffix(e.Name(), PBFExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), PBFExt))
	}
	slices.Sort(names)
	return names, nil
}
