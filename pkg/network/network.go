// Package network loads named line networks for the routing engine.
package network

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/paulmach/orb"
)

var (
	// ErrNotFound is returned when a named network has no stored geometry.
	ErrNotFound = errors.New("network not found")
	// ErrInvalidName is returned for names that cannot address a stored network.
	ErrInvalidName = errors.New("invalid network name")
)

// Network is an ordered collection of line geometries in lon/lat degrees.
type Network struct {
	Name  string
	Lines []orb.LineString
}

// Store resolves network names to geometry.
type Store interface {
	Load(ctx context.Context, name string) (*Network, error)
	List(ctx context.Context) ([]string, error)
}

// ValidateName rejects empty names and names that could escape a data directory.
func ValidateName(name string) error {
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// MemoryStore keeps networks in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	networks map[string][]orb.LineString
}

// NewMemoryStore returns a store seeded with the given networks.
func NewMemoryStore(networks map[string][]orb.LineString) *MemoryStore {
	s := &MemoryStore{networks: make(map[string][]orb.LineString, len(networks))}
	for name, lines := range networks {
		s.networks[name] = lines
	}
	return s
}

// Put adds or replaces a network.
func (s *MemoryStore) Put(name string, lines []orb.LineString) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.networks[name] = lines
}

// Load returns a copy of the named network's line list.
func (s *MemoryStore) Load(ctx context.Context, name string) (*Network, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines, ok := s.networks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return &Network{Name: name, Lines: slices.Clone(lines)}, nil
}

// List returns the stored network names, sorted.
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.networks))
	for name := range s.networks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
