package routing

import (
	"errors"

	"network_router/pkg/graph"
	"network_router/pkg/network"
)

// ErrorKind names a class of route failure. Every failed Route call maps to
// exactly one kind.
type ErrorKind string

const (
	KindNetworkNotFound    ErrorKind = "NetworkNotFound"
	KindInvalidRequest     ErrorKind = "InvalidRequest"
	KindNoRoutableSegments ErrorKind = "NoRoutableSegments"
	KindProjectionFailed   ErrorKind = "ProjectionFailed"
	KindNoPathFound        ErrorKind = "NoPathFound"
	KindInternal           ErrorKind = "InternalComputationError"
)

var (
	// ErrNetworkNotFound is returned when the named network has no stored geometry.
	ErrNetworkNotFound = network.ErrNotFound
	// ErrInvalidRequest is returned for a missing or malformed network name or coordinate.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoRoutableSegments is returned when the network has no usable segments.
	ErrNoRoutableSegments = graph.ErrNoSegments
	// ErrProjectionFailed is returned when a query point cannot be snapped onto the network.
	ErrProjectionFailed = errors.New("projection failed")
	// ErrNoPathFound is returned when start and goal are not connected.
	ErrNoPathFound = errors.New("no path found")
	// ErrInternalComputation is returned for degenerate geometry or numeric failure.
	ErrInternalComputation = errors.New("internal computation error")
)

// KindOf classifies err. Errors outside the taxonomy are internal.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrNetworkNotFound):
		return KindNetworkNotFound
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, network.ErrInvalidName):
		return KindInvalidRequest
	case errors.Is(err, ErrNoRoutableSegments):
		return KindNoRoutableSegments
	case errors.Is(err, ErrProjectionFailed):
		return KindProjectionFailed
	case errors.Is(err, ErrNoPathFound):
		return KindNoPathFound
	}
	return KindInternal
}
