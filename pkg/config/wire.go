package config

import (
	"fmt"

	"github.com/charmbracelet/log"

	"network_router/pkg/api"
	"network_router/pkg/graph"
	"network_router/pkg/network"
	osmparser "network_router/pkg/osm"
	"network_router/pkg/routing"
)

// Open returns the network store described by c.
func (c StoreConfig) Open(logger *log.Logger) (network.Store, error) {
	switch c.Kind {
	case "", "geojson":
		return network.NewDirStore(c.Dir, logger), nil
	case "osm":
		bbox, err := osmparser.ParseBBox(c.BBox)
		if err != nil {
			return nil, err
		}
		return network.NewOSMStore(c.Dir, bbox, logger), nil
	}
	return nil, fmt.Errorf("unknown store kind %q", c.Kind)
}

// EngineOptions converts c into routing engine options.
func (c RoutingConfig) EngineOptions(logger *log.Logger) (routing.Options, error) {
	strategy, err := graph.ParseStrategy(c.Intersections)
	if err != nil {
		return routing.Options{}, err
	}
	return routing.Options{
		DefaultNetwork: c.DefaultNetwork,
		Precision:      c.Precision,
		Strategy:       strategy,
		MaxSnapMeters:  c.MaxSnapMeters,
		Logger:         logger,
	}, nil
}

// API converts c into HTTP server settings.
func (c ServerConfig) API() api.ServerConfig {
	return api.ServerConfig{
		Addr:           c.Addr,
		ReadTimeout:    c.ReadTimeout,
		WriteTimeout:   c.WriteTimeout,
		RequestTimeout: c.RequestTimeout,
		MaxConcurrent:  c.MaxConcurrent,
		CORSOrigin:     c.CORSOrigin,
	}
}
