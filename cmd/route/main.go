package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cast"

	"network_router/pkg/config"
	"network_router/pkg/routing"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	dataDir := flag.String("data", "", "Network directory (overrides config)")
	networkName := flag.String("network", "", "Network to route on (default from config)")
	from := flag.String("from", "", "Start coordinate as lon,lat")
	to := flag.String("to", "", "Goal coordinate as lon,lat")
	flag.Parse()

	if *from == "" || *to == "" {
		fmt.Fprintln(os.Stderr, "Usage: route [--network streets] --from lon,lat --to lon,lat [--data dir] [--config file]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("config", err)
	}
	if *dataDir != "" {
		cfg.Store.Dir = *dataDir
	}
	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		fatal("config", err)
	}

	start, err := parseLonLat(*from)
	if err != nil {
		fatal("from", err)
	}
	goal, err := parseLonLat(*to)
	if err != nil {
		fatal("to", err)
	}

	store, err := cfg.Store.Open(logger)
	if err != nil {
		fatal("store", err)
	}
	opts, err := cfg.Routing.EngineOptions(logger)
	if err != nil {
		fatal("config", err)
	}

	res, err := routing.NewEngine(store, opts).Route(context.Background(), routing.Request{
		Network: *networkName,
		From:    start,
		To:      goal,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", routing.KindOf(err), err)
		os.Exit(1)
	}

	f := geojson.NewFeature(res.LineString())
	f.Properties["layer"] = res.Network
	f.Properties["length_meters"] = res.TotalDistanceMeters

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		fatal("encode", err)
	}
}

// parseLonLat parses "lon,lat".
func parseLonLat(s string) (orb.Point, error) {
	lonStr, latStr, ok := strings.Cut(s, ",")
	if !ok {
		return orb.Point{}, fmt.Errorf("%q: want lon,lat", s)
	}
	lon, err := cast.ToFloat64E(strings.TrimSpace(lonStr))
	if err != nil {
		return orb.Point{}, fmt.Errorf("longitude %q: %w", lonStr, err)
	}
	lat, err := cast.ToFloat64E(strings.TrimSpace(latStr))
	if err != nil {
		return orb.Point{}, fmt.Errorf("latitude %q: %w", latStr, err)
	}
	return orb.Point{lon, lat}, nil
}

func fatal(what string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", what, err)
	os.Exit(1)
}
