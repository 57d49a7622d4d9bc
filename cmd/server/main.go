package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"network_router/pkg/api"
	"network_router/pkg/config"
	"network_router/pkg/routing"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	dataDir := flag.String("data", "", "Network directory (overrides config)")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dataDir != "" {
		cfg.Store.Dir = *dataDir
	}
	if *corsOrigin != "" {
		cfg.Server.CORSOrigin = *corsOrigin
	}

	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	store, err := cfg.Store.Open(logger.WithPrefix("store"))
	if err != nil {
		logger.Fatal("open network store", "err", err)
	}
	opts, err := cfg.Routing.EngineOptions(logger.WithPrefix("engine"))
	if err != nil {
		logger.Fatal("routing options", "err", err)
	}
	engine := routing.NewEngine(store, opts)

	// Report what is available; a missing directory is not fatal.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	names, err := store.List(ctx)
	cancel()
	if err != nil {
		logger.Warn("list networks", "err", err)
	}
	logger.Info("network store ready",
		"kind", cfg.Store.Kind,
		"dir", cfg.Store.Dir,
		"networks", names,
		"default", cfg.Routing.DefaultNetwork,
		"intersections", cfg.Routing.Intersections,
	)

	// Setup HTTP server.
	metrics := api.NewMetrics()
	handlers := api.NewHandlers(engine, store, metrics, logger.WithPrefix("api"))
	srv := api.NewServer(cfg.Server.API(), handlers, metrics, logger.WithPrefix("http"))

	if err := api.ListenAndServe(srv, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
