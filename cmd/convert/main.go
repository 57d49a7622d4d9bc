package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"network_router/pkg/network"
	osmparser "network_router/pkg/osm"
)

func main() {
	input := flag.String("input", "", "Path to .osm.pbf file")
	outDir := flag.String("out", "data", "Output directory for the network file")
	name := flag.String("name", "", "Network name (default: input file name without extension)")
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng (e.g. 1.15,103.6,1.48,104.1)")
	singapore := flag.Bool("singapore", false, "Shortcut for --bbox 1.15,103.6,1.48,104.1 (Singapore bounding box)")
	kl := flag.Bool("kl", false, "Shortcut for --bbox 2.75,101.2,3.5,102.0 (Selangor + Kuala Lumpur bounding box)")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: convert --input <file.osm.pbf> [--out data] [--name streets] [--singapore | --kl | --bbox minLat,minLng,maxLat,maxLng]")
		os.Exit(1)
	}

	// Parse bbox option.
	bboxArg := *bbox
	switch {
	case *kl:
		bboxArg = "kl"
	case *singapore:
		bboxArg = "singapore"
	}
	box, err := osmparser.ParseBBox(bboxArg)
	if err != nil {
		logger.Fatal("bbox", "err", err)
	}
	if !box.IsZero() {
		logger.Info("bounding box filter",
			"lat", fmt.Sprintf("[%.4f, %.4f]", box.MinLat, box.MaxLat),
			"lng", fmt.Sprintf("[%.4f, %.4f]", box.MinLng, box.MaxLng))
	}

	netName := *name
	if netName == "" {
		netName = strings.TrimSuffix(filepath.Base(*input), network.PBFExt)
	}
	if err := network.ValidateName(netName); err != nil {
		logger.Fatal("network name", "err", err)
	}

	start := time.Now()

	// Step 1: Parse OSM data.
	f, err := os.Open(*input)
	if err != nil {
		logger.Fatal("open input", "err", err)
	}
	defer f.Close()

	res, err := osmparser.Parse(context.Background(), f, osmparser.ParseOptions{BBox: box, Logger: logger})
	if err != nil {
		logger.Fatal("parse OSM data", "err", err)
	}
	logger.Info("parsed", "ways", res.NumWays, "lines", len(res.Lines), "missing_coords", res.MissingCoords)

	// Step 2: Write the network file.
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Fatal("create output dir", "err", err)
	}
	if err := network.WriteFile(*outDir, netName, res.Lines); err != nil {
		logger.Fatal("write network", "err", err)
	}

	out := filepath.Join(*outDir, netName+network.GeoJSONExt)
	info, _ := os.Stat(out)
	var sizeMB float64
	if info != nil {
		sizeMB = float64(info.Size()) / (1024 * 1024)
	}
	logger.Info("done", "took", time.Since(start).Round(time.Millisecond), "output", out, "size_mb", fmt.Sprintf("%.1f", sizeMB))
}
