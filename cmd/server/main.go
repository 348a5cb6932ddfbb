package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gpsartroute/pkg/api"
	"gpsartroute/pkg/osm"
	"gpsartroute/pkg/roadgraph"
	"gpsartroute/pkg/routeart"
)

func main() {
	pbfPath := flag.String("osm", "", "Path to .osm.pbf extract covering the service area")
	templatesDir := flag.String("templates", "./data/templates", "Directory of <name>.svg path-data files")
	outputDir := flag.String("output", "./output", "Directory for saved GeoJSON results")
	port := flag.Int("port", 8080, "HTTP port")
	maxGraphCacheEntries := flag.Int("graph-cache-entries", 4, "Max resident regional road graphs")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	flag.Parse()

	if *pbfPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: server --osm <file.osm.pbf> [--templates dir] [--output dir] [--port 8080]")
		os.Exit(1)
	}

	settings := routeart.DefaultSettings()
	settings.Port = *port
	settings.DataRoot = *templatesDir
	settings.OutputDir = *outputDir

	provider := osm.NewProvider(*pbfPath)
	graphs := roadgraph.NewCache(provider, *maxGraphCacheEntries)

	svc := routeart.NewService(
		routeart.NewFileTemplateSource(settings.DataRoot),
		graphs,
		routeart.NewFileOutputSink(settings.OutputDir),
	)

	addr := fmt.Sprintf(":%d", settings.Port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin

	handlers := api.NewHandlers(svc)
	srv := api.NewServer(cfg, handlers)

	log.Printf("Serving templates from %s, saving output to %s", settings.DataRoot, settings.OutputDir)
	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
