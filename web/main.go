package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/df07/go-procedural-raymarcher/pkg/renderer"
	"github.com/df07/go-procedural-raymarcher/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	dynamic := flag.String("dynamic", renderer.DefaultDynamicScene,
		"Scene loaded into the dynamic slot: "+strings.Join(renderer.DynamicSceneNames(), ", ")+" or a .scene file, empty for none")
	scenesDir := flag.String("scenes", "scenes", "Directory of .scene files selectable per request")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	composer, err := renderer.NewDynamicComposer(*dynamic)
	if err != nil {
		logger.Error("loading dynamic scene", "scene", *dynamic, "err", err)
		os.Exit(1)
	}

	// Create and start web server
	webServer := server.NewServer(*port, composer, *scenesDir)

	logger.Info("procedural raymarcher web server", "port", *port, "dynamic", *dynamic)

	if err := webServer.Start(); err != nil {
		logger.Error("starting server", "err", err)
		os.Exit(1)
	}
}
