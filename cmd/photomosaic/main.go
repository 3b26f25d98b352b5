package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/logicielsjpb/photomosaic/internal/config"
	"github.com/logicielsjpb/photomosaic/internal/engine"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("photomosaic %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		}
	}

	configPath := flag.String("config", "photomosaic.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "photomosaic: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "photomosaic: create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := engine.New(cfg, logger).Run(context.Background()); err != nil {
		logger.Fatal("mosaic build failed", zap.Error(err))
	}
}

// newLogger returns a zap logger. When debug is true, uses development
// config (human-readable, debug level); otherwise production config.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
