package main

import (
	"context"
	"log"

	"neuropipe/adapters/excel"
	"neuropipe/adapters/plot"
	"neuropipe/app"
	"neuropipe/internal/config"
	"neuropipe/internal/normalize"

	"github.com/joho/godotenv"
)

// Default entrypoint: one full pipeline pass over the configured dataset.
// The cmd/cli binary offers the individual stages.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	if err := cfg.RequireDataFile(); err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	tables := excel.NewTableStore(cfg.Data.File)
	renderer := plot.NewRenderer(cfg.Plots.Dir, cfg.Plots.Workers)
	pipeline := app.NewPipeline(cfg, tables, nil, renderer, normalize.LogSink{})

	if _, err := pipeline.Run(context.Background()); err != nil {
		log.Fatalf("pipeline failed: %v", err)
	}
}
