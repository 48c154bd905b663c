package main

import (
	"fmt"
	"log"

	noopstore "factura/internal/archive/noop"
	s3store "factura/internal/archive/s3"
	"factura/internal/batch"
	"factura/internal/config"
	"factura/internal/extractor/gemini"
	"factura/internal/handler"
	"factura/internal/port"
	"factura/internal/router"
	"factura/internal/staging"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	stager, err := staging.NewTempStager(cfg.Staging.Dir)
	if err != nil {
		return fmt.Errorf("failed to initialize stager: %w", err)
	}

	var archiveStore port.ArchiveStore
	if cfg.Archive.Enabled {
		archiveStore, err = s3store.NewS3Store(&cfg.Archive)
		if err != nil {
			return fmt.Errorf("failed to initialize archive store: %w", err)
		}
		log.Printf("archive: S3 archival enabled (bucket %s)", cfg.Archive.Bucket)
	} else {
		archiveStore = noopstore.NewNoopStore()
	}

	extractorClient := gemini.NewClient(&cfg.Gemini)

	// Initialize services
	batchSvc := batch.NewService(stager, extractorClient, archiveStore, cfg.Batch.Concurrency)

	// Initialize handlers
	extractionH := handler.NewExtractionHandler(batchSvc, cfg)
	healthH := handler.NewHealthHandler(cfg.Staging.Dir)

	// Setup router
	r := router.Setup(cfg, extractionH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
