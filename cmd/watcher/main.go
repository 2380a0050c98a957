package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ppm_extraction/pkg/core/pipeline"
	"ppm_extraction/pkg/core/prompt"
	"ppm_extraction/pkg/core/store"
)

// defaultInterval matches the source-folder polling cadence the extraction
// service has always run at.
const defaultInterval = 2 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	if err := prompt.LoadFromDirectory("resources"); err != nil {
		log.Printf("[PROMPT] Override load failed: %v, using built-in prompts", err)
	}

	cfg := pipeline.LoadConfig("config/models.yaml")
	if cfg.Pipeline.DriveFolderID == "" {
		log.Fatal("drive_folder_id must be configured for the watcher")
	}

	interval := defaultInterval
	if v := os.Getenv("WATCH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("Invalid WATCH_INTERVAL %q: %v", v, err)
		}
		interval = d
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer store.Close()

	svc := pipeline.BuildServiceContext(ctx, cfg)
	orch := pipeline.NewOrchestrator(svc, cfg.Pipeline)

	log.Printf("[WATCHER] Polling folder %s every %v", cfg.Pipeline.DriveFolderID, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First pass immediately, then on every tick.
	for {
		if err := orch.ProcessBatch(ctx, cfg.Pipeline.DriveFolderID); err != nil {
			if ctx.Err() != nil {
				log.Println("[WATCHER] Shutting down")
				return
			}
			log.Printf("[WATCHER] Batch failed: %v", err)
		}

		select {
		case <-ctx.Done():
			log.Println("[WATCHER] Shutting down")
			return
		case <-ticker.C:
		}
	}
}
