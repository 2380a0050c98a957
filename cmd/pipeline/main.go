package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ppm_extraction/pkg/core/pipeline"
	"ppm_extraction/pkg/core/prompt"
	"ppm_extraction/pkg/core/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	if err := prompt.LoadFromDirectory("resources"); err != nil {
		log.Printf("[PROMPT] Override load failed: %v, using built-in prompts", err)
	}

	cfg := pipeline.LoadConfig("config/models.yaml")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer store.Close()

	svc := pipeline.BuildServiceContext(ctx, cfg)
	orch := pipeline.NewOrchestrator(svc, cfg.Pipeline)

	args := os.Args[1:]
	if len(args) == 0 {
		if cfg.Pipeline.DriveFolderID == "" {
			log.Fatal("Usage: pipeline <pdf path>... (or configure drive_folder_id for batch mode)")
		}
		if err := orch.ProcessBatch(ctx, cfg.Pipeline.DriveFolderID); err != nil {
			log.Fatalf("[PIPELINE] Batch failed: %v", err)
		}
		return
	}

	for _, path := range args {
		if ctx.Err() != nil {
			log.Println("[PIPELINE] Interrupted, stopping")
			return
		}
		if err := orch.ProcessDocument(ctx, path); err != nil {
			log.Printf("[PIPELINE] %s failed: %v", path, err)
		}
	}
}
