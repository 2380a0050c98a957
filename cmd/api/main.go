package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	apiconfig "ppm_extraction/pkg/api/config"
	"ppm_extraction/pkg/api/deals"
	"ppm_extraction/pkg/api/documents"
	"ppm_extraction/pkg/api/process"
	"ppm_extraction/pkg/core/pipeline"
	"ppm_extraction/pkg/core/prompt"
	"ppm_extraction/pkg/core/store"
)

func main() {
	godotenv.Load()

	if err := prompt.LoadFromDirectory("resources"); err != nil {
		fmt.Printf("[WARNING] Failed to load prompt overrides: %v\n", err)
		fmt.Println("  Falling back to built-in prompts")
	} else {
		fmt.Printf("[PROMPT] %d prompts registered\n", prompt.Get().Count())
	}

	cfg := pipeline.LoadConfig("config/models.yaml")

	ctx := context.Background()
	svc := pipeline.BuildServiceContext(ctx, cfg)
	defer store.Close()
	orch := pipeline.NewOrchestrator(svc, cfg.Pipeline)

	// Config endpoints
	configHandler := apiconfig.NewHandler(svc.Agents)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	// Batch processing endpoints
	processHandler := process.NewHandler(svc, orch, cfg.Pipeline.DriveFolderID)
	http.HandleFunc("/api/process", processHandler.HandleProcess)
	http.HandleFunc("/api/files", processHandler.HandleFiles)

	// Deal data endpoints
	dealsHandler := deals.NewHandler(svc)
	http.HandleFunc("/api/deals", dealsHandler.HandleDeals)
	http.HandleFunc("/api/deals/", dealsHandler.HandleDeals)

	// Document upload and serving endpoints
	documentsHandler := documents.NewHandler(svc)
	http.HandleFunc("/api/documents", documentsHandler.HandleUpload)
	http.HandleFunc("/api/documents/", documentsHandler.HandleDocuments)

	fmt.Println("API server starting on :8080...")
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/config/switch")
	fmt.Println("  - POST /api/process")
	fmt.Println("  - GET  /api/files")
	fmt.Println("  - GET  /api/deals")
	fmt.Println("  - GET  /api/deals/{deal_id}")
	fmt.Println("  - GET  /api/deals/{deal_id}/report")
	fmt.Println("  - POST /api/documents")
	fmt.Println("  - GET  /api/documents/{deal_id}")
	fmt.Println("  - GET  /api/documents/{deal_id}/highlighted")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
