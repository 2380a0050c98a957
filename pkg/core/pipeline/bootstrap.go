package pipeline

import (
	"context"
	"log"
	"os"

	"gopkg.in/yaml.v2"

	"ppm_extraction/pkg/core/agent"
	"ppm_extraction/pkg/core/highlight"
	"ppm_extraction/pkg/core/store"
)

// FileConfig is the shape of config/models.yaml: provider selection at the
// top level (agent manager shape) plus pipeline settings.
type FileConfig struct {
	agent.Config `yaml:",inline"`
	Pipeline     Settings `yaml:"pipeline"`
}

// LoadConfig reads the yaml config. A missing file yields defaults, so
// local runs work with nothing but environment variables.
func LoadConfig(path string) FileConfig {
	var cfg FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[CONFIG] %s not readable (%v), using defaults", path, err)
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Printf("[CONFIG] Failed to parse %s: %v, using defaults", path, err)
	}

	if cfg.Pipeline.StorageRoot == "" {
		cfg.Pipeline.StorageRoot = "tmp"
	}
	if cfg.Pipeline.LedgerFile == "" {
		cfg.Pipeline.LedgerFile = "processed_files.txt"
	}
	return cfg
}

// BuildServiceContext wires every collaborator from the loaded config.
// Backends that are not configured degrade to local substitutes (in-memory
// store, file audit vault) with a logged notice.
func BuildServiceContext(ctx context.Context, cfg FileConfig) *ServiceContext {
	svc := &ServiceContext{
		Agents:      agent.NewManager(cfg.Config),
		Highlighter: highlight.New(),
		StorageRoot: cfg.Pipeline.StorageRoot,
	}

	if cfg.Pipeline.SpreadsheetID != "" {
		st, err := store.NewSheetsStore(ctx, cfg.Pipeline.SpreadsheetID)
		if err != nil {
			log.Printf("[INIT] Sheets store unavailable (%v), using in-memory store", err)
		} else {
			svc.Store = st
		}
	}
	if svc.Store == nil {
		log.Printf("[INIT] No spreadsheet configured, rows stay in memory")
		svc.Store = store.NewMemoryStore()
	}

	if cfg.Pipeline.DriveFolderID != "" {
		src, err := store.NewDriveSource(ctx, svc.StorageRoot)
		if err != nil {
			log.Printf("[INIT] Drive source unavailable: %v", err)
		} else {
			svc.Source = src
		}
	}

	ledger, err := store.OpenLedger(cfg.Pipeline.LedgerFile)
	if err != nil {
		log.Printf("[INIT] Ledger unavailable: %v", err)
	} else {
		svc.Ledger = ledger
	}

	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			log.Printf("[INIT] Database unavailable: %v", err)
		}
	}
	svc.Audit = store.NewAuditRepo(store.GetPool(), "")

	return svc
}
