package pipeline

import (
	"path/filepath"
	"strings"

	"ppm_extraction/pkg/core/agent"
	"ppm_extraction/pkg/core/highlight"
	"ppm_extraction/pkg/core/store"
)

// ServiceContext carries every collaborator a pipeline run needs. It is
// constructed once at process start and passed explicitly; there are no
// package-level service singletons.
type ServiceContext struct {
	Agents      *agent.Manager
	Store       store.TabularStore
	Source      store.DocumentSource // nil when processing local files only
	Ledger      *store.Ledger        // nil disables skip tracking
	Audit       *store.AuditRepo     // nil disables the audit vault
	Highlighter *highlight.Highlighter

	// StorageRoot is where downloaded PDFs, highlighted copies and raw
	// answer dumps live. Served paths are confined to it.
	StorageRoot string
}

// Settings are the tunable pipeline parameters, loaded from the yaml
// config next to the agent model selection.
type Settings struct {
	SpreadsheetID  string `yaml:"spreadsheet_id"`
	DriveFolderID  string `yaml:"drive_folder_id"`
	StorageRoot    string `yaml:"storage_root"`
	LedgerFile     string `yaml:"ledger_file"`
	TopK           int    `yaml:"top_k"`
	FirstPages     int    `yaml:"first_pages"`
	LastPages      int    `yaml:"last_pages"`
	SectionWorkers int    `yaml:"section_workers"`
}

// DealIDFromPath derives the deal ID from a source document path: the
// file name without its extension.
func DealIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
