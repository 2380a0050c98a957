package process

import (
	"encoding/json"
	"net/http"

	"ppm_extraction/pkg/core/pipeline"
)

type FilesResponse struct {
	ProcessedFileIDs []string `json:"processed_file_ids"`
}

type ProcessResponse struct {
	Message string `json:"message"`
}

// Handler exposes batch-processing endpoints.
type Handler struct {
	Svc          *pipeline.ServiceContext
	Orchestrator *pipeline.Orchestrator
	FolderID     string
}

func NewHandler(svc *pipeline.ServiceContext, orch *pipeline.Orchestrator, folderID string) *Handler {
	return &Handler{Svc: svc, Orchestrator: orch, FolderID: folderID}
}

// HandleProcess triggers one pass over the source folder: list, skip
// already-processed files, run the pipeline on the rest.
func (h *Handler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.Orchestrator.ProcessBatch(r.Context(), h.FolderID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(ProcessResponse{Message: "File processing triggered."})
}

// HandleFiles returns the processed-document ledger.
func (h *Handler) HandleFiles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	ids := []string{}
	if h.Svc.Ledger != nil {
		ids = h.Svc.Ledger.IDs()
	}
	json.NewEncoder(w).Encode(FilesResponse{ProcessedFileIDs: ids})
}
