package documents

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"ppm_extraction/pkg/core/pipeline"
)

// Handler serves the original and highlighted PDFs for a deal out of the
// storage root. Requests that resolve outside the root are rejected.
type Handler struct {
	Svc *pipeline.ServiceContext
}

func NewHandler(svc *pipeline.ServiceContext) *Handler {
	return &Handler{Svc: svc}
}

// HandleDocuments routes /api/documents/{deal_id} and
// /api/documents/{deal_id}/highlighted.
func (h *Handler) HandleDocuments(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/documents"), "/")
	if rest == "" {
		http.Error(w, "Deal ID required", http.StatusBadRequest)
		return
	}

	var (
		path string
		err  error
	)
	if strings.HasSuffix(rest, "/highlighted") {
		path, err = h.Svc.HighlightedDocumentPath(strings.TrimSuffix(rest, "/highlighted"))
	} else {
		path, err = h.Svc.DocumentPath(rest)
	}

	var traversal *pipeline.PathTraversalError
	if errors.As(err, &traversal) {
		http.Error(w, "Invalid document path", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

type UploadResponse struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
}

// maxUploadBytes bounds the in-memory part of a multipart upload.
const maxUploadBytes = 64 << 20

// HandleUpload accepts a PDF into the storage root, where the processing
// CLI picks it up. The stored name is prefixed with a fresh file ID so
// repeated uploads of the same document never collide.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
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

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart request", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if header.Header.Get("Content-Type") != "application/pdf" &&
		!strings.EqualFold(filepath.Ext(name), ".pdf") {
		http.Error(w, "Only PDF files are allowed.", http.StatusBadRequest)
		return
	}

	fileID := uuid.New().String()
	dest := filepath.Join(h.Svc.StorageRoot, fileID+"_"+name)
	if err := os.MkdirAll(h.Svc.StorageRoot, 0o755); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out, err := os.Create(dest)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(UploadResponse{FileID: fileID, FilePath: dest})
}
