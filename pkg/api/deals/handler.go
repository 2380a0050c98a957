package deals

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"ppm_extraction/pkg/core/pipeline"
	"ppm_extraction/pkg/core/store"
	"ppm_extraction/pkg/core/utils"
)

type DataResponse struct {
	DealID string                         `json:"deal_id"`
	Data   map[string][]map[string]string `json:"data"`
}

type ListResponse struct {
	DealIDs []string `json:"deal_ids"`
}

// Handler serves extracted deal data out of the tabular store.
type Handler struct {
	Svc *pipeline.ServiceContext
}

func NewHandler(svc *pipeline.ServiceContext) *Handler {
	return &Handler{Svc: svc}
}

// HandleDeals routes /api/deals, /api/deals/{deal_id} and
// /api/deals/{deal_id}/report.
func (h *Handler) HandleDeals(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/deals"), "/")
	switch {
	case rest == "":
		h.listDeals(w, r)
	case strings.HasSuffix(rest, "/report"):
		h.dealReport(w, r, strings.TrimSuffix(rest, "/report"))
	default:
		h.dealData(w, r, rest)
	}
}

func (h *Handler) listDeals(w http.ResponseWriter, r *http.Request) {
	ids, err := store.AllDealIDs(r.Context(), h.Svc.Store)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	json.NewEncoder(w).Encode(ListResponse{DealIDs: ids})
}

func (h *Handler) dealData(w http.ResponseWriter, r *http.Request, dealID string) {
	data, err := store.DealData(r.Context(), h.Svc.Store, dealID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(DataResponse{DealID: dealID, Data: data})
}

// dealReport renders the deal's raw-answer dump as HTML.
func (h *Handler) dealReport(w http.ResponseWriter, r *http.Request, dealID string) {
	path, err := h.Svc.RawDumpDocumentPath(dealID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "No report for deal "+dealID, http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	html, err := utils.RenderMarkdown(string(raw))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}
