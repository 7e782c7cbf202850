package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/veldhoen/tapster/internal/model"
)

const maxRequestBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleEnrichOrder categorizes every line item of the submitted order.
// Enrichment is total: the response always carries a category for every item,
// so the only client errors are malformed payloads.
func (s *Server) handleEnrichOrder(w http.ResponseWriter, r *http.Request) {
	defer func() {
		_ = r.Body.Close()
	}()

	var order model.Order
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := decoder.Decode(&order); err != nil {
		writeError(w, http.StatusBadRequest, "invalid order payload: "+err.Error())
		return
	}
	if len(order.Items) == 0 {
		writeError(w, http.StatusBadRequest, "order has no line items")
		return
	}

	enriched, err := s.enricher.EnrichOrder(r.Context(), order)
	if err != nil {
		slog.Error("Enrichment failed",
			"request_id", getRequestID(r),
			"order_id", order.ID,
			"error", err)
		writeError(w, http.StatusInternalServerError, "enrichment failed")
		return
	}

	writeJSON(w, http.StatusOK, enriched)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.recorder.Compute())
}

func (s *Server) handleAnalyticsRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.recorder.Refresh(r.Context()); err != nil {
		slog.Error("Analytics refresh failed",
			"request_id", getRequestID(r),
			"error", err)
		writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, s.recorder.Compute())
}

type categoryEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	codes := s.taxonomy.Codes()
	entries := make([]categoryEntry, 0, len(codes))
	for _, code := range codes {
		entries = append(entries, categoryEntry{Code: code, Name: s.taxonomy.Name(code)})
	}
	writeJSON(w, http.StatusOK, entries)
}
