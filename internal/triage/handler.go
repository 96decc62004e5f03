package triage

import (
	"encoding/json"
	"net/http"

	"github.com/physiobook/physiobook-platform/pkg/logging"
)

// Handler exposes symptom triage over HTTP.
type Handler struct {
	analyzer *Analyzer
	logger   *logging.Logger
}

func NewHandler(analyzer *Analyzer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{analyzer: analyzer, logger: logger}
}

// Analyze handles POST /api/triage/analyze.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	assessment, err := h.analyzer.Analyze(r.Context(), input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if assessment.RequiresImmediate {
		h.logger.Warn("triage flagged emergency",
			"body_region", input.BodyRegion,
			"red_flags", len(assessment.RedFlags),
		)
	}

	writeJSON(w, http.StatusOK, assessment)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
