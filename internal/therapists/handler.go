package therapists

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/physiobook/physiobook-platform/pkg/logging"
)

// Handler exposes therapist profile management over HTTP. Listing and
// matching live in internal/matching.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /api/therapists.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var t Therapist
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := t.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.repo.Create(r.Context(), &t)
	if err != nil {
		h.logger.Error("therapist creation failed", "error", err)
		http.Error(w, "failed to create therapist", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// Get handles GET /api/therapists/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	t, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "therapist not found", http.StatusNotFound)
			return
		}
		h.logger.Error("therapist lookup failed", "error", err, "therapist_id", id)
		http.Error(w, "failed to fetch therapist", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// SetAccepting handles PATCH /api/therapists/{id}/accepting.
func (h *Handler) SetAccepting(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Accepting bool `json:"accepting"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.repo.SetAcceptingPatients(r.Context(), id, req.Accepting); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "therapist not found", http.StatusNotFound)
			return
		}
		h.logger.Error("therapist update failed", "error", err, "therapist_id", id)
		http.Error(w, "failed to update therapist", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "accepting": req.Accepting})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
