package noshow

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/physiobook/physiobook-platform/internal/scoring"
	"github.com/physiobook/physiobook-platform/pkg/logging"
)

// Handler exposes prediction preview and accuracy statistics over HTTP.
type Handler struct {
	predictor *Predictor
	repo      *Repository
	logger    *logging.Logger
}

// NewHandler creates a new prediction handler.
func NewHandler(predictor *Predictor, repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{predictor: predictor, repo: repo, logger: logger}
}

// PreviewRequest is the body for ad-hoc risk scoring.
type PreviewRequest struct {
	PatientID     string `json:"patient_id"`
	ScheduledDate string `json:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime string `json:"scheduled_time"` // HH:MM
	Type          string `json:"type"`
	HasConfirmed  bool   `json:"has_confirmed"`
	RemindersSent int    `json:"reminders_sent"`
}

// PreviewResponse carries the prediction plus the extracted feature vector.
type PreviewResponse struct {
	Features   Features   `json:"features"`
	Prediction Prediction `json:"prediction"`
}

// Preview handles POST /api/predictions/preview.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PatientID == "" || req.ScheduledDate == "" || req.ScheduledTime == "" {
		http.Error(w, "patient_id, scheduled_date and scheduled_time are required", http.StatusBadRequest)
		return
	}

	scheduledDate, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		http.Error(w, "scheduled_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	apptType := AppointmentType(req.Type)
	if req.Type == "" {
		apptType = TypeInPerson
	}

	features, prediction, err := h.predictor.Assess(r.Context(), req.PatientID, CandidateAppointment{
		Date:          scheduledDate,
		Time:          req.ScheduledTime,
		Type:          apptType,
		HasConfirmed:  req.HasConfirmed,
		RemindersSent: req.RemindersSent,
	})
	if err != nil {
		var verr *scoring.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("prediction preview failed", "error", err, "patient_id", req.PatientID)
		http.Error(w, "failed to score appointment", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, PreviewResponse{Features: features, Prediction: prediction})
}

// Stats handles GET /admin/predictions/stats.
// Query params: therapist_id (optional).
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.Stats(r.Context(), r.URL.Query().Get("therapist_id"))
	if err != nil {
		h.logger.Error("prediction stats failed", "error", err)
		http.Error(w, "failed to compute statistics", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
