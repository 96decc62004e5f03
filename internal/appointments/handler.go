package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/physiobook/physiobook-platform/internal/scoring"
	"github.com/physiobook/physiobook-platform/pkg/logging"
)

// Handler exposes booking and appointment lifecycle over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// CreateRequest is the body for POST /api/appointments.
type CreateRequest struct {
	PatientID          string  `json:"patient_id"`
	TherapistID        string  `json:"therapist_id"`
	ScheduledDate      string  `json:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime      string  `json:"scheduled_time"` // HH:MM
	Duration           int     `json:"duration,omitempty"`
	Type               string  `json:"type,omitempty"`
	TriageAssessmentID *string `json:"triage_assessment_id,omitempty"`
	ChiefComplaint     string  `json:"chief_complaint,omitempty"`
}

// Create handles POST /api/appointments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PatientID == "" || req.TherapistID == "" || req.ScheduledDate == "" || req.ScheduledTime == "" {
		http.Error(w, "patient_id, therapist_id, scheduled_date and scheduled_time are required", http.StatusBadRequest)
		return
	}
	scheduledDate, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		http.Error(w, "scheduled_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if req.Type != "" && !ValidType(req.Type) {
		http.Error(w, "unknown appointment type", http.StatusBadRequest)
		return
	}

	result, err := h.service.Book(r.Context(), BookingRequest{
		PatientID:          req.PatientID,
		TherapistID:        req.TherapistID,
		ScheduledDate:      scheduledDate,
		ScheduledTime:      req.ScheduledTime,
		Duration:           req.Duration,
		Type:               Type(req.Type),
		TriageAssessmentID: req.TriageAssessmentID,
		ChiefComplaint:     req.ChiefComplaint,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotTaken):
			http.Error(w, "This time slot is no longer available", http.StatusConflict)
		case isValidation(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("booking failed", "error", err, "patient_id", req.PatientID)
			http.Error(w, "failed to book appointment", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// List handles GET /api/appointments.
// Query params: patient_id, therapist_id, status, upcoming=true.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		PatientID:   q.Get("patient_id"),
		TherapistID: q.Get("therapist_id"),
	}
	if status := q.Get("status"); status != "" {
		if !ValidStatus(status) {
			http.Error(w, "unknown status", http.StatusBadRequest)
			return
		}
		filter.Status = Status(status)
	}
	if q.Get("upcoming") == "true" {
		now := time.Now()
		filter.Upcoming = &now
	}

	appointments, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("appointment listing failed", "error", err)
		http.Error(w, "failed to fetch appointments", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"appointments": appointments})
}

// Confirm handles POST /api/appointments/{id}/confirm.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	appt, err := h.service.Confirm(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("appointment confirmation failed", "error", err, "appointment_id", id)
		http.Error(w, "failed to confirm appointment", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

// StatusRequest is the body for PATCH /api/appointments/{id}/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/appointments/{id}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !ValidStatus(req.Status) {
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}

	appt, err := h.service.UpdateStatus(r.Context(), id, Status(req.Status))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("status update failed", "error", err, "appointment_id", id)
		http.Error(w, "failed to update appointment", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

func isValidation(err error) bool {
	var verr *scoring.ValidationError
	return errors.As(err, &verr)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
