package matching

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/physiobook/physiobook-platform/internal/scoring"
	"github.com/physiobook/physiobook-platform/pkg/logging"
)

// Handler exposes therapist matching and the public therapist directory.
type Handler struct {
	ranker      *Ranker
	recommender *Recommender
	repo        *Repository
	logger      *logging.Logger
}

// NewHandler creates a new matching handler. recommender may be nil when no
// LLM is configured; responses then carry the default recommendation.
func NewHandler(ranker *Ranker, recommender *Recommender, repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{ranker: ranker, recommender: recommender, repo: repo, logger: logger}
}

// MatchRequest is the body for POST /api/therapists/match.
type MatchRequest struct {
	PatientID            string `json:"patientId"`
	TriageCategory       string `json:"triageCategory"`
	UrgencyLevel         string `json:"urgencyLevel"`
	RecommendedSpecialty string `json:"recommendedSpecialty"`
	BodyRegion           string `json:"bodyRegion"`
	PreferredDate        string `json:"preferredDate,omitempty"` // YYYY-MM-DD
	PreferredTimeSlot    string `json:"preferredTimeSlot,omitempty"`
	PreferTelePhysio     bool   `json:"preferTelePhysio,omitempty"`
	Limit                int    `json:"limit,omitempty"`
}

// MatchResponse pairs the ranked matches with the LLM recommendation.
type MatchResponse struct {
	Matches        []Match        `json:"matches"`
	Recommendation Recommendation `json:"recommendation"`
}

// Match handles POST /api/therapists/match.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PatientID == "" {
		http.Error(w, "patientId is required", http.StatusBadRequest)
		return
	}
	if req.RecommendedSpecialty != "" && !KnownSpecialty(Specialty(req.RecommendedSpecialty)) {
		http.Error(w, "unknown recommendedSpecialty", http.StatusBadRequest)
		return
	}

	criteria := Criteria{
		PatientID:            req.PatientID,
		TriageCategory:       req.TriageCategory,
		UrgencyLevel:         req.UrgencyLevel,
		RecommendedSpecialty: Specialty(req.RecommendedSpecialty),
		BodyRegion:           req.BodyRegion,
		PreferredTimeSlot:    req.PreferredTimeSlot,
		PreferTelePhysio:     req.PreferTelePhysio,
	}
	if req.PreferredDate != "" {
		d, err := time.Parse("2006-01-02", req.PreferredDate)
		if err != nil {
			http.Error(w, "preferredDate must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		criteria.PreferredDate = &d
	}

	matches, err := h.ranker.Rank(r.Context(), criteria, req.Limit)
	if err != nil {
		var verr *scoring.ValidationError
		if errors.As(err, &verr) {
			h.logger.Error("candidate pool failed validation", "error", err)
			http.Error(w, "therapist data is invalid", http.StatusInternalServerError)
			return
		}
		h.logger.Error("therapist matching failed", "error", err, "patient_id", req.PatientID)
		http.Error(w, "failed to find therapists", http.StatusInternalServerError)
		return
	}

	resp := MatchResponse{Matches: matches}
	if h.recommender != nil {
		resp.Recommendation = h.recommender.Recommend(r.Context(), criteria, matches)
	} else if len(matches) == 0 {
		resp.Recommendation = Recommendation{
			TopRecommendation: "No therapists available",
			Reasoning:         "We couldn't find any available therapists matching your criteria. Please try different preferences or contact support.",
		}
	} else {
		resp.Recommendation = Recommendation{
			TopRecommendation: matches[0].TherapistName,
			Reasoning:         "Based on specialty match and availability, this therapist is well-suited for your condition.",
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListResponse is the directory listing payload.
type ListResponse struct {
	Therapists []TherapistSummary `json:"therapists"`
	Pagination Pagination         `json:"pagination"`
}

// Pagination describes offset paging state.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// List handles GET /api/therapists.
// Query params: specialty (optional), page (default 1), limit (default 10).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := intParam(q.Get("page"), 1)
	limit := intParam(q.Get("limit"), 10)
	specialty := q.Get("specialty")

	if specialty != "" && !KnownSpecialty(Specialty(specialty)) {
		http.Error(w, "unknown specialty", http.StatusBadRequest)
		return
	}

	therapists, total, err := h.repo.List(r.Context(), specialty, page, limit)
	if err != nil {
		h.logger.Error("therapist listing failed", "error", err)
		http.Error(w, "failed to fetch therapists", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Therapists: therapists,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

func intParam(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
