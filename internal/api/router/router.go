package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/physiobook/physiobook-platform/internal/appointments"
	httpmiddleware "github.com/physiobook/physiobook-platform/internal/http/middleware"
	"github.com/physiobook/physiobook-platform/internal/matching"
	"github.com/physiobook/physiobook-platform/internal/noshow"
	"github.com/physiobook/physiobook-platform/internal/patients"
	"github.com/physiobook/physiobook-platform/internal/therapists"
	"github.com/physiobook/physiobook-platform/internal/triage"
	"github.com/physiobook/physiobook-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AppointmentsHandler *appointments.Handler
	MatchingHandler     *matching.Handler
	TriageHandler       *triage.Handler
	PredictionsHandler  *noshow.Handler
	PatientsHandler     *patients.Handler
	TherapistsHandler   *therapists.Handler
	MetricsHandler      http.Handler
	AdminAuthSecret     string
	CORSAllowedOrigins  []string
	RateLimitPerSecond  float64
	RateLimitBurst      int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		public.Route("/api", func(api chi.Router) {
			if cfg.TriageHandler != nil {
				api.Post("/triage/analyze", cfg.TriageHandler.Analyze)
			}
			if cfg.MatchingHandler != nil {
				api.Post("/therapists/match", cfg.MatchingHandler.Match)
				api.Get("/therapists", cfg.MatchingHandler.List)
			}
			if cfg.TherapistsHandler != nil {
				api.Post("/therapists", cfg.TherapistsHandler.Create)
				api.Get("/therapists/{id}", cfg.TherapistsHandler.Get)
				api.Patch("/therapists/{id}/accepting", cfg.TherapistsHandler.SetAccepting)
			}
			if cfg.PatientsHandler != nil {
				api.Post("/patients", cfg.PatientsHandler.Create)
				api.Get("/patients", cfg.PatientsHandler.List)
				api.Get("/patients/{id}", cfg.PatientsHandler.Get)
			}
			if cfg.AppointmentsHandler != nil {
				api.Post("/appointments", cfg.AppointmentsHandler.Create)
				api.Get("/appointments", cfg.AppointmentsHandler.List)
				api.Post("/appointments/{id}/confirm", cfg.AppointmentsHandler.Confirm)
				api.Patch("/appointments/{id}/status", cfg.AppointmentsHandler.UpdateStatus)
			}
			if cfg.PredictionsHandler != nil {
				api.Post("/predictions/preview", cfg.PredictionsHandler.Preview)
			}
		})
	})

	// Admin routes (protected by JWT)
	if cfg.AdminAuthSecret != "" && cfg.PredictionsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/predictions/stats", cfg.PredictionsHandler.Stats)
		})
	}

	return r
}
