package noshow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Outcome is what actually happened to a predicted appointment.
type Outcome string

const (
	OutcomeAttended    Outcome = "ATTENDED"
	OutcomeNoShow      Outcome = "NO_SHOW"
	OutcomeCancelled   Outcome = "CANCELLED"
	OutcomeRescheduled Outcome = "RESCHEDULED"
)

// ErrPredictionNotFound is returned when recording an outcome for an
// appointment that has no prediction row.
var ErrPredictionNotFound = errors.New("noshow: prediction not found")

// ValidOutcome reports whether s is a known outcome value.
func ValidOutcome(s string) bool {
	switch Outcome(s) {
	case OutcomeAttended, OutcomeNoShow, OutcomeCancelled, OutcomeRescheduled:
		return true
	}
	return false
}

// PredictionRecord is the persisted form of one prediction, including the
// feature vector kept as an audit artifact.
type PredictionRecord struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	PatientID     string    `json:"patient_id"`
	TherapistID   string    `json:"therapist_id"`
	Probability   float64   `json:"probability"`
	RiskLevel     RiskLevel `json:"risk_level"`
	Features      Features  `json:"feature_vector"`
	ActualOutcome *Outcome  `json:"actual_outcome,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// predictionDB is the database surface the repository needs.
type predictionDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists prediction records.
type Repository struct {
	db predictionDB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("noshow: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db predictionDB) *Repository {
	return &Repository{db: db}
}

// Create inserts a prediction row for a newly booked appointment.
func (r *Repository) Create(ctx context.Context, rec *PredictionRecord) (*PredictionRecord, error) {
	featureVector, err := json.Marshal(rec.Features)
	if err != nil {
		return nil, fmt.Errorf("noshow: encode feature vector: %w", err)
	}

	id := uuid.New()
	query := `
		INSERT INTO no_show_predictions (id, appointment_id, patient_id, therapist_id, probability, risk_level, feature_vector)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		rec.AppointmentID,
		rec.PatientID,
		rec.TherapistID,
		rec.Probability,
		string(rec.RiskLevel),
		featureVector,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("noshow: insert prediction: %w", err)
	}

	out := *rec
	out.ID = id.String()
	out.CreatedAt = createdAt
	return &out, nil
}

// UpdateOutcome records what actually happened to the appointment so the
// accuracy report can compare prediction against reality.
func (r *Repository) UpdateOutcome(ctx context.Context, appointmentID string, outcome Outcome) error {
	query := `
		UPDATE no_show_predictions
		SET actual_outcome = $2, updated_at = NOW()
		WHERE appointment_id = $1
	`
	tag, err := r.db.Exec(ctx, query, appointmentID, string(outcome))
	if err != nil {
		return fmt.Errorf("noshow: update outcome: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPredictionNotFound
	}
	return nil
}
