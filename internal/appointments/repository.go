package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/physiobook/physiobook-platform/internal/noshow"
)

// appointmentDB is the database surface the repository needs.
type appointmentDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists appointments.
type Repository struct {
	db appointmentDB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db appointmentDB) *Repository {
	return &Repository{db: db}
}

const appointmentColumns = `id, patient_id, therapist_id, scheduled_date, scheduled_time, duration, type, status, triage_assessment_id, COALESCE(chief_complaint, ''), no_show_probability, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.PatientID, &a.TherapistID, &a.ScheduledDate, &a.ScheduledTime,
		&a.Duration, &a.Type, &a.Status, &a.TriageAssessmentID, &a.ChiefComplaint,
		&a.NoShowProbability, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: scan appointment: %w", err)
	}
	return &a, nil
}

// Create inserts a new appointment and returns the stored row.
func (r *Repository) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	id := uuid.New()
	query := `
		INSERT INTO appointments (id, patient_id, therapist_id, scheduled_date, scheduled_time, duration, type, status, triage_assessment_id, chief_complaint, no_show_probability)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + appointmentColumns
	row := r.db.QueryRow(ctx, query,
		id, a.PatientID, a.TherapistID, a.ScheduledDate, a.ScheduledTime,
		a.Duration, string(a.Type), string(a.Status), a.TriageAssessmentID,
		a.ChiefComplaint, a.NoShowProbability,
	)
	created, err := scanAppointment(row)
	if err != nil {
		return nil, fmt.Errorf("appointments: insert appointment: %w", err)
	}
	return created, nil
}

// GetByID returns one appointment or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	return scanAppointment(r.db.QueryRow(ctx, query, id))
}

// SlotTaken reports whether the therapist already has a pending or confirmed
// appointment at the given date and time.
func (r *Repository) SlotTaken(ctx context.Context, therapistID string, date time.Time, hhmm string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE therapist_id = $1 AND scheduled_date = $2 AND scheduled_time = $3
			AND status IN ('PENDING', 'CONFIRMED')
		)
	`
	var taken bool
	if err := r.db.QueryRow(ctx, query, therapistID, date, hhmm).Scan(&taken); err != nil {
		return false, fmt.Errorf("appointments: slot conflict check: %w", err)
	}
	return taken, nil
}

// HistoryBefore returns the patient's appointments strictly before the given
// date, oldest first. Implements noshow.HistorySource.
func (r *Repository) HistoryBefore(ctx context.Context, patientID string, before time.Time) ([]noshow.PastAppointment, error) {
	query := `
		SELECT scheduled_date, status
		FROM appointments
		WHERE patient_id = $1 AND scheduled_date < $2
		ORDER BY scheduled_date
	`
	rows, err := r.db.Query(ctx, query, patientID, before)
	if err != nil {
		return nil, fmt.Errorf("appointments: query history: %w", err)
	}
	defer rows.Close()

	var history []noshow.PastAppointment
	for rows.Next() {
		var past noshow.PastAppointment
		if err := rows.Scan(&past.ScheduledDate, &past.Status); err != nil {
			return nil, fmt.Errorf("appointments: scan history row: %w", err)
		}
		history = append(history, past)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: read history: %w", err)
	}
	return history, nil
}

// UpdateStatus moves the appointment to a new state and returns the updated
// row.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + appointmentColumns
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id, string(status)))
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// MarkSlotBooked flags the availability slot as taken.
func (r *Repository) MarkSlotBooked(ctx context.Context, therapistID string, date time.Time, hhmm string) error {
	query := `
		UPDATE availability_slots
		SET is_booked = TRUE, updated_at = NOW()
		WHERE therapist_id = $1 AND date = $2 AND start_time = $3
	`
	if _, err := r.db.Exec(ctx, query, therapistID, date, hhmm); err != nil {
		return fmt.Errorf("appointments: mark slot booked: %w", err)
	}
	return nil
}

// ReleaseSlot frees the availability slot, used when an appointment is
// cancelled or rescheduled.
func (r *Repository) ReleaseSlot(ctx context.Context, therapistID string, date time.Time, hhmm string) error {
	query := `
		UPDATE availability_slots
		SET is_booked = FALSE, updated_at = NOW()
		WHERE therapist_id = $1 AND date = $2 AND start_time = $3
	`
	if _, err := r.db.Exec(ctx, query, therapistID, date, hhmm); err != nil {
		return fmt.Errorf("appointments: release slot: %w", err)
	}
	return nil
}

// ListFilter narrows List results. Zero values mean no filter.
type ListFilter struct {
	PatientID   string
	TherapistID string
	Status      Status
	// Upcoming keeps only pending/confirmed appointments on or after this
	// instant.
	Upcoming *time.Time
}

// List returns appointments matching the filter, ordered by date then time.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Appointment, error) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.PatientID != "" {
		conds = append(conds, "patient_id = "+arg(filter.PatientID))
	}
	if filter.TherapistID != "" {
		conds = append(conds, "therapist_id = "+arg(filter.TherapistID))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(string(filter.Status)))
	}
	if filter.Upcoming != nil {
		conds = append(conds, "scheduled_date >= "+arg(*filter.Upcoming))
		conds = append(conds, "status IN ('PENDING', 'CONFIRMED')")
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY scheduled_date, scheduled_time"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: list appointments: %w", err)
	}
	defer rows.Close()

	appointments := []Appointment{}
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(
			&a.ID, &a.PatientID, &a.TherapistID, &a.ScheduledDate, &a.ScheduledTime,
			&a.Duration, &a.Type, &a.Status, &a.TriageAssessmentID, &a.ChiefComplaint,
			&a.NoShowProbability, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan appointment row: %w", err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: read appointments: %w", err)
	}
	return appointments, nil
}
