package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Status tracks a reminder through its lifecycle.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusEnqueued Status = "ENQUEUED"
	StatusSent     Status = "SENT"
	StatusFailed   Status = "FAILED"
)

// maxDispatchAttempts caps how often a reminder is re-enqueued after a
// failed send before it stops being picked up.
const maxDispatchAttempts = 3

// Reminder is one scheduled reminder row. Payload carries everything the
// worker needs so sending does not require joins at dispatch time.
type Reminder struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	SendAt        time.Time `json:"send_at"`
	Status        Status    `json:"status"`
	Attempts      int       `json:"attempts"`
	Payload       Job       `json:"payload"`
	CreatedAt     time.Time `json:"created_at"`
}

type reminderDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists scheduled reminders.
type Repository struct {
	db reminderDB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("reminders: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db reminderDB) *Repository {
	return &Repository{db: db}
}

// CreateBatch inserts one row per reminder and returns the stored reminders
// with generated IDs.
func (r *Repository) CreateBatch(ctx context.Context, appointmentID string, sendAts []time.Time, payload Job) ([]Reminder, error) {
	out := make([]Reminder, 0, len(sendAts))
	for _, sendAt := range sendAts {
		id := uuid.New()
		payload.ReminderID = id.String()
		payload.AppointmentID = appointmentID
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("reminders: encode payload: %w", err)
		}

		query := `
			INSERT INTO reminders (id, appointment_id, send_at, status, payload)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at
		`
		var createdAt time.Time
		if err := r.db.QueryRow(ctx, query, id, appointmentID, sendAt, string(StatusPending), raw).Scan(&createdAt); err != nil {
			return nil, fmt.Errorf("reminders: insert reminder: %w", err)
		}
		out = append(out, Reminder{
			ID:            id.String(),
			AppointmentID: appointmentID,
			SendAt:        sendAt,
			Status:        StatusPending,
			Payload:       payload,
			CreatedAt:     createdAt,
		})
	}
	return out, nil
}

// DueBefore returns reminders whose send time has passed and that still have
// dispatch attempts left. Failed sends come back around until the attempt cap
// is reached.
func (r *Repository) DueBefore(ctx context.Context, cutoff time.Time, limit int) ([]Reminder, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, appointment_id, send_at, status, attempts, payload, created_at
		FROM reminders
		WHERE status IN ('PENDING', 'FAILED') AND attempts < $2 AND send_at <= $1
		ORDER BY send_at
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, cutoff, maxDispatchAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("reminders: query due reminders: %w", err)
	}
	defer rows.Close()

	var due []Reminder
	for rows.Next() {
		var rem Reminder
		var raw []byte
		if err := rows.Scan(&rem.ID, &rem.AppointmentID, &rem.SendAt, &rem.Status, &rem.Attempts, &raw, &rem.CreatedAt); err != nil {
			return nil, fmt.Errorf("reminders: scan reminder: %w", err)
		}
		if err := json.Unmarshal(raw, &rem.Payload); err != nil {
			return nil, fmt.Errorf("reminders: decode payload: %w", err)
		}
		due = append(due, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reminders: read due reminders: %w", err)
	}
	return due, nil
}

// SetStatus moves a reminder to a new lifecycle state. Enqueueing counts as a
// dispatch attempt so the retry cap in DueBefore holds.
func (r *Repository) SetStatus(ctx context.Context, reminderID string, status Status) error {
	query := `
		UPDATE reminders
		SET status = $2,
		    attempts = attempts + CASE WHEN $2 = 'ENQUEUED' THEN 1 ELSE 0 END,
		    updated_at = NOW()
		WHERE id = $1
	`
	if _, err := r.db.Exec(ctx, query, reminderID, string(status)); err != nil {
		return fmt.Errorf("reminders: update status: %w", err)
	}
	return nil
}

// CancelForAppointment drops pending reminders for an appointment, used when
// the appointment is cancelled or rescheduled.
func (r *Repository) CancelForAppointment(ctx context.Context, appointmentID string) error {
	query := `DELETE FROM reminders WHERE appointment_id = $1 AND status = 'PENDING'`
	if _, err := r.db.Exec(ctx, query, appointmentID); err != nil {
		return fmt.Errorf("reminders: cancel reminders: %w", err)
	}
	return nil
}
