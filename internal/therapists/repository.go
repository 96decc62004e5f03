package therapists

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/physiobook/physiobook-platform/internal/appointments"
	"github.com/physiobook/physiobook-platform/internal/matching"
)

type therapistDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists therapist profiles.
type Repository struct {
	db therapistDB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("therapists: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db therapistDB) *Repository {
	return &Repository{db: db}
}

const therapistColumns = `id, name, email, specialties, years_of_experience,
	average_rating, success_rate, no_show_rate, COALESCE(bio, ''),
	is_active, is_accepting_patients, created_at, updated_at`

func scanTherapist(row pgx.Row) (*Therapist, error) {
	var t Therapist
	var specialties []string
	err := row.Scan(
		&t.ID, &t.Name, &t.Email, &specialties, &t.YearsOfExperience,
		&t.AverageRating, &t.SuccessRate, &t.NoShowRate, &t.Bio,
		&t.IsActive, &t.IsAcceptingPatients, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("therapists: scan therapist: %w", err)
	}
	t.Specialties = make([]matching.Specialty, len(specialties))
	for i, s := range specialties {
		t.Specialties[i] = matching.Specialty(s)
	}
	return &t, nil
}

// Create inserts a new therapist profile. New profiles are active and
// accepting patients unless the caller says otherwise.
func (r *Repository) Create(ctx context.Context, t *Therapist) (*Therapist, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	specialties := make([]string, len(t.Specialties))
	for i, s := range t.Specialties {
		specialties[i] = string(s)
	}
	id := uuid.New()
	query := `
		INSERT INTO therapists (id, name, email, specialties, years_of_experience,
			average_rating, success_rate, no_show_rate, bio, is_active, is_accepting_patients)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + therapistColumns
	created, err := scanTherapist(r.db.QueryRow(ctx, query,
		id, t.Name, t.Email, specialties, t.YearsOfExperience,
		t.AverageRating, t.SuccessRate, t.NoShowRate, t.Bio,
		t.IsActive, t.IsAcceptingPatients,
	))
	if err != nil {
		return nil, fmt.Errorf("therapists: insert therapist: %w", err)
	}
	return created, nil
}

// GetByID returns one therapist or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id string) (*Therapist, error) {
	query := `SELECT ` + therapistColumns + ` FROM therapists WHERE id = $1`
	return scanTherapist(r.db.QueryRow(ctx, query, id))
}

// SetAcceptingPatients toggles whether a therapist appears in matching.
func (r *Repository) SetAcceptingPatients(ctx context.Context, id string, accepting bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE therapists SET is_accepting_patients = $1, updated_at = NOW() WHERE id = $2`,
		accepting, id,
	)
	if err != nil {
		return fmt.Errorf("therapists: update accepting flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TherapistName implements appointments.TherapistDirectory.
func (r *Repository) TherapistName(ctx context.Context, therapistID string) (string, error) {
	var name string
	err := r.db.QueryRow(ctx, `SELECT name FROM therapists WHERE id = $1`, therapistID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("therapists: look up name: %w", err)
	}
	return name, nil
}

var _ appointments.TherapistDirectory = (*Repository)(nil)
