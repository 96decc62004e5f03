package patients

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/physiobook/physiobook-platform/internal/appointments"
)

type patientDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists patients.
type Repository struct {
	db patientDB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("patients: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db patientDB) *Repository {
	return &Repository{db: db}
}

const patientColumns = `id, first_name, last_name, email, COALESCE(phone, ''), date_of_birth, COALESCE(medical_history, ''), created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone,
		&p.DateOfBirth, &p.MedicalHistory, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("patients: scan patient: %w", err)
	}
	return &p, nil
}

// Create inserts a new patient.
func (r *Repository) Create(ctx context.Context, p *Patient) (*Patient, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	id := uuid.New()
	query := `
		INSERT INTO patients (id, first_name, last_name, email, phone, date_of_birth, medical_history)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + patientColumns
	created, err := scanPatient(r.db.QueryRow(ctx, query,
		id, p.FirstName, p.LastName, p.Email, p.Phone, p.DateOfBirth, p.MedicalHistory,
	))
	if err != nil {
		return nil, fmt.Errorf("patients: insert patient: %w", err)
	}
	return created, nil
}

// GetByID returns one patient or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id string) (*Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	return scanPatient(r.db.QueryRow(ctx, query, id))
}

// List returns patients ordered by creation time, newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Patient, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("patients: list patients: %w", err)
	}
	defer rows.Close()

	out := []Patient{}
	for rows.Next() {
		var p Patient
		if err := rows.Scan(
			&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone,
			&p.DateOfBirth, &p.MedicalHistory, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("patients: scan patient row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("patients: read patients: %w", err)
	}
	return out, nil
}

// PatientContact implements appointments.PatientDirectory.
func (r *Repository) PatientContact(ctx context.Context, patientID string) (appointments.PatientContact, error) {
	p, err := r.GetByID(ctx, patientID)
	if err != nil {
		return appointments.PatientContact{}, err
	}
	return appointments.PatientContact{Name: p.FullName(), Email: p.Email}, nil
}

var _ appointments.PatientDirectory = (*Repository)(nil)
