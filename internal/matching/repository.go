package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// therapistDB is the database surface the repository needs.
type therapistDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository loads therapists and their open availability from Postgres.
type Repository struct {
	db  therapistDB
	now func() time.Time
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("matching: pgx pool required")
	}
	return &Repository{db: pool, now: time.Now}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db therapistDB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// ActiveCandidates returns every active, accepting therapist together with
// their open future slots. Candidate order is insertion order so that ranking
// ties resolve the same way on every call.
func (r *Repository) ActiveCandidates(ctx context.Context) ([]Therapist, error) {
	query := `
		SELECT id, name, specialties, years_of_experience, average_rating, success_rate, no_show_rate
		FROM therapists
		WHERE is_active AND is_accepting_patients
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("matching: query therapists: %w", err)
	}
	defer rows.Close()

	var therapists []Therapist
	index := make(map[string]int)
	var ids []string
	for rows.Next() {
		var t Therapist
		var specialties []string
		if err := rows.Scan(&t.ID, &t.Name, &specialties, &t.YearsOfExperience, &t.AverageRating, &t.SuccessRate, &t.NoShowRate); err != nil {
			return nil, fmt.Errorf("matching: scan therapist: %w", err)
		}
		t.Specialties = make([]Specialty, len(specialties))
		for i, s := range specialties {
			t.Specialties[i] = Specialty(s)
		}
		index[t.ID] = len(therapists)
		therapists = append(therapists, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("matching: read therapists: %w", err)
	}
	if len(therapists) == 0 {
		return []Therapist{}, nil
	}

	if err := r.attachSlots(ctx, therapists, index, ids); err != nil {
		return nil, err
	}
	return therapists, nil
}

func (r *Repository) attachSlots(ctx context.Context, therapists []Therapist, index map[string]int, ids []string) error {
	query := `
		SELECT therapist_id, date, start_time
		FROM availability_slots
		WHERE therapist_id = ANY($1) AND date >= $2 AND NOT is_booked AND NOT is_blocked
		ORDER BY date, start_time
	`
	rows, err := r.db.Query(ctx, query, ids, r.now().UTC().Truncate(24*time.Hour))
	if err != nil {
		return fmt.Errorf("matching: query availability: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var therapistID, startTime string
		var date time.Time
		if err := rows.Scan(&therapistID, &date, &startTime); err != nil {
			return fmt.Errorf("matching: scan slot: %w", err)
		}
		i, ok := index[therapistID]
		if !ok {
			continue
		}
		therapists[i].AvailableSlots = append(therapists[i].AvailableSlots, Slot{
			Date: date,
			Time: startTime,
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("matching: read availability: %w", err)
	}
	return nil
}

// TherapistSummary is the public listing shape for the directory endpoint.
type TherapistSummary struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Specialties       []Specialty `json:"specialties"`
	YearsOfExperience int         `json:"yearsOfExperience"`
	AverageRating     float64     `json:"averageRating"`
	Bio               string      `json:"bio,omitempty"`
}

// List returns active accepting therapists ordered by rating, optionally
// filtered by specialty, with offset paging. The second return value is the
// total row count for the filter.
func (r *Repository) List(ctx context.Context, specialty string, page, limit int) ([]TherapistSummary, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	where := "WHERE is_active AND is_accepting_patients"
	args := []any{}
	if specialty != "" {
		args = append(args, specialty)
		where += " AND $1 = ANY(specialties)"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM therapists " + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("matching: count therapists: %w", err)
	}

	offset := (page - 1) * limit
	listQuery := fmt.Sprintf(`
		SELECT id, name, specialties, years_of_experience, average_rating, COALESCE(bio, '')
		FROM therapists
		%s
		ORDER BY average_rating DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("matching: list therapists: %w", err)
	}
	defer rows.Close()

	summaries := []TherapistSummary{}
	for rows.Next() {
		var s TherapistSummary
		var specialties []string
		if err := rows.Scan(&s.ID, &s.Name, &specialties, &s.YearsOfExperience, &s.AverageRating, &s.Bio); err != nil {
			return nil, 0, fmt.Errorf("matching: scan therapist summary: %w", err)
		}
		s.Specialties = make([]Specialty, len(specialties))
		for i, sp := range specialties {
			s.Specialties[i] = Specialty(sp)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("matching: read therapist list: %w", err)
	}
	return summaries, total, nil
}
