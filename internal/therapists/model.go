package therapists

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/physiobook/physiobook-platform/internal/matching"
)

// ErrNotFound is returned when a therapist id does not exist.
var ErrNotFound = errors.New("therapists: therapist not found")

// Therapist is the full provider profile. The matching engine works on a
// trimmed projection of this record (see internal/matching).
type Therapist struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Email               string               `json:"email"`
	Specialties         []matching.Specialty `json:"specialties"`
	YearsOfExperience   int                  `json:"years_of_experience"`
	AverageRating       float64              `json:"average_rating"`
	SuccessRate         float64              `json:"success_rate"`
	NoShowRate          float64              `json:"no_show_rate"`
	Bio                 string               `json:"bio,omitempty"`
	IsActive            bool                 `json:"is_active"`
	IsAcceptingPatients bool                 `json:"is_accepting_patients"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// Validate checks the profile before persistence.
func (t *Therapist) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("name is required")
	}
	if !strings.Contains(t.Email, "@") {
		return errors.New("a valid email is required")
	}
	if len(t.Specialties) == 0 {
		return errors.New("at least one specialty is required")
	}
	for _, s := range t.Specialties {
		if !matching.KnownSpecialty(s) {
			return fmt.Errorf("unknown specialty %q", s)
		}
	}
	if t.YearsOfExperience < 0 {
		return errors.New("years_of_experience cannot be negative")
	}
	if t.AverageRating < 0 || t.AverageRating > 5 {
		return errors.New("average_rating must be between 0 and 5")
	}
	if t.SuccessRate < 0 || t.SuccessRate > 1 {
		return errors.New("success_rate must be between 0 and 1")
	}
	if t.NoShowRate < 0 || t.NoShowRate > 1 {
		return errors.New("no_show_rate must be between 0 and 1")
	}
	return nil
}
