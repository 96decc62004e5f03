package patients

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a patient id does not exist.
var ErrNotFound = errors.New("patients: patient not found")

// Patient is a registered care recipient.
type Patient struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	MedicalHistory string     `json:"medical_history,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// FullName returns the display name.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Validate checks required fields.
func (p *Patient) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" {
		return errors.New("patients: first name is required")
	}
	if strings.TrimSpace(p.Email) == "" || !strings.Contains(p.Email, "@") {
		return errors.New("patients: a valid email is required")
	}
	return nil
}
