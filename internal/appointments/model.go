package appointments

import (
	"errors"
	"time"
)

// Status is the appointment lifecycle state.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusConfirmed   Status = "CONFIRMED"
	StatusCompleted   Status = "COMPLETED"
	StatusCancelled   Status = "CANCELLED"
	StatusNoShow      Status = "NO_SHOW"
	StatusRescheduled Status = "RESCHEDULED"
)

// ValidStatus reports whether s is a known status value.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow, StatusRescheduled:
		return true
	}
	return false
}

// Terminal reports whether the status closes out the appointment. Terminal
// transitions record the prediction outcome.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow, StatusRescheduled:
		return true
	}
	return false
}

// Type is the appointment delivery mode.
type Type string

const (
	TypeInPerson   Type = "IN_PERSON"
	TypeTelePhysio Type = "TELE_PHYSIO"
	TypeHomeVisit  Type = "HOME_VISIT"
)

// ValidType reports whether t is a known appointment type.
func ValidType(t string) bool {
	switch Type(t) {
	case TypeInPerson, TypeTelePhysio, TypeHomeVisit:
		return true
	}
	return false
}

// ErrNotFound is returned when an appointment id does not exist.
var ErrNotFound = errors.New("appointments: appointment not found")

// ErrSlotTaken is returned when the requested slot already has a pending or
// confirmed appointment.
var ErrSlotTaken = errors.New("appointments: time slot is no longer available")

// Appointment is one scheduled physiotherapy visit.
type Appointment struct {
	ID                 string    `json:"id"`
	PatientID          string    `json:"patient_id"`
	TherapistID        string    `json:"therapist_id"`
	ScheduledDate      time.Time `json:"scheduled_date"`
	ScheduledTime      string    `json:"scheduled_time"` // HH:MM, 24h
	Duration           int       `json:"duration"`       // minutes
	Type               Type      `json:"type"`
	Status             Status    `json:"status"`
	TriageAssessmentID *string   `json:"triage_assessment_id,omitempty"`
	ChiefComplaint     string    `json:"chief_complaint,omitempty"`
	NoShowProbability  float64   `json:"no_show_probability"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// StartsAt combines the scheduled date and HH:MM time into one instant.
func (a *Appointment) StartsAt() time.Time {
	return combineDateTime(a.ScheduledDate, a.ScheduledTime)
}

func combineDateTime(date time.Time, hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}
