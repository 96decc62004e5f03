package noshow

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/physiobook/physiobook-platform/internal/scoring"
)

// AppointmentType mirrors the booking modality.
type AppointmentType string

const (
	TypeInPerson   AppointmentType = "IN_PERSON"
	TypeTelePhysio AppointmentType = "TELE_PHYSIO"
	TypeHomeVisit  AppointmentType = "HOME_VISIT"
)

// Past appointment statuses relevant to feature extraction.
const (
	StatusNoShow    = "NO_SHOW"
	StatusCancelled = "CANCELLED"
)

// PastAppointment is one row of a patient's prior appointment history,
// strictly before the candidate appointment date.
type PastAppointment struct {
	ScheduledDate time.Time
	Status        string
}

// CandidateAppointment describes the appointment being scored.
type CandidateAppointment struct {
	Date          time.Time
	Time          string // HH:MM, 24h
	Type          AppointmentType
	HasConfirmed  bool
	RemindersSent int
}

// Features is the flat, named feature vector the predictor consumes.
// Immutable once produced; persisted as a JSONB audit artifact alongside
// each prediction.
type Features struct {
	// Patient history
	PreviousNoShows          int `json:"previousNoShows"`
	PreviousCancellations    int `json:"previousCancellations"`
	TotalAppointments        int `json:"totalAppointments"`
	DaysSinceLastAppointment int `json:"daysSinceLastAppointment"`

	// Appointment characteristics
	IsFirstAppointment   bool `json:"isFirstAppointment"`
	DayOfWeek            int  `json:"dayOfWeek"` // 0-6, Sunday=0
	HourOfDay            int  `json:"hourOfDay"`
	IsMorning            bool `json:"isMorning"`
	IsEvening            bool `json:"isEvening"`
	DaysUntilAppointment int  `json:"daysUntilAppointment"`

	// Patient engagement
	HasConfirmed  bool `json:"hasConfirmed"`
	RemindersSent int  `json:"remindersSent"`

	// External factors
	IsTelePhysio bool `json:"isTelePhysio"`
}

// ExtractFeatures converts a patient's prior history plus a candidate
// appointment into a feature vector. The history must contain only
// appointments scheduled strictly before the candidate date; a later entry
// is a caller bug and fails with an InvariantViolation.
func ExtractFeatures(history []PastAppointment, candidate CandidateAppointment, now time.Time) (Features, error) {
	hour, err := parseHour(candidate.Time)
	if err != nil {
		return Features{}, err
	}

	var previousNoShows, previousCancellations int
	var lastDate time.Time
	for _, appt := range history {
		switch appt.Status {
		case StatusNoShow:
			previousNoShows++
		case StatusCancelled:
			previousCancellations++
		}
		if appt.ScheduledDate.After(lastDate) {
			lastDate = appt.ScheduledDate
		}
	}
	totalAppointments := len(history)

	daysSinceLast := 0
	if !lastDate.IsZero() {
		daysSinceLast = wholeDays(candidate.Date.Sub(lastDate))
		if daysSinceLast < 0 {
			return Features{}, scoring.NewInvariantViolation(
				"history precedes candidate date",
				fmt.Sprintf("most recent prior appointment %s is after candidate date %s",
					lastDate.Format(time.RFC3339), candidate.Date.Format(time.RFC3339)),
			)
		}
	}

	daysUntil := wholeDays(candidate.Date.Sub(now))
	if daysUntil < 0 {
		daysUntil = 0
	}

	return Features{
		PreviousNoShows:          previousNoShows,
		PreviousCancellations:    previousCancellations,
		TotalAppointments:        totalAppointments,
		DaysSinceLastAppointment: daysSinceLast,
		IsFirstAppointment:       totalAppointments == 0,
		DayOfWeek:                int(candidate.Date.Weekday()),
		HourOfDay:                hour,
		IsMorning:                hour < 12,
		IsEvening:                hour >= 17,
		DaysUntilAppointment:     daysUntil,
		HasConfirmed:             candidate.HasConfirmed,
		RemindersSent:            candidate.RemindersSent,
		IsTelePhysio:             candidate.Type == TypeTelePhysio,
	}, nil
}

func parseHour(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, scoring.NewValidationError("appointment time", fmt.Sprintf("%q is not HH:MM", value))
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, scoring.NewValidationError("appointment time", fmt.Sprintf("hour %q out of range", parts[0]))
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, scoring.NewValidationError("appointment time", fmt.Sprintf("minute %q out of range", parts[1]))
	}
	return hour, nil
}

// wholeDays floors so that a candidate even an hour earlier than the
// reference reads as a negative day count.
func wholeDays(d time.Duration) int {
	return int(math.Floor(d.Hours() / 24))
}
