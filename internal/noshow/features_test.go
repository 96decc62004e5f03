package noshow

import (
	"errors"
	"testing"
	"time"

	"github.com/physiobook/physiobook-platform/internal/scoring"
)

var newYork = time.UTC

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, newYork)
}

func TestExtractFeaturesCounts(t *testing.T) {
	history := []PastAppointment{
		{ScheduledDate: date(2026, 1, 5), Status: "COMPLETED"},
		{ScheduledDate: date(2026, 2, 2), Status: StatusNoShow},
		{ScheduledDate: date(2026, 3, 9), Status: StatusCancelled},
		{ScheduledDate: date(2026, 4, 6), Status: StatusNoShow},
	}
	candidate := CandidateAppointment{
		Date: date(2026, 5, 6), // a Wednesday
		Time: "10:00",
		Type: TypeInPerson,
	}
	now := date(2026, 5, 3)

	features, err := ExtractFeatures(history, candidate, now)
	if err != nil {
		t.Fatalf("ExtractFeatures failed: %v", err)
	}

	if features.PreviousNoShows != 2 {
		t.Errorf("PreviousNoShows = %d, want 2", features.PreviousNoShows)
	}
	if features.PreviousCancellations != 1 {
		t.Errorf("PreviousCancellations = %d, want 1", features.PreviousCancellations)
	}
	if features.TotalAppointments != 4 {
		t.Errorf("TotalAppointments = %d, want 4", features.TotalAppointments)
	}
	if features.IsFirstAppointment {
		t.Error("IsFirstAppointment = true, want false")
	}
	if features.DaysSinceLastAppointment != 30 {
		t.Errorf("DaysSinceLastAppointment = %d, want 30", features.DaysSinceLastAppointment)
	}
	if features.DayOfWeek != 3 {
		t.Errorf("DayOfWeek = %d, want 3 (Wednesday)", features.DayOfWeek)
	}
	if features.HourOfDay != 10 {
		t.Errorf("HourOfDay = %d, want 10", features.HourOfDay)
	}
	if !features.IsMorning || features.IsEvening {
		t.Errorf("IsMorning/IsEvening = %v/%v, want true/false", features.IsMorning, features.IsEvening)
	}
	if features.DaysUntilAppointment != 3 {
		t.Errorf("DaysUntilAppointment = %d, want 3", features.DaysUntilAppointment)
	}
	if features.IsTelePhysio {
		t.Error("IsTelePhysio = true for in-person appointment")
	}
}

func TestExtractFeaturesFirstAppointment(t *testing.T) {
	candidate := CandidateAppointment{Date: date(2026, 5, 8), Time: "08:00", Type: TypeTelePhysio}
	features, err := ExtractFeatures(nil, candidate, date(2026, 4, 18))
	if err != nil {
		t.Fatalf("ExtractFeatures failed: %v", err)
	}
	if !features.IsFirstAppointment {
		t.Error("IsFirstAppointment = false for empty history")
	}
	if features.DaysSinceLastAppointment != 0 {
		t.Errorf("DaysSinceLastAppointment = %d, want 0", features.DaysSinceLastAppointment)
	}
	if features.DayOfWeek != 5 {
		t.Errorf("DayOfWeek = %d, want 5 (Friday)", features.DayOfWeek)
	}
	if !features.IsTelePhysio {
		t.Error("IsTelePhysio = false for tele-physio appointment")
	}
	if features.DaysUntilAppointment != 20 {
		t.Errorf("DaysUntilAppointment = %d, want 20", features.DaysUntilAppointment)
	}
}

func TestExtractFeaturesLeadTimeFlooredAtZero(t *testing.T) {
	candidate := CandidateAppointment{Date: date(2026, 5, 6), Time: "10:00", Type: TypeInPerson}
	features, err := ExtractFeatures(nil, candidate, date(2026, 5, 7))
	if err != nil {
		t.Fatalf("ExtractFeatures failed: %v", err)
	}
	if features.DaysUntilAppointment != 0 {
		t.Errorf("DaysUntilAppointment = %d, want floor at 0", features.DaysUntilAppointment)
	}
}

func TestExtractFeaturesMalformedTime(t *testing.T) {
	cases := []string{"", "10", "10:60", "24:00", "ten:30", "10:5b"}
	for _, raw := range cases {
		candidate := CandidateAppointment{Date: date(2026, 5, 6), Time: raw, Type: TypeInPerson}
		_, err := ExtractFeatures(nil, candidate, date(2026, 5, 1))
		var verr *scoring.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("time %q: expected ValidationError, got %v", raw, err)
		}
	}
}

func TestExtractFeaturesHistoryAfterCandidateDate(t *testing.T) {
	history := []PastAppointment{
		{ScheduledDate: date(2026, 6, 1), Status: "COMPLETED"},
	}
	candidate := CandidateAppointment{Date: date(2026, 5, 6), Time: "10:00", Type: TypeInPerson}
	_, err := ExtractFeatures(history, candidate, date(2026, 5, 1))
	var iv *scoring.InvariantViolation
	if !errors.As(err, &iv) {
		t.Fatalf("expected InvariantViolation for history after candidate date, got %v", err)
	}
}

func TestExtractFeaturesEveningFlag(t *testing.T) {
	candidate := CandidateAppointment{Date: date(2026, 5, 6), Time: "18:30", Type: TypeInPerson}
	features, err := ExtractFeatures(nil, candidate, date(2026, 5, 1))
	if err != nil {
		t.Fatalf("ExtractFeatures failed: %v", err)
	}
	if features.IsMorning {
		t.Error("IsMorning = true for 18:30")
	}
	if !features.IsEvening {
		t.Error("IsEvening = false for 18:30")
	}
}
