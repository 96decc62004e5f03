package matching

import (
	"fmt"
	"time"

	"github.com/physiobook/physiobook-platform/internal/scoring"
)

// Specialty is a physiotherapy specialty a therapist can hold.
type Specialty string

const (
	SpecialtySportsRehabilitation Specialty = "SPORTS_REHABILITATION"
	SpecialtyOrthopedic           Specialty = "ORTHOPEDIC"
	SpecialtyNeurological         Specialty = "NEUROLOGICAL"
	SpecialtyPediatric            Specialty = "PEDIATRIC"
	SpecialtyGeriatric            Specialty = "GERIATRIC"
	SpecialtyPostOperative        Specialty = "POST_OPERATIVE"
	SpecialtyChronicPain          Specialty = "CHRONIC_PAIN"
	SpecialtyManualTherapy        Specialty = "MANUAL_THERAPY"
	SpecialtyAquaticTherapy       Specialty = "AQUATIC_THERAPY"
	SpecialtyVestibular           Specialty = "VESTIBULAR"
	SpecialtyWomensHealth         Specialty = "WOMENS_HEALTH"
	SpecialtyCardiopulmonary      Specialty = "CARDIOPULMONARY"
)

// KnownSpecialty reports whether s is one of the defined specialties.
func KnownSpecialty(s Specialty) bool {
	switch s {
	case SpecialtySportsRehabilitation, SpecialtyOrthopedic, SpecialtyNeurological,
		SpecialtyPediatric, SpecialtyGeriatric, SpecialtyPostOperative,
		SpecialtyChronicPain, SpecialtyManualTherapy, SpecialtyAquaticTherapy,
		SpecialtyVestibular, SpecialtyWomensHealth, SpecialtyCardiopulmonary:
		return true
	}
	return false
}

// Slot is one bookable opening in a therapist's calendar.
type Slot struct {
	Date time.Time `json:"date"`
	Time string    `json:"time"`
}

// Therapist is a matching candidate: static profile attributes plus the
// nearest future, unbooked, unblocked availability slots (ascending by date,
// at most ten). Never mutated by the engine.
type Therapist struct {
	ID                string      `json:"therapistId"`
	Name              string      `json:"therapistName"`
	Specialties       []Specialty `json:"specialties"`
	YearsOfExperience int         `json:"yearsOfExperience"`
	AverageRating     float64     `json:"averageRating"`
	SuccessRate       float64     `json:"successRate"`
	NoShowRate        float64     `json:"noShowRate"`
	AvailableSlots    []Slot      `json:"availableSlots"`
}

// Validate enforces the candidate attribute ranges.
func (t *Therapist) Validate() error {
	if t.YearsOfExperience < 0 {
		return scoring.NewValidationError("yearsOfExperience", fmt.Sprintf("%d is negative", t.YearsOfExperience))
	}
	if t.AverageRating < 0 || t.AverageRating > 5 {
		return scoring.NewValidationError("averageRating", fmt.Sprintf("%.2f outside [0,5]", t.AverageRating))
	}
	if t.SuccessRate < 0 || t.SuccessRate > 1 {
		return scoring.NewValidationError("successRate", fmt.Sprintf("%.2f outside [0,1]", t.SuccessRate))
	}
	if t.NoShowRate < 0 || t.NoShowRate > 1 {
		return scoring.NewValidationError("noShowRate", fmt.Sprintf("%.2f outside [0,1]", t.NoShowRate))
	}
	return nil
}

// HasSpecialty reports whether the therapist holds the given specialty.
func (t *Therapist) HasSpecialty(s Specialty) bool {
	for _, spec := range t.Specialties {
		if spec == s {
			return true
		}
	}
	return false
}

// Criteria is the patient/triage context a candidate pool is ranked against.
type Criteria struct {
	PatientID            string     `json:"patientId"`
	TriageCategory       string     `json:"triageCategory"`
	UrgencyLevel         string     `json:"urgencyLevel"`
	RecommendedSpecialty Specialty  `json:"recommendedSpecialty"`
	BodyRegion           string     `json:"bodyRegion"`
	PreferredDate        *time.Time `json:"preferredDate,omitempty"`
	PreferredTimeSlot    string     `json:"preferredTimeSlot,omitempty"`
	PreferTelePhysio     bool       `json:"preferTelePhysio,omitempty"`
}

// Match is one ranked result. Contributions carry the explainable scoring
// trail; AvailableSlots holds at most ten nearest openings.
type Match struct {
	TherapistID       string                 `json:"therapistId"`
	TherapistName     string                 `json:"therapistName"`
	Specialties       []Specialty            `json:"specialties"`
	MatchScore        float64                `json:"matchScore"`
	MatchReasons      []string               `json:"matchReasons"`
	Contributions     []scoring.Contribution `json:"contributions"`
	AvailableSlots    []Slot                 `json:"availableSlots"`
	AverageRating     float64                `json:"averageRating"`
	YearsOfExperience int                    `json:"yearsOfExperience"`
}
