package noshow

import (
	"fmt"

	"github.com/physiobook/physiobook-platform/internal/scoring"
)

// RiskLevel is the discrete tier a probability falls into.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskVeryHigh RiskLevel = "VERY_HIGH"
)

// Feature weights calibrated against historical attendance data. These are
// engineering constants; changing them breaks behavioral compatibility with
// persisted predictions.
const (
	weightNoShowHistory    = 0.25
	weightTiming           = 0.15
	weightConfirmation     = 0.20
	weightFirstAppointment = 0.10
	weightAppointmentType  = 0.10
	weightDayOfWeek        = 0.10
	weightLeadTime         = 0.10
)

var riskBands = []scoring.Band[RiskLevel]{
	{Below: 15, Tier: RiskLow},
	{Below: 30, Tier: RiskMedium},
	{Below: 50, Tier: RiskHigh},
}

// Prediction is the immutable result of scoring one candidate appointment.
type Prediction struct {
	Probability       float64                `json:"probability"`
	RiskLevel         RiskLevel              `json:"riskLevel"`
	FeatureImportance []scoring.Contribution `json:"featureImportance"`
	SuggestedActions  []string               `json:"suggestedActions"`
}

// predictionRules runs in a fixed order: additive risk signals first, then
// multiplicative mitigations. Confirmation and reminders are modeled as
// relative risk reducers on the accumulated base risk, so they must fold in
// after every additive signal.
var predictionRules = []scoring.Rule[Features]{
	{
		Name: "no-show history",
		Apply: func(f Features, _ float64) scoring.Step {
			if f.TotalAppointments == 0 {
				return scoring.NoEffect()
			}
			rate := float64(f.PreviousNoShows) / float64(f.TotalAppointments)
			delta := rate * weightNoShowHistory * 100
			step := scoring.Step{Add: delta, Scale: 1}
			if delta > 0 {
				step.Reason = "Previous no-show history"
				step.Delta = delta
			}
			return step
		},
	},
	{
		Name: "first appointment",
		Apply: func(f Features, _ float64) scoring.Step {
			if !f.IsFirstAppointment {
				return scoring.NoEffect()
			}
			delta := 0.15 * weightFirstAppointment * 100
			return scoring.Step{Add: delta, Scale: 1, Reason: "First-time patient", Delta: delta}
		},
	},
	{
		Name: "day of week",
		Apply: func(f Features, _ float64) scoring.Step {
			if f.DayOfWeek != 1 && f.DayOfWeek != 5 {
				return scoring.NoEffect()
			}
			delta := 0.1 * weightDayOfWeek * 100
			reason := "Friday appointment"
			if f.DayOfWeek == 1 {
				reason = "Monday appointment"
			}
			return scoring.Step{Add: delta, Scale: 1, Reason: reason, Delta: delta}
		},
	},
	{
		Name: "time of day",
		Apply: func(f Features, _ float64) scoring.Step {
			if f.HourOfDay >= 9 && f.HourOfDay < 18 {
				return scoring.NoEffect()
			}
			delta := 0.1 * weightTiming * 100
			reason := "Late evening slot"
			if f.HourOfDay < 9 {
				reason = "Early morning slot"
			}
			return scoring.Step{Add: delta, Scale: 1, Reason: reason, Delta: delta}
		},
	},
	{
		Name: "lead time",
		Apply: func(f Features, _ float64) scoring.Step {
			if f.DaysUntilAppointment <= 14 {
				return scoring.NoEffect()
			}
			delta := 0.15 * weightLeadTime * 100
			return scoring.Step{Add: delta, Scale: 1, Reason: "Appointment booked far in advance", Delta: delta}
		},
	},
	{
		Name: "confirmation",
		Apply: func(f Features, running float64) scoring.Step {
			if !f.HasConfirmed {
				return scoring.NoEffect()
			}
			return scoring.Step{
				Scale:  0.5,
				Reason: "Patient confirmed attendance",
				Delta:  -(running * 0.5) * 0.5,
			}
		},
	},
	{
		Name: "tele-physio",
		Apply: func(f Features, running float64) scoring.Step {
			if !f.IsTelePhysio {
				return scoring.NoEffect()
			}
			return scoring.Step{
				Scale:  0.7,
				Reason: "Tele-physio appointment (lower barrier)",
				Delta:  -(running * 0.7) * 0.3,
			}
		},
	},
	{
		// Reminders only dampen; they are not separately explained.
		Name: "reminders",
		Apply: func(f Features, _ float64) scoring.Step {
			if f.RemindersSent <= 0 {
				return scoring.NoEffect()
			}
			reduction := float64(f.RemindersSent) * 0.1
			if reduction > 0.3 {
				reduction = 0.3
			}
			return scoring.Step{Scale: 1 - reduction}
		},
	},
}

// Predict scores the probability (0-100) that the patient misses the
// candidate appointment, classifies it into a risk tier, and attaches an
// explainability trail plus suggested staff actions.
func Predict(features Features) Prediction {
	probability, contributions := scoring.Run(features, predictionRules)
	probability = scoring.Round2(probability)

	riskLevel := scoring.Classify(probability, riskBands, RiskVeryHigh)

	scoring.SortContributions(contributions)

	return Prediction{
		Probability:       probability,
		RiskLevel:         riskLevel,
		FeatureImportance: contributions,
		SuggestedActions:  suggestedActions(riskLevel, features),
	}
}

// suggestedActions is a pure branch table keyed by tier, with escalations
// inside HIGH/VERY_HIGH driven by the confirmation and first-appointment
// flags.
func suggestedActions(riskLevel RiskLevel, features Features) []string {
	var actions []string

	switch riskLevel {
	case RiskLow:
		actions = append(actions, "Standard reminder 24 hours before")

	case RiskMedium:
		actions = append(actions,
			"Send reminder 48 hours before",
			"Send reminder 24 hours before",
		)
		if !features.HasConfirmed {
			actions = append(actions, "Request confirmation via SMS")
		}

	case RiskHigh:
		actions = append(actions,
			"Send reminder 72 hours before",
			"Send reminder 24 hours before",
			"Send reminder 2 hours before",
		)
		if !features.HasConfirmed {
			actions = append(actions, "Call patient to confirm attendance")
		}
		actions = append(actions, "Consider overbooking strategy")

	case RiskVeryHigh:
		actions = append(actions,
			"Call patient to confirm attendance",
			"Send multiple reminders (72h, 24h, 2h)",
			"Apply overbooking for this slot",
			"Require deposit or prepayment",
		)
		if features.IsFirstAppointment {
			actions = append(actions,
				"Send detailed appointment information",
				"Offer alternative scheduling options",
			)
		}

	default:
		panic(fmt.Sprintf("noshow: unknown risk level %q", riskLevel))
	}

	return actions
}
