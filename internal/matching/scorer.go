package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/physiobook/physiobook-platform/internal/scoring"
)

// matchInput pairs one candidate with the request context for rule
// evaluation.
type matchInput struct {
	therapist *Therapist
	criteria  Criteria
}

// matchRules is the fixed, ordered rule set for candidate scoring. Every
// term is non-negative; the engine's upper clamp enforces min(score, 100).
var matchRules = []scoring.Rule[matchInput]{
	{
		Name: "specialty match",
		Apply: func(in matchInput, _ float64) scoring.Step {
			if !in.therapist.HasSpecialty(in.criteria.RecommendedSpecialty) {
				return scoring.NoEffect()
			}
			reason := fmt.Sprintf("Specializes in %s",
				strings.ReplaceAll(string(in.criteria.RecommendedSpecialty), "_", " "))
			return scoring.Step{Add: 40, Scale: 1, Reason: reason, Delta: 40}
		},
	},
	{
		// Adjacent specialty counts only when the exact match did not fire.
		Name: "related specialty",
		Apply: func(in matchInput, _ float64) scoring.Step {
			if in.therapist.HasSpecialty(in.criteria.RecommendedSpecialty) {
				return scoring.NoEffect()
			}
			for _, related := range RelatedSpecialties(in.criteria.RecommendedSpecialty) {
				if in.therapist.HasSpecialty(related) {
					return scoring.Step{Add: 20, Scale: 1, Reason: "Has related specialty expertise", Delta: 20}
				}
			}
			return scoring.NoEffect()
		},
	},
	{
		Name: "experience",
		Apply: func(in matchInput, _ float64) scoring.Step {
			years := in.therapist.YearsOfExperience
			switch {
			case years >= 10:
				reason := fmt.Sprintf("%d years of experience", years)
				return scoring.Step{Add: 15, Scale: 1, Reason: reason, Delta: 15}
			case years >= 5:
				return scoring.Step{Add: 10, Scale: 1}
			default:
				return scoring.Step{Add: 5, Scale: 1}
			}
		},
	},
	{
		Name: "rating",
		Apply: func(in matchInput, _ float64) scoring.Step {
			rating := in.therapist.AverageRating
			switch {
			case rating >= 4.5:
				reason := fmt.Sprintf("Highly rated (%.1f/5)", rating)
				return scoring.Step{Add: 15, Scale: 1, Reason: reason, Delta: 15}
			case rating >= 4.0:
				return scoring.Step{Add: 10, Scale: 1}
			case rating >= 3.5:
				return scoring.Step{Add: 5, Scale: 1}
			default:
				return scoring.NoEffect()
			}
		},
	},
	{
		Name: "success rate",
		Apply: func(in matchInput, _ float64) scoring.Step {
			rate := in.therapist.SuccessRate
			switch {
			case rate >= 0.9:
				reason := fmt.Sprintf("%d%% success rate", int(math.Round(rate*100)))
				return scoring.Step{Add: 15, Scale: 1, Reason: reason, Delta: 15}
			case rate >= 0.8:
				return scoring.Step{Add: 10, Scale: 1}
			default:
				return scoring.NoEffect()
			}
		},
	},
	{
		// Silent bonus: reliable scheduling, no reason recorded.
		Name: "no-show reliability",
		Apply: func(in matchInput, _ float64) scoring.Step {
			if in.therapist.NoShowRate > 0.05 {
				return scoring.NoEffect()
			}
			return scoring.Step{Add: 5, Scale: 1}
		},
	},
	{
		Name: "availability",
		Apply: func(in matchInput, _ float64) scoring.Step {
			slots := len(in.therapist.AvailableSlots)
			switch {
			case slots >= 5:
				return scoring.Step{Add: 10, Scale: 1, Reason: "Good availability", Delta: 10}
			case slots >= 2:
				return scoring.Step{Add: 5, Scale: 1}
			default:
				return scoring.NoEffect()
			}
		},
	},
}

// maxSlotsPerMatch bounds how many upcoming slots each result carries.
const maxSlotsPerMatch = 10

// ScoreTherapist scores one candidate against the criteria and assembles the
// match result. The candidate must already be validated.
func ScoreTherapist(therapist *Therapist, criteria Criteria) Match {
	score, contributions := scoring.Run(matchInput{therapist: therapist, criteria: criteria}, matchRules)

	reasons := make([]string, 0, len(contributions))
	for _, c := range contributions {
		reasons = append(reasons, c.Reason)
	}

	slots := therapist.AvailableSlots
	if len(slots) > maxSlotsPerMatch {
		slots = slots[:maxSlotsPerMatch]
	}

	return Match{
		TherapistID:       therapist.ID,
		TherapistName:     therapist.Name,
		Specialties:       therapist.Specialties,
		MatchScore:        score,
		MatchReasons:      reasons,
		Contributions:     contributions,
		AvailableSlots:    slots,
		AverageRating:     therapist.AverageRating,
		YearsOfExperience: therapist.YearsOfExperience,
	}
}
