package scoring

import (
	"math"
	"sort"
)

// Contribution records the explainable effect a single rule had on a score.
type Contribution struct {
	Reason string  `json:"feature"`
	Delta  float64 `json:"contribution"`
}

// Step is the immutable outcome of applying one rule to a feature vector.
// Additive rules set Add; mitigating rules set Scale (a factor in (0,1]).
// When Reason is non-empty a Contribution{Reason, Delta} is recorded.
type Step struct {
	Add    float64
	Scale  float64
	Reason string
	Delta  float64
}

// NoEffect is the zero-effect step returned by rules whose condition does
// not hold.
func NoEffect() Step {
	return Step{Scale: 1}
}

// Rule evaluates one weighted signal against a feature vector. Apply
// receives the running score so mitigating rules can express their effect
// relative to the risk accumulated so far.
type Rule[F any] struct {
	Name  string
	Apply func(features F, running float64) Step
}

// Run folds the rules left to right over the feature vector. Order matters:
// additive signals must come before multiplicative mitigations, which act on
// the accumulated score rather than contributing independently. The final
// score is clamped to [0, 100].
func Run[F any](features F, rules []Rule[F]) (float64, []Contribution) {
	var score float64
	var contributions []Contribution

	for _, rule := range rules {
		step := rule.Apply(features, score)
		score += step.Add
		if step.Scale != 0 && step.Scale != 1 {
			score *= step.Scale
		}
		if step.Reason != "" {
			contributions = append(contributions, Contribution{
				Reason: step.Reason,
				Delta:  step.Delta,
			})
		}
	}

	return Clamp(score, 0, 100), contributions
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// SortContributions orders contributions by absolute magnitude, largest
// first, preserving evaluation order between equal magnitudes.
func SortContributions(contributions []Contribution) {
	sort.SliceStable(contributions, func(i, j int) bool {
		return math.Abs(contributions[i].Delta) > math.Abs(contributions[j].Delta)
	})
}

// Band is one ordinal tier boundary: scores strictly below Below fall into
// Tier, provided no earlier band matched.
type Band[T any] struct {
	Below float64
	Tier  T
}

// Classify maps a score onto an ordinal tier using ascending, non-overlapping
// band boundaries. A score at or above every boundary gets the top tier.
func Classify[T any](score float64, bands []Band[T], top T) T {
	for _, b := range bands {
		if score < b.Below {
			return b.Tier
		}
	}
	return top
}

// Round2 rounds to two decimal places, matching the precision scores are
// reported and persisted with.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
