package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/physiobook/physiobook-platform/internal/llm"
)

const recommenderSystemPrompt = `You are an AI assistant helping patients find the best physiotherapist for their needs.
Based on the patient's condition and available therapists, provide a personalized recommendation.
Keep your response concise and helpful.`

// Recommendation is a short free-text summary of the ranked matches,
// produced by the LLM with a deterministic fallback.
type Recommendation struct {
	TopRecommendation string `json:"topRecommendation"`
	Reasoning         string `json:"reasoning"`
	AlternativeNote   string `json:"alternativeNote,omitempty"`
}

// Recommender asks an LLM to explain the top matches in plain language.
type Recommender struct {
	client llm.Client
	model  string
	logger *slog.Logger
}

func NewRecommender(client llm.Client, model string, logger *slog.Logger) *Recommender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recommender{client: client, model: model, logger: logger}
}

// Recommend summarizes up to the top three matches. LLM failures never
// surface to the caller; a canned recommendation is returned instead so
// the match response stays usable.
func (r *Recommender) Recommend(ctx context.Context, criteria Criteria, matches []Match) Recommendation {
	if len(matches) == 0 {
		return Recommendation{
			TopRecommendation: "No therapists available",
			Reasoning:         "We couldn't find any available therapists matching your criteria. Please try different preferences or contact support.",
		}
	}

	rec, err := r.ask(ctx, criteria, matches)
	if err != nil {
		r.logger.Warn("LLM recommendation failed, using default",
			"error", err.Error(),
			"top_therapist", matches[0].TherapistName,
		)
		return Recommendation{
			TopRecommendation: matches[0].TherapistName,
			Reasoning:         "Based on specialty match and availability, this therapist is well-suited for your condition.",
		}
	}
	return rec
}

func (r *Recommender) ask(ctx context.Context, criteria Criteria, matches []Match) (Recommendation, error) {
	if r.client == nil {
		return Recommendation{}, errors.New("matching: no LLM client configured")
	}

	resp, err := r.client.Complete(ctx, llm.Request{
		Model:       r.model,
		System:      []string{recommenderSystemPrompt},
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildRecommendationPrompt(criteria, matches)}},
		MaxTokens:   400,
		Temperature: 0.5,
	})
	if err != nil {
		return Recommendation{}, fmt.Errorf("matching: recommendation completion: %w", err)
	}

	payload, err := extractJSONObject(resp.Text)
	if err != nil {
		return Recommendation{}, err
	}

	var rec Recommendation
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return Recommendation{}, fmt.Errorf("matching: decode recommendation: %w", err)
	}
	if strings.TrimSpace(rec.TopRecommendation) == "" {
		return Recommendation{}, errors.New("matching: recommendation missing topRecommendation")
	}
	return rec, nil
}

func buildRecommendationPrompt(criteria Criteria, matches []Match) string {
	var b strings.Builder

	b.WriteString("Patient Condition:\n")
	fmt.Fprintf(&b, "- Category: %s\n", criteria.TriageCategory)
	fmt.Fprintf(&b, "- Urgency: %s\n", criteria.UrgencyLevel)
	fmt.Fprintf(&b, "- Recommended Specialty: %s\n", criteria.RecommendedSpecialty)
	fmt.Fprintf(&b, "- Affected Area: %s\n", criteria.BodyRegion)

	b.WriteString("\nAvailable Therapists (ranked by match score):\n")
	top := matches
	if len(top) > 3 {
		top = top[:3]
	}
	for i, m := range top {
		specialties := make([]string, len(m.Specialties))
		for j, s := range m.Specialties {
			specialties[j] = string(s)
		}
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, m.TherapistName)
		fmt.Fprintf(&b, "   - Match Score: %g%%\n", m.MatchScore)
		fmt.Fprintf(&b, "   - Specialties: %s\n", strings.Join(specialties, ", "))
		fmt.Fprintf(&b, "   - Experience: %d years\n", m.YearsOfExperience)
		fmt.Fprintf(&b, "   - Rating: %g/5\n", m.AverageRating)
		fmt.Fprintf(&b, "   - Match Reasons: %s\n", strings.Join(m.MatchReasons, "; "))
	}

	b.WriteString("\nProvide a brief, personalized recommendation explaining why the top match is suitable, and mention when an alternative might be better.\n")
	b.WriteString(`Return as JSON: { "topRecommendation": "...", "reasoning": "...", "alternativeNote": "..." }`)

	return b.String()
}

// extractJSONObject pulls the outermost JSON object out of model output
// that may be wrapped in prose or markdown fences.
func extractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", errors.New("matching: response contained no JSON object")
	}
	return text[start : end+1], nil
}
