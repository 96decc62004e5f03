package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/physiobook/physiobook-platform/internal/llm"
	"github.com/physiobook/physiobook-platform/internal/matching"
	"github.com/physiobook/physiobook-platform/pkg/logging"
)

// Category buckets the kind of physiotherapy care a patient needs.
type Category string

const (
	CategoryAcuteInjury      Category = "ACUTE_INJURY"
	CategoryChronicCondition Category = "CHRONIC_CONDITION"
	CategoryPostOperative    Category = "POST_OPERATIVE"
	CategorySportsInjury     Category = "SPORTS_INJURY"
	CategoryNeurological     Category = "NEUROLOGICAL"
	CategoryPediatric        Category = "PEDIATRIC"
	CategoryGeriatric        Category = "GERIATRIC"
	CategoryPreventive       Category = "PREVENTIVE"
)

// Urgency is how soon the patient should be seen.
type Urgency string

const (
	UrgencyEmergency  Urgency = "EMERGENCY"
	UrgencyUrgent     Urgency = "URGENT"
	UrgencySemiUrgent Urgency = "SEMI_URGENT"
	UrgencyRoutine    Urgency = "ROUTINE"
	UrgencyPreventive Urgency = "PREVENTIVE"
)

func knownCategory(c Category) bool {
	switch c {
	case CategoryAcuteInjury, CategoryChronicCondition, CategoryPostOperative,
		CategorySportsInjury, CategoryNeurological, CategoryPediatric,
		CategoryGeriatric, CategoryPreventive:
		return true
	}
	return false
}

func knownUrgency(u Urgency) bool {
	switch u {
	case UrgencyEmergency, UrgencyUrgent, UrgencySemiUrgent, UrgencyRoutine, UrgencyPreventive:
		return true
	}
	return false
}

// Input is the patient's symptom intake form.
type Input struct {
	Symptoms          string `json:"symptoms"`
	BodyRegion        string `json:"bodyRegion"`
	PainLevel         int    `json:"painLevel"`
	Duration          string `json:"duration"`
	PainType          string `json:"painType,omitempty"`
	WorseningFactors  string `json:"worseningFactors,omitempty"`
	ImprovingFactors  string `json:"improvingFactors,omitempty"`
	PreviousTreatment string `json:"previousTreatment,omitempty"`
	Age               int    `json:"age,omitempty"`
	MedicalHistory    string `json:"medicalHistory,omitempty"`
}

// Validate enforces the fields the prompt cannot do without.
func (in *Input) Validate() error {
	if strings.TrimSpace(in.Symptoms) == "" {
		return errors.New("triage: symptoms are required")
	}
	if strings.TrimSpace(in.BodyRegion) == "" {
		return errors.New("triage: bodyRegion is required")
	}
	if in.PainLevel < 1 || in.PainLevel > 10 {
		return errors.New("triage: painLevel must be between 1 and 10")
	}
	if strings.TrimSpace(in.Duration) == "" {
		return errors.New("triage: duration is required")
	}
	return nil
}

// Assessment is the structured triage result. It is not a diagnosis; it
// steers the patient to the right specialty and booking urgency.
type Assessment struct {
	TriageCategory       Category           `json:"triageCategory"`
	UrgencyLevel         Urgency            `json:"urgencyLevel"`
	RecommendedSpecialty matching.Specialty `json:"recommendedSpecialty"`
	ConfidenceScore      float64            `json:"confidenceScore"`
	Reasoning            string             `json:"reasoning"`
	RedFlags             []string           `json:"redFlags"`
	RequiresImmediate    bool               `json:"requiresImmediate"`
	SuggestedQuestions   []string           `json:"suggestedQuestions,omitempty"`
}

const systemPrompt = `You are an AI physiotherapy triage assistant. Your role is to analyze patient symptoms and provide a preliminary assessment to help match them with the right specialist.

IMPORTANT: You are NOT providing medical diagnoses. You are helping categorize the type of physiotherapy care needed.

Based on the patient information provided, you must return a JSON object with the following fields:

1. triageCategory: One of:
   - ACUTE_INJURY: Recent injury (< 4 weeks), sudden onset
   - CHRONIC_CONDITION: Ongoing issues (> 3 months)
   - POST_OPERATIVE: Recovery after surgery
   - SPORTS_INJURY: Activity/sports-related
   - NEUROLOGICAL: Nerve-related symptoms (numbness, tingling, weakness)
   - PEDIATRIC: For patients under 18
   - GERIATRIC: For patients over 65 with age-related concerns
   - PREVENTIVE: Wellness, posture correction, injury prevention

2. urgencyLevel: One of:
   - EMERGENCY: Severe symptoms requiring immediate medical attention (not physio)
   - URGENT: Should be seen within 24-48 hours
   - SEMI_URGENT: Should be seen within a week
   - ROUTINE: Can wait 1-2 weeks
   - PREVENTIVE: Wellness/maintenance care

3. recommendedSpecialty: One of:
   - SPORTS_REHABILITATION
   - ORTHOPEDIC
   - NEUROLOGICAL
   - PEDIATRIC
   - GERIATRIC
   - POST_OPERATIVE
   - CHRONIC_PAIN
   - MANUAL_THERAPY
   - AQUATIC_THERAPY
   - VESTIBULAR
   - WOMENS_HEALTH
   - CARDIOPULMONARY

4. confidenceScore: A number between 0 and 1 indicating your confidence in this assessment

5. reasoning: A brief explanation of your assessment (2-3 sentences)

6. redFlags: An array of any concerning symptoms that might need immediate medical attention (e.g., ["sudden severe headache", "loss of bladder control"])

7. requiresImmediate: Boolean - true if patient should seek emergency medical care instead of physio

8. suggestedQuestions: Array of follow-up questions that could help refine the assessment

RED FLAGS that indicate EMERGENCY:
- Sudden severe headache with neck stiffness
- Loss of bladder/bowel control
- Progressive weakness in limbs
- Chest pain with shortness of breath
- Signs of stroke (facial drooping, arm weakness, speech difficulty)
- Suspected fracture with visible deformity
- Severe trauma

Always err on the side of caution with red flags.`

// Analyzer turns free-text symptom intakes into a structured assessment by
// prompting an LLM and validating the shape of what comes back.
type Analyzer struct {
	client llm.Client
	model  string
	logger *logging.Logger
}

func NewAnalyzer(client llm.Client, model string, logger *logging.Logger) *Analyzer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Analyzer{client: client, model: model, logger: logger}
}

// Analyze returns a triage assessment for the intake. LLM failures and
// malformed responses degrade to a safe default that routes the patient to a
// general orthopedic evaluation rather than surfacing an error.
func (a *Analyzer) Analyze(ctx context.Context, input Input) (Assessment, error) {
	if err := input.Validate(); err != nil {
		return Assessment{}, err
	}

	assessment, err := a.ask(ctx, input)
	if err != nil {
		a.logger.Warn("triage analysis failed, using safe default", "error", err.Error())
		return defaultAssessment(), nil
	}
	return assessment, nil
}

func (a *Analyzer) ask(ctx context.Context, input Input) (Assessment, error) {
	if a.client == nil {
		return Assessment{}, errors.New("triage: no LLM client configured")
	}

	resp, err := a.client.Complete(ctx, llm.Request{
		Model:       a.model,
		System:      []string{systemPrompt},
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildIntakePrompt(input)}},
		MaxTokens:   1000,
		Temperature: 0.3,
	})
	if err != nil {
		return Assessment{}, fmt.Errorf("triage: completion: %w", err)
	}

	payload, err := extractJSONObject(resp.Text)
	if err != nil {
		return Assessment{}, err
	}

	var assessment Assessment
	if err := json.Unmarshal([]byte(payload), &assessment); err != nil {
		return Assessment{}, fmt.Errorf("triage: decode assessment: %w", err)
	}
	if err := validateAssessment(&assessment); err != nil {
		return Assessment{}, err
	}
	return assessment, nil
}

func validateAssessment(a *Assessment) error {
	if !knownCategory(a.TriageCategory) {
		return fmt.Errorf("triage: unknown category %q", a.TriageCategory)
	}
	if !knownUrgency(a.UrgencyLevel) {
		return fmt.Errorf("triage: unknown urgency %q", a.UrgencyLevel)
	}
	if !matching.KnownSpecialty(a.RecommendedSpecialty) {
		return fmt.Errorf("triage: unknown specialty %q", a.RecommendedSpecialty)
	}
	if strings.TrimSpace(a.Reasoning) == "" {
		return errors.New("triage: assessment missing reasoning")
	}
	if a.ConfidenceScore < 0 {
		a.ConfidenceScore = 0
	}
	if a.ConfidenceScore > 1 {
		a.ConfidenceScore = 1
	}
	if a.RedFlags == nil {
		a.RedFlags = []string{}
	}
	return nil
}

func buildIntakePrompt(input Input) string {
	var b strings.Builder
	b.WriteString("Patient Information:\n")
	fmt.Fprintf(&b, "- Age: %s\n", orNotProvided(ageString(input.Age)))
	fmt.Fprintf(&b, "- Symptoms: %s\n", input.Symptoms)
	fmt.Fprintf(&b, "- Affected Body Region: %s\n", input.BodyRegion)
	fmt.Fprintf(&b, "- Pain Level (1-10): %d\n", input.PainLevel)
	fmt.Fprintf(&b, "- Duration: %s\n", input.Duration)
	fmt.Fprintf(&b, "- Pain Type: %s\n", orNotSpecified(input.PainType))
	fmt.Fprintf(&b, "- What makes it worse: %s\n", orNotSpecified(input.WorseningFactors))
	fmt.Fprintf(&b, "- What makes it better: %s\n", orNotSpecified(input.ImprovingFactors))
	fmt.Fprintf(&b, "- Previous treatment: %s\n", orNone(input.PreviousTreatment))
	fmt.Fprintf(&b, "- Medical History: %s\n", orNotProvided(input.MedicalHistory))
	b.WriteString("\nPlease analyze and provide your triage assessment as a JSON object.")
	return b.String()
}

func ageString(age int) string {
	if age <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", age)
}

func orNotProvided(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}

func orNotSpecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

// defaultAssessment routes the patient to a general evaluation when the
// automated assessment cannot be completed.
func defaultAssessment() Assessment {
	return Assessment{
		TriageCategory:       CategoryAcuteInjury,
		UrgencyLevel:         UrgencySemiUrgent,
		RecommendedSpecialty: matching.SpecialtyOrthopedic,
		ConfidenceScore:      0.3,
		Reasoning:            "Unable to complete automated assessment. Recommending general evaluation with an orthopedic physiotherapist.",
		RedFlags:             []string{},
		RequiresImmediate:    false,
		SuggestedQuestions: []string{
			"Please describe your symptoms in more detail",
			"When did the symptoms first start?",
			"Have you experienced similar issues before?",
		},
	}
}

// extractJSONObject pulls the outermost JSON object out of model output
// that may be wrapped in prose or markdown fences.
func extractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", errors.New("triage: response contained no JSON object")
	}
	return text[start : end+1], nil
}
