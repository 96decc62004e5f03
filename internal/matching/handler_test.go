package matching

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiobook/physiobook-platform/internal/llm"
)

func matchRequest(t *testing.T, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/api/therapists/match", bytes.NewReader(raw))
}

func TestHandlerMatch(t *testing.T) {
	source := &stubSource{candidates: []Therapist{
		{ID: "t1", Name: "Dana Reyes", Specialties: []Specialty{SpecialtySportsRehabilitation}, YearsOfExperience: 12, AverageRating: 4.8},
		{ID: "t2", Name: "Sam Okafor", Specialties: []Specialty{SpecialtyPediatric}},
	}}
	client := &stubLLM{resp: llm.Response{Text: `{"topRecommendation": "Dana Reyes", "reasoning": "Best specialty fit."}`}}
	handler := NewHandler(
		NewRanker(source, nil, nil, nil, 5),
		NewRecommender(client, "gemini-2.0-flash", nil),
		nil,
		nil,
	)

	req := matchRequest(t, MatchRequest{
		PatientID:            "p1",
		TriageCategory:       "MUSCULOSKELETAL",
		UrgencyLevel:         "ROUTINE",
		RecommendedSpecialty: "SPORTS_REHABILITATION",
		BodyRegion:           "knee",
	})
	rr := httptest.NewRecorder()
	handler.Match(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp MatchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Matches, 2)
	assert.Equal(t, "t1", resp.Matches[0].TherapistID)
	assert.Equal(t, "Dana Reyes", resp.Recommendation.TopRecommendation)
	assert.Equal(t, "Best specialty fit.", resp.Recommendation.Reasoning)
}

func TestHandlerMatchEmptyPool(t *testing.T) {
	handler := NewHandler(NewRanker(&stubSource{}, nil, nil, nil, 5), nil, nil, nil)

	req := matchRequest(t, MatchRequest{PatientID: "p1", RecommendedSpecialty: "ORTHOPEDIC"})
	rr := httptest.NewRecorder()
	handler.Match(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp MatchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.Matches)
	assert.Equal(t, "No therapists available", resp.Recommendation.TopRecommendation)
}

func TestHandlerMatchValidation(t *testing.T) {
	handler := NewHandler(NewRanker(&stubSource{}, nil, nil, nil, 5), nil, nil, nil)

	tests := []struct {
		name string
		body MatchRequest
	}{
		{"missing patient id", MatchRequest{RecommendedSpecialty: "ORTHOPEDIC"}},
		{"unknown specialty", MatchRequest{PatientID: "p1", RecommendedSpecialty: "REIKI"}},
		{"bad preferred date", MatchRequest{PatientID: "p1", RecommendedSpecialty: "ORTHOPEDIC", PreferredDate: "05/04/2026"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.Match(rr, matchRequest(t, tt.body))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandlerMatchWithoutRecommenderUsesDefault(t *testing.T) {
	source := &stubSource{candidates: []Therapist{
		{ID: "t1", Name: "Dana Reyes", Specialties: []Specialty{SpecialtyOrthopedic}},
	}}
	handler := NewHandler(NewRanker(source, nil, nil, nil, 5), nil, nil, nil)

	req := matchRequest(t, MatchRequest{PatientID: "p1", RecommendedSpecialty: "ORTHOPEDIC"})
	rr := httptest.NewRecorder()
	handler.Match(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp MatchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Dana Reyes", resp.Recommendation.TopRecommendation)
	assert.Equal(t, "Based on specialty match and availability, this therapist is well-suited for your condition.", resp.Recommendation.Reasoning)
}

func TestHandlerListRejectsUnknownSpecialty(t *testing.T) {
	handler := NewHandler(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/therapists?specialty=REIKI", nil)
	rr := httptest.NewRecorder()
	handler.List(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
