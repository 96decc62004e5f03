package triage

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiobook/physiobook-platform/internal/llm"
)

func TestHandlerAnalyze(t *testing.T) {
	client := &stubLLM{resp: llm.Response{Text: goodAssessmentJSON}}
	handler := NewHandler(NewAnalyzer(client, "gemini-2.0-flash", nil), nil)

	body, err := json.Marshal(validInput())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/triage/analyze", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Analyze(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var assessment Assessment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &assessment))
	assert.Equal(t, CategorySportsInjury, assessment.TriageCategory)
}

func TestHandlerAnalyzeRejectsBadInput(t *testing.T) {
	handler := NewHandler(NewAnalyzer(&stubLLM{}, "gemini-2.0-flash", nil), nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", "{not json"},
		{"missing fields", `{"symptoms": "pain"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/triage/analyze", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.Analyze(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}
