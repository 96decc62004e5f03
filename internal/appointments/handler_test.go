package appointments

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiobook/physiobook-platform/internal/noshow"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestHandlerCreate(t *testing.T) {
	store := &fakeStore{}
	assessor := &fakeAssessor{prediction: noshow.Prediction{
		Probability:      12.5,
		RiskLevel:        noshow.RiskLow,
		SuggestedActions: []string{"Standard reminder 24 hours before"},
	}}
	svc, _, _, _ := newTestService(store, assessor)
	handler := NewHandler(svc, nil)

	body, err := json.Marshal(CreateRequest{
		PatientID:     "p1",
		TherapistID:   "t1",
		ScheduledDate: "2026-05-06",
		ScheduledTime: "10:00",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/appointments", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Create(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var result BookingResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, "appt-1", result.Appointment.ID)
	assert.Equal(t, noshow.RiskLow, result.Prediction.RiskLevel)
}

func TestHandlerCreateConflict(t *testing.T) {
	store := &fakeStore{slotTaken: true}
	svc, _, _, _ := newTestService(store, &fakeAssessor{})
	handler := NewHandler(svc, nil)

	body := `{"patient_id":"p1","therapist_id":"t1","scheduled_date":"2026-05-06","scheduled_time":"10:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/appointments", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Create(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestHandlerCreateValidation(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeStore{}, &fakeAssessor{})
	handler := NewHandler(svc, nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing fields", `{"patient_id":"p1"}`},
		{"bad date", `{"patient_id":"p1","therapist_id":"t1","scheduled_date":"06/05/2026","scheduled_time":"10:00"}`},
		{"bad type", `{"patient_id":"p1","therapist_id":"t1","scheduled_date":"2026-05-06","scheduled_time":"10:00","type":"TELEPATHY"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/appointments", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.Create(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandlerConfirm(t *testing.T) {
	store := &fakeStore{}
	svc, _, _, _ := newTestService(store, &fakeAssessor{})
	handler := NewHandler(svc, nil)

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/appointments/appt-1/confirm", nil), "id", "appt-1")
	rr := httptest.NewRecorder()
	handler.Confirm(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, StatusConfirmed, store.updatedStatus)
}

func TestHandlerUpdateStatus(t *testing.T) {
	store := &fakeStore{}
	svc, predictions, _, _ := newTestService(store, &fakeAssessor{})
	handler := NewHandler(svc, nil)

	req := withURLParam(
		httptest.NewRequest(http.MethodPatch, "/api/appointments/appt-1/status", strings.NewReader(`{"status":"NO_SHOW"}`)),
		"id", "appt-1",
	)
	rr := httptest.NewRecorder()
	handler.UpdateStatus(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, noshow.OutcomeNoShow, predictions.outcomes["appt-1"])
}

func TestHandlerUpdateStatusRejectsUnknown(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeStore{}, &fakeAssessor{})
	handler := NewHandler(svc, nil)

	req := withURLParam(
		httptest.NewRequest(http.MethodPatch, "/api/appointments/appt-1/status", strings.NewReader(`{"status":"LOST"}`)),
		"id", "appt-1",
	)
	rr := httptest.NewRecorder()
	handler.UpdateStatus(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
