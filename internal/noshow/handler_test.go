package noshow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type stubHistory struct {
	history []PastAppointment
	err     error
}

func (s *stubHistory) HistoryBefore(_ context.Context, _ string, _ time.Time) ([]PastAppointment, error) {
	return s.history, s.err
}

func TestHandlerPreview(t *testing.T) {
	source := &stubHistory{history: []PastAppointment{
		{ScheduledDate: date(2026, 4, 6), Status: StatusNoShow},
		{ScheduledDate: date(2026, 4, 13), Status: "COMPLETED"},
		{ScheduledDate: date(2026, 4, 20), Status: StatusNoShow},
		{ScheduledDate: date(2026, 4, 27), Status: "COMPLETED"},
	}}
	predictor := NewPredictor(source, nil, nil).WithClock(func() time.Time {
		return date(2026, 5, 3)
	})
	handler := NewHandler(predictor, nil, nil)

	body := `{"patient_id":"patient-1","scheduled_date":"2026-05-06","scheduled_time":"10:00","type":"IN_PERSON"}`
	req := httptest.NewRequest(http.MethodPost, "/api/predictions/preview", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Preview(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp PreviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Prediction.Probability != 12.5 {
		t.Errorf("Probability = %v, want 12.5", resp.Prediction.Probability)
	}
	if resp.Prediction.RiskLevel != RiskLow {
		t.Errorf("RiskLevel = %s, want LOW", resp.Prediction.RiskLevel)
	}
	if resp.Features.TotalAppointments != 4 {
		t.Errorf("TotalAppointments = %d, want 4", resp.Features.TotalAppointments)
	}
}

func TestHandlerPreviewBadTime(t *testing.T) {
	predictor := NewPredictor(&stubHistory{}, nil, nil)
	handler := NewHandler(predictor, nil, nil)

	body := `{"patient_id":"patient-1","scheduled_date":"2026-05-06","scheduled_time":"not-a-time"}`
	req := httptest.NewRequest(http.MethodPost, "/api/predictions/preview", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Preview(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerPreviewMissingFields(t *testing.T) {
	handler := NewHandler(NewPredictor(&stubHistory{}, nil, nil), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/predictions/preview", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	handler.Preview(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
