package noshow

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/physiobook/physiobook-platform/internal/observability/metrics"
	"github.com/physiobook/physiobook-platform/pkg/logging"
)

// HistorySource supplies a patient's prior appointments strictly before a
// given date. The appointments repository implements it; the predictor never
// fetches anything else.
type HistorySource interface {
	HistoryBefore(ctx context.Context, patientID string, before time.Time) ([]PastAppointment, error)
}

// Predictor wraps feature extraction and scoring behind a single call so
// callers hand over raw identifiers and get back an explainable prediction.
type Predictor struct {
	history HistorySource
	metrics *metrics.PredictionMetrics
	tracer  trace.Tracer
	logger  *logging.Logger
	now     func() time.Time
}

// NewPredictor creates a predictor over the given history source.
func NewPredictor(history HistorySource, m *metrics.PredictionMetrics, logger *logging.Logger) *Predictor {
	if logger == nil {
		logger = logging.Default()
	}
	return &Predictor{
		history: history,
		metrics: m,
		tracer:  otel.Tracer("physiobook/noshow"),
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (p *Predictor) WithClock(now func() time.Time) *Predictor {
	p.now = now
	return p
}

// Assess fetches the patient's history, extracts the feature vector, and
// scores the candidate appointment. The features are returned alongside the
// prediction so the caller can persist them as an audit artifact.
func (p *Predictor) Assess(ctx context.Context, patientID string, candidate CandidateAppointment) (Features, Prediction, error) {
	ctx, span := p.tracer.Start(ctx, "noshow.assess")
	defer span.End()
	span.SetAttributes(attribute.String("patient.id", patientID))

	var history []PastAppointment
	if p.history != nil {
		var err error
		history, err = p.history.HistoryBefore(ctx, patientID, candidate.Date)
		if err != nil {
			return Features{}, Prediction{}, fmt.Errorf("noshow: load history: %w", err)
		}
	}

	features, err := ExtractFeatures(history, candidate, p.now())
	if err != nil {
		return Features{}, Prediction{}, err
	}

	prediction := Predict(features)
	span.SetAttributes(
		attribute.Float64("prediction.probability", prediction.Probability),
		attribute.String("prediction.risk_level", string(prediction.RiskLevel)),
	)

	p.logger.Info("no-show risk assessed",
		"patient_id", patientID,
		"probability", prediction.Probability,
		"risk_level", prediction.RiskLevel,
	)
	p.metrics.ObservePrediction(string(prediction.RiskLevel), prediction.Probability)

	return features, prediction, nil
}
