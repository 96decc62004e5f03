package noshow

import (
	"context"
	"fmt"

	"github.com/physiobook/physiobook-platform/internal/scoring"
)

// Statistics summarizes prediction accuracy over resolved predictions.
// HIGH and VERY_HIGH tiers count as a positive (predicted no-show).
type Statistics struct {
	TotalPredictions  int     `json:"totalPredictions"`
	Accuracy          float64 `json:"accuracy"`
	TruePositiveRate  float64 `json:"truePositiveRate"`
	FalsePositiveRate float64 `json:"falsePositiveRate"`
	AverageNoShowRate float64 `json:"averageNoShowRate"`
}

// Stats computes accuracy metrics over predictions whose actual outcome has
// been recorded, optionally filtered to one therapist.
func (r *Repository) Stats(ctx context.Context, therapistID string) (*Statistics, error) {
	query := `
		SELECT risk_level, actual_outcome
		FROM no_show_predictions
		WHERE actual_outcome IS NOT NULL
	`
	args := []any{}
	if therapistID != "" {
		query += ` AND therapist_id = $1`
		args = append(args, therapistID)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("noshow: query resolved predictions: %w", err)
	}
	defer rows.Close()

	var truePositives, trueNegatives, falsePositives, falseNegatives, totalNoShows, total int
	for rows.Next() {
		var riskLevel, actual string
		if err := rows.Scan(&riskLevel, &actual); err != nil {
			return nil, fmt.Errorf("noshow: scan prediction row: %w", err)
		}
		total++

		predictedNoShow := RiskLevel(riskLevel) == RiskHigh || RiskLevel(riskLevel) == RiskVeryHigh
		actualNoShow := Outcome(actual) == OutcomeNoShow

		if actualNoShow {
			totalNoShows++
		}

		switch {
		case predictedNoShow && actualNoShow:
			truePositives++
		case !predictedNoShow && !actualNoShow:
			trueNegatives++
		case predictedNoShow && !actualNoShow:
			falsePositives++
		default:
			falseNegatives++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("noshow: iterate prediction rows: %w", err)
	}

	if total == 0 {
		return &Statistics{}, nil
	}

	return &Statistics{
		TotalPredictions:  total,
		Accuracy:          scoring.Round2(float64(truePositives+trueNegatives) / float64(total)),
		TruePositiveRate:  scoring.Round2(safeRate(truePositives, truePositives+falseNegatives)),
		FalsePositiveRate: scoring.Round2(safeRate(falsePositives, falsePositives+trueNegatives)),
		AverageNoShowRate: scoring.Round2(float64(totalNoShows) / float64(total)),
	}, nil
}

func safeRate(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}
