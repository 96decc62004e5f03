package matching

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/physiobook/physiobook-platform/internal/observability/metrics"
	"github.com/physiobook/physiobook-platform/pkg/logging"
)

// DefaultLimit is how many matches a request gets when it does not ask for a
// specific count.
const DefaultLimit = 5

// RankTherapists scores every candidate against the criteria, sorts
// descending by score, and returns the top limit matches. The sort is
// stable: candidates tied on score keep their input order. An empty pool
// yields an empty (non-nil) slice, not an error.
func RankTherapists(candidates []Therapist, criteria Criteria, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	matches := make([]Match, 0, len(candidates))
	for i := range candidates {
		if err := candidates[i].Validate(); err != nil {
			return nil, err
		}
		matches = append(matches, ScoreTherapist(&candidates[i], criteria))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// CandidateSource supplies the active, patient-accepting therapist pool with
// availability preloaded. All I/O happens here, once, before scoring begins.
type CandidateSource interface {
	ActiveCandidates(ctx context.Context) ([]Therapist, error)
}

// Ranker runs the matching pipeline: fetch pool, score, sort, truncate, with
// a short-lived cache in front.
type Ranker struct {
	source  CandidateSource
	cache   *Cache
	metrics *metrics.MatchingMetrics
	tracer  trace.Tracer
	logger  *logging.Logger
	limit   int
}

// NewRanker creates a ranker over the given candidate source. cache may be
// nil to disable caching.
func NewRanker(source CandidateSource, cache *Cache, m *metrics.MatchingMetrics, logger *logging.Logger, defaultLimit int) *Ranker {
	if logger == nil {
		logger = logging.Default()
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	return &Ranker{
		source:  source,
		cache:   cache,
		metrics: m,
		tracer:  otel.Tracer("physiobook/matching"),
		logger:  logger,
		limit:   defaultLimit,
	}
}

// Rank returns the top matches for the criteria, at most limit (the ranker
// default when limit <= 0).
func (r *Ranker) Rank(ctx context.Context, criteria Criteria, limit int) ([]Match, error) {
	ctx, span := r.tracer.Start(ctx, "matching.rank")
	defer span.End()

	if limit <= 0 {
		limit = r.limit
	}
	span.SetAttributes(
		attribute.String("matching.specialty", string(criteria.RecommendedSpecialty)),
		attribute.Int("matching.limit", limit),
	)

	if cached, ok := r.cache.Get(ctx, criteria, limit); ok {
		r.metrics.ObserveCache(true)
		return cached, nil
	}
	r.metrics.ObserveCache(false)

	candidates, err := r.source.ActiveCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("matching: load candidates: %w", err)
	}

	matches, err := RankTherapists(candidates, criteria, limit)
	if err != nil {
		return nil, err
	}

	outcome := "ok"
	if len(candidates) == 0 {
		outcome = "empty_pool"
	}
	r.metrics.ObserveRequest(outcome, len(candidates))
	span.SetAttributes(attribute.Int("matching.candidates", len(candidates)))

	r.logger.Info("therapists ranked",
		"specialty", criteria.RecommendedSpecialty,
		"candidates", len(candidates),
		"matches", len(matches),
	)

	r.cache.Set(ctx, criteria, limit, matches)
	return matches, nil
}
