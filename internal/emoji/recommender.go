package emoji

import (
	"sort"

	"github.com/facemoji/facemoji/internal/domain"
)

const (
	// thresholdBoost multiplies a candidate's score when the expression
	// confidence clears the candidate's own threshold
	thresholdBoost  = 1.2
	maxAlternatives = 3
)

// builtinNeutral backs the hardcoded fallback when the catalog itself is
// unusable; recommendation must always return something.
var builtinNeutral = domain.EmojiAsset{
	ID:                  "neutral_001",
	Emoji:               "😐",
	Expression:          domain.ExpressionNeutral,
	ConfidenceThreshold: 0.4,
	Placement:           "face",
}

// Recommender ranks catalog entries against a classified expression.
// It is stateless and safe for concurrent use.
type Recommender struct {
	catalog *Catalog
}

func NewRecommender(catalog *Catalog) *Recommender {
	return &Recommender{catalog: catalog}
}

// Recommend returns the best-matching asset and up to three alternatives.
// Deterministic: identical input yields identical ordering, ties broken by
// catalog insertion order. Never fails; an unusable catalog produces the
// hardcoded neutral default with Degraded set.
func (r *Recommender) Recommend(expr domain.ExpressionResult) domain.Recommendation {
	if r.catalog == nil || r.catalog.Len() == 0 {
		return defaultRecommendation()
	}

	candidates := r.catalog.ByExpression(expr.Primary)
	if len(candidates) == 0 {
		candidates = r.catalog.ByExpression(domain.ExpressionNeutral)
	}
	if len(candidates) == 0 {
		return defaultRecommendation()
	}

	scored := make([]domain.ScoredEmoji, 0, len(candidates))
	for _, asset := range candidates {
		scored = append(scored, domain.ScoredEmoji{
			Asset: asset,
			Score: score(expr.Confidence, asset.ConfidenceThreshold),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	alternatives := scored[1:]
	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}

	return domain.Recommendation{
		Primary:           scored[0],
		Alternatives:      alternatives,
		ExpressionMatched: expr.Primary,
		Confidence:        expr.Confidence,
	}
}

func score(confidence, threshold float64) float64 {
	s := confidence
	if s >= threshold {
		s *= thresholdBoost
	}
	if s > 1.0 {
		s = 1.0
	}
	return s
}

func defaultRecommendation() domain.Recommendation {
	return domain.Recommendation{
		Primary:           domain.ScoredEmoji{Asset: &builtinNeutral, Score: 0.5},
		Alternatives:      []domain.ScoredEmoji{},
		ExpressionMatched: domain.ExpressionNeutral,
		Confidence:        0.5,
		Degraded:          true,
	}
}
