// internal/matching/rank.go
package matching

import (
	"sort"

	"atio-knowledge-base/internal/models"
)

const DefaultRecommendationLimit = 5

// Scored pairs a record with the score it was ranked by.
type Scored struct {
	Technology models.Technology `json:"technology"`
	Score      float64           `json:"score"`
}

// RankByProfile scores every record against p and returns the best limit
// of them, highest first. limit <= 0 means DefaultRecommendationLimit.
// Equal scores keep their input order.
func RankByProfile(records []models.Technology, p models.UserProfile, limit int) []Scored {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}

	ranked := rank(records, func(t models.Technology) float64 {
		return ScoreForProfile(t, p)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// RankByContext orders already matched records by ScoreForContext, highest
// first. Nothing is dropped; equal scores keep their input order.
func RankByContext(matched []models.Technology, ctx models.UserContext) []Scored {
	return rank(matched, func(t models.Technology) float64 {
		return ScoreForContext(t, ctx)
	})
}

// MatchByContext filters records by ctx and ranks the survivors.
func MatchByContext(records []models.Technology, ctx models.UserContext) []Scored {
	return RankByContext(FilterByContext(records, ctx), ctx)
}

func rank(records []models.Technology, score func(models.Technology) float64) []Scored {
	ranked := make([]Scored, len(records))
	for i, t := range records {
		ranked[i] = Scored{Technology: t, Score: score(t)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
