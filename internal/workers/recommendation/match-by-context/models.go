// internal/workers/recommendation/match-by-context/models.go
package matchbycontext

import (
	"atio-knowledge-base/internal/matching"
	"atio-knowledge-base/internal/models"
)

// Input carries the context matcher form. As with rank-by-profile, inline
// technologies replace the catalog when present.
type Input struct {
	Technologies []models.Technology `json:"technologies,omitempty"`
	UserContext  models.UserContext  `json:"userContext"`
}

// Match is one ranked record with its display band and explanation.
type Match struct {
	Technology models.Technology `json:"technology"`
	Score      float64           `json:"score"`
	Band       matching.Band     `json:"band"`
	Reasons    []string          `json:"reasons"`
}

type Output struct {
	RequestID    string  `json:"requestId"`
	Matches      []Match `json:"matches"`
	Count        int     `json:"count"`
	ContextEmpty bool    `json:"contextEmpty"`
}
