// internal/workers/recommendation/rank-by-profile/models.go
package rankbyprofile

import (
	"atio-knowledge-base/internal/matching"
	"atio-knowledge-base/internal/models"
)

// Input carries the profile from the recommendations form. Technologies is
// optional; the catalog is loaded when it is empty.
type Input struct {
	Technologies []models.Technology `json:"technologies,omitempty"`
	UserProfile  models.UserProfile  `json:"userProfile"`
	Limit        int                 `json:"limit,omitempty"`
}

type Output struct {
	RequestID       string            `json:"requestId"`
	Recommendations []matching.Scored `json:"recommendations"`
	Count           int               `json:"count"`
}
