// internal/workers/catalog/catalog-analytics/models.go
package cataloganalytics

import (
	"atio-knowledge-base/internal/catalog"
	"atio-knowledge-base/internal/models"
)

type Input struct {
	Technologies []models.Technology `json:"technologies,omitempty"`
}

type Output struct {
	Analytics        catalog.Analytics   `json:"analytics"`
	PolicyPriorities []models.Technology `json:"policyPriorities"`
}
