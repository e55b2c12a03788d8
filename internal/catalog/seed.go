// internal/catalog/seed.go

// Package catalog holds the browsing, comparison and analytics views over a
// technology collection, plus the Postgres store and Redis snapshot cache the
// collection is loaded from.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"atio-knowledge-base/internal/models"
)

//go:embed seed/technologies.json
var seedData []byte

// Seed returns the built-in starter catalog. Each call decodes a fresh copy.
func Seed() ([]models.Technology, error) {
	var records []models.Technology
	if err := json.Unmarshal(seedData, &records); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}
	return records, nil
}
