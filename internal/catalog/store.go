// internal/catalog/store.go
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"atio-knowledge-base/internal/models"

	"github.com/lib/pq"
)

var ErrTechnologyNotFound = errors.New("technology not found")

const technologyColumns = `
	id, name, description, full_description, category, cost, cost_range, icon,
	maturity_level, adoption_rate, regions, benefits, challenges, suitable_for,
	evidence_links, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// ListTechnologies returns the whole catalog ordered by name.
func ListTechnologies(ctx context.Context, db *sql.DB) ([]models.Technology, error) {
	rows, err := db.QueryContext(ctx, `SELECT`+technologyColumns+`
		FROM technologies
		ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTechnologies(rows)
}

// TechnologiesByIDs returns the requested records ordered by name. Unknown
// ids are skipped.
func TechnologiesByIDs(ctx context.Context, db *sql.DB, ids []int) ([]models.Technology, error) {
	ids64 := make([]int64, len(ids))
	for i, id := range ids {
		ids64[i] = int64(id)
	}

	rows, err := db.QueryContext(ctx, `SELECT`+technologyColumns+`
		FROM technologies
		WHERE id = ANY($1)
		ORDER BY name ASC`, pq.Array(ids64))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTechnologies(rows)
}

func TechnologyByID(ctx context.Context, db *sql.DB, id int) (*models.Technology, error) {
	row := db.QueryRowContext(ctx, `SELECT`+technologyColumns+`
		FROM technologies
		WHERE id = $1`, id)

	t, err := scanTechnology(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrTechnologyNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// UpsertTechnology inserts t or overwrites the row with the same id.
func UpsertTechnology(ctx context.Context, db *sql.DB, t models.Technology) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO technologies (
			id, name, description, full_description, category, cost, cost_range, icon,
			maturity_level, adoption_rate, regions, benefits, challenges, suitable_for,
			evidence_links, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			full_description = EXCLUDED.full_description,
			category = EXCLUDED.category,
			cost = EXCLUDED.cost,
			cost_range = EXCLUDED.cost_range,
			icon = EXCLUDED.icon,
			maturity_level = EXCLUDED.maturity_level,
			adoption_rate = EXCLUDED.adoption_rate,
			regions = EXCLUDED.regions,
			benefits = EXCLUDED.benefits,
			challenges = EXCLUDED.challenges,
			suitable_for = EXCLUDED.suitable_for,
			evidence_links = EXCLUDED.evidence_links,
			updated_at = NOW()`,
		t.ID, t.Name, t.Description, t.FullDescription, string(t.Category), string(t.Cost),
		t.CostRange, t.Icon, string(t.MaturityLevel), t.AdoptionRate,
		pq.Array(t.Regions), pq.Array(t.Benefits), pq.Array(t.Challenges),
		pq.Array(t.SuitableFor), pq.Array(t.EvidenceLinks),
	)
	return err
}

func scanTechnologies(rows *sql.Rows) ([]models.Technology, error) {
	out := []models.Technology{}
	for rows.Next() {
		t, err := scanTechnology(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanTechnology(row rowScanner) (*models.Technology, error) {
	var t models.Technology
	var category, cost, maturity string
	var fullDescription, costRange, icon sql.NullString
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &fullDescription,
		&category, &cost, &costRange, &icon,
		&maturity, &t.AdoptionRate,
		pq.Array(&t.Regions), pq.Array(&t.Benefits), pq.Array(&t.Challenges),
		pq.Array(&t.SuitableFor), pq.Array(&t.EvidenceLinks),
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.FullDescription = fullDescription.String
	t.CostRange = costRange.String
	t.Icon = icon.String
	t.Category = models.Category(category)
	t.Cost = models.Cost(cost)
	t.MaturityLevel = models.MaturityLevel(maturity)
	if createdAt.Valid {
		t.CreatedAt = createdAt.Time.UTC().Format(time.RFC3339)
	}
	if updatedAt.Valid {
		t.UpdatedAt = updatedAt.Time.UTC().Format(time.RFC3339)
	}

	return &t, nil
}
