// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"atio-knowledge-base/internal/common/config"

	_ "github.com/lib/pq"
)

// technologiesDDL matches the columns read by the catalog store.
const technologiesDDL = `
CREATE TABLE IF NOT EXISTS technologies (
	id               INTEGER PRIMARY KEY,
	name             TEXT NOT NULL,
	description      TEXT NOT NULL,
	full_description TEXT,
	category         TEXT NOT NULL,
	cost             TEXT NOT NULL,
	cost_range       TEXT,
	icon             TEXT,
	maturity_level   TEXT NOT NULL,
	adoption_rate    TEXT NOT NULL DEFAULT '',
	regions          TEXT[] NOT NULL DEFAULT '{}',
	benefits         TEXT[] NOT NULL DEFAULT '{}',
	challenges       TEXT[] NOT NULL DEFAULT '{}',
	suitable_for     TEXT[] NOT NULL DEFAULT '{}',
	evidence_links   TEXT[] NOT NULL DEFAULT '{}',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_technologies_category ON technologies (category);
CREATE INDEX IF NOT EXISTS idx_technologies_regions ON technologies USING GIN (regions);`

type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens a pool. The connection is not verified until Ping.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// EnsureSchema creates the technologies table and its indexes if missing.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, technologiesDDL); err != nil {
		return fmt.Errorf("failed to create technologies schema: %w", err)
	}
	return nil
}
