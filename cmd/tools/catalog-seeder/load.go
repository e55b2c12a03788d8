// cmd/tools/catalog-seeder/load.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"atio-knowledge-base/internal/catalog"
	"atio-knowledge-base/internal/common/config"
	"atio-knowledge-base/internal/common/database"
	"atio-knowledge-base/internal/common/logger"
	"atio-knowledge-base/internal/models"
)

var skipCache bool

func init() {
	loadCmd.Flags().BoolVar(&skipCache, "skip-cache", false, "do not drop the Redis catalog snapshot after loading")
	rootCmd.AddCommand(loadCmd)
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Upsert technology records into Postgres",
	Long: `Validate the records, create the technologies table if needed and
upsert every record by id. The Redis catalog snapshot is dropped afterwards
so running workers pick up the new rows on their next read.

Examples:
  # Load the built-in seed using configs/config.yaml
  catalog-seeder load

  # Load a custom catalog against another environment
  catalog-seeder load --config configs/config.staging.yaml --file technologies.json`,
	RunE: runLoad,
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	log := newLogger()

	records, err := readRecords(seedFile)
	if err != nil {
		return err
	}
	if err := validateRecords(records); err != nil {
		return fmt.Errorf("refusing to load invalid catalog: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := pg.Ping(ctx); err != nil {
		return fmt.Errorf("postgres unreachable: %w", err)
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		return err
	}

	repo := catalog.NewRepository(pg.DB, nil, 0, log)
	if !skipCache {
		rdb := database.NewRedis(cfg.Database.Redis)
		defer rdb.Close()
		repo = catalog.NewRepository(pg.DB, rdb.Client, config.GetDuration(cfg.Catalog.CacheTTL), log)
	}

	n, err := loadRecords(ctx, pg.DB, repo, records, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "loaded %d technology records\n", n)
	return nil
}

// loadRecords upserts records one by one, then invalidates the snapshot.
// A failed invalidation is logged; the rows are already committed.
func loadRecords(ctx context.Context, db *sql.DB, repo *catalog.Repository, records []models.Technology, log logger.Logger) (int, error) {
	for i, t := range records {
		if err := catalog.UpsertTechnology(ctx, db, t); err != nil {
			return i, fmt.Errorf("upsert technology %d: %w", t.ID, err)
		}
		log.Debug("technology upserted", map[string]interface{}{"id": t.ID, "name": t.Name})
	}

	if err := repo.Invalidate(ctx); err != nil {
		log.Warn("catalog snapshot not invalidated", map[string]interface{}{"error": err.Error()})
	}
	return len(records), nil
}
