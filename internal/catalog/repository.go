// internal/catalog/repository.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"atio-knowledge-base/internal/common/logger"
	"atio-knowledge-base/internal/common/metrics"
	"atio-knowledge-base/internal/models"

	"github.com/redis/go-redis/v9"
)

const SnapshotCacheKey = "catalog:technologies:all"

// Source supplies the full technology collection for a single request.
type Source interface {
	All(ctx context.Context) ([]models.Technology, error)
}

// StaticSource serves a fixed collection.
type StaticSource []models.Technology

func (s StaticSource) All(_ context.Context) ([]models.Technology, error) {
	out := make([]models.Technology, len(s))
	copy(out, s)
	return out, nil
}

// Repository loads the catalog from Postgres and keeps a JSON snapshot in
// Redis. Cache errors are logged and never fail a load.
type Repository struct {
	db       *sql.DB
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewRepository(db *sql.DB, redisClient *redis.Client, cacheTTL time.Duration, log logger.Logger) *Repository {
	return &Repository{
		db:       db,
		redis:    redisClient,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "catalog-repository"}),
	}
}

func (r *Repository) All(ctx context.Context) ([]models.Technology, error) {
	if records, ok := r.fromCache(ctx); ok {
		return records, nil
	}

	records, err := ListTechnologies(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	r.toCache(ctx, records)
	return records, nil
}

func (r *Repository) ByIDs(ctx context.Context, ids []int) ([]models.Technology, error) {
	return TechnologiesByIDs(ctx, r.db, ids)
}

// Invalidate drops the cached snapshot so the next All reads Postgres.
func (r *Repository) Invalidate(ctx context.Context) error {
	if r.redis == nil {
		return nil
	}
	return r.redis.Del(ctx, SnapshotCacheKey).Err()
}

func (r *Repository) fromCache(ctx context.Context) ([]models.Technology, bool) {
	if r.redis == nil {
		return nil, false
	}

	val, err := r.redis.Get(ctx, SnapshotCacheKey).Result()
	if err == redis.Nil {
		metrics.CatalogCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.CatalogCacheLookups.WithLabelValues("error").Inc()
		r.logger.Warn("catalog cache read failed", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	var records []models.Technology
	if err := json.Unmarshal([]byte(val), &records); err != nil {
		metrics.CatalogCacheLookups.WithLabelValues("error").Inc()
		r.logger.Warn("discarding corrupt catalog snapshot", map[string]interface{}{"error": err.Error()})
		return nil, false
	}
	metrics.CatalogCacheLookups.WithLabelValues("hit").Inc()
	return records, true
}

func (r *Repository) toCache(ctx context.Context, records []models.Technology) {
	if r.redis == nil {
		return
	}

	data, err := json.Marshal(records)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, SnapshotCacheKey, data, r.cacheTTL).Err(); err != nil {
		r.logger.Warn("catalog cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
