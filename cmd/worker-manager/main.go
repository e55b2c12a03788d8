// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"atio-knowledge-base/internal/catalog"
	"atio-knowledge-base/internal/common/camunda"
	"atio-knowledge-base/internal/common/config"
	"atio-knowledge-base/internal/common/database"
	"atio-knowledge-base/internal/common/errors"
	"atio-knowledge-base/internal/common/logger"
	"atio-knowledge-base/internal/common/observability"
	"atio-knowledge-base/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// dependencies are the connections shared by the workers. pg and redis are
// nil when the catalog is served from the embedded seed; es is nil when the
// search worker is disabled.
type dependencies struct {
	zeebe *camunda.Client
	pg    *database.PostgresClient
	redis *database.RedisClient
	es    *database.ElasticsearchClient
}

func (d *dependencies) close(log *zap.Logger) {
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			log.Error("error closing redis", zap.Error(err))
		}
	}
	if d.pg != nil {
		if err := d.pg.Close(); err != nil {
			log.Error("error closing postgres", zap.Error(err))
		}
	}
	if d.zeebe != nil {
		if err := d.zeebe.Close(); err != nil {
			log.Error("error closing zeebe client", zap.Error(err))
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("catalogSource", cfg.Catalog.Source),
	)

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.String("path", cfg.Registry.Path), zap.Error(err))
	}
	if err := reg.Validate(); err != nil {
		zapLog.Fatal("activity registry is invalid", zap.Error(err))
	}

	obs, err := observability.New(cfg.App.Name, prometheus.DefaultRegisterer)
	if err != nil {
		zapLog.Fatal("observability setup failed", zap.Error(err))
	}

	ctx := context.Background()

	deps, err := connect(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("dependency setup failed", zap.Error(err))
	}
	defer deps.close(zapLog)

	source, err := newCatalogSource(cfg, deps, log)
	if err != nil {
		zapLog.Fatal("catalog source setup failed", zap.Error(err))
	}

	inst := camunda.Instrumentation{
		Obs:    obs,
		Failer: errors.NewErrorHandler(log),
		Logger: log,
	}
	started := registerWorkers(cfg, deps, source, reg, inst, log, zapLog)
	zapLog.Info("workers registered", zap.Int("count", started))

	health := newHealthServer(cfg.Server.HealthPort, deps, zapLog)
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.Int("port", cfg.Server.HealthPort))
		if err := health.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := health.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing telemetry", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// connect dials every backend the enabled workers need, retrying each with
// backoff so the manager can start alongside its containers.
func connect(ctx context.Context, cfg *config.Config, log *zap.Logger) (*dependencies, error) {
	deps := &dependencies{}

	err := retryWithBackoff(func() error {
		var err error
		deps.zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: cfg.Camunda.UsePlaintext,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		return nil, err
	}
	log.Info("Zeebe client connected successfully")

	if cfg.Catalog.Source == config.CatalogSourcePostgres {
		err = retryWithBackoff(func() error {
			var err error
			deps.pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return deps.pg.Ping(ctx)
		}, 15, 2*time.Second, log, "PostgreSQL connection")
		if err != nil {
			deps.close(log)
			return nil, err
		}
		if err := deps.pg.EnsureSchema(ctx); err != nil {
			deps.close(log)
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		log.Info("PostgreSQL connected successfully")

		deps.redis = database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return deps.redis.Ping(ctx)
		}, 10, 2*time.Second, log, "Redis connection")
		if err != nil {
			// the catalog reads through to postgres without a cache
			log.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
			deps.redis.Close()
			deps.redis = nil
		} else {
			log.Info("Redis connected successfully")
		}
	}

	if config.IsWorkerEnabled(cfg, "query-elasticsearch") {
		err = retryWithBackoff(func() error {
			var err error
			deps.es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return deps.es.Ping(ctx)
		}, 15, 2*time.Second, log, "Elasticsearch connection")
		if err != nil {
			deps.close(log)
			return nil, err
		}
		created, err := deps.es.EnsureIndex(ctx, cfg.Catalog.IndexName)
		if err != nil {
			deps.close(log)
			return nil, fmt.Errorf("elasticsearch index: %w", err)
		}
		log.Info("Elasticsearch connected successfully",
			zap.String("index", cfg.Catalog.IndexName),
			zap.Bool("indexCreated", created),
		)
	}

	return deps, nil
}

func newCatalogSource(cfg *config.Config, deps *dependencies, log logger.Logger) (catalog.Source, error) {
	if cfg.Catalog.Source == config.CatalogSourceSeed {
		records, err := catalog.Seed()
		if err != nil {
			return nil, err
		}
		return catalog.StaticSource(records), nil
	}

	var cache *redis.Client
	if deps.redis != nil {
		cache = deps.redis.Client
	}
	return catalog.NewRepository(deps.pg.DB, cache, config.GetDuration(cfg.Catalog.CacheTTL), log), nil
}
