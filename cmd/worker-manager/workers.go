// cmd/worker-manager/workers.go
package main

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"atio-knowledge-base/internal/catalog"
	"atio-knowledge-base/internal/common/camunda"
	"atio-knowledge-base/internal/common/config"
	"atio-knowledge-base/internal/common/logger"
	"atio-knowledge-base/pkg/registry"

	// Recommendation Workers (2)
	mbc "atio-knowledge-base/internal/workers/recommendation/match-by-context"
	rbp "atio-knowledge-base/internal/workers/recommendation/rank-by-profile"

	// Catalog Workers (4)
	bt "atio-knowledge-base/internal/workers/catalog/browse-technologies"
	ca "atio-knowledge-base/internal/workers/catalog/catalog-analytics"
	ct "atio-knowledge-base/internal/workers/catalog/compare-technologies"
	pcf "atio-knowledge-base/internal/workers/catalog/parse-catalog-filters"

	// Data Access Workers (2)
	qe "atio-knowledge-base/internal/workers/data-access/query-elasticsearch"
	qp "atio-knowledge-base/internal/workers/data-access/query-postgresql"
)

// registerWorkers opens a job worker for every enabled task type and returns
// how many were started.
func registerWorkers(
	cfg *config.Config,
	deps *dependencies,
	source catalog.Source,
	reg *registry.ActivityRegistry,
	inst camunda.Instrumentation,
	log logger.Logger,
	zapLog *zap.Logger,
) int {
	client := deps.zeebe.GetClient()
	started := 0

	start := func(taskType string, handle worker.JobHandler) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		wrapped := camunda.Instrument(taskType, reg.InputSchemaFor(taskType), handle, inst)
		startWorker(client, taskType, wcfg, wrapped, zapLog)
		started++
	}

	timeout := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	// --- 1. Recommendation Workers (2) ---
	rbpCfg := rbp.LoadConfig()
	rbpCfg.Timeout = timeout(rbp.TaskType)
	rbpCfg.DefaultLimit = cfg.Catalog.RecommendationLimit
	start(rbp.TaskType, rbp.NewHandler(rbpCfg, source, log).Handle)

	mbcCfg := mbc.LoadConfig()
	mbcCfg.Timeout = timeout(mbc.TaskType)
	start(mbc.TaskType, mbc.NewHandler(mbcCfg, source, log).Handle)

	// --- 2. Catalog Workers (4) ---
	pcfCfg := pcf.LoadConfig()
	pcfCfg.Timeout = timeout(pcf.TaskType)
	start(pcf.TaskType, pcf.NewHandler(pcfCfg, log).Handle)

	btCfg := bt.LoadConfig()
	btCfg.Timeout = timeout(bt.TaskType)
	start(bt.TaskType, bt.NewHandler(btCfg, source, log).Handle)

	ctCfg := ct.LoadConfig()
	ctCfg.Timeout = timeout(ct.TaskType)
	start(ct.TaskType, ct.NewHandler(ctCfg, source, log).Handle)

	caCfg := ca.LoadConfig()
	caCfg.Timeout = timeout(ca.TaskType)
	start(ca.TaskType, ca.NewHandler(caCfg, source, log).Handle)

	// --- 3. Data Access Workers (2) ---
	if deps.pg != nil {
		qpCfg := qp.LoadConfig()
		qpCfg.Timeout = timeout(qp.TaskType)
		start(qp.TaskType, qp.NewHandler(qpCfg, deps.pg.DB, log).Handle)
	} else {
		zapLog.Info("worker skipped, catalog is not in postgres", zap.String("taskType", qp.TaskType))
	}

	if deps.es != nil {
		qeCfg := qe.LoadConfig()
		qeCfg.Timeout = timeout(qe.TaskType)
		qeCfg.IndexName = cfg.Catalog.IndexName
		qeCfg.DefaultSize = cfg.Search.DefaultSize
		qeCfg.Breaker = qe.BreakerConfig{
			MaxRequests:      cfg.Search.BreakerMaxRequests,
			Interval:         config.GetDuration(cfg.Search.BreakerInterval),
			Timeout:          config.GetDuration(cfg.Search.BreakerTimeout),
			FailureThreshold: cfg.Search.BreakerFailureThreshold,
		}
		start(qe.TaskType, qe.NewHandler(qeCfg, deps.es.Client, log).Handle)
	}

	return started
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc worker.JobHandler, log *zap.Logger) {
	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
