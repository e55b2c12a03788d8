// internal/workers/data-access/query-postgresql/handler.go
package querypostgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"atio-knowledge-base/internal/common/camunda"
	"atio-knowledge-base/internal/common/errors"
	"atio-knowledge-base/internal/common/logger"
	"atio-knowledge-base/internal/common/metrics"
	"atio-knowledge-base/internal/models"
	"atio-knowledge-base/internal/workers/data-access/query-postgresql/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "query-postgresql"
)

var (
	ErrNilInput = stderrors.New("input cannot be nil")
)

type Handler struct {
	config *Config
	db     *sql.DB
	errors *errors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		errors: errors.NewErrorHandler(log),
		logger: log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errors.HandleJobError(context.Background(), client, job,
			errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errors.HandleJobError(context.Background(), client, job, err)
		return
	}

	if err := camunda.CompleteJob(context.Background(), client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError(ErrNilInput.Error())
	}

	queryType := models.QueryType(input.QueryType)
	if !queries.Supported(queryType) {
		return nil, errors.NewInvalidQueryTypeError(input.QueryType)
	}

	res, err := queries.Execute(ctx, h.db, queryType, input.Params)
	if err != nil {
		switch {
		case stderrors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, errors.NewQueryTimeoutError(input.QueryType)
		case stderrors.Is(err, queries.ErrMissingParam), stderrors.Is(err, queries.ErrInvalidParam):
			return nil, errors.NewInvalidInputError(err.Error())
		default:
			return nil, errors.NewQueryExecutionFailedError(input.QueryType, err)
		}
	}

	metrics.DataQueryDuration.WithLabelValues("postgres", input.QueryType).Observe(res.Duration.Seconds())

	fields := map[string]interface{}{
		"queryType":  input.QueryType,
		"rowCount":   res.RowCount,
		"durationMs": res.Duration.Milliseconds(),
	}
	if h.config.SlowQueryThreshold > 0 && res.Duration > h.config.SlowQueryThreshold {
		h.logger.Warn("slow query", fields)
	} else {
		h.logger.Debug("query executed", fields)
	}

	return &Output{
		Data:          res.Data,
		RowCount:      res.RowCount,
		ExecutionTime: res.Duration.Milliseconds(),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
