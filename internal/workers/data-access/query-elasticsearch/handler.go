// internal/workers/data-access/query-elasticsearch/handler.go
package queryelasticsearch

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"atio-knowledge-base/internal/common/camunda"
	"atio-knowledge-base/internal/common/errors"
	"atio-knowledge-base/internal/common/logger"
	"atio-knowledge-base/internal/common/metrics"
	"atio-knowledge-base/internal/workers/data-access/query-elasticsearch/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
)

const (
	TaskType = "query-elasticsearch"
)

var (
	ErrNilInput = stderrors.New("input cannot be nil")
)

type Handler struct {
	config  *Config
	client  *elasticsearch.Client
	breaker *searchBreaker
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		client:  client,
		breaker: newSearchBreaker(config.Breaker, log),
		errors:  errors.NewErrorHandler(log),
		logger:  log,
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

	eq := queries.ElasticsearchQuery{
		Index:        input.IndexName,
		QueryType:    input.QueryType,
		Filters:      input.Filters,
		TechnologyID: input.TechnologyID,
		Pagination:   input.Pagination.Normalize(h.config.DefaultSize),
	}
	if eq.Index == "" {
		eq.Index = h.config.IndexName
	}

	start := time.Now()
	result, err := h.breaker.Execute(func() (*queries.QueryResult, error) {
		return queries.Execute(ctx, h.client, eq)
	})
	if err != nil {
		return nil, h.classify(ctx, eq, err)
	}

	metrics.DataQueryDuration.WithLabelValues("elasticsearch", eq.QueryType).Observe(time.Since(start).Seconds())

	h.logger.Debug("search executed", map[string]interface{}{
		"index":     eq.Index,
		"queryType": eq.QueryType,
		"totalHits": result.TotalHits,
		"took":      result.Took,
	})

	return &Output{
		Data:      result.Data,
		TotalHits: result.TotalHits,
		MaxScore:  result.MaxScore,
		Took:      result.Took,
	}, nil
}

func (h *Handler) classify(ctx context.Context, eq queries.ElasticsearchQuery, err error) error {
	switch {
	case isBreakerRejection(err):
		return errors.NewCircuitOpenError(err)
	case stderrors.Is(ctx.Err(), context.DeadlineExceeded):
		return errors.NewSearchTimeoutError(eq.QueryType)
	case stderrors.Is(err, queries.ErrUnknownQueryType):
		return errors.NewInvalidQueryTypeError(eq.QueryType)
	case stderrors.Is(err, queries.ErrMissingIndex), stderrors.Is(err, queries.ErrMissingID):
		return errors.NewInvalidInputError(err.Error())
	case stderrors.Is(err, queries.ErrIndexNotFound):
		return errors.NewIndexNotFoundError(eq.Index)
	default:
		return errors.NewSearchQueryFailedError(eq.QueryType, err)
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
