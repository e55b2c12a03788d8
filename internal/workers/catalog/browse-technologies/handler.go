// internal/workers/catalog/browse-technologies/handler.go
package browsetechnologies

import (
	"context"
	"encoding/json"
	"fmt"

	"atio-knowledge-base/internal/catalog"
	"atio-knowledge-base/internal/common/camunda"
	"atio-knowledge-base/internal/common/errors"
	"atio-knowledge-base/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "browse-technologies"

type Handler struct {
	config *Config
	source catalog.Source
	errors *errors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, source catalog.Source, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		source: source,
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
	all := input.Technologies
	if len(all) == 0 {
		records, err := h.source.All(ctx)
		if err != nil {
			return nil, errors.NewCatalogUnavailableError(err)
		}
		all = records
	}

	displayed := catalog.Browse(all, input.Filters)
	stats := catalog.ComputeStats(all, displayed)

	h.logger.Debug("catalog filtered", map[string]interface{}{
		"search":    input.Filters.Search,
		"category":  input.Filters.Category,
		"maxCost":   input.Filters.MaxCost,
		"total":     stats.Total,
		"displayed": stats.Displayed,
	})

	return &Output{Technologies: displayed, Stats: stats}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
