// internal/workers/catalog/parse-catalog-filters/handler.go
package parsecatalogfilters

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"atio-knowledge-base/internal/catalog"
	"atio-knowledge-base/internal/common/camunda"
	"atio-knowledge-base/internal/common/errors"
	"atio-knowledge-base/internal/common/logger"
	"atio-knowledge-base/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "parse-catalog-filters"

var (
	ErrInvalidFilterFormat = stderrors.New("INVALID_FILTER_FORMAT")
)

// filterSchema is the contract of the browse form. Unknown keys are ignored
// so older forms keep working.
var filterSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "search":   {"type": "string"},
    "category": {"type": "string", "enum": ["All", "Water Management", "Energy", "Crop Innovation", "Digital Tools", "Post-Harvest", "Soil Health"]},
    "maxCost":  {"type": "string", "enum": ["All", "Low", "Medium", "High"]}
  }
}`)

type Handler struct {
	config *Config
	errors *errors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	parsed := catalog.Filter{
		Category: catalog.FilterAll,
		MaxCost:  catalog.FilterAll,
	}

	raw := bytes.TrimSpace(input.RawFilters)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return &Output{ParsedFilters: parsed}, nil
	}

	res, err := validation.ValidateJSON(filterSchema, raw)
	if err != nil {
		return nil, errors.NewInvalidFilterFormatError(err.Error())
	}
	if !res.Valid {
		return nil, errors.NewInvalidFilterFormatError(
			fmt.Errorf("%w: %s", ErrInvalidFilterFormat, res.Error()).Error())
	}

	var given catalog.Filter
	if err := json.Unmarshal(raw, &given); err != nil {
		return nil, errors.NewInvalidFilterFormatError(err.Error())
	}

	parsed.Search = truncate(strings.TrimSpace(given.Search), h.config.MaxSearchLength)
	if given.Category != "" {
		parsed.Category = given.Category
	}
	if given.MaxCost != "" {
		parsed.MaxCost = given.MaxCost
	}

	h.logger.Info("filters parsed successfully", map[string]interface{}{
		"search":   parsed.Search,
		"category": parsed.Category,
		"maxCost":  parsed.MaxCost,
	})

	return &Output{ParsedFilters: parsed}, nil
}

// truncate caps s at max runes.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
