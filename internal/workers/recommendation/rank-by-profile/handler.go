// internal/workers/recommendation/rank-by-profile/handler.go
package rankbyprofile

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"atio-knowledge-base/internal/catalog"
	"atio-knowledge-base/internal/common/camunda"
	"atio-knowledge-base/internal/common/errors"
	"atio-knowledge-base/internal/common/logger"
	"atio-knowledge-base/internal/common/metrics"
	"atio-knowledge-base/internal/matching"
	"atio-knowledge-base/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "rank-by-profile"
)

var (
	ErrNilInput        = stderrors.New("input cannot be nil")
	ErrUnknownBudget   = stderrors.New("unknown budget")
	ErrUnknownPriority = stderrors.New("unknown priority")
)

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
		return
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey": job.Key,
		"count":  output.Count,
	})
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.Wrap(errors.ErrCodeRecommendationFailed, ErrNilInput)
	}
	if err := validateProfile(input.UserProfile); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRecommendationFailed, err)
	}

	records := input.Technologies
	if len(records) == 0 {
		all, err := h.source.All(ctx)
		if err != nil {
			return nil, errors.NewCatalogUnavailableError(err)
		}
		records = all
	}

	limit := input.Limit
	if limit <= 0 {
		limit = h.config.DefaultLimit
	}

	start := time.Now()
	ranked := matching.RankByProfile(records, input.UserProfile, limit)
	duration := time.Since(start).Milliseconds()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRecommendationFailed, err)
	}

	for _, s := range ranked {
		metrics.RecommendationScores.WithLabelValues(TaskType).Observe(s.Score)
	}

	h.logger.Info("ranking completed", map[string]interface{}{
		"inputCount":  len(records),
		"outputCount": len(ranked),
		"durationMs":  duration,
	})
	if duration > 500 {
		h.logger.Warn("ranking exceeded 500ms", map[string]interface{}{
			"durationMs": duration,
		})
	}

	return &Output{
		RequestID:       uuid.NewString(),
		Recommendations: ranked,
		Count:           len(ranked),
	}, nil
}

// validateProfile rejects values the form cannot produce. Empty fields are
// valid and simply not scored.
func validateProfile(p models.UserProfile) error {
	if p.Budget != "" && !contains(models.Costs, p.Budget) {
		return fmt.Errorf("%w: %q", ErrUnknownBudget, p.Budget)
	}
	if p.Priority != "" && !contains(models.Priorities, p.Priority) {
		return fmt.Errorf("%w: %q", ErrUnknownPriority, p.Priority)
	}
	return nil
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Execute runs the ranking without a job; used by tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
