// internal/workers/recommendation/match-by-context/handler.go
package matchbycontext

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
	TaskType = "match-by-context"
)

var (
	ErrNilInput           = stderrors.New("input cannot be nil")
	ErrUnknownIncomeLevel = stderrors.New("unknown income level")
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
		"jobKey":       job.Key,
		"count":        output.Count,
		"contextEmpty": output.ContextEmpty,
	})
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.Wrap(errors.ErrCodeContextMatchFailed, ErrNilInput)
	}

	uc := input.UserContext
	if uc.IncomeLevel != "" && !isIncomeLevel(uc.IncomeLevel) {
		return nil, errors.Wrap(errors.ErrCodeContextMatchFailed,
			fmt.Errorf("%w: %q", ErrUnknownIncomeLevel, uc.IncomeLevel))
	}

	// The matcher asks for at least one selection before it shows anything.
	if uc.IsEmpty() {
		return &Output{
			RequestID:    uuid.NewString(),
			Matches:      []Match{},
			ContextEmpty: true,
		}, nil
	}

	records := input.Technologies
	if len(records) == 0 {
		all, err := h.source.All(ctx)
		if err != nil {
			return nil, errors.NewCatalogUnavailableError(err)
		}
		records = all
	}

	start := time.Now()
	ranked := matching.MatchByContext(records, uc)
	duration := time.Since(start).Milliseconds()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeContextMatchFailed, err)
	}

	matches := make([]Match, 0, len(ranked))
	for _, s := range ranked {
		metrics.RecommendationScores.WithLabelValues(TaskType).Observe(s.Score)
		matches = append(matches, Match{
			Technology: s.Technology,
			Score:      s.Score,
			Band:       matching.ScoreBand(s.Score),
			Reasons:    matching.MatchReasons(s.Technology, uc),
		})
	}

	h.logger.Info("context match completed", map[string]interface{}{
		"inputCount":  len(records),
		"matchCount":  len(matches),
		"region":      uc.Region,
		"incomeLevel": uc.IncomeLevel,
		"durationMs":  duration,
	})
	if duration > 500 {
		h.logger.Warn("context match exceeded 500ms", map[string]interface{}{
			"durationMs": duration,
		})
	}

	return &Output{
		RequestID: uuid.NewString(),
		Matches:   matches,
		Count:     len(matches),
	}, nil
}

func isIncomeLevel(level models.IncomeLevel) bool {
	for _, l := range models.IncomeLevels {
		if l == level {
			return true
		}
	}
	return false
}

// Execute runs the match without a job; used by tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
