// internal/workers/catalog/compare-technologies/handler.go
package comparetechnologies

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"

	"atio-knowledge-base/internal/catalog"
	"atio-knowledge-base/internal/common/camunda"
	"atio-knowledge-base/internal/common/errors"
	"atio-knowledge-base/internal/common/logger"
	"atio-knowledge-base/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "compare-technologies"

var (
	ErrUnsupportedIDs = stderrors.New("ids must be a string or an array")
	ErrUnknownIDs     = stderrors.New("none of the selected technologies exist")
)

// idLoader is satisfied by catalog.Repository, which reads only the
// selected rows instead of the whole collection.
type idLoader interface {
	ByIDs(ctx context.Context, ids []int) ([]models.Technology, error)
}

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
	ids, err := parseIDs(input.IDs)
	if err != nil {
		return nil, errors.NewInvalidComparisonError(err)
	}

	selected, err := catalog.SelectForComparison(ids)
	if err != nil {
		return nil, errors.NewInvalidComparisonError(err)
	}

	records, err := h.load(ctx, selected)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("technology_comparison", err)
	}

	ordered := orderByIDs(records, selected)
	if len(ordered) == 0 {
		return nil, errors.NewInvalidComparisonError(fmt.Errorf("%w: %v", ErrUnknownIDs, selected))
	}
	if len(ordered) < len(selected) {
		h.logger.Warn("some selected technologies were not found", map[string]interface{}{
			"selected": selected,
			"found":    len(ordered),
		})
	}

	return &Output{Technologies: ordered}, nil
}

func (h *Handler) load(ctx context.Context, ids []int) ([]models.Technology, error) {
	if loader, ok := h.source.(idLoader); ok {
		return loader.ByIDs(ctx, ids)
	}
	return h.source.All(ctx)
}

// parseIDs accepts "1,2", [1,2] and ["1","2"].
func parseIDs(raw json.RawMessage) ([]int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []int{}, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return catalog.ParseIDs(text)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, ErrUnsupportedIDs
	}

	ids := make([]int, 0, len(items))
	for _, item := range items {
		var n int
		if err := json.Unmarshal(item, &n); err == nil {
			if n <= 0 {
				return nil, fmt.Errorf("%w: %d", catalog.ErrInvalidID, n)
			}
			ids = append(ids, n)
			continue
		}

		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, fmt.Errorf("%w: %s", catalog.ErrInvalidID, item)
		}
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %q", catalog.ErrInvalidID, s)
		}
		ids = append(ids, n)
	}
	return ids, nil
}

// orderByIDs returns the records named in ids, in ids order. Ids with no
// record are skipped.
func orderByIDs(records []models.Technology, ids []int) []models.Technology {
	byID := make(map[int]models.Technology, len(records))
	for _, t := range records {
		byID[t.ID] = t
	}

	out := make([]models.Technology, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
