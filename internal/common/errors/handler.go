// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"

	"atio-knowledge-base/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler reports a failed job to Zeebe: retryable codes fail the job
// with a reduced retry count, everything else is thrown as a BPMN error.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Resolution is the decision HandleJobError acts on.
type Resolution struct {
	BPMN    *BPMNError
	Throw   bool
	Retries int
}

// Resolve decides between failing and throwing. A retryable error fails the
// job with one fewer retry than the job has left, capped by the code's
// retry budget. Once retries run out the error is thrown so the process can
// route it.
func Resolve(err error, jobRetries int32) Resolution {
	stdErr := AsStandardError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	if bpmnErr.Retries == 0 || jobRetries <= 1 {
		return Resolution{BPMN: bpmnErr, Throw: true}
	}

	remaining := int(jobRetries) - 1
	if remaining > bpmnErr.Retries {
		remaining = bpmnErr.Retries
	}
	return Resolution{BPMN: bpmnErr, Retries: remaining}
}

func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) Resolution {
	stdErr := AsStandardError(err)
	res := Resolve(stdErr, job.Retries)
	h.logError(job, stdErr, res)
	metrics.WorkerJobsFailed.WithLabelValues(job.Type, string(stdErr.Code)).Inc()

	if res.Throw {
		h.throwBPMNError(ctx, client, job, res.BPMN)
	} else {
		h.failJobWithRetries(ctx, client, job, res.BPMN, res.Retries)
	}
	return res
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(retries)).
		ErrorMessage(bpmnErr.Message)

	if vars, ok := errorVariablesJSON(bpmnErr); ok {
		if withVars, err := cmd.VariablesFromString(vars); err == nil {
			_, _ = withVars.Send(ctx)
			return
		}
	}
	_, _ = cmd.Send(ctx)
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if vars, ok := errorVariablesJSON(bpmnErr); ok {
		if withVars, err := cmd.VariablesFromString(vars); err == nil {
			_, _ = withVars.Send(ctx)
			return
		}
	}
	_, _ = cmd.Send(ctx)
}

func errorVariablesJSON(bpmnErr *BPMNError) (string, bool) {
	data, err := json.Marshal(bpmnErr.ToErrorVariables())
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, res Resolution) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"bpmnErrorCode":    res.BPMN.Code,
		"message":          res.BPMN.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"thrown":           res.Throw,
		"retries":          res.Retries,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
