// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"atio-knowledge-base/internal/common/errors"
	"atio-knowledge-base/internal/common/logger"
	"atio-knowledge-base/internal/common/metrics"
	"atio-knowledge-base/internal/common/observability"
	"atio-knowledge-base/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
)

const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeUnknown   = "unknown"
)

// JobFailer reports a failed job to the broker.
type JobFailer interface {
	HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) errors.Resolution
}

// Instrumentation is shared by every instrumented worker.
type Instrumentation struct {
	Obs    *observability.Observability
	Failer JobFailer
	Logger logger.Logger
}

// Instrument wraps handle with metrics, a trace span, panic recovery and,
// when inputSchema is set, validation of the job variables before the
// handler sees them.
func Instrument(taskType string, inputSchema json.RawMessage, handle worker.JobHandler, inst Instrumentation) worker.JobHandler {
	log := inst.Logger.WithFields(map[string]interface{}{"taskType": taskType})

	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		defer active.Dec()

		ctx, span := inst.Obs.StartSpan(context.Background(), taskType,
			attribute.Int64("zeebe.job.key", job.Key),
			attribute.Int64("zeebe.process_instance.key", job.ProcessInstanceKey),
		)
		defer span.End()

		tracked := &trackingClient{JobClient: client}

		defer func() {
			if r := recover(); r != nil {
				log.Error("handler panicked", map[string]interface{}{"jobKey": job.Key, "panic": fmt.Sprint(r)})
				inst.Failer.HandleJobError(ctx, tracked, job, errors.New(errors.ErrCodeInternal, fmt.Sprint(r)))
			}
			finish(ctx, taskType, tracked.outcome(), start, inst.Obs)
			if tracked.outcome() == OutcomeFailed {
				span.SetStatus(otelcodes.Error, "job failed")
			}
		}()

		if len(inputSchema) > 0 {
			if err := checkVariables(inputSchema, job.Variables); err != nil {
				log.Warn("job variables rejected", map[string]interface{}{"jobKey": job.Key, "error": err.Error()})
				inst.Failer.HandleJobError(ctx, tracked, job, err)
				return
			}
		}

		handle(tracked, job)
	}
}

func checkVariables(schema json.RawMessage, variables string) error {
	if variables == "" {
		variables = "{}"
	}
	res, err := validation.ValidateJSON(schema, []byte(variables))
	if err != nil {
		return errors.NewInvalidInputError(err.Error())
	}
	if !res.Valid {
		return errors.NewInvalidInputError(res.Error())
	}
	return nil
}

func finish(ctx context.Context, taskType, outcome string, start time.Time, obs *observability.Observability) {
	elapsed := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
	if outcome == OutcomeCompleted {
		metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
	}
	obs.RecordJobProcessed(ctx, taskType, outcome)
	obs.RecordJobDuration(ctx, taskType, elapsed, outcome)
}

// trackingClient notes which terminal command the handler issued.
type trackingClient struct {
	worker.JobClient

	mu     sync.Mutex
	result string
}

func (c *trackingClient) set(result string) {
	c.mu.Lock()
	c.result = result
	c.mu.Unlock()
}

func (c *trackingClient) outcome() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == "" {
		return OutcomeUnknown
	}
	return c.result
}

func (c *trackingClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	c.set(OutcomeCompleted)
	return c.JobClient.NewCompleteJobCommand()
}

func (c *trackingClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	c.set(OutcomeFailed)
	return c.JobClient.NewFailJobCommand()
}

func (c *trackingClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	c.set(OutcomeFailed)
	return c.JobClient.NewThrowErrorCommand()
}

// CompleteJob completes job with output as its variables. Transient gateway
// errors are retried with DefaultRetryConfig.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("build complete command: %w", err)
	}

	_, err = executeWithRetry(ctx, DefaultRetryConfig, func(ctx context.Context) (*pb.CompleteJobResponse, error) {
		return cmd.Send(ctx)
	}, "complete job")
	return err
}
