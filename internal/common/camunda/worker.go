// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"workforce-intelligence/internal/common/config"
	"workforce-intelligence/internal/common/errors"
	"workforce-intelligence/internal/common/logger"
	"workforce-intelligence/internal/common/metrics"
	"workforce-intelligence/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler completes or fails the job itself and returns the error it reported, if any.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker for taskType. Every job is timed and counted in both
// the Prometheus registry and the OpenTelemetry meter.
func NewWorker(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handler JobHandler,
	obs *observability.Observability,
	log logger.Logger,
) *CamundaWorker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(instrument(taskType, handler, obs, log)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   log,
		taskType: taskType,
	}
}

func instrument(taskType string, handler JobHandler, obs *observability.Observability, log logger.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		ctx, span := obs.StartJobSpan(context.Background(), taskType, job.Key)
		start := time.Now()
		err := handler.Handle(client, job)
		elapsed := time.Since(start)
		observability.EndJobSpan(span, err)

		status := "completed"
		if err != nil {
			status = "failed"
			code := string(errors.ErrCodeInternal)
			if stdErr, ok := errors.AsStandardError(err); ok {
				code = string(stdErr.Code)
			}
			metrics.WorkerJobsFailed.WithLabelValues(taskType, code).Inc()
			log.Warn("job handler returned error", map[string]interface{}{
				"jobKey":  job.Key,
				"traceId": span.SpanContext().TraceID().String(),
				"error":   err,
			})
		} else {
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		}
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())

		obs.RecordJobProcessed(ctx, taskType, status)
		obs.RecordJobDuration(ctx, taskType, elapsed, status)
	}
}

// Stop closes the job worker and waits for in-flight jobs to finish.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
