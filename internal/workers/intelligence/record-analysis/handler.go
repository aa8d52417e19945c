// internal/workers/intelligence/record-analysis/handler.go
package recordanalysis

import (
	"context"
	"encoding/json"
	"time"

	"workforce-intelligence/internal/common/errors"
	"workforce-intelligence/internal/common/logger"
	"workforce-intelligence/internal/models"
	"workforce-intelligence/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "record-analysis"
)

// AnalysisStore is satisfied by *store.AnalysisRepository.
type AnalysisStore interface {
	Save(ctx context.Context, record *models.AnalysisRecord) error
}

// ReportIndex is satisfied by *store.ReportIndex.
type ReportIndex interface {
	Index(ctx context.Context, doc store.ReportDocument) error
}

type Handler struct {
	config       *Config
	store        AnalysisStore
	index        ReportIndex
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
	clock        func() time.Time
}

// NewHandler requires a store. index may be nil, in which case reports are not indexed.
func NewHandler(config *Config, analysisStore AnalysisStore, index ReportIndex, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        analysisStore,
		index:        index,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
		clock:        time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		stdErr := errors.NewParseError(err)
		h.errorHandler.HandleJobError(ctx, client, job, stdErr)
		return stdErr
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	return h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.AnalysisID == "" {
		return nil, errors.NewInvalidPayloadError("analysisId: is required")
	}
	if input.JobTitle == "" {
		return nil, errors.NewInvalidPayloadError("jobTitle: is required")
	}

	record := models.NewAnalysisRecord(
		input.AnalysisID,
		input.AnalysisResult,
		input.Report,
		models.SourceWorker,
		input.InputFingerprint,
		h.clock(),
	)

	if err := h.store.Save(ctx, record); err != nil {
		return nil, err
	}

	indexed := false
	if h.index != nil && record.IsReliable {
		// The record is already stored; a failed index only loses searchability.
		if err := h.index.Index(ctx, store.DocumentFromRecord(record)); err != nil {
			h.logger.Warn("report indexing failed", map[string]interface{}{
				"analysisId": record.ID,
				"error":      err,
			})
		} else {
			indexed = true
		}
	}

	h.logger.Info("analysis recorded", map[string]interface{}{
		"analysisId": record.ID,
		"isReliable": record.IsReliable,
		"indexed":    indexed,
	})

	return &Output{
		Recorded:   true,
		Indexed:    indexed,
		RecordedAt: record.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return errors.NewParseError(err)
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return errors.NewBrokerUnavailableError("complete job", err)
	}

	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
