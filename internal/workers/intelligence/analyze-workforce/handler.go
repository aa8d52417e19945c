// internal/workers/intelligence/analyze-workforce/handler.go
package analyzeworkforce

import (
	"context"
	"encoding/json"

	"workforce-intelligence/internal/common/errors"
	"workforce-intelligence/internal/common/logger"
	"workforce-intelligence/internal/common/metrics"
	"workforce-intelligence/internal/common/observability"
	"workforce-intelligence/internal/common/validation"
	"workforce-intelligence/internal/models"
	"workforce-intelligence/internal/reliability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "analyze-workforce"
)

// Handler runs the reliability engine for one job. Rejections complete the job with
// isReliable false so the process can branch on them; only bad variables fail it.
type Handler struct {
	config       *Config
	engine       *reliability.Engine
	validator    *validation.SchemaValidator
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
	newID        func() string
}

func NewHandler(config *Config, engine *reliability.Engine, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
		validator:    validation.MustIntakeValidator(),
		obs:          obs,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
		newID:        uuid.NewString,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job.Variables)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	return h.completeJob(ctx, client, job, output)
}

// parseInput rejects variables that are not JSON with PARSE_ERROR and variables that
// do not match the intake schema with INVALID_PAYLOAD.
func (h *Handler) parseInput(variables string) (*Input, error) {
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewParseError(err)
	}

	if result := h.validator.ValidateBytes([]byte(variables)); !result.Valid {
		return nil, errors.NewInvalidPayloadError(result.Summary())
	}

	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	in := input.Input()
	if in.JobTitle == "" {
		return nil, errors.NewInvalidPayloadError("jobTitle: must not be blank")
	}

	result := h.engine.Analyze(
		in.JobTitle,
		reliability.DocumentData(in.DocumentData),
		reliability.MarketData(in.MarketData),
		reliability.ManualData(in.ManualData),
	)

	output := &Output{
		AnalysisID:       h.newID(),
		JobTitle:         result.JobTitle,
		IsReliable:       result.IsReliable,
		ReliabilityScore: result.ReliabilityScore,
		WorkforceData:    result.WorkforceData,
		BlockerMessage:   result.BlockerMessage,
		RejectionCode:    string(result.RejectionCode),
		InputFingerprint: in.Fingerprint(),
	}
	if result.IsReliable {
		output.Report = reliability.Report(result.JobTitle, result.WorkforceData, result.ReliabilityScore)
	}

	verdict := "reliable"
	if !result.IsReliable {
		verdict = output.RejectionCode
	}
	metrics.RecordAnalysis(verdict, string(models.SourceWorker), result.ReliabilityScore.OverallScore)
	h.obs.RecordAnalysis(ctx, verdict, result.ReliabilityScore.OverallScore)

	h.logger.Info("analysis completed", map[string]interface{}{
		"analysisId":   output.AnalysisID,
		"jobTitle":     output.JobTitle,
		"isReliable":   output.IsReliable,
		"overallScore": output.ReliabilityScore.OverallScore,
		"verdict":      verdict,
	})

	return output, nil
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

// ParseInput exposes variable decoding for tests.
func (h *Handler) ParseInput(variables string) (*Input, error) {
	return h.parseInput(variables)
}
