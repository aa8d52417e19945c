// internal/workers/intelligence/send-report/handler.go
package sendreport

import (
	"context"
	"encoding/json"
	"time"

	"workforce-intelligence/internal/common/aws"
	"workforce-intelligence/internal/common/errors"
	"workforce-intelligence/internal/common/logger"
	"workforce-intelligence/internal/reliability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "send-report"
)

// ReportMailer is satisfied by *aws.ReportMailer.
type ReportMailer interface {
	SendReport(ctx context.Context, to, jobTitle, report string) (string, error)
}

// AlertPublisher is satisfied by *aws.AlertPublisher.
type AlertPublisher interface {
	PublishRejection(ctx context.Context, alert aws.RejectionAlert) (string, error)
}

// Handler mails reliable reports and raises an alert for rejected analyses. A nil
// mailer or publisher turns the matching channel off; the job then completes unsent.
type Handler struct {
	config       *Config
	mailer       ReportMailer
	alerts       AlertPublisher
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
	clock        func() time.Time
}

func NewHandler(config *Config, mailer ReportMailer, alerts AlertPublisher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		mailer:       mailer,
		alerts:       alerts,
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
	if input.IsReliable {
		return h.sendReport(ctx, input)
	}
	return h.publishRejection(ctx, input)
}

func (h *Handler) sendReport(ctx context.Context, input *Input) (*Output, error) {
	if h.mailer == nil {
		h.logger.Info("report mail disabled, skipping", map[string]interface{}{"analysisId": input.AnalysisID})
		return &Output{Channel: ChannelNone}, nil
	}

	to := input.NotifyEmail
	if to == "" {
		to = h.config.DefaultRecipient
	}
	if to == "" {
		return nil, errors.NewReportRecipientMissingError()
	}

	report := input.Report
	if report == "" {
		report = reliability.Report(input.JobTitle, nil, input.ReliabilityScore)
	}

	messageID, err := h.mailer.SendReport(ctx, to, input.JobTitle, report)
	if err != nil {
		return nil, errors.NewNotificationSendFailedError(ChannelEmail, err)
	}

	h.logger.Info("report mailed", map[string]interface{}{
		"analysisId": input.AnalysisID,
		"messageId":  messageID,
	})

	return &Output{
		Channel:   ChannelEmail,
		MessageID: messageID,
		Sent:      true,
		SentAt:    h.clock().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) publishRejection(ctx context.Context, input *Input) (*Output, error) {
	if h.alerts == nil {
		h.logger.Info("rejection alerts disabled, skipping", map[string]interface{}{"analysisId": input.AnalysisID})
		return &Output{Channel: ChannelNone}, nil
	}

	messageID, err := h.alerts.PublishRejection(ctx, aws.RejectionAlert{
		AnalysisID:     input.AnalysisID,
		JobTitle:       input.JobTitle,
		OverallScore:   input.ReliabilityScore.OverallScore,
		RejectionCode:  input.RejectionCode,
		BlockerMessage: input.BlockerMessage,
	})
	if err != nil {
		return nil, errors.NewNotificationSendFailedError(ChannelAlert, err)
	}

	h.logger.Info("rejection alert published", map[string]interface{}{
		"analysisId":    input.AnalysisID,
		"rejectionCode": input.RejectionCode,
		"messageId":     messageID,
	})

	return &Output{
		Channel:   ChannelAlert,
		MessageID: messageID,
		Sent:      true,
		SentAt:    h.clock().UTC().Format(time.RFC3339),
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
