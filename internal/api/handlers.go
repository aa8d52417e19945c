// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"workforce-intelligence/internal/common/errors"
	"workforce-intelligence/internal/common/metrics"
	"workforce-intelligence/internal/models"
	"workforce-intelligence/internal/reliability"
	"workforce-intelligence/internal/store"

	"github.com/gin-gonic/gin"
)

const readyCheckTimeout = 2 * time.Second

var endpoints = []string{
	"GET /",
	"GET /health",
	"GET /ready",
	"GET /metrics",
	"POST /webhook/intake",
	"GET /analyses",
	"GET /analyses/:id",
	"GET /reports/search",
}

type handleFunc func(*gin.Context) (interface{}, error)

// handle writes the handler's payload with the status already set on the writer,
// or the error mapped through errors.HTTPStatus.
func handle(c *gin.Context, fn handleFunc) {
	data, err := fn(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(c.Writer.Status(), data)
}

func abortWithError(c *gin.Context, err error) {
	stdErr, ok := errors.AsStandardError(err)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"code":    errors.ErrCodeInternal,
			"message": "internal error",
		})
		return
	}

	body := gin.H{
		"success": false,
		"code":    stdErr.Code,
		"message": stdErr.Message,
	}
	if stdErr.Details != "" {
		body["details"] = stdErr.Details
	}
	c.AbortWithStatusJSON(errors.HTTPStatus(stdErr.Code), body)
}

func (s *Server) root(c *gin.Context) {
	var activities []string
	if s.deps.Registry != nil {
		activities = s.deps.Registry.TaskTypes()
	}
	c.JSON(http.StatusOK, gin.H{
		"service":            s.deps.App.Name,
		"version":            s.deps.App.Version,
		"environment":        s.deps.App.Environment,
		"minimumReliability": s.deps.Engine.Validator().MinimumReliability(),
		"endpoints":          endpoints,
		"activities":         activities,
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   s.deps.Clock().UTC().Format(time.RFC3339),
	})
}

// ready reports every configured backend. One failing check turns the answer into a 503.
func (s *Server) ready(c *gin.Context) {
	names := make([]string, 0, len(s.deps.ReadyChecks))
	for name := range s.deps.ReadyChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	checks := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyCheckTimeout)
		err := s.deps.ReadyChecks[name](ctx)
		cancel()

		if err != nil {
			status = http.StatusServiceUnavailable
			checks[name] = err.Error()
			s.logger.Warn("readiness check failed", map[string]interface{}{"check": name, "error": err.Error()})
			continue
		}
		checks[name] = "ok"
	}

	ready := status == http.StatusOK
	c.JSON(status, gin.H{"ready": ready, "checks": checks})
}

func (s *Server) intake(c *gin.Context) (interface{}, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, errors.NewInvalidPayloadError(fmt.Sprintf("could not read body: %v", err))
	}

	if result := s.validator.ValidateBytes(body); !result.Valid {
		return nil, errors.NewInvalidPayloadError(result.Summary())
	}

	var payload models.IntakePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.NewParseError(err)
	}

	input := payload.Input()
	if input.JobTitle == "" {
		return nil, errors.NewInvalidPayloadError("jobTitle: must not be blank")
	}

	ctx := c.Request.Context()
	record, cached := s.cachedAnalysis(ctx, input)
	if record == nil {
		record = s.analyze(ctx, input)
	}

	if payload.NotifyEmail != "" {
		s.mailReport(ctx, payload.NotifyEmail, record)
	}

	if !record.IsReliable {
		stdErr := errors.FromAnalysis(record.Result)
		c.Status(errors.HTTPStatus(stdErr.Code))
		return gin.H{
			"success":          false,
			"analysisId":       record.ID,
			"cached":           cached,
			"code":             stdErr.Code,
			"message":          record.BlockerMessage,
			"reliabilityScore": record.Result.ReliabilityScore,
			"minimumRequired":  s.deps.Engine.Validator().MinimumReliability(),
		}, nil
	}

	return gin.H{
		"success":    true,
		"analysisId": record.ID,
		"cached":     cached,
		"analysis":   record.Result,
		"report":     record.Report,
	}, nil
}

func (s *Server) cachedAnalysis(ctx context.Context, input models.AnalysisInput) (*models.AnalysisRecord, bool) {
	if s.deps.Cache == nil {
		return nil, false
	}

	hit, err := s.deps.Cache.Get(ctx, input)
	if err != nil {
		s.logger.Warn("result cache lookup failed", map[string]interface{}{"error": err.Error()})
		return nil, false
	}
	if hit == nil || hit.Record == nil {
		return nil, false
	}
	return hit.Record, true
}

func (s *Server) analyze(ctx context.Context, input models.AnalysisInput) *models.AnalysisRecord {
	result := s.deps.Engine.Analyze(
		input.JobTitle,
		reliability.DocumentData(input.DocumentData),
		reliability.MarketData(input.MarketData),
		reliability.ManualData(input.ManualData),
	)

	var report string
	if result.IsReliable {
		report = reliability.Report(result.JobTitle, result.WorkforceData, result.ReliabilityScore)
	}

	record := models.NewAnalysisRecord(s.deps.NewID(), result, report, models.SourceAPI, input.Fingerprint(), s.deps.Clock())
	metrics.RecordAnalysis(record.Verdict(), string(models.SourceAPI), record.OverallScore)

	s.logger.Info("analysis completed", map[string]interface{}{
		"analysisId":   record.ID,
		"jobTitle":     record.JobTitle,
		"isReliable":   record.IsReliable,
		"overallScore": record.OverallScore,
	})

	s.persist(ctx, input, record)
	return record
}

// persist is best-effort. Failures are logged and never change the response.
func (s *Server) persist(ctx context.Context, input models.AnalysisInput, record *models.AnalysisRecord) {
	fields := map[string]interface{}{"analysisId": record.ID}

	if s.deps.Store != nil {
		if err := s.deps.Store.Save(ctx, record); err != nil {
			s.logger.Error("failed to store analysis", withError(fields, err))
		}
	}
	if s.deps.Cache != nil {
		if err := s.deps.Cache.Set(ctx, input, record); err != nil {
			s.logger.Warn("failed to cache analysis", withError(fields, err))
		}
	}
	if s.deps.Index != nil && record.IsReliable {
		if err := s.deps.Index.Index(ctx, store.DocumentFromRecord(record)); err != nil {
			s.logger.Warn("failed to index report", withError(fields, err))
		}
	}
}

func (s *Server) mailReport(ctx context.Context, to string, record *models.AnalysisRecord) {
	if s.deps.Mailer == nil || !record.IsReliable {
		return
	}

	messageID, err := s.deps.Mailer.SendReport(ctx, to, record.JobTitle, record.Report)
	if err != nil {
		s.logger.Error("failed to mail report", withError(map[string]interface{}{"analysisId": record.ID}, err))
		return
	}
	s.logger.Info("report mailed", map[string]interface{}{"analysisId": record.ID, "messageId": messageID})
}

func (s *Server) getAnalysis(c *gin.Context) (interface{}, error) {
	if s.deps.Store == nil {
		return nil, errors.NewDatabaseConnectionFailedError(fmt.Errorf("analysis store is not configured"))
	}

	record, err := s.deps.Store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	return gin.H{"success": true, "analysis": record}, nil
}

func (s *Server) listAnalyses(c *gin.Context) (interface{}, error) {
	if s.deps.Store == nil {
		return nil, errors.NewDatabaseConnectionFailedError(fmt.Errorf("analysis store is not configured"))
	}

	limit := store.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return nil, errors.NewInvalidPayloadError(fmt.Sprintf("limit: expected a positive integer, got %q", raw))
		}
		limit = parsed
	}

	records, err := s.deps.Store.ListRecent(c.Request.Context(), c.Query("jobTitle"), limit)
	if err != nil {
		return nil, err
	}
	return gin.H{"success": true, "count": len(records), "analyses": records}, nil
}

func (s *Server) searchReports(c *gin.Context) (interface{}, error) {
	if s.deps.Index == nil {
		return nil, errors.NewSearchQueryFailedError("reports", fmt.Errorf("report index is not configured"))
	}

	size := 0
	if raw := c.Query("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return nil, errors.NewInvalidPayloadError(fmt.Sprintf("size: expected a positive integer, got %q", raw))
		}
		size = parsed
	}

	result, err := s.deps.Index.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		return nil, err
	}
	return gin.H{"success": true, "total": result.TotalHits, "took": result.Took, "hits": result.Hits}, nil
}

func withError(fields map[string]interface{}, err error) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = err.Error()
	return out
}
