// internal/store/analysis_repository.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"workforce-intelligence/internal/common/errors"
	"workforce-intelligence/internal/common/logger"
	"workforce-intelligence/internal/models"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// Schema creates the tables the repository writes to.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS workforce_analyses (
		id VARCHAR(64) PRIMARY KEY,
		job_title VARCHAR(200) NOT NULL,
		is_reliable BOOLEAN NOT NULL,
		overall_score INTEGER NOT NULL,
		rejection_code VARCHAR(64),
		blocker_message TEXT,
		result JSONB NOT NULL,
		report TEXT,
		source VARCHAR(32) NOT NULL,
		input_fingerprint VARCHAR(64) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_workforce_analyses_created_at ON workforce_analyses (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id SERIAL PRIMARY KEY,
		event_type VARCHAR(100),
		resource_type VARCHAR(100),
		resource_id VARCHAR(255),
		details JSONB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
}

const (
	insertAnalysisQuery = `
		INSERT INTO workforce_analyses (
			id, job_title, is_reliable, overall_score, rejection_code, blocker_message,
			result, report, source, input_fingerprint, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING`

	insertAuditLogQuery = `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	selectAnalysisColumns = `
		SELECT id, job_title, is_reliable, overall_score, rejection_code, blocker_message,
			result, report, source, input_fingerprint, created_at
		FROM workforce_analyses`
)

// AnalysisRepository persists analyses in PostgreSQL.
type AnalysisRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewAnalysisRepository(db *sql.DB, log logger.Logger) *AnalysisRepository {
	return &AnalysisRepository{
		db:     db,
		logger: logger.ForComponent(log, "analysis-repository"),
	}
}

// Migrate applies Schema. Statements are idempotent.
func (r *AnalysisRepository) Migrate(ctx context.Context) error {
	for _, stmt := range Schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return errors.NewQueryExecutionFailedError("migrate", err)
		}
	}
	return nil
}

// Save inserts the analysis. Saving an id that already exists is a no-op, so job
// retries are safe. The audit row is best-effort: its failure is logged only.
func (r *AnalysisRepository) Save(ctx context.Context, record *models.AnalysisRecord) error {
	resultJSON, err := json.Marshal(record.Result)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(fmt.Errorf("marshal result: %w", err))
	}

	_, err = r.db.ExecContext(ctx, insertAnalysisQuery,
		record.ID,
		record.JobTitle,
		record.IsReliable,
		record.OverallScore,
		nullString(record.RejectionCode),
		nullString(record.BlockerMessage),
		resultJSON,
		nullString(record.Report),
		string(record.Source),
		record.InputFingerprint,
		record.CreatedAt,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}

	r.createAuditLog(ctx, record)
	return nil
}

func (r *AnalysisRepository) createAuditLog(ctx context.Context, record *models.AnalysisRecord) {
	details, _ := json.Marshal(map[string]interface{}{
		"jobTitle":      record.JobTitle,
		"isReliable":    record.IsReliable,
		"overallScore":  record.OverallScore,
		"rejectionCode": record.RejectionCode,
		"source":        record.Source,
	})

	_, err := r.db.ExecContext(ctx, insertAuditLogQuery,
		"analysis_recorded",
		"workforce_analysis",
		record.ID,
		details,
		time.Now().UTC(),
	)
	if err != nil {
		r.logger.Warn("failed to create audit log", map[string]interface{}{
			"analysisId": record.ID,
			"error":      err,
		})
	}
}

// Get loads one analysis. A missing row yields ANALYSIS_NOT_FOUND.
func (r *AnalysisRepository) Get(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	row := r.db.QueryRowContext(ctx, selectAnalysisColumns+` WHERE id = $1`, id)

	record, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewAnalysisNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get_analysis", err)
	}
	return record, nil
}

// ListRecent returns the newest analyses first, optionally filtered by a job title
// substring. limit is clamped to 1..MaxListLimit, zero meaning DefaultListLimit.
func (r *AnalysisRepository) ListRecent(ctx context.Context, jobTitle string, limit int) ([]models.AnalysisRecord, error) {
	limit = ClampLimit(limit)

	var (
		rows *sql.Rows
		err  error
	)
	if jobTitle != "" {
		rows, err = r.db.QueryContext(ctx,
			selectAnalysisColumns+` WHERE job_title ILIKE $1 ORDER BY created_at DESC LIMIT $2`,
			"%"+jobTitle+"%", limit)
	} else {
		rows, err = r.db.QueryContext(ctx,
			selectAnalysisColumns+` ORDER BY created_at DESC LIMIT $1`, limit)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list_analyses", err)
	}
	defer rows.Close()

	records := make([]models.AnalysisRecord, 0, limit)
	for rows.Next() {
		record, err := scanAnalysis(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("list_analyses", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list_analyses", err)
	}

	return records, nil
}

// ClampLimit applies the list defaults.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAnalysis(s scanner) (*models.AnalysisRecord, error) {
	var (
		record         models.AnalysisRecord
		rejectionCode  sql.NullString
		blockerMessage sql.NullString
		report         sql.NullString
		source         string
		resultJSON     []byte
	)

	err := s.Scan(
		&record.ID,
		&record.JobTitle,
		&record.IsReliable,
		&record.OverallScore,
		&rejectionCode,
		&blockerMessage,
		&resultJSON,
		&report,
		&source,
		&record.InputFingerprint,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(resultJSON, &record.Result); err != nil {
		return nil, fmt.Errorf("decode result of %s: %w", record.ID, err)
	}

	record.RejectionCode = rejectionCode.String
	record.BlockerMessage = blockerMessage.String
	record.Report = report.String
	record.Source = models.AnalysisSource(source)
	record.CreatedAt = record.CreatedAt.UTC()

	return &record, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
