// internal/store/analysis_repository_test.go
package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"workforce-intelligence/internal/common/errors"
	"workforce-intelligence/internal/common/logger"
	"workforce-intelligence/internal/models"
	"workforce-intelligence/internal/reliability"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var analysisColumns = []string{
	"id", "job_title", "is_reliable", "overall_score", "rejection_code", "blocker_message",
	"result", "report", "source", "input_fingerprint", "created_at",
}

func createTestRepository(t *testing.T) (*AnalysisRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAnalysisRepository(db, logger.NewTestLogger(t)), mock
}

func createTestRecord() *models.AnalysisRecord {
	result := reliability.AnalysisResult{
		JobTitle:   "Data Engineer",
		IsReliable: true,
		ReliabilityScore: reliability.ReliabilityScore{
			OverallScore: 91,
			IsReliable:   true,
		},
		WorkforceData: &reliability.VerifiedWorkforceRecord{TotalAvailable: 12000},
	}
	return models.NewAnalysisRecord("analysis-001", result, "# REPORT", models.SourceAPI, "fp-001",
		time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC))
}

func resultJSON(t *testing.T, record *models.AnalysisRecord) []byte {
	raw, err := json.Marshal(record.Result)
	require.NoError(t, err)
	return raw
}

// ==========================
// Save
// ==========================

func TestAnalysisRepository_Save_Success(t *testing.T) {
	repo, mock := createTestRepository(t)
	record := createTestRecord()

	mock.ExpectExec(`INSERT INTO workforce_analyses`).
		WithArgs(
			"analysis-001",
			"Data Engineer",
			true,
			91,
			sqlmock.AnyArg(), // rejection_code
			sqlmock.AnyArg(), // blocker_message
			sqlmock.AnyArg(), // result JSON
			sqlmock.AnyArg(), // report
			"api",
			"fp-001",
			sqlmock.AnyArg(), // created_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("analysis_recorded", "workforce_analysis", "analysis-001", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Save(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepository_Save_InsertError(t *testing.T) {
	repo, mock := createTestRepository(t)

	mock.ExpectExec(`INSERT INTO workforce_analyses`).
		WillReturnError(stderrors.New("connection reset"))

	err := repo.Save(context.Background(), createTestRecord())

	require.Error(t, err)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDatabaseInsertFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepository_Save_AuditLogFailureIsIgnored(t *testing.T) {
	repo, mock := createTestRepository(t)

	mock.ExpectExec(`INSERT INTO workforce_analyses`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnError(stderrors.New("relation \"audit_log\" does not exist"))

	assert.NoError(t, repo.Save(context.Background(), createTestRecord()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Get / ListRecent
// ==========================

func TestAnalysisRepository_Get(t *testing.T) {
	repo, mock := createTestRepository(t)
	record := createTestRecord()

	mock.ExpectQuery(`SELECT (.+) FROM workforce_analyses WHERE id = \$1`).
		WithArgs("analysis-001").
		WillReturnRows(sqlmock.NewRows(analysisColumns).AddRow(
			"analysis-001", "Data Engineer", true, 91, nil, nil,
			resultJSON(t, record), "# REPORT", "api", "fp-001", record.CreatedAt,
		))

	got, err := repo.Get(context.Background(), "analysis-001")

	require.NoError(t, err)
	assert.Equal(t, "Data Engineer", got.JobTitle)
	assert.True(t, got.IsReliable)
	assert.Equal(t, 91, got.OverallScore)
	assert.Empty(t, got.RejectionCode)
	assert.Equal(t, models.SourceAPI, got.Source)
	require.NotNil(t, got.Result.WorkforceData)
	assert.Equal(t, 12000, got.Result.WorkforceData.TotalAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepository_Get_NotFound(t *testing.T) {
	repo, mock := createTestRepository(t)

	mock.ExpectQuery(`SELECT (.+) FROM workforce_analyses WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(analysisColumns))

	_, err := repo.Get(context.Background(), "missing")

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAnalysisNotFound, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepository_ListRecent(t *testing.T) {
	repo, mock := createTestRepository(t)
	record := createTestRecord()

	mock.ExpectQuery(`SELECT (.+) FROM workforce_analyses WHERE job_title ILIKE \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs("%engineer%", 100).
		WillReturnRows(sqlmock.NewRows(analysisColumns).
			AddRow("analysis-002", "Data Engineer", false, 62, "RELIABILITY_REJECTED", "insufficient",
				[]byte(`{"jobTitle":"Data Engineer","isReliable":false}`), nil, "worker", "fp-002", record.CreatedAt).
			AddRow("analysis-001", "Data Engineer", true, 91, nil, nil,
				resultJSON(t, record), "# REPORT", "api", "fp-001", record.CreatedAt))

	records, err := repo.ListRecent(context.Background(), "engineer", 500)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "analysis-002", records[0].ID)
	assert.Equal(t, "RELIABILITY_REJECTED", records[0].RejectionCode)
	assert.Equal(t, models.SourceWorker, records[0].Source)
	assert.Empty(t, records[0].Report)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepository_ListRecent_QueryError(t *testing.T) {
	repo, mock := createTestRepository(t)

	mock.ExpectQuery(`SELECT (.+) FROM workforce_analyses ORDER BY created_at DESC LIMIT \$1`).
		WithArgs(DefaultListLimit).
		WillReturnError(stderrors.New("timeout"))

	_, err := repo.ListRecent(context.Background(), "", 0)

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeQueryExecutionFailed, stdErr.Code)
}

func TestAnalysisRepository_Migrate(t *testing.T) {
	repo, mock := createTestRepository(t)
	for range Schema {
		mock.ExpectExec(`CREATE`).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, repo.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 10, ClampLimit(0))
	assert.Equal(t, 10, ClampLimit(-5))
	assert.Equal(t, 25, ClampLimit(25))
	assert.Equal(t, 100, ClampLimit(1000))
}
