// internal/store/result_cache_test.go
package store

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"workforce-intelligence/internal/common/errors"
	"workforce-intelligence/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestCache(t *testing.T) (*ResultCache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewResultCache(client, time.Hour, "workforce:analysis:"), mr
}

func testInput() models.AnalysisInput {
	return models.AnalysisInput{
		JobTitle:     "Data Engineer",
		DocumentData: map[string]interface{}{"jobTitle": "Data Engineer"},
	}
}

func TestResultCache_SetThenGet(t *testing.T) {
	cache, mr := createTestCache(t)
	ctx := context.Background()
	record := createTestRecord()

	miss, err := cache.Get(ctx, testInput())
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, cache.Set(ctx, testInput(), record))

	key := cache.Key(testInput())
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))

	hit, err := cache.Get(ctx, testInput())
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "analysis-001", hit.AnalysisID)
	require.NotNil(t, hit.Record)
	assert.Equal(t, record.ID, hit.Record.ID)
	assert.Equal(t, 91, hit.Record.OverallScore)
	assert.Equal(t, "# REPORT", hit.Record.Report)
}

func TestResultCache_Expiry(t *testing.T) {
	cache, mr := createTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testInput(), createTestRecord()))
	mr.FastForward(2 * time.Hour)

	hit, err := cache.Get(ctx, testInput())
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestResultCache_CorruptEntryIsMiss(t *testing.T) {
	cache, mr := createTestCache(t)
	require.NoError(t, mr.Set(cache.Key(testInput()), "{not json"))

	hit, err := cache.Get(context.Background(), testInput())
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestResultCache_Key(t *testing.T) {
	cache, _ := createTestCache(t)

	key := cache.Key(testInput())
	assert.Equal(t, "workforce:analysis:"+testInput().Fingerprint(), key)

	other := testInput()
	other.JobTitle = "Nurse"
	assert.NotEqual(t, key, cache.Key(other))
}

func TestResultCache_Unavailable(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewResultCache(client, time.Hour, "workforce:analysis:")

	mock.ExpectGet(cache.Key(testInput())).SetErr(stderrors.New("dial tcp: connection refused"))

	_, err := cache.Get(context.Background(), testInput())

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeCacheUnavailable, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
