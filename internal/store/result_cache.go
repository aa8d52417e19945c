// internal/store/result_cache.go
package store

import (
	"context"
	"encoding/json"
	"time"

	"workforce-intelligence/internal/common/errors"
	"workforce-intelligence/internal/common/metrics"
	"workforce-intelligence/internal/models"

	"github.com/redis/go-redis/v9"
)

// CachedAnalysis is what the cache keeps per input fingerprint.
type CachedAnalysis struct {
	AnalysisID string                 `json:"analysisId"`
	Record     *models.AnalysisRecord `json:"record"`
}

// ResultCache reuses analyses for identical inputs. The engine is deterministic apart
// from the record timestamp, so a cached answer is as good as a fresh one within TTL.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewResultCache(client *redis.Client, ttl time.Duration, prefix string) *ResultCache {
	return &ResultCache{client: client, ttl: ttl, prefix: prefix}
}

// Key returns the redis key for input.
func (c *ResultCache) Key(input models.AnalysisInput) string {
	return c.prefix + input.Fingerprint()
}

// Get returns (nil, nil) on a miss.
func (c *ResultCache) Get(ctx context.Context, input models.AnalysisInput) (*CachedAnalysis, error) {
	raw, err := c.client.Get(ctx, c.Key(input)).Bytes()
	if err == redis.Nil {
		metrics.AnalysisCacheHits.WithLabelValues("miss").Inc()
		return nil, nil
	}
	if err != nil {
		metrics.AnalysisCacheHits.WithLabelValues("error").Inc()
		return nil, errors.NewCacheUnavailableError(err)
	}

	var cached CachedAnalysis
	if err := json.Unmarshal(raw, &cached); err != nil {
		// A corrupt entry is treated as a miss and overwritten on the next Set.
		metrics.AnalysisCacheHits.WithLabelValues("miss").Inc()
		return nil, nil
	}

	metrics.AnalysisCacheHits.WithLabelValues("hit").Inc()
	return &cached, nil
}

// Set stores record under the fingerprint of input.
func (c *ResultCache) Set(ctx context.Context, input models.AnalysisInput, record *models.AnalysisRecord) error {
	raw, err := json.Marshal(CachedAnalysis{AnalysisID: record.ID, Record: record})
	if err != nil {
		return errors.NewCacheUnavailableError(err)
	}
	if err := c.client.Set(ctx, c.Key(input), raw, c.ttl).Err(); err != nil {
		return errors.NewCacheUnavailableError(err)
	}
	return nil
}
