// internal/reliability/engine.go
package reliability

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MaxTotalInMarket caps totalInMarket. Larger figures are treated as absent.
const MaxTotalInMarket = math.MaxInt32

const (
	SourceStructuredReport = "structured report"
	SourceMarketAnalysis   = "market analysis"
	Methodology            = "verified data only — no estimates"

	recordConstructionFailedMessage = "could not produce a reliable workforce record"
)

// Engine gates workforce-record construction behind the validator's verdict.
type Engine struct {
	validator *Validator
	config    Config
	clock     func() time.Time
}

// Option customizes engine construction.
type Option func(*Engine)

// WithClock lets tests pin metadata.lastUpdated.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

func NewEngine(config Config, opts ...Option) (*Engine, error) {
	validator, err := NewValidator(config)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		validator: validator,
		config:    config,
		clock:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Validator() *Validator {
	return e.validator
}

// Analyze validates the inputs and, only when they pass, builds a verified record.
// Rejections are returned as data with IsReliable false.
func (e *Engine) Analyze(jobTitle string, document DocumentData, market MarketData, manual ManualData) AnalysisResult {
	score := e.validator.Validate(document, market, manual)

	if !score.IsReliable {
		return AnalysisResult{
			JobTitle:         jobTitle,
			IsReliable:       false,
			ReliabilityScore: score,
			RejectionCode:    RejectionReliability,
			BlockerMessage: fmt.Sprintf("insufficient data reliability (%d%% < %d%%). Missing: %s",
				score.OverallScore, e.config.MinimumReliability, strings.Join(score.Blockers, ", ")),
		}
	}

	record := e.CreateRecord(jobTitle, document, market)
	if record == nil {
		return AnalysisResult{
			JobTitle:         jobTitle,
			IsReliable:       false,
			ReliabilityScore: score,
			RejectionCode:    RejectionRecordConstructionFailed,
			BlockerMessage:   recordConstructionFailedMessage,
		}
	}

	return AnalysisResult{
		JobTitle:         jobTitle,
		IsReliable:       true,
		ReliabilityScore: score,
		WorkforceData:    record,
	}
}

// CreateRecord re-checks reliability from the document and market inputs alone and
// returns nil when they do not pass. Figures are only taken from a document whose own
// score reaches the extraction floor; everything else stays unavailable.
func (e *Engine) CreateRecord(jobTitle string, document DocumentData, market MarketData) *VerifiedWorkforceRecord {
	score := e.validator.Validate(document, market, nil)
	if !score.IsReliable {
		return nil
	}

	record := &VerifiedWorkforceRecord{
		ActiveJobSeekers:  unavailableSegment(),
		PassiveJobSeekers: unavailableSegment(),
		NotJobSeeking:     unavailableSegment(),
		ExperienceDistribution: ExperienceDistribution{
			Junior: unavailableShare(),
			Medior: unavailableShare(),
			Senior: unavailableShare(),
		},
		AgeDistribution: AgeDistribution{
			Under30:   unavailableShare(),
			Age30To45: unavailableShare(),
			Over45:    unavailableShare(),
		},
	}

	if has(document, "workforceMetrics") && score.DataQuality.DocumentData >= e.config.ExtractionFloor {
		if total, ok := numberAt(document, "workforceMetrics", "totalInMarket"); ok && total > 0 && total <= MaxTotalInMarket {
			record.TotalAvailable = int(math.Round(total))
		}
		if pct, ok := numberAt(document, "workforceMetrics", "activePercentage"); ok && pct > 0 && pct <= 100 {
			record.ActiveJobSeekers = Segment{
				Percentage:  pct,
				Count:       segmentCount(record.TotalAvailable, pct),
				Reliability: Verified,
			}
		}
	}

	source := SourceMarketAnalysis
	if document != nil {
		source = SourceStructuredReport
	}
	record.Metadata = RecordMetadata{
		DataSource:  source,
		LastUpdated: e.clock().UTC().Format(time.RFC3339),
		SampleSize:  record.TotalAvailable,
		Methodology: Methodology,
	}

	return record
}

func segmentCount(total int, percentage float64) int {
	return int(math.Round(float64(total) * percentage / 100))
}

func unavailableSegment() Segment {
	return Segment{Reliability: Unavailable}
}

func unavailableShare() Share {
	return Share{Reliability: Unavailable}
}
