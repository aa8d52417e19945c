// internal/reliability/engine_test.go
package reliability

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.FixedZone("CET", 3600))

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig(), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return e
}

func documentWithMetrics(total, active interface{}) DocumentData {
	doc := fullDocument()
	doc["workforceMetrics"] = map[string]interface{}{
		"totalInMarket":    total,
		"activePercentage": active,
	}
	return doc
}

func marketWithWorkforce() MarketData {
	market := fullMarket()
	market["workforceSize"] = 15000.0
	market["demographics"] = map[string]interface{}{"over45": 22.0}
	return market
}

func assertAllUnavailable(t *testing.T, record *VerifiedWorkforceRecord, skipActive bool) {
	t.Helper()
	segments := []Segment{record.PassiveJobSeekers, record.NotJobSeeking}
	if !skipActive {
		segments = append(segments, record.ActiveJobSeekers)
	}
	for _, s := range segments {
		assert.Equal(t, Segment{Reliability: Unavailable}, s)
	}
	for _, s := range append(experienceShares(record.ExperienceDistribution), ageShares(record.AgeDistribution)...) {
		assert.Equal(t, Share{Reliability: Unavailable}, s.share, s.key)
	}
}

// ==========================
// Analyze Tests
// ==========================

func TestEngine_Analyze_ReliabilityRejected(t *testing.T) {
	result := newTestEngine(t).Analyze("Data Engineer", nil, nil, nil)

	assert.False(t, result.IsReliable)
	assert.Nil(t, result.WorkforceData)
	assert.Equal(t, RejectionReliability, result.RejectionCode)
	assert.Equal(t, 5, result.ReliabilityScore.OverallScore)
	assert.Equal(t,
		"insufficient data reliability (5% < 85%). Missing: document data insufficiently reliable (< 70%), "+
			"market data missing or unreliable, overall reliability 5% below required 85%",
		result.BlockerMessage)
}

func TestEngine_Analyze_Reliable(t *testing.T) {
	result := newTestEngine(t).Analyze("Data Engineer", documentWithMetrics(12000.0, 25.0), marketWithWorkforce(), nil)

	require.True(t, result.IsReliable)
	require.NotNil(t, result.WorkforceData)
	assert.Equal(t, 95, result.ReliabilityScore.OverallScore)
	assert.Equal(t, RejectionNone, result.RejectionCode)
	assert.Empty(t, result.BlockerMessage)
	assert.Equal(t, "Data Engineer", result.JobTitle)

	record := result.WorkforceData
	assert.Equal(t, 12000, record.TotalAvailable)
	assert.Equal(t, Segment{Percentage: 25, Count: 3000, Reliability: Verified}, record.ActiveJobSeekers)
	assertAllUnavailable(t, record, true)
	assert.Equal(t, RecordMetadata{
		DataSource:  SourceStructuredReport,
		LastUpdated: "2026-03-14T08:30:00Z",
		SampleSize:  12000,
		Methodology: "verified data only — no estimates",
	}, record.Metadata)
}

// Manual input lifts the first check to 85, but the record re-check ignores it and lands on 80.
func TestEngine_Analyze_RecordConstructionFailed(t *testing.T) {
	market := seventyMarket()
	market["jobOpenings"] = 150.0

	result := newTestEngine(t).Analyze("Data Engineer", ninetyDocument(), market, fullManual())

	assert.False(t, result.IsReliable)
	assert.Nil(t, result.WorkforceData)
	assert.Equal(t, RejectionRecordConstructionFailed, result.RejectionCode)
	assert.Equal(t, "could not produce a reliable workforce record", result.BlockerMessage)
	assert.Equal(t, 85, result.ReliabilityScore.OverallScore)
	assert.True(t, result.ReliabilityScore.IsReliable)
}

func TestEngine_Analyze_ReliableButEmpty(t *testing.T) {
	result := newTestEngine(t).Analyze("Data Engineer", fullDocument(), marketWithWorkforce(), nil)

	require.True(t, result.IsReliable)
	require.NotNil(t, result.WorkforceData)
	assert.Equal(t, 87, result.ReliabilityScore.OverallScore)
	assert.Equal(t, 0, result.WorkforceData.TotalAvailable)
	assert.Equal(t, 0, result.WorkforceData.Metadata.SampleSize)
	assertAllUnavailable(t, result.WorkforceData, false)
}

// ==========================
// CreateRecord Tests
// ==========================

func TestEngine_CreateRecord(t *testing.T) {
	lowDocument := func() DocumentData {
		doc := documentWithMetrics(5000.0, 30.0)
		delete(doc, "skillsRequired")
		delete(doc, "experienceRequirement")
		return doc
	}

	tests := []struct {
		name           string
		document       DocumentData
		market         MarketData
		expectNil      bool
		expectedTotal  int
		expectedActive Segment
	}{
		{
			name:      "not reliable without manual input",
			document:  ninetyDocument(),
			market:    seventyMarket(),
			expectNil: true,
		},
		{
			name:           "document below the extraction floor contributes no figures",
			document:       lowDocument(),
			market:         marketWithWorkforce(),
			expectedTotal:  0,
			expectedActive: Segment{Reliability: Unavailable},
		},
		{
			name:           "active percentage above 100 is ignored",
			document:       documentWithMetrics(8000.0, 120.0),
			market:         marketWithWorkforce(),
			expectedTotal:  8000,
			expectedActive: Segment{Reliability: Unavailable},
		},
		{
			name:           "figures given as strings",
			document:       documentWithMetrics("4,000", "12.5"),
			market:         marketWithWorkforce(),
			expectedTotal:  4000,
			expectedActive: Segment{Percentage: 12.5, Count: 500, Reliability: Verified},
		},
		{
			name:           "count rounds half up",
			document:       documentWithMetrics(333.0, 12.5),
			market:         marketWithWorkforce(),
			expectedTotal:  333,
			expectedActive: Segment{Percentage: 12.5, Count: 42, Reliability: Verified},
		},
		{
			name:           "total above the cap is treated as absent",
			document:       documentWithMetrics(1e20, 50.0),
			market:         marketWithWorkforce(),
			expectedTotal:  0,
			expectedActive: Segment{Percentage: 50, Count: 0, Reliability: Verified},
		},
		{
			name:           "huge total given as a string",
			document:       documentWithMetrics("1e19", 50.0),
			market:         marketWithWorkforce(),
			expectedTotal:  0,
			expectedActive: Segment{Percentage: 50, Count: 0, Reliability: Verified},
		},
		{
			name:           "very large total",
			document:       documentWithMetrics(1e300, nil),
			market:         marketWithWorkforce(),
			expectedTotal:  0,
			expectedActive: Segment{Reliability: Unavailable},
		},
		{
			name:           "total at the cap",
			document:       documentWithMetrics(float64(MaxTotalInMarket), 50.0),
			market:         marketWithWorkforce(),
			expectedTotal:  MaxTotalInMarket,
			expectedActive: Segment{Percentage: 50, Count: 1073741824, Reliability: Verified},
		},
		{
			name:           "percentage without a total",
			document:       documentWithMetrics(nil, 40.0),
			market:         marketWithWorkforce(),
			expectedTotal:  0,
			expectedActive: Segment{Percentage: 40, Count: 0, Reliability: Verified},
		},
	}

	e := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := e.CreateRecord("Data Engineer", tt.document, tt.market)
			if tt.expectNil {
				assert.Nil(t, record)
				return
			}
			require.NotNil(t, record)
			assert.Equal(t, tt.expectedTotal, record.TotalAvailable)
			assert.Equal(t, tt.expectedActive, record.ActiveJobSeekers)
			assert.Equal(t, tt.expectedTotal, record.Metadata.SampleSize)
			assertAllUnavailable(t, record, true)

			if record.ActiveJobSeekers.Reliability == Verified {
				expected := int(math.Round(float64(record.TotalAvailable) * record.ActiveJobSeekers.Percentage / 100))
				assert.Equal(t, expected, record.ActiveJobSeekers.Count)
			}
		})
	}
}

func TestEngine_CreateRecord_MarketOnlySource(t *testing.T) {
	config := DefaultConfig()
	config.MinimumReliability = 40

	e, err := NewEngine(config, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	record := e.CreateRecord("Data Engineer", nil, marketWithWorkforce())
	require.NotNil(t, record)
	assert.Equal(t, SourceMarketAnalysis, record.Metadata.DataSource)
	assert.Equal(t, 0, record.TotalAvailable)
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.Weights.DocumentData = 50

	e, err := NewEngine(config)
	assert.Error(t, err)
	assert.Nil(t, e)
}

func TestWithClock_NilKeepsDefault(t *testing.T) {
	e, err := NewEngine(DefaultConfig(), WithClock(nil))
	require.NoError(t, err)

	record := e.CreateRecord("Data Engineer", fullDocument(), marketWithWorkforce())
	require.NotNil(t, record)

	parsed, err := time.Parse(time.RFC3339, record.Metadata.LastUpdated)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), parsed, time.Minute)
}

// ==========================
// Segment and Demographic Tests
// ==========================

func TestAnalyzeSegments(t *testing.T) {
	record := newTestEngine(t).CreateRecord("Data Engineer", documentWithMetrics(12000.0, 25.0), marketWithWorkforce())
	require.NotNil(t, record)

	segments := AnalyzeSegments(record)
	assert.Equal(t, 3000, segments.TotalVerified)
	assert.Equal(t, []string{"passive job seekers data not verified"}, segments.Warnings)

	record.PassiveJobSeekers = Segment{Percentage: 40, Count: 4800, Reliability: Verified}
	segments = AnalyzeSegments(record)
	assert.Equal(t, 7800, segments.TotalVerified)
	assert.Empty(t, segments.Warnings)

	empty := AnalyzeSegments(nil)
	assert.Zero(t, empty.TotalVerified)
	assert.NotEmpty(t, empty.Warnings)
}

func TestAnalyzeDemographics(t *testing.T) {
	record := newTestEngine(t).CreateRecord("Data Engineer", fullDocument(), marketWithWorkforce())
	require.NotNil(t, record)

	demographics := AnalyzeDemographics(record)
	assert.Equal(t, 0, demographics.ReliabilityScore)
	assert.Equal(t, []string{
		"junior experience data not verified",
		"medior experience data not verified",
		"senior experience data not verified",
		"under30 age data not verified",
		"30to45 age data not verified",
		"over45 age data not verified",
	}, demographics.DataGaps)

	record.ExperienceDistribution.Senior = Share{Percentage: 30, Reliability: Verified}
	assert.Equal(t, 17, AnalyzeDemographics(record).ReliabilityScore)

	record.AgeDistribution.Under30 = Share{Percentage: 25, Reliability: Verified}
	demographics = AnalyzeDemographics(record)
	assert.Equal(t, 33, demographics.ReliabilityScore)
	assert.Len(t, demographics.DataGaps, 4)
}
