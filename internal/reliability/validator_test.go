// internal/reliability/validator_test.go
package reliability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator(DefaultConfig())
	require.NoError(t, err)
	return v
}

func fullDocument() DocumentData {
	return DocumentData{
		"jobTitle":              "Data Engineer",
		"salaryData":            map[string]interface{}{"marketMedian": 62000.0},
		"marketDemand":          map[string]interface{}{"currentOpenings": 340.0},
		"skillsRequired":        []interface{}{"Python", "SQL", "Spark"},
		"educationRequirement":  "HBO",
		"experienceRequirement": "3+ years",
	}
}

func fullMarket() MarketData {
	return MarketData{
		"demandIndicators": map[string]interface{}{"trend": "rising"},
		"salaryBenchmarks": map[string]interface{}{"p50": 60000.0},
		"jobOpenings":      420.0,
		"trendAnalysis":    "growing demand in the Randstad",
		"regionalData":     []interface{}{"Utrecht", "Amsterdam"},
	}
}

func fullManual() ManualData {
	return ManualData{
		"description": strings.Repeat("Build and maintain data pipelines. ", 4),
		"postingUrl":  "https://jobs.example.com/42",
		"companyInfo": map[string]interface{}{"name": "Acme"},
	}
}

// market fields worth 70: demand, salary and trend, plus workforce size and demographics.
func seventyMarket() MarketData {
	return MarketData{
		"demandIndicators": "high",
		"salaryBenchmarks": "55k-65k",
		"trendAnalysis":    "stable",
		"workforceSize":    18000.0,
		"demographics":     map[string]interface{}{"under30": 31.0},
	}
}

// document fields worth 90: everything except the experience requirement.
func ninetyDocument() DocumentData {
	doc := fullDocument()
	delete(doc, "experienceRequirement")
	return doc
}

// ==========================
// Core Functionality Tests
// ==========================

func TestValidator_Validate_NoInputs(t *testing.T) {
	score := newTestValidator(t).Validate(nil, nil, nil)

	assert.Equal(t, DataQuality{DocumentData: 0, MarketData: 0, WorkforceData: 0, ManualData: 50}, score.DataQuality)
	assert.Equal(t, 5, score.OverallScore)
	assert.False(t, score.IsReliable)
	assert.Equal(t, []string{
		"document data insufficiently reliable (< 70%)",
		"market data missing or unreliable",
		"overall reliability 5% below required 85%",
	}, score.Blockers)
	assert.Equal(t, []string{
		"upload complete structured report",
		"add current market data",
		"combine multiple reliable data sources",
	}, score.Recommendations)
}

func TestValidator_Validate_FullDocumentAlone(t *testing.T) {
	score := newTestValidator(t).Validate(fullDocument(), nil, nil)

	assert.Equal(t, 100, score.DataQuality.DocumentData)
	assert.Equal(t, 45, score.OverallScore)
	assert.False(t, score.IsReliable)
	assert.Equal(t, []string{
		"market data missing or unreliable",
		"overall reliability 45% below required 85%",
	}, score.Blockers)
}

func TestValidator_Validate_Boundary(t *testing.T) {
	v := newTestValidator(t)

	t.Run("79 is unreliable", func(t *testing.T) {
		score := v.Validate(ninetyDocument(), seventyMarket(), fullManual())

		assert.Equal(t, DataQuality{DocumentData: 90, MarketData: 70, WorkforceData: 60, ManualData: 100}, score.DataQuality)
		assert.Equal(t, 79, score.OverallScore)
		assert.False(t, score.IsReliable)
		assert.Equal(t, []string{"overall reliability 79% below required 85%"}, score.Blockers)
		assert.Equal(t, []string{"combine multiple reliable data sources"}, score.Recommendations)
	})

	t.Run("85 is reliable", func(t *testing.T) {
		market := seventyMarket()
		market["jobOpenings"] = 150.0

		score := v.Validate(ninetyDocument(), market, fullManual())

		assert.Equal(t, 90, score.DataQuality.MarketData)
		assert.Equal(t, 85, score.OverallScore)
		assert.True(t, score.IsReliable)
		assert.Empty(t, score.Blockers)
		assert.Empty(t, score.Recommendations)
		assert.NotNil(t, score.Blockers)
	})
}

func TestValidator_Validate_Presence(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name     string
		document DocumentData
		market   MarketData
		manual   ManualData
		field    func(DataQuality) int
		expected int
	}{
		{
			name:     "empty string and zero are absent",
			document: DocumentData{"jobTitle": "", "salaryData": map[string]interface{}{"marketMedian": 0.0}},
			field:    func(q DataQuality) int { return q.DocumentData },
			expected: 0,
		},
		{
			name:     "wrong typed parent object is absent",
			document: DocumentData{"salaryData": "62000", "marketDemand": []interface{}{1.0}},
			field:    func(q DataQuality) int { return q.DocumentData },
			expected: 0,
		},
		{
			name:     "empty skills list is absent",
			document: DocumentData{"skillsRequired": []interface{}{}},
			field:    func(q DataQuality) int { return q.DocumentData },
			expected: 0,
		},
		{
			name:     "skills must be a list",
			document: DocumentData{"skillsRequired": "Python, SQL"},
			field:    func(q DataQuality) int { return q.DocumentData },
			expected: 0,
		},
		{
			name:     "false flag is absent",
			document: DocumentData{"educationRequirement": false, "experienceRequirement": true},
			field:    func(q DataQuality) int { return q.DocumentData },
			expected: 10,
		},
		{
			name:     "job openings as numeric string",
			market:   MarketData{"jobOpenings": "1,250"},
			field:    func(q DataQuality) int { return q.MarketData },
			expected: 20,
		},
		{
			name:     "zero or negative job openings",
			market:   MarketData{"jobOpenings": -4.0, "regionalData": "NL"},
			field:    func(q DataQuality) int { return q.MarketData },
			expected: 10,
		},
		{
			name:     "unparsable job openings",
			market:   MarketData{"jobOpenings": "many"},
			field:    func(q DataQuality) int { return q.MarketData },
			expected: 0,
		},
		{
			name:     "demographics on the document count",
			document: DocumentData{"demographics": map[string]interface{}{}, "workforceMetrics": map[string]interface{}{}},
			field:    func(q DataQuality) int { return q.WorkforceData },
			expected: 70,
		},
		{
			name:     "workforce from both inputs",
			document: DocumentData{"workforceMetrics": map[string]interface{}{"totalInMarket": 1.0}},
			market:   MarketData{"workforceSize": 900.0, "demographics": "present"},
			field:    func(q DataQuality) int { return q.WorkforceData },
			expected: 100,
		},
		{
			name:     "description of exactly the minimum length does not count",
			manual:   ManualData{"description": strings.Repeat("x", 100)},
			field:    func(q DataQuality) int { return q.ManualData },
			expected: 50,
		},
		{
			name:     "description one rune over the minimum counts",
			manual:   ManualData{"description": strings.Repeat("é", 101)},
			field:    func(q DataQuality) int { return q.ManualData },
			expected: 70,
		},
		{
			name:     "empty manual object still gets the baseline",
			manual:   ManualData{},
			field:    func(q DataQuality) int { return q.ManualData },
			expected: 50,
		},
		{
			name:     "full manual data",
			manual:   fullManual(),
			field:    func(q DataQuality) int { return q.ManualData },
			expected: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := v.Validate(tt.document, tt.market, tt.manual)
			assert.Equal(t, tt.expected, tt.field(score.DataQuality))
		})
	}
}

func TestValidator_Validate_Invariants(t *testing.T) {
	v := newTestValidator(t)
	docKeys := []string{"jobTitle", "salaryData", "marketDemand", "skillsRequired", "educationRequirement", "experienceRequirement", "workforceMetrics"}
	marketKeys := []string{"demandIndicators", "salaryBenchmarks", "jobOpenings", "trendAnalysis", "regionalData", "workforceSize"}

	docSource := fullDocument()
	docSource["workforceMetrics"] = map[string]interface{}{"totalInMarket": 5000.0}
	marketSource := fullMarket()
	marketSource["workforceSize"] = 7000.0

	for mask := 0; mask < 1<<len(docKeys); mask += 3 {
		doc := DocumentData{}
		for i, k := range docKeys {
			if mask&(1<<i) != 0 {
				doc[k] = docSource[k]
			}
		}
		for mmask := 0; mmask < 1<<len(marketKeys); mmask += 5 {
			market := MarketData{}
			for i, k := range marketKeys {
				if mmask&(1<<i) != 0 {
					market[k] = marketSource[k]
				}
			}
			for _, manual := range []ManualData{nil, fullManual()} {
				score := v.Validate(doc, market, manual)
				q := score.DataQuality

				weighted := float64(q.DocumentData)*0.4 + float64(q.MarketData)*0.3 +
					float64(q.WorkforceData)*0.2 + float64(q.ManualData)*0.1

				assert.GreaterOrEqual(t, score.OverallScore, 0)
				assert.LessOrEqual(t, score.OverallScore, 100)
				assert.InDelta(t, weighted, float64(score.OverallScore), 0.500001)
				assert.Equal(t, score.OverallScore >= 85, score.IsReliable)
				assert.Len(t, score.Recommendations, len(score.Blockers))
			}
		}
	}
}

func TestValidator_Validate_Deterministic(t *testing.T) {
	v := newTestValidator(t)
	first := v.Validate(ninetyDocument(), seventyMarket(), fullManual())
	second := v.Validate(ninetyDocument(), seventyMarket(), fullManual())
	assert.Equal(t, first, second)
}

// ==========================
// Configuration Tests
// ==========================

func TestValidator_CustomThreshold(t *testing.T) {
	config := DefaultConfig()
	config.MinimumReliability = 45

	v, err := NewValidator(config)
	require.NoError(t, err)

	score := v.Validate(fullDocument(), nil, nil)
	assert.True(t, score.IsReliable)
	assert.Equal(t, []string{"market data missing or unreliable"}, score.Blockers)
	assert.Equal(t, 45, v.MinimumReliability())
}

func TestNewValidator_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "weights do not sum to 100",
			mutate: func(c *Config) { c.Weights.ManualData = 20 },
			errMsg: "must sum to 100",
		},
		{
			name: "negative weight",
			mutate: func(c *Config) {
				c.Weights.DocumentData = 80
				c.Weights.ManualData = -30
			},
			errMsg: "must not be negative",
		},
		{
			name:   "threshold above 100",
			mutate: func(c *Config) { c.MinimumReliability = 101 },
			errMsg: "minimum_reliability must be within 0-100",
		},
		{
			name:   "negative floor",
			mutate: func(c *Config) { c.ExtractionFloor = -1 },
			errMsg: "extraction_floor must be within 0-100",
		},
		{
			name:   "negative description length",
			mutate: func(c *Config) { c.DescriptionMinLength = -5 },
			errMsg: "description_min_length",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)

			v, err := NewValidator(config)
			require.Error(t, err)
			assert.Nil(t, v)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
