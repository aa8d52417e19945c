// internal/reliability/config.go
package reliability

import "fmt"

// Weights are integer percentages applied to the four sub-scores. They must sum to 100.
type Weights struct {
	DocumentData  int `mapstructure:"document_data" json:"documentData"`
	MarketData    int `mapstructure:"market_data" json:"marketData"`
	WorkforceData int `mapstructure:"workforce_data" json:"workforceData"`
	ManualData    int `mapstructure:"manual_data" json:"manualData"`
}

// DocumentPoints are awarded for each recognised field of a structured report.
type DocumentPoints struct {
	JobTitle              int `mapstructure:"job_title"`
	SalaryMedian          int `mapstructure:"salary_median"`
	CurrentOpenings       int `mapstructure:"current_openings"`
	Skills                int `mapstructure:"skills"`
	EducationRequirement  int `mapstructure:"education_requirement"`
	ExperienceRequirement int `mapstructure:"experience_requirement"`
}

type MarketPoints struct {
	DemandIndicators int `mapstructure:"demand_indicators"`
	SalaryBenchmarks int `mapstructure:"salary_benchmarks"`
	JobOpenings      int `mapstructure:"job_openings"`
	TrendAnalysis    int `mapstructure:"trend_analysis"`
	RegionalData     int `mapstructure:"regional_data"`
}

type WorkforcePoints struct {
	WorkforceMetrics int `mapstructure:"workforce_metrics"`
	WorkforceSize    int `mapstructure:"workforce_size"`
	Demographics     int `mapstructure:"demographics"`
}

type ManualPoints struct {
	Baseline    int `mapstructure:"baseline"`
	Description int `mapstructure:"description"`
	PostingURL  int `mapstructure:"posting_url"`
	CompanyInfo int `mapstructure:"company_info"`
}

// Config carries every constant the validator and engine depend on.
type Config struct {
	MinimumReliability   int `mapstructure:"minimum_reliability"`
	DocumentFloor        int `mapstructure:"document_floor"`
	MarketFloor          int `mapstructure:"market_floor"`
	ExtractionFloor      int `mapstructure:"extraction_floor"`
	DescriptionMinLength int `mapstructure:"description_min_length"`

	Weights   Weights         `mapstructure:"weights"`
	Document  DocumentPoints  `mapstructure:"document"`
	Market    MarketPoints    `mapstructure:"market"`
	Workforce WorkforcePoints `mapstructure:"workforce"`
	Manual    ManualPoints    `mapstructure:"manual"`
}

func DefaultConfig() Config {
	return Config{
		MinimumReliability:   85,
		DocumentFloor:        70,
		MarketFloor:          60,
		ExtractionFloor:      80,
		DescriptionMinLength: 100,
		Weights: Weights{
			DocumentData:  40,
			MarketData:    30,
			WorkforceData: 20,
			ManualData:    10,
		},
		Document: DocumentPoints{
			JobTitle:              20,
			SalaryMedian:          25,
			CurrentOpenings:       20,
			Skills:                15,
			EducationRequirement:  10,
			ExperienceRequirement: 10,
		},
		Market: MarketPoints{
			DemandIndicators: 30,
			SalaryBenchmarks: 25,
			JobOpenings:      20,
			TrendAnalysis:    15,
			RegionalData:     10,
		},
		Workforce: WorkforcePoints{
			WorkforceMetrics: 40,
			WorkforceSize:    30,
			Demographics:     30,
		},
		Manual: ManualPoints{
			Baseline:    50,
			Description: 20,
			PostingURL:  15,
			CompanyInfo: 15,
		},
	}
}

// Validate reports configuration that would break the 0-100 score range.
func (c Config) Validate() error {
	sum := c.Weights.DocumentData + c.Weights.MarketData + c.Weights.WorkforceData + c.Weights.ManualData
	if sum != 100 {
		return fmt.Errorf("reliability weights must sum to 100, got %d", sum)
	}
	for name, w := range map[string]int{
		"document_data":  c.Weights.DocumentData,
		"market_data":    c.Weights.MarketData,
		"workforce_data": c.Weights.WorkforceData,
		"manual_data":    c.Weights.ManualData,
	} {
		if w < 0 {
			return fmt.Errorf("reliability weight %s must not be negative", name)
		}
	}
	for name, v := range map[string]int{
		"minimum_reliability": c.MinimumReliability,
		"document_floor":      c.DocumentFloor,
		"market_floor":        c.MarketFloor,
		"extraction_floor":    c.ExtractionFloor,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("reliability %s must be within 0-100, got %d", name, v)
		}
	}
	if c.DescriptionMinLength < 0 {
		return fmt.Errorf("reliability description_min_length must not be negative")
	}
	return nil
}
