// internal/reliability/validator.go
package reliability

import "fmt"

// Validator scores how trustworthy a set of inputs is. It holds no mutable state.
type Validator struct {
	config Config
}

func NewValidator(config Config) (*Validator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Validator{config: config}, nil
}

// Validate never fails: missing or malformed inputs lower the score instead.
func (v *Validator) Validate(document DocumentData, market MarketData, manual ManualData) ReliabilityScore {
	quality := DataQuality{
		DocumentData:  v.scoreDocument(document),
		MarketData:    v.scoreMarket(market),
		WorkforceData: v.scoreWorkforce(document, market),
		ManualData:    v.scoreManual(manual),
	}

	w := v.config.Weights
	overall := roundPercent(
		quality.DocumentData*w.DocumentData +
			quality.MarketData*w.MarketData +
			quality.WorkforceData*w.WorkforceData +
			quality.ManualData*w.ManualData)

	blockers := []string{}
	recommendations := []string{}

	if quality.DocumentData < v.config.DocumentFloor {
		blockers = append(blockers, fmt.Sprintf("document data insufficiently reliable (< %d%%)", v.config.DocumentFloor))
		recommendations = append(recommendations, "upload complete structured report")
	}
	if quality.MarketData < v.config.MarketFloor {
		blockers = append(blockers, "market data missing or unreliable")
		recommendations = append(recommendations, "add current market data")
	}
	if overall < v.config.MinimumReliability {
		blockers = append(blockers, fmt.Sprintf("overall reliability %d%% below required %d%%", overall, v.config.MinimumReliability))
		recommendations = append(recommendations, "combine multiple reliable data sources")
	}

	return ReliabilityScore{
		OverallScore:    overall,
		IsReliable:      overall >= v.config.MinimumReliability,
		DataQuality:     quality,
		Blockers:        blockers,
		Recommendations: recommendations,
	}
}

// MinimumReliability is the pass threshold the validator was built with.
func (v *Validator) MinimumReliability() int {
	return v.config.MinimumReliability
}

func (v *Validator) scoreDocument(document DocumentData) int {
	if document == nil {
		return 0
	}
	p := v.config.Document
	score := 0

	if has(document, "jobTitle") {
		score += p.JobTitle
	}
	if has(document, "salaryData", "marketMedian") {
		score += p.SalaryMedian
	}
	if has(document, "marketDemand", "currentOpenings") {
		score += p.CurrentOpenings
	}
	if hasNonEmptyList(document, "skillsRequired") {
		score += p.Skills
	}
	if has(document, "educationRequirement") {
		score += p.EducationRequirement
	}
	if has(document, "experienceRequirement") {
		score += p.ExperienceRequirement
	}

	return clamp(score, 0, 100)
}

func (v *Validator) scoreMarket(market MarketData) int {
	if market == nil {
		return 0
	}
	p := v.config.Market
	score := 0

	if has(market, "demandIndicators") {
		score += p.DemandIndicators
	}
	if has(market, "salaryBenchmarks") {
		score += p.SalaryBenchmarks
	}
	if openings, ok := numberAt(market, "jobOpenings"); ok && openings > 0 {
		score += p.JobOpenings
	}
	if has(market, "trendAnalysis") {
		score += p.TrendAnalysis
	}
	if has(market, "regionalData") {
		score += p.RegionalData
	}

	return clamp(score, 0, 100)
}

// scoreWorkforce is derived from the other two inputs, not supplied separately.
func (v *Validator) scoreWorkforce(document DocumentData, market MarketData) int {
	p := v.config.Workforce
	score := 0

	if has(document, "workforceMetrics") {
		score += p.WorkforceMetrics
	}
	if has(market, "workforceSize") {
		score += p.WorkforceSize
	}
	if has(document, "demographics") || has(market, "demographics") {
		score += p.Demographics
	}

	return clamp(score, 0, 100)
}

// scoreManual treats missing manual input as neutral rather than zero.
func (v *Validator) scoreManual(manual ManualData) int {
	p := v.config.Manual
	if manual == nil {
		return clamp(p.Baseline, 0, 100)
	}
	score := p.Baseline

	if textLongerThan(manual, v.config.DescriptionMinLength, "description") {
		score += p.Description
	}
	if has(manual, "postingUrl") {
		score += p.PostingURL
	}
	if has(manual, "companyInfo") {
		score += p.CompanyInfo
	}

	return clamp(score, 0, 100)
}
