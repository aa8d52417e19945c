// internal/reliability/models.go
package reliability

// Inputs are decoded JSON objects. A nil map means the input was not supplied.
type (
	DocumentData map[string]interface{}
	MarketData   map[string]interface{}
	ManualData   map[string]interface{}
)

type DataQuality struct {
	DocumentData  int `json:"documentData"`
	MarketData    int `json:"marketData"`
	WorkforceData int `json:"workforceData"`
	ManualData    int `json:"manualData"`
}

type ReliabilityScore struct {
	OverallScore    int         `json:"overallScore"`
	IsReliable      bool        `json:"isReliable"`
	DataQuality     DataQuality `json:"dataQuality"`
	Blockers        []string    `json:"blockers"`
	Recommendations []string    `json:"recommendations"`
}

// Reliability tags how a workforce figure was obtained.
type Reliability string

const (
	Verified    Reliability = "verified"
	Estimated   Reliability = "estimated"
	Unavailable Reliability = "unavailable"
)

type Segment struct {
	Percentage  float64     `json:"percentage"`
	Count       int         `json:"count"`
	Reliability Reliability `json:"reliability"`
}

type Share struct {
	Percentage  float64     `json:"percentage"`
	Reliability Reliability `json:"reliability"`
}

type ExperienceDistribution struct {
	Junior Share `json:"junior"`
	Medior Share `json:"medior"`
	Senior Share `json:"senior"`
}

type AgeDistribution struct {
	Under30   Share `json:"under30"`
	Age30To45 Share `json:"30to45"`
	Over45    Share `json:"over45"`
}

type RecordMetadata struct {
	DataSource  string `json:"dataSource"`
	LastUpdated string `json:"lastUpdated"`
	SampleSize  int    `json:"sampleSize"`
	Methodology string `json:"methodology"`
}

// VerifiedWorkforceRecord is only built for inputs that passed the reliability gate.
type VerifiedWorkforceRecord struct {
	TotalAvailable         int                    `json:"totalAvailable"`
	ActiveJobSeekers       Segment                `json:"activeJobSeekers"`
	PassiveJobSeekers      Segment                `json:"passiveJobSeekers"`
	NotJobSeeking          Segment                `json:"notJobSeeking"`
	ExperienceDistribution ExperienceDistribution `json:"experienceDistribution"`
	AgeDistribution        AgeDistribution        `json:"ageDistribution"`
	Metadata               RecordMetadata         `json:"metadata"`
}

// RejectionCode distinguishes the two ways an analysis can be refused.
type RejectionCode string

const (
	RejectionNone                     RejectionCode = ""
	RejectionReliability              RejectionCode = "RELIABILITY_REJECTED"
	RejectionRecordConstructionFailed RejectionCode = "RECORD_CONSTRUCTION_FAILED"
)

type AnalysisResult struct {
	JobTitle         string                   `json:"jobTitle"`
	IsReliable       bool                     `json:"isReliable"`
	ReliabilityScore ReliabilityScore         `json:"reliabilityScore"`
	WorkforceData    *VerifiedWorkforceRecord `json:"workforceData,omitempty"`
	BlockerMessage   string                   `json:"blockerMessage,omitempty"`
	RejectionCode    RejectionCode            `json:"rejectionCode,omitempty"`
}

type SegmentAnalysis struct {
	Active        Segment  `json:"active"`
	Passive       Segment  `json:"passive"`
	NotSeeking    Segment  `json:"notSeeking"`
	TotalVerified int      `json:"totalVerified"`
	Warnings      []string `json:"warnings"`
}

type DemographicAnalysis struct {
	Experience       ExperienceDistribution `json:"experience"`
	Age              AgeDistribution        `json:"age"`
	ReliabilityScore int                    `json:"reliabilityScore"`
	DataGaps         []string               `json:"dataGaps"`
}
