// internal/models/analysis.go
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"workforce-intelligence/internal/reliability"
)

// AnalysisSource names the entry point that produced an analysis.
type AnalysisSource string

const (
	SourceAPI    AnalysisSource = "api"
	SourceWorker AnalysisSource = "worker"
)

// AnalysisInput is the engine input shared by the intake API and the analyze-workforce job.
type AnalysisInput struct {
	JobTitle     string                 `json:"jobTitle"`
	DocumentData map[string]interface{} `json:"documentData,omitempty"`
	MarketData   map[string]interface{} `json:"marketData,omitempty"`
	ManualData   map[string]interface{} `json:"manualData,omitempty"`
}

// Fingerprint is a SHA-256 over the canonical JSON of the input. encoding/json sorts
// map keys, so equal inputs hash equally regardless of field order on the wire.
func (in AnalysisInput) Fingerprint() string {
	canonical := AnalysisInput{
		JobTitle:     strings.TrimSpace(in.JobTitle),
		DocumentData: in.DocumentData,
		MarketData:   in.MarketData,
		ManualData:   in.ManualData,
	}
	raw, err := json.Marshal(canonical)
	if err != nil {
		raw = []byte(canonical.JobTitle)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// IntakePayload is the body of POST /webhook/intake. Form tools post the manual fields
// flat, so description, postingUrl and companyInfo are accepted at the top level too.
type IntakePayload struct {
	AnalysisInput
	Description string      `json:"description,omitempty"`
	PostingURL  string      `json:"postingUrl,omitempty"`
	CompanyInfo interface{} `json:"companyInfo,omitempty"`
	NotifyEmail string      `json:"notifyEmail,omitempty"`
}

// Input returns the engine input with the flat manual fields folded into manualData.
// Keys already present in manualData win. With nothing to fold, manualData stays nil.
func (p IntakePayload) Input() AnalysisInput {
	in := p.AnalysisInput
	in.JobTitle = strings.TrimSpace(in.JobTitle)

	flat := map[string]interface{}{}
	if p.Description != "" {
		flat["description"] = p.Description
	}
	if p.PostingURL != "" {
		flat["postingUrl"] = p.PostingURL
	}
	if p.CompanyInfo != nil {
		flat["companyInfo"] = p.CompanyInfo
	}
	if len(flat) == 0 {
		return in
	}

	manual := make(map[string]interface{}, len(in.ManualData)+len(flat))
	for k, v := range flat {
		manual[k] = v
	}
	for k, v := range in.ManualData {
		manual[k] = v
	}
	in.ManualData = manual
	return in
}

// AnalysisRecord is one stored analysis, reliable or rejected.
type AnalysisRecord struct {
	ID               string                     `json:"id"`
	JobTitle         string                     `json:"jobTitle"`
	IsReliable       bool                       `json:"isReliable"`
	OverallScore     int                        `json:"overallScore"`
	RejectionCode    string                     `json:"rejectionCode,omitempty"`
	BlockerMessage   string                     `json:"blockerMessage,omitempty"`
	Result           reliability.AnalysisResult `json:"result"`
	Report           string                     `json:"report,omitempty"`
	Source           AnalysisSource             `json:"source"`
	InputFingerprint string                     `json:"inputFingerprint"`
	CreatedAt        time.Time                  `json:"createdAt"`
}

// NewAnalysisRecord flattens the engine result into the stored shape.
func NewAnalysisRecord(id string, result reliability.AnalysisResult, report string, source AnalysisSource, fingerprint string, createdAt time.Time) *AnalysisRecord {
	return &AnalysisRecord{
		ID:               id,
		JobTitle:         result.JobTitle,
		IsReliable:       result.IsReliable,
		OverallScore:     result.ReliabilityScore.OverallScore,
		RejectionCode:    string(result.RejectionCode),
		BlockerMessage:   result.BlockerMessage,
		Result:           result,
		Report:           report,
		Source:           source,
		InputFingerprint: fingerprint,
		CreatedAt:        createdAt.UTC(),
	}
}

// Verdict is "reliable" or the rejection code, as used for metric labels.
func (r *AnalysisRecord) Verdict() string {
	if r.IsReliable {
		return "reliable"
	}
	return r.RejectionCode
}
