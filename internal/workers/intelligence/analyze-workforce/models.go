// internal/workers/intelligence/analyze-workforce/models.go
package analyzeworkforce

import (
	"workforce-intelligence/internal/models"
	"workforce-intelligence/internal/reliability"
)

// Input mirrors the intake webhook body, so a process can start from either entry point.
type Input struct {
	models.IntakePayload
}

type Output struct {
	AnalysisID       string                               `json:"analysisId"`
	JobTitle         string                               `json:"jobTitle"`
	IsReliable       bool                                 `json:"isReliable"`
	ReliabilityScore reliability.ReliabilityScore         `json:"reliabilityScore"`
	WorkforceData    *reliability.VerifiedWorkforceRecord `json:"workforceData,omitempty"`
	BlockerMessage   string                               `json:"blockerMessage,omitempty"`
	RejectionCode    string                               `json:"rejectionCode,omitempty"`
	Report           string                               `json:"report,omitempty"`
	InputFingerprint string                               `json:"inputFingerprint"`
}
