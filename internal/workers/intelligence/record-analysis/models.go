// internal/workers/intelligence/record-analysis/models.go
package recordanalysis

import (
	"workforce-intelligence/internal/reliability"
)

// Input is the output of analyze-workforce as it arrives in the process variables.
type Input struct {
	reliability.AnalysisResult
	AnalysisID       string `json:"analysisId"`
	Report           string `json:"report"`
	InputFingerprint string `json:"inputFingerprint"`
}

type Output struct {
	Recorded   bool   `json:"recorded"`
	Indexed    bool   `json:"indexed"`
	RecordedAt string `json:"recordedAt"` // ISO 8601
}
