// internal/workers/intelligence/send-report/models.go
package sendreport

import (
	"workforce-intelligence/internal/reliability"
)

type Input struct {
	AnalysisID       string                       `json:"analysisId"`
	JobTitle         string                       `json:"jobTitle"`
	IsReliable       bool                         `json:"isReliable"`
	ReliabilityScore reliability.ReliabilityScore `json:"reliabilityScore"`
	Report           string                       `json:"report"`
	RejectionCode    string                       `json:"rejectionCode"`
	BlockerMessage   string                       `json:"blockerMessage"`
	NotifyEmail      string                       `json:"notifyEmail"`
}

// Channel values reported in Output.
const (
	ChannelEmail = "email"
	ChannelAlert = "alert"
	ChannelNone  = "none"
)

type Output struct {
	Channel   string `json:"channel"`
	MessageID string `json:"messageId,omitempty"`
	Sent      bool   `json:"sent"`
	SentAt    string `json:"sentAt,omitempty"` // ISO 8601
}
