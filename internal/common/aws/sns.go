// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSService is the subset of the SNS client used for alerts.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func NewSNSClient(cfg aws.Config) *sns.Client {
	return sns.NewFromConfig(cfg)
}

// RejectionAlert is published when an analysis is refused.
type RejectionAlert struct {
	AnalysisID     string `json:"analysisId,omitempty"`
	JobTitle       string `json:"jobTitle"`
	OverallScore   int    `json:"overallScore"`
	RejectionCode  string `json:"rejectionCode"`
	BlockerMessage string `json:"blockerMessage"`
}

// AlertPublisher posts rejection alerts to a single topic.
type AlertPublisher struct {
	client   SNSService
	topicARN string
}

func NewAlertPublisher(client SNSService, topicARN string) *AlertPublisher {
	return &AlertPublisher{client: client, topicARN: topicARN}
}

// PublishRejection returns the SNS message id.
func (p *AlertPublisher) PublishRejection(ctx context.Context, alert RejectionAlert) (string, error) {
	body, err := json.Marshal(alert)
	if err != nil {
		return "", fmt.Errorf("marshal alert: %w", err)
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String("Workforce analysis rejected"),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"rejectionCode": {
				DataType:    aws.String("String"),
				StringValue: aws.String(alert.RejectionCode),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("sns publish: %w", err)
	}

	return aws.ToString(out.MessageId), nil
}
