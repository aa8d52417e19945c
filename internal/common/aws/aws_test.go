// internal/common/aws/aws_test.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("ses-123")}, nil
}

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("sns-456")}, nil
}

func TestReportMailer_SendReport(t *testing.T) {
	client := &fakeSES{}
	mailer := NewReportMailer(client, "reports@example.com", "Workforce report")

	id, err := mailer.SendReport(context.Background(), "recruiter@example.com", "Data Engineer", "report body")
	require.NoError(t, err)
	assert.Equal(t, "ses-123", id)

	require.NotNil(t, client.input)
	assert.Equal(t, "reports@example.com", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"recruiter@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Workforce report: Data Engineer", aws.ToString(client.input.Message.Subject.Data))
	assert.Equal(t, "report body", aws.ToString(client.input.Message.Body.Text.Data))
}

func TestReportMailer_Errors(t *testing.T) {
	mailer := NewReportMailer(&fakeSES{err: fmt.Errorf("throttled")}, "from@example.com", "x")

	_, err := mailer.SendReport(context.Background(), "", "Nurse", "body")
	assert.ErrorContains(t, err, "recipient is required")

	_, err = mailer.SendReport(context.Background(), "to@example.com", "Nurse", "body")
	assert.ErrorContains(t, err, "throttled")
}

func TestAlertPublisher_PublishRejection(t *testing.T) {
	client := &fakeSNS{}
	publisher := NewAlertPublisher(client, "arn:aws:sns:eu-west-1:123:alerts")

	id, err := publisher.PublishRejection(context.Background(), RejectionAlert{
		AnalysisID:     "a-1",
		JobTitle:       "Nurse",
		OverallScore:   45,
		RejectionCode:  "RELIABILITY_REJECTED",
		BlockerMessage: "insufficient data reliability (45% < 85%). Missing: market data missing or unreliable",
	})
	require.NoError(t, err)
	assert.Equal(t, "sns-456", id)

	assert.Equal(t, "arn:aws:sns:eu-west-1:123:alerts", aws.ToString(client.input.TopicArn))
	assert.Equal(t, "RELIABILITY_REJECTED", aws.ToString(client.input.MessageAttributes["rejectionCode"].StringValue))

	var decoded RejectionAlert
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.input.Message)), &decoded))
	assert.Equal(t, 45, decoded.OverallScore)
	assert.Equal(t, "a-1", decoded.AnalysisID)
}
