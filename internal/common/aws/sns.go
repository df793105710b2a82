// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"

	"hr-assistant/internal/common/errors"
)

// SNSPublisher is the subset of the SNS client used for audit events.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSClient struct {
	client SNSPublisher
}

func NewSNSClient(ctx context.Context, region string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSClient{client: sns.NewFromConfig(cfg)}, nil
}

func NewSNSClientWithPublisher(p SNSPublisher) *SNSClient {
	return &SNSClient{client: p}
}

func (s *SNSClient) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	return s.client.Publish(ctx, input)
}

// AuditEvent records a mutating tool call against the user store.
type AuditEvent struct {
	EventID   string                 `json:"eventId"`
	Tool      string                 `json:"tool"`
	Arguments map[string]interface{} `json:"arguments"`
	Result    string                 `json:"result"`
	Timestamp time.Time              `json:"timestamp"`
}

// AuditPublisher sends AuditEvents to a single SNS topic.
type AuditPublisher struct {
	client   *SNSClient
	topicARN string
}

func NewAuditPublisher(client *SNSClient, topicARN string) *AuditPublisher {
	return &AuditPublisher{client: client, topicARN: topicARN}
}

// PublishToolEvent returns the SNS message id.
func (p *AuditPublisher) PublishToolEvent(ctx context.Context, tool string, args map[string]interface{}, result string) (string, error) {
	event := AuditEvent{
		EventID:   uuid.NewString(),
		Tool:      tool,
		Arguments: args,
		Result:    result,
		Timestamp: time.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return "", errors.NewInternalError(fmt.Errorf("marshal audit event: %w", err))
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String("hr-tool:" + tool),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"tool": {DataType: aws.String("String"), StringValue: aws.String(tool)},
		},
	})
	if err != nil {
		return "", errors.NewNotificationSendFailedError("sns", err)
	}
	return aws.ToString(out.MessageId), nil
}
