// Package sns publishes messaging events to an SNS topic.
package sns

import (
	"context"
	"fmt"

	"github.com/abgdnv/cloudshop/pkg/messaging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// API is the part of the SNS client the publisher needs.
type API interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Publisher sends one SNS message per event. Event attributes become message attributes
// so topic subscriptions can filter on them.
type Publisher struct {
	client   API
	topicARN string
	subject  string
}

func NewPublisher(client API, topicARN, subject string) *Publisher {
	return &Publisher{client: client, topicARN: topicARN, subject: subject}
}

func (p *Publisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}
	input := &sns.PublishInput{
		TopicArn:          aws.String(p.topicARN),
		Message:           aws.String(string(data)),
		MessageAttributes: make(map[string]types.MessageAttributeValue),
	}
	if p.subject != "" {
		input.Subject = aws.String(p.subject)
	}
	for name, attr := range event.Attributes() {
		input.MessageAttributes[name] = types.MessageAttributeValue{
			DataType:    aws.String(attr.DataType),
			StringValue: aws.String(attr.Value),
		}
	}
	if _, err := p.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.Subject(), p.topicARN, err)
	}
	return nil
}
