package notify

import (
	"context"
	"fmt"

	"docugen-workers/internal/common/aws"
)

// SNSPublisher publishes events to an SNS topic.
type SNSPublisher struct {
	client   *aws.SNSClient
	topicARN string
}

func NewSNSPublisher(client *aws.SNSClient, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN}
}

func (p *SNSPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := ev.Marshal()
	if err != nil {
		return fmt.Errorf("%w: encode event: %v", ErrNotificationFailed, err)
	}
	_, err = p.client.Publish(ctx, p.topicARN, ev.Type, string(body), map[string]string{
		"eventType":  ev.Type,
		"templateId": ev.TemplateID,
	})
	if err != nil {
		return fmt.Errorf("%w: sns: %v", ErrNotificationFailed, err)
	}
	return nil
}

func (p *SNSPublisher) Close() error { return nil }
