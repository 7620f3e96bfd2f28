package notify

import (
	"context"
	"fmt"

	"docugen-workers/internal/common/aws"
	"docugen-workers/internal/common/config"
	"docugen-workers/internal/common/logger"
	"docugen-workers/internal/common/validation"
)

// NewPublisher builds the publisher selected by docugen.notifier.
func NewPublisher(ctx context.Context, cfg *config.Config, log logger.Logger) (Publisher, error) {
	switch cfg.DocuGen.Notifier {
	case "", "none":
		return NopPublisher{}, nil
	case "sns":
		client, err := aws.NewSNSClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		return NewSNSPublisher(client, cfg.AWS.SNS.TopicARN), nil
	case "nats":
		return NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject, log)
	default:
		return nil, fmt.Errorf("unknown notifier %q", cfg.DocuGen.Notifier)
	}
}

// NewReviewAlerterFromConfig returns nil when SES is disabled or no review
// address is configured.
func NewReviewAlerterFromConfig(ctx context.Context, cfg *config.Config) (*ReviewAlerter, error) {
	if !cfg.AWS.SES.Enabled || cfg.DocuGen.ReviewEmail == "" {
		return nil, nil
	}
	if !validation.ValidateEmail(cfg.DocuGen.ReviewEmail) {
		return nil, fmt.Errorf("docugen.reviewEmail %q is not a valid address", cfg.DocuGen.ReviewEmail)
	}
	client, err := aws.NewSESClient(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, err
	}
	return NewReviewAlerter(client, cfg.AWS.SES.FromEmail, cfg.DocuGen.ReviewEmail), nil
}
