package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/events"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient wraps AWS SNS client for recommendation notifications
type SNSClient struct {
	svc      snsAPI
	topicArn string
}

// NewSNSClient creates a new SNS client instance
func NewSNSClient(ctx context.Context, region, topicArn string) (*SNSClient, error) {
	if topicArn == "" {
		return nil, fmt.Errorf("sns topic arn is empty")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &SNSClient{
		svc:      sns.NewFromConfig(cfg),
		topicArn: topicArn,
	}, nil
}

// SendAlert publishes a message to the configured topic
func (c *SNSClient) SendAlert(ctx context.Context, subject, message string) error {
	result, err := c.svc.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}

	log.Debug().Str("message_id", aws.ToString(result.MessageId)).Msg("sns alert sent")
	return nil
}

// Notify implements events.Notifier. Only catalog completions are sent;
// per-action events are too chatty for email/SMS subscribers.
func (c *SNSClient) Notify(ctx context.Context, e events.Event) error {
	if e.Kind != events.KindCatalogCompleted {
		return nil
	}
	return c.SendAlert(ctx, CompletionSubject(e), CompletionMessage(e))
}

func CompletionSubject(e events.Event) string {
	return fmt.Sprintf("Solar Pump: all %d recommendations applied", e.TotalCount)
}

func CompletionMessage(e events.Event) string {
	return fmt.Sprintf(
		"Recommendation Progress\n\n"+
			"Session: %s\n"+
			"Applied: %d/%d\n"+
			"Estimated monthly savings: %.2f\n"+
			"Estimated ROI: %.1f%%\n"+
			"Time: %s\n",
		e.SessionID,
		e.AppliedCount,
		e.TotalCount,
		e.EstimatedSavings,
		e.EstimatedROI,
		e.At.Format("2006-01-02 15:04:05"),
	)
}
