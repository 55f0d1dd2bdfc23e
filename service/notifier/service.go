// Package notifier delivers compiled reports by SES e-mail or SNS topic.
package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"
	"github.com/thirukguru/check42/model"
)

// NewService creates a new notifier service.
func NewService(cfg aws.Config) Service {
	return &service{
		ses: ses.NewFromConfig(cfg),
		sns: sns.NewFromConfig(cfg),
	}
}

// NewServiceWithClient creates a new notifier service with provided clients (for testing).
func NewServiceWithClient(sesClient SESClientAPI, snsClient SNSClientAPI) Service {
	return &service{ses: sesClient, sns: snsClient}
}

func (s *service) Send(ctx context.Context, msg model.Message, sender, recipient string) error {
	if recipient == "" {
		return errors.New("no recipient configured")
	}
	if model.IsSNSTopicARN(recipient) {
		return s.publish(ctx, msg, recipient)
	}
	return s.email(ctx, msg, sender, recipient)
}

func (s *service) publish(ctx context.Context, msg model.Message, topicARN string) error {
	out, err := s.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topicARN),
		Subject:  aws.String(msg.Subject),
		Message:  aws.String(msg.BodyText),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topicARN, err)
	}
	log.Ctx(ctx).Info().Str("topic", topicARN).Str("message_id", aws.ToString(out.MessageId)).Msg("report published")
	return nil
}

func (s *service) email(ctx context.Context, msg model.Message, sender, recipient string) error {
	if sender == "" {
		sender = recipient
	}
	out, err := s.ses.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(sender),
		Destination: &sestypes.Destination{ToAddresses: []string{recipient}},
		Message: &sestypes.Message{
			Subject: content(msg.Subject),
			Body: &sestypes.Body{
				Text: content(msg.BodyText),
				Html: content(msg.BodyHTML),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", recipient, err)
	}
	log.Ctx(ctx).Info().Str("recipient", recipient).Str("message_id", aws.ToString(out.MessageId)).Msg("report sent")
	return nil
}

func content(data string) *sestypes.Content {
	return &sestypes.Content{Charset: aws.String(charset), Data: aws.String(data)}
}
