package notifier

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/thirukguru/check42/model"
)

// charset is used for every part of an SES message.
const charset = "UTF-8"

// SESClientAPI is the interface for the AWS SES client methods used by the service.
type SESClientAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SNSClientAPI is the interface for the AWS SNS client methods used by the service.
type SNSClientAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type service struct {
	ses SESClientAPI
	sns SNSClientAPI
}

// Service delivers a compiled message to the subscriber.
type Service interface {
	Send(ctx context.Context, msg model.Message, sender, recipient string) error
}
