package metrics

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/thirukguru/check42/model"
)

// Namespace is the CloudWatch namespace for run metrics.
const Namespace = "Check42"

// maxDatumsPerCall bounds a single PutMetricData request.
const maxDatumsPerCall = 1000

// CloudWatchClientAPI is the interface for the AWS CloudWatch client methods used by the service.
type CloudWatchClientAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

type service struct {
	client CloudWatchClientAPI
}

// Service publishes run metrics.
type Service interface {
	Publish(ctx context.Context, outcomes []model.Outcome) error
}
