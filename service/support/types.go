package support

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/support"
)

// SupportClientAPI defines the AWS Support methods used by this service.
type SupportClientAPI interface {
	DescribeSeverityLevels(ctx context.Context, params *support.DescribeSeverityLevelsInput, optFns ...func(*support.Options)) (*support.DescribeSeverityLevelsOutput, error)
}

type service struct {
	client SupportClientAPI
}

// Service probes the account's support plan.
type Service interface {
	HasPremiumSupport(ctx context.Context) (bool, error)
}
