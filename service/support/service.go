// Package support detects whether the account has a Business or Enterprise support plan.
package support

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/support"
	"github.com/thirukguru/check42/shared/awserr"
)

// The Support API is only served from us-east-1.
const supportRegion = "us-east-1"

// NewService creates a new support service.
func NewService(cfg aws.Config) Service {
	return &service{
		client: support.NewFromConfig(cfg, func(o *support.Options) { o.Region = supportRegion }),
	}
}

// NewServiceWithClient creates a new support service with a provided client (for testing).
func NewServiceWithClient(client SupportClientAPI) Service {
	return &service{client: client}
}

// HasPremiumSupport reports false when the Support API answers SubscriptionRequiredException.
func (s *service) HasPremiumSupport(ctx context.Context) (bool, error) {
	_, err := s.client.DescribeSeverityLevels(ctx, &support.DescribeSeverityLevelsInput{})
	if err != nil {
		if awserr.HasCode(err, "SubscriptionRequiredException") {
			return false, nil
		}
		return false, fmt.Errorf("failed to describe severity levels: %w", err)
	}
	return true, nil
}
