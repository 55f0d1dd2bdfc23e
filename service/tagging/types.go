package tagging

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/configservice"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
)

// ErrNoSuchConfigRule is returned when the configured AWS Config rule does not exist in the region.
var ErrNoSuchConfigRule = errors.New("config rule not found")

// TaggingClientAPI defines the Resource Groups Tagging API methods used by this service.
type TaggingClientAPI interface {
	GetResources(ctx context.Context, params *resourcegroupstaggingapi.GetResourcesInput, optFns ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.GetResourcesOutput, error)
}

// ConfigClientAPI defines the AWS Config methods used by this service.
type ConfigClientAPI interface {
	GetComplianceDetailsByConfigRule(ctx context.Context, params *configservice.GetComplianceDetailsByConfigRuleInput, optFns ...func(*configservice.Options)) (*configservice.GetComplianceDetailsByConfigRuleOutput, error)
}

// UntaggedResource is a resource whose tag keys do not cover the required set.
type UntaggedResource struct {
	ARN          string
	Service      string
	ResourceType string
	ResourceID   string
	MissingTags  []string
}

type service struct {
	tagClient    TaggingClientAPI
	configClient ConfigClientAPI
}

// Service finds resources missing required tags in one region.
type Service interface {
	GetUntaggedResources(ctx context.Context, requiredTags, resourceTypes []string) ([]UntaggedResource, error)
	GetNonCompliantResources(ctx context.Context, ruleName string) ([]UntaggedResource, error)
}
