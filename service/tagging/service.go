// Package tagging finds resources that are missing required tags.
package tagging

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/configservice"
	cfgtypes "github.com/aws/aws-sdk-go-v2/service/configservice/types"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	"github.com/thirukguru/check42/shared/awserr"
)

// NewService creates a new tagging service for the config's region.
func NewService(cfg aws.Config) Service {
	return &service{
		tagClient:    resourcegroupstaggingapi.NewFromConfig(cfg),
		configClient: configservice.NewFromConfig(cfg),
	}
}

// NewServiceWithClient creates a new tagging service with provided clients (for testing).
func NewServiceWithClient(tagClient TaggingClientAPI, configClient ConfigClientAPI) Service {
	return &service{
		tagClient:    tagClient,
		configClient: configClient,
	}
}

// GetUntaggedResources lists resources whose tag keys, compared case-insensitively,
// are not a superset of requiredTags.
func (s *service) GetUntaggedResources(ctx context.Context, requiredTags, resourceTypes []string) ([]UntaggedResource, error) {
	var untagged []UntaggedResource

	input := &resourcegroupstaggingapi.GetResourcesInput{}
	if len(resourceTypes) > 0 {
		input.ResourceTypeFilters = resourceTypes
	}
	paginator := resourcegroupstaggingapi.NewGetResourcesPaginator(s.tagClient, input)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get tagged resources: %w", err)
		}

		for _, resource := range page.ResourceTagMappingList {
			keys := make(map[string]bool, len(resource.Tags))
			for _, tag := range resource.Tags {
				keys[strings.ToLower(aws.ToString(tag.Key))] = true
			}

			missing := MissingTags(keys, requiredTags)
			if len(missing) == 0 {
				continue
			}
			r := parseARN(aws.ToString(resource.ResourceARN))
			r.MissingTags = missing
			untagged = append(untagged, r)
		}
	}

	return untagged, nil
}

// GetNonCompliantResources lists the NON_COMPLIANT evaluations of an AWS Config rule.
func (s *service) GetNonCompliantResources(ctx context.Context, ruleName string) ([]UntaggedResource, error) {
	var resources []UntaggedResource
	var nextToken *string

	for {
		out, err := s.configClient.GetComplianceDetailsByConfigRule(ctx, &configservice.GetComplianceDetailsByConfigRuleInput{
			ConfigRuleName:  aws.String(ruleName),
			ComplianceTypes: []cfgtypes.ComplianceType{cfgtypes.ComplianceTypeNonCompliant},
			NextToken:       nextToken,
		})
		if err != nil {
			if awserr.HasCode(err, "NoSuchConfigRuleException") {
				return nil, fmt.Errorf("%w: %s", ErrNoSuchConfigRule, ruleName)
			}
			return nil, fmt.Errorf("failed to get compliance details for rule %s: %w", ruleName, err)
		}

		for _, result := range out.EvaluationResults {
			if result.EvaluationResultIdentifier == nil || result.EvaluationResultIdentifier.EvaluationResultQualifier == nil {
				continue
			}
			q := result.EvaluationResultIdentifier.EvaluationResultQualifier
			r := UntaggedResource{
				ResourceType: aws.ToString(q.ResourceType),
				ResourceID:   aws.ToString(q.ResourceId),
			}
			r.Service = serviceFromConfigType(r.ResourceType)
			if note := aws.ToString(result.Annotation); note != "" {
				r.MissingTags = []string{note}
			}
			resources = append(resources, r)
		}

		if aws.ToString(out.NextToken) == "" {
			break
		}
		nextToken = out.NextToken
	}

	return resources, nil
}

// MissingTags returns the required tags absent from keys. keys must be lowercased.
func MissingTags(keys map[string]bool, requiredTags []string) []string {
	var missing []string
	for _, req := range requiredTags {
		if !keys[strings.ToLower(strings.TrimSpace(req))] {
			missing = append(missing, req)
		}
	}
	return missing
}

// ConsoleURL returns the console deep link for an ARN, or "" when there is none.
func ConsoleURL(arn string) string {
	if !strings.HasPrefix(arn, "arn:") {
		return ""
	}
	return "https://console.aws.amazon.com/go/view?arn=" + url.QueryEscape(arn)
}

// parseARN splits arn:partition:service:region:account:resource into its parts.
// The resource part may be "type/id", "type:id" or a bare id.
func parseARN(arn string) UntaggedResource {
	r := UntaggedResource{ARN: arn, ResourceID: arn}
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) < 6 {
		return r
	}
	r.Service = parts[2]
	resource := parts[5]
	if i := strings.IndexAny(resource, "/:"); i >= 0 {
		r.ResourceType = r.Service + ":" + resource[:i]
		r.ResourceID = resource[i+1:]
	} else {
		r.ResourceType = r.Service
		r.ResourceID = resource
	}
	return r
}

// serviceFromConfigType maps "AWS::EC2::Instance" to "ec2".
func serviceFromConfigType(resourceType string) string {
	parts := strings.Split(resourceType, "::")
	if len(parts) >= 2 {
		return strings.ToLower(parts[1])
	}
	return strings.ToLower(resourceType)
}
