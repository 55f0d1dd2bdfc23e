// Package regions expands per-check and default region lists.
package regions

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/thirukguru/check42/model"
)

// NewService creates a region resolver backed by EC2 DescribeRegions.
func NewService(cfg aws.Config) Service {
	return &service{client: ec2.NewFromConfig(cfg)}
}

// NewServiceWithClient creates a region resolver with a provided client (for testing).
func NewServiceWithClient(client EC2ClientAPI) Service {
	return &service{client: client}
}

// Resolve prefers the check's regions, then the account defaults. ["*"] fans out
// to every enabled region.
func (s *service) Resolve(ctx context.Context, cfg model.CheckConfig, defaults model.Defaults) ([]string, error) {
	requested := cfg.Regions
	if len(requested) == 0 {
		requested = defaults.Regions
	}
	requested = Dedupe(requested)
	if len(requested) == 1 && requested[0] == Wildcard {
		return s.Enabled(ctx)
	}
	if slices.Contains(requested, Wildcard) {
		return nil, fmt.Errorf("%w: %v", ErrMixedWildcard, requested)
	}
	return requested, nil
}

// Enabled returns the account's enabled regions in discovery order. The list is
// fetched once per service.
func (s *service) Enabled(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled != nil {
		return slices.Clone(s.enabled), nil
	}

	out, err := s.client.DescribeRegions(ctx, &ec2.DescribeRegionsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to discover regions: %w", err)
	}

	discovered := make([]string, 0, len(out.Regions))
	for _, r := range out.Regions {
		discovered = append(discovered, aws.ToString(r.RegionName))
	}
	discovered = Dedupe(discovered)
	if len(discovered) == 0 {
		return nil, errors.New("no enabled regions discovered")
	}
	s.enabled = discovered
	return slices.Clone(discovered), nil
}

// Dedupe trims and drops blanks and repeats, keeping first-seen order.
func Dedupe(input []string) []string {
	out := make([]string, 0, len(input))
	for _, r := range input {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}
