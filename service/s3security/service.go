// Package s3security evaluates S3 buckets for public exposure.
package s3security

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/thirukguru/check42/shared/awserr"
	"golang.org/x/sync/errgroup"
)

// NewService creates a new S3 security service.
func NewService(cfg aws.Config) Service {
	return &service{client: s3.NewFromConfig(cfg)}
}

// NewServiceWithClient creates a new S3 service with a provided client (for testing).
func NewServiceWithClient(client S3ClientAPI) Service {
	return &service{client: client}
}

func (s *service) ListBuckets(ctx context.Context) ([]Bucket, error) {
	var buckets []Bucket
	paginator := s3.NewListBucketsPaginator(s.client, &s3.ListBucketsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list buckets: %w", err)
		}
		for _, b := range page.Buckets {
			buckets = append(buckets, Bucket{
				Name:   aws.ToString(b.Name),
				Region: aws.ToString(b.BucketRegion),
			})
		}
	}
	return buckets, nil
}

// GetPublicBuckets returns every bucket with at least one exposure signal, in
// listing order. Buckets are evaluated concurrently, at most BucketLimit at a time.
func (s *service) GetPublicBuckets(ctx context.Context) ([]BucketExposure, error) {
	buckets, err := s.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}

	results := make([][]string, len(buckets))
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(BucketLimit)
	for i, b := range buckets {
		g.Go(func() error {
			reasons, err := s.EvaluateBucket(groupCtx, b)
			if err != nil {
				return err
			}
			results[i] = reasons
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var exposed []BucketExposure
	for i, b := range buckets {
		if len(results[i]) > 0 {
			exposed = append(exposed, BucketExposure{BucketName: b.Name, Region: b.Region, Reasons: results[i]})
		}
	}
	return exposed, nil
}

// EvaluateBucket checks the public access block, the ACL and the bucket policy
// independently and returns the union of reasons.
func (s *service) EvaluateBucket(ctx context.Context, bucket Bucket) ([]string, error) {
	var reasons []string

	pabReasons, err := s.publicAccessBlockReasons(ctx, bucket)
	if err != nil {
		return nil, err
	}
	reasons = append(reasons, pabReasons...)

	aclReasons, err := s.aclReasons(ctx, bucket)
	if err != nil {
		return nil, err
	}
	reasons = append(reasons, aclReasons...)

	policyReasons, err := s.policyReasons(ctx, bucket)
	if err != nil {
		return nil, err
	}
	return append(reasons, policyReasons...), nil
}

func (s *service) publicAccessBlockReasons(ctx context.Context, bucket Bucket) ([]string, error) {
	out, err := s.client.GetPublicAccessBlock(ctx, &s3.GetPublicAccessBlockInput{
		Bucket: aws.String(bucket.Name),
	}, inRegion(bucket.Region))
	if err != nil {
		if awserr.HasCode(err, "NoSuchPublicAccessBlockConfiguration") {
			return []string{ReasonNoPublicAccessBlock}, nil
		}
		return nil, fmt.Errorf("failed to get public access block for %s: %w", bucket.Name, err)
	}

	cfg := out.PublicAccessBlockConfiguration
	if cfg == nil {
		return []string{ReasonNoPublicAccessBlock}, nil
	}

	flags := []struct {
		name  string
		value *bool
	}{
		{"BlockPublicAcls", cfg.BlockPublicAcls},
		{"IgnorePublicAcls", cfg.IgnorePublicAcls},
		{"BlockPublicPolicy", cfg.BlockPublicPolicy},
		{"RestrictPublicBuckets", cfg.RestrictPublicBuckets},
	}
	var reasons []string
	for _, f := range flags {
		if !aws.ToBool(f.value) {
			reasons = append(reasons, fmt.Sprintf("Public access block setting %s is disabled", f.name))
		}
	}
	return reasons, nil
}

func (s *service) aclReasons(ctx context.Context, bucket Bucket) ([]string, error) {
	acl, err := s.client.GetBucketAcl(ctx, &s3.GetBucketAclInput{
		Bucket: aws.String(bucket.Name),
	}, inRegion(bucket.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to get ACL for %s: %w", bucket.Name, err)
	}

	var allUsers, authenticated bool
	for _, grant := range acl.Grants {
		if grant.Grantee == nil {
			continue
		}
		switch aws.ToString(grant.Grantee.URI) {
		case allUsersURI:
			allUsers = true
		case authenticatedUsersURI:
			authenticated = true
		}
	}

	var reasons []string
	if allUsers {
		reasons = append(reasons, ReasonACLAllUsers)
	}
	if authenticated {
		reasons = append(reasons, ReasonACLAuthenticated)
	}
	return reasons, nil
}

func (s *service) policyReasons(ctx context.Context, bucket Bucket) ([]string, error) {
	out, err := s.client.GetBucketPolicy(ctx, &s3.GetBucketPolicyInput{
		Bucket: aws.String(bucket.Name),
	}, inRegion(bucket.Region))
	if err != nil {
		if awserr.HasCode(err, "NoSuchBucketPolicy") {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bucket policy for %s: %w", bucket.Name, err)
	}
	if out.Policy == nil {
		return nil, nil
	}
	return publicStatementReasons(aws.ToString(out.Policy))
}

func publicStatementReasons(policy string) ([]string, error) {
	var doc policyDocument
	if err := json.Unmarshal([]byte(policy), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse bucket policy: %w", err)
	}

	var statements []map[string]any
	switch v := doc.Statement.(type) {
	case map[string]any:
		statements = append(statements, v)
	case []any:
		for _, item := range v {
			if stmt, ok := item.(map[string]any); ok {
				statements = append(statements, stmt)
			}
		}
	}

	var reasons []string
	for i, stmt := range statements {
		if effect, _ := stmt["Effect"].(string); effect != "Allow" {
			continue
		}
		if !isWildcardPrincipal(stmt["Principal"]) {
			continue
		}
		sid, _ := stmt["Sid"].(string)
		if sid == "" {
			sid = fmt.Sprintf("statement %d", i+1)
		}
		reasons = append(reasons, fmt.Sprintf("Bucket policy allows public access (Sid: %s)", sid))
	}
	return reasons, nil
}

func isWildcardPrincipal(p any) bool {
	switch v := p.(type) {
	case string:
		return v == "*"
	case map[string]any:
		for _, principal := range normalizeToSlice(v["AWS"]) {
			if principal == "*" {
				return true
			}
		}
	}
	return false
}

func normalizeToSlice(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []any:
		var result []string
		for _, item := range val {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	}
	return nil
}

func inRegion(region string) func(*s3.Options) {
	return func(o *s3.Options) {
		if region != "" {
			o.Region = region
		}
	}
}
