package s3security

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Reason strings attached to exposed buckets.
const (
	ReasonNoPublicAccessBlock = "Public access block is not configured"
	ReasonACLAllUsers         = "ACL grants access to AllUsers"
	ReasonACLAuthenticated    = "ACL grants access to AuthenticatedUsers"
)

// BucketLimit bounds concurrent bucket evaluations.
const BucketLimit = 8

const (
	allUsersURI           = "http://acs.amazonaws.com/groups/global/AllUsers"
	authenticatedUsersURI = "http://acs.amazonaws.com/groups/global/AuthenticatedUsers"
)

// S3ClientAPI defines the S3 client methods used by this service.
type S3ClientAPI interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	GetPublicAccessBlock(ctx context.Context, params *s3.GetPublicAccessBlockInput, optFns ...func(*s3.Options)) (*s3.GetPublicAccessBlockOutput, error)
	GetBucketAcl(ctx context.Context, params *s3.GetBucketAclInput, optFns ...func(*s3.Options)) (*s3.GetBucketAclOutput, error)
	GetBucketPolicy(ctx context.Context, params *s3.GetBucketPolicyInput, optFns ...func(*s3.Options)) (*s3.GetBucketPolicyOutput, error)
}

// BucketExposure is a bucket with at least one public-exposure signal.
type BucketExposure struct {
	BucketName string
	Region     string
	Reasons    []string
}

// Bucket is a listed bucket and its home region.
type Bucket struct {
	Name   string
	Region string
}

type policyDocument struct {
	Statement any `json:"Statement"`
}

type service struct {
	client S3ClientAPI
}

// Service evaluates S3 buckets for public exposure.
type Service interface {
	ListBuckets(ctx context.Context) ([]Bucket, error)
	EvaluateBucket(ctx context.Context, bucket Bucket) ([]string, error)
	GetPublicBuckets(ctx context.Context) ([]BucketExposure, error)
}
