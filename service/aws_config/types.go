package awsconfig

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// DefaultMaxAttempts bounds SDK retries for throttling and transient network errors.
const DefaultMaxAttempts = 5

// Options tune how the shared AWS configuration is loaded.
type Options struct {
	Region      string
	Profile     string
	MaxAttempts int
}

type service struct{}

// Service is the interface for AWS configuration service.
type Service interface {
	GetAWSCfg(ctx context.Context, opts Options) (aws.Config, error)
}
