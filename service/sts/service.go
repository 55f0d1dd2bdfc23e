// Package awssts resolves the caller's account through AWS STS.
package awssts

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// NewService creates a new STS service.
func NewService(awsconfig aws.Config) Service {
	return &service{
		client: sts.NewFromConfig(awsconfig),
	}
}

// NewServiceWithClient creates a new STS service with a provided client (for testing).
func NewServiceWithClient(client STSClientAPI) Service {
	return &service{client: client}
}

func (s *service) GetAccountID(ctx context.Context) (string, error) {
	out, err := s.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("failed to get caller identity: %w", err)
	}
	if out.Account == nil || *out.Account == "" {
		return "", errors.New("unable to resolve account ID")
	}
	return *out.Account, nil
}
