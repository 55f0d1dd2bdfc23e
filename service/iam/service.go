// Package iam probes account-level IAM hygiene: root MFA, password policy and users.
package iam

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/thirukguru/check42/shared/awserr"
)

const accountMFAEnabled = "AccountMFAEnabled"

// NewService creates a new IAM probe service.
func NewService(cfg aws.Config) Service {
	return &service{client: iam.NewFromConfig(cfg)}
}

// NewServiceWithClient creates a new IAM service with a provided client (for testing).
func NewServiceWithClient(client IAMClientAPI) Service {
	return &service{client: client}
}

// HasRootMFA reads AccountMFAEnabled from the account summary.
func (s *service) HasRootMFA(ctx context.Context) (bool, error) {
	out, err := s.client.GetAccountSummary(ctx, &iam.GetAccountSummaryInput{})
	if err != nil {
		return false, fmt.Errorf("failed to get account summary: %w", err)
	}
	return out.SummaryMap[accountMFAEnabled] == 1, nil
}

// HasPasswordPolicy returns false when IAM reports NoSuchEntity.
func (s *service) HasPasswordPolicy(ctx context.Context) (bool, error) {
	out, err := s.client.GetAccountPasswordPolicy(ctx, &iam.GetAccountPasswordPolicyInput{})
	if err != nil {
		if awserr.HasCode(err, "NoSuchEntity") {
			return false, nil
		}
		return false, fmt.Errorf("failed to get account password policy: %w", err)
	}
	return out.PasswordPolicy != nil, nil
}

func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	paginator := iam.NewListUsersPaginator(s.client, &iam.ListUsersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list IAM users: %w", err)
		}
		for _, u := range page.Users {
			users = append(users, User{
				UserName:         aws.ToString(u.UserName),
				ARN:              aws.ToString(u.Arn),
				CreateDate:       aws.ToTime(u.CreateDate),
				PasswordLastUsed: u.PasswordLastUsed,
			})
		}
	}
	return users, nil
}
