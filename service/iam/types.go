package iam

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/iam"
)

// IAMClientAPI defines the IAM client methods used by this service.
type IAMClientAPI interface {
	GetAccountSummary(ctx context.Context, params *iam.GetAccountSummaryInput, optFns ...func(*iam.Options)) (*iam.GetAccountSummaryOutput, error)
	GetAccountPasswordPolicy(ctx context.Context, params *iam.GetAccountPasswordPolicyInput, optFns ...func(*iam.Options)) (*iam.GetAccountPasswordPolicyOutput, error)
	ListUsers(ctx context.Context, params *iam.ListUsersInput, optFns ...func(*iam.Options)) (*iam.ListUsersOutput, error)
}

// User is an IAM user found in the account.
type User struct {
	UserName         string
	ARN              string
	CreateDate       time.Time
	PasswordLastUsed *time.Time
}

type service struct {
	client IAMClientAPI
}

// Service probes account-level IAM settings.
type Service interface {
	HasRootMFA(ctx context.Context) (bool, error)
	HasPasswordPolicy(ctx context.Context) (bool, error)
	ListUsers(ctx context.Context) ([]User, error)
}
