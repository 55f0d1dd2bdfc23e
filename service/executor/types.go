package executor

import (
	"github.com/thirukguru/check42/service/budgets"
	"github.com/thirukguru/check42/service/cost"
	"github.com/thirukguru/check42/service/ec2hygiene"
	"github.com/thirukguru/check42/service/iam"
	"github.com/thirukguru/check42/service/rds"
	"github.com/thirukguru/check42/service/s3security"
	"github.com/thirukguru/check42/service/support"
	"github.com/thirukguru/check42/service/tagging"
	"github.com/thirukguru/check42/service/vpc"
)

// RegionLimit bounds concurrent regions within one check.
const RegionLimit = 4

// Deps bundles the probe services executors call. Regional services are built
// per region through the factory fields.
type Deps struct {
	IAM     iam.Service
	S3      s3security.Service
	Cost    cost.Service
	Support support.Service
	Budgets budgets.Service

	EC2     func(region string) ec2hygiene.Service
	VPC     func(region string) vpc.Service
	RDS     func(region string) rds.Service
	Tagging func(region string) tagging.Service
}

// Messages reported by the account-level checks.
const (
	MessageNoRootMFA        = "No MFA on Root"
	MessageNoPasswordPolicy = "No Password Policy"
	MessageNoPremiumSupport = "No Business or Enterprise support plan"
	MessageNoBudget         = "No budget is configured"
)
