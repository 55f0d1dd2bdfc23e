package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/thirukguru/check42/model"
)

// CheckType is a catalog identifier. A check definition's name selects its executor.
type CheckType string

const (
	MissingTags            CheckType = "MISSING_TAGS"
	NoMFAOnRoot            CheckType = "NO_MFA_ON_ROOT"
	NoPasswordPolicy       CheckType = "NO_PASSWORD_POLICY"
	PublicBuckets          CheckType = "PUBLIC_BUCKETS"
	NoPremiumSupport       CheckType = "NO_PREMIUM_SUPPORT"
	NoBudget               CheckType = "NO_BUDGET"
	UnusedEIP              CheckType = "UNUSED_EIP"
	UnattachedEBSVolumes   CheckType = "UNATTACHED_EBS_VOLUMES"
	UsingDefaultVPC        CheckType = "USING_DEFAULT_VPC"
	EC2InPublicSubnet      CheckType = "EC2_IN_PUBLIC_SUBNET"
	ResourcesInOtherRegion CheckType = "RESOURCES_IN_OTHER_REGIONS"
	RDSPublicAccess        CheckType = "RDS_PUBLIC_ACCESS"
	RDSInPublicSubnet      CheckType = "RDS_IN_PUBLIC_SUBNET"
	HasIAMUsers            CheckType = "HAS_IAM_USERS"
)

// ErrConfiguration marks a check whose config is missing a required field.
var ErrConfiguration = errors.New("invalid check configuration")

// ConfigError wraps ErrConfiguration with details.
func ConfigError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// Request is everything an executor receives for one run of one check.
type Request struct {
	Definition model.CheckDefinition
	Config     model.CheckConfig
	Defaults   model.Defaults
	Regions    []string
}

// Executor evaluates one catalog entry against live account state.
type Executor interface {
	Run(ctx context.Context, req Request) (model.Finding, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, req Request) (model.Finding, error)

// Run calls f.
func (f ExecutorFunc) Run(ctx context.Context, req Request) (model.Finding, error) {
	return f(ctx, req)
}

// Entry is a registered catalog entry.
type Entry struct {
	Type     CheckType
	Regional bool
	Executor Executor
}

// Registry maps catalog identifiers to executors.
type Registry struct {
	entries map[CheckType]Entry
}
