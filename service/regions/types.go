package regions

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/thirukguru/check42/model"
)

// Wildcard expands to every region enabled for the account.
const Wildcard = "*"

// ErrMixedWildcard is returned when "*" is listed alongside explicit regions.
var ErrMixedWildcard = errors.New("region wildcard cannot be combined with explicit regions")

// EC2ClientAPI defines the EC2 client methods used by this service.
type EC2ClientAPI interface {
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

// Service resolves the region list a check runs against.
type Service interface {
	Resolve(ctx context.Context, cfg model.CheckConfig, defaults model.Defaults) ([]string, error)
	Enabled(ctx context.Context) ([]string, error)
}

type service struct {
	client EC2ClientAPI

	mu      sync.Mutex
	enabled []string
}
