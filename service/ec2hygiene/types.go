package ec2hygiene

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// EC2ClientAPI defines the EC2 client methods used by this service.
type EC2ClientAPI interface {
	DescribeAddresses(ctx context.Context, params *ec2.DescribeAddressesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeAddressesOutput, error)
	DescribeVolumes(ctx context.Context, params *ec2.DescribeVolumesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error)
}

// UnusedAddress is an Elastic IP with no association.
type UnusedAddress struct {
	AllocationID string
	PublicIP     string
	Tags         []string
}

// UnattachedVolume is an EBS volume in the available state.
type UnattachedVolume struct {
	VolumeID   string
	SizeGiB    int32
	VolumeType string
	CreateTime time.Time
}

type service struct {
	client EC2ClientAPI
}

// Service finds idle EC2 resources in one region.
type Service interface {
	GetUnusedAddresses(ctx context.Context) ([]UnusedAddress, error)
	GetUnattachedVolumes(ctx context.Context) ([]UnattachedVolume, error)
}
