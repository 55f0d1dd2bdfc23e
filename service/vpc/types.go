// Package vpc inspects default VPC usage and classifies subnets as public or private.
package vpc

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
)

// Dependent resource types reported for a default VPC.
const (
	ResourceInstance         = "instance"
	ResourceSecurityGroup    = "security-group"
	ResourceSubnet           = "subnet"
	ResourceNetworkInterface = "network-interface"
	ResourceLoadBalancer     = "load-balancer"
)

// EC2ClientAPI defines the EC2 client methods used by this service.
type EC2ClientAPI interface {
	DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error)
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error)
	DescribeNetworkInterfaces(ctx context.Context, params *ec2.DescribeNetworkInterfacesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNetworkInterfacesOutput, error)
	DescribeRouteTables(ctx context.Context, params *ec2.DescribeRouteTablesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRouteTablesOutput, error)
}

// ELBClientAPI defines the ELBv2 client methods used by this service.
type ELBClientAPI interface {
	DescribeLoadBalancers(ctx context.Context, params *elbv2.DescribeLoadBalancersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error)
}

// Dependent is a resource bound to a default VPC.
type Dependent struct {
	VpcID        string
	ResourceType string
	ResourceID   string
}

// SubnetClassification records whether a subnet routes default traffic to an internet gateway.
type SubnetClassification struct {
	SubnetID     string
	VpcID        string
	RouteTableID string
	IsPublic     bool
}

// PublicInstance is an EC2 instance placed in a public subnet.
type PublicInstance struct {
	InstanceID string
	SubnetID   string
	VpcID      string
	State      string
}

type service struct {
	client    EC2ClientAPI
	elbClient ELBClientAPI
}

// Service inspects VPC layout in one region.
type Service interface {
	GetDefaultVPCDependents(ctx context.Context) ([]Dependent, error)
	ClassifySubnets(ctx context.Context) (map[string]SubnetClassification, error)
	GetInstancesInPublicSubnets(ctx context.Context) ([]PublicInstance, error)
}

// NewService creates a new VPC service for the config's region.
func NewService(cfg aws.Config) Service {
	return &service{
		client:    ec2.NewFromConfig(cfg),
		elbClient: elbv2.NewFromConfig(cfg),
	}
}

// NewServiceWithClient creates a new VPC service with provided clients (for testing).
func NewServiceWithClient(client EC2ClientAPI, elbClient ELBClientAPI) Service {
	return &service{
		client:    client,
		elbClient: elbClient,
	}
}
