package rds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/thirukguru/check42/service/vpc"
)

// RDSClientAPI defines the RDS client methods used by this service.
type RDSClientAPI interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
}

// SubnetClassifier classifies the region's subnets.
type SubnetClassifier interface {
	ClassifySubnets(ctx context.Context) (map[string]vpc.SubnetClassification, error)
}

// PublicInstance is a DB instance flagged as publicly accessible.
type PublicInstance struct {
	Identifier string
	Engine     string
	Endpoint   string
}

// InstanceInPublicSubnet is a DB instance whose subnet group includes a public subnet.
type InstanceInPublicSubnet struct {
	Identifier string
	SubnetIDs  []string
	VpcID      string
}

type service struct {
	client     RDSClientAPI
	classifier SubnetClassifier
}

// Service probes RDS network exposure in one region.
type Service interface {
	GetPubliclyAccessibleInstances(ctx context.Context) ([]PublicInstance, error)
	GetInstancesInPublicSubnets(ctx context.Context) ([]InstanceInPublicSubnet, error)
}
