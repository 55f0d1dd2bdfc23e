// Package rds probes RDS instances for public exposure.
package rds

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"
)

// NewService creates a new RDS service for the config's region.
func NewService(cfg aws.Config, classifier SubnetClassifier) Service {
	return &service{
		client:     rds.NewFromConfig(cfg),
		classifier: classifier,
	}
}

// NewServiceWithClient creates a new RDS service with a provided client (for testing).
func NewServiceWithClient(client RDSClientAPI, classifier SubnetClassifier) Service {
	return &service{
		client:     client,
		classifier: classifier,
	}
}

func (s *service) GetPubliclyAccessibleInstances(ctx context.Context) ([]PublicInstance, error) {
	instances, err := s.describeAll(ctx)
	if err != nil {
		return nil, err
	}

	var public []PublicInstance
	for _, db := range instances {
		if !aws.ToBool(db.PubliclyAccessible) {
			continue
		}
		endpoint := ""
		if db.Endpoint != nil {
			endpoint = fmt.Sprintf("%s:%d", aws.ToString(db.Endpoint.Address), aws.ToInt32(db.Endpoint.Port))
		}
		public = append(public, PublicInstance{
			Identifier: aws.ToString(db.DBInstanceIdentifier),
			Engine:     aws.ToString(db.Engine),
			Endpoint:   endpoint,
		})
	}
	return public, nil
}

func (s *service) GetInstancesInPublicSubnets(ctx context.Context) ([]InstanceInPublicSubnet, error) {
	instances, err := s.describeAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, nil
	}

	subnets, err := s.classifier.ClassifySubnets(ctx)
	if err != nil {
		return nil, err
	}

	var found []InstanceInPublicSubnet
	for _, db := range instances {
		if db.DBSubnetGroup == nil {
			continue
		}
		var publicSubnets []string
		for _, sn := range db.DBSubnetGroup.Subnets {
			id := aws.ToString(sn.SubnetIdentifier)
			if c, ok := subnets[id]; ok && c.IsPublic {
				publicSubnets = append(publicSubnets, id)
			}
		}
		if len(publicSubnets) > 0 {
			found = append(found, InstanceInPublicSubnet{
				Identifier: aws.ToString(db.DBInstanceIdentifier),
				SubnetIDs:  publicSubnets,
				VpcID:      aws.ToString(db.DBSubnetGroup.VpcId),
			})
		}
	}
	return found, nil
}

func (s *service) describeAll(ctx context.Context) ([]types.DBInstance, error) {
	var instances []types.DBInstance
	paginator := rds.NewDescribeDBInstancesPaginator(s.client, &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe DB instances: %w", err)
		}
		instances = append(instances, page.DBInstances...)
	}
	return instances, nil
}
