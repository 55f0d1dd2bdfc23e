// Package ec2hygiene finds idle Elastic IPs and EBS volumes.
package ec2hygiene

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// NewService creates a new EC2 hygiene service for the config's region.
func NewService(cfg aws.Config) Service {
	return &service{client: ec2.NewFromConfig(cfg)}
}

// NewServiceWithClient creates a new EC2 hygiene service with a provided client (for testing).
func NewServiceWithClient(client EC2ClientAPI) Service {
	return &service{client: client}
}

func (s *service) GetUnusedAddresses(ctx context.Context) ([]UnusedAddress, error) {
	out, err := s.client.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe addresses: %w", err)
	}

	var unused []UnusedAddress
	for _, addr := range out.Addresses {
		if addr.AssociationId != nil || addr.InstanceId != nil || addr.NetworkInterfaceId != nil {
			continue
		}
		unused = append(unused, UnusedAddress{
			AllocationID: aws.ToString(addr.AllocationId),
			PublicIP:     aws.ToString(addr.PublicIp),
			Tags:         formatTags(addr.Tags),
		})
	}
	return unused, nil
}

func (s *service) GetUnattachedVolumes(ctx context.Context) ([]UnattachedVolume, error) {
	var volumes []UnattachedVolume
	paginator := ec2.NewDescribeVolumesPaginator(s.client, &ec2.DescribeVolumesInput{
		Filters: []types.Filter{
			{Name: aws.String("status"), Values: []string{string(types.VolumeStateAvailable)}},
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe volumes: %w", err)
		}
		for _, v := range page.Volumes {
			if v.State != types.VolumeStateAvailable {
				continue
			}
			volumes = append(volumes, UnattachedVolume{
				VolumeID:   aws.ToString(v.VolumeId),
				SizeGiB:    aws.ToInt32(v.Size),
				VolumeType: string(v.VolumeType),
				CreateTime: aws.ToTime(v.CreateTime),
			})
		}
	}
	return volumes, nil
}

func formatTags(tags []types.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, fmt.Sprintf("%s=%s", aws.ToString(t.Key), aws.ToString(t.Value)))
	}
	sort.Strings(out)
	return out
}
