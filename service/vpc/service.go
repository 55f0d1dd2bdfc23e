package vpc

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
)

// GetDefaultVPCDependents lists user resources bound to the region's default VPC.
// AWS-created defaults (the default security group and default-for-AZ subnets) are not counted.
func (s *service) GetDefaultVPCDependents(ctx context.Context) ([]Dependent, error) {
	vpcIDs, err := s.defaultVPCIDs(ctx)
	if err != nil {
		return nil, err
	}

	var dependents []Dependent
	for _, vpcID := range vpcIDs {
		found, err := s.vpcDependents(ctx, vpcID)
		if err != nil {
			return nil, err
		}
		dependents = append(dependents, found...)
	}
	return dependents, nil
}

func (s *service) defaultVPCIDs(ctx context.Context) ([]string, error) {
	var ids []string
	paginator := ec2.NewDescribeVpcsPaginator(s.client, &ec2.DescribeVpcsInput{
		Filters: []types.Filter{{Name: aws.String("is-default"), Values: []string{"true"}}},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe VPCs: %w", err)
		}
		for _, v := range page.Vpcs {
			if aws.ToBool(v.IsDefault) {
				ids = append(ids, aws.ToString(v.VpcId))
			}
		}
	}
	return ids, nil
}

func (s *service) vpcDependents(ctx context.Context, vpcID string) ([]Dependent, error) {
	vpcFilter := []types.Filter{{Name: aws.String("vpc-id"), Values: []string{vpcID}}}
	var deps []Dependent
	add := func(resourceType, id string) {
		deps = append(deps, Dependent{VpcID: vpcID, ResourceType: resourceType, ResourceID: id})
	}

	instanceIDs := map[string]bool{}
	instances := ec2.NewDescribeInstancesPaginator(s.client, &ec2.DescribeInstancesInput{Filters: vpcFilter})
	for instances.HasMorePages() {
		page, err := instances.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances in %s: %w", vpcID, err)
		}
		for _, r := range page.Reservations {
			for _, inst := range r.Instances {
				if inst.State != nil && inst.State.Name == types.InstanceStateNameTerminated {
					continue
				}
				id := aws.ToString(inst.InstanceId)
				instanceIDs[id] = true
				add(ResourceInstance, id)
			}
		}
	}

	groups := ec2.NewDescribeSecurityGroupsPaginator(s.client, &ec2.DescribeSecurityGroupsInput{Filters: vpcFilter})
	for groups.HasMorePages() {
		page, err := groups.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe security groups in %s: %w", vpcID, err)
		}
		for _, sg := range page.SecurityGroups {
			if aws.ToString(sg.GroupName) == "default" {
				continue
			}
			add(ResourceSecurityGroup, aws.ToString(sg.GroupId))
		}
	}

	subnets := ec2.NewDescribeSubnetsPaginator(s.client, &ec2.DescribeSubnetsInput{Filters: vpcFilter})
	for subnets.HasMorePages() {
		page, err := subnets.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe subnets in %s: %w", vpcID, err)
		}
		for _, sn := range page.Subnets {
			if aws.ToBool(sn.DefaultForAz) {
				continue
			}
			add(ResourceSubnet, aws.ToString(sn.SubnetId))
		}
	}

	enis := ec2.NewDescribeNetworkInterfacesPaginator(s.client, &ec2.DescribeNetworkInterfacesInput{Filters: vpcFilter})
	for enis.HasMorePages() {
		page, err := enis.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe network interfaces in %s: %w", vpcID, err)
		}
		for _, eni := range page.NetworkInterfaces {
			if eni.Attachment != nil && instanceIDs[aws.ToString(eni.Attachment.InstanceId)] {
				continue
			}
			add(ResourceNetworkInterface, aws.ToString(eni.NetworkInterfaceId))
		}
	}

	lbs := elbv2.NewDescribeLoadBalancersPaginator(s.elbClient, &elbv2.DescribeLoadBalancersInput{})
	for lbs.HasMorePages() {
		page, err := lbs.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe load balancers: %w", err)
		}
		for _, lb := range page.LoadBalancers {
			if aws.ToString(lb.VpcId) == vpcID {
				add(ResourceLoadBalancer, aws.ToString(lb.LoadBalancerName))
			}
		}
	}

	return deps, nil
}

// ClassifySubnets maps subnet id to its classification. A subnet without an
// explicit route table association uses its VPC's main route table.
func (s *service) ClassifySubnets(ctx context.Context) (map[string]SubnetClassification, error) {
	explicit := map[string]types.RouteTable{}
	mainByVPC := map[string]types.RouteTable{}

	tables := ec2.NewDescribeRouteTablesPaginator(s.client, &ec2.DescribeRouteTablesInput{})
	for tables.HasMorePages() {
		page, err := tables.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe route tables: %w", err)
		}
		for _, rt := range page.RouteTables {
			for _, assoc := range rt.Associations {
				if aws.ToBool(assoc.Main) {
					mainByVPC[aws.ToString(rt.VpcId)] = rt
				}
				if assoc.SubnetId != nil {
					explicit[aws.ToString(assoc.SubnetId)] = rt
				}
			}
		}
	}

	classified := map[string]SubnetClassification{}
	subnets := ec2.NewDescribeSubnetsPaginator(s.client, &ec2.DescribeSubnetsInput{})
	for subnets.HasMorePages() {
		page, err := subnets.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe subnets: %w", err)
		}
		for _, sn := range page.Subnets {
			subnetID := aws.ToString(sn.SubnetId)
			vpcID := aws.ToString(sn.VpcId)

			rt, ok := explicit[subnetID]
			if !ok {
				rt, ok = mainByVPC[vpcID]
			}
			c := SubnetClassification{SubnetID: subnetID, VpcID: vpcID}
			if ok {
				c.RouteTableID = aws.ToString(rt.RouteTableId)
				c.IsPublic = hasInternetGatewayDefaultRoute(rt)
			}
			classified[subnetID] = c
		}
	}
	return classified, nil
}

// GetInstancesInPublicSubnets returns non-terminated instances whose subnet is public.
func (s *service) GetInstancesInPublicSubnets(ctx context.Context) ([]PublicInstance, error) {
	subnets, err := s.ClassifySubnets(ctx)
	if err != nil {
		return nil, err
	}

	var public []PublicInstance
	paginator := ec2.NewDescribeInstancesPaginator(s.client, &ec2.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances: %w", err)
		}
		for _, r := range page.Reservations {
			for _, inst := range r.Instances {
				state := ""
				if inst.State != nil {
					state = string(inst.State.Name)
				}
				if state == string(types.InstanceStateNameTerminated) {
					continue
				}
				subnetID := aws.ToString(inst.SubnetId)
				if c, ok := subnets[subnetID]; ok && c.IsPublic {
					public = append(public, PublicInstance{
						InstanceID: aws.ToString(inst.InstanceId),
						SubnetID:   subnetID,
						VpcID:      c.VpcID,
						State:      state,
					})
				}
			}
		}
	}
	return public, nil
}

func hasInternetGatewayDefaultRoute(rt types.RouteTable) bool {
	for _, route := range rt.Routes {
		if route.State == types.RouteStateBlackhole {
			continue
		}
		isDefault := aws.ToString(route.DestinationCidrBlock) == "0.0.0.0/0" ||
			aws.ToString(route.DestinationIpv6CidrBlock) == "::/0"
		if isDefault && strings.HasPrefix(aws.ToString(route.GatewayId), "igw-") {
			return true
		}
	}
	return false
}
