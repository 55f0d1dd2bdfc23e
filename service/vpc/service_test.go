package vpc

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEC2 struct {
	vpcs        []types.Vpc
	instances   []types.Instance
	groups      []types.SecurityGroup
	subnets     []types.Subnet
	enis        []types.NetworkInterface
	routeTables []types.RouteTable
}

func (f *fakeEC2) DescribeVpcs(context.Context, *ec2.DescribeVpcsInput, ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	return &ec2.DescribeVpcsOutput{Vpcs: f.vpcs}, nil
}

func (f *fakeEC2) DescribeInstances(context.Context, *ec2.DescribeInstancesInput, ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	return &ec2.DescribeInstancesOutput{Reservations: []types.Reservation{{Instances: f.instances}}}, nil
}

func (f *fakeEC2) DescribeSecurityGroups(context.Context, *ec2.DescribeSecurityGroupsInput, ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	return &ec2.DescribeSecurityGroupsOutput{SecurityGroups: f.groups}, nil
}

func (f *fakeEC2) DescribeSubnets(context.Context, *ec2.DescribeSubnetsInput, ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	return &ec2.DescribeSubnetsOutput{Subnets: f.subnets}, nil
}

func (f *fakeEC2) DescribeNetworkInterfaces(context.Context, *ec2.DescribeNetworkInterfacesInput, ...func(*ec2.Options)) (*ec2.DescribeNetworkInterfacesOutput, error) {
	return &ec2.DescribeNetworkInterfacesOutput{NetworkInterfaces: f.enis}, nil
}

func (f *fakeEC2) DescribeRouteTables(context.Context, *ec2.DescribeRouteTablesInput, ...func(*ec2.Options)) (*ec2.DescribeRouteTablesOutput, error) {
	return &ec2.DescribeRouteTablesOutput{RouteTables: f.routeTables}, nil
}

type fakeELB struct {
	lbs []elbtypes.LoadBalancer
}

func (f *fakeELB) DescribeLoadBalancers(context.Context, *elbv2.DescribeLoadBalancersInput, ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error) {
	return &elbv2.DescribeLoadBalancersOutput{LoadBalancers: f.lbs}, nil
}

func localRoute() types.Route {
	return types.Route{DestinationCidrBlock: aws.String("10.0.0.0/16"), GatewayId: aws.String("local"), State: types.RouteStateActive}
}

func networkFixture() *fakeEC2 {
	return &fakeEC2{
		subnets: []types.Subnet{
			{SubnetId: aws.String("subnet-public"), VpcId: aws.String("vpc-1")},
			{SubnetId: aws.String("subnet-private"), VpcId: aws.String("vpc-1")},
			{SubnetId: aws.String("subnet-main"), VpcId: aws.String("vpc-2")},
		},
		routeTables: []types.RouteTable{
			{
				RouteTableId: aws.String("rtb-public"),
				VpcId:        aws.String("vpc-1"),
				Associations: []types.RouteTableAssociation{{SubnetId: aws.String("subnet-public")}},
				Routes: []types.Route{
					localRoute(),
					{DestinationCidrBlock: aws.String("0.0.0.0/0"), GatewayId: aws.String("igw-0abc"), State: types.RouteStateActive},
				},
			},
			{
				RouteTableId: aws.String("rtb-main-1"),
				VpcId:        aws.String("vpc-1"),
				Associations: []types.RouteTableAssociation{{Main: aws.Bool(true)}, {SubnetId: aws.String("subnet-private")}},
				Routes:       []types.Route{localRoute()},
			},
			{
				RouteTableId: aws.String("rtb-main-2"),
				VpcId:        aws.String("vpc-2"),
				Associations: []types.RouteTableAssociation{{Main: aws.Bool(true)}},
				Routes: []types.Route{
					localRoute(),
					{DestinationIpv6CidrBlock: aws.String("::/0"), GatewayId: aws.String("igw-0def"), State: types.RouteStateActive},
				},
			},
		},
	}
}

func TestClassifySubnets(t *testing.T) {
	svc := NewServiceWithClient(networkFixture(), &fakeELB{})
	got, err := svc.ClassifySubnets(context.Background())
	require.NoError(t, err)

	assert.True(t, got["subnet-public"].IsPublic)
	assert.Equal(t, "rtb-public", got["subnet-public"].RouteTableID)
	assert.False(t, got["subnet-private"].IsPublic)
	assert.True(t, got["subnet-main"].IsPublic, "falls back to the VPC main route table")
	assert.Equal(t, "rtb-main-2", got["subnet-main"].RouteTableID)
}

func TestHasInternetGatewayDefaultRoute(t *testing.T) {
	tests := []struct {
		name   string
		routes []types.Route
		want   bool
	}{
		{name: "local only", routes: []types.Route{localRoute()}, want: false},
		{name: "igw default", routes: []types.Route{{DestinationCidrBlock: aws.String("0.0.0.0/0"), GatewayId: aws.String("igw-1")}}, want: true},
		{name: "nat default", routes: []types.Route{{DestinationCidrBlock: aws.String("0.0.0.0/0"), NatGatewayId: aws.String("nat-1")}}, want: false},
		{name: "igw non default", routes: []types.Route{{DestinationCidrBlock: aws.String("192.168.0.0/16"), GatewayId: aws.String("igw-1")}}, want: false},
		{name: "blackhole igw", routes: []types.Route{{DestinationCidrBlock: aws.String("0.0.0.0/0"), GatewayId: aws.String("igw-1"), State: types.RouteStateBlackhole}}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasInternetGatewayDefaultRoute(types.RouteTable{Routes: tt.routes}))
		})
	}
}

func TestGetInstancesInPublicSubnets(t *testing.T) {
	client := networkFixture()
	client.instances = []types.Instance{
		{InstanceId: aws.String("i-public"), SubnetId: aws.String("subnet-public"), State: &types.InstanceState{Name: types.InstanceStateNameRunning}},
		{InstanceId: aws.String("i-private"), SubnetId: aws.String("subnet-private"), State: &types.InstanceState{Name: types.InstanceStateNameRunning}},
		{InstanceId: aws.String("i-gone"), SubnetId: aws.String("subnet-public"), State: &types.InstanceState{Name: types.InstanceStateNameTerminated}},
	}

	got, err := NewServiceWithClient(client, &fakeELB{}).GetInstancesInPublicSubnets(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "i-public", got[0].InstanceID)
	assert.Equal(t, "vpc-1", got[0].VpcID)
}

func TestGetDefaultVPCDependents(t *testing.T) {
	client := &fakeEC2{
		vpcs: []types.Vpc{{VpcId: aws.String("vpc-default"), IsDefault: aws.Bool(true)}},
		instances: []types.Instance{
			{InstanceId: aws.String("i-1"), State: &types.InstanceState{Name: types.InstanceStateNameRunning}},
		},
		groups: []types.SecurityGroup{
			{GroupId: aws.String("sg-default"), GroupName: aws.String("default")},
			{GroupId: aws.String("sg-web"), GroupName: aws.String("web")},
		},
		subnets: []types.Subnet{
			{SubnetId: aws.String("subnet-az-a"), DefaultForAz: aws.Bool(true)},
			{SubnetId: aws.String("subnet-custom"), DefaultForAz: aws.Bool(false)},
		},
		enis: []types.NetworkInterface{
			{NetworkInterfaceId: aws.String("eni-instance"), Attachment: &types.NetworkInterfaceAttachment{InstanceId: aws.String("i-1")}},
			{NetworkInterfaceId: aws.String("eni-lambda")},
		},
	}
	elb := &fakeELB{lbs: []elbtypes.LoadBalancer{
		{LoadBalancerName: aws.String("alb-default"), VpcId: aws.String("vpc-default")},
		{LoadBalancerName: aws.String("alb-other"), VpcId: aws.String("vpc-other")},
	}}

	deps, err := NewServiceWithClient(client, elb).GetDefaultVPCDependents(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, d := range deps {
		assert.Equal(t, "vpc-default", d.VpcID)
		ids = append(ids, d.ResourceType+":"+d.ResourceID)
	}
	assert.Equal(t, []string{
		"instance:i-1",
		"security-group:sg-web",
		"subnet:subnet-custom",
		"network-interface:eni-lambda",
		"load-balancer:alb-default",
	}, ids)
}

func TestGetDefaultVPCDependentsWithoutDefaultVPC(t *testing.T) {
	deps, err := NewServiceWithClient(&fakeEC2{}, &fakeELB{}).GetDefaultVPCDependents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, deps)
}
