// Package executor adapts the probe services to catalog executors.
package executor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog/log"
	"github.com/thirukguru/check42/model"
	awsconfig "github.com/thirukguru/check42/service/aws_config"
	"github.com/thirukguru/check42/service/budgets"
	"github.com/thirukguru/check42/service/catalog"
	"github.com/thirukguru/check42/service/cost"
	"github.com/thirukguru/check42/service/ec2hygiene"
	"github.com/thirukguru/check42/service/iam"
	"github.com/thirukguru/check42/service/rds"
	"github.com/thirukguru/check42/service/regions"
	"github.com/thirukguru/check42/service/s3security"
	"github.com/thirukguru/check42/service/support"
	"github.com/thirukguru/check42/service/tagging"
	"github.com/thirukguru/check42/service/vpc"
	"golang.org/x/sync/errgroup"
)

// NewDeps builds the live probe services for an account.
func NewDeps(cfg aws.Config, accountID string) Deps {
	return Deps{
		IAM:     iam.NewService(cfg),
		S3:      s3security.NewService(cfg),
		Cost:    cost.NewService(cfg),
		Support: support.NewService(cfg),
		Budgets: budgets.NewService(cfg, accountID),
		EC2: func(region string) ec2hygiene.Service {
			return ec2hygiene.NewService(awsconfig.ForRegion(cfg, region))
		},
		VPC: func(region string) vpc.Service {
			return vpc.NewService(awsconfig.ForRegion(cfg, region))
		},
		RDS: func(region string) rds.Service {
			regional := awsconfig.ForRegion(cfg, region)
			return rds.NewService(regional, vpc.NewService(regional))
		},
		Tagging: func(region string) tagging.Service {
			return tagging.NewService(awsconfig.ForRegion(cfg, region))
		},
	}
}

// NewRegistry registers an executor for every catalog entry.
func NewRegistry(d Deps) *catalog.Registry {
	r := catalog.NewRegistry()

	r.Register(catalog.MissingTags, true, catalog.ExecutorFunc(d.missingTags))
	r.Register(catalog.NoMFAOnRoot, false, catalog.ExecutorFunc(d.noRootMFA))
	r.Register(catalog.NoPasswordPolicy, false, catalog.ExecutorFunc(d.noPasswordPolicy))
	r.Register(catalog.PublicBuckets, false, catalog.ExecutorFunc(d.publicBuckets))
	r.Register(catalog.NoPremiumSupport, false, catalog.ExecutorFunc(d.noPremiumSupport))
	r.Register(catalog.NoBudget, false, catalog.ExecutorFunc(d.noBudget))
	r.Register(catalog.UnusedEIP, true, catalog.ExecutorFunc(d.unusedEIP))
	r.Register(catalog.UnattachedEBSVolumes, true, catalog.ExecutorFunc(d.unattachedVolumes))
	r.Register(catalog.UsingDefaultVPC, true, catalog.ExecutorFunc(d.usingDefaultVPC))
	r.Register(catalog.EC2InPublicSubnet, true, catalog.ExecutorFunc(d.ec2InPublicSubnet))
	r.Register(catalog.RDSInPublicSubnet, true, catalog.ExecutorFunc(d.rdsInPublicSubnet))
	r.Register(catalog.RDSPublicAccess, true, catalog.ExecutorFunc(d.rdsPublicAccess))
	r.Register(catalog.ResourcesInOtherRegion, false, catalog.ExecutorFunc(d.resourcesInOtherRegions))
	r.Register(catalog.HasIAMUsers, false, catalog.ExecutorFunc(d.hasIAMUsers))

	return r
}

func (d Deps) missingTags(ctx context.Context, req catalog.Request) (model.Finding, error) {
	required := regions.Dedupe(req.Config.RequiredTags)
	if len(required) == 0 {
		return model.Finding{}, catalog.ConfigError("%s requires requiredTags", catalog.MissingTags)
	}

	items, err := fanOut(ctx, req.Regions, func(ctx context.Context, region string) ([]model.Item, error) {
		svc := d.Tagging(region)

		var resources []tagging.UntaggedResource
		var err error
		if req.Config.ConfigRuleName != "" {
			resources, err = svc.GetNonCompliantResources(ctx, req.Config.ConfigRuleName)
			if errors.Is(err, tagging.ErrNoSuchConfigRule) {
				return nil, catalog.ConfigError("region %s: %v", region, err)
			}
		} else {
			resources, err = svc.GetUntaggedResources(ctx, required, req.Config.ResourceTypes)
		}
		if err != nil {
			return nil, err
		}

		items := make([]model.Item, 0, len(resources))
		for _, r := range resources {
			items = append(items, model.Item{
				"service":       r.Service,
				"resource_type": r.ResourceType,
				"resource_id":   r.ResourceID,
				"resource_url":  tagging.ConsoleURL(r.ARN),
				"missing_tags":  strings.Join(r.MissingTags, ", "),
			})
		}
		return items, nil
	})
	return model.Finding{Items: items}, err
}

func (d Deps) noRootMFA(ctx context.Context, _ catalog.Request) (model.Finding, error) {
	ok, err := d.IAM.HasRootMFA(ctx)
	if err != nil || ok {
		return model.Finding{}, err
	}
	return model.Finding{Message: MessageNoRootMFA}, nil
}

func (d Deps) noPasswordPolicy(ctx context.Context, _ catalog.Request) (model.Finding, error) {
	ok, err := d.IAM.HasPasswordPolicy(ctx)
	if err != nil || ok {
		return model.Finding{}, err
	}
	return model.Finding{Message: MessageNoPasswordPolicy}, nil
}

func (d Deps) publicBuckets(ctx context.Context, _ catalog.Request) (model.Finding, error) {
	exposed, err := d.S3.GetPublicBuckets(ctx)
	if err != nil {
		return model.Finding{}, err
	}
	items := make([]model.Item, 0, len(exposed))
	for _, b := range exposed {
		items = append(items, model.Item{
			"bucket_name": b.BucketName,
			"region":      b.Region,
			"reasons":     strings.Join(b.Reasons, "\n"),
		})
	}
	return model.Finding{Items: items}, nil
}

func (d Deps) noPremiumSupport(ctx context.Context, _ catalog.Request) (model.Finding, error) {
	ok, err := d.Support.HasPremiumSupport(ctx)
	if err != nil || ok {
		return model.Finding{}, err
	}
	return model.Finding{Message: MessageNoPremiumSupport}, nil
}

func (d Deps) noBudget(ctx context.Context, _ catalog.Request) (model.Finding, error) {
	n, err := d.Budgets.CountBudgets(ctx)
	if err != nil || n > 0 {
		return model.Finding{}, err
	}
	return model.Finding{Message: MessageNoBudget}, nil
}

func (d Deps) unusedEIP(ctx context.Context, req catalog.Request) (model.Finding, error) {
	items, err := fanOut(ctx, req.Regions, func(ctx context.Context, region string) ([]model.Item, error) {
		addrs, err := d.EC2(region).GetUnusedAddresses(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]model.Item, 0, len(addrs))
		for _, a := range addrs {
			items = append(items, model.Item{
				"allocation_id": a.AllocationID,
				"ip_address":    a.PublicIP,
				"tags":          strings.Join(a.Tags, " | "),
			})
		}
		return items, nil
	})
	return model.Finding{Items: items}, err
}

func (d Deps) unattachedVolumes(ctx context.Context, req catalog.Request) (model.Finding, error) {
	items, err := fanOut(ctx, req.Regions, func(ctx context.Context, region string) ([]model.Item, error) {
		volumes, err := d.EC2(region).GetUnattachedVolumes(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]model.Item, 0, len(volumes))
		for _, v := range volumes {
			items = append(items, model.Item{
				"volume_id":   v.VolumeID,
				"size_gib":    strconv.Itoa(int(v.SizeGiB)),
				"volume_type": v.VolumeType,
				"created":     formatTime(v.CreateTime),
			})
		}
		return items, nil
	})
	return model.Finding{Items: items}, err
}

func (d Deps) usingDefaultVPC(ctx context.Context, req catalog.Request) (model.Finding, error) {
	items, err := fanOut(ctx, req.Regions, func(ctx context.Context, region string) ([]model.Item, error) {
		deps, err := d.VPC(region).GetDefaultVPCDependents(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]model.Item, 0, len(deps))
		for _, dep := range deps {
			items = append(items, model.Item{
				"vpc_id":        dep.VpcID,
				"resource_type": dep.ResourceType,
				"resource_id":   dep.ResourceID,
			})
		}
		return items, nil
	})
	return model.Finding{Items: items}, err
}

func (d Deps) ec2InPublicSubnet(ctx context.Context, req catalog.Request) (model.Finding, error) {
	items, err := fanOut(ctx, req.Regions, func(ctx context.Context, region string) ([]model.Item, error) {
		instances, err := d.VPC(region).GetInstancesInPublicSubnets(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]model.Item, 0, len(instances))
		for _, i := range instances {
			items = append(items, model.Item{
				"instance_id": i.InstanceID,
				"subnet_id":   i.SubnetID,
				"vpc_id":      i.VpcID,
			})
		}
		return items, nil
	})
	return model.Finding{Items: items}, err
}

func (d Deps) rdsInPublicSubnet(ctx context.Context, req catalog.Request) (model.Finding, error) {
	items, err := fanOut(ctx, req.Regions, func(ctx context.Context, region string) ([]model.Item, error) {
		instances, err := d.RDS(region).GetInstancesInPublicSubnets(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]model.Item, 0, len(instances))
		for _, i := range instances {
			items = append(items, model.Item{
				"db_instance": i.Identifier,
				"subnet_id":   strings.Join(i.SubnetIDs, "\n"),
				"vpc_id":      i.VpcID,
			})
		}
		return items, nil
	})
	return model.Finding{Items: items}, err
}

func (d Deps) rdsPublicAccess(ctx context.Context, req catalog.Request) (model.Finding, error) {
	items, err := fanOut(ctx, req.Regions, func(ctx context.Context, region string) ([]model.Item, error) {
		instances, err := d.RDS(region).GetPubliclyAccessibleInstances(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]model.Item, 0, len(instances))
		for _, i := range instances {
			items = append(items, model.Item{
				"db_instance": i.Identifier,
				"engine":      i.Engine,
				"endpoint":    i.Endpoint,
			})
		}
		return items, nil
	})
	return model.Finding{Items: items}, err
}

func (d Deps) resourcesInOtherRegions(ctx context.Context, req catalog.Request) (model.Finding, error) {
	allowed := AllowedRegions(req.Config, req.Defaults)
	if len(allowed) == 0 {
		return model.Finding{}, catalog.ConfigError("%s requires allowedRegions, regions or default regions", catalog.ResourcesInOtherRegion)
	}
	if slices.Contains(allowed, regions.Wildcard) {
		return model.Finding{}, nil
	}

	spend, err := d.Cost.GetSpendOutside(ctx, allowed, req.Config.MinimumCost)
	if err != nil {
		return model.Finding{}, err
	}
	items := make([]model.Item, 0, len(spend))
	for _, s := range spend {
		items = append(items, model.Item{
			"region":  s.Region,
			"service": s.Service,
			"cost":    fmt.Sprintf("%.2f", s.Cost),
		})
	}
	return model.Finding{Items: items}, nil
}

func (d Deps) hasIAMUsers(ctx context.Context, _ catalog.Request) (model.Finding, error) {
	users, err := d.IAM.ListUsers(ctx)
	if err != nil {
		return model.Finding{}, err
	}
	items := make([]model.Item, 0, len(users))
	for _, u := range users {
		lastUsed := "never"
		if u.PasswordLastUsed != nil {
			lastUsed = formatTime(*u.PasswordLastUsed)
		}
		items = append(items, model.Item{
			"user_name":          u.UserName,
			"arn":                u.ARN,
			"created":            formatTime(u.CreateDate),
			"password_last_used": lastUsed,
		})
	}
	return model.Finding{Items: items}, nil
}

// AllowedRegions returns allowedRegions, falling back to regions and then the
// account default regions.
func AllowedRegions(cfg model.CheckConfig, defaults model.Defaults) []string {
	for _, candidate := range [][]string{cfg.AllowedRegions, cfg.Regions, defaults.Regions} {
		if list := regions.Dedupe(candidate); len(list) > 0 {
			return list
		}
	}
	return nil
}

// fanOut runs fn for every region on a bounded pool. Items carry their region
// and are returned in region order.
func fanOut(ctx context.Context, regionList []string, fn func(ctx context.Context, region string) ([]model.Item, error)) ([]model.Item, error) {
	results := make([][]model.Item, len(regionList))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(RegionLimit)
	for i, region := range regionList {
		g.Go(func() error {
			items, err := fn(groupCtx, region)
			if err != nil {
				return fmt.Errorf("region %s: %w", region, err)
			}
			for _, item := range items {
				item["region"] = region
			}
			results[i] = items
			log.Ctx(groupCtx).Debug().Str("region", region).Int("items", len(items)).Msg("region probed")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var items []model.Item
	for _, r := range results {
		items = append(items, r...)
	}
	return items, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
