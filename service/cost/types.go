package cost

import (
	"context"
	"time"

	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
)

// CEClientAPI defines the Cost Explorer methods used by this service.
type CEClientAPI interface {
	GetCostAndUsage(ctx context.Context, params *ce.GetCostAndUsageInput, optFns ...func(*ce.Options)) (*ce.GetCostAndUsageOutput, error)
}

// RegionSpend is month-to-date cost of one service in one region.
type RegionSpend struct {
	Region  string
	Service string
	Cost    float64
}

type service struct {
	client CEClientAPI
	now    func() time.Time
}

// Service reports spend outside the allowed regions.
type Service interface {
	GetSpendOutside(ctx context.Context, allowed []string, minimumCost float64) ([]RegionSpend, error)
}
