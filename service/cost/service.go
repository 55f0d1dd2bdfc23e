// Package cost reads month-to-date spend from Cost Explorer.
package cost

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
)

const (
	metricUnblendedCost = "UnblendedCost"
	dateLayout          = "2006-01-02"
)

// Region values that are never attributed to a user's region choice.
var regionless = map[string]bool{
	"":          true,
	"global":    true,
	"noregion":  true,
	"no-region": true,
}

// NewService creates a new Cost Explorer service. Cost Explorer is served from us-east-1.
func NewService(cfg aws.Config) Service {
	return &service{
		client: ce.NewFromConfig(cfg, func(o *ce.Options) { o.Region = "us-east-1" }),
		now:    time.Now,
	}
}

// NewServiceWithClient creates a new Cost Explorer service with a provided client and clock (for testing).
func NewServiceWithClient(client CEClientAPI, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{client: client, now: now}
}

// GetSpendOutside returns services whose month-to-date cost in a region outside
// allowed is greater than minimumCost, sorted by region and service.
func (s *service) GetSpendOutside(ctx context.Context, allowed []string, minimumCost float64) ([]RegionSpend, error) {
	allowedSet := make(map[string]bool, len(allowed))
	for _, r := range allowed {
		allowedSet[strings.ToLower(strings.TrimSpace(r))] = true
	}

	start, end := monthToDate(s.now())
	totals := make(map[[2]string]float64)

	var nextToken *string
	for {
		out, err := s.client.GetCostAndUsage(ctx, &ce.GetCostAndUsageInput{
			TimePeriod: &cetypes.DateInterval{
				Start: aws.String(start),
				End:   aws.String(end),
			},
			Granularity: cetypes.GranularityMonthly,
			Metrics:     []string{metricUnblendedCost},
			GroupBy: []cetypes.GroupDefinition{
				{Key: aws.String("SERVICE"), Type: cetypes.GroupDefinitionTypeDimension},
				{Key: aws.String("REGION"), Type: cetypes.GroupDefinitionTypeDimension},
			},
			NextPageToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get cost and usage: %w", err)
		}

		for _, result := range out.ResultsByTime {
			for _, group := range result.Groups {
				if len(group.Keys) < 2 {
					continue
				}
				metric, ok := group.Metrics[metricUnblendedCost]
				if !ok {
					continue
				}
				totals[[2]string{group.Keys[1], group.Keys[0]}] += parseAmount(metric.Amount)
			}
		}

		if aws.ToString(out.NextPageToken) == "" {
			break
		}
		nextToken = out.NextPageToken
	}

	var spend []RegionSpend
	for key, total := range totals {
		region := strings.ToLower(key[0])
		if regionless[region] || allowedSet[region] {
			continue
		}
		if total <= minimumCost || total <= 0 {
			continue
		}
		spend = append(spend, RegionSpend{Region: key[0], Service: key[1], Cost: total})
	}
	sort.Slice(spend, func(i, j int) bool {
		if spend[i].Region != spend[j].Region {
			return spend[i].Region < spend[j].Region
		}
		return spend[i].Service < spend[j].Service
	})
	return spend, nil
}

// monthToDate returns [first of month, tomorrow) in UTC. Cost Explorer requires
// start < end and treats end as exclusive, so today's partial spend is included.
func monthToDate(now time.Time) (string, string) {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	return first.Format(dateLayout), tomorrow.Format(dateLayout)
}

func parseAmount(amount *string) float64 {
	if amount == nil {
		return 0
	}
	v, err := strconv.ParseFloat(*amount, 64)
	if err != nil {
		return 0
	}
	return v
}
