// Package metrics publishes run results as CloudWatch metrics.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/thirukguru/check42/model"
)

// NewService creates a new metrics service.
func NewService(cfg aws.Config) Service {
	return &service{client: cloudwatch.NewFromConfig(cfg)}
}

// NewServiceWithClient creates a new metrics service with a provided client (for testing).
func NewServiceWithClient(client CloudWatchClientAPI) Service {
	return &service{client: client}
}

func (s *service) Publish(ctx context.Context, outcomes []model.Outcome) error {
	data := Datums(outcomes, time.Now().UTC())
	for start := 0; start < len(data); start += maxDatumsPerCall {
		end := min(start+maxDatumsPerCall, len(data))
		if _, err := s.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(Namespace),
			MetricData: data[start:end],
		}); err != nil {
			return fmt.Errorf("failed to put metric data: %w", err)
		}
	}
	return nil
}

// Datums builds the run totals followed by one CheckFailed datum per executed check.
func Datums(outcomes []model.Outcome, at time.Time) []cwtypes.MetricDatum {
	var failed, errored float64
	for _, o := range outcomes {
		switch o.Status {
		case model.StatusFail:
			failed++
		case model.StatusError:
			errored++
		}
	}

	data := []cwtypes.MetricDatum{
		count("ChecksRun", float64(len(outcomes)), at),
		count("ChecksFailed", failed, at),
		count("ChecksErrored", errored, at),
	}
	for _, o := range outcomes {
		if o.Status == model.StatusError {
			continue
		}
		value := 0.0
		if o.Failed() {
			value = 1
		}
		d := count("CheckFailed", value, at)
		d.Dimensions = []cwtypes.Dimension{{Name: aws.String("Check"), Value: aws.String(o.Check.Name)}}
		data = append(data, d)
	}
	return data
}

func count(name string, value float64, at time.Time) cwtypes.MetricDatum {
	return cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       cwtypes.StandardUnitCount,
		Timestamp:  aws.Time(at),
	}
}
