// Package schedule keeps the EventBridge rule that triggers scheduled runs.
package schedule

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/rs/zerolog/log"
	"github.com/thirukguru/check42/model"
)

// NewService creates a new schedule service.
func NewService(cfg aws.Config) Service {
	return &service{client: eventbridge.NewFromConfig(cfg)}
}

// NewServiceWithClient creates a new schedule service with a provided client (for testing).
func NewServiceWithClient(client EventBridgeClientAPI) Service {
	return &service{client: client}
}

// Expression builds the cron expression for a frequency and a UTC time of day.
func Expression(frequency string, hour, minute int) (string, error) {
	if hour < 0 || hour > 23 {
		return "", fmt.Errorf("%w: hour %d must be between 0 and 23", ErrInvalidSchedule, hour)
	}
	if minute < 0 || minute > 59 {
		return "", fmt.Errorf("%w: minute %d must be between 0 and 59", ErrInvalidSchedule, minute)
	}
	switch frequency {
	case model.ScheduleDaily:
		return fmt.Sprintf("cron(%d %d ? * * *)", minute, hour), nil
	case model.ScheduleWeekly:
		return fmt.Sprintf("cron(%d %d ? * SUN *)", minute, hour), nil
	default:
		return "", fmt.Errorf("%w: frequency %q", ErrInvalidSchedule, frequency)
	}
}

func (s *service) Apply(ctx context.Context, req Request) (Applied, error) {
	expr, err := Expression(req.Frequency, req.Hour, req.Minute)
	if err != nil {
		return Applied{}, err
	}

	out, err := s.client.PutRule(ctx, &eventbridge.PutRuleInput{
		Name:               aws.String(RuleName),
		ScheduleExpression: aws.String(expr),
		State:              ebtypes.RuleStateEnabled,
		Description:        aws.String("Runs the check42 account hygiene checks"),
	})
	if err != nil {
		return Applied{}, fmt.Errorf("failed to put rule %s: %w", RuleName, err)
	}
	applied := Applied{RuleARN: aws.ToString(out.RuleArn), Expression: expr}
	log.Ctx(ctx).Info().Str("rule", RuleName).Str("expression", expr).Msg("schedule updated")

	if req.TargetARN == "" {
		return applied, nil
	}
	tout, err := s.client.PutTargets(ctx, &eventbridge.PutTargetsInput{
		Rule:    aws.String(RuleName),
		Targets: []ebtypes.Target{{Id: aws.String(targetID), Arn: aws.String(req.TargetARN)}},
	})
	if err != nil {
		return applied, fmt.Errorf("failed to put target on rule %s: %w", RuleName, err)
	}
	if tout.FailedEntryCount > 0 {
		msg := "unknown error"
		if len(tout.FailedEntries) > 0 {
			msg = aws.ToString(tout.FailedEntries[0].ErrorMessage)
		}
		return applied, fmt.Errorf("failed to put target on rule %s: %s", RuleName, msg)
	}
	applied.TargetSet = true
	return applied, nil
}
