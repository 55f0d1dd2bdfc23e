package schedule

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
)

// RuleName is the EventBridge rule that triggers a run.
const RuleName = "DailyBestPracticesCheck"

// targetID identifies the run target on the rule.
const targetID = "check42-run"

// ErrInvalidSchedule is returned for an unknown frequency or an out of range time.
var ErrInvalidSchedule = errors.New("invalid schedule")

// EventBridgeClientAPI is the interface for the AWS EventBridge client methods used by the service.
type EventBridgeClientAPI interface {
	PutRule(ctx context.Context, params *eventbridge.PutRuleInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutRuleOutput, error)
	PutTargets(ctx context.Context, params *eventbridge.PutTargetsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutTargetsOutput, error)
}

// Request describes when runs should be triggered.
type Request struct {
	Frequency string
	Hour      int
	Minute    int
	TargetARN string
}

// Applied is the rule state after an update.
type Applied struct {
	RuleARN    string
	Expression string
	TargetSet  bool
}

type service struct {
	client EventBridgeClientAPI
}

// Service manages the scheduled run rule.
type Service interface {
	Apply(ctx context.Context, req Request) (Applied, error)
}
