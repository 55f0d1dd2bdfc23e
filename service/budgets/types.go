package budgets

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/budgets"
)

// BudgetsClientAPI defines the AWS Budgets methods used by this service.
type BudgetsClientAPI interface {
	DescribeBudgets(ctx context.Context, params *budgets.DescribeBudgetsInput, optFns ...func(*budgets.Options)) (*budgets.DescribeBudgetsOutput, error)
}

type service struct {
	client    BudgetsClientAPI
	accountID string
}

// Service counts the account's budgets.
type Service interface {
	CountBudgets(ctx context.Context) (int, error)
}
