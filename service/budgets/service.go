// Package budgets reports whether any AWS Budget is configured.
package budgets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/thirukguru/check42/shared/awserr"
)

// NewService creates a new budgets service for accountID.
func NewService(cfg aws.Config, accountID string) Service {
	return &service{
		client:    budgets.NewFromConfig(cfg, func(o *budgets.Options) { o.Region = "us-east-1" }),
		accountID: accountID,
	}
}

// NewServiceWithClient creates a new budgets service with a provided client (for testing).
func NewServiceWithClient(client BudgetsClientAPI, accountID string) Service {
	return &service{client: client, accountID: accountID}
}

// CountBudgets returns the number of budgets. NotFoundException means zero.
func (s *service) CountBudgets(ctx context.Context) (int, error) {
	count := 0
	paginator := budgets.NewDescribeBudgetsPaginator(s.client, &budgets.DescribeBudgetsInput{
		AccountId: aws.String(s.accountID),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			if awserr.HasCode(err, "NotFoundException") {
				return count, nil
			}
			return 0, fmt.Errorf("failed to describe budgets: %w", err)
		}
		count += len(page.Budgets)
	}
	return count, nil
}
