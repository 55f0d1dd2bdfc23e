// Package repository stores check definitions, account settings and log records in DynamoDB.
package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
	"github.com/thirukguru/check42/model"
)

// TableNames derives the table names from a prefix.
func TableNames(prefix string) Tables {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultTablePrefix
	}
	return Tables{
		Checks:   prefix + "_checks",
		Settings: prefix + "_settings",
		Logs:     prefix + "_log",
	}
}

// NewClient creates a DynamoDB client.
func NewClient(cfg aws.Config) DynamoDBClientAPI {
	return dynamodb.NewFromConfig(cfg)
}

// NewChecks creates the check definition repository.
func NewChecks(client DynamoDBClientAPI, t Tables) Checks {
	return &checks{client: client, table: t.Checks}
}

// NewSettings creates the account settings repository.
func NewSettings(client DynamoDBClientAPI, t Tables) Settings {
	return &settings{client: client, table: t.Settings}
}

// NewLogs creates the log record repository.
func NewLogs(client DynamoDBClientAPI, t Tables) Logs {
	return &logs{client: client, table: t.Logs}
}

func (c *checks) List(ctx context.Context) ([]model.CheckDefinition, error) {
	var defs []model.CheckDefinition
	if err := scanAll(ctx, c.client, c.table, &defs); err != nil {
		return nil, err
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Name != defs[j].Name {
			return defs[i].Name < defs[j].Name
		}
		return defs[i].ID < defs[j].ID
	})
	return defs, nil
}

func (c *checks) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return updateByID(ctx, c.client, c.table, id, expression.Set(expression.Name("enabled"), expression.Value(enabled)))
}

func (s *settings) Get(ctx context.Context) (model.AccountSettings, bool, error) {
	var all []model.AccountSettings
	if err := scanAll(ctx, s.client, s.table, &all); err != nil {
		return model.AccountSettings{}, false, err
	}
	if len(all) == 0 {
		return model.AccountSettings{}, false, nil
	}
	if len(all) > 1 {
		log.Ctx(ctx).Warn().Int("records", len(all)).Str("table", s.table).Msg("more than one settings record, using the first")
	}
	return all[0], true, nil
}

func (s *settings) Put(ctx context.Context, v model.AccountSettings) error {
	return putItem(ctx, s.client, s.table, v)
}

func (s *settings) SetSessionToken(ctx context.Context, id, token string) error {
	return updateByID(ctx, s.client, s.table, id, expression.Set(expression.Name("session_token"), expression.Value(token)))
}

func (s *settings) SetPassword(ctx context.Context, id, hash string) error {
	return updateByID(ctx, s.client, s.table, id, expression.Set(expression.Name("password"), expression.Value(hash)))
}

func (l *logs) Append(ctx context.Context, record model.LogRecord) error {
	return putItem(ctx, l.client, l.table, record)
}

// Recent returns up to limit records, newest first. A limit <= 0 returns all.
func (l *logs) Recent(ctx context.Context, limit int) ([]model.LogRecord, error) {
	var records []model.LogRecord
	if err := scanAll(ctx, l.client, l.table, &records); err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func scanAll(ctx context.Context, client DynamoDBClientAPI, table string, out any) error {
	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(client, &dynamodb.ScanInput{TableName: aws.String(table)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", table, err)
		}
		items = append(items, page.Items...)
	}
	if err := attributevalue.UnmarshalListOfMaps(items, out); err != nil {
		return fmt.Errorf("failed to decode %s items: %w", table, err)
	}
	return nil
}

func putItem(ctx context.Context, client DynamoDBClientAPI, table string, v any) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s item: %w", table, err)
	}
	if _, err := client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("failed to put %s item: %w", table, err)
	}
	return nil
}

func updateByID(ctx context.Context, client DynamoDBClientAPI, table, id string, update expression.UpdateBuilder) error {
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("id"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build update for %s: %w", table, err)
	}

	_, err = client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return fmt.Errorf("%w: %s %s", ErrNotFound, table, id)
		}
		return fmt.Errorf("failed to update %s item %s: %w", table, id, err)
	}
	return nil
}
