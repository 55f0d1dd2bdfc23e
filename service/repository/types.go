package repository

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/thirukguru/check42/model"
)

// DefaultTablePrefix names the tables of a default installation.
const DefaultTablePrefix = "check42"

// ErrNotFound is returned when an update targets a missing item.
var ErrNotFound = errors.New("item not found")

// DynamoDBClientAPI defines the DynamoDB client methods used by the repositories.
type DynamoDBClientAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Tables holds the table names of an installation.
type Tables struct {
	Checks   string
	Settings string
	Logs     string
}

// Checks reads and toggles check definitions.
type Checks interface {
	List(ctx context.Context) ([]model.CheckDefinition, error)
	SetEnabled(ctx context.Context, id string, enabled bool) error
}

// Settings reads and writes the singleton account settings.
type Settings interface {
	Get(ctx context.Context) (model.AccountSettings, bool, error)
	Put(ctx context.Context, s model.AccountSettings) error
	SetSessionToken(ctx context.Context, id, token string) error
	SetPassword(ctx context.Context, id, hash string) error
}

// Logs appends and lists audit log records.
type Logs interface {
	Append(ctx context.Context, record model.LogRecord) error
	Recent(ctx context.Context, limit int) ([]model.LogRecord, error)
}

type checks struct {
	client DynamoDBClientAPI
	table  string
}

type settings struct {
	client DynamoDBClientAPI
	table  string
}

type logs struct {
	client DynamoDBClientAPI
	table  string
}
