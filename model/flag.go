package model

import "time"

// Flags represents the command line flags and the selected subcommand.
type Flags struct {
	Command string
	Args    []string

	Profile         string
	Region          string
	TablePrefix     string
	TemplatesDir    string
	TemplatesBucket string
	TemplatesPrefix string
	Workers         int
	CheckTimeout    time.Duration
	MaxAttempts     int
	Subject         string
	LogBackend      string
	DBPath          string
	Metrics         bool
	DryRun          bool
	NoStore         bool
	Output          string
	LogLevel        string
	Version         bool

	// settings set
	Subscriber string
	Sender     string
	Schedule   string
	Regions    []string

	// schedule
	Hour      int
	Minute    int
	TargetARN string

	// login
	Username string
	Password string

	// logs, history, db
	Limit     int
	PurgeDays int
}

// Log backends accepted by --log-backend.
const (
	LogBackendDynamoDB = "dynamodb"
	LogBackendSQLite   = "sqlite"
)

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)
