package flag

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/thirukguru/check42/model"
	"github.com/thirukguru/check42/service/repository"
	"github.com/thirukguru/check42/service/runner"
)

// NewService creates a new flag service.
func NewService() Service {
	return &service{}
}

// GetParsedFlags parses the command line. The first positional argument selects the
// subcommand and the rest are its arguments.
func (s *service) GetParsedFlags() (model.Flags, error) {
	profile := pflag.StringP("profile", "p", "", "AWS profile to use")
	region := pflag.StringP("region", "r", "", "AWS region for the control plane clients")
	tablePrefix := pflag.String("table-prefix", envOr(EnvTablePrefix, repository.DefaultTablePrefix), "DynamoDB table name prefix")
	templatesDir := pflag.String("templates-dir", os.Getenv(EnvTemplatesDir), "Local directory with override templates")
	templatesBucket := pflag.String("templates-bucket", os.Getenv(EnvTemplatesBucket), "S3 bucket with override templates")
	templatesPrefix := pflag.String("templates-prefix", "", "Key prefix of the override templates in the bucket")
	workers := pflag.Int("workers", runner.DefaultWorkers, "Number of checks executed concurrently")
	checkTimeout := pflag.Duration("check-timeout", runner.DefaultCheckTimeout, "Time limit for a single check")
	maxAttempts := pflag.Int("max-attempts", 0, "Maximum SDK attempts per AWS call (default 5)")
	subject := pflag.String("subject", "", "Notification subject")
	logBackend := pflag.String("log-backend", model.LogBackendDynamoDB, "Where failing outcomes are logged (dynamodb or sqlite)")
	dbPath := pflag.String("db-path", "", "Custom SQLite database path (default ~/.check42/history.db)")
	metrics := pflag.Bool("metrics", false, "Publish run metrics to CloudWatch")
	dryRun := pflag.Bool("dry-run", false, "Print the compiled message without logging or sending it")
	noStore := pflag.Bool("no-store", false, "Do not save the run in the local history database")
	output := pflag.StringP("output", "o", model.OutputTable, "Output format (table or json)")
	logLevel := pflag.String("log-level", envOr(EnvLogLevel, "info"), "Log level (debug, info, warn, error)")
	version := pflag.BoolP("version", "v", false, "Show version information")

	subscriber := pflag.String("subscriber", "", "Report recipient: e-mail address or SNS topic ARN")
	sender := pflag.String("sender", "", "Verified SES sender address")
	schedule := pflag.String("schedule", "", "Run frequency (daily or weekly)")
	regions := pflag.String("regions", "", "Comma-separated default regions")
	hour := pflag.Int("hour", 8, "UTC hour of the scheduled run")
	minute := pflag.Int("minute", 0, "Minute of the scheduled run")
	targetARN := pflag.String("target-arn", "", "ARN invoked by the schedule rule")
	username := pflag.String("username", "", "Login username (the subscriber)")
	password := pflag.String("password", "", "Login password")
	limit := pflag.Int("limit", 20, "Number of rows to list")
	purgeDays := pflag.Int("days", 90, "Purge history older than this many days")

	pflag.Parse()

	if *output != model.OutputTable && *output != model.OutputJSON {
		return model.Flags{}, fmt.Errorf("invalid output format %q", *output)
	}
	if *logBackend != model.LogBackendDynamoDB && *logBackend != model.LogBackendSQLite {
		return model.Flags{}, fmt.Errorf("invalid log backend %q", *logBackend)
	}

	command, args := DefaultCommand, pflag.Args()
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	flags := model.Flags{
		Command:         command,
		Args:            args,
		Profile:         *profile,
		Region:          *region,
		TablePrefix:     *tablePrefix,
		TemplatesDir:    *templatesDir,
		TemplatesBucket: *templatesBucket,
		TemplatesPrefix: *templatesPrefix,
		Workers:         *workers,
		CheckTimeout:    *checkTimeout,
		MaxAttempts:     *maxAttempts,
		Subject:         *subject,
		LogBackend:      *logBackend,
		DBPath:          *dbPath,
		Metrics:         *metrics,
		DryRun:          *dryRun,
		NoStore:         *noStore,
		Output:          *output,
		LogLevel:        *logLevel,
		Version:         *version,
		Subscriber:      *subscriber,
		Sender:          *sender,
		Schedule:        *schedule,
		Regions:         splitList(*regions),
		Hour:            *hour,
		Minute:          *minute,
		TargetARN:       *targetARN,
		Username:        *username,
		Password:        *password,
		Limit:           *limit,
		PurgeDays:       *purgeDays,
	}

	return flags, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, r := range strings.Split(v, ",") {
		r = strings.TrimSpace(r)
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}
