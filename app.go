// Package main is the entry point for the check42 application.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog"
	"github.com/thirukguru/check42/model"
	"github.com/thirukguru/check42/service/auth"
	awsconfig "github.com/thirukguru/check42/service/aws_config"
	"github.com/thirukguru/check42/service/flag"
	"github.com/thirukguru/check42/service/output"
	"github.com/thirukguru/check42/service/repository"
	"github.com/thirukguru/check42/service/schedule"
	"github.com/thirukguru/check42/service/storage"
	"github.com/thirukguru/check42/shared/banner"
	"github.com/thirukguru/check42/shared/terminal"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags, err := flag.NewService().GetParsedFlags()
	if err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	versionInfo := model.VersionInfo{Version: version, Commit: commit, Date: date}
	if flags.Version {
		printVersion(os.Stdout, versionInfo)
		return nil
	}

	ll, err := newLogger(flags.LogLevel, os.Stderr, terminal.IsTerminal(os.Stderr))
	if err != nil {
		return err
	}
	ctx := ll.WithContext(context.Background())

	if flags.Command == flag.DefaultCommand && flags.Output != model.OutputJSON {
		banner.DrawBannerTitle(versionInfo.Version)
	}

	return dispatch(ctx, flags, versionInfo)
}

func dispatch(ctx context.Context, flags model.Flags, versionInfo model.VersionInfo) error {
	out := output.NewService(flags.Output)

	switch flags.Command {
	case flag.DefaultCommand:
		return runAudit(ctx, flags, versionInfo)
	case "history", "db":
		store, err := storage.NewService(flags.DBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()
		if flags.Command == "history" {
			return runHistoryCommand(ctx, store, out, flags)
		}
		return runDBCommand(ctx, store, flags)
	}

	cfg, err := loadAWSConfig(ctx, flags)
	if err != nil {
		return err
	}
	client := repository.NewClient(cfg)
	tables := repository.TableNames(flags.TablePrefix)

	switch flags.Command {
	case "checks":
		return runChecksCommand(ctx, repository.NewChecks(client, tables), out, flags.Args)
	case "settings":
		return runSettingsCommand(ctx, repository.NewSettings(client, tables), out, flags)
	case "schedule":
		return runScheduleCommand(ctx, schedule.NewService(cfg), out, flags)
	case "login":
		return runLoginCommand(ctx, auth.NewService(repository.NewSettings(client, tables)), os.Stdout, flags)
	case "logs":
		logs, closeFn, err := logRepository(flags, client, tables)
		if err != nil {
			return err
		}
		defer closeFn()
		return runLogsCommand(ctx, logs, out, flags.Limit)
	default:
		return fmt.Errorf("unknown command %q (expected run, checks, settings, schedule, login, logs, history or db)", flags.Command)
	}
}

// newLogger builds the root logger. Terminals get the human-readable console writer.
func newLogger(level string, w io.Writer, console bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

func loadAWSConfig(ctx context.Context, flags model.Flags) (aws.Config, error) {
	cfg, err := awsconfig.NewService().GetAWSCfg(ctx, awsconfig.Options{
		Region:      flags.Region,
		Profile:     flags.Profile,
		MaxAttempts: flags.MaxAttempts,
	})
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// logRepository selects the log backend. The returned func releases it.
func logRepository(flags model.Flags, client repository.DynamoDBClientAPI, tables repository.Tables) (repository.Logs, func(), error) {
	if flags.LogBackend != model.LogBackendSQLite {
		return repository.NewLogs(client, tables), func() {}, nil
	}
	store, err := storage.NewService(flags.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

func printVersion(w io.Writer, v model.VersionInfo) {
	fmt.Fprintf(w, "check42 %s (commit %s, built %s)\n", v.Version, v.Commit, v.Date)
}
