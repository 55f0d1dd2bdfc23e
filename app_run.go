package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/thirukguru/check42/model"
	"github.com/thirukguru/check42/service/compiler"
	"github.com/thirukguru/check42/service/executor"
	"github.com/thirukguru/check42/service/logger"
	"github.com/thirukguru/check42/service/metrics"
	"github.com/thirukguru/check42/service/notifier"
	"github.com/thirukguru/check42/service/output"
	"github.com/thirukguru/check42/service/regions"
	"github.com/thirukguru/check42/service/repository"
	"github.com/thirukguru/check42/service/runner"
	"github.com/thirukguru/check42/service/storage"
	awssts "github.com/thirukguru/check42/service/sts"
	"github.com/thirukguru/check42/service/templates"
	"github.com/thirukguru/check42/shared/spinner"
)

// ErrNoSettings aborts a run that has nobody to notify.
var ErrNoSettings = errors.New("no account settings configured")

// auditDeps are the collaborators of one audit run.
type auditDeps struct {
	checks    repository.Checks
	settings  repository.Settings
	runner    runner.Service
	templates *templates.Repository
	compiler  compiler.Service
	logger    logger.Service
	notifier  notifier.Service
	output    output.Service

	// optional
	history storage.Service
	metrics metrics.Service

	accountID string
	version   string
	now       func() time.Time
	newID     func() string
}

// auditResult summarizes a finished run.
type auditResult struct {
	Result   runner.Result
	Message  model.Message
	Logged   logger.Summary
	Notified bool
	RunID    int64
}

func runAudit(ctx context.Context, flags model.Flags, versionInfo model.VersionInfo) error {
	cfg, err := loadAWSConfig(ctx, flags)
	if err != nil {
		return err
	}

	if flags.Output != model.OutputJSON {
		spinner.StartSpinner("Running account hygiene checks...")
		defer spinner.StopSpinner()
	}

	accountID, err := awssts.NewService(cfg).GetAccountID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get account ID: %w", err)
	}
	ctx = log.Ctx(ctx).With().Str("account", accountID).Logger().WithContext(ctx)

	client := repository.NewClient(cfg)
	tables := repository.TableNames(flags.TablePrefix)

	logs, closeLogs, err := logRepository(flags, client, tables)
	if err != nil {
		return err
	}
	defer closeLogs()

	var history storage.Service
	if !flags.NoStore {
		history, err = storage.NewService(flags.DBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer history.Close()
	}

	var templateStore templates.Store
	switch {
	case flags.TemplatesBucket != "":
		templateStore = templates.Chain{templates.NewS3Store(cfg, flags.TemplatesBucket, flags.TemplatesPrefix)}
		if flags.TemplatesDir != "" {
			templateStore = templates.Chain{templates.NewDirStore(flags.TemplatesDir), templateStore}
		}
	case flags.TemplatesDir != "":
		templateStore = templates.NewDirStore(flags.TemplatesDir)
	}

	deps := auditDeps{
		checks:   repository.NewChecks(client, tables),
		settings: repository.NewSettings(client, tables),
		runner: runner.NewService(
			executor.NewRegistry(executor.NewDeps(cfg, accountID)),
			regions.NewService(cfg),
			runner.Options{Workers: flags.Workers, CheckTimeout: flags.CheckTimeout},
		),
		templates: templates.NewRepository(templateStore),
		compiler:  compiler.NewService(compiler.Options{Subject: flags.Subject}),
		logger:    logger.NewService(logs, logger.Options{}),
		notifier:  notifier.NewService(cfg),
		output:    output.NewService(flags.Output),
		history:   history,
		accountID: accountID,
		version:   versionInfo.Version,
	}
	if flags.Metrics {
		deps.metrics = metrics.NewService(cfg)
	}

	_, err = executeAudit(ctx, deps, flags)
	return err
}

// executeAudit loads, runs, logs, compiles and delivers one audit.
func executeAudit(ctx context.Context, d auditDeps, flags model.Flags) (auditResult, error) {
	now := d.now
	if now == nil {
		now = time.Now
	}
	newID := d.newID
	if newID == nil {
		newID = uuid.NewString
	}
	started := now()

	runner.LogState(ctx, runner.StateLoading)
	settings, defs, err := loadAuditInputs(ctx, d)
	if err != nil {
		return auditResult{}, err
	}
	// Templates load before any check runs; a store failure leaves nothing collected.
	set, err := d.templates.Load(ctx, defs)
	if err != nil {
		return auditResult{}, fmt.Errorf("failed to load templates: %w", err)
	}

	var res auditResult
	res.Result = d.runner.Run(ctx, defs, settings)
	outcomes := res.Result.Outcomes

	runner.LogState(ctx, runner.StateCompiling)
	res.Message = d.compiler.Compile(outcomes, set)
	spinner.StopSpinner()

	var notifyErr error
	if flags.DryRun {
		log.Ctx(ctx).Info().Msg("dry run: skipping log records and notification")
	} else {
		runner.LogState(ctx, runner.StateLogging)
		res.Logged = d.logger.Log(ctx, outcomes)

		runner.LogState(ctx, runner.StateNotifying)
		if err := d.notifier.Send(ctx, res.Message, settings.Sender, settings.Subscriber); err != nil {
			notifyErr = fmt.Errorf("failed to send notification: %w", err)
		} else {
			res.Notified = true
		}
	}

	if d.history != nil {
		runID, err := d.history.SaveRun(ctx, storage.SaveRunInput{
			RunUUID:   newID(),
			AccountID: d.accountID,
			Duration:  now().Sub(started),
			Version:   d.version,
			Sections:  res.Message.Sections,
			Notified:  res.Notified,
			Outcomes:  outcomes,
		})
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("failed to save run history")
		}
		res.RunID = runID
	}

	if d.metrics != nil {
		if err := d.metrics.Publish(ctx, outcomes); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("failed to publish metrics")
		}
	}

	if err := d.output.RenderOutcomes(d.accountID, outcomes); err != nil {
		return res, err
	}
	if flags.DryRun {
		if err := d.output.RenderMessage(res.Message); err != nil {
			return res, err
		}
	}

	runner.LogState(ctx, runner.StateDone)
	log.Ctx(ctx).Info().
		Int("checks", len(outcomes)).
		Int("sections", res.Message.Sections).
		Int("logged", res.Logged.Written).
		Int("log_failures", res.Logged.Failed).
		Bool("notified", res.Notified).
		Msg("audit finished")
	return res, notifyErr
}

func loadAuditInputs(ctx context.Context, d auditDeps) (model.AccountSettings, []model.CheckDefinition, error) {
	settings, ok, err := d.settings.Get(ctx)
	if err != nil {
		return model.AccountSettings{}, nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if !ok {
		return model.AccountSettings{}, nil, ErrNoSettings
	}
	if err := settings.Validate(); err != nil {
		return model.AccountSettings{}, nil, fmt.Errorf("invalid settings: %w", err)
	}

	defs, err := d.checks.List(ctx)
	if err != nil {
		return model.AccountSettings{}, nil, fmt.Errorf("failed to load checks: %w", err)
	}
	return settings, defs, nil
}
