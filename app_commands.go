package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/thirukguru/check42/model"
	"github.com/thirukguru/check42/service/auth"
	"github.com/thirukguru/check42/service/output"
	"github.com/thirukguru/check42/service/repository"
	"github.com/thirukguru/check42/service/schedule"
	"github.com/thirukguru/check42/service/storage"
)

func runChecksCommand(ctx context.Context, checks repository.Checks, out output.Service, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "list":
		defs, err := checks.List(ctx)
		if err != nil {
			return err
		}
		return out.RenderChecks(defs)
	case "enable", "disable":
		if len(args) < 2 {
			return fmt.Errorf("usage: check42 checks %s <check-id>", sub)
		}
		id := args[1]
		if !model.IsUUID4(id) {
			return fmt.Errorf("invalid check id %q: expected uuid4 format", id)
		}
		if err := checks.SetEnabled(ctx, id, sub == "enable"); err != nil {
			return fmt.Errorf("failed to %s check %s: %w", sub, id, err)
		}
		defs, err := checks.List(ctx)
		if err != nil {
			return err
		}
		return out.RenderChecks(defs)
	default:
		return fmt.Errorf("unsupported checks command: %s (expected list, enable or disable)", sub)
	}
}

func runSettingsCommand(ctx context.Context, settings repository.Settings, out output.Service, flags model.Flags) error {
	sub := "show"
	if len(flags.Args) > 0 {
		sub = flags.Args[0]
	}

	current, ok, err := settings.Get(ctx)
	if err != nil {
		return err
	}

	switch sub {
	case "show":
		if !ok {
			return ErrNoSettings
		}
		return out.RenderSettings(current)
	case "set":
		updated, err := applySettings(current, ok, flags)
		if err != nil {
			return err
		}
		if err := settings.Put(ctx, updated); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		return out.RenderSettings(updated)
	default:
		return fmt.Errorf("unsupported settings command: %s (expected show or set)", sub)
	}
}

// applySettings merges the given flags into the stored settings and validates the result.
func applySettings(current model.AccountSettings, exists bool, flags model.Flags) (model.AccountSettings, error) {
	if !exists {
		current = model.AccountSettings{ID: uuid.NewString(), Schedule: model.ScheduleDaily}
	}
	if flags.Subscriber != "" {
		current.Subscriber = flags.Subscriber
	}
	if flags.Sender != "" {
		current.Sender = flags.Sender
	}
	if flags.Schedule != "" {
		current.Schedule = flags.Schedule
	}
	if len(flags.Regions) > 0 {
		defaults, err := current.ParsedDefaults()
		if err != nil {
			return model.AccountSettings{}, err
		}
		defaults.Regions = flags.Regions
		raw, err := json.Marshal(defaults)
		if err != nil {
			return model.AccountSettings{}, err
		}
		current.Defaults = string(raw)
	}
	if err := current.Validate(); err != nil {
		return model.AccountSettings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return current, nil
}

func runScheduleCommand(ctx context.Context, svc schedule.Service, out output.Service, flags model.Flags) error {
	frequency := flags.Schedule
	if frequency == "" {
		frequency = model.ScheduleDaily
	}
	applied, err := svc.Apply(ctx, schedule.Request{
		Frequency: frequency,
		Hour:      flags.Hour,
		Minute:    flags.Minute,
		TargetARN: flags.TargetARN,
	})
	if err != nil {
		return err
	}
	return out.RenderSchedule(applied)
}

func runLoginCommand(ctx context.Context, svc auth.Service, w io.Writer, flags model.Flags) error {
	if len(flags.Args) > 0 && flags.Args[0] == "set-password" {
		if err := svc.SetPassword(ctx, flags.Password); err != nil {
			return err
		}
		fmt.Fprintln(w, "Password updated.")
		return nil
	}
	if len(flags.Args) > 0 {
		return fmt.Errorf("unsupported login command: %s (expected set-password)", flags.Args[0])
	}

	token, err := svc.Login(ctx, flags.Username, flags.Password)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, token)
	return nil
}

func runLogsCommand(ctx context.Context, logs repository.Logs, out output.Service, limit int) error {
	records, err := logs.Recent(ctx, limit)
	if err != nil {
		return err
	}
	return out.RenderLogs(records)
}

func runHistoryCommand(ctx context.Context, store storage.Service, out output.Service, flags model.Flags) error {
	if len(flags.Args) == 0 {
		return fmt.Errorf("usage: check42 history <list|show|open|check>")
	}

	switch sub := flags.Args[0]; sub {
	case "list":
		runs, err := store.RecentRuns("", flags.Limit)
		if err != nil {
			return err
		}
		return out.RenderRuns(runs)
	case "show":
		if len(flags.Args) < 2 {
			return fmt.Errorf("usage: check42 history show <run-id|run-uuid>")
		}
		run, err := findRun(store, flags.Args[1])
		if err != nil {
			return err
		}
		outcomes, err := store.ListRunOutcomes(run.RunID)
		if err != nil {
			return err
		}
		return out.RenderRun(*run, outcomes)
	case "open":
		if len(flags.Args) < 2 {
			return fmt.Errorf("usage: check42 history open <account-id>")
		}
		open, err := store.OpenChecks(flags.Args[1])
		if err != nil {
			return err
		}
		return out.RenderOpenChecks(open)
	case "check":
		if len(flags.Args) < 2 {
			return fmt.Errorf("usage: check42 history check <check-name>")
		}
		events, err := store.CheckHistory(flags.Args[1], flags.Limit)
		if err != nil {
			return err
		}
		runs := make([]storage.RunSummary, 0, len(events))
		for _, e := range events {
			s := storage.RunSummary{RunID: e.RunID, RunTimestamp: e.RunTimestamp, ChecksRun: 1}
			switch model.Status(e.Status) {
			case model.StatusPass:
				s.Passed = 1
			case model.StatusFail:
				s.Failed = 1
			case model.StatusError:
				s.Errored = 1
			}
			runs = append(runs, s)
		}
		return out.RenderRuns(runs)
	default:
		return fmt.Errorf("unsupported history command: %s", sub)
	}
}

// findRun accepts a numeric run id or a run uuid.
func findRun(store storage.Service, ref string) (*storage.RunSummary, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		run, err := store.GetRun(id)
		if err != nil {
			return nil, err
		}
		if run == nil {
			return nil, fmt.Errorf("run %d not found", id)
		}
		return run, nil
	}
	run, err := store.GetRunByUUID(ref)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("run %s not found", ref)
	}
	return run, nil
}

func runDBCommand(ctx context.Context, store storage.Service, flags model.Flags) error {
	if len(flags.Args) == 0 {
		return fmt.Errorf("usage: check42 db <vacuum|purge> [--days N]")
	}

	switch sub := flags.Args[0]; sub {
	case "vacuum":
		return store.Vacuum(ctx)
	case "purge":
		count, err := store.PurgeOlderThan(ctx, flags.PurgeDays)
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d rows\n", count)
		return nil
	default:
		return fmt.Errorf("unsupported db command: %s", sub)
	}
}
