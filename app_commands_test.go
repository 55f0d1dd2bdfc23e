package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thirukguru/check42/model"
	"github.com/thirukguru/check42/service/auth"
	"github.com/thirukguru/check42/service/output"
	"github.com/thirukguru/check42/service/schedule"
	"github.com/thirukguru/check42/service/storage"
)

const checkID = "5d6e7f80-9a1b-4c2d-8e3f-4a5b6c7d8e9f"

func TestChecksCommand(t *testing.T) {
	checks := &fakeChecks{defs: []model.CheckDefinition{{ID: checkID, Name: "NO_MFA_ON_ROOT", Enabled: true}}}
	var buf bytes.Buffer
	out := output.NewServiceWithWriter("table", &buf)

	require.NoError(t, runChecksCommand(context.Background(), checks, out, nil))
	assert.Contains(t, buf.String(), "NO_MFA_ON_ROOT")

	require.NoError(t, runChecksCommand(context.Background(), checks, out, []string{"disable", checkID}))
	assert.False(t, checks.defs[0].Enabled)

	require.NoError(t, runChecksCommand(context.Background(), checks, out, []string{"enable", checkID}))
	assert.True(t, checks.defs[0].Enabled)

	assert.ErrorContains(t, runChecksCommand(context.Background(), checks, out, []string{"enable", "check-1"}), "uuid4")
	assert.Error(t, runChecksCommand(context.Background(), checks, out, []string{"enable"}))
	assert.Error(t, runChecksCommand(context.Background(), checks, out, []string{"mute", checkID}))
}

func TestSettingsCommand(t *testing.T) {
	store := &fakeSettings{}
	var buf bytes.Buffer
	out := output.NewServiceWithWriter("table", &buf)

	assert.ErrorIs(t, runSettingsCommand(context.Background(), store, out, model.Flags{Args: []string{"show"}}), ErrNoSettings)

	err := runSettingsCommand(context.Background(), store, out, model.Flags{
		Args:       []string{"set"},
		Subscriber: "ops@example.com",
		Regions:    []string{"us-east-1", "eu-west-1"},
	})
	require.NoError(t, err)
	assert.True(t, model.IsUUID4(store.s.ID))
	assert.Equal(t, model.ScheduleDaily, store.s.Schedule)
	assert.JSONEq(t, `{"regions":["us-east-1","eu-west-1"]}`, store.s.Defaults)

	id := store.s.ID
	require.NoError(t, runSettingsCommand(context.Background(), store, out, model.Flags{Args: []string{"set"}, Schedule: "weekly"}))
	assert.Equal(t, id, store.s.ID)
	assert.Equal(t, "weekly", store.s.Schedule)
	assert.Equal(t, "ops@example.com", store.s.Subscriber)

	err = runSettingsCommand(context.Background(), store, out, model.Flags{Args: []string{"set"}, Schedule: "hourly"})
	assert.ErrorContains(t, err, "invalid schedule")
	assert.Equal(t, 2, store.puts)
}

type fakeScheduler struct{ req schedule.Request }

func (f *fakeScheduler) Apply(_ context.Context, req schedule.Request) (schedule.Applied, error) {
	f.req = req
	expr, err := schedule.Expression(req.Frequency, req.Hour, req.Minute)
	return schedule.Applied{Expression: expr}, err
}

func TestScheduleCommand(t *testing.T) {
	sched := &fakeScheduler{}
	var buf bytes.Buffer
	out := output.NewServiceWithWriter("table", &buf)

	require.NoError(t, runScheduleCommand(context.Background(), sched, out, model.Flags{Hour: 6, Minute: 30}))
	assert.Equal(t, model.ScheduleDaily, sched.req.Frequency)
	assert.Contains(t, buf.String(), "cron(30 6 ? * * *)")

	assert.ErrorIs(t, runScheduleCommand(context.Background(), sched, out, model.Flags{Schedule: "weekly", Hour: 30}), schedule.ErrInvalidSchedule)
}

func TestLoginCommand(t *testing.T) {
	s := validSettings
	s.Password = auth.HashPassword("s3cret")
	store := &fakeSettings{s: s, found: true}
	svc := auth.NewService(store)

	var buf bytes.Buffer
	require.NoError(t, runLoginCommand(context.Background(), svc, &buf, model.Flags{Username: "ops@example.com", Password: "s3cret"}))
	assert.Equal(t, store.s.SessionToken+"\n", buf.String())
	assert.True(t, model.IsUUID4(store.s.SessionToken))

	assert.ErrorIs(t, runLoginCommand(context.Background(), svc, &buf, model.Flags{Username: "ops@example.com", Password: "wrong"}), auth.ErrInvalidCredentials)

	buf.Reset()
	require.NoError(t, runLoginCommand(context.Background(), svc, &buf, model.Flags{Args: []string{"set-password"}, Password: "rotated"}))
	assert.Equal(t, auth.HashPassword("rotated"), store.s.Password)
}

func TestLogsCommand(t *testing.T) {
	logs := &memLogs{records: []model.LogRecord{{Timestamp: "2026-10-19T07:00:00Z", CheckName: "NO_MFA_ON_ROOT", Message: "No MFA on Root"}}}
	var buf bytes.Buffer
	require.NoError(t, runLogsCommand(context.Background(), logs, output.NewServiceWithWriter("table", &buf), 10))
	assert.Contains(t, buf.String(), "No MFA on Root")
}

func TestHistoryAndDBCommands(t *testing.T) {
	store, err := storage.NewService(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	runID, err := store.SaveRun(ctx, storage.SaveRunInput{
		RunUUID:   "run-uuid-1",
		AccountID: "123456789012",
		Duration:  time.Second,
		Outcomes: []model.Outcome{
			{Check: model.CheckDefinition{ID: checkID, Name: "NO_MFA_ON_ROOT"}, Status: model.StatusFail, Finding: model.Finding{Message: "No MFA on Root"}},
		},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	out := output.NewServiceWithWriter("table", &buf)

	require.NoError(t, runHistoryCommand(ctx, store, out, model.Flags{Args: []string{"list"}, Limit: 5}))
	assert.Contains(t, buf.String(), "NOTIFIED")

	buf.Reset()
	require.NoError(t, runHistoryCommand(ctx, store, out, model.Flags{Args: []string{"show", "run-uuid-1"}}))
	assert.Contains(t, buf.String(), "NO_MFA_ON_ROOT")

	buf.Reset()
	require.NoError(t, runHistoryCommand(ctx, store, out, model.Flags{Args: []string{"show", "1"}}))
	assert.Contains(t, buf.String(), "run-uuid-1")
	assert.Equal(t, int64(1), runID)

	buf.Reset()
	require.NoError(t, runHistoryCommand(ctx, store, out, model.Flags{Args: []string{"open", "123456789012"}}))
	assert.Contains(t, buf.String(), "NO_MFA_ON_ROOT")

	assert.ErrorContains(t, runHistoryCommand(ctx, store, out, model.Flags{Args: []string{"show", "99"}}), "not found")
	assert.Error(t, runHistoryCommand(ctx, store, out, model.Flags{}))

	require.NoError(t, runDBCommand(ctx, store, model.Flags{Args: []string{"vacuum"}}))
	assert.Error(t, runDBCommand(ctx, store, model.Flags{Args: []string{"purge"}, PurgeDays: 0}))
	assert.Error(t, runDBCommand(ctx, store, model.Flags{Args: []string{"reindex"}}))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	ll, err := newLogger("warn", &buf, false)
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, ll.GetLevel())

	ll.Info().Msg("hidden")
	ll.Warn().Str("check", "NO_MFA_ON_ROOT").Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"check":"NO_MFA_ON_ROOT"`)

	_, err = newLogger("loud", &buf, false)
	assert.Error(t, err)
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf, model.VersionInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-10-19"})
	assert.Equal(t, "check42 1.2.3 (commit abc123, built 2026-10-19)\n", buf.String())
}
