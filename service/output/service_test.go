package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thirukguru/check42/model"
	"github.com/thirukguru/check42/service/storage"
)

func sampleOutcomes() []model.Outcome {
	return []model.Outcome{
		{Check: model.CheckDefinition{ID: "a", Name: "NO_MFA_ON_ROOT"}, Status: model.StatusFail, Finding: model.Finding{Message: "No MFA on Root"}},
		{Check: model.CheckDefinition{ID: "b", Name: "PUBLIC_BUCKETS", Muted: true}, Status: model.StatusFail,
			Finding: model.Finding{Items: []model.Item{{"bucket_name": "assets"}}}},
		{Check: model.CheckDefinition{ID: "c", Name: "NO_BUDGET"}, Status: model.StatusError,
			Err: errors.New("access denied"), ErrorKind: model.ErrorKindCollaborator},
		{Check: model.CheckDefinition{ID: "d", Name: "NO_PASSWORD_POLICY"}, Status: model.StatusPass, Duration: 1500 * time.Millisecond},
	}
}

func TestBuildRunReport(t *testing.T) {
	report := BuildRunReport("123456789012", sampleOutcomes(), "2026-10-19T07:00:00Z")

	assert.Equal(t, RunSummary{ChecksRun: 4, Passed: 1, Failed: 2, Errored: 1}, report.Summary)
	require.Len(t, report.Outcomes, 4)
	assert.True(t, report.Outcomes[1].Muted)
	assert.Equal(t, "access denied", report.Outcomes[2].Error)
	assert.Equal(t, "collaborator", report.Outcomes[2].ErrorKind)
	assert.Equal(t, int64(1500), report.Outcomes[3].DurationMs)
}

func TestRenderOutcomesJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewServiceWithWriter("json", &buf).RenderOutcomes("123456789012", sampleOutcomes()))

	var report RunReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, "123456789012", report.AccountID)
	assert.Equal(t, 2, report.Summary.Failed)
	assert.Equal(t, "assets", report.Outcomes[1].Items[0]["bucket_name"])
}

func TestRenderOutcomesTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewServiceWithWriter("table", &buf).RenderOutcomes("123456789012", sampleOutcomes()))

	out := buf.String()
	assert.Contains(t, out, "NO_MFA_ON_ROOT")
	assert.Contains(t, out, "bucket_name: assets")
	assert.Contains(t, out, "collaborator: access denied")
	assert.Contains(t, out, "4 checks: 1 passed, 2 failed, 1 errored")
}

func TestRenderSettingsHidesSecrets(t *testing.T) {
	settings := model.AccountSettings{ID: "id-1", Subscriber: "ops@example.com", Password: "hash", SessionToken: "token"}

	var buf bytes.Buffer
	require.NoError(t, NewServiceWithWriter("json", &buf).RenderSettings(settings))
	assert.NotContains(t, buf.String(), "hash")
	assert.NotContains(t, buf.String(), "token")

	buf.Reset()
	require.NoError(t, NewServiceWithWriter("table", &buf).RenderSettings(settings))
	assert.NotContains(t, buf.String(), "hash")
	assert.Contains(t, buf.String(), "ops@example.com")
}

func TestRenderRunsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	svc := NewServiceWithWriter("table", &buf)

	require.NoError(t, svc.RenderRuns(nil))
	assert.Contains(t, buf.String(), "No stored runs.")

	buf.Reset()
	require.NoError(t, svc.RenderRuns([]storage.RunSummary{{RunID: 7, RunTimestamp: time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC), ChecksRun: 3, Failed: 1}}))
	assert.Contains(t, buf.String(), "2026-10-19 07:00")

	buf.Reset()
	require.NoError(t, svc.RenderLogs([]model.LogRecord{{Timestamp: "2026-10-19T07:00:00Z", CheckName: "PUBLIC_BUCKETS", Message: "bucket_name: a\nbucket_name: b"}}))
	assert.Contains(t, buf.String(), "bucket_name: a ...")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
