package output

import (
	"io"

	"github.com/thirukguru/check42/model"
	"github.com/thirukguru/check42/service/schedule"
	"github.com/thirukguru/check42/service/storage"
)

// Format represents the output format type
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// maxCell bounds the width of free-text table cells.
const maxCell = 60

// RunReport is the JSON document printed after a run.
type RunReport struct {
	AccountID   string          `json:"account_id"`
	GeneratedAt string          `json:"generated_at"`
	Summary     RunSummary      `json:"summary"`
	Outcomes    []OutcomeReport `json:"outcomes"`
}

// RunSummary counts outcomes by status.
type RunSummary struct {
	ChecksRun int `json:"checks_run"`
	Passed    int `json:"passed"`
	Failed    int `json:"failed"`
	Errored   int `json:"errored"`
}

// OutcomeReport is one outcome in a RunReport.
type OutcomeReport struct {
	Check      string       `json:"check"`
	CheckID    string       `json:"check_id"`
	Status     string       `json:"status"`
	Muted      bool         `json:"muted"`
	ErrorKind  string       `json:"error_kind,omitempty"`
	Error      string       `json:"error,omitempty"`
	Message    string       `json:"message,omitempty"`
	Items      []model.Item `json:"items,omitempty"`
	DurationMs int64        `json:"duration_ms"`
}

// service is the internal implementation
type service struct {
	format Format
	w      io.Writer
}

// Service defines the interface for output operations
type Service interface {
	RenderOutcomes(accountID string, outcomes []model.Outcome) error
	RenderMessage(msg model.Message) error
	RenderChecks(defs []model.CheckDefinition) error
	RenderSettings(s model.AccountSettings) error
	RenderSchedule(applied schedule.Applied) error
	RenderRuns(runs []storage.RunSummary) error
	RenderRun(run storage.RunSummary, outcomes []storage.OutcomeSnapshot) error
	RenderOpenChecks(checks []storage.CheckStatus) error
	RenderLogs(records []model.LogRecord) error
}
