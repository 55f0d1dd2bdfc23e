package storage

import (
	"context"
	"time"

	"github.com/thirukguru/check42/model"
)

// Check lifecycle states.
const (
	StatusOpen     = "OPEN"
	StatusResolved = "RESOLVED"
)

// Service defines run history persistence and the local log backend.
type Service interface {
	SaveRun(ctx context.Context, input SaveRunInput) (int64, error)
	RecentRuns(accountID string, limit int) ([]RunSummary, error)
	GetRun(runID int64) (*RunSummary, error)
	GetRunByUUID(runUUID string) (*RunSummary, error)
	ListRunOutcomes(runID int64) ([]OutcomeSnapshot, error)
	OpenChecks(accountID string) ([]CheckStatus, error)
	CheckHistory(checkName string, limit int) ([]CheckEvent, error)

	Append(ctx context.Context, record model.LogRecord) error
	Recent(ctx context.Context, limit int) ([]model.LogRecord, error)

	Vacuum(ctx context.Context) error
	PurgeOlderThan(ctx context.Context, days int) (int64, error)
	Close() error
}

// SaveRunInput is the payload saved for a completed run.
type SaveRunInput struct {
	RunUUID   string
	AccountID string
	Duration  time.Duration
	Version   string
	Sections  int
	Notified  bool
	Outcomes  []model.Outcome
}

// RunSummary provides compact run metadata.
type RunSummary struct {
	RunID        int64
	RunUUID      string
	AccountID    string
	RunTimestamp time.Time
	DurationMs   int64
	ChecksRun    int
	Passed       int
	Failed       int
	Errored      int
	Sections     int
	Notified     bool
	Version      string
}

// OutcomeSnapshot is one check's stored outcome within a run.
type OutcomeSnapshot struct {
	CheckID    string
	CheckName  string
	Status     string
	ErrorKind  string
	Error      string
	Muted      bool
	ItemCount  int
	Finding    model.Finding
	DurationMs int64
}

// CheckStatus tracks how long a check has been failing.
type CheckStatus struct {
	CheckName   string
	FirstFailed time.Time
	LastFailed  time.Time
	Status      string
}

// CheckEvent is a check's status at a given run.
type CheckEvent struct {
	RunID        int64
	RunTimestamp time.Time
	Status       string
	ItemCount    int
}
