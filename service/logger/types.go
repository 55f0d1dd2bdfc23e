package logger

import (
	"context"
	"time"

	"github.com/thirukguru/check42/model"
)

// AppendBackOffSchedule is the delay before each append attempt.
var AppendBackOffSchedule = []time.Duration{
	0,
	50 * time.Millisecond,
	250 * time.Millisecond,
	1 * time.Second,
}

// Repository persists log records.
type Repository interface {
	Append(ctx context.Context, record model.LogRecord) error
}

// Summary counts the records of one Log call.
type Summary struct {
	Written int
	Failed  int
}

// Options tune record creation and retries. Zero values take the defaults.
type Options struct {
	BackOff []time.Duration
	Now     func() time.Time
	NewID   func() string
}

type service struct {
	repo    Repository
	backOff []time.Duration
	now     func() time.Time
	newID   func() string
}

// Service writes failing outcomes to the audit log.
type Service interface {
	Log(ctx context.Context, outcomes []model.Outcome) Summary
}
