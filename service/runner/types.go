package runner

import (
	"context"
	"time"

	"github.com/thirukguru/check42/model"
	"github.com/thirukguru/check42/service/catalog"
	"github.com/thirukguru/check42/service/regions"
)

const (
	DefaultWorkers      = 4
	DefaultCheckTimeout = 2 * time.Minute
)

// State is a step of one audit run.
type State string

const (
	StateLoading   State = "loading"
	StateExecuting State = "executing"
	StateCompiling State = "compiling"
	StateLogging   State = "logging"
	StateNotifying State = "notifying"
	StateDone      State = "done"
)

// Options tune the check pool.
type Options struct {
	Workers      int
	CheckTimeout time.Duration
}

// Result is what one pass over the check definitions produced.
type Result struct {
	Outcomes []model.Outcome
	Unknown  []string
	Disabled []string
}

type service struct {
	registry *catalog.Registry
	resolver regions.Service
	opts     Options
}

// Service executes check definitions against the account.
type Service interface {
	Run(ctx context.Context, defs []model.CheckDefinition, settings model.AccountSettings) Result
}
