// Package runner dispatches enabled checks to their executors and normalizes the results.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/thirukguru/check42/model"
	"github.com/thirukguru/check42/service/catalog"
	"github.com/thirukguru/check42/service/regions"
	"golang.org/x/sync/errgroup"
)

// NewService creates a runner over a registry. Zero options take the defaults.
func NewService(registry *catalog.Registry, resolver regions.Service, opts Options) Service {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.CheckTimeout <= 0 {
		opts.CheckTimeout = DefaultCheckTimeout
	}
	return &service{registry: registry, resolver: resolver, opts: opts}
}

// LogState records a run state transition.
func LogState(ctx context.Context, state State) {
	log.Ctx(ctx).Debug().Str("state", string(state)).Msg("run state")
}

func (s *service) Run(ctx context.Context, defs []model.CheckDefinition, settings model.AccountSettings) Result {
	LogState(ctx, StateExecuting)

	defaults, err := settings.ParsedDefaults()
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("ignoring invalid settings defaults")
	}

	var (
		result Result
		mu     sync.Mutex
	)

	g := new(errgroup.Group)
	g.SetLimit(s.opts.Workers)

	for _, def := range defs {
		if !def.Enabled {
			result.Disabled = append(result.Disabled, def.Name)
			continue
		}
		entry, ok := s.registry.Lookup(def.Name)
		if !ok {
			log.Ctx(ctx).Warn().Str("check", def.Name).Str("id", def.ID).Msg("no executor registered for check")
			result.Unknown = append(result.Unknown, def.Name)
			continue
		}

		g.Go(func() error {
			outcome := s.execute(ctx, def, entry, defaults)

			mu.Lock()
			result.Outcomes = append(result.Outcomes, outcome)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	model.SortOutcomes(result.Outcomes)
	return result
}

func (s *service) execute(ctx context.Context, def model.CheckDefinition, entry catalog.Entry, defaults model.Defaults) (outcome model.Outcome) {
	start := time.Now()
	logger := log.Ctx(ctx).With().Str("check", def.Name).Str("id", def.ID).Logger()

	checkCtx, cancel := context.WithTimeout(logger.WithContext(ctx), s.opts.CheckTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			outcome = errorOutcome(def, fmt.Errorf("executor panicked: %v", r), model.ErrorKindCollaborator)
		}
		outcome.Duration = time.Since(start)
		if outcome.Err != nil {
			logger.Warn().Err(outcome.Err).Str("kind", string(outcome.ErrorKind)).Dur("duration", outcome.Duration).Msg("check errored")
			return
		}
		logger.Debug().Str("status", string(outcome.Status)).Dur("duration", outcome.Duration).Msg("check finished")
	}()

	cfg, err := def.ParsedConfig()
	if err != nil {
		return errorOutcome(def, fmt.Errorf("%w: %v", catalog.ErrConfiguration, err), model.ErrorKindConfiguration)
	}

	req := catalog.Request{Definition: def, Config: cfg, Defaults: defaults}
	if entry.Regional {
		req.Regions, err = s.resolver.Resolve(checkCtx, cfg, defaults)
		if err != nil {
			return errorOutcome(def, err, classify(checkCtx, err))
		}
		if len(req.Regions) == 0 {
			logger.Warn().Msg("regional check has no regions configured")
		}
	}

	finding, err := entry.Executor.Run(checkCtx, req)
	if err != nil {
		return errorOutcome(def, err, classify(checkCtx, err))
	}
	return model.NewOutcome(def, finding)
}

func classify(ctx context.Context, err error) model.ErrorKind {
	switch {
	case errors.Is(err, catalog.ErrConfiguration), errors.Is(err, regions.ErrMixedWildcard):
		return model.ErrorKindConfiguration
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return model.ErrorKindTimeout
	default:
		return model.ErrorKindCollaborator
	}
}

func errorOutcome(def model.CheckDefinition, err error, kind model.ErrorKind) model.Outcome {
	return model.Outcome{
		Check:     def,
		Status:    model.StatusError,
		Err:       err,
		ErrorKind: kind,
	}
}
