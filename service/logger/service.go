// Package logger persists failing check outcomes as audit log records.
package logger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/thirukguru/check42/model"
)

// NewService creates a result logger over repo.
func NewService(repo Repository, opts Options) Service {
	s := &service{
		repo:    repo,
		backOff: opts.BackOff,
		now:     opts.Now,
		newID:   opts.NewID,
	}
	if len(s.backOff) == 0 {
		s.backOff = AppendBackOffSchedule
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.NewString() }
	}
	return s
}

// Log appends one record per failing outcome, muted or not. A record that
// cannot be written is logged and counted; the batch continues.
func (s *service) Log(ctx context.Context, outcomes []model.Outcome) Summary {
	var sum Summary
	for _, o := range outcomes {
		if !o.Failed() {
			continue
		}
		record := s.newRecord(o)
		if err := s.appendWithRetry(ctx, record); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("check", o.Check.Name).Str("record", record.ID).Msg("failed to write log record")
			sum.Failed++
			continue
		}
		sum.Written++
	}
	return sum
}

// newRecord builds the log record of a failing outcome.
func (s *service) newRecord(o model.Outcome) model.LogRecord {
	return model.LogRecord{
		ID:        s.newID(),
		CheckID:   o.Check.ID,
		CheckName: o.Check.Name,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Version:   o.Check.Version,
		Module:    o.Check.Module,
		Muted:     o.Check.Muted,
		Status:    model.LogStatusFailed,
		Message:   RenderMessage(o.Finding),
	}
}

func (s *service) appendWithRetry(ctx context.Context, record model.LogRecord) error {
	var err error
	for i, delay := range s.backOff {
		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		err = s.repo.Append(ctx, record)
		if err == nil {
			return nil
		}
		if i+1 < len(s.backOff) {
			log.Ctx(ctx).Warn().Err(err).Int("attempt", i+1).Str("record", record.ID).Msg("retrying log record append")
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}

// RenderMessage renders a finding as one line per item, or the scalar message.
func RenderMessage(f model.Finding) string {
	if len(f.Items) == 0 {
		return f.Message
	}
	lines := make([]string, 0, len(f.Items)+1)
	if f.Message != "" {
		lines = append(lines, f.Message)
	}
	for _, item := range f.Items {
		lines = append(lines, item.String())
	}
	return strings.Join(lines, "\n")
}
