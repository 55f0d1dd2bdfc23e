// Package output renders run results and command listings to the console.
package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/thirukguru/check42/model"
	"github.com/thirukguru/check42/service/schedule"
	"github.com/thirukguru/check42/service/storage"
)

// NewService creates a new output service with the specified format
func NewService(format string) Service {
	return NewServiceWithWriter(format, os.Stdout)
}

// NewServiceWithWriter creates a new output service that writes to w.
func NewServiceWithWriter(format string, w io.Writer) Service {
	f := FormatTable
	if format == string(FormatJSON) {
		f = FormatJSON
	}
	return &service{format: f, w: w}
}

func (s *service) RenderOutcomes(accountID string, outcomes []model.Outcome) error {
	if s.format == FormatJSON {
		return s.printJSON(BuildRunReport(accountID, outcomes, time.Now().UTC().Format(time.RFC3339)))
	}
	s.drawOutcomesTable(accountID, outcomes)
	return nil
}

func (s *service) RenderMessage(msg model.Message) error {
	if s.format == FormatJSON {
		return s.printJSON(msg)
	}
	s.drawMessage(msg)
	return nil
}

func (s *service) RenderChecks(defs []model.CheckDefinition) error {
	if s.format == FormatJSON {
		return s.printJSON(defs)
	}
	s.drawChecksTable(defs)
	return nil
}

func (s *service) RenderSettings(settings model.AccountSettings) error {
	if s.format == FormatJSON {
		return s.printJSON(settings)
	}
	s.drawSettingsTable(settings)
	return nil
}

func (s *service) RenderSchedule(applied schedule.Applied) error {
	if s.format == FormatJSON {
		return s.printJSON(applied)
	}
	s.drawScheduleTable(applied)
	return nil
}

func (s *service) RenderRuns(runs []storage.RunSummary) error {
	if s.format == FormatJSON {
		return s.printJSON(runs)
	}
	s.drawRunsTable(runs)
	return nil
}

func (s *service) RenderRun(run storage.RunSummary, outcomes []storage.OutcomeSnapshot) error {
	if s.format == FormatJSON {
		return s.printJSON(struct {
			Run      storage.RunSummary        `json:"run"`
			Outcomes []storage.OutcomeSnapshot `json:"outcomes"`
		}{run, outcomes})
	}
	s.drawRunTable(run, outcomes)
	return nil
}

func (s *service) RenderOpenChecks(checks []storage.CheckStatus) error {
	if s.format == FormatJSON {
		return s.printJSON(checks)
	}
	s.drawOpenChecksTable(checks)
	return nil
}

func (s *service) RenderLogs(records []model.LogRecord) error {
	if s.format == FormatJSON {
		return s.printJSON(records)
	}
	s.drawLogsTable(records)
	return nil
}

// BuildRunReport builds the JSON run report.
func BuildRunReport(accountID string, outcomes []model.Outcome, generatedAt string) RunReport {
	report := RunReport{
		AccountID:   accountID,
		GeneratedAt: generatedAt,
		Outcomes:    make([]OutcomeReport, 0, len(outcomes)),
	}
	report.Summary.ChecksRun = len(outcomes)
	for _, o := range outcomes {
		switch o.Status {
		case model.StatusPass:
			report.Summary.Passed++
		case model.StatusFail:
			report.Summary.Failed++
		case model.StatusError:
			report.Summary.Errored++
		}
		r := OutcomeReport{
			Check:      o.Check.Name,
			CheckID:    o.Check.ID,
			Status:     string(o.Status),
			Muted:      o.Check.Muted,
			ErrorKind:  string(o.ErrorKind),
			Message:    o.Finding.Message,
			Items:      o.Finding.Items,
			DurationMs: o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			r.Error = o.Err.Error()
		}
		report.Outcomes = append(report.Outcomes, r)
	}
	return report
}

func (s *service) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = s.w.Write(append(data, '\n'))
	return err
}
