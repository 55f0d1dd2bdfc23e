package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/thirukguru/check42/model"
	"github.com/thirukguru/check42/service/schedule"
	"github.com/thirukguru/check42/service/storage"
)

const timeLayout = "2006-01-02 15:04"

func (s *service) newTable(header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(s.w)
	t.AppendHeader(header)
	t.SetStyle(table.StyleRounded)
	return t
}

func (s *service) drawOutcomesTable(accountID string, outcomes []model.Outcome) {
	fmt.Fprintf(s.w, "\nAccount hygiene report - Account: %s\n", accountID)
	if len(outcomes) == 0 {
		fmt.Fprintln(s.w, text.FgYellow.Sprint("No enabled checks were run."))
		return
	}

	t := s.newTable(table.Row{"Check", "Status", "Muted", "Issues", "Detail", "Duration"})
	for _, o := range outcomes {
		detail := o.Finding.Message
		if o.Err != nil {
			detail = fmt.Sprintf("%s: %v", o.ErrorKind, o.Err)
		} else if detail == "" && len(o.Finding.Items) > 0 {
			detail = o.Finding.Items[0].String()
		}
		t.AppendRow(table.Row{
			o.Check.Name,
			formatStatus(string(o.Status)),
			yesNo(o.Check.Muted),
			issueCount(o.Finding),
			truncate(detail, maxCell),
			o.Duration.Round(time.Millisecond).String(),
		})
	}
	t.Render()

	report := BuildRunReport(accountID, outcomes, "")
	if report.Summary.Failed == 0 && report.Summary.Errored == 0 {
		fmt.Fprintln(s.w, text.FgGreen.Sprint("\nAll checks passed."))
		return
	}
	fmt.Fprintf(s.w, "\n%d checks: %d passed, %d failed, %d errored\n",
		report.Summary.ChecksRun, report.Summary.Passed, report.Summary.Failed, report.Summary.Errored)
}

func (s *service) drawMessage(msg model.Message) {
	fmt.Fprintf(s.w, "\nSubject: %s\n\n%s\n", msg.Subject, msg.BodyText)
}

func (s *service) drawChecksTable(defs []model.CheckDefinition) {
	t := s.newTable(table.Row{"ID", "Name", "Title", "Enabled", "Muted", "Config"})
	for _, d := range defs {
		t.AppendRow(table.Row{d.ID, d.Name, truncate(d.Title, 40), yesNo(d.Enabled), yesNo(d.Muted), truncate(d.Config, 40)})
	}
	t.Render()
}

func (s *service) drawSettingsTable(settings model.AccountSettings) {
	t := s.newTable(table.Row{"Setting", "Value"})
	t.AppendRows([]table.Row{
		{"ID", settings.ID},
		{"Subscriber", settings.Subscriber},
		{"Sender", settings.Sender},
		{"Schedule", settings.Schedule},
		{"Defaults", settings.Defaults},
		{"Password set", yesNo(settings.Password != "")},
	})
	t.Render()
}

func (s *service) drawScheduleTable(applied schedule.Applied) {
	t := s.newTable(table.Row{"Rule", "Expression", "Target set"})
	t.AppendRow(table.Row{applied.RuleARN, applied.Expression, yesNo(applied.TargetSet)})
	t.Render()
}

func (s *service) drawRunsTable(runs []storage.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(s.w, "No stored runs.")
		return
	}
	t := s.newTable(table.Row{"Run", "Time (UTC)", "Checks", "Passed", "Failed", "Errored", "Sections", "Notified"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.RunID,
			r.RunTimestamp.UTC().Format(timeLayout),
			r.ChecksRun,
			r.Passed,
			r.Failed,
			r.Errored,
			r.Sections,
			yesNo(r.Notified),
		})
	}
	t.Render()
}

func (s *service) drawRunTable(run storage.RunSummary, outcomes []storage.OutcomeSnapshot) {
	fmt.Fprintf(s.w, "\nRun %d (%s) - Account: %s - %s\n", run.RunID, run.RunUUID, run.AccountID, run.RunTimestamp.UTC().Format(timeLayout))
	t := s.newTable(table.Row{"Check", "Status", "Muted", "Issues", "Error"})
	for _, o := range outcomes {
		t.AppendRow(table.Row{o.CheckName, formatStatus(o.Status), yesNo(o.Muted), o.ItemCount, truncate(o.Error, maxCell)})
	}
	t.Render()
}

func (s *service) drawOpenChecksTable(checks []storage.CheckStatus) {
	if len(checks) == 0 {
		fmt.Fprintln(s.w, text.FgGreen.Sprint("No open checks."))
		return
	}
	t := s.newTable(table.Row{"Check", "First failed", "Last failed"})
	for _, c := range checks {
		t.AppendRow(table.Row{c.CheckName, c.FirstFailed.UTC().Format(timeLayout), c.LastFailed.UTC().Format(timeLayout)})
	}
	t.Render()
}

func (s *service) drawLogsTable(records []model.LogRecord) {
	if len(records) == 0 {
		fmt.Fprintln(s.w, "No log records.")
		return
	}
	t := s.newTable(table.Row{"Timestamp", "Check", "Muted", "Message"})
	for _, r := range records {
		t.AppendRow(table.Row{r.Timestamp, r.CheckName, yesNo(r.Muted), truncate(firstLine(r.Message), maxCell)})
	}
	t.Render()
}

func formatStatus(status string) string {
	switch status {
	case string(model.StatusPass):
		return text.FgGreen.Sprint("PASS")
	case string(model.StatusFail):
		return text.FgRed.Sprint("FAIL")
	case string(model.StatusError):
		return text.FgYellow.Sprint("ERROR")
	default:
		return status
	}
}

func issueCount(f model.Finding) string {
	if len(f.Items) > 0 {
		return strconv.Itoa(len(f.Items))
	}
	if f.Message != "" {
		return "1"
	}
	return "-"
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
