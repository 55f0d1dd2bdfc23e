package model

import (
	"sort"
	"strings"
	"time"
)

// Status is the terminal state of one check in one run.
type Status string

const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"
	StatusError Status = "error"
)

// ErrorKind classifies errored outcomes for the run-health report.
type ErrorKind string

const (
	ErrorKindConfiguration ErrorKind = "configuration"
	ErrorKindCollaborator  ErrorKind = "collaborator"
	ErrorKindTimeout       ErrorKind = "timeout"
)

// Item is one offending resource. Multi-valued fields are joined with "\n".
type Item map[string]string

// Finding is what an executor reports: offending items, a scalar message, or nothing for a pass.
type Finding struct {
	Items   []Item `json:"items,omitempty"`
	Message string `json:"message,omitempty"`
}

// Empty reports whether the finding represents a pass.
func (f Finding) Empty() bool {
	return len(f.Items) == 0 && f.Message == ""
}

// Outcome is the normalized result of one executed check.
type Outcome struct {
	Check     CheckDefinition `json:"check"`
	Status    Status          `json:"status"`
	Finding   Finding         `json:"finding"`
	Err       error           `json:"-"`
	ErrorKind ErrorKind       `json:"error_kind,omitempty"`
	Duration  time.Duration   `json:"duration"`
}

// NewOutcome derives the status from the finding.
func NewOutcome(def CheckDefinition, finding Finding) Outcome {
	status := StatusPass
	if !finding.Empty() {
		status = StatusFail
	}
	return Outcome{Check: def, Status: status, Finding: finding}
}

// Failed reports whether the check found issues.
func (o Outcome) Failed() bool {
	return o.Status == StatusFail
}

// Fields returns the sorted field names used by the outcome's items.
func (i Item) Fields() []string {
	keys := make([]string, 0, len(i))
	for k := range i {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders the item on one line as "key: value. key: value" in key order.
func (i Item) String() string {
	parts := make([]string, 0, len(i))
	for _, k := range i.Fields() {
		parts = append(parts, k+": "+strings.ReplaceAll(i[k], "\n", ", "))
	}
	return strings.Join(parts, ". ")
}

// SortOutcomes orders outcomes by check name, then id.
func SortOutcomes(outcomes []Outcome) {
	sort.SliceStable(outcomes, func(a, b int) bool {
		if outcomes[a].Check.Name != outcomes[b].Check.Name {
			return outcomes[a].Check.Name < outcomes[b].Check.Name
		}
		return outcomes[a].Check.ID < outcomes[b].Check.ID
	})
}
