package compiler

import (
	"time"

	"github.com/thirukguru/check42/model"
	"github.com/thirukguru/check42/service/templates"
)

const (
	// DefaultSubject is the notification subject when none is configured.
	DefaultSubject = "AWS Best Practices Checks"
	// AllClear replaces the findings when no section is rendered.
	AllClear = "All checks passed. No issues were found."

	// fieldsToken renders every field of an item.
	fieldsToken = "FIELDS"
)

// Options tune the compiled message.
type Options struct {
	Subject string
	Now     func() time.Time
}

type service struct {
	subject string
	now     func() time.Time
}

// Service turns a run's outcomes into one notification message.
type Service interface {
	Compile(outcomes []model.Outcome, set *templates.Set) model.Message
}
