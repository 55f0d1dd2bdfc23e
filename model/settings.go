package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Schedules accepted by the settings record.
const (
	ScheduleDaily  = "daily"
	ScheduleWeekly = "weekly"
)

var snsTopicARN = regexp.MustCompile(`^arn:aws:sns:[a-z0-9-]+:[0-9]{12}:[a-zA-Z0-9-_]+$`)

// AccountSettings is the singleton settings record of an installation.
type AccountSettings struct {
	ID           string `dynamodbav:"id" json:"id"`
	Subscriber   string `dynamodbav:"subscriber" json:"subscriber"`
	Sender       string `dynamodbav:"sender" json:"sender"`
	Schedule     string `dynamodbav:"schedule" json:"schedule"`
	Defaults     string `dynamodbav:"defaults,omitempty" json:"defaults,omitempty"`
	Password     string `dynamodbav:"password,omitempty" json:"-"`
	SessionToken string `dynamodbav:"session_token,omitempty" json:"-"`
}

// Defaults holds account-wide fallbacks for check configs.
type Defaults struct {
	Regions []string `json:"regions,omitempty"`
}

// ParsedDefaults decodes the defaults JSON. An empty value yields zero defaults.
func (s AccountSettings) ParsedDefaults() (Defaults, error) {
	var d Defaults
	if strings.TrimSpace(s.Defaults) == "" {
		return d, nil
	}
	if err := json.Unmarshal([]byte(s.Defaults), &d); err != nil {
		return Defaults{}, fmt.Errorf("invalid settings defaults: %w", err)
	}
	return d, nil
}

// Validate checks the fields an operator can change.
func (s AccountSettings) Validate() error {
	var errs []error
	if !IsUUID4(s.ID) {
		errs = append(errs, fmt.Errorf("invalid id %q: expected uuid4 format", s.ID))
	}
	if !IsEmail(s.Subscriber) && !IsSNSTopicARN(s.Subscriber) {
		errs = append(errs, fmt.Errorf("invalid subscriber %q: expected an email address or SNS topic ARN", s.Subscriber))
	}
	if s.Sender != "" && !IsEmail(s.Sender) {
		errs = append(errs, fmt.Errorf("invalid sender %q", s.Sender))
	}
	if s.Schedule != ScheduleDaily && s.Schedule != ScheduleWeekly {
		errs = append(errs, fmt.Errorf("invalid schedule %q: expected %s or %s", s.Schedule, ScheduleDaily, ScheduleWeekly))
	}
	if _, err := s.ParsedDefaults(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// IsUUID4 reports whether v is a version 4 UUID.
func IsUUID4(v string) bool {
	id, err := uuid.Parse(v)
	return err == nil && id.Version() == 4
}

// IsEmail reports whether v is a bare email address.
func IsEmail(v string) bool {
	addr, err := mail.ParseAddress(v)
	return err == nil && addr.Address == v
}

// IsSNSTopicARN reports whether v is an SNS topic ARN.
func IsSNSTopicARN(v string) bool {
	return snsTopicARN.MatchString(v)
}
