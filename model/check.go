package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CheckDefinition is a single configured check as stored in the checks table.
type CheckDefinition struct {
	ID             string `dynamodbav:"id" json:"id"`
	Name           string `dynamodbav:"name" json:"name"`
	Title          string `dynamodbav:"title" json:"title"`
	Description    string `dynamodbav:"description" json:"description"`
	Module         string `dynamodbav:"module" json:"module"`
	Version        string `dynamodbav:"version" json:"version"`
	Enabled        bool   `dynamodbav:"enabled" json:"enabled"`
	Muted          bool   `dynamodbav:"muted" json:"muted"`
	Config         string `dynamodbav:"config,omitempty" json:"config,omitempty"`
	EmailTemplates string `dynamodbav:"email_templates,omitempty" json:"email_templates,omitempty"`
}

// CheckConfig is the canonical per-check configuration schema.
type CheckConfig struct {
	Regions        []string `json:"regions,omitempty"`
	RequiredTags   []string `json:"requiredTags,omitempty"`
	ConfigRuleName string   `json:"configRuleName,omitempty"`
	ResourceTypes  []string `json:"resourceTypes,omitempty"`
	AllowedRegions []string `json:"allowedRegions,omitempty"`
	MinimumCost    float64  `json:"minimumCost,omitempty"`
}

// EmailTemplateRef names the override template files of a check, without extension.
type EmailTemplateRef struct {
	BaseFileName string `json:"baseFileName,omitempty"`
	ItemFileName string `json:"itemFileName,omitempty"`
}

// ParsedConfig decodes the stored config JSON. An empty config is valid.
func (d CheckDefinition) ParsedConfig() (CheckConfig, error) {
	var cfg CheckConfig
	if strings.TrimSpace(d.Config) == "" {
		return cfg, nil
	}
	if err := json.Unmarshal([]byte(d.Config), &cfg); err != nil {
		return CheckConfig{}, fmt.Errorf("invalid config for check %s: %w", d.Name, err)
	}
	return cfg, nil
}

// TemplateRef decodes the email template reference. ok is false when the check has none.
func (d CheckDefinition) TemplateRef() (ref EmailTemplateRef, ok bool, err error) {
	if strings.TrimSpace(d.EmailTemplates) == "" {
		return EmailTemplateRef{}, false, nil
	}
	if err := json.Unmarshal([]byte(d.EmailTemplates), &ref); err != nil {
		return EmailTemplateRef{}, false, fmt.Errorf("invalid email_templates for check %s: %w", d.Name, err)
	}
	if ref.BaseFileName == "" && ref.ItemFileName == "" {
		return EmailTemplateRef{}, false, nil
	}
	return ref, true, nil
}
