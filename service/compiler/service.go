// Package compiler renders run outcomes into a text and HTML report.
package compiler

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/thirukguru/check42/model"
	"github.com/thirukguru/check42/service/catalog"
	"github.com/thirukguru/check42/service/templates"
)

// NewService creates a message compiler.
func NewService(opts Options) Service {
	if strings.TrimSpace(opts.Subject) == "" {
		opts.Subject = DefaultSubject
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &service{subject: opts.Subject, now: opts.Now}
}

func (s *service) Compile(outcomes []model.Outcome, set *templates.Set) model.Message {
	var text, htm strings.Builder
	sections := 0

	for _, o := range outcomes {
		if !o.Failed() || o.Check.Muted {
			continue
		}
		t, h := renderSection(o, set.For(o.Check.Name))
		text.WriteString(t)
		htm.WriteString(h)
		sections++
	}

	findingsText, findingsHTML := text.String(), htm.String()
	if sections == 0 {
		findingsText = AllClear + "\n"
		findingsHTML = "<p>" + AllClear + "</p>"
	}

	healthText, healthHTML := runHealth(outcomes)
	generated := s.now().UTC().Format("2006-01-02 15:04 UTC")

	main := set.Main()
	msg := model.Message{
		Subject: s.subject,
		BodyText: templates.Render(main.BodyText, map[string]string{
			"FINDINGS":     findingsText,
			"RUN_HEALTH":   healthText,
			"CHECKS_RUN":   strconv.Itoa(len(outcomes)),
			"GENERATED_AT": generated,
		}),
		BodyHTML: templates.Render(main.BodyHTML, map[string]string{
			"FINDINGS":     findingsHTML,
			"RUN_HEALTH":   healthHTML,
			"CHECKS_RUN":   strconv.Itoa(len(outcomes)),
			"GENERATED_AT": generated,
		}),
		Sections: sections,
	}
	if sections > 0 {
		msg.Subject = fmt.Sprintf("%s - %d issue(s) found", s.subject, sections)
	}
	return msg
}

func renderSection(o model.Outcome, tpl model.Template) (string, string) {
	pres := catalog.PresentationFor(o.Check.Name)

	var itemsText, itemsHTML strings.Builder
	for _, item := range o.Finding.Items {
		itemsText.WriteString(templates.Render(tpl.ItemText, itemValues(tpl.ItemText, item, pres, textEncoding)))
		itemsHTML.WriteString(templates.Render(tpl.ItemHTML, itemValues(tpl.ItemHTML, item, pres, htmlEncoding)))
	}

	title := firstNonEmpty(o.Check.Title, tpl.Title, o.Check.Name)
	description := firstNonEmpty(o.Check.Description, tpl.Description)
	tags := ""
	if o.Check.Name == string(catalog.MissingTags) {
		if cfg, err := o.Check.ParsedConfig(); err == nil {
			tags = strings.Join(cfg.RequiredTags, " | ")
		}
	}

	section := func(src, items string, enc encoding) string {
		values := map[string]string{
			"TITLE":       enc.value(title),
			"DESCRIPTION": enc.value(description),
			"MESSAGE":     enc.value(o.Finding.Message),
			"TAGS":        enc.value(tags),
		}
		values[catalog.DefaultListToken] = items
		values[pres.ListToken] = items
		return templates.Render(src, values)
	}

	return section(tpl.BodyText, itemsText.String(), textEncoding), section(tpl.BodyHTML, itemsHTML.String(), htmlEncoding)
}

// itemValues maps the tokens used by an item template to the item's fields.
func itemValues(src string, item model.Item, pres catalog.Presentation, enc encoding) map[string]string {
	values := make(map[string]string)
	for _, tok := range templates.Tokens(src) {
		if tok == fieldsToken {
			values[tok] = fields(item, enc)
			continue
		}
		values[tok] = enc.value(item[pres.Field(tok)])
	}
	return values
}

// fields renders every field of an item for the generic item template.
func fields(item model.Item, enc encoding) string {
	keys := item.Fields()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, enc.value(k)+": "+enc.value(item[k]))
	}
	return strings.Join(parts, enc.fieldSep)
}

func runHealth(outcomes []model.Outcome) (string, string) {
	var text, htm strings.Builder
	for _, o := range outcomes {
		if o.Status != model.StatusError || o.Check.Muted {
			continue
		}
		reason := string(o.ErrorKind)
		if o.Err != nil {
			reason += ": " + o.Err.Error()
		}
		fmt.Fprintf(&text, "- %s (%s)\n", o.Check.Name, reason)
		fmt.Fprintf(&htm, "<li><strong>%s</strong> (%s)</li>", html.EscapeString(o.Check.Name), html.EscapeString(reason))
	}
	if text.Len() == 0 {
		return "", ""
	}
	return "Checks that could not complete:\n" + text.String(),
		"<h3>Checks that could not complete</h3><ul>" + htm.String() + "</ul>"
}

type encoding struct {
	value    func(string) string
	fieldSep string
}

var (
	textEncoding = encoding{
		value:    func(v string) string { return v },
		fieldSep: ". ",
	}
	// HTML values are escaped and newlines become line breaks.
	htmlEncoding = encoding{
		value:    func(v string) string { return strings.ReplaceAll(html.EscapeString(v), "\n", "<br/>") },
		fieldSep: "<br/>",
	}
)

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
