// Package templates loads the e-mail templates used to compile a run report.
package templates

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/thirukguru/check42/model"
)

// NewRepository creates a repository over store. The embedded defaults are
// always consulted last.
func NewRepository(store Store) *Repository {
	return &Repository{store: Chain{store, EmbeddedStore()}}
}

// Load reads the main template and the templates of every enabled check.
func (r *Repository) Load(ctx context.Context, defs []model.CheckDefinition) (*Set, error) {
	embedded := EmbeddedStore()

	main, _, err := r.readPair(ctx, r.store, MainName, "")
	if err != nil {
		return nil, err
	}
	fallback, _, err := r.readPair(ctx, embedded, DefaultName, DefaultName+itemSuffix)
	if err != nil {
		return nil, err
	}

	set := &Set{main: main, fallback: fallback, checks: make(map[string]model.Template)}

	for _, def := range defs {
		if !def.Enabled {
			continue
		}
		tpl, found, err := r.loadCheck(ctx, embedded, def)
		if err != nil {
			return nil, err
		}
		if !found {
			log.Ctx(ctx).Debug().Str("check", def.Name).Msg("using default template")
			continue
		}
		tpl.Title = def.Title
		tpl.Description = def.Description
		set.checks[def.Name] = tpl
	}
	return set, nil
}

func (r *Repository) loadCheck(ctx context.Context, embedded Store, def model.CheckDefinition) (model.Template, bool, error) {
	ref, ok, err := def.TemplateRef()
	if err != nil {
		return model.Template{}, false, err
	}
	if ok {
		tpl, found, err := r.readPair(ctx, r.store, ref.BaseFileName, ref.ItemFileName)
		if err != nil || found {
			return tpl, found, err
		}
		log.Ctx(ctx).Warn().Str("check", def.Name).Str("base", ref.BaseFileName).Str("item", ref.ItemFileName).Msg("template override files not found")
	}
	return r.readPair(ctx, embedded, def.Name, def.Name+itemSuffix)
}

// readPair reads base and item in both formats. found reports whether any of
// the four files exists. Missing files leave their field empty.
func (r *Repository) readPair(ctx context.Context, store Store, base, item string) (model.Template, bool, error) {
	var tpl model.Template
	found := false

	targets := []struct {
		name string
		dst  *string
	}{
		{base + extText, &tpl.BodyText},
		{base + extHTML, &tpl.BodyHTML},
		{item + extText, &tpl.ItemText},
		{item + extHTML, &tpl.ItemHTML},
	}
	for _, t := range targets {
		if t.name == extText || t.name == extHTML {
			continue
		}
		data, ok, err := store.Read(ctx, t.name)
		if err != nil {
			return model.Template{}, false, fmt.Errorf("failed to load template: %w", err)
		}
		if ok {
			*t.dst = string(data)
			found = true
		}
	}
	return tpl, found, nil
}

// Main returns the outer report template.
func (s *Set) Main() model.Template {
	return s.main
}

// For returns the template of a check, or the generic default.
func (s *Set) For(name string) model.Template {
	if tpl, ok := s.checks[name]; ok {
		return tpl
	}
	return s.fallback
}

// HasOverride reports whether a check has its own template.
func (s *Set) HasOverride(name string) bool {
	_, ok := s.checks[name]
	return ok
}
