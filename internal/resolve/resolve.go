// Package resolve turns a template's defaults into the values used for
// rendering, consulting environment overrides and the operator.
package resolve

import (
	"fmt"
	"os"

	"github.com/softprops/porteurbars/internal/defaults"
	"github.com/softprops/porteurbars/internal/prompt"
	tmpl "github.com/softprops/porteurbars/internal/template"
)

// LookupFunc looks up an override for a named value.
type LookupFunc func(name string) (string, bool)

// Resolver resolves defaults into a render context.
type Resolver struct {
	lookup   LookupFunc
	prompter prompt.Prompter
}

// New creates a Resolver. A nil lookup falls back to the process environment.
func New(lookup LookupFunc, p prompt.Prompter) *Resolver {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	return &Resolver{
		lookup:   lookup,
		prompter: p,
	}
}

// Resolve produces the render context for defs.
//
// With acceptDefaults set, the context is exactly the defaults and nothing is
// consulted. Otherwise each name is resolved in source order: an environment
// override is used verbatim, else the operator is asked and an empty answer
// keeps the default. When a name appears more than once only its first
// occurrence is resolved; later duplicates are ignored.
func (r *Resolver) Resolve(defs defaults.Defaults, acceptDefaults bool) (tmpl.Context, error) {
	if acceptDefaults {
		return tmpl.NewContext(defs.Map()), nil
	}

	ctx := make(tmpl.Context, len(defs))

	for _, def := range defs {
		if _, done := ctx[def.Name]; done {
			continue
		}

		if v, ok := r.lookup(def.Name); ok {
			ctx[def.Name] = v
			continue
		}

		if r.prompter == nil {
			ctx[def.Name] = def.Value
			continue
		}

		answer, err := r.prompter.Ask(def.Name, def.Value)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", def.Name, err)
		}

		if answer == "" {
			answer = def.Value
		}
		ctx[def.Name] = answer
	}

	return ctx, nil
}
