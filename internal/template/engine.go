package template

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"
	"text/template"

	"github.com/go-sprout/sprout"
	"github.com/go-sprout/sprout/registry/std"
	sproutstrings "github.com/go-sprout/sprout/registry/strings"
)

// Renderer renders template text and template paths against a Context.
type Renderer interface {
	Render(name, text string, ctx Context) (string, error)
	RenderPath(p string, ctx Context) (string, error)
}

// helperAliases maps the short helper names used in templates to the sprout
// functions backing them.
var helperAliases = map[string]string{
	"upper":  "toUpper",
	"lower":  "toLower",
	"title":  "toTitleCase",
	"pascal": "toPascalCase",
	"camel":  "toCamelCase",
	"snake":  "toSnakeCase",
	"kebab":  "toKebabCase",
}

// reserved holds text/template keywords and builtins. Context values with these
// names are only reachable as fields (.name), never as bare calls.
var reserved = map[string]bool{
	"if": true, "else": true, "end": true, "range": true, "with": true,
	"define": true, "template": true, "block": true, "break": true,
	"continue": true, "nil": true, "true": true, "false": true,
	"and": true, "or": true, "not": true, "call": true, "html": true,
	"index": true, "slice": true, "js": true, "len": true, "print": true,
	"printf": true, "println": true, "urlquery": true,
	"eq": true, "ne": true, "lt": true, "le": true, "gt": true, "ge": true,
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Engine renders Go text/templates with the sprout function library plus the
// short case-conversion helpers. Unknown values are render errors.
type Engine struct {
	funcs template.FuncMap
}

// NewEngine creates an Engine with the string and std sprout registries loaded.
func NewEngine() (*Engine, error) {
	handler := sprout.New()
	if err := handler.AddRegistries(
		std.NewRegistry(),
		sproutstrings.NewRegistry(),
	); err != nil {
		return nil, fmt.Errorf("loading template functions: %w", err)
	}

	funcs := template.FuncMap{}
	for name, fn := range handler.Build() {
		funcs[name] = fn
	}

	for alias, name := range helperAliases {
		if fn, ok := funcs[name]; ok {
			funcs[alias] = fn
		}
	}

	return &Engine{funcs: funcs}, nil
}

// Render executes text as a template named name against ctx.
func (e *Engine) Render(name, text string, ctx Context) (string, error) {
	t, err := template.New(name).
		Option("missingkey=error").
		Funcs(e.funcs).
		Funcs(e.valueFuncs(ctx)).
		Parse(text)
	if err != nil {
		return "", NewRenderError(name, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, map[string]string(ctx)); err != nil {
		return "", NewRenderError(name, e.shadowHint(err, ctx))
	}

	return buf.String(), nil
}

// RenderPath renders a slash separated relative path against ctx and returns
// the cleaned result. The rendered path must stay relative and must not climb
// out of the directory it will be joined to.
func (e *Engine) RenderPath(p string, ctx Context) (string, error) {
	rendered, err := e.Render(p, p, ctx)
	if err != nil {
		return "", err
	}

	cleaned := path.Clean(rendered)
	if rendered == "" || cleaned == "." || path.IsAbs(cleaned) ||
		cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", NewRenderError(p, fmt.Errorf("%q: %w", rendered, ErrPathEscape))
	}

	return cleaned, nil
}

// shadowHint points at the field form when err comes from calling a helper
// whose name is also a context value, as in {{title}} with a "title" value.
func (e *Engine) shadowHint(err error, ctx Context) error {
	for _, name := range ctx.Keys() {
		if _, ok := e.funcs[name]; !ok {
			continue
		}
		if strings.Contains(err.Error(), "<"+name+">") {
			return fmt.Errorf("%w (%q is also a helper name, write {{.%s}} to use the value)", err, name, name)
		}
	}

	return err
}

// valueFuncs exposes each context value as a zero-argument function, so that
// templates can write {{name}} as well as {{.name}}. Names that are not valid
// identifiers or that would shadow a helper are skipped.
func (e *Engine) valueFuncs(ctx Context) template.FuncMap {
	funcs := template.FuncMap{}

	for name, value := range ctx {
		if !identRe.MatchString(name) || reserved[name] {
			continue
		}
		if _, ok := e.funcs[name]; ok {
			continue
		}

		v := value
		funcs[name] = func() string { return v }
	}

	return funcs
}
