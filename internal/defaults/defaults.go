// Package defaults parses the flat key=value file that declares a template's
// named values and their default answers.
package defaults

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// FileName is the name of the defaults file expected at a template root.
const FileName = "default.env"

// ErrNotFound is returned by Load when the defaults file does not exist.
var ErrNotFound = errors.New("defaults not found")

// Default is a single named value and the answer used when nothing else is provided.
type Default struct {
	Name  string
	Value string
}

// Defaults is an ordered list of defaults in source order.
// Names are not guaranteed to be unique.
type Defaults []Default

// Parse reads defaults from src. Full-line comments (a leading '#'), lines
// without an '=' and lines with an empty name are skipped. Only the first '='
// separates name from value, and everything after the first '#' in the value
// is treated as an inline comment.
func Parse(src string) Defaults {
	var defs Defaults

	for _, line := range strings.Split(src, "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}

		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		if i := strings.IndexByte(value, '#'); i >= 0 {
			value = value[:i]
		}

		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		defs = append(defs, Default{Name: name, Value: strings.TrimSpace(value)})
	}

	return defs
}

// Load reads and parses the defaults file at path.
func Load(path string) (Defaults, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path points into the template source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}

		return nil, fmt.Errorf("reading defaults: %w", err)
	}

	return Parse(string(data)), nil
}

// Names returns the distinct names in first-occurrence order.
func (d Defaults) Names() []string {
	seen := make(map[string]bool, len(d))
	names := make([]string, 0, len(d))

	for _, def := range d {
		if seen[def.Name] {
			continue
		}
		seen[def.Name] = true
		names = append(names, def.Name)
	}

	return names
}

// Map returns the defaults as a name to value mapping. When a name occurs
// more than once the first occurrence wins.
func (d Defaults) Map() map[string]string {
	m := make(map[string]string, len(d))

	for _, def := range d {
		if _, ok := m[def.Name]; ok {
			continue
		}
		m[def.Name] = def.Value
	}

	return m
}
