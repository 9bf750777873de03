// Package template renders template paths and file contents against a
// resolved set of named values.
package template

import (
	"maps"
	"slices"
)

// Context holds the resolved values available to every render of one apply.
// Keys are unique; a Context is not modified once resolution has finished.
type Context map[string]string

// NewContext creates a Context from a name to value mapping.
func NewContext(values map[string]string) Context {
	ctx := make(Context, len(values))
	maps.Copy(ctx, values)

	return ctx
}

// Keys returns the context names in sorted order.
func (c Context) Keys() []string {
	return slices.Sorted(maps.Keys(c))
}

// Lookup returns the value for name and whether it is present.
func (c Context) Lookup(name string) (string, bool) {
	v, ok := c[name]
	return v, ok
}
