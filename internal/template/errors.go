package template

import (
	"errors"
	"fmt"
)

// ErrPathEscape is returned when a rendered path is empty, absolute, or
// would resolve outside of the directory it is applied to.
var ErrPathEscape = errors.New("rendered path escapes target")

// RenderError records a render failure and the template that caused it.
type RenderError struct {
	Err      error
	Template string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// NewRenderError creates a new RenderError
func NewRenderError(tmpl string, err error) *RenderError {
	return &RenderError{
		Template: tmpl,
		Err:      err,
	}
}
