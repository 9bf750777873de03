package project

import (
	"errors"
	"fmt"

	"github.com/softprops/porteurbars/internal/defaults"
)

// Sentinel errors for apply operations
var (
	ErrDefaultsNotFound  = defaults.ErrNotFound
	ErrUnsupportedSource = errors.New("unsupported template source")
	ErrNotADirectory     = errors.New("not a directory")
)

// PathError records an error and the operation and path that caused it.
type PathError struct {
	Err  error
	Op   string
	Path string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// NewPathError creates a new PathError
func NewPathError(op, path string, err error) *PathError {
	return &PathError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}
