// Package tui provides the interactive terminal front end used while
// resolving template values.
package tui

import (
	"os"

	"github.com/mattn/go-isatty"

	"github.com/softprops/porteurbars/internal/prompt"
)

// IsTerminal checks if f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewPrompter returns a text-input prompter when both in and out are
// terminals, and a line prompter otherwise (pipes, redirected input, CI).
func NewPrompter(in, out *os.File) prompt.Prompter {
	if IsTerminal(in) && IsTerminal(out) {
		return NewTeaPrompter(in, out)
	}

	return prompt.NewLinePrompter(in, out)
}
