package conflict

import (
	"fmt"
	"io"
	"strings"

	"github.com/softprops/porteurbars/internal/prompt"
)

// Decision is the outcome of a conflict.
type Decision int

// Conflict decisions.
const (
	// Keep leaves the existing file untouched.
	Keep Decision = iota
	// Overwrite replaces the existing file with the rendered content.
	Overwrite
)

func (d Decision) String() string {
	if d == Overwrite {
		return "overwrite"
	}

	return "keep"
}

// Resolver shows the operator a diff for each conflict and asks whether to
// replace the file. It never writes the file itself.
type Resolver struct {
	out      io.Writer
	prompter prompt.Prompter
}

// NewResolver creates a Resolver writing diffs to out and asking p for decisions.
func NewResolver(out io.Writer, p prompt.Prompter) *Resolver {
	return &Resolver{
		out:      out,
		prompter: p,
	}
}

// Resolve displays the diff from current to proposed and asks whether to
// replace targetPath. Only an explicit yes replaces the file; an empty answer
// keeps it.
func (r *Resolver) Resolve(current, proposed, targetPath string) (Decision, error) {
	header := fmt.Sprintf("Warning: conflicts exist with the previous version of %s", targetPath)
	if _, err := fmt.Fprintf(r.out, "\n%s\n\n%s", WarningStyle.Render(header), Render(Diff(current, proposed))); err != nil {
		return Keep, fmt.Errorf("writing diff: %w", err)
	}

	answer, err := r.prompter.Ask(fmt.Sprintf("Replace %s? [y/N]", targetPath), "")
	if err != nil {
		return Keep, fmt.Errorf("asking about %s: %w", targetPath, err)
	}

	return ParseAnswer(answer), nil
}

// ParseAnswer maps an operator answer to a Decision. "y", "yes" and "r"
// (case-insensitive) overwrite; everything else keeps.
func ParseAnswer(answer string) Decision {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "r":
		return Overwrite
	default:
		return Keep
	}
}
