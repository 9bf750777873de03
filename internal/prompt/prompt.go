// Package prompt provides the blocking question/answer capability used while
// resolving template values and conflicts.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrAborted is returned when the operator cancels a prompt.
var ErrAborted = errors.New("prompt aborted")

// Prompter asks the operator a single question and blocks until an answer
// is available. The returned answer is trimmed of surrounding whitespace;
// applying the default for an empty answer is up to the caller.
type Prompter interface {
	Ask(label, defaultValue string) (string, error)
}

// LinePrompter writes prompts to an output stream and reads one line of input
// per question. Reaching the end of input yields an empty answer.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a LinePrompter reading from in and writing to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Ask prints "label [default]: " (or "label: " without a default) and reads a line.
func (p *LinePrompter) Ask(label, defaultValue string) (string, error) {
	if defaultValue != "" {
		_, err := fmt.Fprintf(p.out, "%s [%s]: ", label, defaultValue)
		if err != nil {
			return "", fmt.Errorf("writing prompt: %w", err)
		}
	} else if _, err := fmt.Fprintf(p.out, "%s: ", label); err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading answer: %w", err)
	}

	return strings.TrimSpace(line), nil
}
