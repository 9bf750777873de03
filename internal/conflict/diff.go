// Package conflict decides what happens when a rendered file would replace an
// existing file with different content.
package conflict

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Kind classifies a diff line.
type Kind int

// Line kinds.
const (
	Same Kind = iota
	Removed
	Added
)

// Span is a run of characters within an added line. Changed spans are the
// characters that differ from the removed line the added line replaces.
type Span struct {
	Text    string
	Changed bool
}

// Line is one line of a line-oriented diff. Added lines that replace a removed
// line carry inline spans; all other lines have none. NoNewline marks the last
// line of a file that does not end in a newline.
type Line struct {
	Kind      Kind
	Text      string
	Spans     []Span
	NoNewline bool
}

// Diff computes a line diff from current to proposed. Within a run of removed
// lines followed by a run of added lines, the n-th added line is paired with
// the n-th removed line and diffed again character by character.
func Diff(current, proposed string) []Line {
	dmp := diffmatchpatch.New()

	a, b, lineArray := dmp.DiffLinesToChars(current, proposed)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var (
		lines   []Line
		removed []string
	)

	for _, d := range diffs {
		texts := splitLines(d.Text)
		noNewline := d.Text != "" && !strings.HasSuffix(d.Text, "\n")

		var kind Kind
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			kind = Same
		case diffmatchpatch.DiffDelete:
			kind = Removed
		case diffmatchpatch.DiffInsert:
			kind = Added
		}

		for i, text := range texts {
			line := Line{Kind: kind, Text: text, NoNewline: noNewline && i == len(texts)-1}
			if kind == Added && i < len(removed) {
				line.Spans = inlineSpans(dmp, removed[i], text)
			}
			lines = append(lines, line)
		}

		if kind == Removed {
			removed = texts
		} else {
			removed = nil
		}
	}

	return lines
}

// inlineSpans returns the spans of added that are unchanged from or inserted
// relative to removed. Deleted characters are not part of the added line.
func inlineSpans(dmp *diffmatchpatch.DiffMatchPatch, removed, added string) []Span {
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(removed, added, false))

	var spans []Span
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffDelete {
			continue
		}

		changed := d.Type == diffmatchpatch.DiffInsert
		if n := len(spans); n > 0 && spans[n-1].Changed == changed {
			spans[n-1].Text += d.Text
			continue
		}
		spans = append(spans, Span{Text: d.Text, Changed: changed})
	}

	return spans
}

func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

// HasChanges reports whether lines contain anything but unchanged lines.
func HasChanges(lines []Line) bool {
	for _, l := range lines {
		if l.Kind != Same {
			return true
		}
	}

	return false
}
