package conflict

import (
	"reflect"
	"regexp"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sebdah/goldie/v2"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

func TestDiff_Kinds(t *testing.T) {
	lines := Diff("a\nb\nc\n", "a\nB2\nc\n")

	var kinds []Kind
	var texts []string
	for _, l := range lines {
		kinds = append(kinds, l.Kind)
		texts = append(texts, l.Text)
	}

	if want := []Kind{Same, Removed, Added, Same}; !reflect.DeepEqual(kinds, want) {
		t.Errorf("kinds = %v, want %v", kinds, want)
	}
	if want := []string{"a", "b", "B2", "c"}; !reflect.DeepEqual(texts, want) {
		t.Errorf("texts = %v, want %v", texts, want)
	}
}

func TestDiff_InlineSpans(t *testing.T) {
	lines := Diff("hello world\n", "hello there world\n")

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %+v", len(lines), lines)
	}

	added := lines[1]
	if added.Kind != Added {
		t.Fatalf("second line kind = %v, want Added", added.Kind)
	}

	want := []Span{
		{Text: "hello ", Changed: false},
		{Text: "there ", Changed: true},
		{Text: "world", Changed: false},
	}
	if !reflect.DeepEqual(added.Spans, want) {
		t.Errorf("spans = %+v, want %+v", added.Spans, want)
	}
}

func TestDiff_SpansRebuildAddedLine(t *testing.T) {
	lines := Diff("port = 8080\nname = a\n", "port = 9090\nname = b\n")

	for _, l := range lines {
		if l.Kind != Added {
			continue
		}
		if len(l.Spans) == 0 {
			t.Fatalf("added line %q has no inline spans", l.Text)
		}

		var rebuilt string
		for _, s := range l.Spans {
			rebuilt += s.Text
		}
		if rebuilt != l.Text {
			t.Errorf("spans rebuild %q, want %q", rebuilt, l.Text)
		}
	}
}

func TestDiff_UnpairedAdditionsHaveNoSpans(t *testing.T) {
	lines := Diff("a\n", "a\nb\n")

	if len(lines) != 2 || lines[1].Kind != Added {
		t.Fatalf("unexpected diff: %+v", lines)
	}
	if lines[1].Spans != nil {
		t.Errorf("pure addition should have no spans, got %+v", lines[1].Spans)
	}
}

func TestDiff_MissingFinalNewline(t *testing.T) {
	lines := Diff("a\nb", "a\nb\n")

	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %+v", len(lines), lines)
	}
	if removed := lines[1]; removed.Kind != Removed || !removed.NoNewline {
		t.Errorf("removed line should be marked as lacking a newline: %+v", removed)
	}
	if added := lines[2]; added.Kind != Added || added.NoNewline {
		t.Errorf("added line ends in a newline: %+v", added)
	}
}

func TestDiff_LineEndingChangeIsHighlighted(t *testing.T) {
	lines := Diff("a\n", "a\r\n")

	if len(lines) != 2 || lines[1].Kind != Added {
		t.Fatalf("unexpected diff: %+v", lines)
	}

	want := []Span{
		{Text: "a", Changed: false},
		{Text: "\r", Changed: true},
	}
	if !reflect.DeepEqual(lines[1].Spans, want) {
		t.Errorf("spans = %+v, want %+v", lines[1].Spans, want)
	}
}

func TestHasChanges(t *testing.T) {
	if HasChanges(Diff("same\n", "same\n")) {
		t.Error("identical content reported as changed")
	}
	if !HasChanges(Diff("a\n", "b\n")) {
		t.Error("different content reported as unchanged")
	}
}

// TestRender_Snapshots checks the plain-text layout of rendered diffs
// against golden files.
func TestRender_Snapshots(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		proposed string
	}{
		{"modified_line", "a\nb\nc\n", "a\nB2\nc\n"},
		{"replaced_with_more_lines", "one\ntwo\n", "one\nthree\nfour\n"},
		{"pure_addition", "a\n", "a\nb\n"},
		{"pure_removal", "a\nb\n", "a\n"},
		{"newline_added_at_end", "a\nb", "a\nb\n"},
		{"newline_removed_at_end", "a\nb\n", "a\nb"},
		{"crlf_to_lf", "a\r\nb\r\n", "a\nb\n"},
		{"lf_to_crlf", "a\nb\n", "a\r\nb\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lipgloss.SetColorProfile(termenv.Ascii)

			output := stripAnsiCodes(Render(Diff(tt.current, tt.proposed)))

			g := goldie.New(t)
			g.Assert(t, tt.name, []byte(output))
		})
	}
}
