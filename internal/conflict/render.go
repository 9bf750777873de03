package conflict

import (
	"strings"
)

// NoNewlineMarker follows a line that is not terminated by a newline.
const NoNewlineMarker = `\ No newline at end of file`

// crMarker is how a carriage return is shown, so CRLF and LF lines can be told apart.
const crMarker = "^M"

// Render formats lines for the terminal: unchanged lines are prefixed with a
// space, removed lines with '-' and added lines with '+'. Inline spans of
// added lines are highlighted. Carriage returns are shown as ^M and a line
// without a final newline is followed by NoNewlineMarker.
func Render(lines []Line) string {
	var sb strings.Builder

	for _, l := range lines {
		switch l.Kind {
		case Same:
			sb.WriteString(" " + visible(l.Text))
		case Removed:
			sb.WriteString(RemovedStyle.Render("-" + visible(l.Text)))
		case Added:
			if len(l.Spans) == 0 {
				sb.WriteString(AddedStyle.Render("+" + visible(l.Text)))
				break
			}

			sb.WriteString(AddedStyle.Render("+"))
			for _, span := range l.Spans {
				if span.Changed {
					sb.WriteString(HighlightStyle.Render(visible(span.Text)))
				} else {
					sb.WriteString(AddedStyle.Render(visible(span.Text)))
				}
			}
		}
		sb.WriteString("\n")

		if l.NoNewline {
			sb.WriteString(MarkerStyle.Render(NoNewlineMarker))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func visible(s string) string {
	return strings.ReplaceAll(s, "\r", crMarker)
}
