package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func typeText(m askModel, text string) askModel {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(askModel)
}

func pressKey(m askModel, k tea.KeyType) (askModel, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(askModel), cmd
}

func TestAskModel_New(t *testing.T) {
	m := newAskModel("name", "widget")

	if m.input.Placeholder != "widget" {
		t.Errorf("Placeholder = %s, want widget", m.input.Placeholder)
	}
	if !m.input.Focused() {
		t.Error("input should be focused")
	}
	if m.done || m.aborted {
		t.Error("new model should be pending")
	}
}

func TestAskModel_EnterAcceptsTrimmedInput(t *testing.T) {
	m := newAskModel("name", "widget")
	m = typeText(m, " gadget ")

	m, cmd := pressKey(m, tea.KeyEnter)
	if !m.done {
		t.Fatal("enter should finish the prompt")
	}
	if m.answer != "gadget" {
		t.Errorf("answer = %q, want gadget", m.answer)
	}
	if cmd == nil {
		t.Error("enter should return a quit command")
	}
}

func TestAskModel_EnterWithoutInputIsEmpty(t *testing.T) {
	m, _ := pressKey(newAskModel("name", "widget"), tea.KeyEnter)

	if m.answer != "" {
		t.Errorf("answer = %q, want empty so the caller applies the default", m.answer)
	}
}

func TestAskModel_Cancel(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m, _ := pressKey(newAskModel("name", ""), k)
		if !m.aborted {
			t.Errorf("key %v should abort", k)
		}
	}
}

func TestAskModel_View(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	m := newAskModel("name", "widget")
	if view := m.View(); !strings.Contains(view, "name") || !strings.Contains(view, "enter to accept") {
		t.Errorf("pending view missing label or help:\n%s", view)
	}

	m, _ = pressKey(m, tea.KeyEnter)
	if view := m.View(); !strings.Contains(view, "widget") {
		t.Errorf("done view should show the default that will be used:\n%s", view)
	}
}
