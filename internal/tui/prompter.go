package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/softprops/porteurbars/internal/prompt"
)

// TeaPrompter asks each question with a single-line bubbletea text input.
// The default value is shown as the input placeholder.
type TeaPrompter struct {
	in  io.Reader
	out io.Writer
}

// NewTeaPrompter creates a TeaPrompter reading keys from in and drawing to out
func NewTeaPrompter(in io.Reader, out io.Writer) *TeaPrompter {
	return &TeaPrompter{in: in, out: out}
}

// Ask runs a prompt program until the operator accepts or cancels.
func (p *TeaPrompter) Ask(label, defaultValue string) (string, error) {
	prog := tea.NewProgram(newAskModel(label, defaultValue), tea.WithInput(p.in), tea.WithOutput(p.out))

	final, err := prog.Run()
	if err != nil {
		return "", fmt.Errorf("running prompt: %w", err)
	}

	m, ok := final.(askModel)
	if !ok {
		return "", fmt.Errorf("unexpected model type")
	}
	if m.aborted {
		return "", prompt.ErrAborted
	}

	return m.answer, nil
}

// askModel is the bubbletea model behind a single question
type askModel struct {
	label        string
	defaultValue string
	input        textinput.Model
	answer       string
	done         bool
	aborted      bool
}

func newAskModel(label, defaultValue string) askModel {
	ti := textinput.New()
	ti.Placeholder = defaultValue
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 40
	ti.Focus()

	return askModel{
		label:        label,
		defaultValue: defaultValue,
		input:        ti,
	}
}

func (m askModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m askModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.answer = strings.TrimSpace(m.input.Value())
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m askModel) View() string {
	label := LabelStyle.Render(m.label)

	switch {
	case m.aborted:
		return label + " " + HelpStyle.Render("canceled") + "\n"
	case m.done:
		shown := m.answer
		if shown == "" {
			shown = m.defaultValue
		}
		return label + " " + AnswerStyle.Render(shown) + "\n"
	}

	return label + " " + m.input.View() + "\n" + HelpStyle.Render("enter to accept, esc to cancel") + "\n"
}
