package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PromptModel asks for a single line of text
type PromptModel struct {
	label     string
	input     textinput.Model
	submitted bool
	submit    key.Binding
	quit      key.Binding
}

// NewPromptModel creates a prompt. A secret prompt masks what is typed.
func NewPromptModel(label string, secret bool) PromptModel {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 256
	ti.Width = 40
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	ti.Focus()
	return PromptModel{
		label:  label,
		input:  ti,
		submit: key.NewBinding(key.WithKeys("enter")),
		quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc")),
	}
}

// Value returns the entered text and whether it was submitted
func (m PromptModel) Value() (string, bool) {
	return m.input.Value(), m.submitted
}

func (m PromptModel) Init() tea.Cmd { return textinput.Blink }

func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.quit):
			return m, tea.Quit
		case key.Matches(keyMsg, m.submit):
			m.submitted = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m PromptModel) View() string {
	if m.submitted {
		return ""
	}
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorPrimaryText))
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText))
	return labelStyle.Render(m.label) + "\n" + m.input.View() + "\n" + hintStyle.Render("enter submit • esc cancel") + "\n"
}
