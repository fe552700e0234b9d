package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmModel is a single yes/no prompt
type ConfirmModel struct {
	prompt    string
	yes       bool // current selection
	answered  bool
	confirmed bool
	keys      confirmKeyMap
}

type confirmKeyMap struct {
	Toggle key.Binding
	Yes    key.Binding
	No     key.Binding
	Submit key.Binding
	Quit   key.Binding
}

// NewConfirmModel creates a prompt that defaults to "No"
func NewConfirmModel(prompt string) ConfirmModel {
	return ConfirmModel{
		prompt: prompt,
		keys: confirmKeyMap{
			Toggle: key.NewBinding(key.WithKeys("left", "right", "h", "l", "tab")),
			Yes:    key.NewBinding(key.WithKeys("y", "Y")),
			No:     key.NewBinding(key.WithKeys("n", "N")),
			Submit: key.NewBinding(key.WithKeys("enter")),
			Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc", "q")),
		},
	}
}

// Confirmed reports whether the user answered yes
func (m ConfirmModel) Confirmed() bool {
	return m.answered && m.confirmed
}

func (m ConfirmModel) Init() tea.Cmd { return nil }

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Toggle):
		m.yes = !m.yes
	case key.Matches(keyMsg, m.keys.Yes):
		m.answered, m.confirmed = true, true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.No):
		m.answered, m.confirmed = true, false
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Submit):
		m.answered, m.confirmed = true, m.yes
		return m, tea.Quit
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	if m.answered {
		return ""
	}
	promptStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorPrimaryText))
	active := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Background(lipgloss.Color(ColorAccentMain)).
		Padding(0, 2)
	inactive := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorSecondaryText)).
		Padding(0, 2)

	yes, no := inactive.Render("Yes"), active.Render("No")
	if m.yes {
		yes, no = active.Render("Yes"), inactive.Render("No")
	}
	help := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText)).Italic(true).
		Render("y/n answer · ←/→ choose · enter confirm · esc cancel")

	return lipgloss.JoinVertical(lipgloss.Left,
		promptStyle.Render(m.prompt),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, yes, " ", no),
		"",
		help,
	) + "\n"
}
