package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/todus/internal/view"
)

// RunList starts the interactive task list. actions may be nil for a
// read-only list.
func RunList(sections []view.Section, actions Actions) error {
	model := NewListModel(sections, actions)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Confirm asks a yes/no question and reports the answer. Quitting without
// answering counts as no.
func Confirm(prompt string) (bool, error) {
	p := tea.NewProgram(NewConfirmModel(prompt))
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(ConfirmModel)
	return ok && m.Confirmed(), nil
}

// ErrCancelled is returned when the user leaves a prompt without answering
var ErrCancelled = errors.New("cancelled")

// Prompt asks for one line of text. A secret prompt masks the input.
func Prompt(label string, secret bool) (string, error) {
	p := tea.NewProgram(NewPromptModel(label, secret))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(PromptModel)
	if !ok {
		return "", ErrCancelled
	}
	value, submitted := m.Value()
	if !submitted {
		return "", ErrCancelled
	}
	return value, nil
}
