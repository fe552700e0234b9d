package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/todus/internal/clock"
	"github.com/balkashynov/todus/internal/models"
	"github.com/balkashynov/todus/internal/parser"
	"github.com/balkashynov/todus/internal/view"
)

// Actions are the writes the list can trigger on the selected task
type Actions interface {
	ToggleDone(ctx context.Context, task models.Task) (*models.Task, error)
	Trash(ctx context.Context, taskID int64) error
}

// row is either a section header or a task
type row struct {
	header string
	task   *models.Task
}

// actionMsg reports the outcome of an Actions call
type actionMsg struct {
	updated   *models.Task
	trashedID int64
	err       error
}

type listKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Prev   key.Binding
	Next   key.Binding
	Search key.Binding
	Done   key.Binding
	Trash  key.Binding
	Quit   key.Binding
}

func (k listKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Prev, k.Next, k.Search, k.Done, k.Trash, k.Quit}
}

func (k listKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultListKeys() listKeyMap {
	return listKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Prev:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev page")),
		Next:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next page")),
		Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Done:   key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "done/undo")),
		Trash:  key.NewBinding(key.WithKeys("delete", "t"), key.WithHelp("t", "trash")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q", "esc"), key.WithHelp("q/esc", "quit")),
	}
}

// ListModel renders sectioned tasks with a details panel
type ListModel struct {
	width  int
	height int

	sections []view.Section
	rows     []row
	selected int // index in rows; always a task row when one exists

	actions Actions
	now     func() time.Time
	status  string
	err     error

	keys      listKeyMap
	help      help.Model
	search    textinput.Model
	searching bool

	rowsPerPage int
}

// NewListModel creates a list over sections
func NewListModel(sections []view.Section, actions Actions) ListModel {
	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "task name"
	search.CharLimit = 100

	m := ListModel{
		sections:    sections,
		actions:     actions,
		now:         time.Now,
		keys:        defaultListKeys(),
		help:        help.New(),
		search:      search,
		rowsPerPage: 10,
	}
	m.rebuild()
	return m
}

// Init initializes the model
func (m ListModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// header, pagination, help, borders and margins
		m.rowsPerPage = max(m.height-12, 3)
		return m, nil

	case actionMsg:
		return m.applyAction(msg), nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKeys(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			if msg.String() == "esc" && m.search.Value() != "" {
				m.search.Reset()
				m.rebuild()
				return m, nil
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.selected = m.nextTaskRow(m.selected, -1)
		case key.Matches(msg, m.keys.Down):
			m.selected = m.nextTaskRow(m.selected, 1)
		case key.Matches(msg, m.keys.Prev):
			m = m.jumpPage(-1)
		case key.Matches(msg, m.keys.Next):
			m = m.jumpPage(1)
		case key.Matches(msg, m.keys.Search):
			m.searching = true
			cmd := m.search.Focus()
			return m, cmd
		case key.Matches(msg, m.keys.Done):
			return m, m.toggleSelected()
		case key.Matches(msg, m.keys.Trash):
			return m, m.trashSelected()
		}
	}

	return m, nil
}

// handleSearchKeys feeds the search input and refilters on every keystroke
func (m ListModel) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.Reset()
		m.rebuild()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.rebuild()
	return m, cmd
}

// rebuild flattens the sections into rows, applying the search filter, and
// keeps the selection on the same task when it is still visible
func (m *ListModel) rebuild() {
	var selectedID int64 = -1
	if t := m.selectedTask(); t != nil {
		selectedID = t.ID
	}

	query := strings.ToLower(strings.TrimSpace(m.search.Value()))
	m.rows = nil
	for si := range m.sections {
		s := &m.sections[si]
		m.rows = append(m.rows, row{header: fmt.Sprintf("%s (%d)", s.Title, len(s.Tasks))})
		for ti := range s.Tasks {
			t := &s.Tasks[ti]
			if query != "" && !strings.Contains(strings.ToLower(t.Name), query) {
				continue
			}
			m.rows = append(m.rows, row{task: t})
		}
	}

	m.selected = m.nextTaskRow(-1, 1)
	for i, r := range m.rows {
		if r.task != nil && r.task.ID == selectedID {
			m.selected = i
			break
		}
	}
}

// nextTaskRow returns the first task row after from in direction dir, or
// from when there is none
func (m ListModel) nextTaskRow(from, dir int) int {
	for i := from + dir; i >= 0 && i < len(m.rows); i += dir {
		if m.rows[i].task != nil {
			return i
		}
	}
	if from < 0 {
		return 0
	}
	return from
}

func (m ListModel) selectedTask() *models.Task {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return nil
	}
	return m.rows[m.selected].task
}

func (m ListModel) page() int {
	return m.selected / m.rowsPerPage
}

func (m ListModel) pageCount() int {
	return max((len(m.rows)+m.rowsPerPage-1)/m.rowsPerPage, 1)
}

// jumpPage moves the selection to the first task of the neighbouring page
func (m ListModel) jumpPage(dir int) ListModel {
	target := m.page() + dir
	if target < 0 || target >= m.pageCount() {
		return m
	}
	if idx := m.nextTaskRow(target*m.rowsPerPage-1, 1); m.rows[idx].task != nil {
		m.selected = idx
	}
	return m
}

func (m ListModel) toggleSelected() tea.Cmd {
	t := m.selectedTask()
	if t == nil || m.actions == nil {
		return nil
	}
	task, actions := *t, m.actions
	return func() tea.Msg {
		updated, err := actions.ToggleDone(context.Background(), task)
		return actionMsg{updated: updated, err: err}
	}
}

func (m ListModel) trashSelected() tea.Cmd {
	t := m.selectedTask()
	if t == nil || m.actions == nil {
		return nil
	}
	taskID, actions := t.ID, m.actions
	return func() tea.Msg {
		if err := actions.Trash(context.Background(), taskID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{trashedID: taskID}
	}
}

// applyAction folds the result of a write back into the sections
func (m ListModel) applyAction(msg actionMsg) ListModel {
	m.err = msg.err
	if msg.err != nil {
		m.status = ""
		return m
	}

	sections := make([]view.Section, len(m.sections))
	for i, s := range m.sections {
		tasks := make([]models.Task, 0, len(s.Tasks))
		for _, t := range s.Tasks {
			switch {
			case msg.trashedID != 0 && t.ID == msg.trashedID:
				continue
			case msg.updated != nil && t.ID == msg.updated.ID:
				t = *msg.updated
			}
			tasks = append(tasks, t)
		}
		s.Tasks = tasks
		sections[i] = s
	}
	m.sections = sections

	switch {
	case msg.trashedID != 0:
		m.status = fmt.Sprintf("Task #%d moved to trash", msg.trashedID)
	case msg.updated != nil && msg.updated.IsCompleted():
		m.status = fmt.Sprintf("Task #%d completed", msg.updated.ID)
	case msg.updated != nil:
		m.status = fmt.Sprintf("Task #%d reopened", msg.updated.ID)
	}
	m.rebuild()
	return m
}

// View renders the TUI
func (m ListModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 1

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTaskTable(leftWidth),
		" ",
		m.renderTaskDetails(rightWidth),
	)

	var bottom string
	if m.searching {
		bottom = m.renderSearchBar()
	} else {
		bottom = m.renderHelpBar()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		"",
		content,
		m.renderStatus(),
		bottom,
	)
}

// renderTaskTable renders the left panel with the sectioned task table
func (m ListModel) renderTaskTable(width int) string {
	var b strings.Builder
	now := m.now()

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccentBright))

	availableWidth := width - 4
	idWidth := 5
	statusWidth := 8
	priorityWidth := 8
	dueWidth := 10
	nameWidth := max(availableWidth-idWidth-statusWidth-priorityWidth-dueWidth-6, 16)

	columnHeaderStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorSecondaryText)).
		Padding(0, 1)
	b.WriteString(columnHeaderStyle.Render(fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s",
		idWidth, "ID",
		nameWidth, "NAME",
		statusWidth, "STATUS",
		priorityWidth, "PRIORITY",
		dueWidth, "DUE")))
	b.WriteString("\n")

	if len(m.rows) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true)
		b.WriteString("\n" + emptyStyle.Render("No tasks found"))
	}

	start := m.page() * m.rowsPerPage
	end := min(start+m.rowsPerPage, len(m.rows))
	for i := start; i < end; i++ {
		r := m.rows[i]
		if r.task == nil {
			b.WriteString("\n")
			b.WriteString(headerStyle.Render(r.header))
			b.WriteString("\n")
			continue
		}
		task := r.task

		name := truncate(task.Name, nameWidth)
		statusText, statusColor := "○ todo", ColorSecondaryText
		if task.IsCompleted() {
			statusText, statusColor = "✓ done", ColorSuccess
			name = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText)).Strikethrough(true).Render(name)
		}

		priorityText, priorityColor := "-", ColorDisabledText
		if task.Priority != nil {
			priorityText = truncate(task.Priority.Name, priorityWidth)
			if task.Priority.Color != "" {
				priorityColor = task.Priority.Color
			}
		}

		dueText, dueColor := dueLabel(task.DueDate, now)

		rowContent := fmt.Sprintf("%-*s %s %s %s %s",
			idWidth, fmt.Sprintf("#%d", task.ID),
			pad(name, nameWidth),
			pad(lipgloss.NewStyle().Foreground(lipgloss.Color(statusColor)).Render(statusText), statusWidth),
			pad(lipgloss.NewStyle().Foreground(lipgloss.Color(priorityColor)).Render(priorityText), priorityWidth),
			lipgloss.NewStyle().Foreground(lipgloss.Color(dueColor)).Render(dueText))

		if i == m.selected {
			selectedBorder := lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color(ColorAccentMain)).
				Bold(true).
				Padding(0, 1)
			b.WriteString(selectedBorder.Render(rowContent))
		} else {
			b.WriteString(" " + rowContent)
		}
		b.WriteString("\n")
	}

	if m.pageCount() > 1 {
		pageStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHelpText)).
			Align(lipgloss.Center).
			Width(width - 2).
			MarginTop(1)
		b.WriteString(pageStyle.Render(fmt.Sprintf("Page %d/%d", m.page()+1, m.pageCount())))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width).
		Render(b.String())
}

// renderTaskDetails renders the right panel with the selected task
func (m ListModel) renderTaskDetails(width int) string {
	var b strings.Builder
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))

	task := m.selectedTask()
	if task == nil {
		logoStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorAccentMain)).
			Bold(true).
			Align(lipgloss.Center).
			Width(width)
		b.WriteString(logoStyle.Render("todus"))

		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true).
			Align(lipgloss.Center).
			Width(width).
			MarginTop(2)
		b.WriteString("\n")
		b.WriteString(emptyStyle.Render("Nothing to show"))
	} else {
		titleStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorPrimaryText)).
			Width(width)
		b.WriteString(titleStyle.Render(fmt.Sprintf("#%d %s", task.ID, task.Name)))
		b.WriteString("\n\n")

		statusColor := ColorSecondaryText
		if task.IsCompleted() {
			statusColor = ColorSuccess
		}
		b.WriteString(label.Render("Status: "))
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(statusColor)).Bold(true).Render(string(task.Status)))
		b.WriteString("\n")

		if task.Category != nil {
			b.WriteString(label.Render("Category: "))
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Render(task.Category.Name))
			b.WriteString("\n")
		}

		if task.Priority != nil {
			color := task.Priority.Color
			if color == "" {
				color = ColorSecondaryText
			}
			b.WriteString(label.Render("Priority: "))
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(task.Priority.Name))
			b.WriteString("\n")
		}

		if task.DueDate != nil {
			_, color := dueLabel(task.DueDate, m.now())
			b.WriteString(label.Render("Due: "))
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(parser.FormatDueDate(task.DueDate, m.now())))
			b.WriteString("\n")
		}

		if task.CompletedAt != nil {
			b.WriteString(label.Render("Completed: "))
			b.WriteString(task.CompletedAt.Format("02/01/2006 15:04"))
			b.WriteString("\n")
		}

		if !task.DateCreated.IsZero() {
			b.WriteString(label.Render("Created: "))
			b.WriteString(task.DateCreated.Format("02/01/2006 15:04"))
			b.WriteString("\n")
		}

		if task.Description != "" {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorSecondaryText)).
				Italic(true).
				Width(width - 2).
				Render(task.Description))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width).
		Render(b.String())
}

func (m ListModel) renderStatus() string {
	switch {
	case m.err != nil:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render("Error: " + m.err.Error())
	case m.status != "":
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess)).Render(m.status)
	}
	return ""
}

func (m ListModel) renderSearchBar() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Background(lipgloss.Color(ColorBorder)).
		Padding(0, 1).
		Width(m.width - 2).
		Render(m.search.View())
}

func (m ListModel) renderHelpBar() string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(m.width).
		Render(m.help.View(m.keys))
}

// dueLabel returns the short due column text and its color
func dueLabel(due *time.Time, now time.Time) (string, string) {
	if due == nil {
		return "-", ColorDisabledText
	}
	days := clock.DaysUntil(now, *due)
	switch {
	case days < 0:
		return "OVERDUE", ColorError
	case days == 0:
		return "TODAY", ColorWarning
	case days == 1:
		return "TOMORROW", ColorWarning
	case days <= 7:
		return fmt.Sprintf("%dd", days), ColorAccentBright
	default:
		return due.In(now.Location()).Format("02/01"), ColorPrimaryText
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width > 3 {
		return string(r[:width-3]) + "..."
	}
	return string(r[:width])
}

// pad right-pads styled text to width visible cells
func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
