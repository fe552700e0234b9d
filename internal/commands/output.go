package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/balkashynov/todus/internal/clock"
	"github.com/balkashynov/todus/internal/engine"
	"github.com/balkashynov/todus/internal/models"
	"github.com/balkashynov/todus/internal/parser"
	"github.com/balkashynov/todus/internal/view"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	return t
}

func header(cols ...string) table.Row {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = text.FgHiMagenta.Sprint(c)
	}
	return row
}

// printSections renders every section as its own table
func printSections(out io.Writer, sections []view.Section, now time.Time) {
	for i, s := range sections {
		if i > 0 {
			fmt.Fprintln(out)
		}
		t := newTable(out)
		t.SetTitle(fmt.Sprintf("%s (%d)", s.Title, len(s.Tasks)))
		t.AppendHeader(header("ID", "Name", "Status", "Priority", "Category", "Due"))
		for _, task := range s.Tasks {
			t.AppendRow(table.Row{
				task.ID,
				task.Name,
				statusText(task),
				priorityText(task.Priority),
				categoryText(task.Category),
				dueText(task.DueDate, now),
			})
		}
		if len(s.Tasks) == 0 {
			t.AppendRow(table.Row{"", text.Faint.Sprint("No tasks"), "", "", "", ""})
		}
		t.Render()
	}
}

func statusText(task models.Task) string {
	if task.IsCompleted() {
		return text.FgGreen.Sprint("✓ done")
	}
	return "○ todo"
}

func priorityText(p *models.Priority) string {
	if p == nil {
		return text.Faint.Sprint("-")
	}
	switch {
	case p.Level >= 3:
		return text.FgHiRed.Sprint(p.Name)
	case p.Level == 2:
		return text.FgHiYellow.Sprint(p.Name)
	}
	return text.FgHiGreen.Sprint(p.Name)
}

func categoryText(c *models.Category) string {
	if c == nil {
		return text.Faint.Sprint("-")
	}
	return c.Name
}

func dueText(due *time.Time, now time.Time) string {
	if due == nil {
		return text.Faint.Sprint("-")
	}
	label := parser.FormatDueDate(due, now)
	if clock.DaysUntil(now, *due) < 0 {
		return text.FgHiRed.Sprint(label)
	}
	return label
}

// printReport summarizes what a pass changed and who was notified
func printReport(out io.Writer, res *engine.RefreshResult) {
	updates := res.Reconciled.Updates
	if len(updates) == 0 {
		fmt.Fprintln(out, "Nothing to reconcile.")
	} else {
		failed := make(map[int]error)
		for i, r := range res.Report.Results {
			if r.Err != nil {
				failed[i] = r.Err
			}
		}
		t := newTable(out)
		t.SetTitle("Reconciled")
		t.AppendHeader(header("Task", "Name", "Change", "Result"))
		for i, u := range updates {
			result := text.FgGreen.Sprint("ok")
			if err, ok := failed[i]; ok {
				result = text.FgHiRed.Sprint(err.Error())
			} else if i >= len(res.Report.Results) {
				result = text.Faint.Sprint("not applied")
			}
			t.AppendRow(table.Row{u.TaskID, u.TaskName, changeText(u, res.Priorities), result})
		}
		t.Render()
	}

	fmt.Fprintf(out, "Notifications: %d requested, %d sent\n", len(res.Reconciled.Notifications), len(res.Sent))
}

func changeText(u engine.TaskUpdate, priorities []models.Priority) string {
	if u.Kind == engine.UpdateTrash {
		return "moved to trash"
	}
	return fmt.Sprintf("priority %s → %s", priorityName(u.FromPriorityID, priorities), priorityName(u.ToPriorityID, priorities))
}

func priorityName(id int64, priorities []models.Priority) string {
	for _, p := range priorities {
		if p.ID == id {
			return p.Name
		}
	}
	return fmt.Sprintf("#%d", id)
}

// printTrash lists trashed tasks with their age and time left
func printTrash(out io.Writer, tasks []models.Task, policy models.TrashRetentionPolicy, now time.Time) {
	t := newTable(out)
	t.SetTitle(fmt.Sprintf("Trash (%d, kept %d days)", len(tasks), policy.RetentionDays))
	t.AppendHeader(header("ID", "Name", "Category", "Trashed", "Purged"))
	for _, task := range tasks {
		trashed, purge := text.Faint.Sprint("unknown"), text.Faint.Sprint("never")
		if task.DateTrashed != nil {
			trashed = humanize.RelTime(*task.DateTrashed, now, "ago", "from now")
			purge = humanize.RelTime(task.DateTrashed.AddDate(0, 0, policy.RetentionDays), now, "ago", "from now")
		}
		t.AppendRow(table.Row{task.ID, task.Name, categoryText(task.Category), trashed, purge})
	}
	if len(tasks) == 0 {
		t.AppendRow(table.Row{"", text.Faint.Sprint("Trash is empty"), "", "", ""})
	}
	t.Render()
}

// printTask prints the fields of a created or edited task
func printTask(out io.Writer, task *models.Task, now time.Time) {
	if task.Category != nil {
		fmt.Fprintf(out, "  Category: %s\n", task.Category.Name)
	}
	if task.Priority != nil {
		fmt.Fprintf(out, "  Priority: %s\n", task.Priority.Name)
	}
	if task.DueDate != nil {
		fmt.Fprintf(out, "  Due: %s\n", parser.FormatDueDate(task.DueDate, now))
	}
	if task.Description != "" {
		fmt.Fprintf(out, "  Description: %s\n", task.Description)
	}
}
