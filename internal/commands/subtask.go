package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/balkashynov/todus/internal/models"
	"github.com/balkashynov/todus/internal/repository"
)

var subtaskCmd = &cobra.Command{
	Use:     "subtask",
	Aliases: []string{"sub"},
	Short:   "Manage the checklist of a task",
}

// withSubtasks is withApp for commands that need subtask support
func withSubtasks(fn func(*cobra.Command, []string, *app, repository.SubtaskStore)) func(*cobra.Command, []string) {
	return withApp(func(cmd *cobra.Command, args []string, a *app) {
		store, ok := a.repo.(repository.SubtaskStore)
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Error: the task store does not support subtasks")
			return
		}
		fn(cmd, args, a, store)
	})
}

var subtaskListCmd = &cobra.Command{
	Use:     "ls <task-id>",
	Aliases: []string{"list"},
	Short:   "List the subtasks of a task",
	Args:    cobra.ExactArgs(1),
	Run: withSubtasks(func(cmd *cobra.Command, args []string, a *app, store repository.SubtaskStore) {
		out := cmd.OutOrStdout()
		taskID, err := parseID(args[0])
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		subs, err := store.ListSubtasks(cmd.Context(), taskID)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}

		completed := 0
		for _, s := range subs {
			if s.IsCompleted() {
				completed++
			}
		}
		t := newTable(out)
		t.SetTitle(fmt.Sprintf("Subtasks of #%d (%d/%d done)", taskID, completed, len(subs)))
		t.AppendHeader(header("ID", "Name", "Status"))
		for _, s := range subs {
			t.AppendRow(table.Row{s.ID, s.Name, subtaskStatus(s)})
		}
		if len(subs) == 0 {
			t.AppendRow(table.Row{"", text.Faint.Sprint("No subtasks"), ""})
		}
		t.Render()
	}),
}

var subtaskAddCmd = &cobra.Command{
	Use:   "add <task-id> <name>",
	Short: "Add a subtask to a task",
	Args:  cobra.MinimumNArgs(2),
	Run: withSubtasks(func(cmd *cobra.Command, args []string, a *app, store repository.SubtaskStore) {
		out := cmd.OutOrStdout()
		taskID, err := parseID(args[0])
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		sub, err := store.CreateSubtask(cmd.Context(), taskID, strings.Join(args[1:], " "))
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "Added subtask #%d to task #%d: %s\n", sub.ID, taskID, sub.Name)
	}),
}

var subtaskToggleCmd = &cobra.Command{
	Use:     "toggle <subtask-id>",
	Aliases: []string{"done"},
	Short:   "Mark a subtask done, or back to pending",
	Args:    cobra.ExactArgs(1),
	Run: withSubtasks(func(cmd *cobra.Command, args []string, a *app, store repository.SubtaskStore) {
		out := cmd.OutOrStdout()
		id, err := parseID(args[0])
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		sub, err := store.ToggleSubtask(cmd.Context(), id)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if sub.IsCompleted() {
			fmt.Fprintf(out, "✅ Subtask #%d done\n", id)
		} else {
			fmt.Fprintf(out, "↩️  Subtask #%d back to pending\n", id)
		}
	}),
}

var subtaskRenameCmd = &cobra.Command{
	Use:   "rename <task-id> <subtask-id> <name>",
	Short: "Rename a subtask",
	Args:  cobra.MinimumNArgs(3),
	Run: withSubtasks(func(cmd *cobra.Command, args []string, a *app, store repository.SubtaskStore) {
		out := cmd.OutOrStdout()
		taskID, err := parseID(args[0])
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		id, err := parseID(args[1])
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}

		// the service replaces name and status together, so keep the current status
		subs, err := store.ListSubtasks(cmd.Context(), taskID)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		var current *models.SubTask
		for i := range subs {
			if subs[i].ID == id {
				current = &subs[i]
			}
		}
		if current == nil {
			fmt.Fprintf(out, "Error: task #%d has no subtask #%d\n", taskID, id)
			return
		}

		current.Name = strings.Join(args[2:], " ")
		sub, err := store.UpdateSubtask(cmd.Context(), *current)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "Renamed subtask #%d: %s\n", sub.ID, sub.Name)
	}),
}

var subtaskRemoveCmd = &cobra.Command{
	Use:     "rm <subtask-id>",
	Aliases: []string{"remove"},
	Short:   "Delete a subtask",
	Args:    cobra.ExactArgs(1),
	Run: withSubtasks(func(cmd *cobra.Command, args []string, a *app, store repository.SubtaskStore) {
		out := cmd.OutOrStdout()
		id, err := parseID(args[0])
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if err := store.DeleteSubtask(cmd.Context(), id); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "🗑️  Deleted subtask #%d\n", id)
	}),
}

func subtaskStatus(s models.SubTask) string {
	if s.IsCompleted() {
		return text.FgGreen.Sprint("✓ done")
	}
	return "○ todo"
}

func init() {
	subtaskCmd.AddCommand(subtaskListCmd)
	subtaskCmd.AddCommand(subtaskAddCmd)
	subtaskCmd.AddCommand(subtaskToggleCmd)
	subtaskCmd.AddCommand(subtaskRenameCmd)
	subtaskCmd.AddCommand(subtaskRemoveCmd)
}
