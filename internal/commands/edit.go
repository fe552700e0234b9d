package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/todus/internal/repository"
)

var editCmd = &cobra.Command{
	Use:   "edit <task_id>",
	Short: "Edit an existing task",
	Long: `Edit the fields of an existing task. Only the flags given are changed.

Usage:
  todus edit 42 --priority high --due 2w
  todus edit 42 --no-due`,
	Args: cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		now := a.clock.Now()

		taskID, err := parseID(args[0])
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}

		var fields repository.TaskFields
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			fields.Name = &name
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			fields.Description = &description
		}
		if due, _ := cmd.Flags().GetString("due"); due != "" {
			if fields.DueDate, err = parseDue(due, now); err != nil {
				fmt.Fprintf(out, "Error parsing due date: %v\n", err)
				return
			}
		}
		if noDue, _ := cmd.Flags().GetBool("no-due"); noDue {
			if fields.DueDate != nil {
				fmt.Fprintln(out, "Error: --due and --no-due cannot be combined")
				return
			}
			fields.ClearDueDate = true
		}
		category, _ := cmd.Flags().GetString("category")
		priority, _ := cmd.Flags().GetString("priority")
		if err := resolveRefs(ctx, a, category, priority, &fields); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}

		if fields.IsEmpty() {
			fmt.Fprintln(out, "Nothing to change. See 'todus edit --help'.")
			return
		}

		task, err := a.repo.UpdateTask(ctx, taskID, fields)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "Updated task #%d: %s\n", task.ID, task.Name)
		printTask(out, task, now)
	}),
}

func init() {
	editCmd.Flags().String("name", "", "New name")
	editCmd.Flags().StringP("description", "d", "", "New description")
	editCmd.Flags().StringP("category", "c", "", "Category name or ID")
	editCmd.Flags().StringP("priority", "p", "", "Priority name, level or ID")
	editCmd.Flags().String("due", "", "Due date: today, tomorrow, dd/mm/yyyy, X days, X hours, X weeks")
	editCmd.Flags().Bool("no-due", false, "Remove the due date")
}
