package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/todus/internal/models"
	"github.com/balkashynov/todus/internal/repository"
)

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		task, err := setStatus(cmd, a, args[0], models.StatusCompleted)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Error: %v\n", err)
			return
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✅ Marked task #%d as done: %s\n", task.ID, task.Name)
		if task.CompletedAt != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Completed at: %s\n", task.CompletedAt.Format("15:04:05"))
		}
	}),
}

var undoneCmd = &cobra.Command{
	Use:   "undone [task-id]",
	Short: "Mark a completed task back to pending",
	Args:  cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		task, err := setStatus(cmd, a, args[0], models.StatusPending)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Error: %v\n", err)
			return
		}

		fmt.Fprintf(cmd.OutOrStdout(), "↩️  Marked task #%d back to pending: %s\n", task.ID, task.Name)
	}),
}

func setStatus(cmd *cobra.Command, a *app, arg string, status models.Status) (*models.Task, error) {
	taskID, err := parseID(arg)
	if err != nil {
		return nil, err
	}
	return a.repo.UpdateTask(cmd.Context(), taskID, repository.TaskFields{Status: &status})
}
