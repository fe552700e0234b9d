package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/todus/internal/trash"
	"github.com/balkashynov/todus/internal/tui"
)

var trashCmd = &cobra.Command{
	Use:   "trash <task-id>",
	Short: "Move a task to trash, or manage the trash",
	Long: `Move a task to trash. Trashed tasks are purged once they have been in
the trash for longer than trashRetentionDays (7 by default).`,
	Args: cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		taskID, err := parseID(args[0])
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}

		task, err := a.repo.SetTrashed(cmd.Context(), taskID, true)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "🗑️  Moved task #%d to trash: %s\n", task.ID, task.Name)
	}),
}

var trashListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "Purge expired tasks and list the trash",
	Args:    cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		category, err := a.categoryFlag(ctx, cmd)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		var categoryID *int64
		if category != nil {
			categoryID = &category.ID
		}

		res, err := a.sweeper.Run(ctx, categoryID)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if len(res.Purged) > 0 {
			fmt.Fprintf(out, "Purged %d expired task(s).\n", len(res.Purged))
		}
		printTrash(out, res.Kept, res.Policy, a.clock.Now())
	}),
}

var trashRestoreCmd = &cobra.Command{
	Use:   "restore <task-id>",
	Short: "Take a task out of the trash",
	Args:  cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		taskID, err := parseID(args[0])
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}

		task, err := a.sweeper.Restore(cmd.Context(), taskID)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "📤 Restored task #%d: %s\n", task.ID, task.Name)
	}),
}

var trashEmptyCmd = &cobra.Command{
	Use:   "empty",
	Short: "Permanently delete everything in the trash",
	Args:  cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		category, err := a.categoryFlag(ctx, cmd)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		var categoryID *int64
		scope := "the trash"
		if category != nil {
			categoryID = &category.ID
			scope = fmt.Sprintf("the trash of %q", category.Name)
		}

		trashed, err := a.repo.ListTrashed(ctx, categoryID)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if len(trashed) == 0 {
			fmt.Fprintln(out, "Trash is empty.")
			return
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			ok, err := tui.Confirm(fmt.Sprintf("Permanently delete %d task(s) in %s?", len(trashed), scope))
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				return
			}
			if !ok {
				fmt.Fprintln(out, "Cancelled.")
				return
			}
		}

		report, err := a.sweeper.EmptyAll(ctx, categoryID)
		if report != nil {
			fmt.Fprintf(out, "Deleted %d task(s).\n", len(report.Deleted))
		}
		if errors.Is(err, trash.ErrEmptyTrash) && report != nil {
			for taskID, failure := range report.Failed {
				fmt.Fprintf(out, "  #%d: %v\n", taskID, failure)
			}
		}
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}),
}

func init() {
	trashListCmd.Flags().StringP("category", "c", "", "Only this category (name or ID)")
	trashEmptyCmd.Flags().StringP("category", "c", "", "Only this category (name or ID)")
	trashEmptyCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	trashCmd.AddCommand(trashListCmd)
	trashCmd.AddCommand(trashRestoreCmd)
	trashCmd.AddCommand(trashEmptyCmd)
}
