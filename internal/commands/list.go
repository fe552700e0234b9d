package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/todus/internal/engine"
	"github.com/balkashynov/todus/internal/models"
	"github.com/balkashynov/todus/internal/repository"
	"github.com/balkashynov/todus/internal/tui"
)

var listCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "Reconcile and list tasks",
	Long: `Run a reconciliation pass and list the tasks.

Without --category the list shows every task, followed by one section per
pinned category when showCategoryList is on. With --category only that
category is shown, in its configured order.`,
	Args: cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		scope, err := scopeFromFlags(ctx, cmd, a)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}

		res, err := a.engine.Refresh(ctx, scope)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if n := len(res.Report.Succeeded()); n > 0 {
			fmt.Fprintf(out, "Reconciled %d task(s).\n", n)
		}

		if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
			if err := tui.RunList(res.Sections, &listActions{a: a}); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
			return
		}
		printSections(out, res.Sections, a.clock.Now())
	}),
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run a reconciliation pass and show what changed",
	Args:  cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		res, err := a.engine.Refresh(cmd.Context(), engine.Scope{})
		if res != nil {
			printReport(out, res)
		}
		switch {
		case errors.Is(err, engine.ErrAbandoned):
			fmt.Fprintln(out, "Refresh interrupted; changes were saved but the list was not reloaded.")
		case err != nil:
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}),
}

func scopeFromFlags(ctx context.Context, cmd *cobra.Command, a *app) (engine.Scope, error) {
	var scope engine.Scope

	category, err := a.categoryFlag(ctx, cmd)
	if err != nil {
		return scope, err
	}
	if category != nil {
		scope.CategoryID = &category.ID
	}
	if cmd.Flags().Changed("show-completed") {
		show, _ := cmd.Flags().GetBool("show-completed")
		scope.ShowCompleted = &show
	}
	if order, _ := cmd.Flags().GetString("order"); order != "" {
		mode, err := models.ParseOrderMode(order)
		if err != nil {
			return scope, err
		}
		scope.Order = mode
	}
	return scope, nil
}

// listActions lets the interactive list complete and trash tasks
type listActions struct {
	a *app
}

func (l *listActions) ToggleDone(ctx context.Context, task models.Task) (*models.Task, error) {
	status := models.StatusCompleted
	if task.IsCompleted() {
		status = models.StatusPending
	}
	return l.a.repo.UpdateTask(ctx, task.ID, repository.TaskFields{Status: &status})
}

func (l *listActions) Trash(ctx context.Context, taskID int64) error {
	_, err := l.a.repo.SetTrashed(ctx, taskID, true)
	return err
}

func init() {
	listCmd.Flags().StringP("category", "c", "", "Show one category (name or ID)")
	listCmd.Flags().Bool("show-completed", false, "Show completed tasks in a category view")
	listCmd.Flags().StringP("order", "o", "", "Order: date_created, due_date, priority_asc, priority_desc, name_asc, name_desc")
	listCmd.Flags().BoolP("interactive", "i", false, "Interactive list")
}
