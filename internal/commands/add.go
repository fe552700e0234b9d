package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/todus/internal/parser"
	"github.com/balkashynov/todus/internal/repository"
)

var addCmd = &cobra.Command{
	Use:   "add <task description>",
	Short: "Add a new task",
	Long: `Add a new task with optional metadata.

Smart parsing syntax:
  @category   - Category name or ID
  +priority   - Priority name, alias (lo/med/hi), level or ID
  due:3days   - Due date (today, tomorrow, dd/mm/yyyy, yyyy-mm-dd, X hours/days/weeks)

Flags take precedence over parsed values.

Example:
  todus add "Write report @work +high due:3days"`,
	Args: cobra.MinimumNArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		now := a.clock.Now()

		parsed := parser.ParseTitle(strings.Join(args, " "), now)
		if len(parsed.Errors) > 0 {
			fmt.Fprintf(out, "Error: %s\n", strings.Join(parsed.Errors, ", "))
			return
		}

		category, priority, due := parsed.Category, parsed.Priority, parsed.DueDate
		if flag, _ := cmd.Flags().GetString("category"); flag != "" {
			category = flag
		}
		if flag, _ := cmd.Flags().GetString("priority"); flag != "" {
			priority = flag
		}
		if flag, _ := cmd.Flags().GetString("due"); flag != "" {
			d, err := parseDue(flag, now)
			if err != nil {
				fmt.Fprintf(out, "Error parsing due date: %v\n", err)
				return
			}
			due = d
		}

		fields := repository.TaskFields{Name: &parsed.Title, DueDate: due}
		if description, _ := cmd.Flags().GetString("description"); description != "" {
			fields.Description = &description
		}
		if err := resolveRefs(ctx, a, category, priority, &fields); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}

		task, err := a.repo.CreateTask(ctx, fields)
		if err != nil {
			fmt.Fprintf(out, "Error creating task: %v\n", err)
			return
		}

		fmt.Fprintf(out, "Created task #%d: %s\n", task.ID, task.Name)
		printTask(out, task, now)
	}),
}

// resolveRefs turns category and priority references into ids on fields
func resolveRefs(ctx context.Context, a *app, category, priority string, fields *repository.TaskFields) error {
	if category != "" {
		categories, err := a.repo.ListCategories(ctx)
		if err != nil {
			return err
		}
		c, err := parser.ResolveCategory(category, categories)
		if err != nil {
			return err
		}
		fields.CategoryID = &c.ID
	}
	if priority != "" {
		priorities, err := a.repo.ListPriorities(ctx)
		if err != nil {
			return err
		}
		p, err := parser.ResolvePriority(priority, priorities)
		if err != nil {
			return err
		}
		fields.PriorityID = &p.ID
	}
	return nil
}

// parseDue parses a --due flag value
func parseDue(value string, now time.Time) (*time.Time, error) {
	due, err := parser.ParseDueDate(value, now)
	if err != nil {
		return nil, err
	}
	if due == nil {
		return nil, fmt.Errorf("due date is empty")
	}
	return due, nil
}

func init() {
	addCmd.Flags().StringP("category", "c", "", "Category name or ID")
	addCmd.Flags().StringP("priority", "p", "", "Priority name, level or ID")
	addCmd.Flags().String("due", "", "Due date: today, tomorrow, dd/mm/yyyy, X days, X hours, X weeks")
	addCmd.Flags().StringP("description", "d", "", "Description")
}
