package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/balkashynov/todus/internal/models"
	"github.com/balkashynov/todus/internal/prefs"
	"github.com/balkashynov/todus/internal/repository"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "Manage categories",
}

var categoryListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List categories and their settings",
	Args:    cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		categories, err := a.repo.ListCategories(cmd.Context())
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		cfg, err := prefs.Load(a.prefs, a.logger)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		pinned := make(map[int64]bool, len(cfg.Pinned))
		for _, id := range cfg.Pinned {
			pinned[id] = true
		}

		t := newTable(out)
		t.AppendHeader(header("ID", "Name", "Order", "Show done", "Auto-trash", "Pinned"))
		for _, c := range categories {
			autoTrash := "off"
			if days, ok := c.AutoDeleteAfter(); ok {
				autoTrash = fmt.Sprintf("after %d day(s)", days)
			}
			order := c.OrderTasks
			if order == "" {
				order = models.DefaultOrder
			}
			t.AppendRow(table.Row{c.ID, c.Name, order, yesNo(c.ShowComplete), autoTrash, yesNo(pinned[c.ID])})
		}
		t.Render()
	}),
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		writer, ok := a.repo.(repository.CategoryWriter)
		if !ok {
			fmt.Fprintln(out, "Error: the task store does not support editing categories")
			return
		}

		category := &models.Category{Name: args[0], OrderTasks: models.DefaultOrder}
		if err := applyCategoryFlags(cmd, category); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if err := writer.SaveCategory(cmd.Context(), category); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "Created category #%d: %s\n", category.ID, category.Name)
	}),
}

var categoryEditCmd = &cobra.Command{
	Use:   "edit <category>",
	Short: "Change a category's settings",
	Args:  cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		writer, ok := a.repo.(repository.CategoryWriter)
		if !ok {
			fmt.Fprintln(out, "Error: the task store does not support editing categories")
			return
		}

		category, err := lookupCategory(cmd.Context(), a, args[0])
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			category.Name = name
		}
		if err := applyCategoryFlags(cmd, category); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if err := writer.SaveCategory(cmd.Context(), category); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "Updated category #%d: %s\n", category.ID, category.Name)
	}),
}

// applyCategoryFlags copies the flags that were set onto c
func applyCategoryFlags(cmd *cobra.Command, c *models.Category) error {
	flags := cmd.Flags()
	if flags.Changed("description") {
		c.Description, _ = flags.GetString("description")
	}
	if flags.Changed("order") {
		value, _ := flags.GetString("order")
		mode, err := models.ParseOrderMode(value)
		if err != nil {
			return err
		}
		c.OrderTasks = mode
	}
	if flags.Changed("show-completed") {
		c.ShowComplete, _ = flags.GetBool("show-completed")
	}
	if flags.Changed("auto-trash-days") {
		days, _ := flags.GetInt("auto-trash-days")
		if days <= 0 {
			c.AutoDeleteComplete = false
			c.DeleteCompleteDays = nil
		} else {
			c.AutoDeleteComplete = true
			c.DeleteCompleteDays = &days
		}
	}
	return c.Validate()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	for _, c := range []*cobra.Command{categoryAddCmd, categoryEditCmd} {
		c.Flags().String("description", "", "Description")
		c.Flags().StringP("order", "o", "", "Task order: date_created, due_date, priority_asc, priority_desc, name_asc, name_desc")
		c.Flags().Bool("show-completed", false, "Show completed tasks in the category view")
		c.Flags().Int("auto-trash-days", 0, "Move completed tasks to trash after this many days (0 turns it off)")
	}
	categoryEditCmd.Flags().String("name", "", "New name")

	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryEditCmd)
}
