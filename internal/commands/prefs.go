package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/balkashynov/todus/internal/models"
	"github.com/balkashynov/todus/internal/parser"
	"github.com/balkashynov/todus/internal/prefs"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show and change preferences",
	Long: fmt.Sprintf(`Preferences tune reconciliation and the list view.

Known keys: %s`, strings.Join(prefs.KnownKeys(), ", ")),
}

var prefsListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List every preference",
	Args:    cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		t := newTable(out)
		t.AppendHeader(header("Key", "Value"))
		for _, key := range prefs.KnownKeys() {
			value, ok, err := a.prefs.GetString(key)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				return
			}
			if !ok {
				value = text.Faint.Sprint("(default)")
			}
			t.AppendRow(table.Row{key, value})
		}
		t.Render()

		cfg, err := prefs.Load(a.prefs, a.logger)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if len(cfg.Pinned) > 0 {
			ids := make([]string, len(cfg.Pinned))
			for i, id := range cfg.Pinned {
				ids[i] = fmt.Sprintf("#%d", id)
			}
			fmt.Fprintf(out, "Pinned categories: %s\n", strings.Join(ids, ", "))
		}
		fmt.Fprintf(out, "Priority rules: %d (see 'todus rules ls')\n", len(cfg.Rules))
	}),
}

var prefsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one preference",
	Args:  cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		value, ok, err := a.prefs.GetString(args[0])
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if !ok {
			fmt.Fprintf(out, "%s is not set\n", args[0])
			return
		}
		fmt.Fprintln(out, value)
	}),
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one preference",
	Args:  cobra.ExactArgs(2),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		if err := prefs.Set(a.prefs, args[0], args[1]); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "%s = %s\n", args[0], strings.TrimSpace(args[1]))
	}),
}

var prefsPinCmd = &cobra.Command{
	Use:   "pin <category>",
	Short: "Show a category as its own section in 'todus ls'",
	Args:  cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		category, err := lookupCategory(cmd.Context(), a, args[0])
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if err := prefs.Pin(a.prefs, category.ID); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if err := a.prefs.SetString(prefs.KeyShowCategoryList, "true"); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "📌 Pinned %s\n", category.Name)
	}),
}

var prefsUnpinCmd = &cobra.Command{
	Use:   "unpin <category>",
	Short: "Remove a category's own section",
	Args:  cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		category, err := lookupCategory(cmd.Context(), a, args[0])
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if err := prefs.Unpin(a.prefs, category.ID); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "Unpinned %s\n", category.Name)
	}),
}

func lookupCategory(ctx context.Context, a *app, ref string) (*models.Category, error) {
	categories, err := a.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return parser.ResolveCategory(ref, categories)
}

func init() {
	prefsCmd.AddCommand(prefsListCmd)
	prefsCmd.AddCommand(prefsGetCmd)
	prefsCmd.AddCommand(prefsSetCmd)
	prefsCmd.AddCommand(prefsPinCmd)
	prefsCmd.AddCommand(prefsUnpinCmd)
}
