package commands

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/balkashynov/todus/internal/models"
	"github.com/balkashynov/todus/internal/parser"
	"github.com/balkashynov/todus/internal/prefs"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage priority escalation rules",
	Long: `Priority rules raise the priority of a task as its due date approaches.
A rule "Low 3 High" moves tasks at Low priority to High once they are due
in 3 days or less. When several rules match a task, the first one wins.`,
}

var rulesListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List priority rules in the order they are tried",
	Args:    cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		rules, err := prefs.LoadRules(a.prefs, a.logger)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		priorities, err := a.repo.ListPriorities(cmd.Context())
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}

		t := newTable(out)
		t.SetTitle("Priority rules")
		t.AppendHeader(header("#", "From", "Due within", "To"))
		for i, r := range rules {
			t.AppendRow(table.Row{
				i + 1,
				priorityName(r.FromPriorityID, priorities),
				fmt.Sprintf("%d day(s)", r.DaysThreshold),
				priorityName(r.ToPriorityID, priorities),
			})
		}
		t.Render()
	}),
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <from> <days> <to>",
	Short: "Append a priority rule",
	Args:  cobra.ExactArgs(3),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		priorities, err := a.repo.ListPriorities(cmd.Context())
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		from, err := parser.ResolvePriority(args[0], priorities)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		days, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(out, "Error: invalid day count '%s'\n", args[1])
			return
		}
		to, err := parser.ResolvePriority(args[2], priorities)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}

		rule := models.PriorityRule{FromPriorityID: from.ID, DaysThreshold: days, ToPriorityID: to.ID}
		if err := rule.Validate(); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		rules, err := prefs.LoadRules(a.prefs, a.logger)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if err := prefs.SaveRules(a.prefs, append(rules, rule)); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "Added rule #%d: %s → %s within %d day(s)\n", len(rules)+1, from.Name, to.Name, days)
	}),
}

var rulesRemoveCmd = &cobra.Command{
	Use:     "rm <number>",
	Aliases: []string{"remove"},
	Short:   "Remove a priority rule by its number in 'rules ls'",
	Args:    cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		rules, err := prefs.LoadRules(a.prefs, a.logger)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > len(rules) {
			fmt.Fprintf(out, "Error: no rule #%s\n", args[0])
			return
		}

		rules = append(rules[:n-1], rules[n:]...)
		if err := prefs.SaveRules(a.prefs, rules); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "Removed rule #%d\n", n)
	}),
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesAddCmd)
	rulesCmd.AddCommand(rulesRemoveCmd)
}
