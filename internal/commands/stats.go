package commands

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/balkashynov/todus/internal/repository"
	"github.com/balkashynov/todus/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a summary of your tasks",
	Args:  cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		reader, ok := a.repo.(repository.StatsReader)
		if !ok {
			fmt.Fprintln(out, "Error: the task store does not support stats")
			return
		}
		summary, err := reader.Stats(cmd.Context())
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		printStats(out, summary)
	}),
}

func printStats(out io.Writer, s *stats.Summary) {
	t := newTable(out)
	t.SetTitle("Stats")
	t.AppendRows([]table.Row{
		{"Tasks", s.Total},
		{"Completed", fmt.Sprintf("%d (%s)", s.Completed, pct(s.CompletionRate))},
		{"Pending", s.Pending},
		{"Overdue", overdueText(s.Overdue)},
		{"In trash", s.Trashed},
		{"Avg. time to complete", humanize.FtoaWithDigits(s.AvgCompletionHours, 1) + "h"},
		{"Streak", fmt.Sprintf("%d day(s)", s.Streak)},
		{"Created this month", fmt.Sprintf("%d (last month %d)", s.CreatedThisMonth, s.CreatedLastMonth)},
		{"Subtasks done", fmt.Sprintf("%d of %d (%s)", s.SubtasksCompleted, s.Subtasks, pct(s.SubtaskCompletionRate))},
	})
	t.Render()

	printCounts(out, "By category", s.ByCategory)
	printCounts(out, "By priority", s.ByPriority)
}

func printCounts(out io.Writer, title string, counts []stats.Count) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintln(out)
	t := newTable(out)
	t.SetTitle(title)
	for _, c := range counts {
		t.AppendRow(table.Row{c.Label, c.Count})
	}
	t.Render()
}

func pct(rate float64) string {
	return humanize.FtoaWithDigits(rate, 1) + "%"
}

func overdueText(n int) string {
	if n > 0 {
		return text.FgHiRed.Sprint(n)
	}
	return "0"
}
