package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"drivefin/internal/cli"
	"drivefin/internal/core"
	"drivefin/internal/goals"
)

var (
	flagStatus   []string
	flagCategory []string
	flagSearch   string
	flagSort     string
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Savings goals",
}

var goalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals, filtered and sorted",
	RunE:  runGoalsList,
}

var goalsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate goal statistics",
	RunE:  runGoalsStats,
}

var goalsTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print the template for a new goal as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printJSON(cmd.OutOrStdout(), goals.NewEmpty(timeNow()))
	},
}

func init() {
	goalsListCmd.Flags().StringSliceVar(&flagStatus, "status", nil, "Statuses to keep (active, completed, paused)")
	goalsListCmd.Flags().StringSliceVar(&flagCategory, "category", nil, "Categories to keep")
	goalsListCmd.Flags().StringVarP(&flagSearch, "search", "s", "", "Case-insensitive text in title or description")
	goalsListCmd.Flags().StringVar(&flagSort, "sort", string(goals.SortCreated), "created, deadline, progress, value or title")

	goalsCmd.AddCommand(goalsListCmd, goalsStatsCmd, goalsTemplateCmd)
	rootCmd.AddCommand(goalsCmd)
}

func runGoalsList(cmd *cobra.Command, _ []string) error {
	e, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	criteria := goals.Criteria{
		Statuses:   goals.ParseStatuses(flagStatus...),
		Categories: goals.ParseCategories(flagCategory...),
		Search:     flagSearch,
	}
	list := goals.Sort(goals.Filter(e.store.State().Goals, criteria), goals.ParseSortKey(flagSort))

	out := cmd.OutOrStdout()
	if e.asJSON() {
		return printJSON(out, list)
	}
	fmt.Fprintln(out, renderGoals(list, e))
	return nil
}

func renderGoals(list []core.Goal, e *env) string {
	t := cli.Table{
		Title:   fmt.Sprintf("Goals (%d)", len(list)),
		Headers: []string{"Title", "Category", "Status", "Progress", "Saved", "Target", "Deadline"},
	}
	for _, g := range list {
		p := goals.Progress(g)
		deadline := g.Deadline.String()
		switch {
		case goals.IsExpired(g, e.now):
			deadline += " (expired)"
		case g.Status == core.GoalActive:
			deadline += fmt.Sprintf(" (%dd)", goals.DaysUntilDeadline(g, e.now))
		}
		t.Rows = append(t.Rows, []string{
			g.Title,
			string(g.Category),
			string(g.Status),
			cli.ProgressBar(p, 10) + fmt.Sprintf(" %3.0f%%", p),
			core.FormatCurrency(g.CurrentValue),
			core.FormatCurrency(g.TargetValue),
			deadline,
		})
	}
	return cli.RenderTable(t)
}

func runGoalsStats(cmd *cobra.Command, _ []string) error {
	e, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	stats := goals.CalculateStatistics(e.store.State().Goals, e.now)
	out := cmd.OutOrStdout()
	if e.asJSON() {
		return printJSON(out, stats)
	}
	fmt.Fprintln(out, cli.RenderTitle("GOALS"))
	fmt.Fprint(out, cli.RenderKV([][2]string{
		{"Total", fmt.Sprint(stats.Total)},
		{"Active", fmt.Sprint(stats.Active)},
		{"Completed", fmt.Sprint(stats.Completed)},
		{"Paused", fmt.Sprint(stats.Paused)},
		{"Expired", fmt.Sprint(stats.Expired)},
		{"Near deadline", fmt.Sprint(stats.NearDeadline)},
		{"Saved", core.FormatCurrency(stats.AchievedValue) + " of " + core.FormatCurrency(stats.TotalValue)},
		{"Completion rate", fmt.Sprintf("%.1f%%", stats.CompletionRate)},
		{"Average progress", cli.ProgressBar(stats.AverageProgress, 20) + fmt.Sprintf(" %.1f%%", stats.AverageProgress)},
	}))
	return nil
}
