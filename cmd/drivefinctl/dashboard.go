package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"drivefin/internal/cli"
	"drivefin/internal/core"
	"drivefin/internal/dashboard"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Today, this week and this month at a glance",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	e, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	stats := dashboard.Build(e.store.State(), e.now)
	out := cmd.OutOrStdout()
	if e.asJSON() {
		return printJSON(out, stats)
	}

	fmt.Fprintln(out, cli.RenderTitle("DRIVEFIN · "+core.DateOf(e.now).String()))
	fmt.Fprintln(out)

	fmt.Fprintln(out, cli.RenderTable(cli.Table{
		Title:   "Earnings",
		Headers: []string{"Period", "Income", "Expense", "Profit", "Rides", "Hours"},
		Rows: [][]string{
			periodRow("Today", stats.Today),
			periodRow("Week", stats.Week),
		},
	}))

	sum := stats.TransactionSummary
	fmt.Fprint(out, cli.RenderKV([][2]string{
		{"Month", fmt.Sprintf("%s → %s", sum.Period.From, sum.Period.To)},
		{"Income", core.FormatCurrency(sum.TotalIncome)},
		{"Expense", core.FormatCurrency(sum.TotalExpense)},
		{"Balance", core.FormatCurrency(sum.Balance)},
		{"Per hour today", core.FormatCurrency(stats.EarningsPerHour)},
		{"Trend income", fmt.Sprintf("%+.1f%%", stats.Trends.Income)},
		{"Trend expense", fmt.Sprintf("%+.1f%%", stats.Trends.Expense)},
		{"Trend rides", fmt.Sprintf("%+.1f%%", stats.Trends.Rides)},
	}))
	fmt.Fprintln(out)

	if len(stats.GoalProgress) > 0 {
		t := cli.Table{Title: "Goals", Headers: []string{"Goal", "Progress", "Remaining", "Days", "Status"}}
		for _, g := range stats.GoalProgress {
			t.Rows = append(t.Rows, []string{
				g.Title,
				cli.ProgressBar(g.Progress, 10) + fmt.Sprintf(" %3.0f%%", g.Progress),
				core.FormatCurrency(g.Remaining),
				fmt.Sprint(g.DaysLeft),
				string(g.Status),
			})
		}
		fmt.Fprintln(out, cli.RenderTable(t))
	}

	if len(stats.RecentTransactions) > 0 {
		t := cli.Table{Title: "Recent", Headers: []string{"Date", "Kind", "Category", "Description", "Amount"}}
		for _, tx := range stats.RecentTransactions {
			t.Rows = append(t.Rows, []string{
				tx.Date.String(),
				string(tx.Kind),
				tx.Category,
				tx.Description,
				core.FormatCurrency(tx.Amount),
			})
		}
		fmt.Fprintln(out, cli.RenderTable(t))
	}

	for _, s := range stats.ActiveSessions {
		fmt.Fprintf(out, "  Active %s session since %s\n", s.Kind, s.StartedAt.Local().Format("15:04"))
	}
	return nil
}

func periodRow(label string, p dashboard.PeriodStats) []string {
	return []string{
		label,
		core.FormatCurrency(p.Income),
		core.FormatCurrency(p.Expense),
		core.FormatCurrency(p.Profit),
		fmt.Sprint(p.Rides),
		fmt.Sprintf("%.1f", p.Hours),
	}
}
