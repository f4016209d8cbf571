package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (a *App) analyticsCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show the dashboard aggregates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			if err := a.tasks.FetchAnalytics(cmd.Context(), days); err != nil {
				return err
			}
			stats := a.tasks.Analytics()

			fmt.Fprintf(a.out, "Tasks: %d total, %d overdue\n", stats.TotalTasks, stats.TasksOverdue)
			fmt.Fprintf(a.out, "Completed: %d today, %d this week\n", stats.TasksCompletedToday, stats.TasksCompletedThisWeek)
			fmt.Fprintf(a.out, "Productivity score: %.0f\n", stats.ProductivityScore)
			if stats.AverageCompletionTimeHour != nil {
				fmt.Fprintf(a.out, "Average completion time: %.1fh\n", *stats.AverageCompletionTimeHour)
			}
			if stats.TotalPrice > 0 {
				fmt.Fprintf(a.out, "Total price: %.2f\n", stats.TotalPrice)
			}

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "\nSTATUS\tCOUNT\tPRICE")
			for status, count := range stats.TasksByStatus {
				fmt.Fprintf(w, "%s\t%d\t%.2f\n", status, count, stats.PriceByStatus[status])
			}
			fmt.Fprintln(w, "\nPRIORITY\tCOUNT\tPRICE")
			for priority, count := range stats.TasksByPriority {
				fmt.Fprintf(w, "%s\t%d\t%.2f\n", priority, count, stats.PriceByPriority[priority])
			}
			if len(stats.TopContributors) > 0 {
				fmt.Fprintln(w, "\nCONTRIBUTOR\tCOMPLETED")
				for _, c := range stats.TopContributors {
					fmt.Fprintf(w, "%s\t%d\n", c.Name, c.TasksCompleted)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "analysis window in days (server default when omitted)")
	return cmd
}

func (a *App) timeseriesCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "timeseries",
		Short: "Show daily created/completed counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			points, err := a.tasks.TimeSeries(cmd.Context(), days)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tCREATED\tCOMPLETED")
			for _, p := range points {
				fmt.Fprintf(w, "%s\t%d\t%d\n", p.Date, p.Created, p.Completed)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "window in days")
	return cmd
}
