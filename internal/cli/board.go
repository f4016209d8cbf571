package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/poorman/TaskFlow/internal/board"
	"github.com/poorman/TaskFlow/internal/models"
)

func (a *App) boardCmd() *cobra.Command {
	var projectID int64
	var search string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Render the task board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("project") {
				if err := a.requireAuth(cmd.Context()); err != nil {
					return err
				}
				if err := a.tasks.SetSelectedProject(cmd.Context(), &projectID); err != nil {
					return err
				}
			} else if err := a.loadTasks(cmd); err != nil {
				return err
			}

			tasks := board.MatchSearch(board.Active(a.tasks.Tasks()), search)
			columns := board.ByStatus(tasks)

			fmt.Fprintf(a.out, "Completion: %d%%", board.CompletionPercent(tasks))
			if total := board.TotalPrice(tasks); total > 0 {
				fmt.Fprintf(a.out, "  Total: %.2f", total)
			}
			fmt.Fprintln(a.out)
			fmt.Fprintln(a.out)

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			for _, status := range models.Statuses {
				tasks := columns[status]
				fmt.Fprintf(w, "%s (%d)\n", statusHeading(status), len(tasks))
				for _, t := range tasks {
					line := fmt.Sprintf("  #%d\t%s\t%s", t.ID, t.Title, t.Priority)
					if t.Price != nil {
						line += fmt.Sprintf("\t%.2f", *t.Price)
					}
					fmt.Fprintln(w, line)
				}
				fmt.Fprintln(w)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64Var(&projectID, "project", 0, "limit the board to one project")
	cmd.Flags().StringVar(&search, "search", "", "filter by title or description")
	return cmd
}

func statusHeading(status models.TaskStatus) string {
	switch status {
	case models.StatusTodo:
		return "To Do"
	case models.StatusInProgress:
		return "In Progress"
	case models.StatusInReview:
		return "In Review"
	case models.StatusDone:
		return "Done"
	case models.StatusBlocked:
		return "Blocked"
	default:
		return string(status)
	}
}
