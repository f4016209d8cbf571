package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/poorman/TaskFlow/internal/board"
	"github.com/poorman/TaskFlow/internal/models"
)

func (a *App) taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(
		a.taskListCmd(),
		a.taskCreateCmd(),
		a.taskEditCmd(),
		a.taskStatusCmd(),
		a.taskMoveCmd(),
		a.taskResizeCmd(),
		a.taskArchiveCmd(),
		a.taskDeleteCmd(),
	)
	return cmd
}

func parseStatus(s string) (models.TaskStatus, error) {
	for _, status := range models.Statuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown status %q, one of: %s", s, joinStatuses())
}

func parsePriority(s string) (models.TaskPriority, error) {
	for _, priority := range models.Priorities {
		if string(priority) == s {
			return priority, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

func joinStatuses() string {
	parts := make([]string, len(models.Statuses))
	for i, s := range models.Statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// loadTasks fetches the filtered list, falling back to the last snapshot so
// read-only commands keep working while the backend is down.
func (a *App) loadTasks(cmd *cobra.Command) error {
	if err := a.requireAuth(cmd.Context()); err == nil {
		return a.tasks.FetchTasks(cmd.Context())
	}
	if a.db == nil {
		return fmt.Errorf("not logged in and no local snapshot available")
	}
	if err := a.tasks.LoadSnapshot(); err != nil {
		return err
	}
	if last, ok := a.db.LastSync(); ok {
		fmt.Fprintf(a.out, "(offline, showing snapshot from %s)\n", last.Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *App) taskListCmd() *cobra.Command {
	var projectID int64
	var status, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
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

			tasks := board.Active(a.tasks.Tasks())
			if status != "" {
				parsed, err := parseStatus(status)
				if err != nil {
					return err
				}
				tasks = board.ByStatus(tasks)[parsed]
			}
			tasks = board.MatchSearch(tasks, search)

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tPROJECT\tDUE\tPRICE")
			for _, t := range tasks {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Title, t.Status, t.Priority, t.ProjectName, strOrDash(t.DueDate), priceLabel(t.Price))
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64Var(&projectID, "project", 0, "filter by project id")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&search, "search", "", "filter by title or description")
	return cmd
}

func (a *App) taskCreateCmd() *cobra.Command {
	var (
		description, status, priority, due string
		projectID, assigneeID             int64
		price, estimate                   float64
		tags                              []string
	)

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			req := models.TaskCreate{Title: args[0], ProjectID: projectID, Tags: tags}
			if description != "" {
				req.Description = &description
			}
			if status != "" {
				parsed, err := parseStatus(status)
				if err != nil {
					return err
				}
				req.Status = parsed
			}
			if priority != "" {
				parsed, err := parsePriority(priority)
				if err != nil {
					return err
				}
				req.Priority = parsed
			}
			if due != "" {
				req.DueDate = &due
			}
			if cmd.Flags().Changed("assignee") {
				req.AssigneeID = &assigneeID
			}
			if cmd.Flags().Changed("price") {
				req.Price = &price
			}
			if cmd.Flags().Changed("estimate") {
				req.EstimatedHours = &estimate
			}

			task, err := a.tasks.CreateTask(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created task %d: %s [%s]\n", task.ID, task.Title, task.Status)
			return nil
		},
	}
	cmd.Flags().Int64Var(&projectID, "project", 0, "project id (selected or default project when omitted)")
	cmd.Flags().StringVar(&description, "description", "", "task description")
	cmd.Flags().StringVar(&status, "status", "", "initial status")
	cmd.Flags().StringVar(&priority, "priority", "", "priority (low, medium, high, urgent)")
	cmd.Flags().StringVar(&due, "due", "", "due date (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().Int64Var(&assigneeID, "assignee", 0, "assignee user id")
	cmd.Flags().Float64Var(&price, "price", 0, "task price")
	cmd.Flags().Float64Var(&estimate, "estimate", 0, "estimated hours")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	return cmd
}

func (a *App) taskEditCmd() *cobra.Command {
	var (
		title, description, status, priority, due string
		projectID, assigneeID                     int64
		price, estimate, actual                   float64
		tags                                      []string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().NFlag() == 0 {
				return fmt.Errorf("nothing to update")
			}
			if err := a.tasks.FetchTasks(cmd.Context()); err != nil {
				return err
			}

			var upd models.TaskUpdate
			if cmd.Flags().Changed("title") {
				upd.Title = &title
			}
			if cmd.Flags().Changed("description") {
				upd.Description = &description
			}
			if cmd.Flags().Changed("status") {
				parsed, err := parseStatus(status)
				if err != nil {
					return err
				}
				upd.Status = &parsed
			}
			if cmd.Flags().Changed("priority") {
				parsed, err := parsePriority(priority)
				if err != nil {
					return err
				}
				upd.Priority = &parsed
			}
			if cmd.Flags().Changed("due") {
				upd.DueDate = &due
			}
			if cmd.Flags().Changed("project") {
				upd.ProjectID = &projectID
			}
			if cmd.Flags().Changed("assignee") {
				upd.AssigneeID = &assigneeID
			}
			if cmd.Flags().Changed("price") {
				upd.Price = &price
			}
			if cmd.Flags().Changed("estimate") {
				upd.EstimatedHours = &estimate
			}
			if cmd.Flags().Changed("actual") {
				upd.ActualHours = &actual
			}
			if cmd.Flags().Changed("tag") {
				upd.Tags = tags
			}
			if err := a.tasks.UpdateTask(cmd.Context(), id, upd); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated task %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	cmd.Flags().StringVar(&priority, "priority", "", "new priority")
	cmd.Flags().StringVar(&due, "due", "", "new due date")
	cmd.Flags().Int64Var(&projectID, "project", 0, "move to project id")
	cmd.Flags().Int64Var(&assigneeID, "assignee", 0, "new assignee user id")
	cmd.Flags().Float64Var(&price, "price", 0, "new price")
	cmd.Flags().Float64Var(&estimate, "estimate", 0, "new estimated hours")
	cmd.Flags().Float64Var(&actual, "actual", 0, "new actual hours")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "replacement tag set (repeatable)")
	return cmd
}

func (a *App) taskStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move a task to another board column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, err := parseStatus(args[1])
			if err != nil {
				return err
			}
			if err := a.tasks.FetchTasks(cmd.Context()); err != nil {
				return err
			}
			if err := a.tasks.SetTaskStatus(cmd.Context(), id, status); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Task %d -> %s\n", id, status)
			return nil
		},
	}
}

func (a *App) findTask(id int64) (models.Task, error) {
	for _, task := range a.tasks.Tasks() {
		if task.ID == id {
			return task, nil
		}
	}
	return models.Task{}, fmt.Errorf("task %d not found", id)
}

func (a *App) taskMoveCmd() *cobra.Command {
	var dx, dy float64

	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move a task box on the dashboard",
		Long: "Moves the task's dashboard box by --dx/--dy pixels. The target " +
			"snaps to the board grid and is clamped to the board bounds; moves " +
			"below the jitter threshold are dropped without a server call.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.tasks.FetchTasks(cmd.Context()); err != nil {
				return err
			}
			task, err := a.findTask(id)
			if err != nil {
				return err
			}

			origin := board.Point{}
			if task.PositionX != nil {
				origin.X = *task.PositionX
			}
			if task.PositionY != nil {
				origin.Y = *task.PositionY
			}
			target, moved := board.PlanDrag(origin, board.Point{X: dx, Y: dy}, board.DragSpec{})
			if !moved {
				fmt.Fprintln(a.out, "Move discarded (below threshold or forbidden)")
				return nil
			}
			if err := a.tasks.SetTaskPosition(cmd.Context(), id, target.X, target.Y); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Task %d moved to (%.0f, %.0f)\n", id, target.X, target.Y)
			return nil
		},
	}
	cmd.Flags().Float64Var(&dx, "dx", 0, "horizontal delta in pixels")
	cmd.Flags().Float64Var(&dy, "dy", 0, "vertical delta in pixels")
	return cmd
}

func (a *App) taskResizeCmd() *cobra.Command {
	var dw, dh float64

	cmd := &cobra.Command{
		Use:   "resize <id>",
		Short: "Resize a task box on the dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.tasks.FetchTasks(cmd.Context()); err != nil {
				return err
			}
			task, err := a.findTask(id)
			if err != nil {
				return err
			}

			current := board.Size{Width: board.DefaultBoxWidth, Height: board.DefaultBoxHeight}
			if task.BoxWidth != nil {
				current.Width = *task.BoxWidth
			}
			if task.BoxHeight != nil {
				current.Height = *task.BoxHeight
			}
			next, changed := board.PlanResize(current, board.Point{X: dw, Y: dh})
			if !changed {
				fmt.Fprintln(a.out, "Resize discarded (already at the size limit)")
				return nil
			}
			if err := a.tasks.SetTaskBox(cmd.Context(), id, next.Width, next.Height); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Task %d resized to %.0fx%.0f\n", id, next.Width, next.Height)
			return nil
		},
	}
	cmd.Flags().Float64Var(&dw, "dw", 0, "width delta in pixels")
	cmd.Flags().Float64Var(&dh, "dh", 0, "height delta in pixels")
	return cmd
}

func (a *App) taskArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.tasks.ArchiveTask(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Archived task %d\n", id)
			return nil
		},
	}
}

func (a *App) taskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.tasks.DeleteTask(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted task %d\n", id)
			return nil
		},
	}
}

func priceLabel(price *float64) string {
	if price == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *price)
}
