package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/poorman/TaskFlow/internal/models"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func (a *App) projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(
		a.projectListCmd(),
		a.projectCreateCmd(),
		a.projectUpdateCmd(),
		a.projectDeleteCmd(),
	)
	return cmd
}

func (a *App) projectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			if err := a.tasks.FetchProjects(cmd.Context()); err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCOLOR\tDESCRIPTION")
			for _, p := range a.tasks.Projects() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Color, strOrDash(p.Description))
			}
			return w.Flush()
		},
	}
}

func (a *App) projectCreateCmd() *cobra.Command {
	var description, color string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			req := models.ProjectCreate{Name: args[0], Color: color}
			if description != "" {
				req.Description = &description
			}
			project, err := a.tasks.CreateProject(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created project %d: %s\n", project.ID, project.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "project description")
	cmd.Flags().StringVar(&color, "color", "", "hex color, server default when omitted")
	return cmd
}

func (a *App) projectUpdateCmd() *cobra.Command {
	var name, description, color string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var upd models.ProjectUpdate
			if cmd.Flags().Changed("name") {
				upd.Name = &name
			}
			if cmd.Flags().Changed("description") {
				upd.Description = &description
			}
			if cmd.Flags().Changed("color") {
				upd.Color = &color
			}
			if upd.Name == nil && upd.Description == nil && upd.Color == nil {
				return fmt.Errorf("nothing to update, pass --name, --description or --color")
			}
			if err := a.tasks.UpdateProject(cmd.Context(), id, upd); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated project %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&color, "color", "", "new hex color")
	return cmd
}

func (a *App) projectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.tasks.DeleteProject(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted project %d\n", id)
			return nil
		},
	}
}

func strOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
