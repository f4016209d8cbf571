package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/poorman/TaskFlow/internal/api"
	"github.com/poorman/TaskFlow/internal/models"
)

// readSecret reads one line from the command's stdin when a credential flag
// was left empty, so passwords stay out of shell history.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (a *App) loginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in and persist the session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = readSecret(cmd, "Password: "); err != nil {
					return err
				}
			}
			if err := a.auth.Login(cmd.Context(), args[0], password); err != nil {
				return err
			}
			user := a.auth.User()
			fmt.Fprintf(a.out, "Logged in as %s\n", userLabel(user))
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func (a *App) registerCmd() *cobra.Command {
	var password, fullName, orgName string

	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = readSecret(cmd, "Password: "); err != nil {
					return err
				}
			}
			req := api.RegisterRequest{Email: args[0], Password: password}
			if fullName != "" {
				req.FullName = &fullName
			}
			if orgName != "" {
				req.OrganizationName = &orgName
			}
			if err := a.auth.Register(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Account created, logged in as %s\n", userLabel(a.auth.User()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&fullName, "name", "", "full name")
	cmd.Flags().StringVar(&orgName, "org", "", "organization name")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.auth.Logout()
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			user := a.auth.User()
			fmt.Fprintf(a.out, "%s (id %d, organization %d)\n", userLabel(user), user.ID, user.OrganizationID)
			return nil
		},
	}
}

func (a *App) profileCmd() *cobra.Command {
	var fullName, email string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the signed-in user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			var upd models.UserUpdate
			if cmd.Flags().Changed("name") {
				upd.FullName = &fullName
			}
			if cmd.Flags().Changed("email") {
				upd.Email = &email
			}
			if upd.FullName == nil && upd.Email == nil {
				return fmt.Errorf("nothing to update, pass --name or --email")
			}
			if err := a.auth.UpdateUser(cmd.Context(), upd); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Profile updated: %s\n", userLabel(a.auth.User()))
			return nil
		},
	}
	cmd.Flags().StringVar(&fullName, "name", "", "new full name")
	cmd.Flags().StringVar(&email, "email", "", "new email")
	return cmd
}

func (a *App) passwdCmd() *cobra.Command {
	var current, next string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the account password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			var err error
			if current == "" {
				if current, err = readSecret(cmd, "Current password: "); err != nil {
					return err
				}
			}
			if next == "" {
				if next, err = readSecret(cmd, "New password: "); err != nil {
					return err
				}
			}
			if err := a.auth.ChangePassword(cmd.Context(), current, next); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Password changed")
			return nil
		},
	}
	cmd.Flags().StringVar(&current, "current", "", "current password (prompted when omitted)")
	cmd.Flags().StringVar(&next, "new", "", "new password (prompted when omitted)")
	return cmd
}

func userLabel(user *models.User) string {
	if user == nil {
		return "anonymous"
	}
	if user.FullName != nil && *user.FullName != "" {
		return fmt.Sprintf("%s <%s>", *user.FullName, user.Email)
	}
	return user.Email
}
