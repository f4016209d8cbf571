// Package cli wires the TaskFlow terminal client: every command runs against
// the shared API client and stores, so the CLI sees exactly the state a
// board view would.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/poorman/TaskFlow/internal/api"
	"github.com/poorman/TaskFlow/internal/config"
	"github.com/poorman/TaskFlow/internal/localdb"
	"github.com/poorman/TaskFlow/internal/session"
	"github.com/poorman/TaskFlow/internal/store"
)

// App carries the dependencies every command shares.
type App struct {
	cfg    *config.Config
	sess   *session.Store
	client *api.Client
	auth   *store.AuthStore
	tasks  *store.TaskStore
	db     *localdb.Store
	out    io.Writer
}

// NewRootCmd assembles the command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}

	root := &cobra.Command{
		Use:           "taskflow",
		Short:         "TaskFlow task management client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			app.shutdown()
		},
	}

	root.AddCommand(
		app.loginCmd(),
		app.registerCmd(),
		app.logoutCmd(),
		app.whoamiCmd(),
		app.profileCmd(),
		app.passwdCmd(),
		app.projectCmd(),
		app.taskCmd(),
		app.boardCmd(),
		app.analyticsCmd(),
		app.timeseriesCmd(),
		app.watchCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *App) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	a.out = cmd.OutOrStdout()
	a.sess = session.NewStore(cfg.TokenPath)
	a.client = api.New(cfg.BaseURL(), a.sess, api.WithOnUnauthorized(func() {
		log.Warn("session expired, run `taskflow login` to sign in again")
	}))
	a.auth = store.NewAuthStore(a.client, a.sess)

	opts := []store.TaskStoreOption{}
	if db, err := localdb.Open(cfg.DBPath); err != nil {
		log.WithError(err).Debug("snapshot database unavailable")
	} else {
		a.db = db
		opts = append(opts, store.WithSnapshots(db))
	}
	a.tasks = store.NewTaskStore(a.client, opts...)
	return nil
}

func (a *App) shutdown() {
	if a.tasks != nil {
		a.tasks.Wait()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.WithError(err).Debug("closing snapshot database")
		}
	}
}

// requireAuth resumes the saved session and fails the command when there is
// none. Commands that only read may still fall back to the local snapshot.
func (a *App) requireAuth(ctx context.Context) error {
	a.auth.FetchUser(ctx)
	if !a.auth.IsAuthenticated() {
		return fmt.Errorf("not logged in, run `taskflow login` first")
	}
	return nil
}
