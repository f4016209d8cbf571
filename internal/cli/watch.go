package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/poorman/TaskFlow/internal/realtime"
)

func (a *App) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow task updates pushed by the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			if err := a.tasks.FetchTasks(ctx); err != nil {
				return err
			}

			watcher := realtime.NewWatcher(a.cfg.BaseURL(), a.sess.Token, func() {
				if err := a.tasks.FetchTasks(ctx); err != nil {
					log.WithError(err).Warn("refetch after push failed")
					return
				}
				fmt.Fprintf(a.out, "[%s] board updated, %d tasks\n",
					time.Now().Format("15:04:05"), len(a.tasks.Tasks()))
			})

			fmt.Fprintln(a.out, "Watching for task updates (Ctrl-C to stop)")
			watcher.Run(ctx)
			return nil
		},
	}
}
