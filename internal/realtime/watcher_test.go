package realtime_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/poorman/TaskFlow/internal/api"
	"github.com/poorman/TaskFlow/internal/apitest"
	"github.com/poorman/TaskFlow/internal/models"
	"github.com/poorman/TaskFlow/internal/realtime"
	"github.com/poorman/TaskFlow/internal/session"
)

func newWatcherFixture(t *testing.T) (*apitest.Server, *api.Client, *session.Store) {
	t.Helper()
	server := apitest.New(t)
	sess := session.NewStore(filepath.Join(t.TempDir(), "token"))
	client := api.New(server.URL(), sess)

	ctx := context.Background()
	_, err := client.Auth.Register(ctx, api.RegisterRequest{Email: "live@example.com", Password: "secret-pw-1"})
	require.NoError(t, err)
	_, err = client.Auth.Login(ctx, "live@example.com", "secret-pw-1")
	require.NoError(t, err)
	return server, client, sess
}

func TestWatcher_FiresOnTaskChanges(t *testing.T) {
	_, client, sess := newWatcherFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan struct{}, 16)
	watcher := realtime.NewWatcher(client.BaseURL(), sess.Token, func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	go watcher.Run(ctx)

	// Give the watcher a moment to establish the connection before mutating.
	require.Eventually(t, func() bool {
		project, err := client.Projects.Create(ctx, models.ProjectCreate{Name: "Live"})
		if err != nil {
			return false
		}
		if _, err := client.Tasks.Create(ctx, models.TaskCreate{Title: "Ping", ProjectID: project.ID}); err != nil {
			return false
		}
		select {
		case <-updates:
			return true
		case <-time.After(200 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	_, client, sess := newWatcherFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	watcher := realtime.NewWatcher(client.BaseURL(), sess.Token, func() {})
	done := make(chan struct{})
	go func() {
		watcher.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}
