package api_test

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/poorman/TaskFlow/internal/api"
	"github.com/poorman/TaskFlow/internal/apitest"
	"github.com/poorman/TaskFlow/internal/models"
	"github.com/poorman/TaskFlow/internal/session"
)

func newClient(t *testing.T) (*apitest.Server, *api.Client, *session.Store) {
	t.Helper()
	server := apitest.New(t)
	sess := session.NewStore(filepath.Join(t.TempDir(), "token"))
	client := api.New(server.URL(), sess)
	return server, client, sess
}

func register(t *testing.T, client *api.Client, email string) {
	t.Helper()
	ctx := context.Background()
	_, err := client.Auth.Register(ctx, api.RegisterRequest{Email: email, Password: "secret-pw-1"})
	require.NoError(t, err)
	_, err = client.Auth.Login(ctx, email, "secret-pw-1")
	require.NoError(t, err)
}

func TestLogin_PersistsToken(t *testing.T) {
	_, client, sess := newClient(t)
	ctx := context.Background()

	_, err := client.Auth.Register(ctx, api.RegisterRequest{Email: "alice@example.com", Password: "secret-pw-1"})
	require.NoError(t, err)
	require.Empty(t, sess.Token())

	resp, err := client.Auth.Login(ctx, "alice@example.com", "secret-pw-1")
	require.NoError(t, err)
	require.Equal(t, resp.AccessToken, sess.Token())

	user, err := client.Auth.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
	require.NotZero(t, user.OrganizationID)
}

func TestLogin_BadCredentials(t *testing.T) {
	_, client, _ := newClient(t)
	ctx := context.Background()

	_, err := client.Auth.Register(ctx, api.RegisterRequest{Email: "bob@example.com", Password: "secret-pw-1"})
	require.NoError(t, err)

	_, err = client.Auth.Login(ctx, "bob@example.com", "wrong-password")
	require.Error(t, err)
	require.True(t, api.IsUnauthorized(err))

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Incorrect email or password", apiErr.Detail)
}

func TestValidationErrors_FieldLevel(t *testing.T) {
	_, client, _ := newClient(t)
	register(t, client, "carol@example.com")
	ctx := context.Background()

	project, err := client.Projects.Create(ctx, models.ProjectCreate{Name: "Core"})
	require.NoError(t, err)

	_, err = client.Tasks.Create(ctx, models.TaskCreate{ProjectID: project.ID})
	require.Error(t, err)
	fields := api.FieldErrors(err)
	require.Len(t, fields, 1)
	require.Equal(t, "title", fields[0].Field)
	require.Equal(t, "field required", fields[0].Message)
}

func TestUnauthorized_ClearsSessionAndFiresHook(t *testing.T) {
	server, _, _ := newClient(t)

	sess := session.NewStore(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, sess.Save("stale-token"))

	hookFired := false
	client := api.New(server.URL(), sess, api.WithOnUnauthorized(func() { hookFired = true }))

	_, err := client.Auth.Me(context.Background())
	require.True(t, api.IsUnauthorized(err))
	require.True(t, hookFired)
	require.Empty(t, sess.Token())
}

func TestNetworkError_Normalized(t *testing.T) {
	server, client, _ := newClient(t)
	server.HTTP.Close()

	_, err := client.Projects.List(context.Background())
	require.Error(t, err)
	require.True(t, api.IsNetworkError(err))
	require.False(t, api.IsServerError(err))
}

func TestServerError_Classified(t *testing.T) {
	server, client, _ := newClient(t)
	register(t, client, "dave@example.com")

	server.FailNext(http.MethodGet, "/api/v1/tasks", http.StatusInternalServerError)
	_, err := client.Tasks.List(context.Background(), models.TaskFilter{})
	require.Error(t, err)
	require.True(t, api.IsServerError(err))
	require.False(t, api.IsNetworkError(err))
}

func TestTasks_CRUDAndArchive(t *testing.T) {
	_, client, _ := newClient(t)
	register(t, client, "erin@example.com")
	ctx := context.Background()

	project, err := client.Projects.Create(ctx, models.ProjectCreate{Name: "Board"})
	require.NoError(t, err)

	created, err := client.Tasks.Create(ctx, models.TaskCreate{Title: "Ship it", ProjectID: project.ID})
	require.NoError(t, err)
	require.Equal(t, models.StatusTodo, created.Status)
	require.Nil(t, created.Price)
	require.Equal(t, "Board", created.ProjectName)

	status := models.StatusDone
	updated, err := client.Tasks.Update(ctx, created.ID, models.TaskUpdate{Status: &status})
	require.NoError(t, err)
	require.Equal(t, models.StatusDone, updated.Status)
	require.NotNil(t, updated.CompletedAt) // server-derived field

	archived, err := client.Tasks.Archive(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, archived.IsArchived)

	// Archived tasks drop out of the default list.
	tasks, err := client.Tasks.List(ctx, models.TaskFilter{})
	require.NoError(t, err)
	require.Empty(t, tasks)

	require.NoError(t, client.Tasks.Delete(ctx, created.ID))
	_, err = client.Tasks.Get(ctx, created.ID)
	require.True(t, api.IsNotFound(err))
}

func TestAnalytics_Dashboard(t *testing.T) {
	_, client, _ := newClient(t)
	register(t, client, "frank@example.com")
	ctx := context.Background()

	project, err := client.Projects.Create(ctx, models.ProjectCreate{Name: "Metrics"})
	require.NoError(t, err)

	price := 250.0
	_, err = client.Tasks.Create(ctx, models.TaskCreate{Title: "Priced", ProjectID: project.ID, Price: &price})
	require.NoError(t, err)
	_, err = client.Tasks.Create(ctx, models.TaskCreate{Title: "Unpriced", ProjectID: project.ID})
	require.NoError(t, err)

	analytics, err := client.Analytics.Dashboard(ctx, 30)
	require.NoError(t, err)
	require.Equal(t, 2, analytics.TotalTasks)
	require.Equal(t, 250.0, analytics.TotalPrice) // unpriced task excluded
	require.Equal(t, 2, analytics.TasksByStatus["todo"])

	points, err := client.Analytics.TimeSeries(ctx, 7)
	require.NoError(t, err)
	require.Len(t, points, 7)
	require.Equal(t, 2, points[6].Created)
}
