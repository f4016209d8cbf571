package store_test

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/poorman/TaskFlow/internal/api"
	"github.com/poorman/TaskFlow/internal/apitest"
	"github.com/poorman/TaskFlow/internal/localdb"
	"github.com/poorman/TaskFlow/internal/models"
	"github.com/poorman/TaskFlow/internal/session"
	"github.com/poorman/TaskFlow/internal/store"
)

func newTaskFixture(t *testing.T, opts ...store.TaskStoreOption) (*apitest.Server, *api.Client, *store.TaskStore) {
	t.Helper()
	server := apitest.New(t)
	sess := session.NewStore(filepath.Join(t.TempDir(), "token"))
	client := api.New(server.URL(), sess)

	ctx := context.Background()
	_, err := client.Auth.Register(ctx, api.RegisterRequest{Email: "worker@example.com", Password: "secret-pw-1"})
	require.NoError(t, err)
	_, err = client.Auth.Login(ctx, "worker@example.com", "secret-pw-1")
	require.NoError(t, err)

	return server, client, store.NewTaskStore(client, opts...)
}

func mustProject(t *testing.T, client *api.Client, name string) *models.Project {
	t.Helper()
	project, err := client.Projects.Create(context.Background(), models.ProjectCreate{Name: name})
	require.NoError(t, err)
	return project
}

func mustTask(t *testing.T, ts *store.TaskStore, title string, projectID int64) *models.Task {
	t.Helper()
	task, err := ts.CreateTask(context.Background(), models.TaskCreate{Title: title, ProjectID: projectID})
	require.NoError(t, err)
	return task
}

func taskByID(t *testing.T, ts *store.TaskStore, id int64) models.Task {
	t.Helper()
	for _, task := range ts.Tasks() {
		if task.ID == id {
			return task
		}
	}
	t.Fatalf("task %d not in store", id)
	return models.Task{}
}

func taskPath(id int64) string {
	return fmt.Sprintf("/api/v1/tasks/%d", id)
}

func TestCreateTask_VisibleBeforeRefetchResolves(t *testing.T) {
	server, client, ts := newTaskFixture(t)
	project := mustProject(t, client, "Inbox")

	// The background refetch is doomed; the created task must still appear.
	server.FailNext(http.MethodGet, "/api/v1/tasks", http.StatusInternalServerError)

	created := mustTask(t, ts, "First", project.ID)
	require.Equal(t, "First", taskByID(t, ts, created.ID).Title)

	ts.Wait()
	require.Equal(t, "First", taskByID(t, ts, created.ID).Title)

	// The failed reconcile released its claim on the task: a later fetch
	// replaces local state normally.
	require.NoError(t, ts.FetchTasks(context.Background()))
	require.Len(t, ts.Tasks(), 1)
}

func TestUpdateTask_ConvergesWithServer(t *testing.T) {
	_, client, ts := newTaskFixture(t)
	project := mustProject(t, client, "Board")
	task := mustTask(t, ts, "Ship", project.ID)
	ts.Wait()

	require.NoError(t, ts.SetTaskStatus(context.Background(), task.ID, models.StatusDone))
	ts.Wait()

	got := taskByID(t, ts, task.ID)
	require.Equal(t, models.StatusDone, got.Status)
	// completed_at is derived server-side; reconciliation must have pulled it in.
	require.NotNil(t, got.CompletedAt)

	serverTasks, err := client.Tasks.List(context.Background(), models.TaskFilter{})
	require.NoError(t, err)
	require.Equal(t, serverTasks, ts.Tasks())
}

func TestUpdateTask_RollsBackEveryFieldOnFailure(t *testing.T) {
	server, client, ts := newTaskFixture(t)
	project := mustProject(t, client, "Board")
	task := mustTask(t, ts, "Original", project.ID)
	ts.Wait()

	before := taskByID(t, ts, task.ID)

	server.FailNext(http.MethodPatch, taskPath(task.ID), http.StatusInternalServerError)

	title := "Edited"
	status := models.StatusBlocked
	price := 99.0
	err := ts.UpdateTask(context.Background(), task.ID, models.TaskUpdate{
		Title:  &title,
		Status: &status,
		Price:  &price,
	})
	require.Error(t, err)
	require.True(t, api.IsServerError(err))

	require.Equal(t, before, taskByID(t, ts, task.ID))
	ts.Wait()
	require.Equal(t, before, taskByID(t, ts, task.ID))
}

func TestUpdateTask_RollbackWhenResyncAlsoFails(t *testing.T) {
	server, client, ts := newTaskFixture(t)
	project := mustProject(t, client, "Board")
	task := mustTask(t, ts, "Offline", project.ID)
	ts.Wait()

	before := taskByID(t, ts, task.ID)

	// Mutation and the follow-up resync both fail, as when the backend is
	// unreachable. The snapshot restore is all the client has.
	server.FailNext(http.MethodPatch, taskPath(task.ID), http.StatusServiceUnavailable)
	server.FailNext(http.MethodGet, "/api/v1/tasks", http.StatusServiceUnavailable)

	err := ts.SetTaskStatus(context.Background(), task.ID, models.StatusDone)
	require.Error(t, err)
	require.Equal(t, before, taskByID(t, ts, task.ID))

	// Back online: state still converges.
	require.NoError(t, ts.SetTaskStatus(context.Background(), task.ID, models.StatusInProgress))
	ts.Wait()
	require.Equal(t, models.StatusInProgress, taskByID(t, ts, task.ID).Status)
}

func TestUpdateTask_NewerEditSupersedesOlder(t *testing.T) {
	_, client, ts := newTaskFixture(t)
	project := mustProject(t, client, "Board")
	task := mustTask(t, ts, "v0", project.ID)
	ts.Wait()

	ctx := context.Background()
	first := "v1"
	second := "v2"
	require.NoError(t, ts.UpdateTask(ctx, task.ID, models.TaskUpdate{Title: &first}))
	// Second edit lands while the first one's background refetch may still be
	// in flight; the stale result must not clobber it.
	require.NoError(t, ts.UpdateTask(ctx, task.ID, models.TaskUpdate{Title: &second}))
	ts.Wait()

	require.Equal(t, "v2", taskByID(t, ts, task.ID).Title)

	serverTask, err := client.Tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, "v2", serverTask.Title)
}

func TestUpdateTask_CancelledContextDoesNotCorruptState(t *testing.T) {
	_, client, ts := newTaskFixture(t)
	project := mustProject(t, client, "Board")
	task := mustTask(t, ts, "Cancel", project.ID)
	ts.Wait()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, ts.SetTaskStatus(ctx, task.ID, models.StatusDone))
	cancel()
	ts.Wait()

	// Whether the reconcile won the race or was dropped, the optimistic value
	// stands and the store is not wedged.
	require.Equal(t, models.StatusDone, taskByID(t, ts, task.ID).Status)
	require.NoError(t, ts.FetchTasks(context.Background()))
	require.Equal(t, models.StatusDone, taskByID(t, ts, task.ID).Status)

	serverTask, err := client.Tasks.Get(context.Background(), task.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusDone, serverTask.Status)
}

func TestSetTaskPositionAndBox(t *testing.T) {
	_, client, ts := newTaskFixture(t)
	project := mustProject(t, client, "Canvas")
	task := mustTask(t, ts, "Widget", project.ID)
	ts.Wait()

	ctx := context.Background()
	require.NoError(t, ts.SetTaskPosition(ctx, task.ID, 140, -60))
	require.NoError(t, ts.SetTaskBox(ctx, task.ID, 320, 180))
	ts.Wait()

	got := taskByID(t, ts, task.ID)
	require.NotNil(t, got.PositionX)
	require.Equal(t, 140.0, *got.PositionX)
	require.Equal(t, -60.0, *got.PositionY)
	require.Equal(t, 320.0, *got.BoxWidth)
	require.Equal(t, 180.0, *got.BoxHeight)

	serverTask, err := client.Tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, 140.0, *serverTask.PositionX)
	require.Equal(t, 320.0, *serverTask.BoxWidth)
}

func TestArchiveTask_RemovesOnlyAfterConfirmation(t *testing.T) {
	server, client, ts := newTaskFixture(t)
	project := mustProject(t, client, "Board")
	task := mustTask(t, ts, "Old", project.ID)
	ts.Wait()

	server.FailNext(http.MethodPatch, taskPath(task.ID)+"/archive", http.StatusInternalServerError)
	err := ts.ArchiveTask(context.Background(), task.ID)
	require.Error(t, err)
	// Failed archive leaves the task visible and untouched.
	require.Equal(t, "Old", taskByID(t, ts, task.ID).Title)

	require.NoError(t, ts.ArchiveTask(context.Background(), task.ID))
	require.Empty(t, ts.Tasks())
}

func TestDeleteTask_ServerFirst(t *testing.T) {
	server, client, ts := newTaskFixture(t)
	project := mustProject(t, client, "Board")
	task := mustTask(t, ts, "Doomed", project.ID)
	ts.Wait()

	server.FailNext(http.MethodDelete, taskPath(task.ID), http.StatusInternalServerError)
	require.Error(t, ts.DeleteTask(context.Background(), task.ID))
	require.Len(t, ts.Tasks(), 1)

	require.NoError(t, ts.DeleteTask(context.Background(), task.ID))
	require.Empty(t, ts.Tasks())
}

func TestSetSelectedProject_FiltersFetches(t *testing.T) {
	_, client, ts := newTaskFixture(t)
	alpha := mustProject(t, client, "Alpha")
	beta := mustProject(t, client, "Beta")
	mustTask(t, ts, "A1", alpha.ID)
	mustTask(t, ts, "B1", beta.ID)
	mustTask(t, ts, "B2", beta.ID)
	ts.Wait()

	ctx := context.Background()
	require.NoError(t, ts.SetSelectedProject(ctx, &beta.ID))
	tasks := ts.Tasks()
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		require.Equal(t, beta.ID, task.ProjectID)
	}

	require.NoError(t, ts.SetSelectedProject(ctx, nil))
	require.Len(t, ts.Tasks(), 3)
	require.Nil(t, ts.SelectedProject())
}

func TestCreateTask_SynthesizesDefaultProject(t *testing.T) {
	_, client, ts := newTaskFixture(t)

	task, err := ts.CreateTask(context.Background(), models.TaskCreate{Title: "No home"})
	require.NoError(t, err)
	require.NotZero(t, task.ProjectID)
	ts.Wait()

	projects, err := client.Projects.List(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, "My Tasks", projects[0].Name)
	require.Equal(t, projects[0].ID, task.ProjectID)
}

func TestDeleteProject_DropsItsTasks(t *testing.T) {
	_, client, ts := newTaskFixture(t)
	keep := mustProject(t, client, "Keep")
	drop := mustProject(t, client, "Drop")
	mustTask(t, ts, "Stays", keep.ID)
	mustTask(t, ts, "Goes", drop.ID)
	ts.Wait()

	ctx := context.Background()
	require.NoError(t, ts.SetSelectedProject(ctx, &drop.ID))
	require.NoError(t, ts.DeleteProject(ctx, drop.ID))

	// Deleting the selected project resets the filter.
	require.Nil(t, ts.SelectedProject())
	require.Len(t, ts.Projects(), 1)
	tasks := ts.Tasks()
	require.Len(t, tasks, 1)
	require.Equal(t, "Stays", tasks[0].Title)
}

func TestFetchAnalytics_ServedFromCacheBetweenMutations(t *testing.T) {
	server, client, ts := newTaskFixture(t)
	project := mustProject(t, client, "Metrics")
	mustTask(t, ts, "One", project.ID)
	ts.Wait()

	ctx := context.Background()
	require.NoError(t, ts.FetchAnalytics(ctx, 30))
	require.Equal(t, 1, ts.Analytics().TotalTasks)

	// A cache hit never reaches the wire, so the injected failure is unseen.
	server.FailNext(http.MethodGet, "/api/v1/analytics/dashboard", http.StatusInternalServerError)
	require.NoError(t, ts.FetchAnalytics(ctx, 30))
	require.Equal(t, 1, ts.Analytics().TotalTasks)
}

func TestSnapshot_SurvivesRestart(t *testing.T) {
	_, client, _ := newTaskFixture(t)

	dbPath := filepath.Join(t.TempDir(), "snapshot.db")
	db, err := localdb.Open(dbPath)
	require.NoError(t, err)

	snapshotting := store.NewTaskStore(client, store.WithSnapshots(db))
	project := mustProject(t, client, "Durable")
	_, err = snapshotting.CreateTask(context.Background(), models.TaskCreate{Title: "Cached", ProjectID: project.ID})
	require.NoError(t, err)
	snapshotting.Wait()
	require.NoError(t, snapshotting.FetchProjects(context.Background()))
	require.NoError(t, db.Close())

	// A fresh process with no network can still show the last known state.
	db2, err := localdb.Open(dbPath)
	require.NoError(t, err)
	defer db2.Close()

	revived := store.NewTaskStore(client, store.WithSnapshots(db2))
	require.NoError(t, revived.LoadSnapshot())
	require.Len(t, revived.Tasks(), 1)
	require.Equal(t, "Cached", revived.Tasks()[0].Title)
	require.Len(t, revived.Projects(), 1)
}

func TestSubscribe_NotifiedOnMutations(t *testing.T) {
	_, client, ts := newTaskFixture(t)
	project := mustProject(t, client, "Watch")

	notified := 0
	ts.Subscribe(func() { notified++ })

	mustTask(t, ts, "Ping", project.ID)
	ts.Wait()
	require.Greater(t, notified, 0)
}
