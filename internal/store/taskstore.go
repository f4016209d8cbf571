package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/poorman/TaskFlow/internal/api"
	"github.com/poorman/TaskFlow/internal/cache"
	"github.com/poorman/TaskFlow/internal/localdb"
	"github.com/poorman/TaskFlow/internal/models"
)

const (
	defaultAnalyticsDays = 30
	defaultAnalyticsTTL  = 15 * time.Second
	defaultProjectName   = "My Tasks"
)

// TaskStore mirrors the server's task/project/analytics state. Task
// mutations follow the optimistic protocol: apply locally first, call the
// server, then either reconcile through a background refetch (success) or
// restore the pre-mutation snapshot and resynchronize (failure).
//
// Every mutation on a task takes a fresh operation token. A newer mutation
// on the same task supersedes older in-flight ones: their rollbacks and
// refetch results are discarded instead of clobbering the newer edit.
type TaskStore struct {
	mu     sync.RWMutex
	client *api.Client

	tasks           []models.Task
	projects        []models.Project
	analytics       *models.Analytics
	selectedProject *int64

	inflight map[int64]uuid.UUID

	analyticsCache *cache.TTL[int, models.Analytics]
	snapshots      *localdb.Store

	bg   sync.WaitGroup
	subs []func()
}

// TaskStoreOption customizes a TaskStore.
type TaskStoreOption func(*TaskStore)

// WithSnapshots persists every successful refetch to the given local store.
func WithSnapshots(db *localdb.Store) TaskStoreOption {
	return func(s *TaskStore) { s.snapshots = db }
}

// WithAnalyticsTTL overrides how long dashboard reads are served from cache.
func WithAnalyticsTTL(ttl time.Duration) TaskStoreOption {
	return func(s *TaskStore) { s.analyticsCache = cache.NewTTL[int, models.Analytics](ttl) }
}

// NewTaskStore builds an empty store bound to the API client.
func NewTaskStore(client *api.Client, opts ...TaskStoreOption) *TaskStore {
	s := &TaskStore{
		client:         client,
		inflight:       make(map[int64]uuid.UUID),
		analyticsCache: cache.NewTTL[int, models.Analytics](defaultAnalyticsTTL),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a callback invoked after every collection change, so
// views can re-render. Callbacks run outside the store lock.
func (s *TaskStore) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *TaskStore) notify() {
	s.mu.RLock()
	subs := append(([]func())(nil), s.subs...)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}

// Tasks returns a deep copy of the task collection.
func (s *TaskStore) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneTasks(s.tasks)
}

// Projects returns a copy of the project collection.
func (s *TaskStore) Projects() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneProjects(s.projects)
}

// Analytics returns the last fetched dashboard aggregate, or nil.
func (s *TaskStore) Analytics() *models.Analytics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.analytics == nil {
		return nil
	}
	a := *s.analytics
	return &a
}

// SelectedProject returns the current project filter, nil meaning all.
func (s *TaskStore) SelectedProject() *int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedProject == nil {
		return nil
	}
	id := *s.selectedProject
	return &id
}

// Wait blocks until all in-flight background reconciliations settle.
// Used on shutdown and in tests.
func (s *TaskStore) Wait() {
	s.bg.Wait()
}

func (s *TaskStore) currentFilter() models.TaskFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var filter models.TaskFilter
	if s.selectedProject != nil {
		id := *s.selectedProject
		filter.ProjectID = &id
	}
	return filter
}

// FetchTasks loads the task list for the current project filter.
func (s *TaskStore) FetchTasks(ctx context.Context) error {
	tasks, err := s.client.Tasks.List(ctx, s.currentFilter())
	if err != nil {
		return fmt.Errorf("fetch tasks: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.applyFetched(tasks, 0, uuid.Nil)
	s.notify()
	return nil
}

// FetchProjects loads the project list.
func (s *TaskStore) FetchProjects(ctx context.Context) error {
	projects, err := s.client.Projects.List(ctx)
	if err != nil {
		return fmt.Errorf("fetch projects: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.mu.Lock()
	s.projects = projects
	s.mu.Unlock()
	s.persistProjects(projects)
	s.notify()
	return nil
}

// FetchAnalytics loads the dashboard aggregate, served from a short-lived
// cache between mutations. days <= 0 means the server default window.
func (s *TaskStore) FetchAnalytics(ctx context.Context, days int) error {
	if days <= 0 {
		days = defaultAnalyticsDays
	}
	if cached, ok := s.analyticsCache.Get(days); ok {
		s.mu.Lock()
		s.analytics = &cached
		s.mu.Unlock()
		return nil
	}
	return s.refreshAnalytics(ctx, days)
}

// refreshAnalytics bypasses the cache and repopulates it.
func (s *TaskStore) refreshAnalytics(ctx context.Context, days int) error {
	analytics, err := s.client.Analytics.Dashboard(ctx, days)
	if err != nil {
		return fmt.Errorf("fetch analytics: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.analyticsCache.Put(days, *analytics)
	s.mu.Lock()
	s.analytics = analytics
	s.mu.Unlock()
	s.notify()
	return nil
}

// TimeSeries passes through to the API; the result is not mirrored.
func (s *TaskStore) TimeSeries(ctx context.Context, days int) ([]models.TimeSeriesPoint, error) {
	return s.client.Analytics.TimeSeries(ctx, days)
}

// SetSelectedProject changes the project filter and refetches the scoped
// task list. Passing nil returns to the full unfiltered set.
func (s *TaskStore) SetSelectedProject(ctx context.Context, projectID *int64) error {
	s.mu.Lock()
	if projectID == nil {
		s.selectedProject = nil
	} else {
		id := *projectID
		s.selectedProject = &id
	}
	s.mu.Unlock()
	return s.FetchTasks(ctx)
}

// CreateProject adds a project and mirrors it locally.
func (s *TaskStore) CreateProject(ctx context.Context, req models.ProjectCreate) (*models.Project, error) {
	project, err := s.client.Projects.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.mu.Lock()
	s.projects = append(s.projects, *project)
	s.mu.Unlock()
	s.notify()
	return project, nil
}

// UpdateProject patches a project and refreshes the local copy.
func (s *TaskStore) UpdateProject(ctx context.Context, id int64, upd models.ProjectUpdate) error {
	project, err := s.client.Projects.Update(ctx, id, upd)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	s.mu.Lock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects[i] = *project
			break
		}
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// DeleteProject removes a project server-side first, then refetches both
// collections (its tasks go with it).
func (s *TaskStore) DeleteProject(ctx context.Context, id int64) error {
	if err := s.client.Projects.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	s.mu.Lock()
	if s.selectedProject != nil && *s.selectedProject == id {
		s.selectedProject = nil
	}
	s.mu.Unlock()
	if err := s.FetchProjects(ctx); err != nil {
		log.WithError(err).Warn("project refetch after delete failed")
	}
	if err := s.FetchTasks(ctx); err != nil {
		log.WithError(err).Warn("task refetch after project delete failed")
	}
	return nil
}

// resolveProjectID picks the project for a new task: the explicit request,
// the selected filter, any known project, or a synthesized default project.
// A task is never created without a resolvable project.
func (s *TaskStore) resolveProjectID(ctx context.Context, requested int64) (int64, error) {
	if requested != 0 {
		return requested, nil
	}
	if selected := s.SelectedProject(); selected != nil {
		return *selected, nil
	}

	s.mu.RLock()
	known := len(s.projects)
	var first int64
	if known > 0 {
		first = s.projects[0].ID
	}
	s.mu.RUnlock()
	if known > 0 {
		return first, nil
	}

	if err := s.FetchProjects(ctx); err != nil {
		return 0, err
	}
	s.mu.RLock()
	if len(s.projects) > 0 {
		first = s.projects[0].ID
	}
	s.mu.RUnlock()
	if first != 0 {
		return first, nil
	}

	project, err := s.CreateProject(ctx, models.ProjectCreate{Name: defaultProjectName})
	if err != nil {
		return 0, fmt.Errorf("create default project: %w", err)
	}
	return project.ID, nil
}

// CreateTask creates the task server-side, appends the returned entity to
// the local collection immediately, and reconciles in the background. The
// new task is visible before any refetch resolves.
func (s *TaskStore) CreateTask(ctx context.Context, req models.TaskCreate) (*models.Task, error) {
	projectID, err := s.resolveProjectID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	req.ProjectID = projectID

	created, err := s.client.Tasks.Create(ctx, req)
	if err != nil {
		if api.IsServerError(err) {
			// The create may have landed despite the 5xx. Resynchronize so
			// the local mirror is authoritative, but still surface the
			// failure instead of guessing it succeeded.
			if rerr := s.FetchTasks(ctx); rerr != nil {
				log.WithError(rerr).Warn("confirmatory refetch after failed create")
			}
		}
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, created.Clone())
	s.mu.Unlock()
	s.notify()

	s.reconcileLater(ctx, created.ID, s.beginOp(created.ID))
	return created, nil
}

// UpdateTask applies the partial update optimistically, calls the server,
// and settles via rollback-or-reconcile once the call resolves.
func (s *TaskStore) UpdateTask(ctx context.Context, id int64, upd models.TaskUpdate) error {
	s.mu.Lock()
	token := s.beginOpLocked(id)
	snapshot := s.cloneTaskLocked(id)
	s.applyUpdateLocked(id, upd)
	s.mu.Unlock()
	s.notify()

	if _, err := s.client.Tasks.Update(ctx, id, upd); err != nil {
		s.rollbackTask(id, token, snapshot)
		// Foreground resync with the authoritative state; its own failure is
		// logged, the caller gets the mutation error.
		if rerr := s.FetchTasks(ctx); rerr != nil {
			log.WithError(rerr).Warn("resync after failed update")
		}
		return fmt.Errorf("update task %d: %w", id, err)
	}

	s.reconcileLater(ctx, id, token)
	return nil
}

// SetTaskStatus toggles the board column of a task.
func (s *TaskStore) SetTaskStatus(ctx context.Context, id int64, status models.TaskStatus) error {
	return s.UpdateTask(ctx, id, models.TaskUpdate{Status: &status})
}

// SetTaskPosition persists a drag result. This is a first-class action so
// drag moves share the same optimistic/rollback contract as field edits.
func (s *TaskStore) SetTaskPosition(ctx context.Context, id int64, x, y float64) error {
	return s.UpdateTask(ctx, id, models.TaskUpdate{PositionX: &x, PositionY: &y})
}

// SetTaskBox persists a resize result.
func (s *TaskStore) SetTaskBox(ctx context.Context, id int64, width, height float64) error {
	return s.UpdateTask(ctx, id, models.TaskUpdate{BoxWidth: &width, BoxHeight: &height})
}

// DeleteTask removes the task server-side first; the local collection only
// changes after the server confirms. An erroneous optimistic removal is
// harder for a user to notice than an erroneous edit, so deletes are not
// optimistic.
func (s *TaskStore) DeleteTask(ctx context.Context, id int64) error {
	if err := s.client.Tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if err := s.FetchTasks(ctx); err != nil {
		log.WithError(err).Warn("refetch after delete failed")
	}
	if err := s.refreshAnalytics(ctx, defaultAnalyticsDays); err != nil {
		log.WithError(err).Warn("analytics refresh after delete failed")
	}
	return nil
}

// ArchiveTask hides the task, following the same conservative path as
// delete: server first, refetch after confirmation.
func (s *TaskStore) ArchiveTask(ctx context.Context, id int64) error {
	if _, err := s.client.Tasks.Archive(ctx, id); err != nil {
		return fmt.Errorf("archive task %d: %w", id, err)
	}
	if err := s.FetchTasks(ctx); err != nil {
		log.WithError(err).Warn("refetch after archive failed")
	}
	if err := s.refreshAnalytics(ctx, defaultAnalyticsDays); err != nil {
		log.WithError(err).Warn("analytics refresh after archive failed")
	}
	return nil
}

// LoadSnapshot restores the last persisted collections for offline viewing.
func (s *TaskStore) LoadSnapshot() error {
	if s.snapshots == nil {
		return nil
	}
	tasks, err := s.snapshots.LoadTasks()
	if err != nil {
		return fmt.Errorf("load task snapshot: %w", err)
	}
	projects, err := s.snapshots.LoadProjects()
	if err != nil {
		return fmt.Errorf("load project snapshot: %w", err)
	}
	s.mu.Lock()
	s.tasks = tasks
	s.projects = projects
	s.mu.Unlock()
	s.notify()
	return nil
}

// beginOp registers a new operation token for a task, superseding any
// in-flight operation on the same task.
func (s *TaskStore) beginOp(id int64) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginOpLocked(id)
}

func (s *TaskStore) beginOpLocked(id int64) uuid.UUID {
	token := uuid.New()
	s.inflight[id] = token
	return token
}

func (s *TaskStore) cloneTaskLocked(id int64) *models.Task {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			c := s.tasks[i].Clone()
			return &c
		}
	}
	return nil
}

func (s *TaskStore) applyUpdateLocked(id int64, upd models.TaskUpdate) {
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		t := &s.tasks[i]
		if upd.Title != nil {
			t.Title = *upd.Title
		}
		if upd.Description != nil {
			t.Description = upd.Description
		}
		if upd.Status != nil {
			t.Status = *upd.Status
		}
		if upd.Priority != nil {
			t.Priority = *upd.Priority
		}
		if upd.ProjectID != nil {
			t.ProjectID = *upd.ProjectID
		}
		if upd.AssigneeID != nil {
			t.AssigneeID = upd.AssigneeID
		}
		if upd.DueDate != nil {
			t.DueDate = upd.DueDate
		}
		if upd.EstimatedHours != nil {
			t.EstimatedHours = upd.EstimatedHours
		}
		if upd.ActualHours != nil {
			t.ActualHours = upd.ActualHours
		}
		if upd.Price != nil {
			t.Price = upd.Price
		}
		if upd.Tags != nil {
			t.Tags = make([]string, len(upd.Tags))
			copy(t.Tags, upd.Tags)
		}
		if upd.PositionX != nil {
			t.PositionX = upd.PositionX
		}
		if upd.PositionY != nil {
			t.PositionY = upd.PositionY
		}
		if upd.BoxWidth != nil {
			t.BoxWidth = upd.BoxWidth
		}
		if upd.BoxHeight != nil {
			t.BoxHeight = upd.BoxHeight
		}
		return
	}
}

// rollbackTask restores the pre-mutation snapshot of one task, unless a
// newer operation on that task has superseded this one.
func (s *TaskStore) rollbackTask(id int64, token uuid.UUID, snapshot *models.Task) {
	s.mu.Lock()
	if s.inflight[id] != token {
		s.mu.Unlock()
		return
	}
	delete(s.inflight, id)
	if snapshot != nil {
		for i := range s.tasks {
			if s.tasks[i].ID == id {
				s.tasks[i] = snapshot.Clone()
				break
			}
		}
	}
	s.mu.Unlock()
	s.notify()
}

// reconcileLater schedules the fire-and-forget refetch that replaces the
// optimistic state with the server's authoritative state. Errors are logged,
// never surfaced: background reconciliation must not interrupt the user.
func (s *TaskStore) reconcileLater(ctx context.Context, id int64, token uuid.UUID) {
	filter := s.currentFilter()
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()

		tasks, err := s.client.Tasks.List(ctx, filter)
		if err != nil {
			log.WithError(err).Warn("background task refresh failed")
			s.clearOp(id, token)
			return
		}
		if ctx.Err() != nil {
			// Cancelled while in flight; drop the result.
			s.clearOp(id, token)
			return
		}
		s.applyFetched(tasks, id, token)
		s.notify()

		if err := s.refreshAnalytics(ctx, defaultAnalyticsDays); err != nil {
			log.WithError(err).Warn("background analytics refresh failed")
		}
	}()
}

// clearOp retires an operation token without touching the collections, so a
// task whose reconcile never arrived does not stay pending forever.
func (s *TaskStore) clearOp(id int64, token uuid.UUID) {
	s.mu.Lock()
	if s.inflight[id] == token {
		delete(s.inflight, id)
	}
	s.mu.Unlock()
}

// applyFetched installs a refetched task list. The list wins wholesale
// (last-fetch-wins, no merge) with one exception: tasks that have a newer
// in-flight operation keep their local optimistic version, so a late
// refetch cannot clobber an edit that is still settling. completedID/token
// identify the operation this fetch belongs to; uuid.Nil means a plain
// foreground fetch.
func (s *TaskStore) applyFetched(tasks []models.Task, completedID int64, token uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != uuid.Nil {
		if s.inflight[completedID] != token {
			// Superseded by a newer mutation on the same task; that
			// operation's own reconcile will converge the state.
			return
		}
		delete(s.inflight, completedID)
	}

	local := make(map[int64]models.Task, len(s.inflight))
	for pendingID := range s.inflight {
		for i := range s.tasks {
			if s.tasks[i].ID == pendingID {
				local[pendingID] = s.tasks[i].Clone()
				break
			}
		}
	}
	for i := range tasks {
		if kept, ok := local[tasks[i].ID]; ok {
			tasks[i] = kept
		}
	}
	s.tasks = tasks
	s.persistTasksLocked(tasks)
}

func (s *TaskStore) persistTasksLocked(tasks []models.Task) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.SaveTasks(tasks); err != nil {
		log.WithError(err).Warn("failed to persist task snapshot")
	}
}

func (s *TaskStore) persistProjects(projects []models.Project) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.SaveProjects(projects); err != nil {
		log.WithError(err).Warn("failed to persist project snapshot")
	}
}
