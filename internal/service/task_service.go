package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/config"
	apperrors "taskboard/internal/errors"
	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// CreateTaskInput carries an already-validated task creation request.
// AssignedTo is honored only for admins under the role policy.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      model.TaskStatus
	Priority    model.TaskPriority
	DueDate     time.Time
	AssignedTo  string
}

// UpdateTaskInput carries a partial update; nil fields keep their prior
// value. Status transitions are not checked, any status may replace any other.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *model.TaskStatus
	Priority    *model.TaskPriority
	DueDate     *time.Time
}

// TaskQuery narrows and orders a listing. Empty fields mean no restriction.
type TaskQuery struct {
	Status    model.TaskStatus
	Priority  model.TaskPriority
	SortBy    string
	SortOrder string
}

// TaskService enforces the ownership and role rules on every operation and
// delegates storage to the task repository. Authorization is re-evaluated on
// each call, never cached across requests.
type TaskService interface {
	Create(ctx context.Context, input CreateTaskInput, principal *model.User) (*model.Task, error)
	List(ctx context.Context, query TaskQuery, principal *model.User) ([]model.Task, error)
	Get(ctx context.Context, id uuid.UUID, principal *model.User) (*model.Task, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateTaskInput, principal *model.User) (*model.Task, error)
	Remove(ctx context.Context, id uuid.UUID, principal *model.User) (*model.Task, error)
	Activity(ctx context.Context, id uuid.UUID, principal *model.User) ([]model.TaskActivity, error)
}

type taskService struct {
	tasks      repository.TaskRepository
	users      repository.UserRepository
	activities repository.TaskActivityRepository
	policy     string
	activityCh chan model.TaskActivity
}

// NewTaskService creates a task service using the given authorization policy
// (config.PolicyRole or config.PolicyStrict). The policy is fixed for the
// process lifetime; the two are never mixed per-request.
func NewTaskService(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	activities repository.TaskActivityRepository,
	policy string,
) TaskService {
	s := &taskService{
		tasks:      tasks,
		users:      users,
		activities: activities,
		policy:     policy,
		activityCh: make(chan model.TaskActivity, 100),
	}

	// Start async activity worker
	go s.activityWorker(context.Background())

	return s
}

// strict reports whether the strict-ownership policy is active.
func (s *taskService) strict() bool {
	return s.policy == config.PolicyStrict
}

// Create stores a new task owned by the principal. Under the role policy an
// admin may assign ownership to another user via AssignedTo; the assignee
// must exist. Members cannot retarget ownership, their AssignedTo is ignored.
func (s *taskService) Create(ctx context.Context, input CreateTaskInput, principal *model.User) (*model.Task, error) {
	owner := principal.Email
	if !s.strict() && principal.IsAdmin() && input.AssignedTo != "" {
		assignee, err := s.users.FindByEmail(ctx, input.AssignedTo)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrUserNotFound
			}
			return nil, fmt.Errorf("resolve assignee: %w", err)
		}
		owner = assignee.Email
	}

	status := input.Status
	if status == "" {
		status = model.StatusPending
	}
	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	task := &model.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     input.DueDate,
		OwnerEmail:  owner,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.recordActivity(task.ID, principal.Email, model.ActionCreated)
	return task, nil
}

// List returns the tasks visible to the principal, filtered and sorted per
// the query. Members see only their own tasks regardless of filters; admins
// see everything under the role policy. An empty result is not an error.
func (s *taskService) List(ctx context.Context, query TaskQuery, principal *model.User) ([]model.Task, error) {
	filter := repository.TaskFilter{
		Status:    query.Status,
		Priority:  query.Priority,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	if s.strict() || !principal.IsAdmin() {
		filter.OwnerEmail = principal.Email
	}

	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// Get returns the task with id if the principal may read it. Under the role
// policy a missing task is NotFound and someone else's task is Forbidden;
// under the strict policy both collapse to NotFound.
func (s *taskService) Get(ctx context.Context, id uuid.UUID, principal *model.User) (*model.Task, error) {
	if s.strict() {
		task, err := s.tasks.FindByIDAndOwner(ctx, id, principal.Email)
		if err != nil {
			return nil, notFoundOr(err)
		}
		return task, nil
	}

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if err := CanAccessTask(principal, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update applies the present fields of input to the task, re-running the full
// authorization check first. A task deleted between the check and the write
// surfaces as NotFound; the request is terminal either way.
func (s *taskService) Update(ctx context.Context, id uuid.UUID, input UpdateTaskInput, principal *model.User) (*model.Task, error) {
	fields := updateColumns(input)

	if s.strict() {
		if len(fields) == 0 {
			return s.Get(ctx, id, principal)
		}
		// Owner scope and write in one statement, no check/act window.
		rows, err := s.tasks.UpdateFieldsByOwner(ctx, id, principal.Email, fields)
		if err != nil {
			return nil, fmt.Errorf("update task: %w", err)
		}
		if rows == 0 {
			return nil, apperrors.ErrTaskNotFound
		}
		task, err := s.tasks.FindByIDAndOwner(ctx, id, principal.Email)
		if err != nil {
			return nil, notFoundOr(err)
		}
		s.recordActivity(id, principal.Email, model.ActionUpdated)
		return task, nil
	}

	if _, err := s.Get(ctx, id, principal); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		rows, err := s.tasks.UpdateFields(ctx, id, fields)
		if err != nil {
			return nil, fmt.Errorf("update task: %w", err)
		}
		if rows == 0 {
			return nil, apperrors.ErrTaskNotFound
		}
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	s.recordActivity(id, principal.Email, model.ActionUpdated)
	return task, nil
}

// Remove deletes the task after the same authorization check as Get and
// returns the pre-deletion snapshot. Deletion is not idempotent: a second
// remove of the same id is NotFound.
func (s *taskService) Remove(ctx context.Context, id uuid.UUID, principal *model.User) (*model.Task, error) {
	task, err := s.Get(ctx, id, principal)
	if err != nil {
		return nil, err
	}

	var rows int64
	if s.strict() {
		rows, err = s.tasks.DeleteByOwner(ctx, id, principal.Email)
	} else {
		rows, err = s.tasks.Delete(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}
	if rows == 0 {
		return nil, apperrors.ErrTaskNotFound
	}

	s.recordActivity(id, principal.Email, model.ActionDeleted)
	return task, nil
}

// Activity returns the mutation trail of a task, gated by the same read
// authorization as Get.
func (s *taskService) Activity(ctx context.Context, id uuid.UUID, principal *model.User) ([]model.TaskActivity, error) {
	if _, err := s.Get(ctx, id, principal); err != nil {
		return nil, err
	}
	entries, err := s.activities.ListByTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list task activity: %w", err)
	}
	if entries == nil {
		entries = []model.TaskActivity{}
	}
	return entries, nil
}

// recordActivity enqueues an activity entry without blocking the request.
// A full channel drops the entry; the trail is best-effort.
func (s *taskService) recordActivity(taskID uuid.UUID, actor string, action model.TaskAction) {
	entry := model.TaskActivity{
		TaskID:     taskID,
		ActorEmail: actor,
		Action:     action,
	}
	select {
	case s.activityCh <- entry:
	default:
	}
}

// activityWorker persists activity entries asynchronously in small batches.
func (s *taskService) activityWorker(ctx context.Context) {
	batch := make([]model.TaskActivity, 0, 10)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case entry, ok := <-s.activityCh:
			if !ok {
				if len(batch) > 0 {
					_ = s.activities.CreateBatch(ctx, batch)
				}
				return
			}
			batch = append(batch, entry)
			if len(batch) >= 10 {
				_ = s.activities.CreateBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				_ = s.activities.CreateBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ctx.Done():
			return
		}
	}
}

// updateColumns maps the present fields of input to their column values.
func updateColumns(input UpdateTaskInput) map[string]interface{} {
	fields := map[string]interface{}{}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Status != nil {
		fields["status"] = *input.Status
	}
	if input.Priority != nil {
		fields["priority"] = *input.Priority
	}
	if input.DueDate != nil {
		fields["due_date"] = *input.DueDate
	}
	return fields
}

// notFoundOr maps a missing record to the domain NotFound error and wraps
// anything else as an internal failure.
func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrTaskNotFound
	}
	return fmt.Errorf("load task: %w", err)
}
