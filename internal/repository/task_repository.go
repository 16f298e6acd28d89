package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
)

// TaskFilter narrows and orders a task listing. Zero values mean "no
// restriction on that field". OwnerEmail scopes the result to one owner.
type TaskFilter struct {
	OwnerEmail string
	Status     model.TaskStatus
	Priority   model.TaskPriority
	SortBy     string // one of "status", "priority", "dueDate"
	SortOrder  string // "asc" or "desc"; ignored without SortBy
}

// TaskRepository defines task persistence operations. Every mutation is a
// single SQL statement; cross-request consistency rests on row-level
// atomicity, not in-process locks.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	FindByIDAndOwner(ctx context.Context, id uuid.UUID, owner string) (*model.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error)
	UpdateFieldsByOwner(ctx context.Context, id uuid.UUID, owner string, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteByOwner(ctx context.Context, id uuid.UUID, owner string) (int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create creates a new task record.
func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID.
func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByIDAndOwner finds a task by ID scoped to its owner in one query, so a
// foreign task and a missing task are indistinguishable to the caller.
func (r *taskRepository) FindByIDAndOwner(ctx context.Context, id uuid.UUID, owner string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ? AND owner_email = ?", id, owner).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List returns tasks matching the filter in the requested order.
func (r *taskRepository) List(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{})
	if filter.OwnerEmail != "" {
		q = q.Where("owner_email = ?", filter.OwnerEmail)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if expr, ok := OrderExpr(filter.SortBy, filter.SortOrder); ok {
		q = q.Order(expr)
	}

	var tasks []model.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateFields applies the given column values to the task with id and
// reports how many rows changed. Zero rows means the task vanished.
func (r *taskRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, res.Error
}

// UpdateFieldsByOwner is UpdateFields with the owner folded into the WHERE
// clause, making the authorization check and the write one atomic statement.
func (r *taskRepository) UpdateFieldsByOwner(ctx context.Context, id uuid.UUID, owner string, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND owner_email = ?", id, owner).Updates(fields)
	return res.RowsAffected, res.Error
}

// Delete removes the task with id and reports how many rows were deleted.
func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{})
	return res.RowsAffected, res.Error
}

// DeleteByOwner removes the task only if it belongs to owner.
func (r *taskRepository) DeleteByOwner(ctx context.Context, id uuid.UUID, owner string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND owner_email = ?", id, owner).Delete(&model.Task{})
	return res.RowsAffected, res.Error
}
