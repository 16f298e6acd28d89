package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
)

// TaskActivityRepository defines activity trail persistence operations.
type TaskActivityRepository interface {
	CreateBatch(ctx context.Context, entries []model.TaskActivity) error
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.TaskActivity, error)
}

type taskActivityRepository struct {
	db *gorm.DB
}

// NewTaskActivityRepository creates a new task activity repository.
func NewTaskActivityRepository(db *gorm.DB) TaskActivityRepository {
	return &taskActivityRepository{db: db}
}

// CreateBatch inserts a batch of activity entries.
func (r *taskActivityRepository) CreateBatch(ctx context.Context, entries []model.TaskActivity) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

// ListByTask returns the activity trail of a task, oldest first.
func (r *taskActivityRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.TaskActivity, error) {
	var entries []model.TaskActivity
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).
		Order("created_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
