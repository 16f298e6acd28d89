package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskAction identifies what a mutation did to a task.
type TaskAction string

const (
	ActionCreated TaskAction = "CREATED"
	ActionUpdated TaskAction = "UPDATED"
	ActionDeleted TaskAction = "DELETED"
)

// TaskActivity is an append-only record of a task mutation. Entries are
// written asynchronously and best-effort; they never fail the request that
// produced them.
type TaskActivity struct {
	ID         uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	TaskID     uuid.UUID  `json:"task_id" gorm:"type:char(36);not null;index"`
	ActorEmail string     `json:"actor" gorm:"size:255;not null"`
	Action     TaskAction `json:"action" gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time  `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (a *TaskActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
