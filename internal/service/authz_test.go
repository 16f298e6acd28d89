package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "taskboard/internal/errors"
	"taskboard/internal/model"
)

func TestCanAccessTask(t *testing.T) {
	admin := &model.User{ID: 1, Email: "admin@test.com", Role: model.RoleAdmin}
	owner := &model.User{ID: 2, Email: "owner@test.com", Role: model.RoleMember}
	other := &model.User{ID: 3, Email: "other@test.com", Role: model.RoleMember}

	task := &model.Task{Title: "T", OwnerEmail: owner.Email}

	tests := []struct {
		name      string
		principal *model.User
		expected  error
	}{
		{"admin may access any task", admin, nil},
		{"member may access own task", owner, nil},
		{"member may not access foreign task", other, apperrors.ErrTaskForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanAccessTask(tt.principal, task)
			if tt.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expected)
			}
		})
	}
}

func TestCanAccessTask_AdminOwnedTask(t *testing.T) {
	admin := &model.User{ID: 1, Email: "admin@test.com", Role: model.RoleAdmin}
	member := &model.User{ID: 2, Email: "member1@test.com", Role: model.RoleMember}

	adminTask := &model.Task{Title: "ops", OwnerEmail: admin.Email}

	assert.NoError(t, CanAccessTask(admin, adminTask))
	assert.ErrorIs(t, CanAccessTask(member, adminTask), apperrors.ErrTaskForbidden)
}
