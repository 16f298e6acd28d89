package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "taskboard/internal/errors"
	"taskboard/internal/model"
)

func TestUserService_ListUsers(t *testing.T) {
	roster := []model.User{*testAdmin, *testMember, *testOther}

	t.Run("admin lists the roster", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("List", mock.Anything).Return(roster, nil)

		svc := NewUserService(mockRepo)
		users, err := svc.ListUsers(context.Background(), testAdmin)

		assert.NoError(t, err)
		assert.Len(t, users, 3)
		mockRepo.AssertExpectations(t)
	})

	t.Run("member is refused", func(t *testing.T) {
		mockRepo := new(MockUserRepository)

		svc := NewUserService(mockRepo)
		_, err := svc.ListUsers(context.Background(), testMember)

		assert.ErrorIs(t, err, apperrors.ErrAdminOnly)
		mockRepo.AssertNotCalled(t, "List", mock.Anything)
	})
}
