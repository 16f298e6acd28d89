package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"taskboard/internal/config"
	apperrors "taskboard/internal/errors"
	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// MockTaskRepository is a mock implementation of TaskRepository.
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) FindByIDAndOwner(ctx context.Context, id uuid.UUID, owner string) (*model.Task, error) {
	args := m.Called(ctx, id, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]model.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	args := m.Called(ctx, id, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) UpdateFieldsByOwner(ctx context.Context, id uuid.UUID, owner string, fields map[string]interface{}) (int64, error) {
	args := m.Called(ctx, id, owner, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) DeleteByOwner(ctx context.Context, id uuid.UUID, owner string) (int64, error) {
	args := m.Called(ctx, id, owner)
	return args.Get(0).(int64), args.Error(1)
}

// MockTaskActivityRepository is a mock implementation of TaskActivityRepository.
type MockTaskActivityRepository struct {
	mock.Mock
}

func (m *MockTaskActivityRepository) CreateBatch(ctx context.Context, entries []model.TaskActivity) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockTaskActivityRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.TaskActivity, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TaskActivity), args.Error(1)
}

var (
	testAdmin  = &model.User{ID: 1, Email: "admin@test.com", Role: model.RoleAdmin}
	testMember = &model.User{ID: 2, Email: "member1@test.com", Role: model.RoleMember}
	testOther  = &model.User{ID: 3, Email: "member2@test.com", Role: model.RoleMember}
)

// newTestTaskService wires a task service over mocks. The background activity
// worker may flush at any time, so batch writes are allowed but not required.
func newTestTaskService(policy string, tasks *MockTaskRepository, users *MockUserRepository) TaskService {
	activities := new(MockTaskActivityRepository)
	activities.On("CreateBatch", mock.Anything, mock.Anything).Return(nil).Maybe()
	return NewTaskService(tasks, users, activities, policy)
}

func TestTaskService_Create(t *testing.T) {
	dueDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		policy        string
		principal     *model.User
		input         CreateTaskInput
		setupMocks    func(*MockTaskRepository, *MockUserRepository)
		expectedOwner string
		expectedError error
	}{
		{
			name:      "member owns their own task with defaults applied",
			policy:    config.PolicyRole,
			principal: testMember,
			input:     CreateTaskInput{Title: "T1", DueDate: dueDate},
			setupMocks: func(tasks *MockTaskRepository, users *MockUserRepository) {
				tasks.On("Create", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)
			},
			expectedOwner: testMember.Email,
		},
		{
			name:      "admin assigns ownership to another user",
			policy:    config.PolicyRole,
			principal: testAdmin,
			input:     CreateTaskInput{Title: "T2", DueDate: dueDate, AssignedTo: testMember.Email},
			setupMocks: func(tasks *MockTaskRepository, users *MockUserRepository) {
				users.On("FindByEmail", mock.Anything, testMember.Email).Return(testMember, nil)
				tasks.On("Create", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)
			},
			expectedOwner: testMember.Email,
		},
		{
			name:      "member-supplied assignedTo is ignored",
			policy:    config.PolicyRole,
			principal: testMember,
			input:     CreateTaskInput{Title: "T3", DueDate: dueDate, AssignedTo: testOther.Email},
			setupMocks: func(tasks *MockTaskRepository, users *MockUserRepository) {
				tasks.On("Create", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)
			},
			expectedOwner: testMember.Email,
		},
		{
			name:      "admin assignment to unknown user fails before any write",
			policy:    config.PolicyRole,
			principal: testAdmin,
			input:     CreateTaskInput{Title: "T4", DueDate: dueDate, AssignedTo: "ghost@test.com"},
			setupMocks: func(tasks *MockTaskRepository, users *MockUserRepository) {
				users.On("FindByEmail", mock.Anything, "ghost@test.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
		{
			name:      "strict policy has no admin assignment",
			policy:    config.PolicyStrict,
			principal: testAdmin,
			input:     CreateTaskInput{Title: "T5", DueDate: dueDate, AssignedTo: testMember.Email},
			setupMocks: func(tasks *MockTaskRepository, users *MockUserRepository) {
				tasks.On("Create", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)
			},
			expectedOwner: testAdmin.Email,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTasks := new(MockTaskRepository)
			mockUsers := new(MockUserRepository)
			tt.setupMocks(mockTasks, mockUsers)

			svc := newTestTaskService(tt.policy, mockTasks, mockUsers)
			task, err := svc.Create(context.Background(), tt.input, tt.principal)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, task)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedOwner, task.OwnerEmail)
				assert.Equal(t, model.StatusPending, task.Status)
				assert.Equal(t, model.PriorityMedium, task.Priority)
				assert.Equal(t, tt.input.Title, task.Title)
				assert.True(t, task.DueDate.Equal(dueDate))
			}

			mockTasks.AssertExpectations(t)
			mockUsers.AssertExpectations(t)
		})
	}
}

func TestTaskService_CreateKeepsSuppliedFields(t *testing.T) {
	mockTasks := new(MockTaskRepository)
	mockTasks.On("Create", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)

	svc := newTestTaskService(config.PolicyRole, mockTasks, new(MockUserRepository))
	task, err := svc.Create(context.Background(), CreateTaskInput{
		Title:    "X",
		Status:   model.StatusInProgress,
		Priority: model.PriorityHigh,
		DueDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}, testMember)

	assert.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, task.Status)
	assert.Equal(t, model.PriorityHigh, task.Priority)
}

func TestTaskService_List(t *testing.T) {
	tests := []struct {
		name           string
		policy         string
		principal      *model.User
		query          TaskQuery
		expectedFilter repository.TaskFilter
	}{
		{
			name:           "member listing is scoped to own tasks",
			policy:         config.PolicyRole,
			principal:      testMember,
			query:          TaskQuery{},
			expectedFilter: repository.TaskFilter{OwnerEmail: testMember.Email},
		},
		{
			name:           "admin listing is unrestricted",
			policy:         config.PolicyRole,
			principal:      testAdmin,
			query:          TaskQuery{},
			expectedFilter: repository.TaskFilter{},
		},
		{
			name:      "filters and sort pass through with ownership scope",
			policy:    config.PolicyRole,
			principal: testMember,
			query: TaskQuery{
				Status:    model.StatusPending,
				Priority:  model.PriorityHigh,
				SortBy:    "priority",
				SortOrder: "desc",
			},
			expectedFilter: repository.TaskFilter{
				OwnerEmail: testMember.Email,
				Status:     model.StatusPending,
				Priority:   model.PriorityHigh,
				SortBy:     "priority",
				SortOrder:  "desc",
			},
		},
		{
			name:           "strict policy scopes admins too",
			policy:         config.PolicyStrict,
			principal:      testAdmin,
			query:          TaskQuery{},
			expectedFilter: repository.TaskFilter{OwnerEmail: testAdmin.Email},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTasks := new(MockTaskRepository)
			mockTasks.On("List", mock.Anything, tt.expectedFilter).Return([]model.Task{}, nil)

			svc := newTestTaskService(tt.policy, mockTasks, new(MockUserRepository))
			tasks, err := svc.List(context.Background(), tt.query, tt.principal)

			assert.NoError(t, err)
			assert.NotNil(t, tasks)
			mockTasks.AssertExpectations(t)
		})
	}
}

func TestTaskService_Get(t *testing.T) {
	taskID := uuid.New()
	memberTask := &model.Task{ID: taskID, Title: "mine", OwnerEmail: testMember.Email}

	t.Run("owner reads own task", func(t *testing.T) {
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByID", mock.Anything, taskID).Return(memberTask, nil)

		svc := newTestTaskService(config.PolicyRole, mockTasks, new(MockUserRepository))
		task, err := svc.Get(context.Background(), taskID, testMember)

		assert.NoError(t, err)
		assert.Equal(t, memberTask, task)
	})

	t.Run("absent task is not found", func(t *testing.T) {
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByID", mock.Anything, taskID).Return(nil, gorm.ErrRecordNotFound)

		svc := newTestTaskService(config.PolicyRole, mockTasks, new(MockUserRepository))
		_, err := svc.Get(context.Background(), taskID, testMember)

		assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
	})

	t.Run("foreign member is forbidden", func(t *testing.T) {
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByID", mock.Anything, taskID).Return(memberTask, nil)

		svc := newTestTaskService(config.PolicyRole, mockTasks, new(MockUserRepository))
		_, err := svc.Get(context.Background(), taskID, testOther)

		assert.ErrorIs(t, err, apperrors.ErrTaskForbidden)
	})

	t.Run("admin reads any task", func(t *testing.T) {
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByID", mock.Anything, taskID).Return(memberTask, nil)

		svc := newTestTaskService(config.PolicyRole, mockTasks, new(MockUserRepository))
		task, err := svc.Get(context.Background(), taskID, testAdmin)

		assert.NoError(t, err)
		assert.Equal(t, memberTask, task)
	})

	t.Run("strict policy collapses foreign task to not found", func(t *testing.T) {
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByIDAndOwner", mock.Anything, taskID, testOther.Email).Return(nil, gorm.ErrRecordNotFound)

		svc := newTestTaskService(config.PolicyStrict, mockTasks, new(MockUserRepository))
		_, err := svc.Get(context.Background(), taskID, testOther)

		assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
	})
}

func TestTaskService_Update(t *testing.T) {
	taskID := uuid.New()
	current := &model.Task{ID: taskID, Title: "T", Status: model.StatusPending, OwnerEmail: testMember.Email}

	t.Run("only present fields are written", func(t *testing.T) {
		status := model.StatusCompleted
		updated := &model.Task{ID: taskID, Title: "T", Status: status, OwnerEmail: testMember.Email}

		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByID", mock.Anything, taskID).Return(current, nil).Once()
		mockTasks.On("UpdateFields", mock.Anything, taskID, map[string]interface{}{
			"status": status,
		}).Return(int64(1), nil)
		mockTasks.On("FindByID", mock.Anything, taskID).Return(updated, nil).Once()

		svc := newTestTaskService(config.PolicyRole, mockTasks, new(MockUserRepository))
		task, err := svc.Update(context.Background(), taskID, UpdateTaskInput{Status: &status}, testMember)

		assert.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, task.Status)
		assert.Equal(t, "T", task.Title)
		mockTasks.AssertExpectations(t)
	})

	t.Run("empty patch returns current task without writing", func(t *testing.T) {
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByID", mock.Anything, taskID).Return(current, nil)

		svc := newTestTaskService(config.PolicyRole, mockTasks, new(MockUserRepository))
		task, err := svc.Update(context.Background(), taskID, UpdateTaskInput{}, testMember)

		assert.NoError(t, err)
		assert.Equal(t, current, task)
		mockTasks.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("foreign member cannot update", func(t *testing.T) {
		title := "hijack"
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByID", mock.Anything, taskID).Return(current, nil)

		svc := newTestTaskService(config.PolicyRole, mockTasks, new(MockUserRepository))
		_, err := svc.Update(context.Background(), taskID, UpdateTaskInput{Title: &title}, testOther)

		assert.ErrorIs(t, err, apperrors.ErrTaskForbidden)
		mockTasks.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("task deleted between check and write is not found", func(t *testing.T) {
		title := "late"
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByID", mock.Anything, taskID).Return(current, nil)
		mockTasks.On("UpdateFields", mock.Anything, taskID, map[string]interface{}{
			"title": title,
		}).Return(int64(0), nil)

		svc := newTestTaskService(config.PolicyRole, mockTasks, new(MockUserRepository))
		_, err := svc.Update(context.Background(), taskID, UpdateTaskInput{Title: &title}, testMember)

		assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
	})

	t.Run("strict policy updates in one owner-scoped statement", func(t *testing.T) {
		status := model.StatusInProgress
		updated := &model.Task{ID: taskID, Title: "T", Status: status, OwnerEmail: testMember.Email}

		mockTasks := new(MockTaskRepository)
		mockTasks.On("UpdateFieldsByOwner", mock.Anything, taskID, testMember.Email, map[string]interface{}{
			"status": status,
		}).Return(int64(1), nil)
		mockTasks.On("FindByIDAndOwner", mock.Anything, taskID, testMember.Email).Return(updated, nil)

		svc := newTestTaskService(config.PolicyStrict, mockTasks, new(MockUserRepository))
		task, err := svc.Update(context.Background(), taskID, UpdateTaskInput{Status: &status}, testMember)

		assert.NoError(t, err)
		assert.Equal(t, status, task.Status)
		mockTasks.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("strict policy reports foreign task as not found", func(t *testing.T) {
		status := model.StatusInProgress
		mockTasks := new(MockTaskRepository)
		mockTasks.On("UpdateFieldsByOwner", mock.Anything, taskID, testOther.Email, mock.Anything).Return(int64(0), nil)

		svc := newTestTaskService(config.PolicyStrict, mockTasks, new(MockUserRepository))
		_, err := svc.Update(context.Background(), taskID, UpdateTaskInput{Status: &status}, testOther)

		assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
	})
}

func TestTaskService_Remove(t *testing.T) {
	taskID := uuid.New()
	memberTask := &model.Task{ID: taskID, Title: "done with this", OwnerEmail: testMember.Email}

	t.Run("owner removes and receives the snapshot", func(t *testing.T) {
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByID", mock.Anything, taskID).Return(memberTask, nil)
		mockTasks.On("Delete", mock.Anything, taskID).Return(int64(1), nil)

		svc := newTestTaskService(config.PolicyRole, mockTasks, new(MockUserRepository))
		task, err := svc.Remove(context.Background(), taskID, testMember)

		assert.NoError(t, err)
		assert.Equal(t, memberTask, task)
	})

	t.Run("second remove is not found", func(t *testing.T) {
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByID", mock.Anything, taskID).Return(nil, gorm.ErrRecordNotFound)

		svc := newTestTaskService(config.PolicyRole, mockTasks, new(MockUserRepository))
		_, err := svc.Remove(context.Background(), taskID, testMember)

		assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
	})

	t.Run("foreign member cannot remove", func(t *testing.T) {
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByID", mock.Anything, taskID).Return(memberTask, nil)

		svc := newTestTaskService(config.PolicyRole, mockTasks, new(MockUserRepository))
		_, err := svc.Remove(context.Background(), taskID, testOther)

		assert.ErrorIs(t, err, apperrors.ErrTaskForbidden)
		mockTasks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("task vanishing between check and delete is not found", func(t *testing.T) {
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByID", mock.Anything, taskID).Return(memberTask, nil)
		mockTasks.On("Delete", mock.Anything, taskID).Return(int64(0), nil)

		svc := newTestTaskService(config.PolicyRole, mockTasks, new(MockUserRepository))
		_, err := svc.Remove(context.Background(), taskID, testMember)

		assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
	})

	t.Run("strict policy removes owner-scoped", func(t *testing.T) {
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByIDAndOwner", mock.Anything, taskID, testMember.Email).Return(memberTask, nil)
		mockTasks.On("DeleteByOwner", mock.Anything, taskID, testMember.Email).Return(int64(1), nil)

		svc := newTestTaskService(config.PolicyStrict, mockTasks, new(MockUserRepository))
		task, err := svc.Remove(context.Background(), taskID, testMember)

		assert.NoError(t, err)
		assert.Equal(t, memberTask, task)
	})
}

func TestTaskService_Activity(t *testing.T) {
	taskID := uuid.New()
	memberTask := &model.Task{ID: taskID, OwnerEmail: testMember.Email}
	trail := []model.TaskActivity{
		{TaskID: taskID, ActorEmail: testMember.Email, Action: model.ActionCreated},
		{TaskID: taskID, ActorEmail: testMember.Email, Action: model.ActionUpdated},
	}

	t.Run("owner reads the trail", func(t *testing.T) {
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByID", mock.Anything, taskID).Return(memberTask, nil)
		mockActivities := new(MockTaskActivityRepository)
		mockActivities.On("ListByTask", mock.Anything, taskID).Return(trail, nil)

		svc := NewTaskService(mockTasks, new(MockUserRepository), mockActivities, config.PolicyRole)
		entries, err := svc.Activity(context.Background(), taskID, testMember)

		assert.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("foreign member is forbidden", func(t *testing.T) {
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByID", mock.Anything, taskID).Return(memberTask, nil)
		mockActivities := new(MockTaskActivityRepository)

		svc := NewTaskService(mockTasks, new(MockUserRepository), mockActivities, config.PolicyRole)
		_, err := svc.Activity(context.Background(), taskID, testOther)

		assert.ErrorIs(t, err, apperrors.ErrTaskForbidden)
		mockActivities.AssertNotCalled(t, "ListByTask", mock.Anything, mock.Anything)
	})
}
