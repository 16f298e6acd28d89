package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"taskboard/internal/auth"
	apperrors "taskboard/internal/errors"
	"taskboard/internal/model"
	"taskboard/internal/service"
)

// TaskHandler handles task endpoints.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
	DueDate     string `json:"dueDate" validate:"required"`
	Priority    string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	AssignedTo  string `json:"assignedTo" validate:"omitempty,email"`
}

// UpdateTaskRequest represents a partial task update; absent fields keep
// their prior value.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
	DueDate     *string `json:"dueDate"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
}

// Create godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTaskRequest true "Task data"
// @Success 201 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return err
	}

	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return httpError(apperrors.NewValidationError(map[string]string{
			"dueDate": "must be an ISO 8601 date",
		}))
	}

	task, err := h.taskService.Create(c.Request().Context(), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskStatus(req.Status),
		Priority:    model.TaskPriority(req.Priority),
		DueDate:     dueDate,
		AssignedTo:  req.AssignedTo,
	}, principal)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

// List godoc
// @Summary List visible tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(PENDING, IN_PROGRESS, COMPLETED)
// @Param priority query string false "Filter by priority" Enums(LOW, MEDIUM, HIGH)
// @Param sortBy query string false "Sort field" Enums(status, priority, dueDate)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {array} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return err
	}

	query, verr := listQuery(c)
	if verr != nil {
		return httpError(verr)
	}

	tasks, err := h.taskService.List(c.Request().Context(), query, principal)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// Get godoc
// @Summary Get a task by id
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return err
	}
	id, verr := taskID(c)
	if verr != nil {
		return httpError(verr)
	}

	task, err := h.taskService.Get(c.Request().Context(), id, principal)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, task)
}

// Update godoc
// @Summary Patch a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param request body UpdateTaskRequest true "Fields to change"
// @Success 200 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return err
	}
	id, verr := taskID(c)
	if verr != nil {
		return httpError(verr)
	}

	var req UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	input := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := model.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := model.TaskPriority(*req.Priority)
		input.Priority = &priority
	}
	if req.DueDate != nil {
		dueDate, err := parseDate(*req.DueDate)
		if err != nil {
			return httpError(apperrors.NewValidationError(map[string]string{
				"dueDate": "must be an ISO 8601 date",
			}))
		}
		input.DueDate = &dueDate
	}

	task, err := h.taskService.Update(c.Request().Context(), id, input, principal)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, task)
}

// Remove godoc
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Remove(c echo.Context) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return err
	}
	id, verr := taskID(c)
	if verr != nil {
		return httpError(verr)
	}

	task, err := h.taskService.Remove(c.Request().Context(), id, principal)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, task)
}

// Activity godoc
// @Summary List the mutation trail of a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {array} model.TaskActivity
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id}/activity [get]
func (h *TaskHandler) Activity(c echo.Context) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return err
	}
	id, verr := taskID(c)
	if verr != nil {
		return httpError(verr)
	}

	entries, err := h.taskService.Activity(c.Request().Context(), id, principal)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

// taskID parses the :id path parameter.
func taskID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError(map[string]string{
			"id": "must be a valid task id",
		})
	}
	return id, nil
}

// listQuery parses and validates the list query parameters. Every invalid
// parameter is reported, not just the first.
func listQuery(c echo.Context) (service.TaskQuery, error) {
	query := service.TaskQuery{
		Status:    model.TaskStatus(c.QueryParam("status")),
		Priority:  model.TaskPriority(c.QueryParam("priority")),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}

	fields := map[string]string{}
	if query.Status != "" && !query.Status.Valid() {
		fields["status"] = "must be one of PENDING IN_PROGRESS COMPLETED"
	}
	if query.Priority != "" && !query.Priority.Valid() {
		fields["priority"] = "must be one of LOW MEDIUM HIGH"
	}
	switch query.SortBy {
	case "", "status", "priority", "dueDate":
	default:
		fields["sortBy"] = "must be one of status priority dueDate"
	}
	switch query.SortOrder {
	case "", "asc", "desc":
	default:
		fields["sortOrder"] = "must be asc or desc"
	}
	if len(fields) > 0 {
		return service.TaskQuery{}, apperrors.NewValidationError(fields)
	}
	return query, nil
}
