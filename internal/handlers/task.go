package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/teampulse/project-management-api/internal/dto"
	apierrors "github.com/teampulse/project-management-api/internal/errors"
	"github.com/teampulse/project-management-api/internal/middleware"
	"github.com/teampulse/project-management-api/internal/models"
	"github.com/teampulse/project-management-api/internal/services"
	"github.com/teampulse/project-management-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
	logger      *zap.Logger
}

func NewTaskHandler(taskService *services.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

func respondTaskError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTaskTitleRequired),
		errors.Is(err, services.ErrDeadlineRequired),
		errors.Is(err, services.ErrInvalidProject),
		errors.Is(err, services.ErrInvalidAssignee),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidStatus):
		apierrors.BadRequest(c, err.Error())
	default:
		logger.Error("task operation failed", zap.Error(err))
		apierrors.InternalError(c)
	}
}

// CreateTask creates a task under an existing project. The caller is
// recorded as the creator.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req struct {
		Title       string          `json:"title" binding:"required"`
		Description string          `json:"description"`
		Priority    models.Priority `json:"priority"`
		Status      models.Status   `json:"status"`
		Deadline    time.Time       `json:"deadline" binding:"required"`
		ProjectID   uint64          `json:"project_id" binding:"required"`
		AssigneeID  *uint64         `json:"assignee_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Create(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		Deadline:    req.Deadline,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
	}, caller)
	if err != nil {
		respondTaskError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListTasks returns the tasks visible to the caller.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	tasks, total, err := h.taskService.List(caller, params)
	if err != nil {
		h.logger.Error("failed to list tasks", zap.Error(err))
		apierrors.InternalError(c)
		return
	}

	dtos := make([]dto.TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = dto.ToTaskDTO(task)
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dtos,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetTask returns a task within the caller's visible set.
func (h *TaskHandler) GetTask(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Get(caller, id)
	if err != nil {
		respondTaskError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial patch to a task. Sending assignee_id as
// JSON null unassigns the task.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Title       *string          `json:"title"`
		Description *string          `json:"description"`
		Priority    *models.Priority `json:"priority"`
		Status      *models.Status   `json:"status"`
		Deadline    *time.Time       `json:"deadline"`
		ProjectID   *uint64          `json:"project_id"`
		AssigneeID  *uint64          `json:"assignee_id"`
	}
	raw := map[string]any{}
	if err := c.ShouldBindBodyWithJSON(&raw); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if err := c.ShouldBindBodyWithJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	// assignee_id present but null means unassign; absent means keep
	clearAssignee := false
	if v, present := raw["assignee_id"]; present && v == nil {
		clearAssignee = true
	}

	task, err := h.taskService.Update(caller, id, services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		Status:        req.Status,
		Deadline:      req.Deadline,
		ProjectID:     req.ProjectID,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: clearAssignee,
	})
	if err != nil {
		respondTaskError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes a task from the caller's visible set.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(caller, id); err != nil {
		respondTaskError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
