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

type ProjectHandler struct {
	projectService *services.ProjectService
	logger         *zap.Logger
}

func NewProjectHandler(projectService *services.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

func respondProjectError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrProjectTitleRequired),
		errors.Is(err, services.ErrDeadlineRequired),
		errors.Is(err, services.ErrInvalidOwner),
		errors.Is(err, services.ErrInvalidDeveloper),
		errors.Is(err, services.ErrInvalidProgress),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidStatus):
		apierrors.BadRequest(c, err.Error())
	default:
		logger.Error("project operation failed", zap.Error(err))
		apierrors.InternalError(c)
	}
}

// CreateProject creates a project owned by the given user. Whoever sends
// the request is recorded as the creator.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req struct {
		Title        string          `json:"title" binding:"required"`
		Description  string          `json:"description"`
		Priority     models.Priority `json:"priority"`
		Status       models.Status   `json:"status"`
		Deadline     time.Time       `json:"deadline" binding:"required"`
		OwnerID      uint64          `json:"owner_id" binding:"required"`
		Progress     int             `json:"progress"`
		DeveloperIDs []uint64        `json:"developer_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Create(services.CreateProjectInput{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		Status:       req.Status,
		Deadline:     req.Deadline,
		OwnerID:      req.OwnerID,
		Progress:     req.Progress,
		DeveloperIDs: req.DeveloperIDs,
	}, caller)
	if err != nil {
		respondProjectError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns the projects visible to the caller.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	projects, total, err := h.projectService.List(caller, params)
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		apierrors.InternalError(c)
		return
	}

	dtos := make([]dto.ProjectDTO, len(projects))
	for i, project := range projects {
		dtos[i] = dto.ToProjectDTO(project)
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": dtos,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetProject returns a project within the caller's visible set.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.Get(caller, id)
	if err != nil {
		respondProjectError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// UpdateProject applies a partial patch to a project. Omitting
// developer_ids keeps the current developer set; sending an empty list
// clears it.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
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
		Title        *string          `json:"title"`
		Description  *string          `json:"description"`
		Priority     *models.Priority `json:"priority"`
		Status       *models.Status   `json:"status"`
		Deadline     *time.Time       `json:"deadline"`
		OwnerID      *uint64          `json:"owner_id"`
		Progress     *int             `json:"progress"`
		DeveloperIDs []uint64         `json:"developer_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Update(caller, id, services.UpdateProjectInput{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		Status:       req.Status,
		Deadline:     req.Deadline,
		OwnerID:      req.OwnerID,
		Progress:     req.Progress,
		DeveloperIDs: req.DeveloperIDs,
	})
	if err != nil {
		respondProjectError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject removes a project and every task under it.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(caller, id); err != nil {
		respondProjectError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListProjectTasks returns every task of a project the caller can see.
// Task-level visibility does not apply here; seeing the project grants
// the full task list.
func (h *ProjectHandler) ListProjectTasks(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tasks, err := h.projectService.ListTasks(caller, id)
	if err != nil {
		respondProjectError(c, h.logger, err)
		return
	}

	dtos := make([]dto.TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = dto.ToTaskDTO(task)
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dtos})
}
