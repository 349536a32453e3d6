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
	"github.com/teampulse/project-management-api/internal/services"
	"github.com/teampulse/project-management-api/internal/utils"
)

type WorkerHandler struct {
	workerService *services.WorkerService
	logger        *zap.Logger
}

func NewWorkerHandler(workerService *services.WorkerService, logger *zap.Logger) *WorkerHandler {
	return &WorkerHandler{
		workerService: workerService,
		logger:        logger,
	}
}

func respondWorkerError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrWorkerNotFound):
		apierrors.NotFound(c, "Worker not found")
	case errors.Is(err, services.ErrWorkerExists):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidUser),
		errors.Is(err, services.ErrInvalidDepartment),
		errors.Is(err, services.ErrWorkerUserRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		logger.Error("worker operation failed", zap.Error(err))
		apierrors.InternalError(c)
	}
}

// CreateWorker creates a worker profile for an existing user. A user has
// at most one profile.
func (h *WorkerHandler) CreateWorker(c *gin.Context) {
	var req struct {
		UserID       uint64    `json:"user_id" binding:"required"`
		DepartmentID *uint64   `json:"department_id"`
		Title        string    `json:"title" binding:"required"`
		HireDate     time.Time `json:"hire_date" binding:"required"`
		Active       *bool     `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	worker, err := h.workerService.Create(services.CreateWorkerInput{
		UserID:       req.UserID,
		DepartmentID: req.DepartmentID,
		Title:        req.Title,
		HireDate:     req.HireDate,
		Active:       req.Active,
	})
	if err != nil {
		respondWorkerError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkerDTO(*worker))
}

// ListWorkers returns the workers visible to the caller.
func (h *WorkerHandler) ListWorkers(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	workers, total, err := h.workerService.List(caller, params)
	if err != nil {
		h.logger.Error("failed to list workers", zap.Error(err))
		apierrors.InternalError(c)
		return
	}

	dtos := make([]dto.WorkerDTO, len(workers))
	for i, worker := range workers {
		dtos[i] = dto.ToWorkerDTO(worker)
	}

	c.JSON(http.StatusOK, gin.H{
		"workers": dtos,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetWorker returns a worker profile within the caller's visible set.
func (h *WorkerHandler) GetWorker(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	worker, err := h.workerService.Get(caller, id)
	if err != nil {
		respondWorkerError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkerDTO(*worker))
}

// UpdateWorker applies a partial patch to a worker profile. Sending
// department_id as JSON null clears the department.
func (h *WorkerHandler) UpdateWorker(c *gin.Context) {
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
		DepartmentID *uint64    `json:"department_id"`
		Title        *string    `json:"title"`
		HireDate     *time.Time `json:"hire_date"`
		Active       *bool      `json:"active"`
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

	clearDepartment := false
	if v, present := raw["department_id"]; present && v == nil {
		clearDepartment = true
	}

	worker, err := h.workerService.Update(caller, id, services.UpdateWorkerInput{
		DepartmentID:    req.DepartmentID,
		ClearDepartment: clearDepartment,
		Title:           req.Title,
		HireDate:        req.HireDate,
		Active:          req.Active,
	})
	if err != nil {
		respondWorkerError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkerDTO(*worker))
}

// DeleteWorker removes a worker profile. The underlying user account is
// untouched.
func (h *WorkerHandler) DeleteWorker(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.workerService.Delete(caller, id); err != nil {
		respondWorkerError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
