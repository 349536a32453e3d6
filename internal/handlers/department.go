package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/teampulse/project-management-api/internal/dto"
	apierrors "github.com/teampulse/project-management-api/internal/errors"
	"github.com/teampulse/project-management-api/internal/services"
	"github.com/teampulse/project-management-api/internal/utils"
)

type DepartmentHandler struct {
	departmentService *services.DepartmentService
	logger            *zap.Logger
}

func NewDepartmentHandler(departmentService *services.DepartmentService, logger *zap.Logger) *DepartmentHandler {
	return &DepartmentHandler{
		departmentService: departmentService,
		logger:            logger,
	}
}

func respondDepartmentError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrDepartmentNotFound):
		apierrors.NotFound(c, "Department not found")
	case errors.Is(err, services.ErrDepartmentNameRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		logger.Error("department operation failed", zap.Error(err))
		apierrors.InternalError(c)
	}
}

// CreateDepartment creates a department.
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	department, err := h.departmentService.Create(req.Name, req.Description)
	if err != nil {
		respondDepartmentError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToDepartmentDTO(*department))
}

// ListDepartments returns all departments.
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	departments, total, err := h.departmentService.List(params)
	if err != nil {
		h.logger.Error("failed to list departments", zap.Error(err))
		apierrors.InternalError(c)
		return
	}

	dtos := make([]dto.DepartmentDTO, len(departments))
	for i, department := range departments {
		dtos[i] = dto.ToDepartmentDTO(department)
	}

	c.JSON(http.StatusOK, gin.H{
		"departments": dtos,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetDepartment returns a department by ID.
func (h *DepartmentHandler) GetDepartment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	department, err := h.departmentService.Get(id)
	if err != nil {
		respondDepartmentError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDepartmentDTO(*department))
}

// UpdateDepartment applies a partial patch to a department.
func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	department, err := h.departmentService.Update(id, services.UpdateDepartmentInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondDepartmentError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDepartmentDTO(*department))
}

// DeleteDepartment removes a department; its workers stay with no
// department assigned.
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.departmentService.Delete(id); err != nil {
		respondDepartmentError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
