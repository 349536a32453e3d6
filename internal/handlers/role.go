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

// RoleHandler serves the role catalog. Every route is mounted behind
// RequireStaff.
type RoleHandler struct {
	roleService *services.RoleService
	logger      *zap.Logger
}

func NewRoleHandler(roleService *services.RoleService, logger *zap.Logger) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
		logger:      logger,
	}
}

func respondRoleError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrRoleMissing):
		apierrors.NotFound(c, "Role not found")
	case errors.Is(err, services.ErrRoleNameRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrRoleNameTaken):
		apierrors.Conflict(c, err.Error())
	default:
		logger.Error("role operation failed", zap.Error(err))
		apierrors.InternalError(c)
	}
}

// CreateRole creates a role.
func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.Create(req.Name, req.Description)
	if err != nil {
		respondRoleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToRoleDTO(*role))
}

// ListRoles returns all roles.
func (h *RoleHandler) ListRoles(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	roles, total, err := h.roleService.List(params)
	if err != nil {
		h.logger.Error("failed to list roles", zap.Error(err))
		apierrors.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"roles": dto.ToRoleDTOs(roles),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetRole returns a role by ID.
func (h *RoleHandler) GetRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	role, err := h.roleService.Get(id)
	if err != nil {
		respondRoleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRoleDTO(*role))
}

// UpdateRole applies a partial patch to a role.
func (h *RoleHandler) UpdateRole(c *gin.Context) {
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

	role, err := h.roleService.Update(id, services.UpdateRoleInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondRoleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRoleDTO(*role))
}

// DeleteRole removes a role and revokes it from every user.
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.roleService.Delete(id); err != nil {
		respondRoleError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
