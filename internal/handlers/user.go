package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/teampulse/project-management-api/internal/dto"
	apierrors "github.com/teampulse/project-management-api/internal/errors"
	"github.com/teampulse/project-management-api/internal/middleware"
	"github.com/teampulse/project-management-api/internal/services"
	"github.com/teampulse/project-management-api/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService *services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// Register creates a new user account. Registration is open; no token is
// required.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		Username    string `json:"username" binding:"required"`
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		Password    string `json:"password" binding:"required"`
		IsStaff     bool   `json:"is_staff"`
		IsSuperuser bool   `json:"is_superuser"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Register(services.RegisterInput{
		Email:       req.Email,
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Password:    req.Password,
		IsStaff:     req.IsStaff,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			apierrors.Conflict(c, err.Error())
		case errors.Is(err, services.ErrEmailRequired),
			errors.Is(err, services.ErrUsernameRequired),
			errors.Is(err, services.ErrPasswordTooShort):
			apierrors.BadRequest(c, err.Error())
		default:
			h.logger.Error("user registration failed", zap.Error(err))
			apierrors.InternalError(c)
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// ListUsers returns the users visible to the caller.
func (h *UserHandler) ListUsers(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	users, total, err := h.userService.List(caller, params)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		apierrors.InternalError(c)
		return
	}

	dtos := make([]dto.UserDTO, len(users))
	for i, user := range users {
		dtos[i] = dto.ToUserDTO(user)
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dtos,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetUser returns a single user within the caller's visible set.
func (h *UserHandler) GetUser(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(caller, id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, "User not found")
			return
		}
		h.logger.Error("failed to get user", zap.Error(err))
		apierrors.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateUser applies a partial patch to a user. Only staff and superusers
// may change the privilege flags.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if !caller.IsSuperuser && caller.UserID != id {
		apierrors.NotFound(c, "User not found")
		return
	}

	var req struct {
		Email       *string `json:"email" binding:"omitempty,email"`
		Username    *string `json:"username"`
		FirstName   *string `json:"first_name"`
		LastName    *string `json:"last_name"`
		Password    *string `json:"password"`
		IsStaff     *bool   `json:"is_staff"`
		IsSuperuser *bool   `json:"is_superuser"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	if (req.IsStaff != nil || req.IsSuperuser != nil) && !caller.IsStaff && !caller.IsSuperuser {
		apierrors.Forbidden(c, "Only staff may change privilege flags")
		return
	}

	user, err := h.userService.Update(id, services.UpdateUserInput{
		Email:       req.Email,
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Password:    req.Password,
		IsStaff:     req.IsStaff,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			apierrors.NotFound(c, "User not found")
		case errors.Is(err, services.ErrEmailTaken):
			apierrors.Conflict(c, err.Error())
		case errors.Is(err, services.ErrEmailRequired),
			errors.Is(err, services.ErrUsernameRequired),
			errors.Is(err, services.ErrPasswordTooShort):
			apierrors.BadRequest(c, err.Error())
		default:
			h.logger.Error("failed to update user", zap.Error(err))
			apierrors.InternalError(c)
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser removes a user. Owned projects and created records survive
// with their references cleared.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if !caller.IsSuperuser && caller.UserID != id {
		apierrors.NotFound(c, "User not found")
		return
	}

	if err := h.userService.Delete(id); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, "User not found")
			return
		}
		h.logger.Error("failed to delete user", zap.Error(err))
		apierrors.InternalError(c)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateRoles replaces a user's full role set and reports the membership
// before and after the write.
func (h *UserHandler) UpdateRoles(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// A pointer distinguishes a missing role_ids from an explicit empty
	// list; the empty list is a valid "revoke everything" request.
	var req struct {
		RoleIDs *[]uint64 `json:"role_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RoleIDs == nil {
		apierrors.BadRequest(c, "role_ids is required")
		return
	}

	previous, current, err := h.userService.SetRoles(id, *req.RoleIDs)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			apierrors.NotFound(c, "User not found")
		case errors.Is(err, services.ErrRoleNotFound):
			apierrors.BadRequest(c, err.Error())
		default:
			h.logger.Error("failed to update roles", zap.Error(err))
			apierrors.InternalError(c)
		}
		return
	}

	c.JSON(http.StatusOK, dto.UserRolesDTO{
		UserID:   id,
		Previous: dto.ToRoleDTOs(previous),
		Current:  dto.ToRoleDTOs(current),
	})
}

// AddRole grants a single role to a user. Granting a role the user
// already holds succeeds without change.
func (h *UserHandler) AddRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		RoleID uint64 `json:"role_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "role_id is required")
		return
	}

	user, err := h.userService.AddRole(id, req.RoleID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			apierrors.NotFound(c, "User not found")
		case errors.Is(err, services.ErrRoleNotFound):
			apierrors.BadRequest(c, err.Error())
		default:
			h.logger.Error("failed to add role", zap.Error(err))
			apierrors.InternalError(c)
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// RemoveRole revokes a single role from a user.
func (h *UserHandler) RemoveRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		RoleID uint64 `json:"role_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "role_id is required")
		return
	}

	user, err := h.userService.RemoveRole(id, req.RoleID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			apierrors.NotFound(c, "User not found")
		case errors.Is(err, services.ErrRoleNotFound),
			errors.Is(err, services.ErrRoleNotAssigned):
			apierrors.BadRequest(c, err.Error())
		default:
			h.logger.Error("failed to remove role", zap.Error(err))
			apierrors.InternalError(c)
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}
