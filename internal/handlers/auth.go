package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/teampulse/project-management-api/internal/errors"
	"github.com/teampulse/project-management-api/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login exchanges email and password for a token pair. The failure
// message never says which of the two was wrong.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Email and password are required")
		return
	}

	pair, err := h.authService.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			apierrors.RespondWithError(c, http.StatusUnauthorized,
				apierrors.NewAPIError(apierrors.ErrCodeInvalidCredentials, "Invalid email or password"))
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		apierrors.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access":  pair.Access,
		"refresh": pair.Refresh,
	})
}

// Refresh exchanges a refresh token for a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Refresh token is required")
		return
	}

	access, err := h.authService.Refresh(req.Refresh)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRefreshToken) {
			apierrors.Unauthorized(c, "Invalid or expired refresh token")
			return
		}
		h.logger.Error("token refresh failed", zap.Error(err))
		apierrors.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}
