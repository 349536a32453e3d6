package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/teampulse/project-management-api/internal/auth"
	"github.com/teampulse/project-management-api/internal/constants"
	apierrors "github.com/teampulse/project-management-api/internal/errors"
)

// RequireAuth validates the Bearer token and attaches the caller identity
// to the request context.
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorization := c.GetHeader("Authorization")
		if authorization == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		parts := strings.SplitN(authorization, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			apierrors.Unauthorized(c, "Invalid authorization header")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateAccessToken(strings.TrimSpace(parts[1]))
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		caller, err := claims.Caller()
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyCaller, caller)
		c.Next()
	}
}

// RequireStaff allows only staff or superuser callers through. Must run
// after RequireAuth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, exists := GetCaller(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !caller.IsStaff && !caller.IsSuperuser {
			apierrors.Forbidden(c, "Staff privileges required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetCaller retrieves the authenticated caller from the request context.
func GetCaller(c *gin.Context) (auth.Caller, bool) {
	value, exists := c.Get(constants.ContextKeyCaller)
	if !exists {
		return auth.Caller{}, false
	}

	caller, ok := value.(auth.Caller)
	if !ok {
		return auth.Caller{}, false
	}
	return caller, true
}
