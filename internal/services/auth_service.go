package services

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/teampulse/project-management-api/internal/auth"
	"github.com/teampulse/project-management-api/internal/config"
	"github.com/teampulse/project-management-api/internal/models"
	"github.com/teampulse/project-management-api/internal/repository"
)

var (
	// ErrInvalidCredentials is deliberately identical for unknown email and
	// wrong password, so login attempts cannot probe for account existence.
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// TokenPair is the result of a successful authentication.
type TokenPair struct {
	Access  string
	Refresh string
}

// AuthService verifies credentials and issues token pairs.
type AuthService struct {
	userRepo  repository.UserRepository
	tokens    *auth.TokenManager
	overrides []config.PermissionOverride
	logger    *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager, overrides []config.PermissionOverride, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		overrides: overrides,
		logger:    logger,
	}
}

// Authenticate verifies email and password and returns a token pair. The
// configured permission-override table is reconciled first, so corrected
// privilege flags are already reflected in the issued claims.
func (s *AuthService) Authenticate(email, password string) (*TokenPair, error) {
	user, err := s.userRepo.FindByEmail(email, "Roles")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.reconcilePermissions(user); err != nil {
		return nil, fmt.Errorf("failed to reconcile permissions: %w", err)
	}

	access, refresh, err := s.tokens.GeneratePair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// reconcilePermissions applies the identity-keyed privilege policy: when
// the stored staff/superuser flags drift from the override entry for this
// email, they are corrected and persisted before any token is issued.
func (s *AuthService) reconcilePermissions(user *models.User) error {
	for _, override := range s.overrides {
		if !strings.EqualFold(override.Email, user.Email) {
			continue
		}

		if user.IsStaff == override.IsStaff && user.IsSuperuser == override.IsSuperuser {
			return nil
		}

		user.IsStaff = override.IsStaff
		user.IsSuperuser = override.IsSuperuser
		s.logger.Info("privilege flags corrected from override policy",
			zap.String("email", user.Email),
			zap.Bool("is_staff", user.IsStaff),
			zap.Bool("is_superuser", user.IsSuperuser),
		)
		return s.userRepo.Update(user)
	}
	return nil
}

// Refresh exchanges a valid refresh token for a new access token. The user
// is re-read so role or privilege changes since login show up in the new
// claims.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	caller, err := claims.Caller()
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	user, err := s.userRepo.FindByID(caller.UserID, "Roles")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}
	return access, nil
}
