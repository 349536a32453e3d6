package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/teampulse/project-management-api/internal/auth"
	"github.com/teampulse/project-management-api/internal/config"
	"github.com/teampulse/project-management-api/internal/models"
	"github.com/teampulse/project-management-api/internal/repository"
)

func setupAuthTest(t *testing.T, overrides []config.PermissionOverride) (*gorm.DB, *AuthService, *auth.TokenManager) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Role{}, &models.User{}))

	tokens := auth.NewTokenManager([]byte("test-secret"), 15*time.Minute, 24*time.Hour)
	userRepo := repository.NewUserRepository(db)
	service := NewAuthService(userRepo, tokens, overrides, zap.NewNop())

	return db, service, tokens
}

func createAuthTestUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		Username:     email,
		PasswordHash: string(hashed),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestAuthenticate_Success(t *testing.T) {
	db, service, tokens := setupAuthTest(t, nil)
	user := createAuthTestUser(t, db, "alice@example.com", "correct-horse")

	pair, err := service.Authenticate("alice@example.com", "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	claims, err := tokens.ValidateAccessToken(pair.Access)
	require.NoError(t, err)
	require.Equal(t, user.Email, claims.Email)

	caller, err := claims.Caller()
	require.NoError(t, err)
	require.Equal(t, user.ID, caller.UserID)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	db, service, _ := setupAuthTest(t, nil)
	createAuthTestUser(t, db, "alice@example.com", "correct-horse")

	_, err := service.Authenticate("alice@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	_, service, _ := setupAuthTest(t, nil)

	_, err := service.Authenticate("nobody@example.com", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

// The failure for a wrong password and for an unknown account must be the
// same error value, so responses cannot leak which emails exist.
func TestAuthenticate_IndistinguishableFailures(t *testing.T) {
	db, service, _ := setupAuthTest(t, nil)
	createAuthTestUser(t, db, "alice@example.com", "correct-horse")

	_, errWrongPassword := service.Authenticate("alice@example.com", "wrong")
	_, errUnknownEmail := service.Authenticate("nobody@example.com", "wrong")
	require.Equal(t, errWrongPassword, errUnknownEmail)
}

func TestAuthenticate_AppliesPermissionOverrides(t *testing.T) {
	overrides := []config.PermissionOverride{
		{Email: "admin@example.com", IsStaff: true, IsSuperuser: true},
	}
	db, service, tokens := setupAuthTest(t, overrides)
	user := createAuthTestUser(t, db, "admin@example.com", "correct-horse")
	require.False(t, user.IsSuperuser)

	pair, err := service.Authenticate("admin@example.com", "correct-horse")
	require.NoError(t, err)

	claims, err := tokens.ValidateAccessToken(pair.Access)
	require.NoError(t, err)
	require.True(t, claims.IsStaff)
	require.True(t, claims.IsSuperuser)

	// The correction is persisted, not just reflected in the token
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.True(t, reloaded.IsStaff)
	require.True(t, reloaded.IsSuperuser)
}

func TestAuthenticate_OverrideMatchIsCaseInsensitive(t *testing.T) {
	overrides := []config.PermissionOverride{
		{Email: "Admin@Example.com", IsStaff: true, IsSuperuser: false},
	}
	db, service, _ := setupAuthTest(t, overrides)
	user := createAuthTestUser(t, db, "admin@example.com", "correct-horse")

	_, err := service.Authenticate("admin@example.com", "correct-horse")
	require.NoError(t, err)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.True(t, reloaded.IsStaff)
}

func TestRefresh_IssuesNewAccessToken(t *testing.T) {
	db, service, tokens := setupAuthTest(t, nil)
	user := createAuthTestUser(t, db, "alice@example.com", "correct-horse")

	pair, err := service.Authenticate("alice@example.com", "correct-horse")
	require.NoError(t, err)

	access, err := service.Refresh(pair.Refresh)
	require.NoError(t, err)

	claims, err := tokens.ValidateAccessToken(access)
	require.NoError(t, err)
	require.Equal(t, user.Email, claims.Email)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	db, service, _ := setupAuthTest(t, nil)
	createAuthTestUser(t, db, "alice@example.com", "correct-horse")

	pair, err := service.Authenticate("alice@example.com", "correct-horse")
	require.NoError(t, err)

	_, err = service.Refresh(pair.Access)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_RejectsGarbage(t *testing.T) {
	_, service, _ := setupAuthTest(t, nil)

	_, err := service.Refresh("not-a-token")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}
