package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teampulse/project-management-api/internal/models"
)

func testTokenManager() *TokenManager {
	return NewTokenManager([]byte("test-secret"), 15*time.Minute, 24*time.Hour)
}

func testUser() *models.User {
	return &models.User{
		ID:          42,
		Email:       "alice@example.com",
		IsStaff:     true,
		IsSuperuser: false,
		Roles: []models.Role{
			{ID: 1, Name: "developer"},
			{ID: 2, Name: "reviewer"},
		},
	}
}

func TestGeneratePair_ClaimsRoundTrip(t *testing.T) {
	m := testTokenManager()
	user := testUser()

	access, refresh, err := m.GeneratePair(user)
	require.NoError(t, err)
	require.NotEqual(t, access, refresh)

	claims, err := m.ValidateAccessToken(access)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, []string{"developer", "reviewer"}, claims.Roles)
	require.True(t, claims.IsStaff)
	require.False(t, claims.IsSuperuser)

	caller, err := claims.Caller()
	require.NoError(t, err)
	require.Equal(t, uint64(42), caller.UserID)
}

func TestValidateAccessToken_RejectsRefreshToken(t *testing.T) {
	m := testTokenManager()

	_, refresh, err := m.GeneratePair(testUser())
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(refresh)
	require.Error(t, err)
}

func TestValidateRefreshToken_RejectsAccessToken(t *testing.T) {
	m := testTokenManager()

	access, _, err := m.GeneratePair(testUser())
	require.NoError(t, err)

	_, err = m.ValidateRefreshToken(access)
	require.Error(t, err)
}

func TestValidate_RejectsWrongKey(t *testing.T) {
	m := testTokenManager()
	other := NewTokenManager([]byte("different-secret"), 15*time.Minute, 24*time.Hour)

	access, err := m.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(access)
	require.Error(t, err)
}

func TestValidate_RejectsExpiredToken(t *testing.T) {
	m := NewTokenManager([]byte("test-secret"), -time.Minute, 24*time.Hour)

	access, err := m.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(access)
	require.Error(t, err)
}

func TestValidate_RejectsMalformedToken(t *testing.T) {
	m := testTokenManager()

	_, err := m.ValidateAccessToken("not.a.token")
	require.Error(t, err)
}
