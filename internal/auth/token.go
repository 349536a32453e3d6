package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/teampulse/project-management-api/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Caller is the authenticated identity attached to each request.
type Caller struct {
	UserID      uint64
	Email       string
	Roles       []string
	IsStaff     bool
	IsSuperuser bool
}

type Claims struct {
	jwt.RegisteredClaims
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	IsStaff     bool     `json:"is_staff"`
	IsSuperuser bool     `json:"is_superuser"`
	TokenType   string   `json:"token_type"`
}

// Caller converts validated claims into the request identity.
func (c *Claims) Caller() (Caller, error) {
	userID, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return Caller{}, ErrInvalidToken
	}
	return Caller{
		UserID:      userID,
		Email:       c.Email,
		Roles:       c.Roles,
		IsStaff:     c.IsStaff,
		IsSuperuser: c.IsSuperuser,
	}, nil
}

// TokenManager issues and validates signed access/refresh token pairs.
type TokenManager struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(signingKey []byte, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		signingKey: signingKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// GeneratePair issues an access and a refresh token for the user. Both
// embed identity, role names and privilege flags so authorization decisions
// never need a second lookup.
func (m *TokenManager) GeneratePair(user *models.User) (access string, refresh string, err error) {
	access, err = m.generate(user, TokenTypeAccess, m.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = m.generate(user, TokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// GenerateAccessToken issues a fresh access token for the user.
func (m *TokenManager) GenerateAccessToken(user *models.User) (string, error) {
	return m.generate(user, TokenTypeAccess, m.accessTTL)
}

func (m *TokenManager) generate(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, role.Name)
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   strconv.FormatUint(user.ID, 10),
			Issuer:    "teampulse",
			ID:        uuid.NewString(),
		},
		Email:       user.Email,
		Roles:       roles,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
		TokenType:   tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.signingKey)
}

// ValidateAccessToken parses and verifies an access token.
func (m *TokenManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	return m.validate(tokenString, TokenTypeAccess)
}

// ValidateRefreshToken parses and verifies a refresh token.
func (m *TokenManager) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return m.validate(tokenString, TokenTypeRefresh)
}

func (m *TokenManager) validate(tokenString, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
