package services

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/teampulse/project-management-api/internal/auth"
	"github.com/teampulse/project-management-api/internal/constants"
	"github.com/teampulse/project-management-api/internal/models"
	"github.com/teampulse/project-management-api/internal/repository"
	"github.com/teampulse/project-management-api/internal/utils"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already exists")
	ErrEmailRequired        = errors.New("email is required")
	ErrUsernameRequired     = errors.New("username is required")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrRoleNotFound         = errors.New("one or more roles do not exist")
	ErrRoleNotAssigned      = errors.New("user does not have this role")
)

// UserService handles user accounts and role membership.
type UserService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		roleRepo: roleRepo,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Email       string
	Username    string
	FirstName   string
	LastName    string
	Password    string
	IsStaff     bool
	IsSuperuser bool
}

// Register creates a new user account.
func (s *UserService) Register(input RegisterInput) (*models.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(input.Username) == "" {
		return nil, ErrUsernameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:        email,
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: string(hashed),
		IsStaff:      input.IsStaff,
		IsSuperuser:  input.IsSuperuser,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// List returns the users visible to the caller.
func (s *UserService) List(caller auth.Caller, params utils.PaginationParams) ([]models.User, int64, error) {
	users, total, err := s.userRepo.ListVisible(caller, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// Get returns a user within the caller's visible set. Non-superusers only
// ever see their own record; anything else reads as not found.
func (s *UserService) Get(caller auth.Caller, id uint64) (*models.User, error) {
	if !caller.IsSuperuser && caller.UserID != id {
		return nil, ErrUserNotFound
	}

	user, err := s.userRepo.FindByID(id, "Roles")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateUserInput represents a partial user patch; nil fields keep their
// current value.
type UpdateUserInput struct {
	Email       *string
	Username    *string
	FirstName   *string
	LastName    *string
	Password    *string
	IsStaff     *bool
	IsSuperuser *bool
}

// Update applies a partial patch to a user. A supplied password is stored
// only after one-way hashing.
func (s *UserService) Update(id uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			return nil, ErrEmailRequired
		}
		if !strings.EqualFold(email, user.Email) {
			if _, err := s.userRepo.FindByEmail(email); err == nil {
				return nil, ErrEmailTaken
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
		}
		user.Email = email
	}
	if input.Username != nil {
		if strings.TrimSpace(*input.Username) == "" {
			return nil, ErrUsernameRequired
		}
		user.Username = *input.Username
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.IsStaff != nil {
		user.IsStaff = *input.IsStaff
	}
	if input.IsSuperuser != nil {
		user.IsSuperuser = *input.IsSuperuser
	}
	if input.Password != nil {
		if len(*input.Password) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, ErrFailedToHashPassword
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return s.userRepo.FindByID(user.ID, "Roles")
}

// Delete removes a user. Projects and tasks that reference the user keep
// existing with nulled references.
func (s *UserService) Delete(id uint64) error {
	if _, err := s.userRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.userRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// SetRoles fully replaces a user's role set. Every supplied role ID is
// validated before anything is written; an invalid ID leaves the current
// membership untouched. Returns both the prior and resulting role lists.
func (s *UserService) SetRoles(userID uint64, roleIDs []uint64) (previous []models.Role, current []models.Role, err error) {
	user, err := s.userRepo.FindByID(userID, "Roles")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	ids := uniqueUint64(roleIDs)
	roles, err := s.roleRepo.FindByIDs(ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve roles: %w", err)
	}
	if len(roles) != len(ids) {
		return nil, nil, ErrRoleNotFound
	}

	previous = user.Roles

	if err := s.userRepo.ReplaceRoles(user, roles); err != nil {
		return nil, nil, fmt.Errorf("failed to replace roles: %w", err)
	}

	return previous, roles, nil
}

// AddRole adds a single role to a user. Adding an already-present role is
// a no-op success.
func (s *UserService) AddRole(userID, roleID uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID, "Roles")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	role, err := s.roleRepo.FindByID(roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to find role: %w", err)
	}

	for _, existing := range user.Roles {
		if existing.ID == role.ID {
			return user, nil
		}
	}

	if err := s.userRepo.AppendRole(user, *role); err != nil {
		return nil, fmt.Errorf("failed to add role: %w", err)
	}

	return s.userRepo.FindByID(userID, "Roles")
}

// RemoveRole removes a single role from a user. Removing a role the user
// does not have is a validation failure.
func (s *UserService) RemoveRole(userID, roleID uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID, "Roles")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	role, err := s.roleRepo.FindByID(roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to find role: %w", err)
	}

	assigned := false
	for _, existing := range user.Roles {
		if existing.ID == role.ID {
			assigned = true
			break
		}
	}
	if !assigned {
		return nil, ErrRoleNotAssigned
	}

	if err := s.userRepo.RemoveRole(user, *role); err != nil {
		return nil, fmt.Errorf("failed to remove role: %w", err)
	}

	return s.userRepo.FindByID(userID, "Roles")
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
