package dto

import (
	"time"

	"github.com/teampulse/project-management-api/internal/models"
)

// RoleDTO represents a role in API responses
type RoleDTO struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	Roles       []RoleDTO `json:"roles"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserRefDTO is the minimal user shape embedded in other resources
type UserRefDTO struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// UserRolesDTO reports a role-set change: the roles the user held before
// the write and the roles it holds now
type UserRolesDTO struct {
	UserID   uint64    `json:"user_id"`
	Previous []RoleDTO `json:"previous_roles"`
	Current  []RoleDTO `json:"current_roles"`
}

// ToRoleDTO converts a role to DTO
func ToRoleDTO(role models.Role) RoleDTO {
	return RoleDTO{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
	}
}

// ToRoleDTOs converts roles to DTOs, never returning nil
func ToRoleDTOs(roles []models.Role) []RoleDTO {
	dtos := make([]RoleDTO, len(roles))
	for i, role := range roles {
		dtos[i] = ToRoleDTO(role)
	}
	return dtos
}

// ToUserDTO converts a user to DTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
		Roles:       ToRoleDTOs(user.Roles),
		CreatedAt:   user.CreatedAt,
	}
}

// ToUserRefDTO converts a user to its minimal embedded shape
func ToUserRefDTO(user models.User) UserRefDTO {
	return UserRefDTO{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
	}
}

func toUserRefPtr(user *models.User) *UserRefDTO {
	if user == nil {
		return nil
	}
	ref := ToUserRefDTO(*user)
	return &ref
}
