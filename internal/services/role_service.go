package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/teampulse/project-management-api/internal/models"
	"github.com/teampulse/project-management-api/internal/repository"
	"github.com/teampulse/project-management-api/internal/utils"
)

var (
	ErrRoleNameRequired = errors.New("name is required")
	ErrRoleNameTaken    = errors.New("a role with this name already exists")
	ErrRoleMissing      = errors.New("role not found")
)

// RoleService handles role business logic. All operations are staff-only;
// the handler layer enforces that before calling in.
type RoleService struct {
	roleRepo repository.RoleRepository
}

// NewRoleService creates a new RoleService.
func NewRoleService(roleRepo repository.RoleRepository) *RoleService {
	return &RoleService{roleRepo: roleRepo}
}

// Create creates a role with a unique name.
func (s *RoleService) Create(name, description string) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoleNameRequired
	}

	if existing, err := s.roleRepo.FindByName(name); err == nil && existing != nil {
		return nil, ErrRoleNameTaken
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check role name: %w", err)
	}

	role := &models.Role{Name: name, Description: description}
	if err := s.roleRepo.Create(role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	return role, nil
}

// List returns all roles.
func (s *RoleService) List(params utils.PaginationParams) ([]models.Role, int64, error) {
	roles, total, err := s.roleRepo.List(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, total, nil
}

// Get returns a role by ID.
func (s *RoleService) Get(id uint64) (*models.Role, error) {
	role, err := s.roleRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleMissing
		}
		return nil, fmt.Errorf("failed to find role: %w", err)
	}
	return role, nil
}

// UpdateRoleInput represents a partial role patch.
type UpdateRoleInput struct {
	Name        *string
	Description *string
}

// Update applies a partial patch to a role.
func (s *RoleService) Update(id uint64, input UpdateRoleInput) (*models.Role, error) {
	role, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrRoleNameRequired
		}
		if name != role.Name {
			if existing, err := s.roleRepo.FindByName(name); err == nil && existing != nil {
				return nil, ErrRoleNameTaken
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check role name: %w", err)
			}
		}
		role.Name = name
	}
	if input.Description != nil {
		role.Description = *input.Description
	}

	if err := s.roleRepo.Update(role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return role, nil
}

// Delete removes a role and detaches it from every user holding it.
func (s *RoleService) Delete(id uint64) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.roleRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	return nil
}
