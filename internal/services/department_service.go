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
	ErrDepartmentNotFound     = errors.New("department not found")
	ErrDepartmentNameRequired = errors.New("name is required")
)

// DepartmentService handles department business logic.
type DepartmentService struct {
	departmentRepo repository.DepartmentRepository
}

// NewDepartmentService creates a new DepartmentService.
func NewDepartmentService(departmentRepo repository.DepartmentRepository) *DepartmentService {
	return &DepartmentService{departmentRepo: departmentRepo}
}

// Create creates a department.
func (s *DepartmentService) Create(name, description string) (*models.Department, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrDepartmentNameRequired
	}

	department := &models.Department{Name: name, Description: description}
	if err := s.departmentRepo.Create(department); err != nil {
		return nil, fmt.Errorf("failed to create department: %w", err)
	}
	return department, nil
}

// List returns all departments.
func (s *DepartmentService) List(params utils.PaginationParams) ([]models.Department, int64, error) {
	departments, total, err := s.departmentRepo.List(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, total, nil
}

// Get returns a department by ID.
func (s *DepartmentService) Get(id uint64) (*models.Department, error) {
	department, err := s.departmentRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to find department: %w", err)
	}
	return department, nil
}

// UpdateDepartmentInput represents a partial department patch.
type UpdateDepartmentInput struct {
	Name        *string
	Description *string
}

// Update applies a partial patch to a department.
func (s *DepartmentService) Update(id uint64, input UpdateDepartmentInput) (*models.Department, error) {
	department, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrDepartmentNameRequired
		}
		department.Name = *input.Name
	}
	if input.Description != nil {
		department.Description = *input.Description
	}

	if err := s.departmentRepo.Update(department); err != nil {
		return nil, fmt.Errorf("failed to update department: %w", err)
	}
	return department, nil
}

// Delete removes a department. Workers in the department are kept and
// their department reference is cleared.
func (s *DepartmentService) Delete(id uint64) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.departmentRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}
	return nil
}
