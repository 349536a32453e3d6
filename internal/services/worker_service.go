package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/teampulse/project-management-api/internal/auth"
	"github.com/teampulse/project-management-api/internal/models"
	"github.com/teampulse/project-management-api/internal/repository"
	"github.com/teampulse/project-management-api/internal/utils"
)

var (
	ErrWorkerNotFound     = errors.New("worker not found")
	ErrWorkerExists       = errors.New("user already has a worker profile")
	ErrInvalidUser        = errors.New("user does not exist")
	ErrInvalidDepartment  = errors.New("department does not exist")
	ErrWorkerUserRequired = errors.New("user_id is required")
)

// WorkerService handles worker profile business logic. A worker row
// extends a user with employment details; there is at most one per user.
type WorkerService struct {
	workerRepo     repository.WorkerRepository
	userRepo       repository.UserRepository
	departmentRepo repository.DepartmentRepository
}

// NewWorkerService creates a new WorkerService.
func NewWorkerService(workerRepo repository.WorkerRepository, userRepo repository.UserRepository, departmentRepo repository.DepartmentRepository) *WorkerService {
	return &WorkerService{
		workerRepo:     workerRepo,
		userRepo:       userRepo,
		departmentRepo: departmentRepo,
	}
}

// CreateWorkerInput represents input for creating a worker profile.
type CreateWorkerInput struct {
	UserID       uint64
	DepartmentID *uint64
	Title        string
	HireDate     time.Time
	Active       *bool
}

// Create creates a worker profile for an existing user.
func (s *WorkerService) Create(input CreateWorkerInput) (*models.Worker, error) {
	if input.UserID == 0 {
		return nil, ErrWorkerUserRequired
	}

	if _, err := s.userRepo.FindByID(input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidUser
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	if _, err := s.workerRepo.FindByUserID(input.UserID); err == nil {
		return nil, ErrWorkerExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing worker: %w", err)
	}

	if input.DepartmentID != nil {
		if _, err := s.departmentRepo.FindByID(*input.DepartmentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidDepartment
			}
			return nil, fmt.Errorf("failed to resolve department: %w", err)
		}
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	worker := &models.Worker{
		UserID:       input.UserID,
		DepartmentID: input.DepartmentID,
		Title:        strings.TrimSpace(input.Title),
		HireDate:     input.HireDate,
		Active:       active,
	}

	if err := s.workerRepo.Create(worker); err != nil {
		return nil, fmt.Errorf("failed to create worker: %w", err)
	}

	return s.workerRepo.FindByID(worker.ID, "User", "Department")
}

// List returns the workers visible to the caller.
func (s *WorkerService) List(caller auth.Caller, params utils.PaginationParams) ([]models.Worker, int64, error) {
	workers, total, err := s.workerRepo.ListVisible(caller, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workers: %w", err)
	}
	return workers, total, nil
}

// Get returns a worker profile. Non-superusers only see their own row;
// anything else reads as not found.
func (s *WorkerService) Get(caller auth.Caller, id uint64) (*models.Worker, error) {
	worker, err := s.workerRepo.FindByID(id, "User", "Department")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		return nil, fmt.Errorf("failed to find worker: %w", err)
	}
	if !caller.IsSuperuser && worker.UserID != caller.UserID {
		return nil, ErrWorkerNotFound
	}
	return worker, nil
}

// UpdateWorkerInput represents a partial worker patch. ClearDepartment
// removes the department assignment.
type UpdateWorkerInput struct {
	DepartmentID    *uint64
	ClearDepartment bool
	Title           *string
	HireDate        *time.Time
	Active          *bool
}

// Update applies a partial patch to a worker profile.
func (s *WorkerService) Update(caller auth.Caller, id uint64, input UpdateWorkerInput) (*models.Worker, error) {
	worker, err := s.Get(caller, id)
	if err != nil {
		return nil, err
	}

	if input.ClearDepartment {
		worker.DepartmentID = nil
	} else if input.DepartmentID != nil {
		if _, err := s.departmentRepo.FindByID(*input.DepartmentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidDepartment
			}
			return nil, fmt.Errorf("failed to resolve department: %w", err)
		}
		worker.DepartmentID = input.DepartmentID
	}
	if input.Title != nil {
		worker.Title = strings.TrimSpace(*input.Title)
	}
	if input.HireDate != nil {
		worker.HireDate = *input.HireDate
	}
	if input.Active != nil {
		worker.Active = *input.Active
	}

	if err := s.workerRepo.Update(worker); err != nil {
		return nil, fmt.Errorf("failed to update worker: %w", err)
	}

	return s.workerRepo.FindByID(worker.ID, "User", "Department")
}

// Delete removes a worker profile. The underlying user is untouched.
func (s *WorkerService) Delete(caller auth.Caller, id uint64) error {
	if _, err := s.Get(caller, id); err != nil {
		return err
	}
	if err := s.workerRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete worker: %w", err)
	}
	return nil
}
