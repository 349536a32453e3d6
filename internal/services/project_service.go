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
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectTitleRequired = errors.New("title is required")
	ErrDeadlineRequired     = errors.New("deadline is required")
	ErrInvalidOwner         = errors.New("owner user does not exist")
	ErrInvalidDeveloper     = errors.New("one or more developers do not exist")
	ErrInvalidProgress      = errors.New("progress must be between 0 and 100")
	ErrInvalidPriority      = errors.New("invalid priority")
	ErrInvalidStatus        = errors.New("invalid status")
)

var projectPreloads = []string{"Owner", "CreatedBy", "Developers"}

// ProjectService handles project business logic.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// CreateProjectInput represents input for creating a project.
type CreateProjectInput struct {
	Title        string
	Description  string
	Priority     models.Priority
	Status       models.Status
	Deadline     time.Time
	OwnerID      uint64
	Progress     int
	DeveloperIDs []uint64
}

// Create creates a project. The owner and every developer must resolve to
// existing users; created_by is always stamped with the caller, whatever
// the request body claims. Row insert and developer edges commit together.
func (s *ProjectService) Create(input CreateProjectInput, caller auth.Caller) (*models.Project, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrProjectTitleRequired
	}
	if input.Deadline.IsZero() {
		return nil, ErrDeadlineRequired
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if input.Status == "" {
		input.Status = models.StatusPending
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if input.Progress < 0 || input.Progress > 100 {
		return nil, ErrInvalidProgress
	}

	owner, err := s.userRepo.FindByID(input.OwnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidOwner
		}
		return nil, fmt.Errorf("failed to resolve owner: %w", err)
	}

	developers, err := s.resolveDevelopers(input.DeveloperIDs)
	if err != nil {
		return nil, err
	}

	createdBy := caller.UserID
	project := &models.Project{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		Deadline:    input.Deadline,
		OwnerID:     &owner.ID,
		Progress:    input.Progress,
		CreatedByID: &createdBy,
		Developers:  developers,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.projectRepo.FindByID(project.ID, projectPreloads...)
}

// List returns the projects visible to the caller.
func (s *ProjectService) List(caller auth.Caller, params utils.PaginationParams) ([]models.Project, int64, error) {
	projects, total, err := s.projectRepo.ListVisible(caller, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// Get returns a project within the caller's visible set.
func (s *ProjectService) Get(caller auth.Caller, id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindVisibleByID(caller, id, projectPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// UpdateProjectInput represents a partial project patch; nil fields keep
// their current value.
type UpdateProjectInput struct {
	Title        *string
	Description  *string
	Priority     *models.Priority
	Status       *models.Status
	Deadline     *time.Time
	OwnerID      *uint64
	Progress     *int
	DeveloperIDs []uint64
}

// Update applies a partial patch to a project in the caller's visible set.
// Progress is re-validated on every update.
func (s *ProjectService) Update(caller auth.Caller, id uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.FindVisibleByID(caller, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrProjectTitleRequired
		}
		project.Title = *input.Title
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		project.Priority = *input.Priority
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		project.Status = *input.Status
	}
	if input.Deadline != nil {
		project.Deadline = *input.Deadline
	}
	if input.Progress != nil {
		if *input.Progress < 0 || *input.Progress > 100 {
			return nil, ErrInvalidProgress
		}
		project.Progress = *input.Progress
	}
	if input.OwnerID != nil {
		owner, err := s.userRepo.FindByID(*input.OwnerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidOwner
			}
			return nil, fmt.Errorf("failed to resolve owner: %w", err)
		}
		project.OwnerID = &owner.ID
	}

	var developers []models.User
	if input.DeveloperIDs != nil {
		developers, err = s.resolveDevelopers(input.DeveloperIDs)
		if err != nil {
			return nil, err
		}
	}

	if err := s.projectRepo.Update(project, developers); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.projectRepo.FindByID(project.ID, projectPreloads...)
}

// Delete removes a project from the caller's visible set. Its tasks go
// with it.
func (s *ProjectService) Delete(caller auth.Caller, id uint64) error {
	if _, err := s.projectRepo.FindVisibleByID(caller, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.projectRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// ListTasks returns every task of a visible project, bypassing the
// caller's task-level scope on purpose: anyone who can see the project
// sees all of its tasks.
func (s *ProjectService) ListTasks(caller auth.Caller, projectID uint64) ([]models.Task, error) {
	if _, err := s.projectRepo.FindVisibleByID(caller, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	tasks, err := s.projectRepo.ListTasks(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project tasks: %w", err)
	}
	return tasks, nil
}

// resolveDevelopers validates every developer ID and returns the matching
// users. An empty input yields an empty, non-nil slice so callers can
// distinguish "clear the set" from "leave it alone".
func (s *ProjectService) resolveDevelopers(ids []uint64) ([]models.User, error) {
	unique := uniqueUint64(ids)
	developers, err := s.userRepo.FindByIDs(unique)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve developers: %w", err)
	}
	if len(developers) != len(unique) {
		return nil, ErrInvalidDeveloper
	}
	if developers == nil {
		developers = []models.User{}
	}
	return developers, nil
}
