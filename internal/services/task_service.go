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
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskTitleRequired = errors.New("title is required")
	ErrInvalidProject    = errors.New("project does not exist")
	ErrInvalidAssignee   = errors.New("assignee user does not exist")
)

var taskPreloads = []string{"Project", "Assignee", "CreatedBy"}

// TaskService handles task business logic.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    models.Priority
	Status      models.Status
	Deadline    time.Time
	ProjectID   uint64
	AssigneeID  *uint64
}

// Create creates a task. The project and optional assignee must resolve to
// existing rows; created_by is always stamped with the caller regardless
// of the request payload.
func (s *TaskService) Create(input CreateTaskInput, caller auth.Caller) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTaskTitleRequired
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

	if _, err := s.projectRepo.FindByID(input.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidProject
		}
		return nil, fmt.Errorf("failed to resolve project: %w", err)
	}

	if input.AssigneeID != nil {
		if _, err := s.userRepo.FindByID(*input.AssigneeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidAssignee
			}
			return nil, fmt.Errorf("failed to resolve assignee: %w", err)
		}
	}

	createdBy := caller.UserID
	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		Deadline:    input.Deadline,
		ProjectID:   input.ProjectID,
		AssigneeID:  input.AssigneeID,
		CreatedByID: &createdBy,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// List returns the tasks visible to the caller.
func (s *TaskService) List(caller auth.Caller, params utils.PaginationParams) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.ListVisible(caller, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// Get returns a task within the caller's visible set.
func (s *TaskService) Get(caller auth.Caller, id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindVisibleByID(caller, id, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// UpdateTaskInput represents a partial task patch; nil fields keep their
// current value. ClearAssignee unassigns the task.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Priority      *models.Priority
	Status        *models.Status
	Deadline      *time.Time
	ProjectID     *uint64
	AssigneeID    *uint64
	ClearAssignee bool
}

// Update applies a partial patch to a task in the caller's visible set.
func (s *TaskService) Update(caller auth.Caller, id uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindVisibleByID(caller, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTaskTitleRequired
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.Deadline != nil {
		task.Deadline = *input.Deadline
	}
	if input.ProjectID != nil {
		if _, err := s.projectRepo.FindByID(*input.ProjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidProject
			}
			return nil, fmt.Errorf("failed to resolve project: %w", err)
		}
		task.ProjectID = *input.ProjectID
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
	} else if input.AssigneeID != nil {
		if _, err := s.userRepo.FindByID(*input.AssigneeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidAssignee
			}
			return nil, fmt.Errorf("failed to resolve assignee: %w", err)
		}
		task.AssigneeID = input.AssigneeID
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// Delete removes a task from the caller's visible set.
func (s *TaskService) Delete(caller auth.Caller, id uint64) error {
	if _, err := s.taskRepo.FindVisibleByID(caller, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
