package dto

import (
	"time"

	"github.com/teampulse/project-management-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	Status      models.Status   `json:"status"`
	Deadline    time.Time       `json:"deadline"`
	Progress    int             `json:"progress"`
	OwnerID     *uint64         `json:"owner_id"`
	CreatedByID *uint64         `json:"created_by_id"`
	Owner       *UserRefDTO     `json:"owner,omitempty"`
	CreatedBy   *UserRefDTO     `json:"created_by,omitempty"`
	Developers  []UserRefDTO    `json:"developers"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	Status      models.Status   `json:"status"`
	Deadline    time.Time       `json:"deadline"`
	ProjectID   uint64          `json:"project_id"`
	AssigneeID  *uint64         `json:"assignee_id"`
	CreatedByID *uint64         `json:"created_by_id"`
	Assignee    *UserRefDTO     `json:"assignee,omitempty"`
	CreatedBy   *UserRefDTO     `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToProjectDTO converts a project to DTO
func ToProjectDTO(project models.Project) ProjectDTO {
	developers := make([]UserRefDTO, len(project.Developers))
	for i, dev := range project.Developers {
		developers[i] = ToUserRefDTO(dev)
	}

	return ProjectDTO{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		Priority:    project.Priority,
		Status:      project.Status,
		Deadline:    project.Deadline,
		Progress:    project.Progress,
		OwnerID:     project.OwnerID,
		CreatedByID: project.CreatedByID,
		Owner:       toUserRefPtr(project.Owner),
		CreatedBy:   toUserRefPtr(project.CreatedBy),
		Developers:  developers,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// ToTaskDTO converts a task to DTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		Deadline:    task.Deadline,
		ProjectID:   task.ProjectID,
		AssigneeID:  task.AssigneeID,
		CreatedByID: task.CreatedByID,
		Assignee:    toUserRefPtr(task.Assignee),
		CreatedBy:   toUserRefPtr(task.CreatedBy),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}
