package dto

import (
	"time"

	"github.com/teampulse/project-management-api/internal/models"
)

// DepartmentDTO represents a department in API responses
type DepartmentDTO struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// WorkerDTO represents a worker profile in API responses
type WorkerDTO struct {
	ID           uint64         `json:"id"`
	UserID       uint64         `json:"user_id"`
	DepartmentID *uint64        `json:"department_id"`
	Title        string         `json:"title"`
	HireDate     time.Time      `json:"hire_date"`
	Active       bool           `json:"active"`
	User         *UserRefDTO    `json:"user,omitempty"`
	Department   *DepartmentDTO `json:"department,omitempty"`
}

// ToDepartmentDTO converts a department to DTO
func ToDepartmentDTO(department models.Department) DepartmentDTO {
	return DepartmentDTO{
		ID:          department.ID,
		Name:        department.Name,
		Description: department.Description,
	}
}

// ToWorkerDTO converts a worker to DTO
func ToWorkerDTO(worker models.Worker) WorkerDTO {
	out := WorkerDTO{
		ID:           worker.ID,
		UserID:       worker.UserID,
		DepartmentID: worker.DepartmentID,
		Title:        worker.Title,
		HireDate:     worker.HireDate,
		Active:       worker.Active,
	}
	if worker.User.ID != 0 {
		out.User = toUserRefPtr(&worker.User)
	}
	if worker.Department != nil {
		dept := ToDepartmentDTO(*worker.Department)
		out.Department = &dept
	}
	return out
}
