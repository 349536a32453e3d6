package repository

import (
	"github.com/teampulse/project-management-api/internal/auth"
	"github.com/teampulse/project-management-api/internal/models"
	"github.com/teampulse/project-management-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.User, error)

	// FindByEmail finds a user by email, the login identity field
	FindByEmail(email string, preload ...string) (*models.User, error)

	// ListVisible lists the users the caller may see
	ListVisible(caller auth.Caller, params utils.PaginationParams) ([]models.User, int64, error)

	// Update persists changed user fields without touching role edges
	Update(user *models.User) error

	// Delete removes a user; dependent foreign keys are nulled, the 1:1
	// worker row and membership edges are removed, all in one transaction
	Delete(id uint64) error

	// FindByIDs returns the users matching the given IDs
	FindByIDs(ids []uint64) ([]models.User, error)

	// ReplaceRoles atomically replaces the user's role set
	ReplaceRoles(user *models.User, roles []models.Role) error

	// AppendRole adds a single role edge
	AppendRole(user *models.User, role models.Role) error

	// RemoveRole removes a single role edge
	RemoveRole(user *models.User, role models.Role) error
}

// RoleRepository defines the interface for role data access
type RoleRepository interface {
	Create(role *models.Role) error
	FindByID(id uint64) (*models.Role, error)
	FindByName(name string) (*models.Role, error)
	FindByIDs(ids []uint64) ([]models.Role, error)
	List(params utils.PaginationParams) ([]models.Role, int64, error)
	Update(role *models.Role) error

	// Delete removes a role and its user edges
	Delete(id uint64) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a project together with its developer edges atomically
	Create(project *models.Project) error

	// FindByID finds a project by ID without visibility scoping
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// FindVisibleByID finds a project within the caller's visible set
	FindVisibleByID(caller auth.Caller, id uint64, preload ...string) (*models.Project, error)

	// ListVisible lists the projects the caller may see
	ListVisible(caller auth.Caller, params utils.PaginationParams) ([]models.Project, int64, error)

	// Update persists changed project fields. When developers is non-nil
	// the developer set is replaced in the same transaction; nil leaves the
	// edges untouched.
	Update(project *models.Project, developers []models.User) error

	// Delete removes a project, its tasks and its developer edges in one
	// transaction
	Delete(id uint64) error

	// ListTasks returns every task of a project regardless of task scoping
	ListTasks(projectID uint64) ([]models.Task, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Create(task *models.Task) error

	// FindByID finds a task by ID without visibility scoping
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindVisibleByID finds a task within the caller's visible set
	FindVisibleByID(caller auth.Caller, id uint64, preload ...string) (*models.Task, error)

	// ListVisible lists the tasks the caller may see
	ListVisible(caller auth.Caller, params utils.PaginationParams) ([]models.Task, int64, error)

	Update(task *models.Task) error
	Delete(id uint64) error
}

// DepartmentRepository defines the interface for department data access
type DepartmentRepository interface {
	Create(department *models.Department) error
	FindByID(id uint64, preload ...string) (*models.Department, error)
	List(params utils.PaginationParams) ([]models.Department, int64, error)
	Update(department *models.Department) error

	// Delete removes a department; its workers are kept with a nulled
	// department reference
	Delete(id uint64) error
}

// WorkerRepository defines the interface for worker data access
type WorkerRepository interface {
	Create(worker *models.Worker) error
	FindByID(id uint64, preload ...string) (*models.Worker, error)

	// FindByUserID finds the worker row owned by a user
	FindByUserID(userID uint64) (*models.Worker, error)

	// ListVisible lists the workers the caller may see
	ListVisible(caller auth.Caller, params utils.PaginationParams) ([]models.Worker, int64, error)

	Update(worker *models.Worker) error
	Delete(id uint64) error
}
