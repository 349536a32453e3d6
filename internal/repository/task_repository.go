package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/teampulse/project-management-api/internal/auth"
	"github.com/teampulse/project-management-api/internal/database"
	"github.com/teampulse/project-management-api/internal/models"
	"github.com/teampulse/project-management-api/internal/utils"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// taskScopeClause is the visibility predicate for non-superusers: tasks
// assigned to the caller, plus every task under a project the caller owns,
// created, or develops on. Unlike projects, an empty result set stays empty.
const taskScopeClause = "tasks.assignee_id = ? OR " +
	"EXISTS (SELECT 1 FROM projects p WHERE p.id = tasks.project_id AND " +
	"(p.owner_id = ? OR p.created_by_id = ? OR " +
	"EXISTS (SELECT 1 FROM project_developers pd WHERE pd.project_id = p.id AND pd.user_id = ?)))"

func (r *GormTaskRepository) scoped(caller auth.Caller) *gorm.DB {
	if caller.IsSuperuser {
		return r.db
	}
	return r.db.Where(taskScopeClause, caller.UserID, caller.UserID, caller.UserID, caller.UserID)
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID without visibility scoping
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	return findTask(r.db, id, preload)
}

// FindVisibleByID finds a task within the caller's visible set
func (r *GormTaskRepository) FindVisibleByID(caller auth.Caller, id uint64, preload ...string) (*models.Task, error) {
	return findTask(r.scoped(caller), id, preload)
}

func findTask(query *gorm.DB, id uint64, preload []string) (*models.Task, error) {
	for _, p := range preload {
		query = query.Preload(p)
	}

	var task models.Task
	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListVisible lists the tasks the caller may see
func (r *GormTaskRepository) ListVisible(caller auth.Caller, params utils.PaginationParams) ([]models.Task, int64, error) {
	query := r.scoped(caller).Model(&models.Task{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	err := query.
		Preload("Assignee").
		Preload("CreatedBy").
		Order("tasks.created_at DESC").
		Scopes(database.Paginate(params)).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit(clause.Associations).Save(task).Error
}

// Delete removes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}
